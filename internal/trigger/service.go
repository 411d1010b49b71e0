// Package trigger bridges inbound-mail notifications to the drafting
// pipeline. A Pub/Sub message means new mail may be waiting; unseen
// messages are pulled over IMAP and drafted.
package trigger

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	personadomain "persona-backend/internal/persona/domain"
	"persona-backend/internal/persona/usecase"
	"persona-backend/pkg/config"
	"persona-backend/pkg/imap"

	"cloud.google.com/go/pubsub"
	"github.com/google/uuid"
)

// MailNotification is the push payload published when new mail arrives.
type MailNotification struct {
	EmailAddress string `json:"emailAddress"`
	HistoryID    uint64 `json:"historyId"`
}

type Service struct {
	pubsubClient   *pubsub.Client
	imapService    *imap.IMAPService
	personaUsecase usecase.PersonaUsecase
	cfg            *config.Config
	subName        string
	imapPassword   string

	// Track the last historyId to drop duplicate notifications.
	lastHistoryID uint64
}

// NewService wires the trigger. imapPassword is passed separately so the
// caller can resolve a settings-stored credential.
func NewService(ctx context.Context, cfg *config.Config, imapService *imap.IMAPService, personaUsecase usecase.PersonaUsecase, imapPassword string) (*Service, error) {
	client, err := pubsub.NewClient(ctx, cfg.GoogleProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	return &Service{
		pubsubClient:   client,
		imapService:    imapService,
		personaUsecase: personaUsecase,
		cfg:            cfg,
		subName:        cfg.PubSubSubscription,
		imapPassword:   imapPassword,
	}, nil
}

func (s *Service) Start(ctx context.Context) {
	log.Printf("[Trigger] Listening on subscription: %s", s.subName)

	sub := s.pubsubClient.Subscription(s.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		log.Printf("[Trigger] Error checking subscription existence: %v", err)
		return
	}
	if !exists {
		log.Printf("[Trigger] Subscription %s does not exist", s.subName)
		return
	}

	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		s.handleMessage(ctx, msg)
		msg.Ack()
	})
	if err != nil {
		log.Printf("[Trigger] Error receiving messages: %v", err)
	}
}

func (s *Service) handleMessage(ctx context.Context, msg *pubsub.Message) {
	var notification MailNotification
	if err := json.Unmarshal(msg.Data, &notification); err != nil {
		log.Printf("[Trigger] Failed to unmarshal notification: %v", err)
		return
	}

	if notification.HistoryID != 0 && notification.HistoryID <= s.lastHistoryID {
		log.Printf("[Trigger] Skipping duplicate notification (historyId %d)", notification.HistoryID)
		return
	}
	if notification.HistoryID != 0 {
		s.lastHistoryID = notification.HistoryID
	}

	if err := s.pullAndProcess(ctx); err != nil {
		log.Printf("[Trigger] Processing failed: %v", err)
	}
}

// pullAndProcess fetches unseen inbox mail, registers each message and
// runs the drafting pass over whatever has no draft yet.
func (s *Service) pullAndProcess(ctx context.Context) error {
	emails, err := s.imapService.FetchUnseen(ctx, s.cfg.ImapServer, s.cfg.ImapPort, s.cfg.UserEmail, s.imapPassword)
	if err != nil {
		return fmt.Errorf("failed to fetch unseen mail: %w", err)
	}

	for _, email := range emails {
		receivedAt := email.Date
		if receivedAt.IsZero() {
			receivedAt = time.Now()
		}
		msg := &personadomain.IncomingMessage{
			ID:         uuid.New().String(),
			Sender:     email.From,
			Subject:    email.Subject,
			Body:       email.Body,
			Urgency:    personadomain.UrgencyRoutine,
			ReceivedAt: receivedAt,
		}
		if err := s.personaUsecase.IntakeMessage(msg); err != nil {
			log.Printf("[Trigger] Failed to register message from %s: %v", email.From, err)
		}
	}

	report, err := s.personaUsecase.ProcessNewEmails(ctx)
	if err != nil {
		return err
	}
	log.Printf("[Trigger] Drafted %d, skipped %d, errors %d", report.Processed, report.Skipped, len(report.Errors))
	return nil
}

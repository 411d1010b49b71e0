package imap

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
)

// RawEmail is one message pulled from the server, body reduced to the
// text/plain part.
type RawEmail struct {
	MessageID string
	From      string
	FromName  string
	To        string
	Subject   string
	Body      string
	Date      time.Time
}

// Common names for the sent folder across providers.
var sentFolderCandidates = []string{"Sent", "[Gmail]/Sent Mail", "Sent Items", "Sent Messages", "INBOX.Sent"}

// IMAPService fetches mail over IMAP with app-password auth.
type IMAPService struct{}

// NewService creates a new IMAP service
func NewService() *IMAPService {
	return &IMAPService{}
}

func (s *IMAPService) connect(server string, port int, username, password string) (*client.Client, error) {
	c, err := client.DialTLS(fmt.Sprintf("%s:%d", server, port), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}
	if err := c.Login(username, password); err != nil {
		c.Logout()
		return nil, fmt.Errorf("IMAP login failed: %w", err)
	}
	return c, nil
}

// TestConnection verifies server reachability and credentials.
func (s *IMAPService) TestConnection(server string, port int, username, password string) (bool, string) {
	c, err := s.connect(server, port, username, password)
	if err != nil {
		return false, err.Error()
	}
	defer c.Logout()
	return true, "connected"
}

// FetchSent returns up to limit messages from the sent folder, newest
// last (mailbox order).
func (s *IMAPService) FetchSent(ctx context.Context, server string, port int, username, password string, limit int) ([]RawEmail, error) {
	c, err := s.connect(server, port, username, password)
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	var mbox *imap.MailboxStatus
	for _, name := range sentFolderCandidates {
		if mbox, err = c.Select(name, true); err == nil {
			break
		}
	}
	if mbox == nil {
		return nil, fmt.Errorf("no sent folder found")
	}
	if mbox.Messages == 0 {
		return []RawEmail{}, nil
	}

	from := uint32(1)
	if limit > 0 && mbox.Messages > uint32(limit) {
		from = mbox.Messages - uint32(limit) + 1
	}
	seqset := new(imap.SeqSet)
	seqset.AddRange(from, mbox.Messages)

	return s.fetchRange(ctx, c, seqset)
}

// FetchUnseen returns unseen INBOX messages, used by the inbound trigger.
func (s *IMAPService) FetchUnseen(ctx context.Context, server string, port int, username, password string) ([]RawEmail, error) {
	c, err := s.connect(server, port, username, password)
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	if _, err := c.Select("INBOX", false); err != nil {
		return nil, fmt.Errorf("failed to select INBOX: %w", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	ids, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("IMAP search failed: %w", err)
	}
	if len(ids) == 0 {
		return []RawEmail{}, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)
	return s.fetchRange(ctx, c, seqset)
}

func (s *IMAPService) fetchRange(ctx context.Context, c *client.Client, seqset *imap.SeqSet) ([]RawEmail, error) {
	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, section.FetchItem()}

	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, items, messages)
	}()

	var emails []RawEmail
	for msg := range messages {
		select {
		case <-ctx.Done():
			return emails, ctx.Err()
		default:
		}

		email := RawEmail{}
		if msg.Envelope != nil {
			email.MessageID = msg.Envelope.MessageId
			email.Subject = msg.Envelope.Subject
			email.Date = msg.Envelope.Date
			if len(msg.Envelope.From) > 0 {
				email.From = msg.Envelope.From[0].Address()
				email.FromName = msg.Envelope.From[0].PersonalName
			}
			if len(msg.Envelope.To) > 0 {
				email.To = msg.Envelope.To[0].Address()
			}
		}

		if body := msg.GetBody(section); body != nil {
			text, err := extractPlainText(body)
			if err != nil {
				log.Printf("[IMAP] Failed to parse message %s: %v", email.MessageID, err)
			}
			email.Body = text
		}

		emails = append(emails, email)
	}

	if err := <-done; err != nil {
		return emails, fmt.Errorf("IMAP fetch failed: %w", err)
	}
	return emails, nil
}

// extractPlainText walks the MIME tree and returns the first text/plain
// inline part.
func extractPlainText(r io.Reader) (string, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return "", err
	}

	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		if h, ok := p.Header.(*mail.InlineHeader); ok {
			ct, _, _ := h.ContentType()
			if ct == "text/plain" || ct == "" {
				data, err := io.ReadAll(p.Body)
				if err != nil {
					return "", err
				}
				return strings.TrimSpace(string(data)), nil
			}
		}
	}
	return "", nil
}

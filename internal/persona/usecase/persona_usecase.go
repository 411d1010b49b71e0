package usecase

import (
	"fmt"
	"sync"

	"persona-backend/internal/channel"
	personadomain "persona-backend/internal/persona/domain"
	"persona-backend/internal/persona/repository"
	"persona-backend/pkg/ai"
	"persona-backend/pkg/config"
	"persona-backend/pkg/prompts"
)

// personaUsecase implements PersonaUsecase interface
type personaUsecase struct {
	sampleRepo    repository.SampleRepository
	draftRepo     repository.DraftRepository
	messageRepo   repository.MessageRepository
	exclusionRepo repository.ExclusionRepository
	settingsRepo  repository.SettingsRepository
	vectorIndex   VectorIndex
	llm           ai.CompletionService
	prompts       *prompts.Loader
	sender        Sender
	config        *config.Config

	// Adapters registered for full rebuilds and named ingest runs.
	adapters map[string]channel.Adapter

	// rebuildMu is the rebuild barrier: rebuild holds the write lock,
	// everything that touches samples or vectors holds a read lock.
	rebuildMu sync.RWMutex
}

// NewPersonaUsecase creates a new instance of personaUsecase
func NewPersonaUsecase(
	sampleRepo repository.SampleRepository,
	draftRepo repository.DraftRepository,
	messageRepo repository.MessageRepository,
	exclusionRepo repository.ExclusionRepository,
	settingsRepo repository.SettingsRepository,
	vectorIndex VectorIndex,
	llm ai.CompletionService,
	promptLoader *prompts.Loader,
	sender Sender,
	cfg *config.Config,
) PersonaUsecase {
	return &personaUsecase{
		sampleRepo:    sampleRepo,
		draftRepo:     draftRepo,
		messageRepo:   messageRepo,
		exclusionRepo: exclusionRepo,
		settingsRepo:  settingsRepo,
		vectorIndex:   vectorIndex,
		llm:           llm,
		prompts:       promptLoader,
		sender:        sender,
		config:        cfg,
		adapters:      make(map[string]channel.Adapter),
	}
}

// RegisterAdapter wires a configured channel adapter. Registered
// adapters participate in rebuilds and named ingest runs.
func (u *personaUsecase) RegisterAdapter(adapter channel.Adapter) {
	u.adapters[adapter.SourceType()] = adapter
}

// Adapter returns the registered adapter for a source type.
func (u *personaUsecase) Adapter(sourceType string) (channel.Adapter, bool) {
	a, ok := u.adapters[sourceType]
	return a, ok
}

// IntakeMessage persists an inbound message handed over by a mail
// collaborator. Messages are immutable after creation.
func (u *personaUsecase) IntakeMessage(msg *personadomain.IncomingMessage) error {
	if msg.Sender == "" {
		return fmt.Errorf("sender is required")
	}
	if msg.Urgency == "" {
		msg.Urgency = personadomain.UrgencyRoutine
	}
	return u.messageRepo.Create(msg)
}

// ListDrafts returns drafts for the review queue, optionally filtered
// by status.
func (u *personaUsecase) ListDrafts(status string, limit, offset int) ([]personadomain.Draft, error) {
	return u.draftRepo.ListByStatus(status, limit, offset)
}

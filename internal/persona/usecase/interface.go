package usecase

import (
	"context"

	"persona-backend/internal/channel"
	personadomain "persona-backend/internal/persona/domain"
)

// VectorIndex is the interface for the semantic index over sample
// contents. Query returns parallel slices of ids, documents and cosine
// distances, ascending by distance; an empty index yields empty slices.
type VectorIndex interface {
	Add(ctx context.Context, ids []string, documents []string, metadatas []map[string]string) error
	Query(ctx context.Context, text string, k int) ([]string, []string, []float64, error)
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// Sender is the outbound mail contract. Returns (ok, message, providerID).
type Sender interface {
	SendEmail(recipient, subject, body, draftID string) (bool, string, string)
}

// IngestResult reports one adapter run. Partial success is the norm:
// Ingested counts samples saved before any error.
type IngestResult struct {
	SourceType string `json:"source_type"`
	Ingested   int    `json:"ingested"`
	Error      string `json:"error,omitempty"`
}

// ProcessReport summarizes one pass over undrafted incoming messages.
type ProcessReport struct {
	Processed int      `json:"processed"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors,omitempty"`
}

// RebuildReport summarizes a full rebuild.
type RebuildReport struct {
	IngestResults  []IngestResult `json:"ingest_results"`
	Embedded       int            `json:"embedded"`
	ProfileRebuilt bool           `json:"profile_rebuilt"`
	Errors         []string       `json:"errors,omitempty"`
}

// IngestStatus is the corpus overview for the status endpoint.
type IngestStatus struct {
	CountBySource map[string]int64 `json:"count_by_source"`
	TotalSamples  int64            `json:"total_samples"`
	Unembedded    int              `json:"unembedded"`
	Vectors       int              `json:"vectors"`
	HasProfile    bool             `json:"has_profile"`
}

// PersonaUsecase is the engine's public surface.
type PersonaUsecase interface {
	// Adapter wiring
	RegisterAdapter(adapter channel.Adapter)
	Adapter(sourceType string) (channel.Adapter, bool)

	// Ingestion
	IngestChannel(ctx context.Context, adapter channel.Adapter) IngestResult
	IngestConfigured(ctx context.Context, sourceType string) (IngestResult, error)
	EmbedPending(ctx context.Context) (int, error)
	Status(ctx context.Context) (*IngestStatus, error)

	// Profile
	BuildProfile(ctx context.Context) (*personadomain.StyleProfile, error)
	GetProfile() (*personadomain.StyleProfile, error)

	// Drafting
	IntakeMessage(msg *personadomain.IncomingMessage) error
	GenerateDraft(ctx context.Context, msg *personadomain.IncomingMessage) (*personadomain.Draft, bool, error)
	ProcessNewEmails(ctx context.Context) (*ProcessReport, error)
	ListDrafts(status string, limit, offset int) ([]personadomain.Draft, error)

	// Review actions
	ApproveDraft(id string) (*personadomain.Draft, error)
	RejectDraft(id string) (*personadomain.Draft, error)
	UpdateDraftBody(id, body string) (*personadomain.Draft, error)
	SendDraft(ctx context.Context, id string) (*personadomain.Draft, error)

	// Rebuild
	Rebuild(ctx context.Context) (*RebuildReport, error)
}

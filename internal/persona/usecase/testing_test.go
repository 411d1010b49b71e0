package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"persona-backend/internal/channel"
	personadomain "persona-backend/internal/persona/domain"
	"persona-backend/internal/persona/repository"
	"persona-backend/pkg/config"
	"persona-backend/pkg/prompts"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeVectorIndex is an in-memory VectorIndex with scriptable results.
type fakeVectorIndex struct {
	ids  []string
	docs []string

	queryDocs      []string
	queryDistances []float64

	failAdd   bool
	addCalls  int
	deleteAll int
}

func (f *fakeVectorIndex) Add(ctx context.Context, ids, documents []string, metadatas []map[string]string) error {
	f.addCalls++
	if f.failAdd {
		return fmt.Errorf("vector backend unavailable")
	}
	f.ids = append(f.ids, ids...)
	f.docs = append(f.docs, documents...)
	return nil
}

func (f *fakeVectorIndex) Query(ctx context.Context, text string, k int) ([]string, []string, []float64, error) {
	ids := make([]string, len(f.queryDocs))
	for i := range ids {
		ids[i] = fmt.Sprintf("sample_%d", i)
	}
	return ids, f.queryDocs, f.queryDistances, nil
}

func (f *fakeVectorIndex) DeleteAll(ctx context.Context) error {
	f.deleteAll++
	f.ids = nil
	f.docs = nil
	return nil
}

func (f *fakeVectorIndex) Count(ctx context.Context) (int, error) {
	return len(f.ids), nil
}

// fakeLLM returns a fixed response or error.
type fakeLLM struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

// fakeSender records sends and can simulate transport failure.
type fakeSender struct {
	fail  bool
	calls int
}

func (f *fakeSender) SendEmail(recipient, subject, body, draftID string) (bool, string, string) {
	f.calls++
	if f.fail {
		return false, "connection refused", ""
	}
	return true, "sent", "msg-" + draftID
}

// staticAdapter emits fixed texts for ingestion tests.
type staticAdapter struct {
	sourceType string
	texts      []string
	fetchErr   error
}

func (a *staticAdapter) SourceType() string { return a.sourceType }

func (a *staticAdapter) TestConnection(ctx context.Context) (bool, string) { return true, "ok" }

func (a *staticAdapter) Fetch(ctx context.Context, emit channel.Emit) error {
	for _, text := range a.texts {
		if err := emit(channel.Item{Text: text}); err != nil {
			return err
		}
	}
	return a.fetchErr
}

type testEnv struct {
	uc     *personaUsecase
	vector *fakeVectorIndex
	llm    *fakeLLM
	sender *fakeSender
	db     *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&personadomain.Sample{},
		&personadomain.IncomingMessage{},
		&personadomain.Draft{},
		&personadomain.ExclusionRule{},
		&personadomain.Setting{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	dir := t.TempDir()
	writeTemplate(t, dir, prompts.ProfileAnalysis, "Analyze:\n{corpus}")
	writeTemplate(t, dir, prompts.ReplyGeneration,
		"Profile: {persona_profile}\nExamples: {similar_examples}\nFrom: {sender}\nSubject: {subject}\nBody: {body}\nInstructions: {instructions}\nGoals: {goals}")

	vector := &fakeVectorIndex{}
	llm := &fakeLLM{response: `{"reply_body": "Sounds good, see you then.", "category": "acknowledgment", "reasoning": "confirmation"}`}
	sender := &fakeSender{}

	uc := NewPersonaUsecase(
		repository.NewSampleRepository(db),
		repository.NewDraftRepository(db),
		repository.NewMessageRepository(db),
		repository.NewExclusionRepository(db),
		repository.NewSettingsRepository(db),
		vector,
		llm,
		prompts.NewLoader(dir),
		sender,
		&config.Config{UserEmail: "me@example.com"},
	).(*personaUsecase)

	return &testEnv{uc: uc, vector: vector, llm: llm, sender: sender, db: db}
}

func writeTemplate(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write template %s: %v", name, err)
	}
}

func (e *testEnv) setSetting(t *testing.T, key, value string) {
	t.Helper()
	if err := e.uc.settingsRepo.Set(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func (e *testEnv) seedProfile(t *testing.T) {
	t.Helper()
	e.setSetting(t, personadomain.SettingProfile,
		`{"tone": "friendly", "formality_level": "casual"}`)
}

func (e *testEnv) intake(t *testing.T, msg *personadomain.IncomingMessage) *personadomain.IncomingMessage {
	t.Helper()
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Urgency == "" {
		msg.Urgency = personadomain.UrgencyRoutine
	}
	if err := e.uc.IntakeMessage(msg); err != nil {
		t.Fatalf("failed to intake message: %v", err)
	}
	return msg
}

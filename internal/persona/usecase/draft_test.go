package usecase

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	personadomain "persona-backend/internal/persona/domain"
)

func TestGenerateDraftCreatesOne(t *testing.T) {
	env := newTestEnv(t)
	env.seedProfile(t)

	msg := env.intake(t, &personadomain.IncomingMessage{
		Sender:  "alice@example.com",
		Subject: "Lunch tomorrow?",
		Body:    "Want to grab lunch tomorrow around noon?",
	})

	draft, created, err := env.uc.GenerateDraft(context.Background(), msg)
	if err != nil {
		t.Fatalf("GenerateDraft() error: %v", err)
	}
	if !created {
		t.Fatal("expected a draft to be created")
	}
	if draft.Recipient != "alice@example.com" {
		t.Errorf("recipient = %s", draft.Recipient)
	}
	if draft.Subject != "Re: Lunch tomorrow?" {
		t.Errorf("subject = %q, want Re: prefix", draft.Subject)
	}
	if draft.Body != "Sounds good, see you then." {
		t.Errorf("body = %q", draft.Body)
	}
	if draft.Category != personadomain.CategoryAcknowledgment {
		t.Errorf("category = %s", draft.Category)
	}
	if draft.Status != personadomain.StatusPendingReview {
		t.Errorf("status = %s, want pending_review under default manual level", draft.Status)
	}

	// Second run is a no-op for the same message.
	_, createdAgain, err := env.uc.GenerateDraft(context.Background(), msg)
	if err != nil {
		t.Fatalf("second GenerateDraft() error: %v", err)
	}
	if createdAgain {
		t.Error("expected at most one draft per message")
	}
}

func TestGenerateDraftKeepsExistingRePrefix(t *testing.T) {
	env := newTestEnv(t)
	env.seedProfile(t)

	msg := env.intake(t, &personadomain.IncomingMessage{
		Sender:  "bob@example.com",
		Subject: "Re: contract draft",
		Body:    "Any update on this?",
	})

	draft, _, err := env.uc.GenerateDraft(context.Background(), msg)
	if err != nil {
		t.Fatalf("GenerateDraft() error: %v", err)
	}
	if draft.Subject != "Re: contract draft" {
		t.Errorf("subject = %q, Re: prefix should not double", draft.Subject)
	}
}

func TestGenerateDraftSkipsSelfMail(t *testing.T) {
	env := newTestEnv(t)
	env.seedProfile(t)

	msg := env.intake(t, &personadomain.IncomingMessage{
		Sender:  "me@example.com",
		Subject: "note to self",
		Body:    "remember to book the flight",
	})

	_, created, err := env.uc.GenerateDraft(context.Background(), msg)
	if err != nil {
		t.Fatalf("GenerateDraft() error: %v", err)
	}
	if created {
		t.Error("expected self-mail to be skipped")
	}
}

func TestGenerateDraftSkipsExcludedSender(t *testing.T) {
	env := newTestEnv(t)
	env.seedProfile(t)

	if _, err := env.uc.exclusionRepo.Create("@spam.example.com", "newsletter"); err != nil {
		t.Fatalf("failed to create exclusion: %v", err)
	}

	msg := env.intake(t, &personadomain.IncomingMessage{
		Sender:  "noreply@spam.example.com",
		Subject: "weekly digest",
		Body:    "here is everything that happened this week",
	})

	_, created, err := env.uc.GenerateDraft(context.Background(), msg)
	if err != nil {
		t.Fatalf("GenerateDraft() error: %v", err)
	}
	if created {
		t.Error("expected excluded sender to be skipped")
	}
}

func TestGenerateDraftRequiresProfile(t *testing.T) {
	env := newTestEnv(t)

	msg := env.intake(t, &personadomain.IncomingMessage{
		Sender:  "alice@example.com",
		Subject: "hi",
		Body:    "just checking in on the project",
	})

	_, _, err := env.uc.GenerateDraft(context.Background(), msg)
	if err == nil {
		t.Fatal("expected error without a profile")
	}
}

func TestGenerateDraftUnstructuredFallback(t *testing.T) {
	env := newTestEnv(t)
	env.seedProfile(t)
	env.llm.response = "Sure, happy to help with that. Let me know what works."

	msg := env.intake(t, &personadomain.IncomingMessage{
		Sender:  "carol@example.com",
		Subject: "favor",
		Body:    "could you help me review this document next week?",
	})

	draft, created, err := env.uc.GenerateDraft(context.Background(), msg)
	if err != nil {
		t.Fatalf("GenerateDraft() error: %v", err)
	}
	if !created {
		t.Fatal("expected a draft")
	}
	if draft.Body != env.llm.response {
		t.Errorf("body = %q, want raw completion", draft.Body)
	}
	if draft.Category != personadomain.CategoryGeneral {
		t.Errorf("category = %s, want general", draft.Category)
	}
	if draft.Reasoning != "unstructured" {
		t.Errorf("reasoning = %s", draft.Reasoning)
	}
}

func TestGenerateDraftInvalidCategoryDegrades(t *testing.T) {
	env := newTestEnv(t)
	env.seedProfile(t)
	env.llm.response = `{"reply_body": "Done.", "category": "wizardry", "reasoning": "made up"}`

	msg := env.intake(t, &personadomain.IncomingMessage{
		Sender:  "dave@example.com",
		Subject: "task",
		Body:    "please handle the thing we discussed yesterday",
	})

	draft, _, err := env.uc.GenerateDraft(context.Background(), msg)
	if err != nil {
		t.Fatalf("GenerateDraft() error: %v", err)
	}
	if draft.Category != personadomain.CategoryGeneral {
		t.Errorf("category = %s, want general for out-of-set value", draft.Category)
	}
}

func TestGenerateDraftAutoApproval(t *testing.T) {
	env := newTestEnv(t)
	env.seedProfile(t)
	env.setSetting(t, personadomain.SettingAutomationLevel, personadomain.LevelSemiAuto)
	env.setSetting(t, personadomain.SettingConfidenceThreshold, "0.85")
	env.vector.queryDocs = []string{"sounds good, confirmed for tomorrow"}
	env.vector.queryDistances = []float64{0.10}

	// Known sender needs prior traffic that arrived strictly earlier.
	env.intake(t, &personadomain.IncomingMessage{
		Sender:  "alice@example.com",
		Subject: "earlier thread",
		Body:    "following up from last week about the roadmap",
	})
	time.Sleep(2 * time.Millisecond)

	msg := env.intake(t, &personadomain.IncomingMessage{
		Sender:  "alice@example.com",
		Subject: "Meeting confirmation",
		Body:    "Just confirming our meeting tomorrow at 10am.",
	})

	draft, _, err := env.uc.GenerateDraft(context.Background(), msg)
	if err != nil {
		t.Fatalf("GenerateDraft() error: %v", err)
	}
	if draft.Confidence != 0.90 {
		t.Errorf("confidence = %.2f, want 0.90", draft.Confidence)
	}
	if draft.Status != personadomain.StatusAutoApproved {
		t.Errorf("status = %s, want auto_approved", draft.Status)
	}
}

func TestGenerateDraftTruncatesOriginalBody(t *testing.T) {
	env := newTestEnv(t)
	env.seedProfile(t)

	msg := env.intake(t, &personadomain.IncomingMessage{
		Sender:  "erin@example.com",
		Subject: "long one",
		Body:    strings.Repeat("a very long message body ", 400),
	})

	draft, _, err := env.uc.GenerateDraft(context.Background(), msg)
	if err != nil {
		t.Fatalf("GenerateDraft() error: %v", err)
	}
	if len(draft.OriginalBody) != originalBodyKeep {
		t.Errorf("original body length = %d, want %d", len(draft.OriginalBody), originalBodyKeep)
	}
}

func TestProcessNewEmails(t *testing.T) {
	env := newTestEnv(t)
	env.seedProfile(t)

	env.intake(t, &personadomain.IncomingMessage{
		Sender:  "alice@example.com",
		Subject: "one",
		Body:    "first message needing a reply from you",
	})
	env.intake(t, &personadomain.IncomingMessage{
		Sender:  "me@example.com",
		Subject: "self",
		Body:    "self-addressed note that should be skipped",
	})

	report, err := env.uc.ProcessNewEmails(context.Background())
	if err != nil {
		t.Fatalf("ProcessNewEmails() error: %v", err)
	}
	if report.Processed != 1 {
		t.Errorf("processed = %d, want 1", report.Processed)
	}
	if report.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", report.Skipped)
	}

	// Second pass finds nothing undrafted except the skipped self-mail.
	report, err = env.uc.ProcessNewEmails(context.Background())
	if err != nil {
		t.Fatalf("second ProcessNewEmails() error: %v", err)
	}
	if report.Processed != 0 {
		t.Errorf("second pass processed = %d, want 0", report.Processed)
	}
}

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	tests := []struct {
		name string
		s    string
		max  int
		want string
	}{
		{"short stays whole", "hello", 10, "hello"},
		{"ascii cuts exactly", "hello world", 5, "hello"},
		{"two-byte rune not split", "héllo", 2, "h"},
		{"cut lands on boundary", "héllo", 3, "hé"},
		{"multibyte tail dropped whole", "日本語", 4, "日"},
		{"zero max", "日本語", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.s, tt.max)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.s, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.s, tt.max)
			}
			if len(got) > tt.max {
				t.Errorf("truncate(%q, %d) kept %d bytes", tt.s, tt.max, len(got))
			}
		})
	}
}

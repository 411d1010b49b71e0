package repository

import (
	"testing"
	"time"

	personadomain "persona-backend/internal/persona/domain"

	"github.com/google/uuid"
)

func seedMessage(t *testing.T, repo MessageRepository, sender string) *personadomain.IncomingMessage {
	t.Helper()
	msg := &personadomain.IncomingMessage{
		ID:         uuid.New().String(),
		Sender:     sender,
		Subject:    "subject",
		Body:       "body",
		Urgency:    personadomain.UrgencyRoutine,
		ReceivedAt: time.Now(),
	}
	if err := repo.Create(msg); err != nil {
		t.Fatalf("failed to create message: %v", err)
	}
	return msg
}

func TestDraftUniquePerMessage(t *testing.T) {
	db := newTestDB(t)
	draftRepo := NewDraftRepository(db)
	msgRepo := NewMessageRepository(db)

	msg := seedMessage(t, msgRepo, "alice@example.com")

	first := &personadomain.Draft{
		ID:                uuid.New().String(),
		IncomingMessageID: &msg.ID,
		Recipient:         msg.Sender,
		Status:            personadomain.StatusPendingReview,
	}
	if err := draftRepo.Create(first); err != nil {
		t.Fatalf("first draft failed: %v", err)
	}

	second := &personadomain.Draft{
		ID:                uuid.New().String(),
		IncomingMessageID: &msg.ID,
		Recipient:         msg.Sender,
		Status:            personadomain.StatusPendingReview,
	}
	if err := draftRepo.Create(second); err == nil {
		t.Error("expected unique index to reject a second draft for the message")
	}

	exists, err := draftRepo.ExistsForMessage(msg.ID)
	if err != nil {
		t.Fatalf("ExistsForMessage failed: %v", err)
	}
	if !exists {
		t.Error("ExistsForMessage should report the first draft")
	}
}

func TestDraftListByStatus(t *testing.T) {
	db := newTestDB(t)
	draftRepo := NewDraftRepository(db)
	msgRepo := NewMessageRepository(db)

	for _, status := range []string{
		personadomain.StatusPendingReview,
		personadomain.StatusPendingReview,
		personadomain.StatusSent,
	} {
		msg := seedMessage(t, msgRepo, "bob@example.com")
		draft := &personadomain.Draft{
			ID:                uuid.New().String(),
			IncomingMessageID: &msg.ID,
			Recipient:         msg.Sender,
			Status:            status,
		}
		if err := draftRepo.Create(draft); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	pending, err := draftRepo.ListByStatus(personadomain.StatusPendingReview, 10, 0)
	if err != nil {
		t.Fatalf("ListByStatus failed: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("pending = %d, want 2", len(pending))
	}

	all, err := draftRepo.ListByStatus("", 10, 0)
	if err != nil {
		t.Fatalf("ListByStatus failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all = %d, want 3", len(all))
	}
}

func TestMessageListUndrafted(t *testing.T) {
	db := newTestDB(t)
	draftRepo := NewDraftRepository(db)
	msgRepo := NewMessageRepository(db)

	drafted := seedMessage(t, msgRepo, "carol@example.com")
	undrafted := seedMessage(t, msgRepo, "dave@example.com")

	draft := &personadomain.Draft{
		ID:                uuid.New().String(),
		IncomingMessageID: &drafted.ID,
		Recipient:         drafted.Sender,
		Status:            personadomain.StatusPendingReview,
	}
	if err := draftRepo.Create(draft); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	msgs, err := msgRepo.ListUndrafted(10)
	if err != nil {
		t.Fatalf("ListUndrafted failed: %v", err)
	}
	if len(msgs) != 1 || msgs[0].ID != undrafted.ID {
		t.Errorf("undrafted = %v", msgs)
	}
}

func TestMessageKnownSenders(t *testing.T) {
	db := newTestDB(t)
	msgRepo := NewMessageRepository(db)

	seedMessage(t, msgRepo, "old@example.com")
	time.Sleep(2 * time.Millisecond)
	current := seedMessage(t, msgRepo, "new@example.com")

	senders, err := msgRepo.KnownSenders(current.ID)
	if err != nil {
		t.Fatalf("KnownSenders failed: %v", err)
	}
	if len(senders) != 1 || senders[0] != "old@example.com" {
		t.Errorf("senders = %v, current message must be excluded", senders)
	}
}

func TestMessageKnownSendersBatchFirstContact(t *testing.T) {
	db := newTestDB(t)
	msgRepo := NewMessageRepository(db)

	seedMessage(t, msgRepo, "established@example.com")
	time.Sleep(2 * time.Millisecond)
	first := seedMessage(t, msgRepo, "stranger@example.com")
	time.Sleep(2 * time.Millisecond)
	second := seedMessage(t, msgRepo, "stranger@example.com")

	// Two first-contact messages arriving in one batch must not vouch
	// for each other: the stranger's earlier message sees only senders
	// that arrived before it.
	senders, err := msgRepo.KnownSenders(first.ID)
	if err != nil {
		t.Fatalf("KnownSenders failed: %v", err)
	}
	for _, s := range senders {
		if s == "stranger@example.com" {
			t.Errorf("later message from the same new sender leaked into %v", senders)
		}
	}
	if len(senders) != 1 || senders[0] != "established@example.com" {
		t.Errorf("senders = %v, want only the established sender", senders)
	}

	// The second message does see the first, which arrived earlier.
	senders, err = msgRepo.KnownSenders(second.ID)
	if err != nil {
		t.Fatalf("KnownSenders failed: %v", err)
	}
	found := false
	for _, s := range senders {
		if s == "stranger@example.com" {
			found = true
		}
	}
	if !found {
		t.Errorf("senders = %v, earlier message from the sender should count", senders)
	}
}

func TestSettingsUpsert(t *testing.T) {
	repo := NewSettingsRepository(newTestDB(t))

	if v, err := repo.Get("missing"); err != nil || v != "" {
		t.Fatalf("missing key: v=%q err=%v", v, err)
	}

	if err := repo.Set(personadomain.SettingAutomationLevel, personadomain.LevelManual); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := repo.Set(personadomain.SettingAutomationLevel, personadomain.LevelFullAuto); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	v, err := repo.Get(personadomain.SettingAutomationLevel)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if v != personadomain.LevelFullAuto {
		t.Errorf("value = %s, want full_auto", v)
	}

	all, err := repo.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("settings rows = %d, want 1 after upsert", len(all))
	}
}

func TestExclusionRules(t *testing.T) {
	repo := NewExclusionRepository(newTestDB(t))

	rule, err := repo.Create("MiXeD@Example.COM", "test")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if rule.Pattern != "mixed@example.com" {
		t.Errorf("pattern = %s, want lowercased", rule.Pattern)
	}
	if !rule.Matches("mixed@EXAMPLE.com") {
		t.Error("exact match should be case-insensitive")
	}

	domainRule, err := repo.Create("@blocked.io", "domain block")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !domainRule.Matches("anyone@blocked.io") {
		t.Error("domain rule should match any sender at the domain")
	}
	if domainRule.Matches("anyone@notblocked.io") {
		t.Error("domain rule must not match other domains")
	}

	rules, err := repo.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("rules = %d, want 2", len(rules))
	}

	if err := repo.Delete(rule.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	rules, _ = repo.List()
	if len(rules) != 1 {
		t.Errorf("rules after delete = %d, want 1", len(rules))
	}
}

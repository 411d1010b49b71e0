package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	personadomain "persona-backend/internal/persona/domain"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func TestSampleSaveDedup(t *testing.T) {
	repo := NewSampleRepository(newTestDB(t))

	inserted, err := repo.Save("the same content", personadomain.SourceChat, "hash-a", nil)
	if err != nil || !inserted {
		t.Fatalf("first save: inserted=%v err=%v", inserted, err)
	}

	inserted, err = repo.Save("the same content", personadomain.SourceChat, "hash-a", nil)
	if err != nil {
		t.Fatalf("duplicate save errored: %v", err)
	}
	if inserted {
		t.Error("duplicate (source, hash) must be a silent no-insert")
	}

	// Same hash under a different source type is a new sample.
	inserted, err = repo.Save("the same content", personadomain.SourceSlack, "hash-a", nil)
	if err != nil || !inserted {
		t.Fatalf("cross-source save: inserted=%v err=%v", inserted, err)
	}

	count, err := repo.Count()
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestSampleUnembeddedLifecycle(t *testing.T) {
	repo := NewSampleRepository(newTestDB(t))

	for i := 0; i < 3; i++ {
		if _, err := repo.Save(fmt.Sprintf("content %d", i), personadomain.SourceChat, fmt.Sprintf("h%d", i), nil); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		time.Sleep(2 * time.Millisecond) // distinct created_at for ordering
	}

	samples, err := repo.GetUnembedded(2)
	if err != nil {
		t.Fatalf("GetUnembedded failed: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(samples))
	}
	if samples[0].Content != "content 0" {
		t.Errorf("oldest first expected, got %q", samples[0].Content)
	}

	if err := repo.MarkEmbedded(samples[0].ID); err != nil {
		t.Fatalf("MarkEmbedded failed: %v", err)
	}
	// Idempotent re-mark.
	if err := repo.MarkEmbedded(samples[0].ID); err != nil {
		t.Fatalf("second MarkEmbedded failed: %v", err)
	}

	remaining, err := repo.GetUnembedded(0)
	if err != nil {
		t.Fatalf("GetUnembedded failed: %v", err)
	}
	if len(remaining) != 2 {
		t.Errorf("remaining = %d, want 2", len(remaining))
	}
}

func TestSampleMetadataRoundTrip(t *testing.T) {
	repo := NewSampleRepository(newTestDB(t))

	meta := map[string]string{"filename": "notes.pdf", "page": "3"}
	if _, err := repo.Save("document chunk content", personadomain.SourceDocument, "dh", meta); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	samples, err := repo.GetUnembedded(1)
	if err != nil || len(samples) != 1 {
		t.Fatalf("fetch failed: %v (%d samples)", err, len(samples))
	}
	if samples[0].Metadata["filename"] != "notes.pdf" {
		t.Errorf("metadata = %v", samples[0].Metadata)
	}
}

func TestSamplePoolAndClear(t *testing.T) {
	repo := NewSampleRepository(newTestDB(t))

	for i := 0; i < 10; i++ {
		if _, err := repo.Save(fmt.Sprintf("pool content %d", i), personadomain.SourceChat, fmt.Sprintf("p%d", i), nil); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	picked, err := repo.SamplePool(4, 8)
	if err != nil {
		t.Fatalf("SamplePool failed: %v", err)
	}
	if len(picked) != 4 {
		t.Errorf("picked = %d, want 4", len(picked))
	}

	// Asking for more than exists returns everything available.
	all, err := repo.SamplePool(50, 200)
	if err != nil {
		t.Fatalf("SamplePool failed: %v", err)
	}
	if len(all) != 10 {
		t.Errorf("pool = %d, want 10", len(all))
	}

	if err := repo.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	count, err := repo.Count()
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count after clear = %d, want 0", count)
	}
}

func TestSampleHashSet(t *testing.T) {
	repo := NewSampleRepository(newTestDB(t))

	if _, err := repo.Save("chat content", personadomain.SourceChat, "ch", nil); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := repo.Save("slack content", personadomain.SourceSlack, "sh", nil); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	set, err := repo.HashSet(personadomain.SourceChat)
	if err != nil {
		t.Fatalf("HashSet failed: %v", err)
	}
	if _, ok := set["ch"]; !ok {
		t.Error("chat hash missing from set")
	}
	if _, ok := set["sh"]; ok {
		t.Error("slack hash leaked into chat set")
	}
}

func TestCountBySource(t *testing.T) {
	repo := NewSampleRepository(newTestDB(t))

	for i := 0; i < 3; i++ {
		if _, err := repo.Save(fmt.Sprintf("chat %d", i), personadomain.SourceChat, fmt.Sprintf("c%d", i), nil); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	if _, err := repo.Save("slack one", personadomain.SourceSlack, "s0", nil); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	counts, err := repo.CountBySource()
	if err != nil {
		t.Fatalf("CountBySource failed: %v", err)
	}
	if counts[personadomain.SourceChat] != 3 || counts[personadomain.SourceSlack] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

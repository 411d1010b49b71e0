package usecase

import (
	"context"
	"fmt"
	"log"
)

// Rebuild tears down and reconstructs the learned corpus in strict
// order: vectors, then samples, then re-ingest, re-embed, re-profile.
// The write lock blocks all ingestion and embedding for the duration.
// A crash mid-rebuild leaves a partial corpus; re-running the rebuild
// is the recovery path.
func (u *personaUsecase) Rebuild(ctx context.Context) (*RebuildReport, error) {
	u.rebuildMu.Lock()
	defer u.rebuildMu.Unlock()

	log.Println("[Rebuild] Starting full rebuild")
	report := &RebuildReport{}

	if err := u.vectorIndex.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear vector index: %w", err)
	}
	if err := u.sampleRepo.Clear(); err != nil {
		return nil, fmt.Errorf("failed to clear samples: %w", err)
	}

	for _, adapter := range u.adapters {
		result := u.ingestChannel(ctx, adapter)
		report.IngestResults = append(report.IngestResults, result)
		if result.Error != "" {
			report.Errors = append(report.Errors, fmt.Sprintf("ingest %s: %s", result.SourceType, result.Error))
		}
	}

	embedded, err := u.embedPending(ctx)
	report.Embedded = embedded
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("embed: %v", err))
	}

	if _, err := u.buildProfile(ctx); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("profile: %v", err))
	} else {
		report.ProfileRebuilt = true
	}

	log.Printf("[Rebuild] Done: %d sources, %d embedded, profile rebuilt: %v, errors: %d",
		len(report.IngestResults), report.Embedded, report.ProfileRebuilt, len(report.Errors))
	return report, nil
}

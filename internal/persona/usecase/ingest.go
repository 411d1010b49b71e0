package usecase

import (
	"context"
	"fmt"
	"log"

	"persona-backend/internal/channel"
)

// IngestChannel runs one adapter through the normalize → chunk → dedup
// pipeline. Already-saved samples survive any mid-run failure; the
// result reports the count so far plus the error.
func (u *personaUsecase) IngestChannel(ctx context.Context, adapter channel.Adapter) IngestResult {
	u.rebuildMu.RLock()
	defer u.rebuildMu.RUnlock()
	return u.ingestChannel(ctx, adapter)
}

// IngestConfigured runs the registered adapter for a source type.
func (u *personaUsecase) IngestConfigured(ctx context.Context, sourceType string) (IngestResult, error) {
	adapter, ok := u.adapters[sourceType]
	if !ok {
		return IngestResult{}, fmt.Errorf("no adapter configured for source type %q", sourceType)
	}
	return u.IngestChannel(ctx, adapter), nil
}

func (u *personaUsecase) ingestChannel(ctx context.Context, adapter channel.Adapter) IngestResult {
	sourceType := adapter.SourceType()
	result := IngestResult{SourceType: sourceType}

	// Preload the dedup set once; inserts during the run extend it.
	hashes, err := u.sampleRepo.HashSet(sourceType)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	maxChars := maxCharsFor(sourceType)

	fetchErr := adapter.Fetch(ctx, func(item channel.Item) error {
		text := NormalizeText(item.Text)
		for _, chunk := range ChunkText(text, maxChars) {
			hash := HashChunk(chunk)
			if _, seen := hashes[hash]; seen {
				continue
			}

			inserted, err := u.sampleRepo.Save(chunk, sourceType, hash, item.Metadata)
			if err != nil {
				return err
			}
			hashes[hash] = struct{}{}
			if inserted {
				result.Ingested++
			}
		}
		return nil
	})

	if fetchErr != nil {
		result.Error = fetchErr.Error()
		log.Printf("[Ingest] %s stopped after %d samples: %v", sourceType, result.Ingested, fetchErr)
	} else {
		log.Printf("[Ingest] %s ingested %d samples", sourceType, result.Ingested)
	}
	return result
}

// Status reports corpus counts and index health.
func (u *personaUsecase) Status(ctx context.Context) (*IngestStatus, error) {
	u.rebuildMu.RLock()
	defer u.rebuildMu.RUnlock()

	counts, err := u.sampleRepo.CountBySource()
	if err != nil {
		return nil, err
	}

	total, err := u.sampleRepo.Count()
	if err != nil {
		return nil, err
	}

	unembedded, err := u.sampleRepo.GetUnembedded(0)
	if err != nil {
		return nil, err
	}

	vectors, err := u.vectorIndex.Count(ctx)
	if err != nil {
		log.Printf("[Status] Vector count unavailable: %v", err)
		vectors = -1
	}

	profile, err := u.GetProfile()
	if err != nil {
		return nil, err
	}

	return &IngestStatus{
		CountBySource: counts,
		TotalSamples:  total,
		Unembedded:    len(unembedded),
		Vectors:       vectors,
		HasProfile:    profile != nil,
	}, nil
}

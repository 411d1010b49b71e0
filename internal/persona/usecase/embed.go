package usecase

import (
	"context"
	"log"
	"time"
)

// embedBatchSize matches the vector backend's insert limit.
const embedBatchSize = 100

// EmbedPending pushes unembedded samples into the vector index in
// batches. A sample is marked embedded only after its batch succeeds;
// failed batches stay pending and are retried on the next run.
func (u *personaUsecase) EmbedPending(ctx context.Context) (int, error) {
	u.rebuildMu.RLock()
	defer u.rebuildMu.RUnlock()
	return u.embedPending(ctx)
}

func (u *personaUsecase) embedPending(ctx context.Context) (int, error) {
	total := 0
	for {
		samples, err := u.sampleRepo.GetUnembedded(embedBatchSize)
		if err != nil {
			return total, err
		}
		if len(samples) == 0 {
			return total, nil
		}

		ids := make([]string, 0, len(samples))
		docs := make([]string, 0, len(samples))
		metas := make([]map[string]string, 0, len(samples))
		for _, s := range samples {
			ids = append(ids, s.VectorID())
			docs = append(docs, s.Content)

			meta := map[string]string{}
			for k, v := range s.Metadata {
				meta[k] = v
			}
			meta["source_type"] = s.SourceType
			meta["sample_id"] = s.ID
			metas = append(metas, meta)
		}

		if err := u.vectorIndex.Add(ctx, ids, docs, metas); err != nil {
			// embedded_at stays null so the batch is retried later.
			return total, err
		}

		marked := 0
		for _, s := range samples {
			if err := u.sampleRepo.MarkEmbedded(s.ID); err != nil {
				log.Printf("[Embed] Failed to mark sample %s embedded: %v", s.ID, err)
				continue
			}
			marked++
		}
		total += marked

		if marked == 0 {
			// Nothing progressed; bail out instead of spinning.
			return total, nil
		}
		if len(samples) < embedBatchSize {
			return total, nil
		}
	}
}

// EmbedScheduler periodically drains the unembedded backlog, adapted
// from the reminder-scheduler pattern.
type EmbedScheduler struct {
	usecase  PersonaUsecase
	interval time.Duration
	stopChan chan struct{}
}

// NewEmbedScheduler creates a new scheduler
func NewEmbedScheduler(uc PersonaUsecase, interval time.Duration) *EmbedScheduler {
	if interval <= 0 {
		interval = 1 * time.Minute
	}
	return &EmbedScheduler{
		usecase:  uc,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *EmbedScheduler) Start() {
	log.Printf("[EmbedScheduler] Starting (interval: %s)", s.interval)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				n, err := s.usecase.EmbedPending(ctx)
				cancel()
				if err != nil {
					log.Printf("[EmbedScheduler] Embed run failed after %d samples: %v", n, err)
				} else if n > 0 {
					log.Printf("[EmbedScheduler] Embedded %d samples", n)
				}
			case <-s.stopChan:
				log.Println("[EmbedScheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *EmbedScheduler) Stop() {
	close(s.stopChan)
}

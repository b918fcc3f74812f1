package reprocess

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/distillery/core"
	"github.com/poiesic/distillery/distill"
	"github.com/poiesic/distillery/storage"
)

// Redistiller re-runs the distillation pipeline over stored knowledge
// records, replacing their cards. Use it after a prompt or chat model
// change, or to retry records that failed.
type Redistiller struct {
	repo     storage.KnowledgeRepository
	pipeline *distill.Pipeline
	config   *Config
	progress io.Writer
	iterator *RecordIterator

	// OnlyFailed restricts the run to records in the failed status.
	OnlyFailed bool
}

// NewRedistiller creates a new redistiller.
// progress: where to write progress output (typically os.Stderr)
func NewRedistiller(repo storage.KnowledgeRepository, pipeline *distill.Pipeline, config *Config, progress io.Writer) *Redistiller {
	if config == nil {
		config = DefaultConfig()
	}

	return &Redistiller{
		repo:     repo,
		pipeline: pipeline,
		config:   config,
		progress: progress,
		iterator: NewRecordIterator(repo, config.BatchSize),
	}
}

// Run executes the redistillation operation. Each selected record is
// distilled again and its card and embedding text replaced; the
// embedding itself is regenerated by a subsequent reembedding run.
func (r *Redistiller) Run(ctx context.Context) error {
	total, err := r.repo.CountKnowledgeRecords(ctx)
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}

	if total == 0 {
		fmt.Fprintf(r.progress, "No records found in database (0 records)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting redistillation of up to %d records\n", total)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0
	skipped := 0

	err = r.iterator.ForEach(ctx, func(records []*core.KnowledgeRecord) error {
		for _, record := range records {
			if r.OnlyFailed && record.Status != core.StatusFailed {
				skipped++
				tracker.Increment(1)
				continue
			}

			card, runErr := r.pipeline.Run(ctx, distill.Input{
				Content: record.OriginalContent,
				Images:  record.Images,
				Label:   fmt.Sprintf("%d", record.Id),
			})

			record.Card = card
			record.Status = core.StatusCompleted
			if runErr != nil {
				// No analysis happened, keep the record eligible for
				// another retry pass.
				record.Status = core.StatusFailed
			}
			record.ProcessedAt = time.Now().UTC()

			if _, err := r.repo.UpdateKnowledgeRecords(ctx, record); err != nil {
				return fmt.Errorf("failed to update record %d: %w", record.Id, err)
			}

			processed++
			tracker.Increment(1)
		}
		return nil
	})
	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Redistillation complete. Processed %d records, skipped %d, in %v\n",
		processed, skipped, elapsed.Round(time.Second))

	return nil
}

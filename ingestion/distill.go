package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/distillery/core"
	"github.com/poiesic/distillery/distill"
	"github.com/poiesic/distillery/storage"
)

// distillProcessor runs the distillation pipeline over knowledge
// records and stores the resulting cards.
type distillProcessor struct {
	repository storage.KnowledgeRepository
	pipeline   *distill.Pipeline
	logger     *slog.Logger
}

var _ processor = (*distillProcessor)(nil)

// newDistillProcessor creates a new distillation processor.
func newDistillProcessor(repository storage.KnowledgeRepository, pipeline *distill.Pipeline, logger *slog.Logger) (processor, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if pipeline == nil {
		return nil, fmt.Errorf("distillation pipeline required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &distillProcessor{
		repository: repository,
		pipeline:   pipeline,
		logger:     logger.With("processor", "distill"),
	}, nil
}

// process distills the specified knowledge records. Each record moves
// through processing to completed. Records the pipeline could not
// analyze at all, and records whose state cannot be persisted, end up
// failed so a later redistillation pass can pick them up.
func (dp *distillProcessor) process(ctx context.Context, ids ...core.ID) error {
	dp.logger.Info("distilling records", "records", len(ids))

	for _, id := range ids {
		record, err := dp.repository.GetKnowledgeRecord(ctx, id)
		if err != nil {
			dp.logger.Error("error retrieving knowledge record", "id", id, "err", err)
			return err
		}

		record.Status = core.StatusProcessing
		if _, err := dp.repository.UpdateKnowledgeRecords(ctx, record); err != nil {
			dp.logger.Error("error marking record as processing", "id", id, "err", err)
			return err
		}

		card, runErr := dp.pipeline.Run(ctx, distill.Input{
			Content: record.OriginalContent,
			Images:  record.Images,
			Label:   fmt.Sprintf("%d", record.Id),
		})

		record.Card = card
		if record.Title == "" {
			record.Title = card.Title
		}
		record.Status = core.StatusCompleted
		if runErr != nil {
			dp.logger.Warn("distillation produced no analysis", "id", id, "err", runErr)
			record.Status = core.StatusFailed
		}
		record.ProcessedAt = time.Now().UTC()

		if _, err := dp.repository.UpdateKnowledgeRecords(ctx, record); err != nil {
			dp.logger.Error("error storing distilled card", "id", id, "err", err)
			dp.markFailed(ctx, record)
			return err
		}
	}

	return nil
}

// markFailed flips a record to the failed status, best effort.
func (dp *distillProcessor) markFailed(ctx context.Context, record *core.KnowledgeRecord) {
	record.Status = core.StatusFailed
	if _, err := dp.repository.UpdateKnowledgeRecords(ctx, record); err != nil {
		dp.logger.Error("error marking record as failed", "id", record.Id, "err", err)
	}
}

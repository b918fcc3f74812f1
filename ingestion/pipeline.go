package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/distillery/ai"
	"github.com/poiesic/distillery/core"
	"github.com/poiesic/distillery/distill"
	"github.com/poiesic/distillery/notify"
	"github.com/poiesic/distillery/storage"
)

// Pipeline orchestrates the ingestion and processing of knowledge
// records: raw material goes into storage immediately, then worker
// pools distill it into cards and embed the results.
type Pipeline struct {
	repository  storage.KnowledgeRepository
	distillPool *ants.Pool
	embedPool   *ants.Pool
	distillProc processor
	embedProc   processor
	notifier    notify.Notifier
	resolver    ai.ImageResolver
	distillOpts []distill.Option
	inline      bool
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pools
		if p.distillPool != nil {
			p.distillPool.Release()
		}
		if p.embedPool != nil {
			p.embedPool.Release()
		}

		distillPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		embedPool, err := ants.NewPool(size)
		if err != nil {
			distillPool.Release()
			return err
		}

		p.distillPool = distillPool
		p.embedPool = embedPool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithNotifier sets the notifier forwarded to the distillation
// pipeline for progress messages.
func WithNotifier(notifier notify.Notifier) Option {
	return func(p *Pipeline) error {
		p.notifier = notifier
		return nil
	}
}

// WithImageResolver sets the resolver used to load image references
// attached to records.
func WithImageResolver(resolver ai.ImageResolver) Option {
	return func(p *Pipeline) error {
		p.resolver = resolver
		return nil
	}
}

// WithInlineProcessing makes Ingest distill and embed each record
// before returning instead of scheduling the work on the worker pools.
// Callers that need the finished card by the time Ingest returns, like
// CLI one-shots, use this so no background run of the same record races
// them.
func WithInlineProcessing() Option {
	return func(p *Pipeline) error {
		p.inline = true
		return nil
	}
}

// WithDistillOptions appends extra options for the underlying
// distillation pipeline, e.g. custom timeouts.
func WithDistillOptions(opts ...distill.Option) Option {
	return func(p *Pipeline) error {
		p.distillOpts = append(p.distillOpts, opts...)
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	repository storage.KnowledgeRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	distillPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	embedPool, err := ants.NewPool(poolSize)
	if err != nil {
		distillPool.Release()
		return nil, err
	}

	p := &Pipeline{
		repository:  repository,
		distillPool: distillPool,
		embedPool:   embedPool,
		logger:      slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Create processors after options are applied (so they get final config)
	distillOpts := []distill.Option{distill.WithLogger(p.logger)}
	if p.notifier != nil {
		distillOpts = append(distillOpts, distill.WithNotifier(p.notifier))
	}
	if p.resolver != nil {
		distillOpts = append(distillOpts, distill.WithImageResolver(p.resolver))
	}
	distillOpts = append(distillOpts, p.distillOpts...)

	distillPipeline, err := distill.NewPipeline(provider.Gateway(), distillOpts...)
	if err != nil {
		p.Release()
		return nil, err
	}

	distillProc, err := newDistillProcessor(repository, distillPipeline, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}

	embedProc, err := newEmbeddingProcessor(repository, provider.Embedder(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}

	p.distillProc = distillProc
	p.embedProc = embedProc

	return p, nil
}

// IngestRequest describes one piece of raw material to capture.
type IngestRequest struct {
	Content    string
	Images     []string
	SourceType core.SourceType
	SourceURL  string
	Title      string
	CreatedAt  time.Time // Optional; current time if zero
}

// Ingest stores the raw material as a pending knowledge record and
// schedules asynchronous distillation and embedding. Errors during
// processing are logged but do not fail the ingestion.
//
// With WithInlineProcessing the record is processed before Ingest
// returns, and the returned record carries the stored card.
func (p *Pipeline) Ingest(ctx context.Context, req IngestRequest) (*core.KnowledgeRecord, error) {
	sourceType := req.SourceType
	if sourceType == "" {
		sourceType = core.SourceTypeManual
		if req.Content == "" && len(req.Images) > 0 {
			sourceType = core.SourceTypeImage
		}
	}

	record := &core.KnowledgeRecord{
		Title:           req.Title,
		OriginalContent: req.Content,
		Images:          req.Images,
		SourceType:      sourceType,
		SourceURL:       req.SourceURL,
		Status:          core.StatusPending,
		CreatedAt:       req.CreatedAt,
	}

	if err := core.ValidateKnowledgeRecord(record); err != nil {
		return nil, err
	}

	added, err := p.repository.AddKnowledgeRecords(ctx, record)
	if err != nil {
		return nil, err
	}
	record = added[0]

	id := record.Id

	if p.inline {
		if err := p.Process(ctx, id); err != nil {
			p.logger.Error("error processing knowledge record", "id", id, "err", err)
			return record, nil
		}
		if processed, err := p.repository.GetKnowledgeRecord(ctx, id); err == nil {
			record = processed
		}
		return record, nil
	}

	if err := p.distillPool.Submit(func() {
		if err := p.distillProc.process(context.Background(), id); err != nil {
			p.logger.Error("error distilling knowledge record", "id", id, "err", err)
			return
		}
		if err := p.embedPool.Submit(func() {
			if err := p.embedProc.process(context.Background(), id); err != nil {
				p.logger.Error("error embedding knowledge record", "id", id, "err", err)
			}
		}); err != nil {
			p.logger.Error("error scheduling record embedding", "id", id, "err", err)
		}
	}); err != nil {
		p.logger.Error("error scheduling record processing", "id", id, "err", err)
	}

	return record, nil
}

// Process distills and embeds the given records synchronously. Ingest
// schedules this on the worker pools; callers that need completion
// guarantees (CLI one-shots, tests) invoke it directly.
func (p *Pipeline) Process(ctx context.Context, ids ...core.ID) error {
	if err := p.distillProc.process(ctx, ids...); err != nil {
		return err
	}
	return p.embedProc.process(ctx, ids...)
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.distillPool != nil {
		p.distillPool.Release()
	}
	if p.embedPool != nil {
		p.embedPool.Release()
	}
}

// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package distill

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/distillery/ai"
	"github.com/poiesic/distillery/core"
	"github.com/poiesic/distillery/notify"
)

// fastPathContentLimit caps the content passed to the single-call fast
// path. The staged path works on the full grounded content.
const fastPathContentLimit = 4000

// Input is the raw material handed to a distillation run.
type Input struct {
	// Content is the textual content to distill. May be empty when
	// Images carry the substance.
	Content string

	// Images holds image references (URLs, upload paths or file paths)
	// resolved through the pipeline's ImageResolver.
	Images []string

	// Label tags notifications for this run, e.g. a record ID or a
	// short source description.
	Label string
}

// Pipeline turns raw content into knowledge cards. It first attempts a
// single-call fast path and falls back to a five-stage deep analysis
// when the fast path cannot produce a usable card.
//
// Run always produces a structurally complete card: every failure mode
// degrades rather than aborts. The error it returns alongside the card
// classifies runs that could not analyze anything at all.
type Pipeline struct {
	gateway       ai.ModelGateway
	resolver      ai.ImageResolver
	notifier      notify.Notifier
	textTimeout   time.Duration
	visionTimeout time.Duration
	logger        *slog.Logger
}

// Option configures a Pipeline during construction.
type Option func(*Pipeline) error

// WithImageResolver sets the resolver used to load image references.
// Without one, image inputs are skipped.
func WithImageResolver(resolver ai.ImageResolver) Option {
	return func(p *Pipeline) error {
		p.resolver = resolver
		return nil
	}
}

// WithNotifier sets the notifier that receives progress messages.
// Notifications are best effort and never affect the run outcome.
func WithNotifier(notifier notify.Notifier) Option {
	return func(p *Pipeline) error {
		p.notifier = notifier
		return nil
	}
}

// WithTimeouts overrides the per-call deadlines for text and vision
// model calls.
func WithTimeouts(text, vision time.Duration) Option {
	return func(p *Pipeline) error {
		if text <= 0 || vision <= 0 {
			return fmt.Errorf("timeouts must be positive")
		}
		p.textTimeout = text
		p.visionTimeout = vision
		return nil
	}
}

// WithLogger sets the logger used by the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		p.logger = logger.With("component", "distill")
		return nil
	}
}

// NewPipeline creates a distillation pipeline backed by the given model
// gateway.
func NewPipeline(gateway ai.ModelGateway, opts ...Option) (*Pipeline, error) {
	if gateway == nil {
		return nil, ErrGatewayRequired
	}

	p := &Pipeline{
		gateway:       gateway,
		textTimeout:   60 * time.Second,
		visionTimeout: 120 * time.Second,
		logger:        slog.Default().With("component", "distill"),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Run distills the input into a knowledge card. It always returns a
// structurally complete card: fields the pipeline could not fill hold
// deterministic substitutes instead of being absent.
//
// The returned error does not mean the card is missing. It classifies
// runs where no analysis happened at all, so callers can mark the
// record for later reprocessing: core.ErrNoContent when neither text
// nor images yielded anything to work with, or the gateway error when
// the model gateway has no usable credentials. A run that merely
// degraded through stage fallbacks returns a nil error.
func (p *Pipeline) Run(ctx context.Context, input Input) (*core.KnowledgeCard, error) {
	label := input.Label
	if label == "" {
		label = "distill"
	}

	p.notify(ctx, "🧪 #%s | starting knowledge distillation", label)

	if strings.TrimSpace(input.Content) == "" && len(input.Images) == 0 {
		p.logger.Warn("no usable content", "label", label)
		p.notify(ctx, "⚠️ #%s | no usable content provided", label)
		return noContentCard(), core.ErrNoContent
	}

	card, err := p.fastPath(ctx, input)
	switch {
	case err == nil:
		p.logger.Info("fast path succeeded", "label", label, "title", card.Title)
		p.notify(ctx, "🎉 #%s | distillation complete: %s", label, firstN(card.Title, 50))
		return card, nil
	case ai.IsUnconfigured(err):
		return p.abortUnconfigured(ctx, label, err)
	}

	p.logger.Info("fast path unavailable, switching to staged analysis",
		"label", label, "reason", err)
	p.notify(ctx, "⚙️ #%s | switching to multi-stage deep analysis", label)

	results := &Results{}

	extraction, err := p.runExtract(ctx, input)
	results.Extraction = extraction
	switch {
	case ai.IsUnconfigured(err):
		return p.abortUnconfigured(ctx, label, err)
	case err != nil:
		p.logger.Warn("no usable content after grounding", "label", label)
		p.notify(ctx, "⚠️ #%s | no usable content provided", label)
		return noContentCard(), core.ErrNoContent
	}
	p.notifyStage(ctx, label, StageExtract, extraction.Err)

	if results.Analysis, err = p.runAnalyze(ctx, results); err != nil {
		return p.abortUnconfigured(ctx, label, err)
	}
	p.notifyStage(ctx, label, StageAnalyze, results.Analysis.Err)

	if results.Enrichment, err = p.runEnrich(ctx, results); err != nil {
		return p.abortUnconfigured(ctx, label, err)
	}
	p.notifyStage(ctx, label, StageEnrich, results.Enrichment.Err)

	if results.Verification, err = p.runVerify(ctx, results); err != nil {
		return p.abortUnconfigured(ctx, label, err)
	}
	p.notifyStage(ctx, label, StageVerify, results.Verification.Err)

	card, err = p.runSynthesize(ctx, input, results)
	if err != nil {
		return p.abortUnconfigured(ctx, label, err)
	}
	p.notify(ctx, "🎉 #%s | deep analysis complete: %s", label, firstN(card.Title, 50))

	return card, nil
}

// abortUnconfigured stops a run at whichever call first reported
// missing credentials. Later calls would fail the same way, so the run
// produces the unconfigured card immediately.
func (p *Pipeline) abortUnconfigured(ctx context.Context, label string, err error) (*core.KnowledgeCard, error) {
	p.logger.Error("model gateway not configured", "label", label, "error", err)
	p.notify(ctx, "❌ #%s | AI gateway not configured", label)
	return unconfiguredCard(), err
}

// fastPath attempts the single-call distillation shortcut. A returned
// error other than a GatewayUnconfigured classification means the
// staged path should take over.
func (p *Pipeline) fastPath(ctx context.Context, input Input) (*core.KnowledgeCard, error) {
	grounded, err := p.groundContent(ctx, input)
	if err != nil {
		return nil, err
	}
	if len([]rune(grounded)) < minContentLength {
		return nil, errFastPathMiss
	}

	messages := []ai.Message{
		ai.SystemText(fastPathPrompt),
		ai.UserText("Analyze the following content:\n\n" + firstN(grounded, fastPathContentLimit)),
	}

	callCtx, cancel := context.WithTimeout(ctx, p.textTimeout)
	defer cancel()

	raw, err := p.gateway.Complete(callCtx, messages, 0.3)
	if err != nil {
		if ai.IsUnconfigured(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", errFastPathMiss, err)
	}

	var envelope struct {
		core.KnowledgeCard
		Failure string `json:"error"`
	}
	if err := DecodeResponse(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", errFastPathMiss, err)
	}
	if envelope.Failure != "" || strings.TrimSpace(envelope.Title) == "" {
		return nil, errFastPathMiss
	}

	card := envelope.KnowledgeCard
	card.Normalize()
	return &card, nil
}

// complete issues a text model call with the pipeline's text deadline.
func (p *Pipeline) complete(ctx context.Context, messages []ai.Message, temperature float64) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.textTimeout)
	defer cancel()
	return p.gateway.Complete(callCtx, messages, temperature)
}

func (p *Pipeline) notify(ctx context.Context, format string, args ...any) {
	if p.notifier == nil {
		return
	}
	p.notifier.Notify(ctx, fmt.Sprintf(format, args...))
}

func (p *Pipeline) notifyStage(ctx context.Context, label string, stage Stage, degraded string) {
	if degraded != "" {
		p.notify(ctx, "⚠️ #%s | %s degraded: %s", label, stage, degraded)
		return
	}
	p.notify(ctx, "✅ #%s | %s complete", label, stage)
}

// noContentCard is the card produced when neither text nor images yield
// usable content.
func noContentCard() *core.KnowledgeCard {
	card := &core.KnowledgeCard{
		Title:      "No usable content",
		Summary:    "No valid text or images were provided, so no knowledge could be distilled.",
		Category:   "uncategorized",
		Difficulty: "unknown",
	}
	card.Normalize()
	return card
}

// unconfiguredCard is the card produced when the model gateway reports
// missing or rejected credentials. The run stops after the first such
// report since no further call can succeed.
func unconfiguredCard() *core.KnowledgeCard {
	card := &core.KnowledgeCard{
		Title:      "AI gateway not configured",
		Summary:    "The model gateway has no usable credentials, so the content could not be analyzed. Configure an API key and reprocess this record.",
		Category:   "uncategorized",
		Difficulty: "unknown",
	}
	card.Normalize()
	return card
}

package distill

import (
	"context"

	"github.com/poiesic/distillery/ai"
	"github.com/poiesic/distillery/core"
)

// runExtract grounds the input and pulls raw facts from it. The stage
// degrades to content-derived heuristics when the model call or the
// response decoding fails. It returns an error only for the two fatal
// cases: an unconfigured gateway, or content that remains unusable
// after grounding.
func (p *Pipeline) runExtract(ctx context.Context, input Input) (*Extraction, error) {
	grounded, err := p.groundContent(ctx, input)
	if err != nil {
		return extractFallback("", err), err
	}
	if len([]rune(grounded)) < minContentLength {
		return extractFallback(grounded, core.ErrNoContent), core.ErrNoContent
	}

	messages := []ai.Message{
		ai.SystemText(extractPrompt),
		ai.UserText("Extract information from the following content:\n\n" + grounded),
	}

	raw, err := p.complete(ctx, messages, 0.2)
	if err != nil {
		if ai.IsUnconfigured(err) {
			return extractFallback(grounded, err), err
		}
		p.logger.Warn("extraction call failed, using heuristics", "error", err)
		return extractFallback(grounded, err), nil
	}

	var extraction Extraction
	if err := DecodeResponse(raw, &extraction); err != nil {
		p.logger.Warn("extraction response unusable, using heuristics", "error", err)
		return extractFallback(grounded, err), nil
	}

	if extraction.Title == "" {
		extraction.Title = firstN(grounded, 100)
	}
	if extraction.RawSummary == "" {
		extraction.RawSummary = firstN(grounded, 500)
	}
	if len(extraction.DetectedURLs) == 0 {
		extraction.DetectedURLs = extractURLs(grounded)
	}

	return &extraction, nil
}

// extractFallback derives an extraction directly from the content: the
// leading text becomes title and summary, and URLs are found by scan.
func extractFallback(grounded string, cause error) *Extraction {
	e := &Extraction{
		Title:        firstN(grounded, 100),
		RawSummary:   firstN(grounded, 500),
		DetectedURLs: extractURLs(grounded),
	}
	if cause != nil {
		e.Err = cause.Error()
	}
	return e
}

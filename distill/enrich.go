package distill

import (
	"context"
	"encoding/json"

	"github.com/poiesic/distillery/ai"
)

// runEnrich asks the model for ecosystem context around the subject.
// On failure the stage passes the URLs already detected during
// extraction through so the card never loses them. A non-nil error
// means the gateway has no usable credentials.
func (p *Pipeline) runEnrich(ctx context.Context, results *Results) (*Enrichment, error) {
	subject := map[string]any{
		"title":      results.Extraction.Title,
		"names":      results.Extraction.DetectedNames,
		"urls":       results.Extraction.DetectedURLs,
		"domain":     results.Analysis.Domain,
		"tech_stack": results.Analysis.TechStack,
	}
	payload, err := json.Marshal(subject)
	if err != nil {
		return enrichFallback(results, err), nil
	}

	messages := []ai.Message{
		ai.SystemText(enrichPrompt),
		ai.UserText("Subject:\n\n" + string(payload)),
	}

	raw, err := p.complete(ctx, messages, 0.4)
	if err != nil {
		if ai.IsUnconfigured(err) {
			return nil, err
		}
		p.logger.Warn("enrichment call failed, passing detected URLs through", "error", err)
		return enrichFallback(results, err), nil
	}

	var enrichment Enrichment
	if err := DecodeResponse(raw, &enrichment); err != nil {
		p.logger.Warn("enrichment response unusable, passing detected URLs through", "error", err)
		return enrichFallback(results, err), nil
	}

	if len(enrichment.FoundURLs) == 0 {
		enrichment.FoundURLs = results.Extraction.DetectedURLs
	}

	return &enrichment, nil
}

func enrichFallback(results *Results, cause error) *Enrichment {
	e := &Enrichment{
		FoundURLs: results.Extraction.DetectedURLs,
	}
	if cause != nil {
		e.Err = cause.Error()
	}
	return e
}

package distill

import (
	"context"
	"encoding/json"

	"github.com/poiesic/distillery/ai"
)

// verifiedConfidenceThreshold is the minimum confidence at which the
// synthesized card is tagged as verified.
const verifiedConfidenceThreshold = 0.7

// fallbackConfidence is reported when verification itself could not
// run. It sits below the verified threshold on purpose.
const fallbackConfidence = 0.5

// runVerify cross-checks the accumulated stage outputs. On failure the
// stage degrades to a neutral confidence and a warning. A non-nil
// error means the gateway has no usable credentials.
func (p *Pipeline) runVerify(ctx context.Context, results *Results) (*Verification, error) {
	accumulated := map[string]any{
		"extraction": results.Extraction,
		"analysis":   results.Analysis,
		"enrichment": results.Enrichment,
	}
	payload, err := json.Marshal(accumulated)
	if err != nil {
		return verifyFallback(err), nil
	}

	messages := []ai.Message{
		ai.SystemText(verifyPrompt),
		ai.UserText("Accumulated information:\n\n" + string(payload)),
	}

	raw, err := p.complete(ctx, messages, 0.2)
	if err != nil {
		if ai.IsUnconfigured(err) {
			return nil, err
		}
		p.logger.Warn("verification call failed, assuming neutral confidence", "error", err)
		return verifyFallback(err), nil
	}

	var verification Verification
	if err := DecodeResponse(raw, &verification); err != nil {
		p.logger.Warn("verification response unusable, assuming neutral confidence", "error", err)
		return verifyFallback(err), nil
	}

	if verification.Confidence < 0 {
		verification.Confidence = 0
	}
	if verification.Confidence > 1 {
		verification.Confidence = 1
	}

	return &verification, nil
}

func verifyFallback(cause error) *Verification {
	v := &Verification{
		Confidence: fallbackConfidence,
		Warnings:   []string{"verification could not run; information is unchecked"},
	}
	if cause != nil {
		v.Err = cause.Error()
	}
	return v
}

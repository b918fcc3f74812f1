package distill

import (
	"context"
	"encoding/json"

	"github.com/poiesic/distillery/ai"
)

// unknownValue marks enumerated fields the pipeline could not determine.
const unknownValue = "unknown"

// runAnalyze classifies the extracted facts. Failures degrade to
// "unknown" sentinels so later stages always have a complete analysis
// to read. The returned error is non-nil only when the gateway reports
// missing credentials, in which case the run as a whole must stop.
func (p *Pipeline) runAnalyze(ctx context.Context, results *Results) (*Analysis, error) {
	payload, err := json.Marshal(results.Extraction)
	if err != nil {
		return analyzeFallback(err), nil
	}

	messages := []ai.Message{
		ai.SystemText(analyzePrompt),
		ai.UserText("Extracted facts:\n\n" + string(payload)),
	}

	raw, err := p.complete(ctx, messages, 0.3)
	if err != nil {
		if ai.IsUnconfigured(err) {
			return nil, err
		}
		p.logger.Warn("analysis call failed, using sentinels", "error", err)
		return analyzeFallback(err), nil
	}

	var analysis Analysis
	if err := DecodeResponse(raw, &analysis); err != nil {
		p.logger.Warn("analysis response unusable, using sentinels", "error", err)
		return analyzeFallback(err), nil
	}

	if analysis.ContentType == "" {
		analysis.ContentType = unknownValue
	}
	if analysis.Domain == "" {
		analysis.Domain = unknownValue
	}
	if analysis.ComplexityLevel == "" {
		analysis.ComplexityLevel = unknownValue
	}

	return &analysis, nil
}

func analyzeFallback(cause error) *Analysis {
	a := &Analysis{
		ContentType:         unknownValue,
		Domain:              unknownValue,
		ArchitecturePattern: unknownValue,
		ComplexityLevel:     unknownValue,
		TargetAudience:      unknownValue,
	}
	if cause != nil {
		a.Err = cause.Error()
	}
	return a
}

package distill

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/poiesic/distillery/ai"
	"github.com/poiesic/distillery/core"
)

// verifiedTag marks cards whose verification confidence met the
// threshold.
const verifiedTag = "verified"

// runSynthesize merges all stage outputs into the final card. A broken
// model response falls back to a card assembled directly from the
// earlier stages, and every card passes through the same
// post-processing. A non-nil error means the gateway has no usable
// credentials.
func (p *Pipeline) runSynthesize(ctx context.Context, input Input, results *Results) (*core.KnowledgeCard, error) {
	card, err := p.synthesizeWithModel(ctx, results)
	if err != nil {
		return nil, err
	}
	if card == nil {
		card = synthesizeFallback(results)
	}

	p.finishCard(card, input, results)
	return card, nil
}

func (p *Pipeline) synthesizeWithModel(ctx context.Context, results *Results) (*core.KnowledgeCard, error) {
	accumulated := map[string]any{
		"extraction":   results.Extraction,
		"analysis":     results.Analysis,
		"enrichment":   results.Enrichment,
		"verification": results.Verification,
	}
	payload, err := json.Marshal(accumulated)
	if err != nil {
		return nil, nil
	}

	messages := []ai.Message{
		ai.SystemText(synthesizePrompt),
		ai.UserText("Stage outputs:\n\n" + string(payload)),
	}

	raw, err := p.complete(ctx, messages, 0.4)
	if err != nil {
		if ai.IsUnconfigured(err) {
			return nil, err
		}
		p.logger.Warn("synthesis call failed, assembling card from stage outputs", "error", err)
		return nil, nil
	}

	var card core.KnowledgeCard
	if err := DecodeResponse(raw, &card); err != nil {
		p.logger.Warn("synthesis response unusable, assembling card from stage outputs", "error", err)
		return nil, nil
	}

	// Backfill required fields the model left blank.
	if strings.TrimSpace(card.Title) == "" {
		card.Title = results.Extraction.Title
	}
	if strings.TrimSpace(card.Summary) == "" {
		card.Summary = results.Extraction.RawSummary
	}
	if card.Category == "" {
		card.Category = categoryFrom(results.Analysis)
	}
	if card.Difficulty == "" {
		card.Difficulty = difficultyFrom(results.Analysis)
	}

	return &card, nil
}

// synthesizeFallback assembles a card purely from the stage outputs.
func synthesizeFallback(results *Results) *core.KnowledgeCard {
	return &core.KnowledgeCard{
		Title:      results.Extraction.Title,
		Summary:    results.Extraction.RawSummary,
		KeyPoints:  results.Extraction.DetectedFeatures,
		Tags:       lowercaseAll(results.Analysis.TechStack),
		Category:   categoryFrom(results.Analysis),
		Difficulty: difficultyFrom(results.Analysis),
	}
}

// finishCard applies the post-processing every synthesized card gets,
// regardless of whether the model or the fallback produced it.
func (p *Pipeline) finishCard(card *core.KnowledgeCard, input Input, results *Results) {
	card.Normalize()

	if strings.TrimSpace(card.Title) == "" {
		card.Title = firstN(strings.TrimSpace(input.Content), 100)
	}
	if strings.TrimSpace(card.Title) == "" {
		card.Title = "Untitled knowledge"
	}
	if strings.TrimSpace(card.Summary) == "" {
		card.Summary = card.Title
	}

	if card.RepoURL == "" {
		card.RepoURL = results.Enrichment.InferredGitHubURL
	}
	if card.OfficialDocs == "" {
		card.OfficialDocs = results.Enrichment.InferredDocsURL
	}

	card.Tags = dedupeTags(card.Tags)
	if results.Verification.Confidence >= verifiedConfidenceThreshold && !card.HasTag(verifiedTag) {
		card.Tags = append(card.Tags, verifiedTag)
	}
}

func categoryFrom(analysis *Analysis) string {
	if analysis.Domain != "" && analysis.Domain != unknownValue {
		return strings.ToLower(analysis.Domain)
	}
	return "uncategorized"
}

func difficultyFrom(analysis *Analysis) string {
	if analysis.ComplexityLevel != "" && analysis.ComplexityLevel != unknownValue {
		return strings.ToLower(analysis.ComplexityLevel)
	}
	return "intermediate"
}

func lowercaseAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}

// dedupeTags keeps the first occurrence of each tag, comparing
// case-insensitively.
func dedupeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		key := strings.ToLower(strings.TrimSpace(tag))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}

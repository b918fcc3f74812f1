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
	"regexp"
	"strings"

	"github.com/poiesic/distillery/ai"
)

// minContentLength is the minimum number of characters required for a
// grounded text to count as usable content.
const minContentLength = 10

var urlPattern = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

// extractURLs returns every URL found in the text, deduplicated in order
// of first appearance.
func extractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	urls := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		m = strings.TrimRight(m, ".,;")
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		urls = append(urls, m)
	}
	return urls
}

// firstN truncates s to at most n runes.
func firstN(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// groundContent combines the textual content with a model-generated
// description of any attached images. Images that cannot be resolved are
// skipped; a failed vision call falls back to text-only content. Only a
// gateway that reports itself unconfigured aborts grounding, because no
// later call can succeed either.
func (p *Pipeline) groundContent(ctx context.Context, input Input) (string, error) {
	content := strings.TrimSpace(input.Content)
	if len(input.Images) == 0 {
		return content, nil
	}

	parts := []ai.Part{ai.TextPart{Text: visionPrompt}}
	resolved := 0
	for _, ref := range input.Images {
		if p.resolver == nil {
			break
		}
		img, err := p.resolver.Resolve(ctx, ref)
		if err != nil {
			p.logger.Warn("skipping unresolvable image", "ref", ref, "error", err)
			continue
		}
		parts = append(parts, ai.ImagePart{MediaType: img.MediaType, Data: img.Data})
		resolved++
	}
	if resolved == 0 {
		p.logger.Warn("no images could be resolved", "count", len(input.Images))
		return content, nil
	}

	visionCtx, cancel := context.WithTimeout(ctx, p.visionTimeout)
	defer cancel()

	description, err := p.gateway.Complete(visionCtx, []ai.Message{
		{Role: ai.RoleUser, Parts: parts},
	}, 0.3)
	if err != nil {
		if ai.IsUnconfigured(err) {
			return "", err
		}
		p.logger.Warn("image description failed, continuing with text only", "error", err)
		return content, nil
	}

	description = strings.TrimSpace(description)
	if description == "" {
		return content, nil
	}
	if content == "" {
		return "[image content]\n" + description, nil
	}
	return "[image content]\n" + description + "\n\n[text content]\n" + content, nil
}

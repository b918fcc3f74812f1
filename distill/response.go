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
	"encoding/json"
	"fmt"
	"strings"
)

// ParseError reports that a model response could not be decoded.
// It carries the original raw text so callers can salvage it.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// CleanResponse strips markdown code fences from a model response.
// Handles a leading fence with an optional language tag and a trailing
// closing fence. Idempotent: clean text passes through unchanged.
func CleanResponse(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// Drop a language tag on the fence line, e.g. ```json
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			firstLine := strings.TrimSpace(s[:i])
			if firstLine == "" || isLanguageTag(firstLine) {
				s = s[i+1:]
			}
		} else {
			s = strings.TrimPrefix(strings.TrimPrefix(s, "json"), "JSON")
		}
		s = strings.TrimSpace(s)
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}

	return s
}

// DecodeResponse recovers a structured object from raw model text.
// It trims fences, repairs common JSON defects, and tolerates prose
// wrapped around the JSON object. On failure it returns a *ParseError
// carrying the original text; it never panics.
//
// The function is idempotent: re-serializing a successful result and
// decoding it again yields the same structure.
func DecodeResponse(raw string, v any) error {
	cleaned := CleanResponse(raw)

	candidates := []string{cleaned, repairJSON(cleaned)}

	// Tolerate leading/trailing prose around the object.
	if i, j := strings.IndexByte(cleaned, '{'), strings.LastIndexByte(cleaned, '}'); i >= 0 && j > i {
		inner := cleaned[i : j+1]
		candidates = append(candidates, inner, repairJSON(inner))
	}

	var lastErr error
	for _, candidate := range candidates {
		data := []byte(candidate)
		if !json.Valid(data) {
			lastErr = fmt.Errorf("invalid JSON")
			continue
		}
		if err := json.Unmarshal(data, v); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	return &ParseError{Raw: raw, Err: lastErr}
}

// isLanguageTag reports whether s looks like a fence language annotation.
func isLanguageTag(s string) bool {
	for _, r := range s {
		if !isLetter(r) {
			return false
		}
	}
	return true
}

// isLetter returns true if the rune is an ASCII letter.
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// repairJSON attempts to fix common JSON formatting issues from LLM responses.
// It specifically handles missing opening quotes before keys in JSON objects.
func repairJSON(s string) string {
	// Fix missing opening quote before keys
	// Pattern: after { or , followed by optional whitespace, then a word followed by ":
	// Example: `, type":` -> `, "type":`
	result := []rune(s)
	fixed := make([]rune, 0, len(result)+100)

	i := 0
	for i < len(result) {
		ch := result[i]

		// After { or , look for unquoted keys
		if ch == '{' || ch == ',' {
			fixed = append(fixed, ch)
			i++

			// Skip whitespace
			for i < len(result) && (result[i] == ' ' || result[i] == '\n' || result[i] == '\t') {
				fixed = append(fixed, result[i])
				i++
			}

			// Check if we have an unquoted key (starts with letter, not with quote)
			if i < len(result) && result[i] != '"' && isLetter(result[i]) {
				keyStart := i
				// Find the end of the key name
				for i < len(result) && (isLetter(result[i]) || result[i] == '_' || result[i] == ' ') {
					i++
				}
				keyEnd := i

				// Check if this is followed by ": which indicates a missing opening quote
				if i+1 < len(result) && result[i] == '"' && result[i+1] == ':' {
					// Add opening quote, key, keep closing quote
					fixed = append(fixed, '"')
					for j := keyStart; j < keyEnd; j++ {
						if result[j] != ' ' || (j > keyStart && j < keyEnd-1) {
							fixed = append(fixed, result[j])
						}
					}
					// Don't add closing quote - it's already there at result[i]
					continue
				} else {
					// Not an unquoted key, just copy what we skipped
					for j := keyStart; j < i; j++ {
						fixed = append(fixed, result[j])
					}
				}
			}
		} else {
			fixed = append(fixed, ch)
			i++
		}
	}

	return string(fixed)
}

package search

import (
	"strings"
	"unicode"
)

// Common words carrying no search signal; filtered before tag lookups
// and verbatim matching.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "be": {}, "is": {}, "are": {},
	"was": {}, "to": {}, "of": {}, "and": {}, "in": {}, "that": {},
	"have": {}, "it": {}, "for": {}, "not": {}, "on": {}, "with": {},
	"as": {}, "you": {}, "do": {}, "at": {}, "this": {}, "but": {},
	"by": {}, "from": {}, "how": {}, "what": {}, "about": {},
}

// queryTokens lowercases text and splits it on non-alphanumeric runes,
// dropping stop words. The resulting tokens are what tag lookups and
// verbatim matching operate on. Hyphens survive inside tokens so that
// kebab-case tags match.
func queryTokens(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '-'
	})

	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		field = strings.Trim(field, "-")
		if field == "" {
			continue
		}
		if _, stop := stopWords[field]; stop {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}

// containsAllTokens reports whether every token of the query appears in
// the document. A query with no tokens left after filtering matches
// nothing.
func containsAllTokens(document, query string) bool {
	wanted := queryTokens(query)
	if len(wanted) == 0 {
		return false
	}

	present := make(map[string]struct{})
	for _, token := range queryTokens(document) {
		present[token] = struct{}{}
	}

	for _, token := range wanted {
		if _, ok := present[token]; !ok {
			return false
		}
	}
	return true
}

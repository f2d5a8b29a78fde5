// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package concept maps a free-form research query onto a
// controlled-vocabulary concept: phrase extraction (LLM-assisted with a
// deterministic fallback) followed by concept lookup and scoring.
// See docs/ARCHITECTURE.md § Concept Resolution.
package concept

import (
	"context"
	"strings"
)

// PhraseGenerator suggests short academic noun phrases for a free-form
// query. Implementations may call a text-generation API; failures are
// absorbed by the fallback chain in ExtractPhrases.
type PhraseGenerator interface {
	Phrases(ctx context.Context, query string) ([]string, error)
}

// maxSuggestedPhrases caps the phrase list handed to concept lookup.
const maxSuggestedPhrases = 5

// stopWords is the fixed list stripped by the rule-based fallback
// extractor.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "what": true,
	"how": true, "are": true, "is": true, "of": true, "in": true,
	"on": true, "to": true, "does": true, "can": true, "using": true,
	"use": true, "between": true, "about": true, "into": true,
	"based": true, "their": true, "from": true, "that": true,
	"which": true, "why": true, "when": true,
}

// ExtractPhrases turns a query into 1-5 phrase candidates, most likely
// first. It asks the generator for suggestions; when the generator is
// absent, fails, or returns nothing usable it falls back to a
// rule-based keyword phrase and finally to the query itself. It never
// returns an empty list and never propagates an error.
func ExtractPhrases(ctx context.Context, gen PhraseGenerator, query string) []string {
	query = strings.TrimSpace(query)

	if gen != nil {
		if suggested, err := gen.Phrases(ctx, query); err == nil {
			cleaned := cleanPhrases(suggested)
			if len(cleaned) > 0 {
				return cleaned
			}
		}
	}

	var phrases []string
	if kw := keywordPhrase(query); kw != "" && !strings.EqualFold(kw, query) {
		phrases = append(phrases, kw)
	}
	if query != "" {
		phrases = append(phrases, query)
	}
	if len(phrases) == 0 {
		phrases = []string{query}
	}
	return phrases
}

// cleanPhrases trims and de-duplicates generator output, keeping at
// most maxSuggestedPhrases entries.
func cleanPhrases(raw []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := strings.ToLower(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
		if len(out) == maxSuggestedPhrases {
			break
		}
	}
	return out
}

// keywordPhrase is the deterministic fallback: strip stop words, keep
// the first 6 remaining tokens of length >= 3, and join them into one
// phrase. Returns "" when nothing survives.
func keywordPhrase(query string) string {
	var kept []string
	for _, tok := range strings.Fields(strings.ToLower(query)) {
		tok = strings.Trim(tok, ".,;:()[]{}\"'?!")
		if len(tok) < 3 || stopWords[tok] {
			continue
		}
		kept = append(kept, tok)
		if len(kept) == 6 {
			break
		}
	}
	return strings.Join(kept, " ")
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package concept

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/pdiddy/review-engine/pkg/types"
)

// ConceptLookup searches the controlled vocabulary for candidate
// concepts matching a phrase. Implementations may fail transiently;
// Resolve retries with bounded backoff.
type ConceptLookup interface {
	Search(ctx context.Context, phrase string, limit int) ([]types.Concept, error)
}

// ResolveOptions bounds the resolution work.
type ResolveOptions struct {
	// MaxPhrases caps how many phrases are looked up.
	MaxPhrases int

	// CandidatesPerPhrase is how many concepts to request per phrase.
	CandidatesPerPhrase int

	// MaxRetries is the number of attempts per phrase before the
	// phrase is skipped.
	MaxRetries int
}

// DefaultResolveOptions returns the standard resolution bounds.
func DefaultResolveOptions() ResolveOptions {
	return ResolveOptions{
		MaxPhrases:          4,
		CandidatesPerPhrase: 5,
		MaxRetries:          3,
	}
}

// retryBackoffBase controls the base duration for exponential backoff
// between lookup attempts. Tests override this to avoid real sleeps.
var retryBackoffBase = 800 * time.Millisecond

// Resolve picks the best controlled-vocabulary concept for the phrase
// list. Each candidate is scored by exact-name match, token overlap,
// popularity, and a specificity penalty; the single highest-scoring
// concept across all phrases wins, with ties keeping the first seen.
// A phrase whose lookup exhausts its retries is skipped. When no
// phrase yields any candidate, Resolve returns (nil, nil): an empty
// vocabulary match is an expected outcome, not an error.
func Resolve(ctx context.Context, lookup ConceptLookup, phrases []string, opts ResolveOptions) (*types.Concept, error) {
	if opts.MaxPhrases <= 0 {
		opts.MaxPhrases = 4
	}
	if opts.CandidatesPerPhrase <= 0 {
		opts.CandidatesPerPhrase = 5
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}

	if len(phrases) > opts.MaxPhrases {
		phrases = phrases[:opts.MaxPhrases]
	}

	var best *types.Concept
	bestScore := math.Inf(-1)

	for _, phrase := range phrases {
		phrase = strings.TrimSpace(phrase)
		if phrase == "" {
			continue
		}

		candidates, err := searchWithRetry(ctx, lookup, phrase, opts.CandidatesPerPhrase, opts.MaxRetries)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Exhausted retries: skip the phrase, not the resolution.
			continue
		}

		for _, c := range candidates {
			s := scoreConcept(phrase, c)
			if s > bestScore {
				bestScore = s
				picked := c
				best = &picked
			}
		}
	}

	return best, nil
}

// searchWithRetry calls the lookup with exponential backoff between
// attempts.
func searchWithRetry(ctx context.Context, lookup ConceptLookup, phrase string, limit, maxRetries int) ([]types.Concept, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * retryBackoffBase
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		candidates, err := lookup.Search(ctx, phrase, limit)
		if err == nil {
			return candidates, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// scoreConcept ranks a concept candidate for a phrase:
//
//	1.5*exact + 1.2*overlap + log1p(works)/10 - 0.03*level
//
// The level penalty keeps overly narrow concepts from winning purely
// on token overlap.
func scoreConcept(phrase string, c types.Concept) float64 {
	exact := 0.0
	if strings.EqualFold(strings.TrimSpace(phrase), strings.TrimSpace(c.DisplayName)) {
		exact = 1.0
	}
	overlap := tokenOverlap(phrase, c.DisplayName)
	popularity := math.Log1p(float64(c.WorksCount)) / 10.0
	return 1.5*exact + 1.2*overlap + popularity - 0.03*float64(c.Level)
}

// tokenOverlap is the fraction of the phrase's tokens (case-folded,
// length >= 3) that also appear among the concept name's tokens.
func tokenOverlap(phrase, name string) float64 {
	phraseTokens := tokens(phrase)
	if len(phraseTokens) == 0 {
		return 0
	}
	nameTokens := make(map[string]bool)
	for _, t := range tokens(name) {
		nameTokens[t] = true
	}
	hits := 0
	for _, t := range phraseTokens {
		if nameTokens[t] {
			hits++
		}
	}
	return float64(hits) / float64(len(phraseTokens))
}

func tokens(s string) []string {
	var out []string
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		tok = strings.Trim(tok, ".,;:()[]{}\"'-")
		if len(tok) >= 3 {
			out = append(out, tok)
		}
	}
	return out
}

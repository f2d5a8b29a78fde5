// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieval

import (
	"math"
	"strings"
	"time"

	"github.com/pdiddy/review-engine/pkg/types"
)

// ScoreOptions controls the heuristic relevance score.
type ScoreOptions struct {
	// WindowYears is the recency window; papers older than the window
	// score 0 on recency, papers from the reference year score 1.
	WindowYears int

	// ReferenceYear anchors the recency window. Zero means the current
	// year.
	ReferenceYear int
}

// DefaultScoreOptions returns the standard scoring bounds.
func DefaultScoreOptions() ScoreOptions {
	return ScoreOptions{WindowYears: 10}
}

// SemanticScore computes the query-relevance heuristic for one
// candidate's title and abstract:
//
//	0.5*match + 0.3*recency + 0.2*influence
//
// match is the fraction of query tokens found in the text, weighted
// 0.6 for the title and 0.4 for the abstract. recency scales linearly
// across the window. influence is log-scaled citation count relative
// to maxCitedBy, the largest count in the batch.
func SemanticScore(query, title, abstract string, year, citedBy, maxCitedBy int, opts ScoreOptions) float64 {
	if opts.WindowYears <= 0 {
		opts.WindowYears = 10
	}
	refYear := opts.ReferenceYear
	if refYear == 0 {
		refYear = time.Now().UTC().Year()
	}

	queryTokens := scoreTokens(query)

	match := 0.6*tokenMatch(queryTokens, title) + 0.4*tokenMatch(queryTokens, abstract)

	recency := 0.0
	if year > 0 {
		recency = 1.0 - float64(refYear-year)/float64(opts.WindowYears)
		if recency < 0 {
			recency = 0
		}
		if recency > 1 {
			recency = 1
		}
	}

	influence := 0.0
	if citedBy > 0 && maxCitedBy > 0 {
		influence = math.Log1p(float64(citedBy)) / math.Log1p(float64(maxCitedBy))
	}

	return 0.5*match + 0.3*recency + 0.2*influence
}

// ScoreAll fills in SemanticScore for every candidate in place. The
// influence term is relative to the most-cited paper in the batch.
func ScoreAll(query string, candidates []types.Candidate, opts ScoreOptions) {
	maxCitedBy := 0
	for _, c := range candidates {
		if c.CitedBy > maxCitedBy {
			maxCitedBy = c.CitedBy
		}
	}
	for i := range candidates {
		c := &candidates[i]
		c.SemanticScore = SemanticScore(query, c.Title, c.Abstract, c.Year, c.CitedBy, maxCitedBy, opts)
	}
}

// tokenMatch is the fraction of query tokens present in the text.
func tokenMatch(queryTokens []string, text string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	hits := 0
	for _, t := range queryTokens {
		if strings.Contains(lower, t) {
			hits++
		}
	}
	return float64(hits) / float64(len(queryTokens))
}

// scoreTokens lowercases and keeps tokens of length >= 3.
func scoreTokens(s string) []string {
	var out []string
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		tok = strings.Trim(tok, ".,;:()[]{}\"'?!-")
		if len(tok) >= 3 {
			out = append(out, tok)
		}
	}
	return out
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank fuses semantic relevance with citation-graph authority
// into one hybrid ranking. Normalization is defensive: degenerate
// inputs (no edges, all-equal scores, zero authority) resolve to
// explicit zeros so no NaN or Inf ever reaches a caller.
// See docs/ARCHITECTURE.md § Score Fusion.
package rank

import (
	"fmt"
	"sort"

	"github.com/pdiddy/review-engine/internal/graphrank"
	"github.com/pdiddy/review-engine/pkg/types"
)

// Options holds the score fusion knobs.
type Options struct {
	// Alpha weights the normalized semantic score.
	Alpha float64

	// Beta weights the normalized authority score.
	Beta float64

	// MinEdges is the minimum number of distinct citation edges the
	// local subgraph needs before authority is allowed to perturb the
	// semantic ranking.
	MinEdges int

	// PageRank configures the authority computation.
	PageRank graphrank.PageRankOptions
}

// DefaultOptions returns the standard fusion parameters.
func DefaultOptions() Options {
	return Options{
		Alpha:    0.8,
		Beta:     0.2,
		MinEdges: 2,
		PageRank: graphrank.DefaultPageRankOptions(),
	}
}

func (o Options) validate() error {
	if o.Alpha < 0 {
		return fmt.Errorf("alpha must be >= 0, got %g", o.Alpha)
	}
	if o.Beta < 0 {
		return fmt.Errorf("beta must be >= 0, got %g", o.Beta)
	}
	if o.MinEdges < 0 {
		return fmt.Errorf("min edges must be >= 0, got %d", o.MinEdges)
	}
	return nil
}

// CitationEdges builds the local citation subgraph: one directed edge
// per outbound citation that points back into the candidate set.
// Citations to works outside the set and self-citations are dropped.
func CitationEdges(cands []types.Candidate) []graphrank.Edge {
	inSet := make(map[string]bool, len(cands))
	for _, c := range cands {
		inSet[c.ID] = true
	}

	var edges []graphrank.Edge
	for _, c := range cands {
		for _, cited := range c.CitedIDs {
			if !inSet[cited] || cited == c.ID {
				continue
			}
			edges = append(edges, graphrank.Edge{From: c.ID, To: cited})
		}
	}
	return edges
}

// Rerank runs the full fusion pass over a candidate list that already
// carries semantic scores: build the local citation subgraph, score
// authority, normalize both signals, and sort by the hybrid score.
// When the subgraph has fewer than MinEdges distinct edges the graph
// carries no signal and the semantic ordering is returned untouched.
// The returned count is the number of distinct edges found.
func Rerank(cands []types.Candidate, opts Options) ([]types.Candidate, int, error) {
	if err := opts.validate(); err != nil {
		return nil, 0, err
	}

	out := make([]types.Candidate, len(cands))
	copy(out, cands)

	nodes := make([]string, len(out))
	for i, c := range out {
		nodes[i] = c.ID
	}

	edges := CitationEdges(out)
	distinct := graphrank.CountDistinctEdges(nodes, edges)

	if distinct < opts.MinEdges {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].SemanticScore > out[j].SemanticScore
		})
		return out, distinct, nil
	}

	authority, err := graphrank.PageRank(nodes, edges, opts.PageRank)
	if err != nil {
		return nil, 0, err
	}

	return Fuse(out, authority, opts.Alpha, opts.Beta), distinct, nil
}

// Fuse normalizes the two signals independently and combines them into
// the hybrid score: semantic scores are min-max normalized across the
// set, authority scores are divided by the set maximum, and the result
// is sorted descending by alpha*normSemantic + beta*normAuthority.
func Fuse(cands []types.Candidate, authority map[string]float64, alpha, beta float64) []types.Candidate {
	if len(cands) == 0 {
		return cands
	}

	out := make([]types.Candidate, len(cands))
	copy(out, cands)

	minSem, maxSem := out[0].SemanticScore, out[0].SemanticScore
	maxAuth := 0.0
	for i := range out {
		out[i].AuthorityScore = authority[out[i].ID]
		if out[i].SemanticScore < minSem {
			minSem = out[i].SemanticScore
		}
		if out[i].SemanticScore > maxSem {
			maxSem = out[i].SemanticScore
		}
		if out[i].AuthorityScore > maxAuth {
			maxAuth = out[i].AuthorityScore
		}
	}

	semRange := maxSem - minSem
	for i := range out {
		// Flat signals normalize to 0, not 0/0.
		if semRange > 0 {
			out[i].NormSemantic = (out[i].SemanticScore - minSem) / semRange
		} else {
			out[i].NormSemantic = 0
		}
		if maxAuth > 1e-12 {
			out[i].NormAuthority = out[i].AuthorityScore / maxAuth
		} else {
			out[i].NormAuthority = 0
		}
		out[i].HybridScore = alpha*out[i].NormSemantic + beta*out[i].NormAuthority
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].HybridScore != out[j].HybridScore {
			return out[i].HybridScore > out[j].HybridScore
		}
		return out[i].SemanticScore > out[j].SemanticScore
	})
	return out
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/review-engine/pkg/types"
)

func cand(id string, semantic float64, cited ...string) types.Candidate {
	return types.Candidate{ID: id, SemanticScore: semantic, CitedIDs: cited, Community: -1}
}

func ids(cands []types.Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.ID
	}
	return out
}

func TestRerankSparseGraphKeepsSemanticOrder(t *testing.T) {
	// No citation edges at all: the graph must not perturb the ranking.
	cands := []types.Candidate{
		cand("A", 0.9),
		cand("B", 0.1),
		cand("C", 0.5),
		cand("D", 0.5),
		cand("E", 0.5),
	}

	out, edges, err := Rerank(cands, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, edges)

	// Ties keep input order (stable sort).
	assert.Equal(t, []string{"A", "C", "D", "E", "B"}, ids(out))
	for _, c := range out {
		assert.Zero(t, c.AuthorityScore)
		assert.Zero(t, c.HybridScore)
	}
}

func TestRerankAuthorityBoostsCitedPaper(t *testing.T) {
	// B and C tie on semantic score, but C is cited by everyone else.
	cands := []types.Candidate{
		cand("A", 1.0, "C"),
		cand("B", 0.5),
		cand("C", 0.5),
		cand("D", 0.0, "C", "B"),
	}

	out, edges, err := Rerank(cands, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, edges)

	pos := make(map[string]int)
	for i, c := range out {
		pos[c.ID] = i
	}
	assert.Less(t, pos["C"], pos["B"], "the heavily cited paper should outrank its semantic twin")
	assert.Equal(t, 0, pos["A"], "the top semantic paper stays on top")
}

func TestRerankEmptyInput(t *testing.T) {
	out, edges, err := Rerank(nil, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Zero(t, edges)
}

func TestRerankRejectsInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Alpha = -0.1
	_, _, err := Rerank([]types.Candidate{cand("A", 1)}, opts)
	assert.Error(t, err)

	opts = DefaultOptions()
	opts.Beta = -1
	_, _, err = Rerank([]types.Candidate{cand("A", 1)}, opts)
	assert.Error(t, err)

	opts = DefaultOptions()
	opts.MinEdges = -1
	_, _, err = Rerank([]types.Candidate{cand("A", 1)}, opts)
	assert.Error(t, err)
}

func TestFuseScoresStayInBounds(t *testing.T) {
	cands := []types.Candidate{
		cand("A", 0.93), cand("B", 0.10), cand("C", 0.47), cand("D", 0.80),
	}
	authority := map[string]float64{"A": 0.05, "B": 0.60, "C": 0.30, "D": 0.05}

	const alpha, beta = 0.8, 0.2
	out := Fuse(cands, authority, alpha, beta)

	for _, c := range out {
		assert.GreaterOrEqual(t, c.NormSemantic, 0.0)
		assert.LessOrEqual(t, c.NormSemantic, 1.0)
		assert.GreaterOrEqual(t, c.NormAuthority, 0.0)
		assert.LessOrEqual(t, c.NormAuthority, 1.0)
		assert.GreaterOrEqual(t, c.HybridScore, 0.0)
		assert.LessOrEqual(t, c.HybridScore, alpha+beta)
		assert.False(t, math.IsNaN(c.HybridScore))
		assert.False(t, math.IsInf(c.HybridScore, 0))
	}
}

func TestFuseFlatSemanticScoresNormalizeToZero(t *testing.T) {
	cands := []types.Candidate{cand("A", 0.5), cand("B", 0.5), cand("C", 0.5)}

	out := Fuse(cands, map[string]float64{"B": 0.9}, 0.8, 0.2)
	for _, c := range out {
		assert.Zero(t, c.NormSemantic)
		assert.False(t, math.IsNaN(c.NormSemantic))
	}
	assert.Equal(t, "B", out[0].ID)
}

func TestFuseMissingAuthorityIsZero(t *testing.T) {
	cands := []types.Candidate{cand("A", 0.9), cand("B", 0.1)}

	out := Fuse(cands, map[string]float64{}, 0.8, 0.2)
	for _, c := range out {
		assert.Zero(t, c.NormAuthority)
		assert.False(t, math.IsNaN(c.HybridScore))
	}
	assert.Equal(t, []string{"A", "B"}, ids(out))
}

func TestCitationEdgesRestrictedToCandidateSet(t *testing.T) {
	cands := []types.Candidate{
		cand("A", 1, "B", "X", "A"), // X is outside the set, A cites itself
		cand("B", 1, "A"),
		cand("C", 1),
	}

	edges := CitationEdges(cands)
	require.Len(t, edges, 2)
	assert.Equal(t, "A", edges[0].From)
	assert.Equal(t, "B", edges[0].To)
	assert.Equal(t, "B", edges[1].From)
	assert.Equal(t, "A", edges[1].To)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graphrank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageRankSumsToOne(t *testing.T) {
	nodes := []string{"A", "B", "C", "D", "E"}
	edges := []Edge{
		{"A", "B"}, {"B", "C"}, {"C", "A"}, {"D", "A"}, {"E", "A"}, {"A", "C"},
	}

	scores, err := PageRank(nodes, edges, DefaultPageRankOptions())
	require.NoError(t, err)
	require.Len(t, scores, 5)

	sum := 0.0
	for _, v := range scores {
		require.GreaterOrEqual(t, v, 0.0)
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestPageRankDanglingNodeConservesMass(t *testing.T) {
	// B has no outgoing edges; its mass must be redistributed, not lost.
	nodes := []string{"A", "B", "C"}
	edges := []Edge{{"A", "B"}, {"C", "B"}}

	scores, err := PageRank(nodes, edges, DefaultPageRankOptions())
	require.NoError(t, err)

	sum := 0.0
	for _, v := range scores {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Greater(t, scores["B"], scores["A"])
}

func TestPageRankCitedNodesOutrankUncited(t *testing.T) {
	nodes := []string{"A", "B", "C"}
	edges := []Edge{{"A", "B"}, {"B", "C"}, {"C", "B"}}

	scores, err := PageRank(nodes, edges, DefaultPageRankOptions())
	require.NoError(t, err)

	// A receives only teleport mass: (1-0.85)/3.
	assert.InDelta(t, 0.05, scores["A"], 0.01)
	assert.Greater(t, scores["B"], 0.4)
	assert.Greater(t, scores["C"], 0.4)
	assert.Greater(t, scores["B"], scores["A"]+0.3)
	assert.Greater(t, scores["C"], scores["A"]+0.3)
}

func TestPageRankConvergenceIsMonotone(t *testing.T) {
	// On a 3-cycle the L1 distance between successive iterates must not
	// grow over the first 20 iterations. Running with an increasing
	// iteration cap and a tolerance too small to trigger early exit
	// exposes each iterate through the public API.
	nodes := []string{"A", "B", "C"}
	edges := []Edge{{"A", "B"}, {"B", "C"}, {"C", "A"}}

	iterate := func(maxIter int) map[string]float64 {
		opts := PageRankOptions{Damping: 0.85, MaxIterations: maxIter, Tolerance: 1e-300}
		scores, err := PageRank(nodes, edges, opts)
		require.NoError(t, err)
		return scores
	}

	prev := iterate(1)
	prevDiff := -1.0
	for k := 2; k <= 20; k++ {
		cur := iterate(k)
		diff := 0.0
		for _, id := range nodes {
			d := cur[id] - prev[id]
			if d < 0 {
				d = -d
			}
			diff += d
		}
		if prevDiff >= 0 {
			assert.LessOrEqual(t, diff, prevDiff+1e-12, "L1 distance grew at iteration %d", k)
		}
		prevDiff = diff
		prev = cur
	}
}

func TestPageRankEmptyNodeList(t *testing.T) {
	scores, err := PageRank(nil, []Edge{{"A", "B"}}, DefaultPageRankOptions())
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestPageRankIgnoresEdgesOutsideNodeSet(t *testing.T) {
	nodes := []string{"A", "B"}
	edges := []Edge{{"A", "B"}, {"A", "X"}, {"X", "B"}, {"Y", "Z"}}

	scores, err := PageRank(nodes, edges, DefaultPageRankOptions())
	require.NoError(t, err)
	require.Len(t, scores, 2)

	sum := scores["A"] + scores["B"]
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Greater(t, scores["B"], scores["A"])
}

func TestPageRankDeduplicatesNodes(t *testing.T) {
	scores, err := PageRank([]string{"A", "B", "A"}, nil, DefaultPageRankOptions())
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.InDelta(t, 0.5, scores["A"], 1e-9)
	assert.InDelta(t, 0.5, scores["B"], 1e-9)
}

func TestPageRankRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts PageRankOptions
	}{
		{"zero damping", PageRankOptions{Damping: 0, MaxIterations: 10, Tolerance: 1e-6}},
		{"damping of one", PageRankOptions{Damping: 1, MaxIterations: 10, Tolerance: 1e-6}},
		{"negative damping", PageRankOptions{Damping: -0.2, MaxIterations: 10, Tolerance: 1e-6}},
		{"zero iterations", PageRankOptions{Damping: 0.85, MaxIterations: 0, Tolerance: 1e-6}},
		{"zero tolerance", PageRankOptions{Damping: 0.85, MaxIterations: 10, Tolerance: 0}},
		{"negative tolerance", PageRankOptions{Damping: 0.85, MaxIterations: 10, Tolerance: -1e-6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PageRank([]string{"A"}, nil, tt.opts)
			assert.Error(t, err)
		})
	}
}

func TestCountDistinctEdges(t *testing.T) {
	nodes := []string{"A", "B", "C"}
	edges := []Edge{
		{"A", "B"}, {"A", "B"}, // duplicate pair counts once
		{"B", "A"},             // reverse direction is distinct
		{"A", "A"},             // self-loop ignored
		{"A", "X"}, {"X", "B"}, // outside the node set
	}
	assert.Equal(t, 2, CountDistinctEdges(nodes, edges))
	assert.Equal(t, 0, CountDistinctEdges(nil, edges))
}

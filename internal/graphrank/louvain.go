// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graphrank

import (
	"fmt"
	"sort"
)

// LouvainOptions holds the community detection knobs. Out-of-range
// values are rejected by DetectCommunities, never clamped.
type LouvainOptions struct {
	// Resolution is the modularity resolution gamma; larger values
	// favor more, smaller communities.
	Resolution float64

	// MaxLevels caps the number of aggregation levels.
	MaxLevels int

	// MaxIterations caps the local moving phase within one level.
	MaxIterations int

	// MinEdges is the minimum number of distinct undirected pairs the
	// graph must have before clustering is attempted. Below it every
	// node is assigned to a single community.
	MinEdges int
}

// DefaultLouvainOptions returns the standard Louvain parameters.
func DefaultLouvainOptions() LouvainOptions {
	return LouvainOptions{
		Resolution:    1.0,
		MaxLevels:     10,
		MaxIterations: 50,
		MinEdges:      2,
	}
}

func (o LouvainOptions) validate() error {
	if !(o.Resolution > 0) {
		return fmt.Errorf("resolution must be > 0, got %g", o.Resolution)
	}
	if o.MaxLevels < 1 {
		return fmt.Errorf("max levels must be >= 1, got %d", o.MaxLevels)
	}
	if o.MaxIterations < 1 {
		return fmt.Errorf("max iterations must be >= 1, got %d", o.MaxIterations)
	}
	if o.MinEdges < 0 {
		return fmt.Errorf("min edges must be >= 0, got %d", o.MinEdges)
	}
	return nil
}

// DetectCommunities partitions the node set into communities by greedy
// modularity optimization with multi-level aggregation. Directed edges
// are treated as undirected evidence: each contributes weight 1 in both
// directions and parallel edges accumulate. The returned community ids
// are dense and zero-based, and every input node appears exactly once.
// Runs are deterministic for a fixed node order and edge list.
func DetectCommunities(nodes []string, edges []Edge, opts LouvainOptions) (map[string]int, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	index, ordered := indexNodes(nodes)
	if len(ordered) == 0 {
		return map[string]int{}, nil
	}

	adj, pairCount := buildUndirected(index, len(ordered), edges)

	// A near-empty graph carries no clustering signal; collapse to one
	// community instead of inventing structure from noise.
	if pairCount < opts.MinEdges {
		result := make(map[string]int, len(ordered))
		for _, id := range ordered {
			result[id] = 0
		}
		return result, nil
	}

	deg := degrees(adj)

	// origToCurrent composes the community choice across levels so the
	// finest-level assignment for every original node survives aggregation.
	origToCurrent := make([]int, len(ordered))
	for i := range origToCurrent {
		origToCurrent[i] = i
	}

	for level := 0; level < opts.MaxLevels; level++ {
		com := oneLevel(adj, deg, opts.Resolution, opts.MaxIterations)
		com = renumber(com)

		for i := range origToCurrent {
			origToCurrent[i] = com[origToCurrent[i]]
		}

		// Stop once the level produced no aggregation.
		if communityCount(com) == len(adj) {
			break
		}

		adj = aggregate(adj, com)
		deg = degrees(adj)
		if len(adj) <= 1 {
			break
		}
	}

	final := renumber(origToCurrent)
	result := make(map[string]int, len(ordered))
	for i, id := range ordered {
		result[id] = final[i]
	}
	return result, nil
}

// oneLevel runs the greedy local moving phase: each node in turn moves
// to the neighboring community with the best strictly positive
// modularity gain, until a full sweep moves nothing or the iteration
// cap is reached. Community ids in the returned slice are arbitrary.
func oneLevel(adj [][]neighbor, deg []float64, resolution float64, maxIterations int) []int {
	n := len(adj)
	com := make([]int, n)
	for i := range com {
		com[i] = i
	}

	tot := make([]float64, n)
	copy(tot, deg)

	m2 := 0.0
	for _, d := range deg {
		m2 += d
	}
	// A level with no edge weight means every super-node is isolated.
	// Keep them in singleton communities: merging them here would
	// spuriously join unrelated original nodes at the next level.
	if m2 <= 1e-12 {
		return com
	}

	for iter := 0; iter < maxIterations; iter++ {
		moved := false
		for i := 0; i < n; i++ {
			ci := com[i]
			ki := deg[i]
			if ki <= 1e-12 {
				continue
			}

			// Weight from i into each neighboring community.
			linkTo := make(map[int]float64)
			for _, nb := range adj[i] {
				linkTo[com[nb.node]] += nb.weight
			}

			// Candidate communities sorted by id so ties and float
			// accumulation order cannot vary between runs.
			candidates := make([]int, 0, len(linkTo))
			for c := range linkTo {
				candidates = append(candidates, c)
			}
			sort.Ints(candidates)

			tot[ci] -= ki

			bestCom := ci
			bestGain := 0.0
			for _, c := range candidates {
				gain := linkTo[c] - resolution*(tot[c]*ki/m2)
				if gain > bestGain {
					bestGain = gain
					bestCom = c
				}
			}

			com[i] = bestCom
			tot[bestCom] += ki
			if bestCom != ci {
				moved = true
			}
		}
		if !moved {
			break
		}
	}
	return com
}

// renumber maps community ids onto dense zero-based ids in order of
// first appearance.
func renumber(com []int) []int {
	mapping := make(map[int]int)
	out := make([]int, len(com))
	for i, c := range com {
		id, ok := mapping[c]
		if !ok {
			id = len(mapping)
			mapping[c] = id
		}
		out[i] = id
	}
	return out
}

func communityCount(com []int) int {
	seen := make(map[int]bool, len(com))
	for _, c := range com {
		seen[c] = true
	}
	return len(seen)
}

// aggregate collapses each community into a super-node, summing
// inter-community edge weights. com must already be dense. Intra-
// community weight disappears from the reduced graph; it has no effect
// on later inter-community moves.
func aggregate(adj [][]neighbor, com []int) [][]neighbor {
	k := communityCount(com)
	weights := make([]map[int]float64, k)
	for i := range weights {
		weights[i] = make(map[int]float64)
	}

	for i, neighbors := range adj {
		ci := com[i]
		for _, nb := range neighbors {
			cj := com[nb.node]
			if ci == cj {
				continue
			}
			weights[ci][cj] += nb.weight
		}
	}
	return flatten(weights)
}

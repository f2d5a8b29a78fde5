// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graphrank

import (
	"fmt"
	"math"
)

// PageRankOptions holds the power iteration knobs. Out-of-range values
// are rejected by PageRank, never clamped.
type PageRankOptions struct {
	// Damping is the probability of following a citation edge rather
	// than teleporting, in (0,1).
	Damping float64

	// MaxIterations caps the power iteration.
	MaxIterations int

	// Tolerance is the L1 convergence threshold between successive
	// iterates.
	Tolerance float64
}

// DefaultPageRankOptions returns the standard PageRank parameters.
func DefaultPageRankOptions() PageRankOptions {
	return PageRankOptions{
		Damping:       0.85,
		MaxIterations: 100,
		Tolerance:     1e-6,
	}
}

func (o PageRankOptions) validate() error {
	if o.Damping <= 0 || o.Damping >= 1 {
		return fmt.Errorf("damping must be in (0, 1), got %g", o.Damping)
	}
	if o.MaxIterations < 1 {
		return fmt.Errorf("max iterations must be >= 1, got %d", o.MaxIterations)
	}
	if !(o.Tolerance > 0) {
		return fmt.Errorf("tolerance must be > 0, got %g", o.Tolerance)
	}
	return nil
}

// PageRank computes the stationary authority distribution over the
// directed graph induced by edges on the de-duplicated node list.
// Scores are non-negative and sum to 1. Nodes with no outgoing edges
// redistribute their mass uniformly each iteration so no probability
// leaks. Edges that reference identifiers outside the node list are
// ignored. An empty node list yields an empty map.
func PageRank(nodes []string, edges []Edge, opts PageRankOptions) (map[string]float64, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	index, ordered := indexNodes(nodes)
	n := len(ordered)
	if n == 0 {
		return map[string]float64{}, nil
	}

	outDegree := make([]int, n)
	incoming := make([][]int, n)
	for _, e := range edges {
		s, ok := index[e.From]
		if !ok {
			continue
		}
		d, ok := index[e.To]
		if !ok {
			continue
		}
		outDegree[s]++
		incoming[d] = append(incoming[d], s)
	}

	pr := make([]float64, n)
	for i := range pr {
		pr[i] = 1.0 / float64(n)
	}
	teleport := (1.0 - opts.Damping) / float64(n)

	for iter := 0; iter < opts.MaxIterations; iter++ {
		danglingMass := 0.0
		for i := 0; i < n; i++ {
			if outDegree[i] == 0 {
				danglingMass += pr[i]
			}
		}
		danglingShare := opts.Damping * danglingMass / float64(n)

		next := make([]float64, n)
		for d := 0; d < n; d++ {
			acc := 0.0
			for _, s := range incoming[d] {
				acc += pr[s] / float64(outDegree[s])
			}
			next[d] = teleport + danglingShare + opts.Damping*acc
		}

		diff := 0.0
		for i := 0; i < n; i++ {
			diff += math.Abs(next[i] - pr[i])
		}
		pr = next
		if diff < opts.Tolerance {
			break
		}
	}

	// Renormalize to absorb floating-point drift before handing scores
	// to the fusion stage.
	sum := 0.0
	for _, v := range pr {
		sum += v
	}
	if sum > 0 {
		for i := range pr {
			pr[i] /= sum
		}
	}

	result := make(map[string]float64, n)
	for i, id := range ordered {
		result[id] = pr[i]
	}
	return result, nil
}

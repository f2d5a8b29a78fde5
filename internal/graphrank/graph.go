// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graphrank implements graph algorithms over the local citation
// subgraph of one candidate set: PageRank authority scoring and Louvain
// community detection. Both are pure, deterministic, call-scoped
// computations; the graph lives only for the duration of one call.
// See docs/ARCHITECTURE.md § Graph Ranking.
package graphrank

import "sort"

// Edge is a directed citation edge between two candidate identifiers.
type Edge struct {
	From string
	To   string
}

// indexNodes de-duplicates nodes preserving first-seen order and returns
// the id→index map alongside the ordered id list. Iteration order
// throughout the package follows this insertion order, which keeps the
// order-sensitive Louvain local moving phase reproducible.
func indexNodes(nodes []string) (map[string]int, []string) {
	index := make(map[string]int, len(nodes))
	ordered := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if _, ok := index[n]; ok {
			continue
		}
		index[n] = len(ordered)
		ordered = append(ordered, n)
	}
	return index, ordered
}

// CountDistinctEdges returns the number of distinct directed (from, to)
// pairs among edges, restricted to the node set and excluding self-loops.
// Callers use it to decide whether the subgraph carries enough signal to
// justify graph scoring at all.
func CountDistinctEdges(nodes []string, edges []Edge) int {
	index, _ := indexNodes(nodes)
	type pair struct{ s, d int }
	seen := make(map[pair]bool)
	for _, e := range edges {
		s, ok := index[e.From]
		if !ok {
			continue
		}
		d, ok := index[e.To]
		if !ok || s == d {
			continue
		}
		seen[pair{s, d}] = true
	}
	return len(seen)
}

// neighbor is one entry in a node's adjacency list.
type neighbor struct {
	node   int
	weight float64
}

// buildUndirected symmetrizes the directed edge list into weighted
// adjacency lists: each directed edge contributes weight 1 to both
// directions and parallel edges accumulate. Self-loops and edges leaving
// the node set are dropped. It also returns the number of distinct
// undirected pairs seen. Neighbor lists are sorted by node index so
// later traversals are deterministic.
func buildUndirected(index map[string]int, n int, edges []Edge) ([][]neighbor, int) {
	weights := make([]map[int]float64, n)
	for i := range weights {
		weights[i] = make(map[int]float64)
	}

	type pair struct{ a, b int }
	seen := make(map[pair]bool)

	for _, e := range edges {
		i, ok := index[e.From]
		if !ok {
			continue
		}
		j, ok := index[e.To]
		if !ok || i == j {
			continue
		}
		weights[i][j] += 1.0
		weights[j][i] += 1.0
		p := pair{i, j}
		if j < i {
			p = pair{j, i}
		}
		seen[p] = true
	}

	return flatten(weights), len(seen)
}

// flatten converts per-node weight maps into sorted neighbor slices.
func flatten(weights []map[int]float64) [][]neighbor {
	adj := make([][]neighbor, len(weights))
	for i, w := range weights {
		list := make([]neighbor, 0, len(w))
		for j, wt := range w {
			list = append(list, neighbor{node: j, weight: wt})
		}
		sort.Slice(list, func(a, b int) bool { return list[a].node < list[b].node })
		adj[i] = list
	}
	return adj
}

// degrees returns the weighted degree of every node.
func degrees(adj [][]neighbor) []float64 {
	deg := make([]float64, len(adj))
	for i, neighbors := range adj {
		for _, nb := range neighbors {
			deg[i] += nb.weight
		}
	}
	return deg
}

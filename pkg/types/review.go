// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Group is one thematic cluster of candidates, produced by community
// detection and annotated for synthesis. Groups are ordered by
// descending member count in RankOutput.
type Group struct {
	// Community is the dense, zero-based community id.
	Community int `json:"community" yaml:"community"`

	// Size is the total number of members, including those not listed
	// among the representatives.
	Size int `json:"size" yaml:"size"`

	// Keywords summarizes the group: the most frequent topical tags
	// among its members.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// Representatives are the top members by hybrid score, capped to
	// the configured count per group.
	Representatives []Candidate `json:"representatives" yaml:"representatives"`
}

// RankOutput bundles the result of one ranking run: the fused, reranked
// candidate list and its thematic grouping.
type RankOutput struct {
	// Concept is the resolved controlled-vocabulary concept, if any.
	Concept *Concept `json:"concept,omitempty" yaml:"concept,omitempty"`

	// Candidates is the candidate list sorted descending by hybrid score.
	Candidates []Candidate `json:"candidates" yaml:"candidates"`

	// Groups is the community partition ordered by descending size.
	Groups []Group `json:"groups" yaml:"groups"`

	// GraphEdges is the number of distinct directed edges in the local
	// citation subgraph. Zero or a small value means authority scoring
	// was skipped.
	GraphEdges int `json:"graph_edges" yaml:"graph_edges"`
}

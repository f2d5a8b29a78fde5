// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the review-engine pipeline.
// See docs/ARCHITECTURE.md § Pipeline Interface, § Data Structures.
package types

// Candidate represents one retrieved paper moving through the ranking
// pipeline. Retrieval fills the bibliographic fields and the semantic
// relevance score; the ranking stage adds authority, normalized, and
// hybrid scores; community detection adds the community label.
type Candidate struct {
	// ID is the canonical identifier from the source (OpenAlex work ID or DOI).
	// It never changes once the candidate is created.
	ID string `json:"id" yaml:"id"`

	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Abstract is the paper abstract, reconstructed from the source's
	// inverted index when necessary.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Year is the publication year, 0 when unknown.
	Year int `json:"year" yaml:"year"`

	// CitedBy is the citation count reported by the source.
	CitedBy int `json:"cited_by" yaml:"cited_by"`

	// CitedIDs lists identifiers of works this paper cites. Only
	// references that point back into the current candidate set
	// contribute edges to the local citation subgraph.
	CitedIDs []string `json:"cited_ids,omitempty" yaml:"cited_ids,omitempty"`

	// Topics lists topical tags attached by the source (concept display
	// names). Used for community keyword summaries.
	Topics []string `json:"topics,omitempty" yaml:"topics,omitempty"`

	// SemanticScore is the externally computed relevance of this paper
	// to the query, in [0,1].
	SemanticScore float64 `json:"semantic_score" yaml:"semantic_score"`

	// AuthorityScore is the PageRank mass of this paper in the local
	// citation subgraph. Zero when the graph was too sparse to score.
	AuthorityScore float64 `json:"authority_score" yaml:"authority_score"`

	// NormSemantic is SemanticScore min-max normalized across the
	// candidate set, in [0,1].
	NormSemantic float64 `json:"norm_semantic" yaml:"norm_semantic"`

	// NormAuthority is AuthorityScore divided by the set maximum, in [0,1].
	NormAuthority float64 `json:"norm_authority" yaml:"norm_authority"`

	// HybridScore is the fused ranking score:
	// alpha*NormSemantic + beta*NormAuthority.
	HybridScore float64 `json:"hybrid_score" yaml:"hybrid_score"`

	// Community is the community label assigned by community detection,
	// or -1 before clustering.
	Community int `json:"community" yaml:"community"`
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "review-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ConceptConfig holds settings for phrase extraction and concept resolution.
type ConceptConfig struct {
	HTTPConfig `yaml:",inline"`

	// Email is sent as mailto parameter for OpenAlex polite pool access.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// MaxCandidatePhrases caps how many extracted phrases are looked up
	// (default 4).
	MaxCandidatePhrases int `json:"max_candidate_phrases" yaml:"max_candidate_phrases"`

	// CandidatesPerPhrase is how many concept candidates to request per
	// phrase (default 5).
	CandidatesPerPhrase int `json:"candidates_per_phrase" yaml:"candidates_per_phrase"`

	// MaxRetries is the number of retry attempts for a failed concept
	// lookup before the phrase is skipped (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// RetrievalConfig holds settings for the candidate retrieval stage.
type RetrievalConfig struct {
	HTTPConfig `yaml:",inline"`

	// Email is sent as mailto parameter for OpenAlex polite pool access.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// MaxResults is the maximum number of candidates to return (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// SinceYears restricts retrieval to papers published in the last N
	// years (default 10).
	SinceYears int `json:"since_years" yaml:"since_years"`
}

// RankingConfig holds the graph ranking and score fusion knobs.
// The algorithm packages validate these fail-fast; out-of-range values
// are configuration errors, never silently clamped.
type RankingConfig struct {
	// Damping is the PageRank damping factor, in (0,1) (default 0.85).
	Damping float64 `json:"damping" yaml:"damping"`

	// MaxIterations caps PageRank power iteration (default 100).
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`

	// Tolerance is the PageRank L1 convergence threshold (default 1e-6).
	Tolerance float64 `json:"tolerance" yaml:"tolerance"`

	// Resolution is the Louvain modularity resolution gamma (default 1.0).
	Resolution float64 `json:"resolution" yaml:"resolution"`

	// MaxLevels caps Louvain aggregation levels (default 10).
	MaxLevels int `json:"max_levels" yaml:"max_levels"`

	// MaxLevelIterations caps the local moving phase per level (default 50).
	MaxLevelIterations int `json:"max_level_iterations" yaml:"max_level_iterations"`

	// MinEdges is the minimum number of distinct citation edges required
	// before graph signals are trusted (default 2). Below it, authority
	// scoring is skipped and all nodes fall into one community.
	MinEdges int `json:"min_edges" yaml:"min_edges"`

	// Alpha weights the normalized semantic score in the hybrid (default 0.8).
	Alpha float64 `json:"alpha" yaml:"alpha"`

	// Beta weights the normalized authority score in the hybrid (default 0.2).
	Beta float64 `json:"beta" yaml:"beta"`

	// RepresentativesPerGroup caps the members listed per community
	// group (default 3).
	RepresentativesPerGroup int `json:"representatives_per_group" yaml:"representatives_per_group"`
}

// DefaultRankingConfig returns the standard ranking knobs.
func DefaultRankingConfig() RankingConfig {
	return RankingConfig{
		Damping:                 0.85,
		MaxIterations:           100,
		Tolerance:               1e-6,
		Resolution:              1.0,
		MaxLevels:               10,
		MaxLevelIterations:      50,
		MinEdges:                2,
		Alpha:                   0.8,
		Beta:                    0.2,
		RepresentativesPerGroup: 3,
	}
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// GenerationConfig holds settings for review synthesis.
type GenerationConfig struct {
	AIConfig `yaml:",inline"`

	// PapersPerGroup is how many representative papers to include per
	// thematic group in the synthesis context (default 3).
	PapersPerGroup int `json:"papers_per_group" yaml:"papers_per_group"`
}

// CacheConfig holds settings for the local concept cache and run log.
type CacheConfig struct {
	// Dir is the directory holding the SQLite database (default "cache").
	Dir string `json:"dir" yaml:"dir"`

	// ConceptTTL is how long a cached concept resolution stays fresh
	// (default 7 days).
	ConceptTTL time.Duration `json:"concept_ttl" yaml:"concept_ttl"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Concept    ConceptConfig    `json:"concept" yaml:"concept"`
	Retrieval  RetrievalConfig  `json:"retrieval" yaml:"retrieval"`
	Ranking    RankingConfig    `json:"ranking" yaml:"ranking"`
	Generation GenerationConfig `json:"generation" yaml:"generation"`
	Cache      CacheConfig      `json:"cache" yaml:"cache"`
}

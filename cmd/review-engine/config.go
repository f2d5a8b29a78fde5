// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/review-engine/internal/concept"
	"github.com/pdiddy/review-engine/internal/retrieval"
	"github.com/pdiddy/review-engine/internal/review"
	"github.com/pdiddy/review-engine/pkg/types"
)

// loadPipelineConfig assembles the stage configuration from viper
// (config file and REVIEW_ENGINE_* environment), falling back to the
// documented defaults.
func loadPipelineConfig() types.PipelineConfig {
	viper.SetDefault("http.timeout", 30*time.Second)
	viper.SetDefault("http.user_agent", "review-engine/"+version)
	viper.SetDefault("concept.max_candidate_phrases", 4)
	viper.SetDefault("concept.candidates_per_phrase", 5)
	viper.SetDefault("concept.max_retries", 3)
	viper.SetDefault("retrieval.max_results", 20)
	viper.SetDefault("retrieval.since_years", 10)
	viper.SetDefault("generation.model", "claude-sonnet-4-5")
	viper.SetDefault("generation.max_retries", 3)
	viper.SetDefault("generation.papers_per_group", 3)
	viper.SetDefault("cache.dir", "cache")
	viper.SetDefault("cache.concept_ttl", 7*24*time.Hour)

	httpCfg := types.HTTPConfig{
		Timeout:   viper.GetDuration("http.timeout"),
		UserAgent: viper.GetString("http.user_agent"),
	}
	email := secretDefault("openalex-email", viper.GetString("openalex.email"))
	apiKey := secretDefault("anthropic-api-key", viper.GetString("generation.api_key"))

	ranking := types.DefaultRankingConfig()
	if viper.IsSet("ranking.damping") {
		ranking.Damping = viper.GetFloat64("ranking.damping")
	}
	if viper.IsSet("ranking.max_iterations") {
		ranking.MaxIterations = viper.GetInt("ranking.max_iterations")
	}
	if viper.IsSet("ranking.tolerance") {
		ranking.Tolerance = viper.GetFloat64("ranking.tolerance")
	}
	if viper.IsSet("ranking.resolution") {
		ranking.Resolution = viper.GetFloat64("ranking.resolution")
	}
	if viper.IsSet("ranking.min_edges") {
		ranking.MinEdges = viper.GetInt("ranking.min_edges")
	}
	if viper.IsSet("ranking.alpha") {
		ranking.Alpha = viper.GetFloat64("ranking.alpha")
	}
	if viper.IsSet("ranking.beta") {
		ranking.Beta = viper.GetFloat64("ranking.beta")
	}
	if viper.IsSet("ranking.representatives_per_group") {
		ranking.RepresentativesPerGroup = viper.GetInt("ranking.representatives_per_group")
	}

	return types.PipelineConfig{
		Concept: types.ConceptConfig{
			HTTPConfig:          httpCfg,
			Email:               email,
			MaxCandidatePhrases: viper.GetInt("concept.max_candidate_phrases"),
			CandidatesPerPhrase: viper.GetInt("concept.candidates_per_phrase"),
			MaxRetries:          viper.GetInt("concept.max_retries"),
		},
		Retrieval: types.RetrievalConfig{
			HTTPConfig: httpCfg,
			Email:      email,
			MaxResults: viper.GetInt("retrieval.max_results"),
			SinceYears: viper.GetInt("retrieval.since_years"),
		},
		Ranking: ranking,
		Generation: types.GenerationConfig{
			AIConfig: types.AIConfig{
				Model:      viper.GetString("generation.model"),
				APIKey:     apiKey,
				MaxRetries: viper.GetInt("generation.max_retries"),
			},
			PapersPerGroup: viper.GetInt("generation.papers_per_group"),
		},
		Cache: types.CacheConfig{
			Dir:        viper.GetString("cache.dir"),
			ConceptTTL: viper.GetDuration("cache.concept_ttl"),
		},
	}
}

// buildBackends constructs the live stage backends from the config.
// The phrase generator is nil without an Anthropic API key; phrase
// extraction then falls back to keyword heuristics.
func buildBackends(cfg types.PipelineConfig) (concept.PhraseGenerator, concept.ConceptLookup, retrieval.OpenAlexBackend, review.Synthesizer) {
	client := &http.Client{Timeout: cfg.Concept.Timeout}

	var phrases concept.PhraseGenerator
	var synth review.Synthesizer
	if cfg.Generation.APIKey != "" {
		phrases = &concept.ClaudePhraseBackend{
			APIKey: cfg.Generation.APIKey,
			Model:  cfg.Generation.Model,
			Client: client,
		}
		synth = &review.ClaudeBackend{
			APIKey: cfg.Generation.APIKey,
			Model:  cfg.Generation.Model,
			Client: client,
		}
	}

	lookup := &concept.OpenAlexLookup{
		Client:    client,
		Email:     cfg.Concept.Email,
		UserAgent: cfg.Concept.UserAgent,
	}
	retriever := retrieval.OpenAlexBackend{
		Client:    client,
		Email:     cfg.Retrieval.Email,
		UserAgent: cfg.Retrieval.UserAgent,
	}
	return phrases, lookup, retriever, synth
}

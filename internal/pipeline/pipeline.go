// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline wires the stages into the full ranking flow:
// phrase extraction, concept resolution, retrieval, relevance scoring,
// graph reranking, community grouping, and optional synthesis. See
// docs/ARCHITECTURE.md § Pipeline Interface.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/review-engine/internal/cache"
	"github.com/pdiddy/review-engine/internal/concept"
	"github.com/pdiddy/review-engine/internal/graphrank"
	"github.com/pdiddy/review-engine/internal/rank"
	"github.com/pdiddy/review-engine/internal/retrieval"
	"github.com/pdiddy/review-engine/internal/review"
	"github.com/pdiddy/review-engine/pkg/types"
)

// Retriever abstracts the candidate source so tests can supply a mock.
type Retriever interface {
	Retrieve(ctx context.Context, query retrieval.Query, cfg types.RetrievalConfig) ([]types.Candidate, error)
}

// Deps holds the stage backends. Phrases, Cache, and Synthesizer are
// optional; Lookup and Retriever are required for a live run.
type Deps struct {
	Phrases     concept.PhraseGenerator
	Lookup      concept.ConceptLookup
	Retriever   Retriever
	Cache       *cache.Store
	Synthesizer review.Synthesizer
}

// Rank runs the pipeline up to and including grouping. Progress lines
// go to w. A query that resolves to no concept still ranks on free
// text; a query with no candidates returns an empty output and no
// error.
func Rank(ctx context.Context, deps Deps, query string, cfg types.PipelineConfig, w io.Writer) (types.RankOutput, error) {
	var out types.RankOutput

	resolved, err := resolveConcept(ctx, deps, query, cfg.Concept, w)
	if err != nil {
		return out, err
	}
	out.Concept = resolved

	rq := retrieval.Query{FreeText: query}
	if resolved != nil {
		rq.ConceptID = resolved.ID
	}
	candidates, err := deps.Retriever.Retrieve(ctx, rq, cfg.Retrieval)
	if err != nil {
		return out, fmt.Errorf("retrieving candidates: %w", err)
	}
	fmt.Fprintf(w, "retrieved %d candidates\n", len(candidates))
	if len(candidates) == 0 {
		return out, nil
	}

	retrieval.ScoreAll(query, candidates, retrieval.ScoreOptions{WindowYears: cfg.Retrieval.SinceYears})

	rankOpts := rank.Options{
		Alpha:    cfg.Ranking.Alpha,
		Beta:     cfg.Ranking.Beta,
		MinEdges: cfg.Ranking.MinEdges,
		PageRank: graphrank.PageRankOptions{
			Damping:       cfg.Ranking.Damping,
			MaxIterations: cfg.Ranking.MaxIterations,
			Tolerance:     cfg.Ranking.Tolerance,
		},
	}
	ranked, edgeCount, err := rank.Rerank(candidates, rankOpts)
	if err != nil {
		return out, fmt.Errorf("reranking: %w", err)
	}
	out.Candidates = ranked
	out.GraphEdges = edgeCount
	fmt.Fprintf(w, "citation subgraph: %d distinct edges\n", edgeCount)

	nodes := make([]string, len(ranked))
	for i, c := range ranked {
		nodes[i] = c.ID
	}
	communities, err := graphrank.DetectCommunities(nodes, rank.CitationEdges(ranked), graphrank.LouvainOptions{
		Resolution:    cfg.Ranking.Resolution,
		MaxLevels:     cfg.Ranking.MaxLevels,
		MaxIterations: cfg.Ranking.MaxLevelIterations,
		MinEdges:      cfg.Ranking.MinEdges,
	})
	if err != nil {
		return out, fmt.Errorf("detecting communities: %w", err)
	}
	for i := range out.Candidates {
		if id, ok := communities[out.Candidates[i].ID]; ok {
			out.Candidates[i].Community = id
		}
	}

	out.Groups = review.BuildGroups(out.Candidates, cfg.Ranking.RepresentativesPerGroup)
	fmt.Fprintf(w, "grouped into %d communities\n", len(out.Groups))

	if deps.Cache != nil {
		conceptID := ""
		if resolved != nil {
			conceptID = resolved.ID
		}
		runID, logErr := deps.Cache.LogRun(ctx, cache.RunRecord{
			Query:       query,
			ConceptID:   conceptID,
			Candidates:  len(out.Candidates),
			GraphEdges:  out.GraphEdges,
			Communities: len(out.Groups),
		})
		if logErr != nil {
			fmt.Fprintf(w, "warning: run log write failed: %v\n", logErr)
		} else {
			fmt.Fprintf(w, "run %s logged\n", runID)
		}
	}

	return out, nil
}

// Review runs Rank and then synthesizes the narrative review from the
// groups. With no synthesizer configured the review text is empty.
func Review(ctx context.Context, deps Deps, query string, cfg types.PipelineConfig, w io.Writer) (types.RankOutput, string, error) {
	out, err := Rank(ctx, deps, query, cfg, w)
	if err != nil {
		return out, "", err
	}
	if deps.Synthesizer == nil || len(out.Groups) == 0 {
		return out, "", nil
	}

	text, err := review.GenerateReview(ctx, deps.Synthesizer, query, out.Groups, cfg.Generation)
	if err != nil {
		return out, "", fmt.Errorf("synthesizing review: %w", err)
	}
	fmt.Fprintln(w, "review synthesized")
	return out, text, nil
}

// resolveConcept returns the controlled-vocabulary concept for the
// query, consulting the cache first. A query that matches nothing in
// the vocabulary yields (nil, nil).
func resolveConcept(ctx context.Context, deps Deps, query string, cfg types.ConceptConfig, w io.Writer) (*types.Concept, error) {
	if deps.Cache != nil {
		cached, ok, err := deps.Cache.GetConcept(ctx, query)
		if err != nil {
			fmt.Fprintf(w, "warning: concept cache read failed: %v\n", err)
		} else if ok {
			fmt.Fprintf(w, "concept %s (cached)\n", cached.DisplayName)
			return cached, nil
		}
	}

	phrases := concept.ExtractPhrases(ctx, deps.Phrases, query)
	fmt.Fprintf(w, "candidate phrases: %d\n", len(phrases))

	resolved, err := concept.Resolve(ctx, deps.Lookup, phrases, concept.ResolveOptions{
		MaxPhrases:          cfg.MaxCandidatePhrases,
		CandidatesPerPhrase: cfg.CandidatesPerPhrase,
		MaxRetries:          cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("resolving concept: %w", err)
	}
	if resolved == nil {
		fmt.Fprintln(w, "no concept matched; ranking on free text")
		return nil, nil
	}
	fmt.Fprintf(w, "concept %s (%s)\n", resolved.DisplayName, resolved.ID)

	if deps.Cache != nil {
		if err := deps.Cache.PutConcept(ctx, query, resolved); err != nil {
			fmt.Fprintf(w, "warning: concept cache write failed: %v\n", err)
		}
	}
	return resolved, nil
}

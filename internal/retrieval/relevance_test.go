// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieval

import (
	"math"
	"testing"

	"github.com/pdiddy/review-engine/pkg/types"
)

func scoreOpts() ScoreOptions {
	return ScoreOptions{WindowYears: 10, ReferenceYear: 2026}
}

func TestSemanticScoreFullMatchRecentInfluential(t *testing.T) {
	got := SemanticScore(
		"graph ranking",
		"Graph ranking methods",
		"We study graph ranking at scale.",
		2026, 100, 100, scoreOpts(),
	)
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("SemanticScore() = %v, want 1.0", got)
	}
}

func TestSemanticScoreTitleWeighsMoreThanAbstract(t *testing.T) {
	titleOnly := SemanticScore("ranking", "Ranking papers", "unrelated text", 0, 0, 0, scoreOpts())
	abstractOnly := SemanticScore("ranking", "unrelated text", "Ranking papers", 0, 0, 0, scoreOpts())
	if titleOnly <= abstractOnly {
		t.Errorf("title match %v should outscore abstract match %v", titleOnly, abstractOnly)
	}
	if math.Abs(titleOnly-0.3) > 1e-9 {
		t.Errorf("title-only match = %v, want 0.3", titleOnly)
	}
	if math.Abs(abstractOnly-0.2) > 1e-9 {
		t.Errorf("abstract-only match = %v, want 0.2", abstractOnly)
	}
}

func TestSemanticScoreRecencyWindow(t *testing.T) {
	tests := []struct {
		name string
		year int
		want float64
	}{
		{"current year", 2026, 0.3},
		{"half window", 2021, 0.15},
		{"window edge", 2016, 0.0},
		{"older than window", 1999, 0.0},
		{"unknown year", 0, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SemanticScore("zz", "no match", "no match", tt.year, 0, 0, scoreOpts())
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("SemanticScore(year=%d) = %v, want %v", tt.year, got, tt.want)
			}
		})
	}
}

func TestSemanticScoreInfluenceIsRelative(t *testing.T) {
	top := SemanticScore("zz", "", "", 0, 1000, 1000, scoreOpts())
	if math.Abs(top-0.2) > 1e-9 {
		t.Errorf("most-cited influence = %v, want 0.2", top)
	}
	mid := SemanticScore("zz", "", "", 0, 10, 1000, scoreOpts())
	if mid <= 0 || mid >= top {
		t.Errorf("mid influence = %v, want in (0, %v)", mid, top)
	}
	none := SemanticScore("zz", "", "", 0, 0, 1000, scoreOpts())
	if none != 0 {
		t.Errorf("uncited influence = %v, want 0", none)
	}
}

func TestScoreAllUsesBatchMaximum(t *testing.T) {
	candidates := []types.Candidate{
		{ID: "A", Title: "graph ranking", CitedBy: 100},
		{ID: "B", Title: "graph ranking", CitedBy: 10},
		{ID: "C", Title: "graph ranking", CitedBy: 0},
	}
	ScoreAll("graph ranking", candidates, scoreOpts())

	if candidates[0].SemanticScore <= candidates[1].SemanticScore {
		t.Errorf("most-cited should outscore less-cited: %v vs %v",
			candidates[0].SemanticScore, candidates[1].SemanticScore)
	}
	if candidates[1].SemanticScore <= candidates[2].SemanticScore {
		t.Errorf("cited should outscore uncited: %v vs %v",
			candidates[1].SemanticScore, candidates[2].SemanticScore)
	}
	for _, c := range candidates {
		if c.SemanticScore < 0 || c.SemanticScore > 1 {
			t.Errorf("score %v for %s out of [0,1]", c.SemanticScore, c.ID)
		}
	}
}

func TestScoreAllEmptyBatch(t *testing.T) {
	ScoreAll("anything", nil, scoreOpts())
}

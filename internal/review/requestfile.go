// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/review-engine/pkg/types"
)

// RequestFile is the on-disk representation of a ranking run: the
// query, the resolved concept, the ranked candidates, and the thematic
// groups. A run can be saved once and re-reviewed later without
// re-querying APIs.
type RequestFile struct {
	RunID      string            `yaml:"run_id"`
	Query      string            `yaml:"query"`
	Concept    *types.Concept    `yaml:"concept,omitempty"`
	Candidates []types.Candidate `yaml:"candidates"`
	Groups     []types.Group     `yaml:"groups,omitempty"`
	Review     string            `yaml:"review,omitempty"`
	Summary    RequestSummary    `yaml:"summary"`
}

// RequestSummary stores run statistics and a timestamp.
type RequestSummary struct {
	Total       int       `yaml:"total"`
	GraphEdges  int       `yaml:"graph_edges"`
	Communities int       `yaml:"communities"`
	Timestamp   time.Time `yaml:"timestamp"`
}

// WriteRequestFile saves a ranking run to a YAML file under a fresh
// run id, and returns that id.
func WriteRequestFile(path, query string, out types.RankOutput, review string) (string, error) {
	rf := RequestFile{
		RunID:      uuid.NewString(),
		Query:      query,
		Concept:    out.Concept,
		Candidates: out.Candidates,
		Groups:     out.Groups,
		Review:     review,
		Summary: RequestSummary{
			Total:       len(out.Candidates),
			GraphEdges:  out.GraphEdges,
			Communities: len(out.Groups),
			Timestamp:   time.Now(),
		},
	}

	data, err := yaml.Marshal(&rf)
	if err != nil {
		return "", fmt.Errorf("marshaling request file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return rf.RunID, nil
}

// ReadRequestFile loads a previously saved run from disk.
func ReadRequestFile(path string) (*RequestFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading request file: %w", err)
	}
	var rf RequestFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing request file: %w", err)
	}
	return &rf, nil
}

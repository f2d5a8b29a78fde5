// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/internal/cache"
	"github.com/pdiddy/review-engine/internal/pipeline"
	"github.com/pdiddy/review-engine/internal/review"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Retrieve, score, and rerank candidate papers for a query",
	Long: `Rank runs the full ranking pipeline: concept resolution, OpenAlex
retrieval, relevance scoring, citation-graph authority reranking, and
community grouping. The ranked candidates and their thematic groups go
to stdout as JSON, or to a YAML run file with --output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("query")
		if query == "" {
			return fmt.Errorf("--query is required")
		}
		output, _ := cmd.Flags().GetString("output")

		cfg := loadPipelineConfig()
		if n, _ := cmd.Flags().GetInt("max-results"); n > 0 {
			cfg.Retrieval.MaxResults = n
		}
		if cmd.Flags().Changed("alpha") {
			cfg.Ranking.Alpha, _ = cmd.Flags().GetFloat64("alpha")
		}
		if cmd.Flags().Changed("beta") {
			cfg.Ranking.Beta, _ = cmd.Flags().GetFloat64("beta")
		}
		if noGraph, _ := cmd.Flags().GetBool("no-graph"); noGraph {
			// An unreachable edge threshold disables both authority
			// scoring and community structure.
			cfg.Ranking.MinEdges = math.MaxInt
		}
		phrases, lookup, retriever, _ := buildBackends(cfg)

		deps := pipeline.Deps{Phrases: phrases, Lookup: lookup, Retriever: &retriever}
		store, err := cache.NewStore(cfg.Cache)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: cache unavailable: %v\n", err)
		} else {
			deps.Cache = store
			defer store.Close()
		}

		out, err := pipeline.Rank(cmd.Context(), deps, query, cfg, os.Stderr)
		if err != nil {
			return err
		}

		if output != "" {
			runID, err := review.WriteRequestFile(output, query, out, "")
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "wrote %s (run %s)\n", output, runID)
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	rankCmd.Flags().String("query", "", "free-text research question")
	rankCmd.Flags().String("output", "", "write the run to a YAML file instead of stdout")
	rankCmd.Flags().Int("max-results", 0, "override the maximum number of candidates")
	rankCmd.Flags().Float64("alpha", 0, "override the semantic score weight")
	rankCmd.Flags().Float64("beta", 0, "override the authority score weight")
	rankCmd.Flags().Bool("no-graph", false, "rank by semantic score only, without citation-graph signals")

	rootCmd.AddCommand(rankCmd)
}

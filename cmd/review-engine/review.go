// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/internal/cache"
	"github.com/pdiddy/review-engine/internal/pipeline"
	"github.com/pdiddy/review-engine/internal/review"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Rank candidates and synthesize a thematic literature review",
	Long: `Review runs the ranking pipeline and then asks the AI model for a short
narrative review: one paragraph per thematic group, grounded in the
group's representative papers. The Markdown review goes to stdout; with
--output the full run (candidates, groups, review) is saved as YAML.

Requires an Anthropic API key (.secrets/anthropic-api-key or
REVIEW_ENGINE_GENERATION_API_KEY).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("query")
		if query == "" {
			return fmt.Errorf("--query is required")
		}
		output, _ := cmd.Flags().GetString("output")

		cfg := loadPipelineConfig()
		phrases, lookup, retriever, synth := buildBackends(cfg)
		if synth == nil {
			return fmt.Errorf("review synthesis requires an Anthropic API key")
		}

		deps := pipeline.Deps{Phrases: phrases, Lookup: lookup, Retriever: &retriever, Synthesizer: synth}
		store, err := cache.NewStore(cfg.Cache)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: cache unavailable: %v\n", err)
		} else {
			deps.Cache = store
			defer store.Close()
		}

		out, text, err := pipeline.Review(cmd.Context(), deps, query, cfg, os.Stderr)
		if err != nil {
			return err
		}

		if output != "" {
			runID, err := review.WriteRequestFile(output, query, out, text)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "wrote %s (run %s)\n", output, runID)
			return nil
		}

		if text == "" {
			fmt.Fprintln(os.Stderr, "nothing to review: no candidate groups")
			return nil
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	reviewCmd.Flags().String("query", "", "free-text research question")
	reviewCmd.Flags().String("output", "", "write the run to a YAML file instead of stdout")

	rootCmd.AddCommand(reviewCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/review-engine/internal/concept"
)

var conceptCmd = &cobra.Command{
	Use:   "concept",
	Short: "Resolve the controlled-vocabulary concept for a query",
	Long: `Concept translates a free-text research question into candidate search
phrases and resolves them against the OpenAlex concept vocabulary. The
single best-scoring concept is printed as YAML. A query that matches
nothing in the vocabulary is reported, not treated as an error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("query")
		if query == "" {
			return fmt.Errorf("--query is required")
		}

		cfg := loadPipelineConfig()
		phrases, lookup, _, _ := buildBackends(cfg)

		ctx := cmd.Context()
		candidates := concept.ExtractPhrases(ctx, phrases, query)
		fmt.Fprintf(os.Stderr, "candidate phrases: %v\n", candidates)

		resolved, err := concept.Resolve(ctx, lookup, candidates, concept.ResolveOptions{
			MaxPhrases:          cfg.Concept.MaxCandidatePhrases,
			CandidatesPerPhrase: cfg.Concept.CandidatesPerPhrase,
			MaxRetries:          cfg.Concept.MaxRetries,
		})
		if err != nil {
			return err
		}
		if resolved == nil {
			fmt.Fprintln(os.Stderr, "no concept matched the query")
			return nil
		}

		data, err := yaml.Marshal(resolved)
		if err != nil {
			return fmt.Errorf("marshaling concept: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}

func init() {
	conceptCmd.Flags().String("query", "", "free-text research question")

	rootCmd.AddCommand(conceptCmd)
}

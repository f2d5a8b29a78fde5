// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/internal/cache"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past ranking runs from the local run log",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg := loadPipelineConfig()
		store, err := cache.NewStore(cfg.Cache)
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.Runs(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintln(os.Stderr, "no runs logged yet")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tWHEN\tQUERY\tCONCEPT\tCANDIDATES\tEDGES\tGROUPS")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
				r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Query, r.ConceptID,
				r.Candidates, r.GraphEdges, r.Communities)
		}
		return w.Flush()
	},
}

func init() {
	runsCmd.Flags().Int("limit", 20, "maximum number of runs to list")

	rootCmd.AddCommand(runsCmd)
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"weasel/internal/config"
	"weasel/pkg/weasel"
)

func newRunsCmd() *cobra.Command {
	var (
		limit        int
		jsonOut      bool
		artifactsDir string
	)
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return errors.New("limit must be > 0")
			}
			client, err := weasel.New(weasel.Options{ArtifactsDir: artifactsDir})
			if err != nil {
				return err
			}
			defer client.Close()

			items, err := client.Runs(cmd.Context(), weasel.RunsRequest{Limit: limit})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOut {
				type runsItem struct {
					RunID        string  `json:"run_id"`
					CreatedAtUTC string  `json:"created_at_utc"`
					Target       string  `json:"target"`
					Seed         int64   `json:"seed"`
					Population   int     `json:"population_size"`
					MutationRate float64 `json:"mutation_rate"`
					Generations  int     `json:"generations"`
					FinalScore   int     `json:"final_score"`
					TargetScore  int     `json:"target_score"`
					Reached      bool    `json:"reached"`
				}
				rows := make([]runsItem, 0, len(items))
				for _, item := range items {
					rows = append(rows, runsItem(item))
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			if len(items) == 0 {
				_, err := fmt.Fprintln(out, "no runs found")
				return err
			}
			for _, item := range items {
				if _, err := fmt.Fprintf(out, "run_id=%s created_at=%s target=%q seed=%d pop=%d rate=%g gens=%d score=%d/%d reached=%t\n",
					item.RunID,
					item.CreatedAtUTC,
					item.Target,
					item.Seed,
					item.Population,
					item.MutationRate,
					item.Generations,
					item.FinalScore,
					item.TargetScore,
					item.Reached,
				); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "max runs to list")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit runs list as JSON")
	cmd.Flags().StringVar(&artifactsDir, "artifacts-dir", config.DefaultConfig().ArtifactsDir, "directory holding the run index")
	return cmd
}

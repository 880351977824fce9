package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"weasel/internal/config"
	"weasel/pkg/weasel"
)

func newHistoryCmd() *cobra.Command {
	var (
		runID        string
		latest       bool
		limit        int
		jsonOut      bool
		artifactsDir string
		storeKind    string
		dbPath       string
	)
	defaults := config.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the champion of every generation of a run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := weasel.New(weasel.Options{
				StoreKind:    storeKind,
				DBPath:       dbPath,
				ArtifactsDir: artifactsDir,
			})
			if err != nil {
				return err
			}
			defer client.Close()

			history, err := client.History(cmd.Context(), weasel.HistoryRequest{
				RunID:  runID,
				Latest: latest,
				Limit:  limit,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(history)
			}
			for _, g := range history {
				if _, err := fmt.Fprintf(out, "%d: %s (%d)\n", g.Generation, g.Text, g.Score); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&runID, "run-id", "", "run id")
	cmd.Flags().BoolVar(&latest, "latest", false, "show the most recent run from the run index")
	cmd.Flags().IntVar(&limit, "limit", 0, "max generations to print (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit generations as JSON")
	cmd.Flags().StringVar(&artifactsDir, "artifacts-dir", defaults.ArtifactsDir, "directory holding run artifacts")
	cmd.Flags().StringVar(&storeKind, "store", defaults.Store.Kind, "store backend: memory|sqlite")
	cmd.Flags().StringVar(&dbPath, "db-path", defaults.Store.DBPath, "sqlite database path")
	return cmd
}

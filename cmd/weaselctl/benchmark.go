package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"weasel/pkg/weasel"
)

func newBenchmarkCmd() *cobra.Command {
	var (
		flags   runFlags
		runs    int
		workers int
	)
	cmd := &cobra.Command{
		Use:   "benchmark [TARGET]",
		Short: "Repeat a run with consecutive seeds and summarize generations to target",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if runs <= 0 {
				return errors.New("runs must be > 0")
			}
			cfg, err := flags.resolve(cmd, args)
			if err != nil {
				return err
			}
			s, err := openSession(cfg)
			if err != nil {
				return err
			}
			defer func() {
				err = errors.Join(err, s.close())
			}()

			req, err := s.runRequest()
			if err != nil {
				return err
			}
			summary, err := s.client.Benchmark(cmd.Context(), weasel.BenchmarkRequest{
				Run:     req,
				Runs:    runs,
				Workers: workers,
			})
			if err != nil {
				return err
			}
			return printBenchmark(cmd, summary)
		},
	}
	flags.bind(cmd.Flags())
	cmd.Flags().IntVar(&runs, "runs", 10, "number of runs")
	cmd.Flags().IntVar(&workers, "workers", 4, "runs bred concurrently")
	return cmd
}

func printBenchmark(cmd *cobra.Command, summary weasel.BenchmarkSummary) error {
	var evaluations int64
	for _, r := range summary.Runs {
		evaluations += r.Evaluations
	}
	out := cmd.OutOrStdout()
	_, err := fmt.Fprintf(out,
		"benchmark=%s runs=%d reached=%d success_rate=%.2f\n"+
			"generations avg=%s std=%s min=%d max=%d\n"+
			"offspring_evaluated=%s\n"+
			"summary=%s\n",
		summary.BenchmarkID,
		summary.TotalRuns,
		summary.SuccessRuns,
		summary.SuccessRate,
		humanize.CommafWithDigits(summary.AvgGenerations, 2),
		humanize.CommafWithDigits(summary.StdGenerations, 2),
		summary.MinGenerations,
		summary.MaxGenerations,
		humanize.Comma(evaluations),
		summary.Path,
	)
	return err
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"weasel/pkg/weasel"
)

func newRunCmd() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "run [TARGET]",
		Short: "Breed a random string until it matches TARGET",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
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
			out := cmd.OutOrStdout()
			req.OnGeneration = func(g weasel.Generation) error {
				_, err := fmt.Fprintf(out, "%d: %s (%d/%d)\n", g.Generation, g.Text, g.Score, g.TargetScore)
				return err
			}
			_, err = s.client.Run(cmd.Context(), req)
			return err
		},
	}
	flags.bind(cmd.Flags())
	return cmd
}

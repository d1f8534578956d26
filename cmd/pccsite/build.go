package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sayeems/pcc-test-sdk/internal/build"
)

func newBuildCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Enumerate static paths and pre-render their pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, src, err := setup(root)
			if err != nil {
				return err
			}
			b := &build.Builder{Cfg: cfg, Source: src, Log: log}
			res, err := b.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "built %d pages from %d paths (%d skipped) in %s\n",
				res.Pages, len(res.Paths.Entries), len(res.Skipped), res.Duration.Round(1e6))
			return nil
		},
	}
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/sayeems/pcc-test-sdk/internal/serve"
)

func newServeCommand(root *RootOptions) *cobra.Command {
	var (
		addr string
		dev  bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve article pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, src, err := setup(root)
			if err != nil {
				return err
			}
			s, err := serve.New(cfg, src, log, serve.Options{Dev: dev})
			if err != nil {
				return err
			}
			defer s.Close()
			return s.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "listen address")
	cmd.Flags().BoolVar(&dev, "dev", false, "watch content and theme, live-reload pages")
	return cmd
}

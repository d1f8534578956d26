package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sayeems/pcc-test-sdk/internal/app"
	"github.com/sayeems/pcc-test-sdk/internal/domain/config"
	"github.com/sayeems/pcc-test-sdk/internal/domain/site"
	"github.com/sayeems/pcc-test-sdk/internal/index"
)

func newPathsCommand(root *RootOptions) *cobra.Command {
	var (
		asJSON   bool
		manifest bool
	)
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "List the identifiers static generation pre-renders",
		Long: "paths enumerates the published articles and prints the identifiers a build would pre-render.\n" +
			"With --manifest it prints what the last build recorded instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				paths   site.Paths
				builtAt time.Time
				err     error
			)
			if manifest {
				paths, builtAt, err = readManifest(root)
			} else {
				paths, err = enumerate(cmd, root)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				doc := map[string]any{
					"paths":    paths.Entries,
					"fallback": paths.Fallback,
				}
				if !builtAt.IsZero() {
					doc["built_at"] = builtAt
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			}
			for _, e := range paths.Entries {
				fmt.Fprintf(out, "%s\t%s\n", e.Kind, e.Value)
			}
			fmt.Fprintf(out, "fallback: %s\n", paths.Fallback)
			if !builtAt.IsZero() {
				fmt.Fprintf(out, "built at: %s\n", builtAt.Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().BoolVar(&manifest, "manifest", false, "read the manifest of the last build")
	return cmd
}

func enumerate(cmd *cobra.Command, root *RootOptions) (site.Paths, error) {
	_, _, src, err := setup(root)
	if err != nil {
		return site.Paths{}, err
	}
	pb := &app.PathBuilder{Source: src}
	return pb.BuildPaths(cmd.Context())
}

func readManifest(root *RootOptions) (site.Paths, time.Time, error) {
	cfg, err := config.LoadOrDefault(root.ConfigPath)
	if err != nil {
		return site.Paths{}, time.Time{}, fmt.Errorf("config %s: %w", root.ConfigPath, err)
	}
	st, err := index.Open(index.OpenOptions{Path: cfg.Build.IndexPath, ReadOnly: true})
	if err != nil {
		return site.Paths{}, time.Time{}, fmt.Errorf("open manifest %s: %w", cfg.Build.IndexPath, err)
	}
	defer st.Close()

	paths, err := st.Paths()
	if err != nil {
		return site.Paths{}, time.Time{}, err
	}
	builtAt, err := st.BuiltAt()
	if err != nil {
		return site.Paths{}, time.Time{}, err
	}
	return paths, builtAt, nil
}

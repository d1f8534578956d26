package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sayeems/pcc-test-sdk/internal/domain/config"
	"github.com/sayeems/pcc-test-sdk/internal/ingest"
	"github.com/sayeems/pcc-test-sdk/internal/logger"
	"github.com/sayeems/pcc-test-sdk/internal/pcc"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "pccsite",
		Short:         "Article front end for Pantheon Content Cloud",
		Long:          "pccsite resolves, renders and statically generates articles hosted in Pantheon Content Cloud.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "site.yaml", "path to site config")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override log.level (debug|info|warn|error)")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newBuildCommand(opts))
	cmd.AddCommand(newPathsCommand(opts))
	cmd.AddCommand(newResolveCommand(opts))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pccsite %s (commit: %s)\n", version, commit)
		},
	})
	return cmd
}

// setup loads the config and builds the logger and content source it names.
func setup(opts *RootOptions) (config.Config, *logger.Logger, pcc.Source, error) {
	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("config %s: %w", opts.ConfigPath, err)
	}
	log := logger.New(cfg.Log.Level)
	if opts.LogLevel != "" {
		log.SetLevel(opts.LogLevel)
	}

	src, err := newSource(cfg, log)
	if err != nil {
		return cfg, nil, nil, err
	}
	return cfg, log, src, nil
}

func newSource(cfg config.Config, log *logger.Logger) (pcc.Source, error) {
	switch cfg.Content.Source {
	case config.SourceFiles:
		return ingest.NewFileSource(cfg.Content.SourceDir, log)
	default:
		return pcc.NewClient(pcc.ClientOptions{
			Endpoint: cfg.Content.Endpoint,
			SiteID:   cfg.Content.SiteID,
			Token:    cfg.Content.Token,
			Timeout:  cfg.Content.Timeout,
		}, log.With("component", "pcc")), nil
	}
}

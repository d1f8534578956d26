package main

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/sayeems/pcc-test-sdk/internal/domain/site"
	"github.com/sayeems/pcc-test-sdk/internal/pcc"
	"github.com/sayeems/pcc-test-sdk/internal/resolve"
	"github.com/sayeems/pcc-test-sdk/internal/seo"
)

func newResolveCommand(root *RootOptions) *cobra.Command {
	var (
		level string
		grant string
	)
	cmd := &cobra.Command{
		Use:   "resolve <slug-or-id>",
		Short: "Show how a request identifier resolves, with the article's SEO metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, src, err := setup(root)
			if err != nil {
				return err
			}
			r := resolve.New(src, src, resolve.Options{
				DefaultLevel: cfg.Content.DefaultPublishingLevel,
				BasePath:     cfg.Build.ArticlesBasePath,
			})
			q := url.Values{}
			if level != "" {
				q.Set(resolve.LevelParam, level)
			}
			ctx := pcc.WithGrant(cmd.Context(), grant)
			d, err := r.Resolve(ctx, resolve.Request{Identifier: args[0], Query: q})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, d.String())
			if rd, ok := d.(site.Render); ok {
				ex := seo.NewExtractor(seo.Options{
					Description:    cfg.Site.Description,
					ImageFields:    cfg.Site.ImageFields,
					FallbackImages: cfg.Site.FallbackImages,
				})
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(ex.Extract(rd.Article))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&level, "publishing-level", "", "publishing level (PRODUCTION|REALTIME)")
	cmd.Flags().StringVar(&grant, "grant", "", "preview access grant")
	return cmd
}

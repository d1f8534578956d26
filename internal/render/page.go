package render

import (
	"html/template"
	"strings"

	"github.com/sayeems/pcc-test-sdk/internal/domain/config"
	"github.com/sayeems/pcc-test-sdk/internal/domain/site"
	"github.com/sayeems/pcc-test-sdk/internal/seo"
)

// PageBuilder assembles article pages from render decisions.
type PageBuilder struct {
	Site SiteView
	MD   *MarkdownRenderer
	SEO  *seo.Extractor
	// SiteURL makes canonical links absolute; empty leaves them out.
	SiteURL string
	Grid    GridOptions
	// Static pages are generated without og:image tags.
	Static bool
}

// NewPageBuilder wires a PageBuilder from the site config. Static builders
// link grid items under the static base path; the others under the
// articles base path.
func NewPageBuilder(cfg config.Config, static bool) *PageBuilder {
	base := cfg.Build.ArticlesBasePath
	if static {
		base = cfg.Build.StaticBasePath
	}
	imageField := "Hero Image"
	if len(cfg.Site.ImageFields) > 0 {
		imageField = cfg.Site.ImageFields[0]
	}
	return &PageBuilder{
		Site: SiteView{Title: cfg.Site.Title, Language: cfg.Site.Language},
		MD:   NewMarkdownRenderer(),
		SEO: seo.NewExtractor(seo.Options{
			Description:    cfg.Site.Description,
			ImageFields:    cfg.Site.ImageFields,
			FallbackImages: cfg.Site.FallbackImages,
		}),
		SiteURL: cfg.Site.SiteURL,
		Grid:    GridOptions{BasePath: base, ImageField: imageField},
		Static:  static,
	}
}

func (b *PageBuilder) Article(r site.Render, canonicalPath string) (ArticlePage, error) {
	md, err := b.MD.Render([]byte(r.Article.Content))
	if err != nil {
		return ArticlePage{}, err
	}

	meta := b.SEO.Extract(r.Article)
	var canonical string
	if b.SiteURL != "" && canonicalPath != "" {
		canonical = strings.TrimRight(b.SiteURL, "/") + canonicalPath
	}

	return ArticlePage{
		Site:    b.Site,
		Head:    seo.OpenGraph(meta, seo.HeadOptions{OmitImages: b.Static, Canonical: canonical}),
		Article: r.Article,
		HTML:    template.HTML(md.HTML),
		TOC:     md.Headings,
		Grid:    BuildGrid(r.Recommendations, b.Grid),
	}, nil
}

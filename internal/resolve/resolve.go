// Package resolve turns a request identifier into a render decision.
package resolve

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/sayeems/pcc-test-sdk/internal/domain/content"
	"github.com/sayeems/pcc-test-sdk/internal/domain/site"
	"github.com/sayeems/pcc-test-sdk/internal/pcc"
)

const (
	// IdentifierParam is the catch-all route parameter; never forwarded.
	IdentifierParam = "uri"
	LevelParam      = "publishingLevel"
	GrantParam      = "pccGrant"
	GrantCookie     = "PCC-GRANT"
)

type Options struct {
	DefaultLevel content.PublishingLevel
	// BasePath prefixes canonical article paths, e.g. "/articles".
	BasePath string
}

func DefaultOptions() Options {
	return Options{
		DefaultLevel: content.LevelProduction,
		BasePath:     "/articles",
	}
}

type Request struct {
	// Identifier is the last segment of the request path.
	Identifier string
	// Query is the request query string; it is copied, never modified.
	Query url.Values
}

type Resolver struct {
	articles pcc.ArticleFetcher
	recs     pcc.Recommender
	opt      Options
}

func New(articles pcc.ArticleFetcher, recs pcc.Recommender, opt Options) *Resolver {
	if opt.DefaultLevel == "" {
		opt.DefaultLevel = content.LevelProduction
	}
	return &Resolver{articles: articles, recs: recs, opt: opt}
}

// Resolve fetches the article behind req.Identifier and decides whether to
// render it, redirect to its canonical path, or report it missing.
// Recommendations are only fetched for articles that will be rendered.
// Upstream errors are returned as is.
func (r *Resolver) Resolve(ctx context.Context, req Request) (site.Decision, error) {
	level, err := content.ParseLevel(req.Query.Get(LevelParam), r.opt.DefaultLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, req.Query.Get(LevelParam))
	}
	if strings.TrimSpace(req.Identifier) == "" {
		return site.NotFound{}, nil
	}

	a, err := r.articles.ArticleBySlugOrID(ctx, req.Identifier, level)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return site.NotFound{}, nil
	}

	if slug := a.RoutableSlug(); slug != "" && !content.SameIdentifier(slug, req.Identifier) {
		return site.Redirect{
			Destination: CanonicalURL(r.opt.BasePath, *a, req.Query),
			Permanent:   false,
		}, nil
	}

	recs, err := r.recs.RecommendedArticles(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	return Bind(*a, recs), nil
}

// CanonicalPath is basePath joined with the slug, or the id when there is no
// routable slug.
func CanonicalPath(basePath string, a content.Article) string {
	return strings.TrimRight(basePath, "/") + "/" + url.PathEscape(a.CanonicalID())
}

// CanonicalURL re-attaches query to the canonical path, minus the identifier
// and the preview grant. The grant travels in the GrantCookie instead.
func CanonicalURL(basePath string, a content.Article, query url.Values) string {
	p := CanonicalPath(basePath, a)
	q := url.Values{}
	for k, vs := range query {
		if k == IdentifierParam || k == GrantParam {
			continue
		}
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if len(q) == 0 {
		return p
	}
	return p + "?" + q.Encode()
}

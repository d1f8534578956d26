// Package pcc talks to the content cloud. The rest of the site only sees the
// narrow contracts declared here.
package pcc

import (
	"context"

	"github.com/sayeems/pcc-test-sdk/internal/domain/content"
)

// ArticleFetcher looks an article up by slug or id. A nil article with a nil
// error means nothing matched.
type ArticleFetcher interface {
	ArticleBySlugOrID(ctx context.Context, identifier string, level content.PublishingLevel) (*content.Article, error)
}

type Recommender interface {
	RecommendedArticles(ctx context.Context, articleID string) ([]content.Article, error)
}

type Lister interface {
	AllArticles(ctx context.Context, level content.PublishingLevel, status content.PublishStatus) ([]content.Article, error)
}

// Source is everything the site consumes from the content cloud.
type Source interface {
	ArticleFetcher
	Recommender
	Lister
}

type grantKey struct{}

// WithGrant attaches a preview access grant to ctx. Clients that support
// grants use it in place of the site token for calls made with ctx.
func WithGrant(ctx context.Context, grant string) context.Context {
	if grant == "" {
		return ctx
	}
	return context.WithValue(ctx, grantKey{}, grant)
}

func GrantFrom(ctx context.Context) string {
	g, _ := ctx.Value(grantKey{}).(string)
	return g
}

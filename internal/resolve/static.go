package resolve

import (
	"context"
	"strings"

	"github.com/sayeems/pcc-test-sdk/internal/domain/content"
	"github.com/sayeems/pcc-test-sdk/internal/domain/site"
	"github.com/sayeems/pcc-test-sdk/internal/pcc"
)

// Static resolves identifiers for pre-generated pages. Both the id and the
// slug of an article are served as-is, so there is no canonical redirect.
type Static struct {
	articles pcc.ArticleFetcher
	recs     pcc.Recommender
	level    content.PublishingLevel
}

func NewStatic(articles pcc.ArticleFetcher, recs pcc.Recommender, level content.PublishingLevel) *Static {
	if level == "" {
		level = content.LevelProduction
	}
	return &Static{articles: articles, recs: recs, level: level}
}

func (s *Static) Resolve(ctx context.Context, identifier string) (site.Decision, error) {
	if strings.TrimSpace(identifier) == "" {
		return site.NotFound{}, nil
	}
	a, err := s.articles.ArticleBySlugOrID(ctx, identifier, s.level)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return site.NotFound{}, nil
	}
	recs, err := s.recs.RecommendedArticles(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	return Bind(*a, recs), nil
}

package app

import (
	"context"
	"fmt"

	"github.com/sayeems/pcc-test-sdk/internal/domain/content"
	"github.com/sayeems/pcc-test-sdk/internal/domain/site"
	"github.com/sayeems/pcc-test-sdk/internal/pcc"
)

// PathBuilder enumerates every identifier that static generation should
// pre-render: the id of each published production article, plus its slug
// when it has one.
type PathBuilder struct {
	Source pcc.Lister
}

func (pb *PathBuilder) BuildPaths(ctx context.Context) (site.Paths, error) {
	arts, err := pb.Source.AllArticles(ctx, content.LevelProduction, content.StatusPublished)
	if err != nil {
		return site.Paths{}, fmt.Errorf("list published articles: %w", err)
	}
	return site.Paths{
		Entries:  EntriesFor(arts),
		Fallback: site.FallbackBlocking,
	}, nil
}

// EntriesFor flattens the per-article entries in article order.
func EntriesFor(arts []content.Article) []site.PathEntry {
	entries := make([]site.PathEntry, 0, len(arts)*2)
	for _, a := range arts {
		entries = append(entries, site.PathEntry{Kind: site.KindID, Value: a.ID})
		if slug := a.PathSlug(); slug != "" {
			entries = append(entries, site.PathEntry{Kind: site.KindSlug, Value: slug})
		}
	}
	return entries
}

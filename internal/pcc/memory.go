package pcc

import (
	"context"
	"sync"

	"github.com/sayeems/pcc-test-sdk/internal/domain/content"
)

var _ Source = (*Memory)(nil)

// Memory serves articles held in process, typically loaded from a content
// directory by the ingest package. Replace swaps the whole set atomically.
type Memory struct {
	mu          sync.RWMutex
	articles    []content.Article
	recommended map[string][]string
}

// maxRecommended caps tag-based recommendations.
const maxRecommended = 3

func NewMemory(articles []content.Article, recommended map[string][]string) *Memory {
	m := &Memory{}
	m.Replace(articles, recommended)
	return m
}

func (m *Memory) Replace(articles []content.Article, recommended map[string][]string) {
	arts := make([]content.Article, len(articles))
	copy(arts, articles)
	rec := make(map[string][]string, len(recommended))
	for k, v := range recommended {
		rec[k] = append([]string(nil), v...)
	}

	m.mu.Lock()
	m.articles = arts
	m.recommended = rec
	m.mu.Unlock()
}

func visibleAt(a content.Article, level content.PublishingLevel) bool {
	if level == content.LevelRealtime {
		return true
	}
	return a.PublishingLevel == "" || a.PublishingLevel == content.LevelProduction
}

func (m *Memory) ArticleBySlugOrID(_ context.Context, identifier string, level content.PublishingLevel) (*content.Article, error) {
	key := content.FoldKey(identifier)
	if key == "" {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, a := range m.articles {
		if a.Slug != "" && content.FoldKey(a.Slug) == key && visibleAt(a, level) {
			found := a
			return &found, nil
		}
	}
	for _, a := range m.articles {
		if a.ID == identifier && visibleAt(a, level) {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func (m *Memory) byID(id string) (content.Article, bool) {
	for _, a := range m.articles {
		if a.ID == id {
			return a, true
		}
	}
	return content.Article{}, false
}

// RecommendedArticles returns the explicit recommendations for articleID
// when there are any, otherwise published articles sharing a tag with it.
func (m *Memory) RecommendedArticles(_ context.Context, articleID string) ([]content.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if ids, ok := m.recommended[articleID]; ok && len(ids) > 0 {
		out := make([]content.Article, 0, len(ids))
		for _, id := range ids {
			if a, ok := m.byID(id); ok {
				out = append(out, a)
			}
		}
		return out, nil
	}

	self, ok := m.byID(articleID)
	if !ok {
		return nil, nil
	}
	tags := make(map[string]struct{}, len(self.Tags))
	for _, t := range self.Tags {
		tags[content.FoldKey(t)] = struct{}{}
	}

	var out []content.Article
	for _, a := range m.articles {
		if a.ID == articleID || !visibleAt(a, content.LevelProduction) {
			continue
		}
		for _, t := range a.Tags {
			if _, ok := tags[content.FoldKey(t)]; ok {
				out = append(out, a)
				break
			}
		}
		if len(out) >= maxRecommended {
			break
		}
	}
	return out, nil
}

func (m *Memory) AllArticles(_ context.Context, level content.PublishingLevel, status content.PublishStatus) ([]content.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []content.Article
	for _, a := range m.articles {
		if !visibleAt(a, level) {
			continue
		}
		st := a.PublishStatus
		if st == "" {
			st = content.StatusPublished
		}
		if status != "" && st != status {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

package resolve

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sayeems/pcc-test-sdk/internal/domain/content"
	"github.com/sayeems/pcc-test-sdk/internal/domain/site"
	"github.com/sayeems/pcc-test-sdk/internal/pcc"
)

// fakeSource records every call it receives.
type fakeSource struct {
	ArticleFunc func(ctx context.Context, identifier string, level content.PublishingLevel) (*content.Article, error)
	RecsFunc    func(ctx context.Context, articleID string) ([]content.Article, error)

	calls  []string
	levels []content.PublishingLevel
}

func (f *fakeSource) ArticleBySlugOrID(ctx context.Context, identifier string, level content.PublishingLevel) (*content.Article, error) {
	f.calls = append(f.calls, "article:"+identifier)
	f.levels = append(f.levels, level)
	if f.ArticleFunc != nil {
		return f.ArticleFunc(ctx, identifier, level)
	}
	return nil, nil
}

func (f *fakeSource) RecommendedArticles(ctx context.Context, articleID string) ([]content.Article, error) {
	f.calls = append(f.calls, "recs:"+articleID)
	if f.RecsFunc != nil {
		return f.RecsFunc(ctx, articleID)
	}
	return nil, nil
}

func returning(a content.Article) func(context.Context, string, content.PublishingLevel) (*content.Article, error) {
	return func(context.Context, string, content.PublishingLevel) (*content.Article, error) {
		return &a, nil
	}
}

var myPost = content.Article{ID: "abc123", Slug: "my-post", Title: "My Post"}

func TestResolve_RenderOnCanonicalSlug(t *testing.T) {
	recs := []content.Article{{ID: "r1"}, {ID: "r2"}}
	src := &fakeSource{
		ArticleFunc: returning(myPost),
		RecsFunc: func(context.Context, string) ([]content.Article, error) {
			return recs, nil
		},
	}
	r := New(src, src, DefaultOptions())

	for _, id := range []string{"my-post", "MY-POST", "  My-Post "} {
		src.calls = nil
		d, err := r.Resolve(context.Background(), Request{Identifier: id})
		require.NoError(t, err)

		rd, ok := d.(site.Render)
		require.True(t, ok, "identifier %q: got %s", id, d)
		assert.Equal(t, myPost, rd.Article)
		assert.Equal(t, recs, rd.Recommendations)
		assert.Equal(t, []string{"article:" + id, "recs:abc123"}, src.calls)
	}
}

func TestResolve_RedirectToSlugPreservesQuery(t *testing.T) {
	src := &fakeSource{ArticleFunc: returning(myPost)}
	r := New(src, src, DefaultOptions())

	q := url.Values{}
	q.Set("uri", "abc123")
	q.Set("utm_source", "newsletter")
	q.Add("tag", "a")
	q.Add("tag", "b")
	q.Set("publishingLevel", "PRODUCTION")
	q.Set("pccGrant", "secret-grant")

	d, err := r.Resolve(context.Background(), Request{Identifier: "abc123", Query: q})
	require.NoError(t, err)

	rd, ok := d.(site.Redirect)
	require.True(t, ok, "got %s", d)
	assert.False(t, rd.Permanent)

	u, err := url.Parse(rd.Destination)
	require.NoError(t, err)
	assert.Equal(t, "/articles/my-post", u.Path)
	assert.Equal(t, url.Values{
		"utm_source":      {"newsletter"},
		"tag":             {"a", "b"},
		"publishingLevel": {"PRODUCTION"},
	}, u.Query())
	assert.NotContains(t, rd.Destination, "secret-grant")

	assert.Equal(t, []string{"article:abc123"}, src.calls, "no recommendations on redirect")
	assert.Equal(t, "abc123", q.Get("uri"), "request query untouched")
}

func TestResolve_RedirectWithoutQuery(t *testing.T) {
	src := &fakeSource{ArticleFunc: returning(myPost)}
	r := New(src, src, Options{BasePath: "/posts/"})

	d, err := r.Resolve(context.Background(), Request{Identifier: "old-slug"})
	require.NoError(t, err)
	assert.Equal(t, site.Redirect{Destination: "/posts/my-post"}, d)
}

func TestResolve_MultiSegmentSlugRendersInPlace(t *testing.T) {
	a := content.Article{ID: "abc123", Slug: "2024/my-post"}
	src := &fakeSource{ArticleFunc: returning(a)}
	r := New(src, src, DefaultOptions())

	for _, id := range []string{"abc123", "my-post", "2024%2Fmy-post"} {
		d, err := r.Resolve(context.Background(), Request{Identifier: id})
		require.NoError(t, err)
		_, ok := d.(site.Render)
		assert.True(t, ok, "identifier %q: got %s", id, d)
	}
	assert.Equal(t, "/articles/abc123", CanonicalPath("/articles", a))
}

func TestResolve_EmptySlugRendersByID(t *testing.T) {
	a := content.Article{ID: "abc123", Slug: ""}
	src := &fakeSource{ArticleFunc: returning(a)}
	r := New(src, src, DefaultOptions())

	d, err := r.Resolve(context.Background(), Request{Identifier: "abc123"})
	require.NoError(t, err)
	_, ok := d.(site.Render)
	assert.True(t, ok, "got %s", d)
}

func TestResolve_NotFound(t *testing.T) {
	src := &fakeSource{}
	r := New(src, src, DefaultOptions())

	d, err := r.Resolve(context.Background(), Request{Identifier: "missing"})
	require.NoError(t, err)
	assert.Equal(t, site.NotFound{}, d)
	assert.Equal(t, []string{"article:missing"}, src.calls)
}

func TestResolve_BlankIdentifierSkipsFetch(t *testing.T) {
	src := &fakeSource{}
	r := New(src, src, DefaultOptions())

	d, err := r.Resolve(context.Background(), Request{Identifier: "  "})
	require.NoError(t, err)
	assert.Equal(t, site.NotFound{}, d)
	assert.Empty(t, src.calls)
}

func TestResolve_PublishingLevel(t *testing.T) {
	src := &fakeSource{ArticleFunc: returning(myPost)}
	r := New(src, src, DefaultOptions())

	_, err := r.Resolve(context.Background(), Request{
		Identifier: "my-post",
		Query:      url.Values{"publishingLevel": {"realtime"}},
	})
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), Request{Identifier: "my-post"})
	require.NoError(t, err)

	assert.Equal(t, []content.PublishingLevel{content.LevelRealtime, content.LevelProduction}, src.levels)
}

func TestResolve_InvalidPublishingLevel(t *testing.T) {
	src := &fakeSource{ArticleFunc: returning(myPost)}
	r := New(src, src, DefaultOptions())

	_, err := r.Resolve(context.Background(), Request{
		Identifier: "my-post",
		Query:      url.Values{"publishingLevel": {"DRAFT"}},
	})
	assert.ErrorIs(t, err, content.ErrInvalidPublishingLevel)
	assert.Empty(t, src.calls)
}

func TestResolve_UpstreamErrors(t *testing.T) {
	boom := errors.New("boom")

	src := &fakeSource{
		ArticleFunc: func(context.Context, string, content.PublishingLevel) (*content.Article, error) {
			return nil, boom
		},
	}
	_, err := New(src, src, DefaultOptions()).Resolve(context.Background(), Request{Identifier: "my-post"})
	assert.ErrorIs(t, err, boom)

	src = &fakeSource{
		ArticleFunc: returning(myPost),
		RecsFunc: func(context.Context, string) ([]content.Article, error) {
			return nil, boom
		},
	}
	_, err = New(src, src, DefaultOptions()).Resolve(context.Background(), Request{Identifier: "my-post"})
	assert.ErrorIs(t, err, boom)
}

func TestResolve_PassesGrantThrough(t *testing.T) {
	var seen string
	src := &fakeSource{
		ArticleFunc: func(ctx context.Context, _ string, _ content.PublishingLevel) (*content.Article, error) {
			seen = pcc.GrantFrom(ctx)
			return nil, nil
		},
	}
	ctx := pcc.WithGrant(context.Background(), "grant-xyz")
	_, err := New(src, src, DefaultOptions()).Resolve(ctx, Request{Identifier: "x"})
	require.NoError(t, err)
	assert.Equal(t, "grant-xyz", seen)
}

func TestCanonicalPath(t *testing.T) {
	assert.Equal(t, "/articles/my-post", CanonicalPath("/articles", myPost))
	assert.Equal(t, "/articles/abc123", CanonicalPath("/articles/", content.Article{ID: "abc123"}))
	assert.Equal(t, "/articles/a%20b", CanonicalPath("/articles", content.Article{ID: "x", Slug: "a b"}))
}

func TestStatic_NeverRedirects(t *testing.T) {
	src := &fakeSource{ArticleFunc: returning(myPost)}
	s := NewStatic(src, src, "")

	for _, id := range []string{"abc123", "my-post"} {
		d, err := s.Resolve(context.Background(), id)
		require.NoError(t, err)
		_, ok := d.(site.Render)
		assert.True(t, ok, "identifier %q: got %s", id, d)
	}
	assert.Equal(t, []content.PublishingLevel{content.LevelProduction, content.LevelProduction}, src.levels)
}

func TestStatic_NotFound(t *testing.T) {
	src := &fakeSource{}
	d, err := NewStatic(src, src, content.LevelProduction).Resolve(context.Background(), "nope")
	require.NoError(t, err)
	assert.Equal(t, site.NotFound{}, d)
}

package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sayeems/pcc-test-sdk/internal/domain/config"
	"github.com/sayeems/pcc-test-sdk/internal/domain/content"
	"github.com/sayeems/pcc-test-sdk/internal/domain/site"
	"github.com/sayeems/pcc-test-sdk/internal/index"
	"github.com/sayeems/pcc-test-sdk/internal/logger"
	"github.com/sayeems/pcc-test-sdk/internal/pcc"
)

func testSetup(t *testing.T) (config.Config, *pcc.Memory) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Build.PublicDir = filepath.Join(dir, "public")
	cfg.Build.IndexPath = filepath.Join(dir, "state", "paths.db")

	src := pcc.NewMemory([]content.Article{
		{ID: "abc123", Slug: "my-post", Title: "My Post", Content: "Hello"},
		{ID: "def456", Title: "Second", Content: "World"},
		{ID: "draft", Title: "Draft", PublishStatus: content.StatusUnpublished},
	}, nil)
	return cfg, src
}

func TestRun(t *testing.T) {
	cfg, src := testSetup(t)
	builtAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	b := &Builder{Cfg: cfg, Source: src, Log: logger.Discard(), Now: func() time.Time { return builtAt }}
	res, err := b.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []site.PathEntry{
		{Kind: site.KindID, Value: "abc123"},
		{Kind: site.KindSlug, Value: "my-post"},
		{Kind: site.KindID, Value: "def456"},
	}, res.Paths.Entries)
	assert.Equal(t, 3, res.Pages)
	assert.Empty(t, res.Skipped)

	for _, id := range []string{"abc123", "my-post", "def456"} {
		p := filepath.Join(cfg.Build.PublicDir, PageFile(cfg.Build.StaticBasePath, id))
		assert.FileExists(t, p)
	}
	assert.NoFileExists(t, filepath.Join(cfg.Build.PublicDir, PageFile(cfg.Build.StaticBasePath, "draft")))
	assert.FileExists(t, filepath.Join(cfg.Build.PublicDir, "404.html"))

	// both identifiers render the same page, without a redirect
	byID, err := os.ReadFile(filepath.Join(cfg.Build.PublicDir, PageFile(cfg.Build.StaticBasePath, "abc123")))
	require.NoError(t, err)
	assert.Contains(t, string(byID), "<h1>My Post</h1>")

	st, err := index.Open(index.OpenOptions{Path: cfg.Build.IndexPath, ReadOnly: true})
	require.NoError(t, err)
	defer st.Close()

	paths, err := st.Paths()
	require.NoError(t, err)
	assert.Equal(t, res.Paths.Entries, paths.Entries)
	assert.Equal(t, site.FallbackBlocking, paths.Fallback)

	got, err := st.BuiltAt()
	require.NoError(t, err)
	assert.True(t, builtAt.Equal(got))
}

func TestRun_SimilarIdentifiersGetTheirOwnPage(t *testing.T) {
	cfg, _ := testSetup(t)
	src := pcc.NewMemory([]content.Article{
		{ID: "id1", Slug: "post.v1", Title: "Dotted", Content: "one"},
		{ID: "id2", Slug: "post-v1", Title: "Dashed", Content: "two"},
	}, nil)

	res, err := (&Builder{Cfg: cfg, Source: src}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, res.Pages)

	for slug, title := range map[string]string{"post.v1": "Dotted", "post-v1": "Dashed"} {
		data, err := os.ReadFile(filepath.Join(cfg.Build.PublicDir, PageFile(cfg.Build.StaticBasePath, slug)))
		require.NoError(t, err, slug)
		assert.Contains(t, string(data), "<h1>"+title+"</h1>", slug)
	}
}

func TestRun_CopiesThemeStatic(t *testing.T) {
	cfg, src := testSetup(t)
	theme := t.TempDir()
	for _, name := range []string{"head.tmpl", "home.tmpl", "article.tmpl", "404.tmpl", "error.tmpl"} {
		require.NoError(t, os.WriteFile(filepath.Join(theme, name), []byte("ok"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(theme, "static", "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(theme, "static", "css", "site.css"), []byte("body{}"), 0o644))
	cfg.Build.ThemeDir = theme

	_, err := (&Builder{Cfg: cfg, Source: src}).Run(context.Background())
	require.NoError(t, err)

	css, err := os.ReadFile(filepath.Join(cfg.Build.PublicDir, "css", "site.css"))
	require.NoError(t, err)
	assert.Equal(t, "body{}", string(css))
}

func TestPageFile(t *testing.T) {
	assert.Equal(t, filepath.Join("examples", "ssg-isr", "my-post", "index.html"), PageFile("/examples/ssg-isr", "my-post"))
	assert.Equal(t, filepath.Join("examples", "ssg-isr", "~612f62", "index.html"), PageFile("/examples/ssg-isr", "a/b"))
	assert.Equal(t, filepath.Join("x", "~20", "index.html"), PageFile("/x", " "))
	assert.Equal(t, filepath.Join("x", "~2e2e", "index.html"), PageFile("/x", ".."))

	for _, pair := range [][2]string{{"post.v1", "post-v1"}, {"café", "cafè"}, {"a b", "a-b"}, {"", "~"}} {
		assert.NotEqual(t, PageFile("/x", pair[0]), PageFile("/x", pair[1]), "%q vs %q", pair[0], pair[1])
	}
	assert.Equal(t, "/examples/ssg-isr/my-post", StaticPath("/examples/ssg-isr/", "my-post"))
}

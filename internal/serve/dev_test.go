package serve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sayeems/pcc-test-sdk/internal/ingest"
	"github.com/sayeems/pcc-test-sdk/internal/logger"
)

func TestReload_PicksUpNewContent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("---\nid: a\ntitle: A\n---\n"), 0o644))

	src, err := ingest.NewFileSource(dir, logger.Discard())
	require.NoError(t, err)

	cfg := testConfig(t)
	s, err := New(cfg, src, logger.Discard(), Options{Dev: true})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, []string{dir}, s.watchDirs())

	h := s.Handler()
	assert.Equal(t, 404, get(t, h, "/articles/b").Code)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("---\nid: b\ntitle: B\n---\n"), 0o644))
	require.NoError(t, s.reload())

	rec := get(t, h, "/articles/b")
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "EventSource")
}

func TestBroadcastSSE(t *testing.T) {
	s, err := New(testConfig(t), nil, logger.Discard(), Options{Dev: true})
	require.NoError(t, err)

	ch := make(chan string, 1)
	s.sseConns[ch] = struct{}{}

	s.broadcastSSE("reload")
	assert.Equal(t, "reload", <-ch)

	// full channels are skipped rather than blocking
	ch <- "pending"
	s.broadcastSSE("reload")
	assert.Equal(t, "pending", <-ch)
}

func TestRelevantChange(t *testing.T) {
	assert.True(t, relevantChange(fsnotify.Event{Name: "/c/a.md", Op: fsnotify.Write}))
	assert.True(t, relevantChange(fsnotify.Event{Name: "/t/article.tmpl", Op: fsnotify.Remove}))
	assert.False(t, relevantChange(fsnotify.Event{Name: "/c/a.md", Op: fsnotify.Chmod}))
	assert.False(t, relevantChange(fsnotify.Event{Name: "/c/.a.md.swp", Op: fsnotify.Write}))
	assert.False(t, relevantChange(fsnotify.Event{Name: "/c/a.md~", Op: fsnotify.Create}))
}

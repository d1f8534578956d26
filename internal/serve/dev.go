package serve

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sayeems/pcc-test-sdk/internal/ingest"
	"github.com/sayeems/pcc-test-sdk/internal/render"
)

const reloadDebounce = 200 * time.Millisecond

// watchDirs are the content directory of a reloadable source and the theme
// directory, when configured.
func (s *Server) watchDirs() []string {
	var dirs []string
	if rl, ok := s.source.(Reloader); ok && rl.Dir() != "" {
		dirs = append(dirs, rl.Dir())
	}
	if s.cfg.Build.ThemeDir != "" {
		dirs = append(dirs, s.cfg.Build.ThemeDir)
	}
	return dirs
}

func (s *Server) startWatch(ctx context.Context) error {
	var err error
	s.watchOnce.Do(func() {
		s.watcher, err = fsnotify.NewWatcher()
		if err != nil {
			return
		}
		for _, dir := range s.watchDirs() {
			if err = s.watchTree(dir); err != nil {
				return
			}
		}
		go s.watchLoop(ctx)
	})
	return err
}

// watchTree adds dir and its subdirectories; fsnotify is not recursive.
func (s *Server) watchTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return s.watcher.Add(path)
	})
}

// relevantChange filters out editor swap files and other noise.
func relevantChange(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Base(ev.Name)
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") || strings.HasSuffix(name, ".swp") {
		return false
	}
	return true
}

func (s *Server) watchLoop(ctx context.Context) {
	s.log.Info("watching for changes", "dirs", s.watchDirs())
	debounce := time.NewTimer(reloadDebounce)
	debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !relevantChange(ev) {
				continue
			}
			// new subdirectories of the content dir need their own watch
			if ev.Op&fsnotify.Create != 0 && !ingest.IsContentFile(ev.Name) {
				if err := s.watchTree(ev.Name); err != nil {
					s.log.Debug("not watching", "path", ev.Name, "err", err)
				}
			}
			s.log.Debug("change", "path", ev.Name, "op", ev.Op.String())
			debounce.Reset(reloadDebounce)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("watcher error", "err", err)
		case <-debounce.C:
			if err := s.reload(); err != nil {
				s.log.Error("reload failed", "err", err)
				continue
			}
			s.broadcastSSE("reload")
		}
	}
}

// reload re-reads the content directory of a file source and the theme.
// On failure the previous content and templates stay in place.
func (s *Server) reload() error {
	if rl, ok := s.source.(Reloader); ok {
		if err := rl.Reload(); err != nil {
			return err
		}
	}
	tpl, err := render.NewTemplateRenderer(s.cfg.Build.ThemeDir)
	if err != nil {
		return fmt.Errorf("reload theme: %w", err)
	}
	s.mu.Lock()
	s.tpl = tpl
	s.mu.Unlock()
	s.log.Info("reloaded")
	return nil
}

// handleSSE streams reload notices to the live-reload script.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")

	ch := make(chan string, 8)
	s.sseMu.Lock()
	s.sseConns[ch] = struct{}{}
	s.sseMu.Unlock()
	defer func() {
		s.sseMu.Lock()
		delete(s.sseConns, ch)
		s.sseMu.Unlock()
	}()

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()
	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-ch:
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// broadcastSSE never blocks; a client with a full buffer misses the notice.
func (s *Server) broadcastSSE(msg string) {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()
	for ch := range s.sseConns {
		select {
		case ch <- msg:
		default:
		}
	}
}

package serve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/sayeems/pcc-test-sdk/internal/build"
	"github.com/sayeems/pcc-test-sdk/internal/domain/config"
	"github.com/sayeems/pcc-test-sdk/internal/domain/content"
	"github.com/sayeems/pcc-test-sdk/internal/domain/site"
	"github.com/sayeems/pcc-test-sdk/internal/index"
	"github.com/sayeems/pcc-test-sdk/internal/logger"
	"github.com/sayeems/pcc-test-sdk/internal/pcc"
	"github.com/sayeems/pcc-test-sdk/internal/render"
	"github.com/sayeems/pcc-test-sdk/internal/resolve"
)

// Reloader is implemented by sources that can re-read their content, such
// as a content directory.
type Reloader interface {
	Reload() error
	Dir() string
}

type Options struct {
	// Dev watches the content and theme directories and live-reloads pages.
	Dev bool
}

type Server struct {
	cfg config.Config
	opt Options
	log *logger.Logger

	source      pcc.Source
	resolver    *resolve.Resolver
	static      *resolve.Static
	pages       *render.PageBuilder
	staticPages *render.PageBuilder

	mu  sync.RWMutex
	tpl render.Renderer

	sseMu     sync.Mutex
	sseConns  map[chan string]struct{}
	watcher   *fsnotify.Watcher
	watchOnce sync.Once
}

func New(cfg config.Config, source pcc.Source, log *logger.Logger, opt Options) (*Server, error) {
	if log == nil {
		log = logger.Discard()
	}
	tpl, err := render.NewTemplateRenderer(cfg.Build.ThemeDir)
	if err != nil {
		return nil, fmt.Errorf("serve: failed to create template renderer: %w", err)
	}

	s := &Server{
		cfg:    cfg,
		opt:    opt,
		log:    log.With("component", "serve"),
		source: source,
		resolver: resolve.New(source, source, resolve.Options{
			DefaultLevel: cfg.Content.DefaultPublishingLevel,
			BasePath:     cfg.Build.ArticlesBasePath,
		}),
		static:      resolve.NewStatic(source, source, cfg.Content.DefaultPublishingLevel),
		pages:       render.NewPageBuilder(cfg, false),
		staticPages: render.NewPageBuilder(cfg, true),
		tpl:         tpl,
		sseConns:    make(map[chan string]struct{}),
	}
	s.pages.Site.DevReload = opt.Dev
	s.staticPages.Site.DevReload = opt.Dev
	return s, nil
}

func (s *Server) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleHome)
	mux.HandleFunc(s.cfg.Build.ArticlesBasePath+"/", s.handleArticle)
	mux.HandleFunc(s.cfg.Build.StaticBasePath+"/", s.handleStatic)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if s.opt.Dev {
		mux.HandleFunc("/dev/events", s.handleSSE)
	}

	if s.cfg.Build.ThemeDir != "" {
		fileServer := http.FileServer(http.Dir(filepath.Join(s.cfg.Build.ThemeDir, "static")))
		mux.Handle("/css/", fileServer)
		mux.Handle("/js/", fileServer)
		mux.Handle("/images/", fileServer)
		mux.Handle("/favicon.ico", fileServer)
	}
	return s.logRequests(mux)
}

// logRequests tags every response with an X-Request-ID, reusing the
// caller's when it sent one.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.Must(uuid.NewV7()).String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
		s.log.Log(r.Context(), slog.LevelDebug, "request",
			"id", id, "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if s.opt.Dev {
		if err := s.startWatch(ctx); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	s.log.Info("listening", "addr", addr, "dev", s.opt.Dev)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) renderer() render.Renderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tpl
}

// /articles/<segments...>/<slug-or-id>
func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	identifier := lastSegment(strings.TrimPrefix(r.URL.Path, s.cfg.Build.ArticlesBasePath))
	if identifier == "" {
		s.handleNotFound(w, r)
		return
	}

	ctx := pcc.WithGrant(r.Context(), grantFrom(r))
	d, err := s.resolver.Resolve(ctx, resolve.Request{
		Identifier: identifier,
		Query:      r.URL.Query(),
	})
	if err != nil {
		s.handleResolveError(w, r, err)
		return
	}

	switch d := d.(type) {
	case site.NotFound:
		s.handleNotFound(w, r)
	case site.Redirect:
		status := http.StatusTemporaryRedirect
		if d.Permanent {
			status = http.StatusPermanentRedirect
		}
		s.log.Debug("redirect to canonical path", "from", r.URL.Path, "to", d.Destination)
		if g := r.URL.Query().Get(resolve.GrantParam); g != "" {
			http.SetCookie(w, &http.Cookie{
				Name:     resolve.GrantCookie,
				Value:    g,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		http.Redirect(w, r, d.Destination, status)
	case site.Render:
		s.writeArticle(w, r, s.pages, d, resolve.CanonicalPath(s.cfg.Build.ArticlesBasePath, d.Article))
	}
}

// /examples/ssg-isr/<slug-or-id>
// Identifiers enumerated by the last build are served from their
// pre-rendered file; anything else is rendered on demand.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, s.cfg.Build.StaticBasePath), "/")
	if rest == "" || strings.Contains(rest, "/") {
		s.handleNotFound(w, r)
		return
	}

	if data, ok := s.prebuilt(rest); ok {
		writeHTML(w, data)
		return
	}

	d, err := s.static.Resolve(r.Context(), rest)
	if err != nil {
		s.handleResolveError(w, r, err)
		return
	}
	rd, ok := d.(site.Render)
	if !ok {
		s.handleNotFound(w, r)
		return
	}
	s.writeArticle(w, r, s.staticPages, rd, build.StaticPath(s.cfg.Build.StaticBasePath, rest))
}

// prebuilt returns the page the last build wrote for identifier. The manifest
// is opened for each lookup only, so a running build can take its write lock.
func (s *Server) prebuilt(identifier string) ([]byte, bool) {
	// the manifest only exists after a build
	if _, err := os.Stat(s.cfg.Build.IndexPath); err != nil {
		return nil, false
	}
	st, err := index.Open(index.OpenOptions{Path: s.cfg.Build.IndexPath, ReadOnly: true})
	if err != nil {
		s.log.Warn("path manifest unavailable", "path", s.cfg.Build.IndexPath, "err", err)
		return nil, false
	}
	e, err := st.Lookup(identifier)
	_ = st.Close()
	if err != nil {
		return nil, false
	}

	file := filepath.Join(s.cfg.Build.PublicDir, build.PageFile(s.cfg.Build.StaticBasePath, e.Value))
	data, err := os.ReadFile(file)
	if err != nil {
		s.log.Debug("pre-rendered page missing, rendering on demand", "entry", e.String())
		return nil, false
	}
	return data, true
}

func (s *Server) writeArticle(w http.ResponseWriter, r *http.Request, pages *render.PageBuilder, d site.Render, canonicalPath string) {
	page, err := pages.Article(d, canonicalPath)
	if err != nil {
		s.log.Error("markdown render error", "id", d.Article.ID, "err", err)
		s.handleError(w, r, http.StatusInternalServerError, "")
		return
	}
	htmlBytes, err := s.renderer().RenderArticle(r.Context(), page)
	if err != nil {
		s.log.Error("render article error", "id", d.Article.ID, "err", err)
		s.handleError(w, r, http.StatusInternalServerError, "")
		return
	}
	writeHTML(w, htmlBytes)
}

// Home lists the published articles as a grid.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.handleNotFound(w, r)
		return
	}
	arts, err := s.source.AllArticles(r.Context(), s.cfg.Content.DefaultPublishingLevel, content.StatusPublished)
	if err != nil {
		s.handleResolveError(w, r, err)
		return
	}
	page := render.HomePage{
		Site: s.pages.Site,
		Grid: render.BuildGrid(arts, s.pages.Grid),
	}
	htmlBytes, err := s.renderer().RenderHome(r.Context(), page)
	if err != nil {
		s.log.Error("render home error", "err", err)
		s.handleError(w, r, http.StatusInternalServerError, "")
		return
	}
	writeHTML(w, htmlBytes)
}

func (s *Server) handleResolveError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, content.ErrInvalidPublishingLevel) {
		s.handleError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	s.log.Error("upstream fetch failed", "path", r.URL.Path, "err", err)
	s.handleError(w, r, http.StatusInternalServerError, "")
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	page := render.NotFoundPage{
		Site: s.pages.Site,
		Path: r.URL.Path,
	}
	htmlBytes, err := s.renderer().RenderNotFound(r.Context(), page)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write(htmlBytes)
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	page := render.ErrorPage{
		Site:    s.pages.Site,
		Status:  status,
		Message: msg,
	}
	htmlBytes, err := s.renderer().RenderError(r.Context(), page)
	if err != nil {
		http.Error(w, http.StatusText(status), status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(htmlBytes)
}

// grantFrom prefers the pccGrant query parameter over the grant cookie.
func grantFrom(r *http.Request) string {
	if g := r.URL.Query().Get(resolve.GrantParam); g != "" {
		return g
	}
	if c, err := r.Cookie(resolve.GrantCookie); err == nil {
		return c.Value
	}
	return ""
}

func lastSegment(p string) string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	return strings.TrimSpace(parts[len(parts)-1])
}

func writeHTML(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}

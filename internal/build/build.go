package build

import (
	"context"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sayeems/pcc-test-sdk/internal/app"
	"github.com/sayeems/pcc-test-sdk/internal/domain/config"
	"github.com/sayeems/pcc-test-sdk/internal/domain/site"
	"github.com/sayeems/pcc-test-sdk/internal/index"
	"github.com/sayeems/pcc-test-sdk/internal/logger"
	"github.com/sayeems/pcc-test-sdk/internal/pcc"
	"github.com/sayeems/pcc-test-sdk/internal/render"
	"github.com/sayeems/pcc-test-sdk/internal/resolve"
)

// Builder enumerates the static paths once, records them in the index and
// pre-renders a page for each.
type Builder struct {
	Cfg    config.Config
	Source pcc.Source
	Log    *logger.Logger
	// Now stamps the manifest; defaults to time.Now.
	Now func() time.Time
}

type Result struct {
	Paths    site.Paths
	Pages    int
	Skipped  []string
	Duration time.Duration
}

func (b *Builder) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	log := b.Log
	if log == nil {
		log = logger.Discard()
	}
	log = log.With("component", "build")

	pb := &app.PathBuilder{Source: b.Source}
	paths, err := pb.BuildPaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate paths: %w", err)
	}
	log.Info("enumerated paths", "entries", len(paths.Entries), "fallback", paths.Fallback)
	log.Debug("path manifest", "paths", paths.String())

	st, err := index.Open(index.OpenOptions{Path: b.Cfg.Build.IndexPath})
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	defer st.Close()

	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	if err := st.Rebuild(paths, now()); err != nil {
		return nil, fmt.Errorf("failed to rebuild index: %w", err)
	}

	tpl, err := render.NewTemplateRenderer(b.Cfg.Build.ThemeDir)
	if err != nil {
		return nil, fmt.Errorf("load theme(%s): %w", b.Cfg.Build.ThemeDir, err)
	}

	outDir := b.Cfg.Build.PublicDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir public: %w", err)
	}

	res := &Result{Paths: paths}
	if err := b.buildPages(ctx, log, tpl, outDir, res); err != nil {
		return nil, fmt.Errorf("build pages: %w", err)
	}
	if err := b.buildNotFound(ctx, tpl, outDir); err != nil {
		return nil, fmt.Errorf("build 404: %w", err)
	}
	if err := b.copyStaticAssets(outDir); err != nil {
		return nil, fmt.Errorf("copy static assets: %w", err)
	}

	res.Duration = time.Since(start)
	log.Info("build complete", "pages", res.Pages, "skipped", len(res.Skipped), "duration", res.Duration)
	return res, nil
}

func (b *Builder) buildPages(
	ctx context.Context,
	log *logger.Logger,
	tpl render.Renderer,
	outDir string,
	res *Result,
) error {
	resolver := resolve.NewStatic(b.Source, b.Source, b.Cfg.Content.DefaultPublishingLevel)
	pages := render.NewPageBuilder(b.Cfg, true)

	for _, e := range res.Paths.Entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		d, err := resolver.Resolve(ctx, e.Value)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", e, err)
		}
		r, ok := d.(site.Render)
		if !ok {
			log.Warn("path no longer resolves, skipped", "entry", e.String())
			res.Skipped = append(res.Skipped, e.Value)
			continue
		}

		page, err := pages.Article(r, StaticPath(b.Cfg.Build.StaticBasePath, e.Value))
		if err != nil {
			return fmt.Errorf("markdown render(%s): %w", e.Value, err)
		}
		htmlBytes, err := tpl.RenderArticle(ctx, page)
		if err != nil {
			return fmt.Errorf("render article(%s): %w", e.Value, err)
		}
		if err := writeFile(outDir, PageFile(b.Cfg.Build.StaticBasePath, e.Value), htmlBytes); err != nil {
			return err
		}
		res.Pages++
	}
	return nil
}

func (b *Builder) buildNotFound(ctx context.Context, tpl render.Renderer, outDir string) error {
	page := render.NotFoundPage{
		Site: render.SiteView{Title: b.Cfg.Site.Title, Language: b.Cfg.Site.Language},
	}
	htmlBytes, err := tpl.RenderNotFound(ctx, page)
	if err != nil {
		return err
	}
	return writeFile(outDir, "404.html", htmlBytes)
}

// StaticPath is the URL path of a statically generated page.
func StaticPath(basePath, identifier string) string {
	return strings.TrimRight(basePath, "/") + "/" + identifier
}

// PageFile is where the page for identifier lives under the public dir.
func PageFile(basePath, identifier string) string {
	return filepath.Join(strings.TrimPrefix(basePath, "/"), safePathSegment(identifier), "index.html")
}

func writeFile(root, rel string, data []byte) error {
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

// safePathSegment keeps plain identifiers readable and hex-encodes the rest
// behind a "~" prefix, which no plain identifier contains. Distinct
// identifiers always get distinct directories.
func safePathSegment(s string) string {
	if s != "" && strings.IndexFunc(s, unsafeRune) < 0 {
		return s
	}
	return "~" + hex.EncodeToString([]byte(s))
}

func unsafeRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	case r == '-' || r == '_':
		return false
	}
	return true
}

func (b *Builder) copyStaticAssets(outDir string) error {
	if b.Cfg.Build.ThemeDir == "" {
		return nil
	}
	src := filepath.Join(b.Cfg.Build.ThemeDir, "static")
	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return nil
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		in, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return writeFile(outDir, rel, in)
	})
}

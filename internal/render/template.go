package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
)

//go:embed theme/*.tmpl
var defaultTheme embed.FS

type TemplateRenderer struct {
	tpl *template.Template
}

// NewTemplateRenderer loads every *.tmpl in themeDir, or the built-in theme
// when themeDir is empty.
func NewTemplateRenderer(themeDir string) (*TemplateRenderer, error) {
	base := template.New("")
	var (
		tpl *template.Template
		err error
	)
	if strings.TrimSpace(themeDir) == "" {
		tpl, err = base.ParseFS(defaultTheme, "theme/*.tmpl")
	} else {
		if err := CheckThemeTemplates(themeDir); err != nil {
			return nil, err
		}
		tpl, err = base.ParseGlob(filepath.Join(themeDir, "*.tmpl"))
	}
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{tpl: tpl}, nil
}

func (r *TemplateRenderer) RenderHome(ctx context.Context, page HomePage) ([]byte, error) {
	return r.exec("home.tmpl", page)
}

func (r *TemplateRenderer) RenderArticle(ctx context.Context, page ArticlePage) ([]byte, error) {
	return r.exec("article.tmpl", page)
}

func (r *TemplateRenderer) RenderNotFound(ctx context.Context, page NotFoundPage) ([]byte, error) {
	return r.exec("404.tmpl", page)
}

func (r *TemplateRenderer) RenderError(ctx context.Context, page ErrorPage) ([]byte, error) {
	return r.exec("error.tmpl", page)
}

func (r *TemplateRenderer) exec(name string, data any) ([]byte, error) {
	t := r.tpl.Lookup(name)
	if t == nil {
		return nil, fmt.Errorf("template %s not found", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func CheckThemeTemplates(themeDir string) error {
	required := []string{
		"head.tmpl",
		"home.tmpl",
		"article.tmpl",
		"404.tmpl",
		"error.tmpl",
	}
	for _, name := range required {
		if _, err := os.Stat(filepath.Join(themeDir, name)); err != nil {
			return fmt.Errorf("missing template: %s", name)
		}
	}
	return nil
}

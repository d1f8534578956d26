package render

import (
	"html/template"

	"github.com/sayeems/pcc-test-sdk/internal/domain/content"
	"github.com/sayeems/pcc-test-sdk/internal/seo"
)

type Heading struct {
	Level int
	ID    string
	Text  string
}

type SiteView struct {
	Title    string
	Language string
	// DevReload injects the live-reload script.
	DevReload bool
}

type ArticlePage struct {
	Site    SiteView
	Head    seo.Head
	Article content.Article
	HTML    template.HTML
	TOC     []Heading
	// Grid is nil when there are no recommendations.
	Grid *Grid
}

type HomePage struct {
	Site SiteView
	Grid *Grid
}

type NotFoundPage struct {
	Site SiteView
	Path string
}

type ErrorPage struct {
	Site    SiteView
	Status  int
	Message string
}

package render

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sayeems/pcc-test-sdk/internal/domain/content"
)

// SnippetLen is how much of a snippet a grid card shows.
const SnippetLen = 120

type GridItem struct {
	Href    string
	ImgSrc  string
	AltText string
	Title   string
	Tags    []string
	Snippet string
}

type Grid struct {
	Items []GridItem
}

type GridOptions struct {
	// BasePath prefixes item links, e.g. "/articles".
	BasePath string
	// ImageField names the metadata field holding the card image.
	ImageField string
}

// BuildGrid lays recommendations out as cards. It returns nil for an empty
// list so pages render nothing at all in its place.
func BuildGrid(recs []content.Article, opt GridOptions) *Grid {
	if len(recs) == 0 {
		return nil
	}
	if opt.ImageField == "" {
		opt.ImageField = "Hero Image"
	}
	base := strings.TrimRight(opt.BasePath, "/")

	g := &Grid{Items: make([]GridItem, 0, len(recs))}
	for _, a := range recs {
		item := GridItem{
			Href:    base + "/" + a.CanonicalID(),
			Title:   a.Title,
			AltText: a.Title,
			Tags:    a.Tags,
			Snippet: Snippet(a.Snippet, SnippetLen),
		}
		if v, ok := a.Metadata.Get(opt.ImageField); ok {
			if src, ok := v.AsString(); ok {
				item.ImgSrc = src
			}
		}
		g.Items = append(g.Items, item)
	}
	return g
}

// Snippet reduces s to plain text and keeps its first n characters.
func Snippet(s string, n int) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	if strings.ContainsRune(s, '<') {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Package seo derives page head metadata from an article. Everything here is
// pure: no I/O, same input same output.
package seo

import (
	"github.com/sayeems/pcc-test-sdk/internal/domain/content"
)

type Image struct {
	URL string `json:"url"`
}

type Metadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Authors     []string `json:"authors"`
	// PublishedTime is empty when the article carries no usable date.
	PublishedTime string  `json:"publishedTime,omitempty"`
	Images        []Image `json:"images"`
}

// Options carries the site-level inputs of the derivation.
type Options struct {
	Description string
	// ImageFields are metadata keys whose string values are image URLs.
	ImageFields []string
	// FallbackImages are used when no image field yields a URL.
	FallbackImages []string
}

const DefaultDescription = "Article hosted using Pantheon Content Cloud"

func DefaultOptions() Options {
	return Options{
		Description: DefaultDescription,
		ImageFields: []string{"Hero Image"},
	}
}

// Extractor derives Metadata with fixed Options.
type Extractor struct {
	opt Options
}

func NewExtractor(opt Options) *Extractor {
	if opt.Description == "" {
		opt.Description = DefaultDescription
	}
	return &Extractor{opt: opt}
}

func (e *Extractor) Extract(a content.Article) Metadata {
	m := Metadata{
		Title:       a.Title,
		Description: e.opt.Description,
		Tags:        Tags(a),
		Authors:     Authors(a),
		Images:      Images(a, e.opt.ImageFields),
	}
	if t, ok := PublishedTime(a); ok {
		m.PublishedTime = t
	}
	if len(m.Images) == 0 {
		for _, u := range e.opt.FallbackImages {
			m.Images = append(m.Images, Image{URL: u})
		}
	}
	return m
}

// Extract uses DefaultOptions.
func Extract(a content.Article) Metadata {
	return NewExtractor(DefaultOptions()).Extract(a)
}

// Tags never returns nil.
func Tags(a content.Article) []string {
	if len(a.Tags) == 0 {
		return []string{}
	}
	out := make([]string, len(a.Tags))
	copy(out, a.Tags)
	return out
}

// Authors is the last truthy "author" metadata value as a single entry, or
// empty. Falsy entries never hide an earlier author.
func Authors(a content.Article) []string {
	v, ok := a.Metadata.Last("author", content.MetaValue.Truthy)
	if !ok {
		return []string{}
	}
	return []string{v.Text()}
}

func isDate(v content.MetaValue) bool { return v.Kind() == content.MetaDate }

// PublishedTime formats the last "date" metadata value that is a date
// object. Plain strings and other shapes are skipped.
func PublishedTime(a content.Article) (string, bool) {
	v, ok := a.Metadata.Last("date", isDate)
	if !ok {
		return "", false
	}
	t, _ := v.AsDate()
	return t.Format(content.ISOMillis), true
}

// Images keeps the string values of fields, in field order.
func Images(a content.Article, fields []string) []Image {
	out := []Image{}
	for _, f := range fields {
		v, ok := a.Metadata.Get(f)
		if !ok {
			continue
		}
		if s, ok := v.AsString(); ok {
			out = append(out, Image{URL: s})
		}
	}
	return out
}

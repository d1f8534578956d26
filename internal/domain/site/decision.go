package site

import (
	"fmt"

	"github.com/sayeems/pcc-test-sdk/internal/domain/content"
)

// Decision is the outcome of resolving a request identifier. It is one of
// Render, Redirect or NotFound.
type Decision interface {
	decision()
	String() string
}

type Render struct {
	Article         content.Article
	Recommendations []content.Article
}

type Redirect struct {
	Destination string
	Permanent   bool
}

type NotFound struct{}

func (Render) decision()   {}
func (Redirect) decision() {}
func (NotFound) decision() {}

func (r Render) String() string {
	return fmt.Sprintf("render id=%s slug=%s recommendations=%d", r.Article.ID, r.Article.Slug, len(r.Recommendations))
}

func (r Redirect) String() string {
	return fmt.Sprintf("redirect to=%s permanent=%t", r.Destination, r.Permanent)
}

func (NotFound) String() string { return "not-found" }

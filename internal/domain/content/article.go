package content

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"
)

type PublishingLevel string

const (
	LevelProduction PublishingLevel = "PRODUCTION"
	LevelRealtime   PublishingLevel = "REALTIME"
)

var ErrInvalidPublishingLevel = errors.New("invalid publishing level")

// ParseLevel upper-cases s and checks it against the known levels.
// An empty s yields def.
func ParseLevel(s string, def PublishingLevel) (PublishingLevel, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return def, nil
	}
	switch lvl := PublishingLevel(s); lvl {
	case LevelProduction, LevelRealtime:
		return lvl, nil
	}
	return "", ErrInvalidPublishingLevel
}

type PublishStatus string

const (
	StatusPublished   PublishStatus = "published"
	StatusUnpublished PublishStatus = "unpublished"
)

type Article struct {
	ID       string
	Slug     string
	Title    string
	Tags     []string
	Metadata Metadata
	Snippet  string
	Content  string

	PublishingLevel PublishingLevel
	PublishStatus   PublishStatus
}

// CanonicalID is the routable slug when there is one, the id otherwise.
func (a Article) CanonicalID() string {
	if s := a.RoutableSlug(); s != "" {
		return s
	}
	return a.ID
}

// RoutableSlug is the trimmed slug, or "" when it is blank or spans more than
// one path segment. Article routes only match the last segment of the path.
func (a Article) RoutableSlug() string {
	s := strings.TrimSpace(a.Slug)
	if strings.Contains(s, "/") {
		return ""
	}
	return s
}

// PathSlug is the slug recorded in the metadata, whatever its kind, falling
// back to the slug field.
func (a Article) PathSlug() string {
	if v, ok := a.Metadata.Get("slug"); ok && v.Truthy() {
		if s := strings.TrimSpace(v.Text()); s != "" {
			return s
		}
	}
	return strings.TrimSpace(a.Slug)
}

// FoldKey trims s and case-folds it. Both metadata keys and request
// identifiers are compared in this form.
func FoldKey(s string) string {
	// a Caser keeps state, so it is not shared between callers
	return cases.Fold().String(strings.TrimSpace(s))
}

// SameIdentifier reports whether a and b name the same thing once trimmed
// and case-folded.
func SameIdentifier(a, b string) bool {
	return FoldKey(a) == FoldKey(b)
}

package site

import "strings"

type IdentifierKind string

const (
	KindID   IdentifierKind = "id"
	KindSlug IdentifierKind = "slug"
)

// PathEntry is one identifier known at build time.
type PathEntry struct {
	Kind  IdentifierKind `json:"kind"`
	Value string         `json:"value"`
}

func (p PathEntry) String() string {
	return string(p.Kind) + "=" + p.Value
}

// Fallback says what happens to identifiers missing from the enumerated set.
type Fallback string

// FallbackBlocking renders unknown identifiers on demand; the caller waits.
const FallbackBlocking Fallback = "blocking"

type Paths struct {
	Entries  []PathEntry
	Fallback Fallback
}

func (p Paths) String() string {
	parts := make([]string, 0, len(p.Entries))
	for _, e := range p.Entries {
		parts = append(parts, e.String())
	}
	return "fallback=" + string(p.Fallback) + " " + strings.Join(parts, " ")
}

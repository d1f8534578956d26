package seo

// Tag is one <meta> element in the page head.
type Tag struct {
	Name     string
	Property string
	Content  string
}

type HeadOptions struct {
	// OmitImages drops og:image tags; static pages are generated without them.
	OmitImages bool
	Canonical  string
}

// Head is what the page head renders: the document title, the description,
// and the Open Graph tags.
type Head struct {
	Title     string
	Canonical string
	Tags      []Tag
}

// OpenGraph projects m onto head tags. article:published_time is left out
// entirely when m has no published time.
func OpenGraph(m Metadata, opt HeadOptions) Head {
	h := Head{Title: m.Title, Canonical: opt.Canonical}
	h.Tags = append(h.Tags,
		Tag{Name: "description", Content: m.Description},
		Tag{Property: "og:type", Content: "website"},
		Tag{Property: "og:title", Content: m.Title},
		Tag{Property: "og:description", Content: m.Description},
	)
	if !opt.OmitImages {
		for _, img := range m.Images {
			h.Tags = append(h.Tags, Tag{Property: "og:image", Content: img.URL})
		}
	}
	for _, a := range m.Authors {
		h.Tags = append(h.Tags, Tag{Property: "article:author", Content: a})
	}
	for _, t := range m.Tags {
		h.Tags = append(h.Tags, Tag{Property: "article:tag", Content: t})
	}
	if m.PublishedTime != "" {
		h.Tags = append(h.Tags, Tag{Property: "article:published_time", Content: m.PublishedTime})
	}
	if opt.Canonical != "" {
		h.Tags = append(h.Tags, Tag{Property: "og:url", Content: opt.Canonical})
	}
	return h
}

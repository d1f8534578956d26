package resolve

import (
	"github.com/sayeems/pcc-test-sdk/internal/domain/content"
	"github.com/sayeems/pcc-test-sdk/internal/domain/site"
)

// Bind pairs a resolved article with its recommendations, untouched.
func Bind(a content.Article, recs []content.Article) site.Render {
	return site.Render{Article: a, Recommendations: recs}
}

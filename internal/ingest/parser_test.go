package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sayeems/pcc-test-sdk/internal/domain/content"
)

func TestParseFrontMatter(t *testing.T) {
	raw := []byte("---\r\nid: abc123\r\ntitle: My Post\r\nslug: My Post!\r\ntags: [go, cms]\r\nmetadata:\r\n  Author: Ada\r\n  date:\r\n    msSinceEpoch: 1700000000000\r\nrecommended: [def456]\r\n---\r\n# Hello\r\n\r\nBody.\r\n")

	fm, body, err := ParseFrontMatter(raw)
	require.NoError(t, err)

	assert.Equal(t, "abc123", fm.ID)
	assert.Equal(t, "My Post", fm.Title)
	assert.Equal(t, []string{"go", "cms"}, fm.Tags)
	assert.Equal(t, []string{"def456"}, fm.Recommended)
	assert.Equal(t, "# Hello\n\nBody.", string(body))

	author, ok := fm.Metadata.Get("author")
	require.True(t, ok)
	assert.Equal(t, "Ada", author.Text())
	date, _ := fm.Metadata.Get("date")
	assert.Equal(t, content.MetaDate, date.Kind())
}

func TestParseFrontMatter_NoFrontMatter(t *testing.T) {
	_, body, err := ParseFrontMatter([]byte("# Just markdown\n"))
	assert.ErrorIs(t, err, errNoFrontMatter)
	assert.Equal(t, "# Just markdown", string(body))
}

func TestParseFrontMatter_Unclosed(t *testing.T) {
	_, _, err := ParseFrontMatter([]byte("---\ntitle: x\nbody"))
	assert.ErrorIs(t, err, errInvalidFrontMatter)
}

func TestParseFrontMatter_NoBody(t *testing.T) {
	fm, body, err := ParseFrontMatter([]byte("---\ntitle: x\n---"))
	require.NoError(t, err)
	assert.Equal(t, "x", fm.Title)
	assert.Empty(t, body)
}

func TestResolveID(t *testing.T) {
	assert.Equal(t, "abc", ResolveID(FrontMatter{ID: " abc "}, "content/x.md"))
	assert.Equal(t, "hello-world", ResolveID(FrontMatter{}, "content/2024/hello-world.md"))
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"":               "",
		"My Post!":       "my-post",
		"  Go -- 1.25  ": "go-1-25",
		"already-a-slug": "already-a-slug",
		"Café Crème":     "café-crème",
	}
	for in, want := range tests {
		assert.Equal(t, want, slugify(in), "slugify(%q)", in)
	}
}

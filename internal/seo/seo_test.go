package seo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sayeems/pcc-test-sdk/internal/domain/content"
)

func article(entries ...content.MetaEntry) content.Article {
	return content.Article{
		ID:       "abc123",
		Slug:     "my-post",
		Title:    "My Post",
		Tags:     []string{"go", "cms"},
		Metadata: content.NewMetadata(entries...),
	}
}

func TestExtract_Full(t *testing.T) {
	a := article(
		content.MetaEntry{Key: "Author", Value: content.StringValue("Ada Lovelace")},
		content.MetaEntry{Key: "Date", Value: content.DateValue(1700000000000)},
		content.MetaEntry{Key: "hero image", Value: content.StringValue("https://cdn.example.com/h.png")},
	)

	m := Extract(a)

	assert.Equal(t, Metadata{
		Title:         "My Post",
		Description:   DefaultDescription,
		Tags:          []string{"go", "cms"},
		Authors:       []string{"Ada Lovelace"},
		PublishedTime: "2023-11-14T22:13:20.000Z",
		Images:        []Image{{URL: "https://cdn.example.com/h.png"}},
	}, m)
}

func TestExtract_Empty(t *testing.T) {
	a := content.Article{ID: "x", Title: "Bare"}
	m := Extract(a)

	assert.NotNil(t, m.Tags)
	assert.Empty(t, m.Tags)
	assert.NotNil(t, m.Authors)
	assert.Empty(t, m.Authors)
	assert.NotNil(t, m.Images)
	assert.Empty(t, m.Images)
	assert.Equal(t, "", m.PublishedTime)
}

func TestExtract_NonStringImageIgnored(t *testing.T) {
	a := article(content.MetaEntry{Key: "Hero Image", Value: content.OtherValue("42")})
	assert.Equal(t, []Image{}, Extract(a).Images)
}

func TestExtract_DateMustBeDateObject(t *testing.T) {
	a := article(content.MetaEntry{Key: "date", Value: content.StringValue("2023-11-14")})
	_, ok := PublishedTime(a)
	assert.False(t, ok)
	assert.Equal(t, "", Extract(a).PublishedTime)
}

func TestAuthors_Falsy(t *testing.T) {
	for _, v := range []content.MetaValue{
		content.StringValue(""),
		content.OtherValue("null"),
		content.OtherValue("false"),
		content.OtherValue("0"),
	} {
		a := article(content.MetaEntry{Key: "author", Value: v})
		assert.Equal(t, []string{}, Authors(a), "value %q", v.Text())
	}
}

func TestAuthors_NonStringTruthyIsStringified(t *testing.T) {
	a := article(content.MetaEntry{Key: "author", Value: content.OtherValue("7")})
	assert.Equal(t, []string{"7"}, Authors(a))
}

func TestExtract_Idempotent(t *testing.T) {
	a := article(
		content.MetaEntry{Key: "author", Value: content.StringValue("Ada")},
		content.MetaEntry{Key: "date", Value: content.DateValue(1)},
	)
	assert.Equal(t, Extract(a), Extract(a))
}

func TestExtract_DoesNotAliasTags(t *testing.T) {
	a := article()
	m := Extract(a)
	m.Tags[0] = "changed"
	assert.Equal(t, "go", a.Tags[0])
}

func TestExtractor_Options(t *testing.T) {
	ex := NewExtractor(Options{
		Description:    "Field notes",
		ImageFields:    []string{"Social Image", "Hero Image"},
		FallbackImages: []string{"https://cdn.example.com/default.png"},
	})

	a := article(
		content.MetaEntry{Key: "hero image", Value: content.StringValue("h.png")},
		content.MetaEntry{Key: "social image", Value: content.StringValue("s.png")},
	)
	m := ex.Extract(a)
	assert.Equal(t, "Field notes", m.Description)
	assert.Equal(t, []Image{{URL: "s.png"}, {URL: "h.png"}}, m.Images)

	m = ex.Extract(article())
	assert.Equal(t, []Image{{URL: "https://cdn.example.com/default.png"}}, m.Images)
}

func TestNewExtractor_DefaultDescription(t *testing.T) {
	m := NewExtractor(Options{}).Extract(article())
	assert.Equal(t, DefaultDescription, m.Description)
}

func TestExtract_LaterUnusableEntryKeepsEarlierMatch(t *testing.T) {
	var md content.Metadata
	require.NoError(t, json.Unmarshal([]byte(`{
		"Author": "Jane Doe",
		"author ": "",
		"Date": {"msSinceEpoch": 1700000000000},
		"date": "not a date"
	}`), &md))

	a := content.Article{ID: "abc123", Title: "T", Metadata: md}
	m := Extract(a)
	assert.Equal(t, []string{"Jane Doe"}, m.Authors)
	assert.Equal(t, "2023-11-14T22:13:20.000Z", m.PublishedTime)
}

func TestExtract_LastMatchingEntryWins(t *testing.T) {
	a := article(
		content.MetaEntry{Key: "author", Value: content.StringValue("Ada")},
		content.MetaEntry{Key: "AUTHOR", Value: content.StringValue("Grace")},
		content.MetaEntry{Key: "date", Value: content.DateValue(0)},
		content.MetaEntry{Key: " Date", Value: content.DateValue(1700000000000)},
	)
	m := Extract(a)
	assert.Equal(t, []string{"Grace"}, m.Authors)
	assert.Equal(t, "2023-11-14T22:13:20.000Z", m.PublishedTime)
}

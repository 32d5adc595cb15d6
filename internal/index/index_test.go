// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubarchiver/pkg/types"
)

const sampleIndex = `<?xml version="1.0" encoding="ascii"?>
<articles>
  <article>
    <doi>10.17912/micropub.biology.000200</doi>
    <article-title>A complete
      article with a wrapped title</article-title>
    <date-published><year>2020</year><month>3</month><day>7</day></date-published>
    <pdf-url>https://example.org/200.pdf</pdf-url>
    <jats-url>https://example.org/200.xml</jats-url>
    <image-url>https://example.org/200.png</image-url>
  </article>
  <article>
    <doi>10.17912/micropub.biology.000100</doi>
    <article-title>An earlier article</article-title>
    <date-published><year>2019</year><month>11</month><day>21</day></date-published>
    <pdf-url>https://example.org/100.pdf</pdf-url>
    <jats-url>https://example.org/100.xml</jats-url>
  </article>
  <article>
    <doi>10.17912/micropub.biology.000300</doi>
    <article-title>No PDF here</article-title>
    <date-published><year>2021</year><month>1</month><day>2</day></date-published>
    <jats-url>https://example.org/300.xml</jats-url>
  </article>
</articles>
`

func TestParseIndex(t *testing.T) {
	opts := Options{ISSN: "2578-9430", RequireJATS: true, SortByDate: true}
	articles := Parse([]byte(sampleIndex), opts, zerolog.Nop())
	require.Len(t, articles, 3)

	// Sorted ascending by date.
	assert.Equal(t, "10.17912/micropub.biology.000100", articles[0].DOI)
	assert.Equal(t, "10.17912/micropub.biology.000200", articles[1].DOI)
	assert.Equal(t, "10.17912/micropub.biology.000300", articles[2].DOI)

	a := articles[1]
	assert.Equal(t, "2578-9430", a.ISSN)
	assert.Equal(t, "A complete article with a wrapped title", a.Title)
	assert.Equal(t, "2020-03-07", a.Date)
	assert.Equal(t, "micropub.biology.000200", a.Basename)
	assert.Equal(t, "https://example.org/200.png", a.Image)
	assert.Equal(t, types.StatusComplete, a.Status)

	// Missing pdf-url renders the entry incomplete, not absent.
	assert.Equal(t, types.StatusIncomplete, articles[2].Status)
	assert.Empty(t, articles[2].PDF)
}

func TestParseRequireJATS(t *testing.T) {
	const doc = `<?xml version="1.0"?>
<articles><article>
  <doi>10.31719/a.1</doi>
  <article-title>T</article-title>
  <date-published><year>2022</year><month>6</month><day>9</day></date-published>
  <pdf-url>https://example.org/a.pdf</pdf-url>
</article></articles>`

	withJATS := Parse([]byte(doc), Options{RequireJATS: true}, zerolog.Nop())
	require.Len(t, withJATS, 1)
	assert.Equal(t, types.StatusIncomplete, withJATS[0].Status)

	withoutJATS := Parse([]byte(doc), Options{RequireJATS: false}, zerolog.Nop())
	require.Len(t, withoutJATS, 1)
	assert.Equal(t, types.StatusComplete, withoutJATS[0].Status)
}

// A malformed entry in the middle of the index must not take its
// siblings down with it; the entries after it still parse.
func TestParseSkipsMalformedEntry(t *testing.T) {
	const doc = `<?xml version="1.0" encoding="ascii"?>
<articles>
  <article>
    <doi>10.17912/good.1</doi>
    <article-title>First</article-title>
    <date-published><year>2019</year><month>1</month><day>2</day></date-published>
    <pdf-url>https://example.org/1.pdf</pdf-url>
  </article>
  <article>
    <doi>10.17912/bad.2</doi>
    <article-title>Broken &undeclared; entity</article-title>
  </article>
  <article>
    <doi>10.17912/good.3</doi>
    <article-title>Third</article-title>
    <date-published><year>2021</year><month>3</month><day>4</day></date-published>
    <pdf-url>https://example.org/3.pdf</pdf-url>
  </article>
</articles>`

	articles := Parse([]byte(doc), Options{}, zerolog.Nop())
	require.Len(t, articles, 2)
	assert.Equal(t, "10.17912/good.1", articles[0].DOI)
	assert.Equal(t, "10.17912/good.3", articles[1].DOI)
	assert.Equal(t, types.StatusComplete, articles[1].Status)
}

func TestParseBadDocument(t *testing.T) {
	articles := Parse([]byte("<html><body>backend error</body>"), Options{}, zerolog.Nop())
	assert.Empty(t, articles)
}

func TestParseMissingDate(t *testing.T) {
	const doc = `<?xml version="1.0"?>
<articles><article>
  <doi>10.17912/x.1</doi>
  <article-title>T</article-title>
  <pdf-url>https://example.org/x.pdf</pdf-url>
</article></articles>`
	articles := Parse([]byte(doc), Options{}, zerolog.Nop())
	require.Len(t, articles, 1)
	assert.Empty(t, articles[0].Date)
	assert.Equal(t, types.StatusIncomplete, articles[0].Status)
}

func TestLooksLikeXML(t *testing.T) {
	dir := t.TempDir()

	xmlPath := filepath.Join(dir, "index.xml")
	require.NoError(t, os.WriteFile(xmlPath, []byte(sampleIndex), 0o644))
	isXML, err := LooksLikeXML(xmlPath)
	require.NoError(t, err)
	assert.True(t, isXML)

	doiPath := filepath.Join(dir, "dois.txt")
	require.NoError(t, os.WriteFile(doiPath, []byte("10.17912/a\n10.17912/b\n"), 0o644))
	isXML, err = LooksLikeXML(doiPath)
	require.NoError(t, err)
	assert.False(t, isXML)
}

func TestReadDOIs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dois.txt")
	require.NoError(t, os.WriteFile(path, []byte("10.17912/a\n\n  10.17912/b  \n"), 0o644))

	dois, err := ReadDOIs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.17912/a", "10.17912/b"}, dois)
}

func TestSubset(t *testing.T) {
	articles := []types.Article{
		{DOI: "10.17912/a"},
		{DOI: "10.17912/b"},
		{DOI: "10.17912/c"},
	}
	subset := Subset(articles, []string{"10.17912/c", "10.17912/a", "10.17912/nope"}, zerolog.Nop())
	require.Len(t, subset, 2)
	// Index order wins over request order.
	assert.Equal(t, "10.17912/a", subset[0].DOI)
	assert.Equal(t, "10.17912/c", subset[1].DOI)
}

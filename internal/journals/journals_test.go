// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package journals

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubarchiver/pkg/types"
)

const indexFixture = `<?xml version="1.0" encoding="ascii"?>
<articles>
  <article>
    <doi>10.17912/micropub.biology.000100</doi>
    <article-title>First</article-title>
    <date-published><year>2019</year><month>1</month><day>2</day></date-published>
    <pdf-url>https://example.org/100.pdf</pdf-url>
    <jats-url>https://example.org/100.xml</jats-url>
  </article>
  <article>
    <doi>10.17912/micropub.biology.000200</doi>
    <article-title>Second</article-title>
    <date-published><year>2020</year><month>3</month><day>4</day></date-published>
    <pdf-url>https://example.org/200.pdf</pdf-url>
    <jats-url>https://example.org/200.xml</jats-url>
  </article>
</articles>
`

func testDeps(srv *httptest.Server) Deps {
	return Deps{Client: srv.Client(), UserAgent: "pubarchiver-test", Logger: zerolog.Nop()}
}

func TestLookup(t *testing.T) {
	deps := Deps{Client: http.DefaultClient, Logger: zerolog.Nop()}

	for _, key := range Known() {
		adapter, err := Lookup(key, deps)
		require.NoError(t, err)
		require.NotNil(t, adapter)
		info := adapter.Info()
		assert.NotEmpty(t, info.Name)
		assert.NotEmpty(t, info.ISSN)
		assert.NotEmpty(t, info.DOIPrefix)
		assert.NotEmpty(t, info.ArchiveBasename)
		assert.NotEmpty(t, info.MetadataSource)
		assert.Greater(t, info.FoundingYear, 2000)
	}

	// Case-insensitive keys.
	_, err := Lookup("MicroPublication", deps)
	assert.NoError(t, err)

	_, err = Lookup("nonesuch", deps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "micropublication")
}

func TestInfoShortURL(t *testing.T) {
	info := Info{BaseURLs: []string{"https://www.micropublication.org", "https://micropublication.org"}}
	assert.Equal(t, "/journals/biology/000100",
		info.ShortURL("https://www.micropublication.org/journals/biology/000100"))
	assert.Equal(t, "https://elsewhere.org/x", info.ShortURL("https://elsewhere.org/x"))
}

func TestMicropublicationAllArticles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(indexFixture))
	}))
	defer srv.Close()

	oldURL := MicropublicationIndexURL
	MicropublicationIndexURL = srv.URL
	defer func() { MicropublicationIndexURL = oldURL }()

	m := NewMicropublication(testDeps(srv))
	articles, err := m.AllArticles(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "10.17912/micropub.biology.000100", articles[0].DOI)
	assert.Equal(t, "2578-9430", articles[0].ISSN)
	assert.Equal(t, types.StatusComplete, articles[0].Status)
}

// A 404 from the index endpoint means the server has nothing to offer;
// that is an empty run, not a fatal error.
func TestMicropublicationAllArticlesNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	oldURL := MicropublicationIndexURL
	MicropublicationIndexURL = srv.URL
	defer func() { MicropublicationIndexURL = oldURL }()

	m := NewMicropublication(testDeps(srv))
	articles, err := m.AllArticles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestMicropublicationAllArticlesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	oldURL := MicropublicationIndexURL
	MicropublicationIndexURL = srv.URL
	defer func() { MicropublicationIndexURL = oldURL }()

	m := NewMicropublication(testDeps(srv))
	_, err := m.AllArticles(context.Background())
	require.Error(t, err)
}

func TestMicropublicationArticlesFromXMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.xml")
	require.NoError(t, os.WriteFile(path, []byte(indexFixture), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("local XML index must not trigger a network fetch")
	}))
	defer srv.Close()

	oldURL := MicropublicationIndexURL
	MicropublicationIndexURL = srv.URL
	defer func() { MicropublicationIndexURL = oldURL }()

	m := NewMicropublication(testDeps(srv))
	articles, err := m.ArticlesFrom(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, articles, 2)
}

func TestMicropublicationArticlesFromDOIList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dois.txt")
	require.NoError(t, os.WriteFile(path, []byte("10.17912/micropub.biology.000200\n"), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(indexFixture))
	}))
	defer srv.Close()

	oldURL := MicropublicationIndexURL
	MicropublicationIndexURL = srv.URL
	defer func() { MicropublicationIndexURL = oldURL }()

	m := NewMicropublication(testDeps(srv))
	articles, err := m.ArticlesFrom(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "10.17912/micropub.biology.000200", articles[0].DOI)
}

func TestPromptArticlesFromRejectsXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.xml")
	require.NoError(t, os.WriteFile(path, []byte(indexFixture), 0o644))

	p := NewPrompt(Deps{Client: http.DefaultClient, Logger: zerolog.Nop()})
	_, err := p.ArticlesFrom(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOI lists")
}

func TestPromptInfo(t *testing.T) {
	p := NewPrompt(Deps{Client: http.DefaultClient, Logger: zerolog.Nop()})
	info := p.Info()
	assert.Equal(t, "2476-0943", info.ISSN)
	assert.Equal(t, "10.31719", info.DOIPrefix)
	assert.False(t, info.UsesJATS)
	assert.Equal(t, types.Status("missing-crossref"), info.MissingMetadataStatus())
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubarchiver/pkg/types"
)

func TestWorkByDOI(t *testing.T) {
	var gotMailto string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMailto = r.URL.Query().Get("mailto")
		resp := map[string]interface{}{
			"message": map[string]interface{}{
				"DOI":             "10.31719/pjaw.v2i1.30",
				"title":           []string{"A prompt article"},
				"container-title": []string{"Prompt"},
				"publisher":       "Prompt Press",
				"issued":          map[string]interface{}{"date-parts": [][]int{{2018, 1, 15}}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	oldBase := CrossrefAPIBase
	CrossrefAPIBase = srv.URL + "/works"
	defer func() { CrossrefAPIBase = oldBase }()

	c := &Crossref{Client: srv.Client(), Email: "archivist@example.org", Logger: zerolog.Nop()}
	work, err := c.WorkByDOI(context.Background(), "10.31719/pjaw.v2i1.30")
	require.NoError(t, err)

	assert.Equal(t, "archivist@example.org", gotMailto)
	assert.Equal(t, "10.31719/pjaw.v2i1.30", work.DOI)
	assert.Equal(t, "A prompt article", work.Title[0])
	assert.Equal(t, "2018-01-15", DateOf(work))
}

func TestWorksByPrefixPagination(t *testing.T) {
	page := func(n, count int, next string) []byte {
		items := make([]map[string]interface{}, count)
		for i := range items {
			items[i] = map[string]interface{}{"DOI": fmt.Sprintf("10.31719/p%d.%d", n, i)}
		}
		body, err := json.Marshal(map[string]interface{}{
			"message": map[string]interface{}{
				"items":       items,
				"next-cursor": next,
			},
		})
		require.NoError(t, err)
		return body
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "prefix:10.31719", r.URL.Query().Get("filter"))
		switch r.URL.Query().Get("cursor") {
		case "*":
			w.Write(page(1, crossrefPageSize, "next-page-token"))
		case "next-page-token":
			w.Write(page(2, 3, "unused"))
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("cursor"))
		}
	}))
	defer srv.Close()

	oldBase := CrossrefAPIBase
	CrossrefAPIBase = srv.URL + "/works"
	defer func() { CrossrefAPIBase = oldBase }()

	c := &Crossref{Client: srv.Client(), Logger: zerolog.Nop()}
	works, err := c.WorksByPrefix(context.Background(), "10.31719")
	require.NoError(t, err)
	assert.Len(t, works, crossrefPageSize+3)
	assert.Equal(t, "10.31719/p1.0", works[0].DOI)
	assert.Equal(t, "10.31719/p2.2", works[len(works)-1].DOI)
}

func TestBuildCrossrefDocument(t *testing.T) {
	work := Work{
		DOI:            "10.31719/pjaw.v2i1.30",
		Title:          []string{"A prompt article"},
		ContainerTitle: []string{"Prompt"},
		Publisher:      "Prompt Press",
		Issue:          "1",
		Abstract:       "<jats:p>Brief  summary.</jats:p>",
		Author: []workAuthor{
			{Given: "Ada", Family: "Lovelace"},
			{Given: "Charles", Family: "Babbage"},
		},
		License: []workLicense{{URL: "https://creativecommons.org/licenses/by/4.0/"}},
		Issued:  workDate{DateParts: [][]int{{2018, 1, 15}}},
	}
	article := types.Article{Basename: "pjaw.v2i1.30"}

	doc := BuildCrossrefDocument(work, article, "2476-0943", 2016)
	res, err := doc.Resource()
	require.NoError(t, err)

	ident := res["identifier"].(map[string]interface{})
	assert.Equal(t, "DOI", ident["@identifierType"])
	assert.Equal(t, work.DOI, ident["#text"])
	assert.Equal(t, "Prompt", res["journal"])
	assert.Equal(t, 2, res["volume"])
	assert.Equal(t, 2018, res["publicationYear"])
	assert.Equal(t, "2476-0943", res["e-issn"])
	assert.Equal(t, "pjaw.v2i1.30.pdf", res["file"])

	creators := res["creators"].(map[string]interface{})["creator"].([]interface{})
	require.Len(t, creators, 2)
	assert.Equal(t, "Lovelace, Ada", creators[0].(map[string]interface{})["creatorName"])

	rights := res["rightsList"].(map[string]interface{})
	assert.Equal(t, "https://creativecommons.org/licenses/by/4.0/", rights["rightsURI"])
	assert.NotContains(t, rights, "rights")

	desc := res["descriptions"].(map[string]interface{})["description"].(map[string]interface{})
	assert.Equal(t, "Abstract", desc["@descriptionType"])
	assert.Equal(t, "Brief summary.", desc["#text"])
}

func TestBuildCrossrefDocumentRightsFallback(t *testing.T) {
	work := Work{
		DOI:    "10.31719/pjaw.v2i1.31",
		Title:  []string{"Unlicensed"},
		Author: []workAuthor{{Given: "Ada", Family: "Lovelace"}},
		Issued: workDate{DateParts: [][]int{{2018}}},
	}
	doc := BuildCrossrefDocument(work, types.Article{Basename: "pjaw.v2i1.31"}, "2476-0943", 2016)
	res, err := doc.Resource()
	require.NoError(t, err)

	rights := res["rightsList"].(map[string]interface{})
	assert.Equal(t, "Copyright (c) 2018 Ada Lovelace", rights["rights"])
	assert.Equal(t, defaultCrossrefRightsURI, rights["rightsURI"])
	assert.NotContains(t, res, "descriptions")
}

func TestArticleFromWork(t *testing.T) {
	work := Work{
		DOI:   "10.31719/pjaw.v2i1.30",
		Title: []string{"A  prompt\narticle"},
		Link: []workLink{
			{URL: "https://example.org/view", ContentType: "text/html"},
			{URL: "https://example.org/a.pdf", ContentType: "application/pdf"},
		},
		Issued: workDate{DateParts: [][]int{{2018, 1, 15}}},
	}

	a := ArticleFromWork(work, "2476-0943")
	assert.Equal(t, "A prompt article", a.Title)
	assert.Equal(t, "https://example.org/a.pdf", a.PDF)
	assert.Equal(t, "2018-01-15", a.Date)
	assert.Equal(t, "pjaw.v2i1.30", a.Basename)
	assert.Equal(t, types.StatusComplete, a.Status)

	work.Link = nil
	a = ArticleFromWork(work, "2476-0943")
	assert.Empty(t, a.PDF)
	assert.Equal(t, types.StatusIncomplete, a.Status)
}

func TestDateOf(t *testing.T) {
	assert.Equal(t, "2018-01-15", DateOf(Work{Issued: workDate{DateParts: [][]int{{2018, 1, 15}}}}))
	assert.Equal(t, "2018-01-01", DateOf(Work{Issued: workDate{DateParts: [][]int{{2018}}}}))
	assert.Equal(t, "2020-07-01", DateOf(Work{Created: workDate{DateParts: [][]int{{2020, 7}}}}))
	assert.Empty(t, DateOf(Work{}))
}

func TestStripMarkup(t *testing.T) {
	assert.Equal(t, "Brief summary.", stripMarkup("<jats:p>Brief  summary.</jats:p>"))
	assert.Equal(t, "plain", stripMarkup("plain"))
	assert.Equal(t, "a b", stripMarkup("<p>a</p><p>b</p>"))
}

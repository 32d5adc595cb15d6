// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/pubarchiver/internal/httputil"
	"github.com/pdiddy/pubarchiver/pkg/types"
)

// CrossrefAPIBase is the Crossref works endpoint. Declared as a var so
// tests can substitute an httptest server.
var CrossrefAPIBase = "https://api.crossref.org/works"

// crossrefPageSize is the rows-per-page used for prefix listings.
const crossrefPageSize = 100

const defaultCrossrefRightsURI = "https://creativecommons.org/licenses/by-nc/4.0/legalcode"

// Crossref resolves article metadata and DOI-prefix listings from the
// Crossref registry.
type Crossref struct {
	Client    *http.Client
	UserAgent string

	// Email joins Crossref's polite pool when set (mailto parameter).
	Email string

	Logger zerolog.Logger
}

// Work mirrors the parts of a Crossref works record this tool reads.
type Work struct {
	DOI            string        `json:"DOI"`
	Title          []string      `json:"title"`
	ContainerTitle []string      `json:"container-title"`
	Publisher      string        `json:"publisher"`
	Volume         string        `json:"volume"`
	Issue          string        `json:"issue"`
	Abstract       string        `json:"abstract"`
	Author         []workAuthor  `json:"author"`
	License        []workLicense `json:"license"`
	Link           []workLink    `json:"link"`
	Issued         workDate      `json:"issued"`
	Created        workDate      `json:"created"`
}

type workAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type workLicense struct {
	URL string `json:"URL"`
}

type workLink struct {
	URL         string `json:"URL"`
	ContentType string `json:"content-type"`
}

type workDate struct {
	DateParts [][]int `json:"date-parts"`
}

type worksResponse struct {
	Message Work `json:"message"`
}

type worksListResponse struct {
	Message struct {
		Items      []Work `json:"items"`
		NextCursor string `json:"next-cursor"`
	} `json:"message"`
}

// WorkByDOI fetches one works record.
func (c *Crossref) WorkByDOI(ctx context.Context, doi string) (Work, error) {
	reqURL := CrossrefAPIBase + "/" + url.PathEscape(doi)
	if c.Email != "" {
		reqURL += "?mailto=" + url.QueryEscape(c.Email)
	}
	body, err := httputil.Get(ctx, c.Client, reqURL, c.UserAgent)
	if err != nil {
		return Work{}, fmt.Errorf("Crossref lookup for %s: %w", doi, err)
	}
	var resp worksResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Work{}, fmt.Errorf("decoding Crossref response for %s: %w", doi, err)
	}
	return resp.Message, nil
}

// WorksByPrefix pages through every works record under a DOI prefix
// using cursor pagination. This is the article index for journals that
// have no index endpoint of their own.
func (c *Crossref) WorksByPrefix(ctx context.Context, prefix string) ([]Work, error) {
	var works []Work
	cursor := "*"
	for {
		params := url.Values{
			"filter": {"prefix:" + prefix},
			"rows":   {fmt.Sprint(crossrefPageSize)},
			"cursor": {cursor},
		}
		if c.Email != "" {
			params.Set("mailto", c.Email)
		}
		body, err := httputil.Get(ctx, c.Client, CrossrefAPIBase+"?"+params.Encode(), c.UserAgent)
		if err != nil {
			return nil, fmt.Errorf("Crossref prefix listing for %s: %w", prefix, err)
		}
		var resp worksListResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("decoding Crossref prefix listing for %s: %w", prefix, err)
		}
		works = append(works, resp.Message.Items...)
		c.Logger.Debug().Int("total", len(works)).Str("prefix", prefix).Msg("fetched Crossref page")

		if len(resp.Message.Items) < crossrefPageSize || resp.Message.NextCursor == "" {
			return works, nil
		}
		cursor = resp.Message.NextCursor
	}
}

// Resolve fetches the Crossref record for article's DOI and builds the
// normalized output document from scratch (Crossref does not return a
// pre-formed metadata document the way DataCite does).
func (c *Crossref) Resolve(ctx context.Context, article types.Article, issn string, foundingYear int) (Document, error) {
	work, err := c.WorkByDOI(ctx, article.DOI)
	if err != nil {
		c.Logger.Debug().Str("doi", article.DOI).Err(err).Msg("Crossref lookup failed")
		return nil, err
	}
	return BuildCrossrefDocument(work, article, issn, foundingYear), nil
}

// BuildCrossrefDocument maps a works record into the output schema.
func BuildCrossrefDocument(work Work, article types.Article, issn string, foundingYear int) Document {
	year := yearOf(work)

	res := map[string]interface{}{
		"identifier": map[string]interface{}{
			"@identifierType": "DOI",
			"#text":           work.DOI,
		},
		"journal":         first(work.ContainerTitle),
		"volume":          VolumeForYear(year, foundingYear),
		"issue":           work.Issue,
		"publisher":       work.Publisher,
		"publicationYear": year,
		"e-issn":          issn,
		"file":            article.Basename + ".pdf",
		"dates": map[string]interface{}{
			"date": DateOf(work),
		},
		"titles": map[string]interface{}{
			"title": first(work.Title),
		},
		"creators":   creatorsOf(work),
		"rightsList": rightsOf(work, year),
	}
	if work.Abstract != "" {
		res["descriptions"] = map[string]interface{}{
			"description": map[string]interface{}{
				"@descriptionType": "Abstract",
				"#text":            stripMarkup(work.Abstract),
			},
		}
	}
	return Document{"resource": res}
}

// ArticleFromWork converts a works record into a canonical Article for
// the index of a Crossref-backed journal. The PDF URL comes from the
// record's application/pdf link when present.
func ArticleFromWork(work Work, issn string) types.Article {
	a := types.Article{
		ISSN:     issn,
		DOI:      work.DOI,
		Title:    strings.Join(strings.Fields(first(work.Title)), " "),
		Date:     DateOf(work),
		Basename: types.BasenameForDOI(work.DOI),
	}
	for _, link := range work.Link {
		if link.ContentType == "application/pdf" {
			a.PDF = link.URL
			break
		}
	}
	if a.DOI != "" && a.Title != "" && a.Date != "" && a.PDF != "" {
		a.Status = types.StatusComplete
	} else {
		a.Status = types.StatusIncomplete
	}
	return a
}

// DateOf renders the record's issued date (falling back to created) as
// YYYY-MM-DD, or "" when the record has no usable date parts.
func DateOf(work Work) string {
	parts := work.Issued.DateParts
	if len(parts) == 0 || len(parts[0]) == 0 {
		parts = work.Created.DateParts
	}
	if len(parts) == 0 || len(parts[0]) == 0 {
		return ""
	}
	p := parts[0]
	year, month, day := p[0], 1, 1
	if len(p) > 1 {
		month = p[1]
	}
	if len(p) > 2 {
		day = p[2]
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

func yearOf(work Work) int {
	parts := work.Issued.DateParts
	if len(parts) == 0 || len(parts[0]) == 0 {
		parts = work.Created.DateParts
	}
	if len(parts) == 0 || len(parts[0]) == 0 {
		return 0
	}
	return parts[0][0]
}

func creatorsOf(work Work) map[string]interface{} {
	creators := make([]interface{}, 0, len(work.Author))
	for _, a := range work.Author {
		name := strings.TrimSpace(a.Family + ", " + a.Given)
		name = strings.Trim(name, ", ")
		creators = append(creators, map[string]interface{}{"creatorName": name})
	}
	return map[string]interface{}{"creator": creators}
}

// rightsOf derives the license declaration from the publisher's own
// license link; without one it falls back to CC-BY-NC-4.0 with an
// author/year copyright string.
func rightsOf(work Work, year int) map[string]interface{} {
	for _, lic := range work.License {
		if lic.URL != "" {
			return map[string]interface{}{"rightsURI": lic.URL}
		}
	}
	holder := "the authors"
	if len(work.Author) > 0 {
		holder = strings.TrimSpace(work.Author[0].Given + " " + work.Author[0].Family)
	}
	return map[string]interface{}{
		"rights":    fmt.Sprintf("Copyright (c) %d %s", year, holder),
		"rightsURI": defaultCrossrefRightsURI,
	}
}

func first(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[0]
}

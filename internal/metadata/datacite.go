// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metadata

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/clbanning/mxj/v2"
	"github.com/rs/zerolog"

	"github.com/pdiddy/pubarchiver/internal/httputil"
	"github.com/pdiddy/pubarchiver/pkg/types"
)

// DataCiteAPIBase is the DataCite REST endpoint for DOI lookups.
// Declared as a var so tests can substitute an httptest server.
var DataCiteAPIBase = "https://api.datacite.org/dois/"

// ccByRights builds the license declaration injected into every
// DataCite-sourced document. A fresh map each time: documents must not
// share rightsList state through a package-level value.
func ccByRights() map[string]interface{} {
	return map[string]interface{}{
		"rights":    "Creative Commons Attribution 4.0",
		"rightsURI": "https://creativecommons.org/licenses/by/4.0/legalcode",
	}
}

// DataCite resolves article metadata from the DataCite registry.
type DataCite struct {
	Client    *http.Client
	UserAgent string
	Logger    zerolog.Logger
}

// dataciteResponse mirrors the parts of the DataCite DOI record we use:
// a base64-encoded XML metadata blob and the registration timestamp.
type dataciteResponse struct {
	Data struct {
		Attributes struct {
			XML        string `json:"xml"`
			Registered string `json:"registered"`
		} `json:"attributes"`
	} `json:"data"`
}

// Resolve fetches the DataCite record for article's DOI and merges it
// into the normalized output document. issn and foundingYear are the
// journal constants used for the e-issn field and the year→volume
// formula (volume = publicationYear − foundingYear).
func (d *DataCite) Resolve(ctx context.Context, article types.Article, issn string, foundingYear int) (Document, error) {
	body, err := httputil.Get(ctx, d.Client, DataCiteAPIBase+article.DOI, d.UserAgent)
	if err != nil {
		d.Logger.Debug().Str("doi", article.DOI).Err(err).Msg("DataCite lookup failed")
		return nil, fmt.Errorf("DataCite lookup for %s: %w", article.DOI, err)
	}

	var rec dataciteResponse
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("decoding DataCite response for %s: %w", article.DOI, err)
	}
	if rec.Data.Attributes.XML == "" {
		return nil, fmt.Errorf("empty metadata in DataCite response for %s", article.DOI)
	}

	decoded, err := base64.StdEncoding.DecodeString(rec.Data.Attributes.XML)
	if err != nil {
		return nil, fmt.Errorf("decoding DataCite metadata blob for %s: %w", article.DOI, err)
	}

	m, err := mxj.NewMapXml(decoded)
	if err != nil {
		return nil, fmt.Errorf("parsing DataCite metadata XML for %s: %w", article.DOI, err)
	}

	doc := Document(m)
	if err := mergeDataCite(doc, article, rec.Data.Attributes.Registered, issn, foundingYear); err != nil {
		return nil, fmt.Errorf("normalizing DataCite metadata for %s: %w", article.DOI, err)
	}
	return doc, nil
}

// mergeDataCite rewrites the raw registry document in place into the
// output schema. The transform only adds, renames and removes fixed
// keys, so applying it twice yields the same document.
func mergeDataCite(doc Document, article types.Article, registered, issn string, foundingYear int) error {
	res, err := doc.Resource()
	if err != nil {
		return err
	}

	// Overlay the registration timestamp into dates.date, creating the
	// dates section with the article's own date when the registry
	// document lacks one.
	if dates, ok := res["dates"].(map[string]interface{}); ok {
		if date, ok := dates["date"].(map[string]interface{}); ok {
			date["#text"] = registered
		} else {
			dates["date"] = registered
		}
	} else {
		res["dates"] = map[string]interface{}{"date": article.Date}
	}

	year, err := publicationYear(res)
	if err != nil {
		return err
	}
	res["volume"] = VolumeForYear(year, foundingYear)
	res["file"] = article.Basename + ".pdf"
	if publisher, ok := res["publisher"]; ok {
		res["journal"] = publisher
		delete(res, "publisher")
	}
	res["e-issn"] = issn
	res["rightsList"] = ccByRights()

	// Drop the schema plumbing attributes. The xsi prefix may surface
	// either verbatim or resolved to its namespace URI depending on
	// whether the registry blob declares it, so match by suffix.
	for key := range res {
		if key == "@xmlns" || strings.HasPrefix(key, "@xmlns:") || strings.HasSuffix(key, ":schemaLocation") {
			delete(res, key)
		}
	}
	return nil
}

// publicationYear reads the registry document's publicationYear, which
// mxj surfaces as a string.
func publicationYear(res map[string]interface{}) (int, error) {
	raw, ok := res["publicationYear"]
	if !ok {
		return 0, fmt.Errorf("metadata document has no publicationYear")
	}
	year, err := strconv.Atoi(fmt.Sprint(raw))
	if err != nil {
		return 0, fmt.Errorf("bad publicationYear %q: %w", fmt.Sprint(raw), err)
	}
	return year, nil
}

// VolumeForYear maps a publication year to the journal volume number.
// Volume 1 is the journal's founding year plus one, so e.g. a journal
// founded in 2014 publishes volume 5 in 2019.
func VolumeForYear(year, foundingYear int) int {
	return year - foundingYear
}

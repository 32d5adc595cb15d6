// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index parses journal article indexes into canonical Article
// records. The XML form is the `<articles><article>...` document served
// by micropublication.org; the DOI-list form is a plain newline-delimited
// file cross-referenced against a full index.
package index

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/pubarchiver/pkg/types"
)

type rawEntry struct {
	DOI      string   `xml:"doi"`
	PDFURL   string   `xml:"pdf-url"`
	JATSURL  string   `xml:"jats-url"`
	ImageURL string   `xml:"image-url"`
	Title    string   `xml:"article-title"`
	Date     *rawDate `xml:"date-published"`
}

type rawDate struct {
	Year  string `xml:"year"`
	Month string `xml:"month"`
	Day   string `xml:"day"`
}

// Options control how a raw index is interpreted for one journal.
type Options struct {
	// ISSN is stamped onto every Article.
	ISSN string

	// RequireJATS makes a missing jats-url render the entry incomplete.
	RequireJATS bool

	// SortByDate orders the final list ascending by date. Empty dates
	// sort first (empty string is lexicographically smallest).
	SortByDate bool
}

// Parse converts an XML article index into Article records.
//
// Each <article> entry is decoded on its own: a malformed entry is
// skipped with an alert and the remaining entries still parse. A
// document that does not scan as XML at all yields an empty list and a
// single alert rather than an error, matching the index-level failure
// policy.
func Parse(data []byte, opts Options, logger zerolog.Logger) []types.Article {
	chunks, err := entryChunks(data)
	if err != nil {
		logger.Error().Err(err).Msg("unexpected or badly formed XML returned by server")
		return nil
	}

	var articles []types.Article
	for _, chunk := range chunks {
		dec := xml.NewDecoder(bytes.NewReader(chunk))
		dec.CharsetReader = asIsCharset

		var entry rawEntry
		if err := dec.Decode(&entry); err != nil {
			if doi := clean(entry.DOI); doi != "" {
				logger.Error().Str("doi", doi).Err(err).Msg("error parsing index entry, skipping")
			} else {
				logger.Error().Err(err).Msg("skipping unparseable index entry")
			}
			continue
		}

		a := fromEntry(entry, opts)
		articles = append(articles, a)
		logger.Debug().Str("doi", a.DOI).Str("status", string(a.Status)).Msg("parsed index entry")
	}

	if opts.SortByDate {
		sort.SliceStable(articles, func(i, j int) bool {
			return articles[i].Date < articles[j].Date
		})
	}
	return articles
}

// entryChunks returns the raw bytes of every top-level <article>
// element in the document. The boundary scan runs a lenient decoder
// (missing end tags are invented, unknown entities left alone), so a
// syntax error inside one entry cannot poison the scan and hide its
// siblings; each chunk is decoded strictly on its own afterwards and
// rejected individually. If the lenient scan still breaks mid-stream,
// the entries found before the break are salvaged.
func entryChunks(data []byte) ([][]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.CharsetReader = asIsCharset

	var chunks [][]byte
	start := int64(-1)
	depth := 0
	for {
		offset := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			if len(chunks) > 0 || depth > 0 {
				break
			}
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "article" {
				if depth == 0 {
					start = offset
				}
				depth++
			}
		case xml.EndElement:
			if t.Name.Local == "article" && depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					chunks = append(chunks, data[start:dec.InputOffset()])
					start = -1
				}
			}
		}
	}
	return chunks, nil
}

// asIsCharset accepts any declared charset and reads the bytes as-is;
// the micropublication XML declaration claims ascii encoding.
func asIsCharset(charset string, input io.Reader) (io.Reader, error) {
	return input, nil
}

// fromEntry builds one Article, defaulting absent fields to "" and
// trimming whitespace.
func fromEntry(entry rawEntry, opts Options) types.Article {
	a := types.Article{
		ISSN:  opts.ISSN,
		DOI:   clean(entry.DOI),
		PDF:   clean(entry.PDFURL),
		JATS:  clean(entry.JATSURL),
		Image: clean(entry.ImageURL),
		Title: clean(entry.Title),
	}
	a.Basename = types.BasenameForDOI(a.DOI)

	if entry.Date != nil {
		year := clean(entry.Date.Year)
		month := clean(entry.Date.Month)
		day := clean(entry.Date.Day)
		a.Date = year + "-" + pad2(month) + "-" + pad2(day)
	}

	required := a.DOI != "" && a.Title != "" && a.Date != "" && a.PDF != ""
	if opts.RequireJATS {
		required = required && a.JATS != ""
	}
	if required {
		a.Status = types.StatusComplete
	} else {
		a.Status = types.StatusIncomplete
	}
	return a
}

// clean collapses internal whitespace runs and trims the result, the
// same normalization the journal index needs for multi-line titles.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func pad2(s string) string {
	for len(s) < 2 {
		s = "0" + s
	}
	return s
}

// LooksLikeXML reports whether the first line of a local articles file
// is an XML declaration, distinguishing a saved index document from a
// plain DOI list.
func LooksLikeXML(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return false, scanner.Err()
	}
	return strings.HasPrefix(strings.TrimSpace(scanner.Text()), "<?xml"), nil
}

// ReadDOIs reads a newline-delimited DOI file, trimming each line and
// dropping blanks.
func ReadDOIs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var dois []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			dois = append(dois, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return dois, nil
}

// Subset returns the articles whose DOI appears in dois, preserving
// index order. DOIs with no matching article are logged and skipped;
// a missing article is not fatal to the run.
func Subset(articles []types.Article, dois []string, logger zerolog.Logger) []types.Article {
	byDOI := make(map[string]bool, len(articles))
	for _, a := range articles {
		byDOI[a.DOI] = true
	}
	for _, doi := range dois {
		if !byDOI[doi] {
			logger.Warn().Str("doi", doi).Msg("requested DOI not found in journal index")
		}
	}

	wanted := make(map[string]bool, len(dois))
	for _, doi := range dois {
		wanted[doi] = true
	}
	var subset []types.Article
	for _, a := range articles {
		if wanted[a.DOI] {
			subset = append(subset, a)
		}
	}
	return subset
}

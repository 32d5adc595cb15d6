// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package journals defines the adapter interface over the journals this
// tool can archive, and a fixed registry of the two supported adapters.
package journals

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/pubarchiver/internal/metadata"
	"github.com/pdiddy/pubarchiver/pkg/types"
)

// Info holds the constant attributes of one journal.
type Info struct {
	// Name is the publication name used in file comments and messages.
	Name string

	// ISSN identifies the publication.
	ISSN string

	// DOIPrefix is the registrant prefix of the journal's DOIs.
	DOIPrefix string

	// BaseURLs are the acceptable site prefixes, stripped when
	// displaying short URLs.
	BaseURLs []string

	// ArchiveBasename is the file stem for archives of this journal.
	ArchiveBasename string

	// UsesJATS reports whether the journal provides JATS XML; when true
	// a missing jats-url is a hard per-article failure.
	UsesJATS bool

	// MetadataSource names the registry ("DataCite" or "Crossref"),
	// used to build the missing-<registry> status.
	MetadataSource string

	// FoundingYear feeds the year→volume formula
	// (volume = publicationYear − FoundingYear).
	FoundingYear int

	// IndexURL is the journal's article-list endpoint, when it has one.
	IndexURL string
}

// ShortURL strips the journal's base URL prefixes for display.
func (i Info) ShortURL(url string) string {
	for _, prefix := range i.BaseURLs {
		if strings.HasPrefix(url, prefix) {
			return strings.TrimPrefix(url, prefix)
		}
	}
	return url
}

// MissingMetadataStatus is the terminal status for a failed registry
// lookup against this journal's metadata source.
func (i Info) MissingMetadataStatus() types.Status {
	return types.MissingMetadata(i.MetadataSource)
}

// Adapter is the capability set every journal provides.
type Adapter interface {
	// Info returns the journal's constant attributes.
	Info() Info

	// AllArticles fetches and parses the journal's full current index.
	// A "no content" answer from the server yields an empty list and a
	// logged alert, not an error; other index-level failures are errors
	// and abort the run.
	AllArticles(ctx context.Context) ([]types.Article, error)

	// ArticlesFrom reads a local file — either a saved XML index or a
	// newline-delimited DOI list (sniffed from the first line) — and
	// returns the matching articles. DOIs absent from the index are
	// logged and skipped.
	ArticlesFrom(ctx context.Context, path string) ([]types.Article, error)

	// ArticleMetadata resolves one article's normalized metadata from
	// the journal's registry. An error here is scoped to that article;
	// the pipeline records missing-<registry> and continues.
	ArticleMetadata(ctx context.Context, article types.Article) (metadata.Document, error)

	// RawIndex returns the journal's current index document verbatim,
	// for saving and later replay through ArticlesFrom.
	RawIndex(ctx context.Context) (string, error)
}

// Deps are the collaborators shared by all adapters.
type Deps struct {
	Client    *http.Client
	UserAgent string

	// CrossrefEmail joins the Crossref polite pool when set.
	CrossrefEmail string

	Logger zerolog.Logger
}

// Lookup resolves a registry key ("micropublication", "prompt") to its
// adapter.
func Lookup(key string, deps Deps) (Adapter, error) {
	switch strings.ToLower(key) {
	case "micropublication":
		return NewMicropublication(deps), nil
	case "prompt":
		return NewPrompt(deps), nil
	default:
		return nil, fmt.Errorf("unknown journal %q (known: %s)", key, strings.Join(Known(), ", "))
	}
}

// Known lists the registry keys, sorted.
func Known() []string {
	keys := []string{"micropublication", "prompt"}
	sort.Strings(keys)
	return keys
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package journals

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/pdiddy/pubarchiver/internal/httputil"
	"github.com/pdiddy/pubarchiver/internal/index"
	"github.com/pdiddy/pubarchiver/internal/metadata"
	"github.com/pdiddy/pubarchiver/pkg/types"
)

// MicropublicationIndexURL is the journal's article-list export
// endpoint. A var so tests can substitute an httptest server.
var MicropublicationIndexURL = "https://portal.micropublication.org/api/export/archives.xml"

// Micropublication archives microPublication.org: XML article index,
// DataCite metadata, JATS XML plus one image per article.
type Micropublication struct {
	deps     Deps
	datacite *metadata.DataCite
	logger   zerolog.Logger
}

// NewMicropublication builds the microPublication.org adapter.
func NewMicropublication(deps Deps) *Micropublication {
	return &Micropublication{
		deps: deps,
		datacite: &metadata.DataCite{
			Client:    deps.Client,
			UserAgent: deps.UserAgent,
			Logger:    deps.Logger,
		},
		logger: deps.Logger.With().Str("journal", "micropublication").Logger(),
	}
}

// Info returns the journal constants.
func (m *Micropublication) Info() Info {
	return Info{
		Name:            "microPublication",
		ISSN:            "2578-9430",
		DOIPrefix:       "10.17912",
		BaseURLs:        []string{"https://www.micropublication.org", "https://micropublication.org"},
		ArchiveBasename: "micropublication-org",
		UsesJATS:        true,
		MetadataSource:  "DataCite",
		FoundingYear:    2014,
		IndexURL:        MicropublicationIndexURL,
	}
}

// RawIndex fetches the current article list verbatim.
func (m *Micropublication) RawIndex(ctx context.Context) (string, error) {
	body, err := httputil.Get(ctx, m.deps.Client, MicropublicationIndexURL, m.deps.UserAgent)
	if err != nil {
		return "", fmt.Errorf("fetching article index: %w", err)
	}
	return string(body), nil
}

// AllArticles fetches and parses the full current index, sorted
// ascending by date. A 404/410 from the server means "no content": an
// alert is logged and an empty list returned, which is not fatal.
func (m *Micropublication) AllArticles(ctx context.Context) ([]types.Article, error) {
	body, err := httputil.Get(ctx, m.deps.Client, MicropublicationIndexURL, m.deps.UserAgent)
	if err != nil {
		if httputil.IsNoContent(err) {
			m.logger.Error().Err(err).Msg("server has no article list")
			return nil, nil
		}
		return nil, fmt.Errorf("fetching article index: %w", err)
	}
	return index.Parse(body, m.indexOptions(), m.logger), nil
}

// ArticlesFrom reads a saved XML index or a DOI-list file.
func (m *Micropublication) ArticlesFrom(ctx context.Context, path string) ([]types.Article, error) {
	isXML, err := index.LooksLikeXML(path)
	if err != nil {
		return nil, err
	}
	if isXML {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		return index.Parse(data, m.indexOptions(), m.logger), nil
	}

	dois, err := index.ReadDOIs(path)
	if err != nil {
		return nil, err
	}
	if len(dois) == 0 {
		m.logger.Warn().Str("file", path).Msg("no DOIs found in file")
		return nil, nil
	}
	all, err := m.AllArticles(ctx)
	if err != nil {
		return nil, err
	}
	return index.Subset(all, dois, m.logger), nil
}

// ArticleMetadata resolves the article's DataCite record into the
// normalized output document.
func (m *Micropublication) ArticleMetadata(ctx context.Context, article types.Article) (metadata.Document, error) {
	info := m.Info()
	return m.datacite.Resolve(ctx, article, info.ISSN, info.FoundingYear)
}

func (m *Micropublication) indexOptions() index.Options {
	info := m.Info()
	return index.Options{
		ISSN:        info.ISSN,
		RequireJATS: info.UsesJATS,
		SortByDate:  true,
	}
}

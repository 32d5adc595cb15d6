// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package journals

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pdiddy/pubarchiver/internal/index"
	"github.com/pdiddy/pubarchiver/internal/metadata"
	"github.com/pdiddy/pubarchiver/pkg/types"
)

// Prompt archives the Prompt journal. Prompt has no index endpoint of
// its own, so the article list is the set of Crossref works under the
// journal's DOI prefix, and metadata comes from the same registry.
// Prompt publishes no JATS.
type Prompt struct {
	deps     Deps
	crossref *metadata.Crossref
	logger   zerolog.Logger
}

// NewPrompt builds the Prompt adapter.
func NewPrompt(deps Deps) *Prompt {
	return &Prompt{
		deps: deps,
		crossref: &metadata.Crossref{
			Client:    deps.Client,
			UserAgent: deps.UserAgent,
			Email:     deps.CrossrefEmail,
			Logger:    deps.Logger,
		},
		logger: deps.Logger.With().Str("journal", "prompt").Logger(),
	}
}

// Info returns the journal constants.
func (p *Prompt) Info() Info {
	return Info{
		Name:            "Prompt",
		ISSN:            "2476-0943",
		DOIPrefix:       "10.31719",
		BaseURLs:        []string{"https://thepromptjournal.com", "http://thepromptjournal.com"},
		ArchiveBasename: "prompt",
		UsesJATS:        false,
		MetadataSource:  "Crossref",
		FoundingYear:    2016,
	}
}

// RawIndex renders the journal's Crossref-derived index as JSON, since
// there is no upstream index document to pass through.
func (p *Prompt) RawIndex(ctx context.Context) (string, error) {
	works, err := p.crossref.WorksByPrefix(ctx, p.Info().DOIPrefix)
	if err != nil {
		return "", err
	}
	out, err := json.MarshalIndent(works, "", "  ")
	if err != nil {
		return "", fmt.Errorf("rendering index: %w", err)
	}
	return string(out), nil
}

// AllArticles lists every Crossref work under the journal's DOI prefix.
func (p *Prompt) AllArticles(ctx context.Context) ([]types.Article, error) {
	info := p.Info()
	works, err := p.crossref.WorksByPrefix(ctx, info.DOIPrefix)
	if err != nil {
		return nil, fmt.Errorf("listing %s articles: %w", info.Name, err)
	}
	articles := make([]types.Article, 0, len(works))
	for _, work := range works {
		a := metadata.ArticleFromWork(work, info.ISSN)
		articles = append(articles, a)
		p.logger.Debug().Str("doi", a.DOI).Str("status", string(a.Status)).Msg("indexed work")
	}
	return articles, nil
}

// ArticlesFrom reads a DOI-list file and returns the matching subset of
// the Crossref-derived index. Prompt has no XML index form, so an XML
// file here is an error.
func (p *Prompt) ArticlesFrom(ctx context.Context, path string) ([]types.Article, error) {
	isXML, err := index.LooksLikeXML(path)
	if err != nil {
		return nil, err
	}
	if isXML {
		return nil, fmt.Errorf("%s: Prompt articles files must be DOI lists, not XML", path)
	}

	dois, err := index.ReadDOIs(path)
	if err != nil {
		return nil, err
	}
	if len(dois) == 0 {
		p.logger.Warn().Str("file", path).Msg("no DOIs found in file")
		return nil, nil
	}
	all, err := p.AllArticles(ctx)
	if err != nil {
		return nil, err
	}
	return index.Subset(all, dois, p.logger), nil
}

// ArticleMetadata builds the normalized document from the article's
// Crossref works record.
func (p *Prompt) ArticleMetadata(ctx context.Context, article types.Article) (metadata.Document, error) {
	info := p.Info()
	return p.crossref.Resolve(ctx, article, info.ISSN, info.FoundingYear)
}

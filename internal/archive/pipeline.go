// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive drives the per-article archiving pipeline: validate
// required fields, resolve registry metadata, acquire assets, and write
// the destination layout, tracking a terminal status per article.
package archive

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubarchiver/internal/journals"
	"github.com/pdiddy/pubarchiver/pkg/types"
)

// Pipeline archives a list of articles for one journal. Articles are
// processed strictly one at a time in list order; the only state shared
// across articles is the failure tally.
type Pipeline struct {
	adapter journals.Adapter
	client  *http.Client
	cfg     types.ArchiveConfig
	logger  zerolog.Logger

	failures int
}

// NewPipeline builds a pipeline for one run.
func NewPipeline(adapter journals.Adapter, client *http.Client, cfg types.ArchiveConfig, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		adapter: adapter,
		client:  client,
		cfg:     cfg,
		logger:  logger,
	}
}

// Failures returns the number of articles whose terminal status is a
// failed-* value. Articles skipped with a missing-* status are not
// counted: they reflect gaps in the source data, not broken downloads.
func (p *Pipeline) Failures() int {
	return p.failures
}

// Dest is the archive tree root: the configured destination directory
// plus the journal's archive basename.
func (p *Pipeline) Dest() string {
	return filepath.Join(p.cfg.DestDir, p.adapter.Info().ArchiveBasename)
}

// Run archives every article, mutating each element's Status in place,
// and returns the final failure tally. Per-article problems never stop
// the run; only filesystem-level failures creating the destination or
// bundling the final archive are returned as errors.
func (p *Pipeline) Run(ctx context.Context, articles []types.Article) error {
	info := p.adapter.Info()
	dest := p.Dest()
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("creating destination %s: %w", dest, err)
	}

	for i := range articles {
		article := &articles[i]

		// Fixed-order guards: each short-circuits to a terminal
		// missing-* status and skips every later step for the article.
		switch {
		case article.DOI == "":
			p.logger.Warn().Str("title", article.Title).Msg("skipping article with missing DOI")
			article.Status = types.StatusMissingDOI
			continue
		case article.PDF == "":
			p.logger.Warn().Str("doi", article.DOI).Msg("skipping article with missing PDF URL")
			article.Status = types.StatusMissingPDF
			continue
		case info.UsesJATS && article.JATS == "":
			p.logger.Warn().Str("doi", article.DOI).Msg("skipping article with missing JATS URL")
			article.Status = types.StatusMissingJATS
			continue
		}

		doc, err := p.adapter.ArticleMetadata(ctx, *article)
		if err != nil {
			p.logger.Warn().Str("doi", article.DOI).Err(err).
				Msgf("skipping article with missing %s entry", info.MetadataSource)
			article.Status = info.MissingMetadataStatus()
			continue
		}

		p.logger.Info().Str("doi", article.DOI).Msg("writing article")
		if p.cfg.Structure == types.StructurePMC {
			p.saveArticlePMC(ctx, dest, article, doc)
		} else {
			p.saveArticlePortico(ctx, dest, article, doc)
		}
	}

	if p.cfg.Zip && p.cfg.Structure != types.StructurePMC {
		zipFile := dest + ".zip"
		p.logger.Info().Str("file", zipFile).Msg("creating ZIP archive")
		comment := zipComment(info.Name, len(articles))
		if err := ArchiveDirectory(zipFile, dest, comment); err != nil {
			return fmt.Errorf("bundling archive: %w", err)
		}
		if err := VerifyArchive(zipFile); err != nil {
			return err
		}
		if err := os.RemoveAll(dest); err != nil {
			return fmt.Errorf("removing bundled tree %s: %w", dest, err)
		}
	}

	if p.cfg.Manifest {
		if err := p.writeManifest(dest+"-manifest.yaml", articles); err != nil {
			return err
		}
	}

	for _, a := range articles {
		if a.Status.Failed() {
			p.failures++
		}
	}
	return nil
}

// writeManifest records the final article records as YAML beside the
// archive.
func (p *Pipeline) writeManifest(path string, articles []types.Article) error {
	data, err := yaml.Marshal(articles)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// pmcBasename is the flat PMC delivery stem: ISSN without the dash,
// publication year, and the DOI tail.
func pmcBasename(article *types.Article, issn string) string {
	year := "0000"
	if len(article.Date) >= 4 {
		year = article.Date[:4]
	}
	return strings.ReplaceAll(issn, "-", "") + "-" + year + "-" + article.Basename
}

// zipComment is the human-readable block stored in the archive's ZIP
// comment field.
func zipComment(journal string, count int) string {
	verb, plural := "are", "s"
	if count == 1 {
		verb, plural = "is", ""
	}
	sep := strings.Repeat("~ ", 35)
	return fmt.Sprintf(`%s
About this ZIP archive file:

This archive contains a directory of articles from %s
created on %s. There %s %d article%s in this archive.

The software used to create this archive file was pubarchiver
version %s <https://github.com/pdiddy/pubarchiver>
%s
`, sep, journal, time.Now().Format("2006-01-02"), verb, count, plural, Version, sep)
}

// Version is stamped by the build; the ZIP comment records it.
var Version = "dev"

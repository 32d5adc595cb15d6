// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"path/filepath"

	"github.com/pdiddy/pubarchiver/internal/httputil"
	"github.com/pdiddy/pubarchiver/internal/metadata"
	"github.com/pdiddy/pubarchiver/pkg/types"
)

// saveArticlePMC writes one article into the flat PMC delivery layout:
// <ISSN-no-dash>-<year>-<basename>.{pdf,xml,tif} directly under dest,
// then bundles the article's files into its own ZIP named the same way.
// The per-article ZIP is skipped when the article ended in a failed-*
// status; the loose files are left for inspection.
func (p *Pipeline) saveArticlePMC(ctx context.Context, dest string, article *types.Article, doc metadata.Document) {
	info := p.adapter.Info()
	stem := pmcBasename(article, info.ISSN)
	var toArchive []string

	pdfFile := filepath.Join(dest, stem+".pdf")
	if err := httputil.DownloadFile(ctx, p.client, article.PDF, pdfFile, p.cfg.UserAgent); err != nil {
		p.logger.Warn().Str("doi", article.DOI).Err(err).Msg("could not download PDF file")
		article.Status = types.StatusFailedPDFDownload
	} else {
		toArchive = append(toArchive, pdfFile)
	}

	xmlFile := filepath.Join(dest, stem+".xml")
	if info.UsesJATS {
		p.acquireJATS(ctx, article, xmlFile)
		if article.Status != types.StatusFailedJATSDownload {
			toArchive = append(toArchive, xmlFile)
		}
	} else {
		// Journals without JATS deliver the normalized metadata
		// document in the .xml slot.
		p.writeMetadataXML(xmlFile, article, doc)
		toArchive = append(toArchive, xmlFile)
	}

	if article.Image != "" {
		jatsFile := ""
		if info.UsesJATS {
			jatsFile = xmlFile
		}
		p.acquireImage(ctx, article, jatsFile, dest)
		if tif := tiffIn(dest, article, jatsFile); tif != "" {
			toArchive = append(toArchive, tif)
		}
	}

	if !p.cfg.Zip {
		return
	}
	if article.Status.Failed() {
		p.logger.Warn().Str("doi", article.DOI).Msg("ZIP archive not created due to errors")
		return
	}

	zipFile := filepath.Join(dest, stem+".zip")
	p.logger.Info().Str("file", zipFile).Msg("creating ZIP archive")
	if err := ArchiveFiles(zipFile, toArchive, zipComment(info.Name, 1)); err != nil {
		p.logger.Warn().Str("doi", article.DOI).Err(err).Msg("could not create article ZIP")
		return
	}
	if err := VerifyArchive(zipFile); err != nil {
		p.logger.Warn().Str("doi", article.DOI).Err(err).Msg("article ZIP failed verification")
		return
	}
	removeAll(toArchive, p.logger)
}

// tiffIn locates the converted TIFF for an article, if the image chain
// produced one.
func tiffIn(dir string, article *types.Article, jatsFile string) string {
	name := article.Basename
	if jatsFile != "" {
		if href, err := GraphicHref(jatsFile); err == nil && href != "" {
			name = href
		}
	}
	path := filepath.Join(dir, name+".tif")
	if fileExists(path) {
		return path
	}
	return ""
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/pubarchiver/internal/httputil"
	"github.com/pdiddy/pubarchiver/internal/metadata"
	"github.com/pdiddy/pubarchiver/pkg/types"
)

// saveArticlePortico writes one article into the Portico layout:
//
//	<dest>/<basename>/<basename>.xml   normalized metadata
//	<dest>/<basename>/<basename>.pdf
//	<dest>/<basename>/jats/<basename>.xml
//	<dest>/<basename>/jats/<image>.tif
//
// Asset acquisition is best effort: a failed step overwrites the status
// but later steps still run, so the final status reflects the last
// failure encountered.
func (p *Pipeline) saveArticlePortico(ctx context.Context, dest string, article *types.Article, doc metadata.Document) {
	articleDir := filepath.Join(dest, article.Basename)
	jatsDir := filepath.Join(articleDir, "jats")
	if err := os.MkdirAll(jatsDir, 0o755); err != nil {
		p.logger.Error().Str("doi", article.DOI).Err(err).Msg("cannot create article directory")
		article.Status = types.StatusFailedPDFDownload
		return
	}

	p.writeMetadataXML(filepath.Join(articleDir, article.Basename+".xml"), article, doc)

	pdfFile := filepath.Join(articleDir, article.Basename+".pdf")
	if err := httputil.DownloadFile(ctx, p.client, article.PDF, pdfFile, p.cfg.UserAgent); err != nil {
		p.logger.Warn().Str("doi", article.DOI).Err(err).Msg("could not download PDF file")
		article.Status = types.StatusFailedPDFDownload
	}

	var jatsFile string
	if p.adapter.Info().UsesJATS {
		jatsFile = filepath.Join(jatsDir, article.Basename+".xml")
		p.acquireJATS(ctx, article, jatsFile)
	}

	if article.Image != "" {
		p.acquireImage(ctx, article, jatsFile, jatsDir)
	}
}

// writeMetadataXML serializes the normalized document. A serialization
// problem is logged but does not change the article's status; the
// document already resolved successfully.
func (p *Pipeline) writeMetadataXML(path string, article *types.Article, doc metadata.Document) {
	data, err := doc.XML()
	if err != nil {
		p.logger.Error().Str("doi", article.DOI).Err(err).Msg("cannot serialize metadata document")
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		p.logger.Error().Str("doi", article.DOI).Err(err).Msg("cannot write metadata file")
	}
}

// acquireJATS downloads the JATS XML and optionally checks it.
func (p *Pipeline) acquireJATS(ctx context.Context, article *types.Article, jatsFile string) {
	if err := httputil.DownloadFile(ctx, p.client, article.JATS, jatsFile, p.cfg.UserAgent); err != nil {
		p.logger.Warn().Str("doi", article.DOI).Err(err).Msg("could not download JATS file")
		article.Status = types.StatusFailedJATSDownload
		return
	}
	if !p.cfg.ValidateJATS {
		p.logger.Debug().Str("doi", article.DOI).Msg("skipping JATS validation")
		return
	}
	if err := ValidateJATS(jatsFile); err != nil {
		p.logger.Warn().Str("doi", article.DOI).Err(err).Msg("failed to validate JATS")
		article.Status = types.StatusFailedJATSValidation
	}
}

// acquireImage downloads the article's image, converts it to archival
// TIFF with a descriptive comment, and removes the compressed original.
// The image is stored under the name the JATS file references in its
// <graphic> element; without a usable JATS file the DOI tail is used.
// Any failure in the chain sets failed-image-download.
func (p *Pipeline) acquireImage(ctx context.Context, article *types.Article, jatsFile, imageDir string) {
	name := article.Basename
	if jatsFile != "" {
		href, err := GraphicHref(jatsFile)
		if err != nil {
			p.logger.Warn().Str("doi", article.DOI).Err(err).Msg("cannot determine image name from JATS")
			article.Status = types.StatusFailedImageDownload
			return
		}
		if href != "" {
			name = href
		}
	}

	ext := filepath.Ext(article.Image)
	if ext == "" {
		ext = ".png"
	}
	imageFile := filepath.Join(imageDir, name+ext)
	if err := httputil.DownloadFile(ctx, p.client, article.Image, imageFile, p.cfg.UserAgent); err != nil {
		p.logger.Warn().Str("doi", article.DOI).Err(err).Msg("failed to download image")
		article.Status = types.StatusFailedImageDownload
		return
	}

	tiffFile := strings.TrimSuffix(imageFile, ext) + ".tif"
	if err := ConvertToTIFF(imageFile, tiffFile, tiffComment(article, p.adapter.Info().Name)); err != nil {
		p.logger.Warn().Str("doi", article.DOI).Err(err).Msg("failed to convert image")
		article.Status = types.StatusFailedImageDownload
		return
	}

	// Keep only the uncompressed TIFF version.
	if err := os.Remove(imageFile); err != nil {
		p.logger.Warn().Str("file", imageFile).Err(err).Msg("could not delete original image")
	}
}

// tiffComment is the descriptive text embedded in the converted image.
func tiffComment(article *types.Article, journal string) string {
	return "Image converted from " + article.Image +
		" on " + time.Now().Format("2006-01-02") +
		" for article titled \"" + article.Title +
		"\", DOI " + article.DOI +
		", originally published on " + article.Date +
		" in " + journal + "."
}

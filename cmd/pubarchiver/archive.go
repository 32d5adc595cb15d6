// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubarchiver/internal/archive"
	"github.com/pdiddy/pubarchiver/internal/httputil"
	"github.com/pdiddy/pubarchiver/internal/inventory"
	"github.com/pdiddy/pubarchiver/internal/report"
	"github.com/pdiddy/pubarchiver/pkg/types"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Download and package the journal's articles",
	Long: `Archive fetches the journal's article list (or reads it from a local file
given with --articles: either a saved XML index or a newline-delimited list
of DOIs), resolves each article's registry metadata, downloads the article
assets, and writes the Portico or PMC delivery layout, optionally bundled
into ZIP archives.

Articles that cannot be fully archived are recorded with a specific status
and do not stop the run. The exit code is 100 plus the number of articles
with download or validation failures.`,
	RunE: runArchive,
}

func init() {
	archiveCmd.Flags().StringP("articles", "a", "", "read the article list from a file instead of the network")
	archiveCmd.Flags().StringP("after-date", "d", "", "only archive articles published after this date")
	archiveCmd.Flags().StringP("output-dir", "o", ".", "write the archive under this directory")
	archiveCmd.Flags().StringP("structure", "s", "portico", "output structure: portico or pmc")
	archiveCmd.Flags().StringP("report-file", "r", "", "write a report of the results to this file")
	archiveCmd.Flags().StringP("report-format", "f", "csv", "report format: csv, html, or both comma-separated")
	archiveCmd.Flags().StringP("report-title", "t", "", "title to put into the report")
	archiveCmd.Flags().BoolP("no-zip", "Z", false, "do not zip up the output")
	archiveCmd.Flags().BoolP("no-validate", "X", false, "do not check downloaded JATS XML files")
	archiveCmd.Flags().Bool("manifest", false, "write a YAML manifest of the run beside the archive")

	rootCmd.AddCommand(archiveCmd)
}

func runArchive(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)
	adapter, client, err := newAdapter(cmd, logger)
	if err != nil {
		return err
	}
	info := adapter.Info()

	if !httputil.NetworkAvailable() {
		logger.Error().Msg("no network")
		return &exitError{code: ExitNoNetwork, msg: "no network"}
	}

	articlesFile, _ := cmd.Flags().GetString("articles")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	structure, _ := cmd.Flags().GetString("structure")
	noZip, _ := cmd.Flags().GetBool("no-zip")
	noValidate, _ := cmd.Flags().GetBool("no-validate")
	manifest, _ := cmd.Flags().GetBool("manifest")
	afterDate, _ := cmd.Flags().GetString("after-date")

	ctx := cmd.Context()
	started := time.Now()

	source := "the journal's server"
	if articlesFile != "" {
		source = articlesFile
	}
	logger.Info().Msgf("Reading article list from %s", source)

	var articles []types.Article
	if articlesFile != "" {
		articles, err = adapter.ArticlesFrom(ctx, articlesFile)
	} else {
		articles, err = adapter.AllArticles(ctx)
	}
	if err != nil {
		return fmt.Errorf("reading article list: %w", err)
	}

	if afterDate != "" {
		after, err := dateparse.ParseAny(afterDate)
		if err != nil {
			return fmt.Errorf("unable to parse date %q: %w", afterDate, err)
		}
		logger.Info().Msgf("Will only keep articles published after %s", after.Format("2006-01-02"))
		articles = publishedAfter(articles, after)
	}

	logger.Info().Msgf("Total articles: %d", len(articles))

	cfg := types.ArchiveConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("http.timeout"),
			UserAgent: viper.GetString("http.user_agent"),
		},
		DestDir:      outputDir,
		Structure:    types.Structure(structure),
		Zip:          !noZip,
		ValidateJATS: info.UsesJATS && !noValidate,
		Manifest:     manifest,
	}

	pipeline := archive.NewPipeline(adapter, client, cfg, logger)
	if len(articles) > 0 {
		logger.Info().Msgf("Output will be written under directory %q", pipeline.Dest())
		if err := pipeline.Run(ctx, articles); err != nil {
			return err
		}
	}

	if reportFile, _ := cmd.Flags().GetString("report-file"); reportFile != "" {
		logger.Info().Msg("Writing report")
		formats, _ := cmd.Flags().GetString("report-format")
		title, _ := cmd.Flags().GetString("report-title")
		err := report.Write(types.ReportConfig{
			File:    reportFile,
			Formats: formats,
			Title:   title,
		}, articles)
		if err != nil {
			return err
		}
	}

	if dbPath := viper.GetString("inventory.path"); dbPath != "" {
		if err := recordRun(dbPath, info.Name, started, articles, pipeline.Failures()); err != nil {
			logger.Warn().Err(err).Msg("could not record run in inventory")
		}
	}

	logger.Info().Msg("Done.")
	if failures := pipeline.Failures(); failures > 0 {
		return &exitError{
			code: ExitFailuresBase + failures,
			msg:  fmt.Sprintf("%d article(s) had failures", failures),
		}
	}
	return nil
}

// publishedAfter keeps the articles whose publication date parses and
// falls strictly after the cutoff.
func publishedAfter(articles []types.Article, after time.Time) []types.Article {
	var kept []types.Article
	for _, a := range articles {
		published, err := time.Parse("2006-01-02", a.Date)
		if err != nil {
			continue
		}
		if published.After(after) {
			kept = append(kept, a)
		}
	}
	return kept
}

func recordRun(dbPath, journal string, started time.Time, articles []types.Article, failures int) error {
	store, err := inventory.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()
	_, err = store.RecordRun(journal, started, articles, failures)
	return err
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubarchiver/pkg/types"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Preview the journal's article list without archiving",
	Long: `List fetches the journal's current article index and prints one line per
article with its parse status, DOI, date and short URL. With --xml the raw
index document is printed verbatim instead, which is useful as a starting
point for the archive command's --articles file.

Because list does not download articles or assets, it cannot predict
download failures; a clean listing is not a guarantee of a clean run.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolP("xml", "g", false, "print the raw article index from the server")
	listCmd.Flags().StringP("articles", "a", "", "read the article list from a file instead of the network")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)
	adapter, _, err := newAdapter(cmd, logger)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if raw, _ := cmd.Flags().GetBool("xml"); raw {
		index, err := adapter.RawIndex(ctx)
		if err != nil {
			return fmt.Errorf("fetching article index: %w", err)
		}
		fmt.Print(index)
		return nil
	}

	articlesFile, _ := cmd.Flags().GetString("articles")
	var articles []types.Article
	if articlesFile != "" {
		articles, err = adapter.ArticlesFrom(ctx, articlesFile)
	} else {
		articles, err = adapter.AllArticles(ctx)
	}
	if err != nil {
		return fmt.Errorf("reading article list: %w", err)
	}

	info := adapter.Info()
	rule := strings.Repeat("-", 89)
	fmt.Println(rule)
	fmt.Printf("%-3s  %-32s  %-10s  %s\n", "?", "DOI", "Date", "URL")
	fmt.Println(rule)
	for _, a := range articles {
		mark := "OK"
		if a.Status == types.StatusIncomplete {
			mark = "err"
		}
		fmt.Printf("%-3s  %-32s  %-10s  %s\n",
			mark,
			orDefault(a.DOI, "missing DOI"),
			orDefault(a.Date, "missing date"),
			orDefault(info.ShortURL(a.PDF), "missing URL"))
	}
	fmt.Println(rule)
	fmt.Printf("Total articles: %d\n", len(articles))
	return nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubarchiver/internal/inventory"
)

var historyCmd = &cobra.Command{
	Use:   "history [doi]",
	Short: "Show past archiving runs from the inventory database",
	Long: `History lists recent archiving runs recorded in the inventory database
(config key inventory.path). With a DOI argument it shows every recorded
status for that one article instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "number of runs to show")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	dbPath := viper.GetString("inventory.path")
	if dbPath == "" {
		return fmt.Errorf("no inventory database configured; set inventory.path in the config file")
	}

	store, err := inventory.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) == 1 {
		records, err := store.ArticleHistory(args[0])
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Printf("No recorded runs include %s\n", args[0])
			return nil
		}
		for _, a := range records {
			fmt.Printf("%-24s  %-10s  %s\n", a.Status, a.Date, a.Title)
		}
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.RecentRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet")
		return nil
	}
	fmt.Printf("%-5s  %-20s  %-20s  %8s  %8s\n", "run", "journal", "started", "articles", "failures")
	for _, r := range runs {
		fmt.Printf("%-5d  %-20s  %-20s  %8d  %8d\n",
			r.ID, r.Journal, r.Started.Format("2006-01-02 15:04"), r.Total, r.Failures)
	}
	return nil
}

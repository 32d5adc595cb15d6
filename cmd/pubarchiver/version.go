// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubarchiver/internal/archive"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of pubarchiver",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pubarchiver %s\n", version)
	},
}

func init() {
	// The archive package stamps this version into ZIP comments.
	archive.Version = version
	rootCmd.AddCommand(versionCmd)
}

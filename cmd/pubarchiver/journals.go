// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubarchiver/internal/journals"
)

var journalsCmd = &cobra.Command{
	Use:   "journals",
	Short: "List the supported journals and their settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		for _, key := range journals.Known() {
			adapter, err := journals.Lookup(key, journals.Deps{
				Client: http.DefaultClient,
				Logger: logger,
			})
			if err != nil {
				return err
			}
			info := adapter.Info()
			jats := "no"
			if info.UsesJATS {
				jats = "yes"
			}
			fmt.Printf("%s\n", key)
			fmt.Printf("  name:      %s\n", info.Name)
			fmt.Printf("  issn:      %s\n", info.ISSN)
			fmt.Printf("  doi:       %s\n", info.DOIPrefix)
			fmt.Printf("  metadata:  %s\n", info.MetadataSource)
			fmt.Printf("  jats:      %s\n", jats)
			fmt.Printf("  site:      %s\n", strings.Join(info.BaseURLs, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(journalsCmd)
}

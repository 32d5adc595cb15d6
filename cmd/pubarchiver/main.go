// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pubarchiver CLI, which
// archives journal publications into Portico- or PMC-ready packages.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubarchiver/internal/journals"
	"github.com/pdiddy/pubarchiver/internal/logging"
	"github.com/pdiddy/pubarchiver/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "pubarchiver/1.0"
)

// loadedSecrets holds optional credentials loaded from .secrets/ at
// startup (crossref-email).
var loadedSecrets map[string]string

// rootCmd is the base command for the pubarchiver CLI.
var rootCmd = &cobra.Command{
	Use:   "pubarchiver",
	Short: "Archive journal publications for Portico and PMC",
	Long: `pubarchiver creates archives of journal articles for sending to preservation
services such as Portico and PMC. It fetches a journal's article index,
resolves each article's bibliographic metadata from DataCite or Crossref,
downloads the PDF/JATS/image assets, and lays the result out per the
destination's delivery conventions.

Supported journals: micropublication, prompt.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pubarchiver.yaml or ~/.config/pubarchiver/config.yaml)")
	rootCmd.PersistentFlags().StringP("journal", "j", "", "journal to archive (micropublication or prompt)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only print important diagnostic messages")
	rootCmd.PersistentFlags().Bool("debug", false, "print a detailed log of what is being done")
	rootCmd.PersistentFlags().BoolP("no-color", "C", false, "do not color-code terminal output")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pubarchiver")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pubarchiver"))
		}
	}

	viper.SetDefault("http.timeout", defaultTimeout)
	viper.SetDefault("http.user_agent", defaultUserAgent)

	viper.SetEnvPrefix("PUBARCHIVER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the run's logger from the persistent flags.
func newLogger(cmd *cobra.Command) zerolog.Logger {
	quiet, _ := cmd.Flags().GetBool("quiet")
	debug, _ := cmd.Flags().GetBool("debug")
	noColor, _ := cmd.Flags().GetBool("no-color")
	return logging.New(os.Stderr, logging.Options{
		Quiet:   quiet,
		Debug:   debug,
		NoColor: noColor,
	})
}

// newAdapter resolves the --journal flag (or config key) to an adapter
// sharing one HTTP client and logger.
func newAdapter(cmd *cobra.Command, logger zerolog.Logger) (journals.Adapter, *http.Client, error) {
	key, _ := cmd.Flags().GetString("journal")
	if key == "" {
		key = viper.GetString("journal")
	}
	if key == "" {
		return nil, nil, fmt.Errorf("no journal selected; use --journal (known: micropublication, prompt)")
	}

	client := &http.Client{Timeout: viper.GetDuration("http.timeout")}
	adapter, err := journals.Lookup(key, journals.Deps{
		Client:        client,
		UserAgent:     viper.GetString("http.user_agent"),
		CrossrefEmail: loadedSecrets["crossref-email"],
		Logger:        logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return adapter, client, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		os.Exit(ExitSuccess)
	}

	var ee *exitError
	switch {
	case errors.As(err, &ee):
		os.Exit(ee.code)
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "Quitting")
		os.Exit(ExitInterrupted)
	default:
		os.Exit(ExitFatal)
	}
}

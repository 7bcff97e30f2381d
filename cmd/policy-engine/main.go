// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the policy-engine CLI. Each
// subcommand builds the index from the configured artifacts and runs one
// engine operation: index, clause, policy, catalog, search, or serves them
// over HTTP (serve) or MCP on stdio (mcp).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/policy-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// rootCmd is the base command for the policy-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "policy-engine",
	Short: "Clause lookup and full-text search over Chinese regulatory documents",
	Long: `policy-engine indexes extracted regulatory documents and answers
citation lookups such as 《中华人民共和国反洗钱法》第三条第二款, title lookups
with abbreviated or misspelled titles, and ranked full-text search with
metadata filters.

Artifacts are read from a directory of YAML/JSON files (corpus.dir) or
from the extractor's SQLite database (corpus.sqlite).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", s.Keys())
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./policy-engine.yaml or ~/.config/policy-engine/config.yaml)")
	pf.String("corpus-dir", "", "directory of artifact YAML/JSON files")
	pf.String("sqlite", "", "extractor SQLite database (overrides --corpus-dir)")
	pf.String("whitelist", "", "curated policy list for the default catalog scope")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.Bool("log-pretty", false, "human-readable console logs")

	viper.BindPFlag("corpus.dir", pf.Lookup("corpus-dir"))
	viper.BindPFlag("corpus.sqlite", pf.Lookup("sqlite"))
	viper.BindPFlag("corpus.whitelist", pf.Lookup("whitelist"))
	viper.BindPFlag("log.level", pf.Lookup("log-level"))
	viper.BindPFlag("log.pretty", pf.Lookup("log-pretty"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("policy-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "policy-engine"))
		}
	}

	setDefaults()
	viper.SetEnvPrefix("POLICY_ENGINE")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

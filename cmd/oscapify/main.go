// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the oscapify CLI, which converts
// scientific-literature CSV files to the OSCAP record format with DOI
// enrichment from the NCBI ID Converter.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tmsincomb/oscapify/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when non-empty, otherwise the secret
// value for key if one was loaded.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the oscapify CLI.
var rootCmd = &cobra.Command{
	Use:   "oscapify",
	Short: "Convert scientific-literature CSV files to OSCAP format",
	Long: `oscapify converts scientific-literature CSV files into the normalized
OSCAP record format, enriching each row with a DOI looked up from the NCBI
ID Converter by PMID or PMCID. Lookups are rate limited and cached on disk
so repeated runs over overlapping datasets avoid redundant network calls.`,
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

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./oscapify.yaml or ~/.config/oscapify/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("oscapify")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "oscapify"))
		}
	}

	viper.SetEnvPrefix("OSCAPIFY")
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

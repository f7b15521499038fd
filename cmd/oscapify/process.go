// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tmsincomb/oscapify/internal/cache"
	"github.com/tmsincomb/oscapify/internal/ncbi"
	"github.com/tmsincomb/oscapify/internal/process"
	"github.com/tmsincomb/oscapify/pkg/types"
)

const (
	defaultSuffix    = "-oscapify"
	defaultBatchName = "oscapify_batch"
	defaultUserAgent = "oscapify/0.1"
)

var processCmd = &cobra.Command{
	Use:   "process [paths...]",
	Short: "Convert CSV files or directories to OSCAP format",
	Long: `Process reads each input CSV (directories contribute their immediate
.csv children), reconciles headers, cleans identifiers, enriches rows with
DOIs, and writes one output file per input. A failing file is recorded and
skipped; the command exits non-zero if any file failed.

Every flag can also be set in the config file under the same key
(e.g. "suffix", "batch-name", "strict"); a flag given on the command line
overrides the config file.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return viper.BindPFlags(cmd.Flags())
	},
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringP("output", "o", "", "output directory (default: oscapify_output_YYYYMMDD_HHMMSS)")
	processCmd.Flags().StringP("suffix", "s", defaultSuffix, "suffix for output files")
	processCmd.Flags().StringP("batch-name", "b", defaultBatchName, "batch name written to every output row")
	processCmd.Flags().Bool("no-cache", false, "disable DOI lookup caching")
	processCmd.Flags().Bool("no-validation", false, "skip header validation")
	processCmd.Flags().Bool("strict", false, "fail a file on unresolved headers or identifier-missing rows")
	processCmd.Flags().Bool("debug", false, "verbose diagnostics and fail-fast on unexpected row errors")
	processCmd.Flags().String("header-pmid", "pmid", "column name for the PubMed ID")
	processCmd.Flags().String("header-sentence", "sentence", "column name for the sentence text")
	processCmd.Flags().StringArray("preserve-fields", nil, "extra input columns to carry through (repeatable)")
	processCmd.Flags().String("api-key", "", "NCBI API key for elevated rate limits")
	processCmd.Flags().Duration("timeout", ncbi.DefaultTimeout, "HTTP request timeout")
	processCmd.Flags().String("cache-dir", "", "cache directory (default: user cache dir)")

	rootCmd.AddCommand(processCmd)
}

// buildProcessConfig resolves the run configuration. Callers must have
// bound the command's flags into viper first, so each key resolves to the
// flag when set on the command line and the config file value otherwise.
func buildProcessConfig() types.ProcessingConfig {
	headers := types.DefaultHeaderMapping()
	headers.PMID = viper.GetString("header-pmid")
	headers.Sentence = viper.GetString("header-sentence")
	if preserveFields := viper.GetStringSlice("preserve-fields"); len(preserveFields) > 0 {
		headers.PreserveFields = preserveFields
	}

	return types.ProcessingConfig{
		Suffix:          viper.GetString("suffix"),
		OutputDir:       viper.GetString("output"),
		BatchName:       viper.GetString("batch-name"),
		ValidateHeaders: !viper.GetBool("no-validation"),
		CacheLookups:    !viper.GetBool("no-cache"),
		Strict:          viper.GetBool("strict"),
		Debug:           viper.GetBool("debug"),
		Headers:         headers,
		Lookup: types.LookupConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("timeout"),
				UserAgent: defaultUserAgent,
			},
			Tool:   ncbi.DefaultTool,
			APIKey: secretDefault("ncbi-api-key", viper.GetString("api-key")),
		},
	}
}

func runProcess(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more CSV files or directories")
	}

	cfg := buildProcessConfig()

	var lookupCache *cache.Cache
	if cfg.CacheLookups {
		dir, err := cacheDir()
		if err != nil {
			return err
		}
		lookupCache, err = cache.Open(dir)
		if err != nil {
			return err
		}
	}

	client := ncbi.NewClient(
		ncbi.WithHTTPClient(&http.Client{Timeout: cfg.Lookup.Timeout}),
		ncbi.WithUserAgent(cfg.Lookup.UserAgent),
		ncbi.WithTool(cfg.Lookup.Tool),
		ncbi.WithAPIKey(cfg.Lookup.APIKey),
	)

	processor := process.New(cfg, client, lookupCache, os.Stdout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	start := time.Now()
	stats, err := processor.ProcessFiles(ctx, args)
	if err != nil {
		return err
	}
	if stats.HasFailures() {
		return fmt.Errorf("%d file(s) failed processing after %s",
			stats.FailedFiles, time.Since(start).Round(time.Second))
	}
	return nil
}

// cacheDir resolves the cache directory from the bound cache-dir key
// (flag over config file), falling back to the user cache directory.
func cacheDir() (string, error) {
	if dir := viper.GetString("cache-dir"); dir != "" {
		return dir, nil
	}
	return cache.DefaultDir()
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestProcessConfigFlagOverridesConfigFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfgPath := filepath.Join(t.TempDir(), "oscapify.yaml")
	conf := "suffix: \"-fromconf\"\nbatch-name: conf_batch\nstrict: true\ntimeout: 5s\n"
	if err := os.WriteFile(cfgPath, []byte(conf), 0o644); err != nil {
		t.Fatal(err)
	}
	viper.SetConfigFile(cfgPath)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("reading config: %v", err)
	}

	// A flag given on the command line must beat the config file.
	if err := processCmd.Flags().Set("batch-name", "flag_batch"); err != nil {
		t.Fatal(err)
	}
	if err := viper.BindPFlags(processCmd.Flags()); err != nil {
		t.Fatalf("binding flags: %v", err)
	}

	cfg := buildProcessConfig()

	if cfg.Suffix != "-fromconf" {
		t.Errorf("Suffix = %q, want the config file to beat the flag default", cfg.Suffix)
	}
	if cfg.BatchName != "flag_batch" {
		t.Errorf("BatchName = %q, want the set flag to beat the config file", cfg.BatchName)
	}
	if !cfg.Strict {
		t.Error("Strict = false, want config file value")
	}
	if cfg.Lookup.Timeout != 5*time.Second {
		t.Errorf("Timeout = %s, want config file value", cfg.Lookup.Timeout)
	}
	// Keys absent from config and command line keep their flag defaults.
	if cfg.Headers.PMID != "pmid" || cfg.Headers.Sentence != "sentence" {
		t.Errorf("header mapping = %q/%q, want flag defaults", cfg.Headers.PMID, cfg.Headers.Sentence)
	}
	if !cfg.ValidateHeaders || !cfg.CacheLookups {
		t.Error("validation and caching must default on")
	}
}

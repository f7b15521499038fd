// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package process orchestrates the CSV-to-OSCAP conversion: header
// reconciliation, data cleaning, per-row DOI enrichment through the
// lookup cache, and reshaping into the fixed output schema. Files are
// processed one at a time; a failing file is recorded and never aborts
// its siblings.
package process

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/tmsincomb/oscapify/internal/cache"
	"github.com/tmsincomb/oscapify/internal/clean"
	"github.com/tmsincomb/oscapify/internal/header"
	"github.com/tmsincomb/oscapify/internal/ncbi"
	"github.com/tmsincomb/oscapify/internal/table"
	"github.com/tmsincomb/oscapify/pkg/types"
)

// LookupClient resolves one PMID or PMCID to a DOI record. *ncbi.Client
// implements it; tests substitute stubs.
type LookupClient interface {
	ConvertID(ctx context.Context, identifier string) (*types.DOIResult, error)
}

// Processor converts input tables to the OSCAP format. The cache handle
// is injected; nil disables caching.
type Processor struct {
	cfg       types.ProcessingConfig
	client    LookupClient
	cache     *cache.Cache
	validator *header.Validator
	log       io.Writer
}

// New creates a Processor. w receives per-file status lines and the run
// summary.
func New(cfg types.ProcessingConfig, client LookupClient, c *cache.Cache, w io.Writer) *Processor {
	if w == nil {
		w = io.Discard
	}
	return &Processor{
		cfg:       cfg,
		client:    client,
		cache:     c,
		validator: header.NewValidator(cfg.Headers),
		log:       w,
	}
}

// ProcessFiles expands paths into CSV files, converts each one, and
// returns the run statistics. Individual file failures are recorded in
// the stats and do not stop the batch.
func (p *Processor) ProcessFiles(ctx context.Context, paths []string) (*types.ProcessingStats, error) {
	start := time.Now()
	stats := &types.ProcessingStats{}

	files := CollectCSVFiles(paths, p.log)
	stats.TotalFiles = len(files)
	fmt.Fprintf(p.log, "Found %d CSV files to process\n", len(files))

	outDir := p.cfg.OutputDir
	if outDir == "" {
		outDir = fmt.Sprintf("oscapify_output_%s", start.Format("20060102_150405"))
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return stats, fmt.Errorf("creating output directory %s: %w", outDir, err)
	}

	for _, file := range files {
		if err := p.processFile(ctx, file, outDir, stats); err != nil {
			stats.FailedFiles++
			stats.Errors = append(stats.Errors, types.FileError{
				File:  file,
				Error: err.Error(),
				Kind:  errorKind(err),
			})
			fmt.Fprintf(p.log, "failed:  %s (%v)\n", file, err)
			continue
		}
		stats.ProcessedFiles++
	}

	stats.ProcessingTime = time.Since(start)
	p.logSummary(stats)

	if p.cache != nil {
		if err := p.cache.Flush(); err != nil {
			fmt.Fprintf(p.log, "warning: flushing cache: %v\n", err)
		}
	}
	return stats, nil
}

// CollectCSVFiles expands input paths into a sorted list of CSV files.
// A .csv file is taken as-is; a directory contributes its immediate .csv
// children; anything else is skipped with a warning.
func CollectCSVFiles(paths []string, warn io.Writer) []string {
	if warn == nil {
		warn = io.Discard
	}

	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		switch {
		case err == nil && !info.IsDir() && isCSV(path):
			files = append(files, path)
		case err == nil && info.IsDir():
			entries, readErr := os.ReadDir(path)
			if readErr != nil {
				fmt.Fprintf(warn, "warning: skipping unreadable directory %s: %v\n", path, readErr)
				continue
			}
			for _, entry := range entries {
				if !entry.IsDir() && isCSV(entry.Name()) {
					files = append(files, filepath.Join(path, entry.Name()))
				}
			}
		default:
			fmt.Fprintf(warn, "warning: skipping invalid path: %s\n", path)
		}
	}

	sort.Strings(files)
	return files
}

func isCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

// processFile runs one input file through the full pipeline:
// read → validate/fix headers → clean → transform → write.
func (p *Processor) processFile(ctx context.Context, path, outDir string, stats *types.ProcessingStats) error {
	fmt.Fprintf(p.log, "processing: %s\n", filepath.Base(path))

	t, err := table.Read(path)
	if err != nil {
		return &FileError{Path: path, Err: err}
	}

	if p.cfg.ValidateHeaders {
		if err := p.fixHeaders(t, path); err != nil {
			return &FileError{Path: path, Err: err}
		}
	}

	clean.StandardizeTable(t, p.cfg.Headers)

	out, err := p.transform(ctx, t, stats)
	if err != nil {
		return &FileError{Path: path, Err: err}
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(outDir, stem+p.cfg.Suffix+".csv")
	if err := out.WriteFile(outPath); err != nil {
		return &FileError{Path: path, Err: err}
	}

	fmt.Fprintf(p.log, "written: %s (%d rows)\n", filepath.Base(outPath), len(out.Rows))
	return nil
}

// fixHeaders validates the table's headers and applies any corrections
// the validator found. Unresolved headers are fatal in strict mode;
// otherwise the missing columns are synthesized empty later and the user
// gets mapping suggestions.
func (p *Processor) fixHeaders(t *table.Table, path string) error {
	valid, corrections, err := p.validator.Validate(t.Columns, p.cfg.Strict)
	if err != nil {
		return err
	}

	if len(corrections) > 0 {
		fmt.Fprintf(p.log, "applying header corrections for %s: %v\n", filepath.Base(path), corrections)
		t.Rename(corrections)
	}

	if !valid {
		if p.cfg.Debug {
			report := p.validator.Debug(t)
			if data, marshalErr := yaml.Marshal(report); marshalErr == nil {
				fmt.Fprintf(p.log, "header debug for %s:\n%s", filepath.Base(path), data)
			}
		}
		if suggestions := p.validator.SuggestMapping(t.Columns); len(suggestions) > 0 {
			fmt.Fprintf(p.log, "suggested header mappings for %s: %v\n", filepath.Base(path), suggestions)
		}
		fmt.Fprintf(p.log, "warning: missing required headers in %s, creating them with empty values\n", filepath.Base(path))
	}
	return nil
}

// lookupDOI is the cache-aside enrichment path: consult the cache, call
// the client on a miss, store the result. The cache key is derived from
// the call identity alone, so the API key never leaks into cache state.
func (p *Processor) lookupDOI(ctx context.Context, rec types.InputRecord) (*types.DOIResult, error) {
	// PMCID is the more specific identifier; prefer it.
	queryID := rec.PMCID
	if queryID == "" {
		queryID = rec.PMID
	}
	if queryID == "" {
		return nil, &ncbi.LookupError{
			Kind:    ncbi.KindNoIdentifier,
			Message: "both PMID and PMCID are missing",
		}
	}

	key := cache.Key("ncbi.ConvertID", queryID)
	if p.cache != nil {
		var cached types.DOIResult
		if p.cache.Get(key, &cached) {
			return &cached, nil
		}
	}

	result, err := p.client.ConvertID(ctx, queryID)
	if err != nil {
		if p.cache != nil {
			p.cache.RecordError()
		}
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Set(key, result, cache.DefaultTTL); err != nil {
			fmt.Fprintf(p.log, "warning: caching lookup for %s: %v\n", queryID, err)
		}
	}
	return result, nil
}

// logSummary prints the run totals and the first few per-file errors.
func (p *Processor) logSummary(stats *types.ProcessingStats) {
	fmt.Fprintf(p.log, "\nBatch summary: %d processed, %d failed (total: %d files)\n",
		stats.ProcessedFiles, stats.FailedFiles, stats.TotalFiles)
	fmt.Fprintf(p.log, "Records: %d; DOI lookups: %d succeeded, %d failed; elapsed: %s\n",
		stats.TotalRecords, stats.SuccessfulLookups, stats.FailedLookups,
		stats.ProcessingTime.Round(10*time.Millisecond))

	if p.cache != nil {
		cs := p.cache.Stats()
		fmt.Fprintf(p.log, "Cache: %d entries, %d hits, %d misses (%s hit rate)\n",
			cs.Size, cs.Hits, cs.Misses, cs.HitRate)
	}

	for i, e := range stats.Errors {
		if i == 5 {
			fmt.Fprintf(p.log, "  ... and %d more\n", len(stats.Errors)-5)
			break
		}
		fmt.Fprintf(p.log, "  - %s: %s\n", e.File, e.Error)
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the shared configuration and record types used
// across the oscapify pipeline stages.
package types

import "time"

// HTTPConfig holds shared HTTP settings for stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "oscapify/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// LookupConfig holds settings for DOI enrichment against the NCBI ID
// Converter API.
type LookupConfig struct {
	HTTPConfig `yaml:",inline"`

	// Tool is the tool name reported to NCBI in the tool query parameter.
	Tool string `json:"tool" yaml:"tool"`

	// APIKey is an optional NCBI API key for elevated rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// HeaderMapping maps logical field names to the column names expected in
// input tables, plus the extra columns to carry through unmodified.
type HeaderMapping struct {
	// PMID is the column name for the PubMed ID. Always required.
	PMID string `json:"pmid" yaml:"pmid"`

	// Sentence is the column name for the sentence text. Always required.
	Sentence string `json:"sentence" yaml:"sentence"`

	// PMCID is the column name for the PubMed Central ID. Required when
	// non-empty; an empty value disables the PMCID requirement.
	PMCID string `json:"pmcid" yaml:"pmcid"`

	// PubMedURL is the column name for the PubMed article URL.
	PubMedURL string `json:"pubmed_url" yaml:"pubmed_url"`

	// IDColumn is the column name for the source's own record ID.
	IDColumn string `json:"id_column" yaml:"id_column"`

	// PreserveFields lists extra input columns copied into the output
	// unmodified.
	PreserveFields []string `json:"preserve_fields" yaml:"preserve_fields"`
}

// DefaultHeaderMapping returns the mapping used when no overrides are given.
func DefaultHeaderMapping() HeaderMapping {
	return HeaderMapping{
		PMID:           "pmid",
		Sentence:       "sentence",
		PMCID:          "pmcid",
		PubMedURL:      "pubmed_url",
		IDColumn:       "ID",
		PreserveFields: []string{"structure_1", "structure_2", "relation", "score"},
	}
}

// ProcessingConfig holds run-wide settings for converting CSV files to the
// OSCAP format. It is immutable for the duration of a run.
type ProcessingConfig struct {
	// Suffix is appended to each output file's stem (default "-oscapify").
	Suffix string `json:"suffix" yaml:"suffix"`

	// OutputDir is the directory for output files. When empty, a
	// timestamped oscapify_output_* directory is created.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// BatchName is written to every output row's batch_name column.
	BatchName string `json:"batch_name" yaml:"batch_name"`

	// ValidateHeaders enables header validation and auto-correction.
	ValidateHeaders bool `json:"validate_headers" yaml:"validate_headers"`

	// CacheLookups enables the on-disk DOI lookup cache.
	CacheLookups bool `json:"cache_lookups" yaml:"cache_lookups"`

	// Strict makes unresolved required headers and identifier-missing rows
	// fatal to their file instead of warnings.
	Strict bool `json:"strict" yaml:"strict"`

	// Debug enables verbose diagnostics and fail-fast on unexpected
	// row-level errors.
	Debug bool `json:"debug" yaml:"debug"`

	// Headers is the active header mapping.
	Headers HeaderMapping `json:"headers" yaml:"headers"`

	// Lookup configures the NCBI enrichment client.
	Lookup LookupConfig `json:"lookup" yaml:"lookup"`
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// FileError records one failed input file for the run summary.
type FileError struct {
	File  string `json:"file"`
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// ProcessingStats accumulates one run's counters. It is mutated only by
// the processor and returned to the caller when the run completes.
type ProcessingStats struct {
	TotalFiles        int           `json:"total_files"`
	ProcessedFiles    int           `json:"processed_files"`
	FailedFiles       int           `json:"failed_files"`
	TotalRecords      int           `json:"total_records"`
	SuccessfulLookups int           `json:"successful_lookups"`
	FailedLookups     int           `json:"failed_lookups"`
	ProcessingTime    time.Duration `json:"processing_time"`
	Errors            []FileError   `json:"errors,omitempty"`
}

// HasFailures reports whether any input file failed.
func (s ProcessingStats) HasFailures() bool {
	return s.FailedFiles > 0
}

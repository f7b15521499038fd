// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package header

import (
	"strings"

	"github.com/tmsincomb/oscapify/internal/table"
)

// maxSampledColumns bounds the per-column sample section of a report.
const maxSampledColumns = 10

// ColumnSample summarizes one column's data for diagnostics.
type ColumnSample struct {
	Samples     []string `yaml:"samples"`
	NullCount   int      `yaml:"null_count"`
	UniqueCount int      `yaml:"unique_count"`
}

// HeaderStats holds structural problems detected in a header row.
type HeaderStats struct {
	TotalColumns     int      `yaml:"total_columns"`
	HasDuplicates    bool     `yaml:"has_duplicates"`
	DuplicateHeaders []string `yaml:"duplicate_headers,omitempty"`
	EmptyHeaders     []string `yaml:"empty_headers,omitempty"`
	WhitespaceIssues []string `yaml:"whitespace_issues,omitempty"`
}

// DebugReport is the full header diagnostic for one table, independent of
// validation outcome.
type DebugReport struct {
	FoundHeaders     []string                `yaml:"found_headers"`
	RequiredHeaders  []string                `yaml:"required_headers"`
	OptionalHeaders  []string                `yaml:"optional_headers"`
	PreserveFields   []string                `yaml:"preserve_fields"`
	Stats            HeaderStats             `yaml:"header_stats"`
	SampleData       map[string]ColumnSample `yaml:"sample_data,omitempty"`
	DetectedPatterns map[string][]string     `yaml:"detected_patterns,omitempty"`
}

// patternGroups name headers that look like known identifier or text
// columns, for the detected_patterns section of a report.
var patternGroups = []struct {
	name     string
	variants []string
}{
	{"pmid_variants", []string{"PMID", "pmid", "PubMedID", "pubmed_id", "pm_id"}},
	{"pmcid_variants", []string{"PMCID", "pmcid", "PMC", "pmc", "pmc_id"}},
	{"doi_variants", []string{"DOI", "doi", "digital_object_identifier"}},
	{"text_variants", []string{"sentence", "text", "abstract", "content", "passage"}},
}

// Debug builds a diagnostic report for the table's headers and a sample of
// its data.
func (v *Validator) Debug(t *table.Table) DebugReport {
	report := DebugReport{
		FoundHeaders:    append([]string(nil), t.Columns...),
		RequiredHeaders: v.Required(),
		OptionalHeaders: []string{v.mapping.PubMedURL, v.mapping.IDColumn},
		PreserveFields:  v.mapping.PreserveFields,
		Stats:           headerStats(t.Columns),
	}

	report.SampleData = make(map[string]ColumnSample)
	for i, col := range t.Columns {
		if i >= maxSampledColumns {
			break
		}
		report.SampleData[col] = sampleColumn(t, col)
	}

	report.DetectedPatterns = make(map[string][]string)
	for _, group := range patternGroups {
		var found []string
		for _, c := range t.Columns {
			if anyVariantIn(group.variants, c) {
				found = append(found, c)
			}
		}
		if len(found) > 0 {
			report.DetectedPatterns[group.name] = found
		}
	}
	return report
}

func headerStats(columns []string) HeaderStats {
	stats := HeaderStats{TotalColumns: len(columns)}

	counts := make(map[string]int, len(columns))
	for _, c := range columns {
		counts[c]++
	}
	for _, c := range columns {
		if counts[c] > 1 {
			stats.HasDuplicates = true
			stats.DuplicateHeaders = append(stats.DuplicateHeaders, c)
		}
		if strings.TrimSpace(c) == "" {
			stats.EmptyHeaders = append(stats.EmptyHeaders, c)
		} else if c != strings.TrimSpace(c) {
			stats.WhitespaceIssues = append(stats.WhitespaceIssues, c)
		}
	}
	return stats
}

// sampleColumn collects up to three non-empty values plus null and unique
// counts for one column.
func sampleColumn(t *table.Table, col string) ColumnSample {
	sample := ColumnSample{}
	unique := make(map[string]bool)
	for i := range t.Rows {
		v := t.Get(i, col)
		if strings.TrimSpace(v) == "" {
			sample.NullCount++
			continue
		}
		unique[v] = true
		if len(sample.Samples) < 3 {
			sample.Samples = append(sample.Samples, v)
		}
	}
	sample.UniqueCount = len(unique)
	return sample
}

// anyVariantIn reports whether any variant occurs inside the header name,
// ignoring case.
func anyVariantIn(variants []string, header string) bool {
	h := strings.ToLower(header)
	for _, v := range variants {
		if strings.Contains(h, strings.ToLower(v)) {
			return true
		}
	}
	return false
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package header reconciles a table's column names against the required
// header set, with case-insensitive and fuzzy auto-correction plus
// diagnostics for user-facing hints.
package header

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/tmsincomb/oscapify/pkg/types"
)

// fuzzyCutoff is the minimum normalized similarity for a fuzzy header
// match, mirroring a close-match cutoff of 0.8.
const fuzzyCutoff = 0.8

// ValidationError reports required headers that could not be resolved.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required headers: %s", strings.Join(e.Missing, ", "))
}

// Validator checks tables against one header mapping.
type Validator struct {
	mapping types.HeaderMapping
}

// NewValidator returns a Validator for the given mapping.
func NewValidator(m types.HeaderMapping) *Validator {
	return &Validator{mapping: m}
}

// Required returns the required header set: PMID and Sentence always,
// PMCID when configured.
func (v *Validator) Required() []string {
	req := []string{v.mapping.PMID, v.mapping.Sentence}
	if v.mapping.PMCID != "" {
		req = append(req, v.mapping.PMCID)
	}
	return req
}

// Validate checks columns against the required header set. For each
// missing header it tries a case-insensitive exact match, then a fuzzy
// match, against the present columns; resolved headers are returned in
// corrections as found-name → canonical-name. valid is true only when no
// required header remains missing after correction. In strict mode an
// unresolved header is returned as a *ValidationError instead.
func (v *Validator) Validate(columns []string, strict bool) (valid bool, corrections map[string]string, err error) {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}

	corrections = make(map[string]string)
	var missing []string

	for _, required := range v.Required() {
		if present[required] {
			continue
		}
		if found := matchCaseInsensitive(required, columns); found != "" {
			corrections[found] = required
			continue
		}
		if found := matchFuzzy(required, columns); found != "" {
			corrections[found] = required
			continue
		}
		missing = append(missing, required)
	}

	if len(missing) > 0 && strict {
		sort.Strings(missing)
		return false, corrections, &ValidationError{Missing: missing}
	}
	return len(missing) == 0, corrections, nil
}

// matchCaseInsensitive returns the first column equal to want ignoring
// case, or "".
func matchCaseInsensitive(want string, columns []string) string {
	for _, c := range columns {
		if strings.EqualFold(c, want) {
			return c
		}
	}
	return ""
}

// matchFuzzy returns the best-scoring column with similarity at or above
// the cutoff, or "".
func matchFuzzy(want string, columns []string) string {
	best := ""
	bestScore := 0.0
	for _, c := range columns {
		if s := similarity(want, c); s >= fuzzyCutoff && s > bestScore {
			best = c
			bestScore = s
		}
	}
	return best
}

// similarity is the normalized Levenshtein similarity in [0, 1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// mappingRules is the fixed alias table for header suggestions, keyed by
// the canonical logical name.
var mappingRules = []struct {
	canonical string
	variants  []string
}{
	{"pmid", []string{"PMID", "pmid", "PubMedID", "pubmed_id", "pm_id"}},
	{"pmcid", []string{"PMCID", "pmcid", "PMC", "pmc", "pmc_id"}},
	{"sentence", []string{"sentence", "text", "abstract", "content", "passage"}},
	{"pubmed_url", []string{"pubmed_url", "url", "link", "pubmed_link"}},
	{"ID", []string{"ID", "id", "identifier", "record_id"}},
}

// SuggestMapping maps found headers to canonical logical names using the
// fixed alias table, for actionable hints when required headers are absent.
func (v *Validator) SuggestMapping(columns []string) map[string]string {
	suggestions := make(map[string]string)
	for _, rule := range mappingRules {
		for _, c := range columns {
			if containsFold(rule.variants, c) {
				suggestions[c] = rule.canonical
				break
			}
		}
	}
	return suggestions
}

func containsFold(variants []string, s string) bool {
	for _, v := range variants {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package clean normalizes identifier fields and standardizes input
// tables before row processing.
package clean

import (
	"regexp"
	"strings"

	"github.com/tmsincomb/oscapify/internal/table"
	"github.com/tmsincomb/oscapify/pkg/types"
)

// pmcidURLPatterns are tried in order against an article URL. On the first
// match the captured digits become "PMC<digits>".
var pmcidURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)PMC(\d+)`),
	regexp.MustCompile(`(?i)pmc(\d+)`),
	regexp.MustCompile(`(?i)articles/PMC(\d+)`),
	regexp.MustCompile(`(?i)articleid=(\d+).*type=pmc`),
}

// nullLiterals are the values that collapse to absence after trimming.
var nullLiterals = map[string]bool{
	"nan": true, "none": true, "null": true, "n/a": true, "": true,
}

// IDField normalizes a PMID/PMCID cell to a bare numeric identifier.
// It strips the literal "PMC" and "PMID:" prefixes, collapses null-like
// literals (nan, none, null, n/a, empty) to absence, and accepts only
// purely numeric results. Absence is returned as "".
func IDField(value string) string {
	v := strings.TrimSpace(value)
	v = strings.ReplaceAll(v, "PMC", "")
	v = strings.ReplaceAll(v, "PMID:", "")
	v = strings.TrimSpace(v)

	if nullLiterals[strings.ToLower(v)] {
		return ""
	}
	if !isDigits(v) {
		return ""
	}
	return v
}

// PMCIDFromURL extracts a PMCID from an article URL, returning
// "PMC<digits>" or "" when no supported pattern matches.
func PMCIDFromURL(url string) string {
	if url == "" {
		return ""
	}
	for _, p := range pmcidURLPatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return "PMC" + m[1]
		}
	}
	return ""
}

// StandardizeTable trims column names, drops duplicate columns, cleans the
// mapped PMID and PMCID columns, and derives PMCID values from the URL
// column when the PMCID column is missing or entirely empty. Derived
// values fill gaps only; existing values are never overwritten.
func StandardizeTable(t *table.Table, m types.HeaderMapping) {
	t.TrimColumnNames()
	t.DedupeColumns()

	for _, col := range []string{m.PMID, m.PMCID} {
		if col == "" || !t.HasColumn(col) {
			continue
		}
		for i := range t.Rows {
			t.Set(i, col, IDField(t.Get(i, col)))
		}
	}

	if m.PubMedURL == "" || !t.HasColumn(m.PubMedURL) || m.PMCID == "" {
		return
	}
	if t.HasColumn(m.PMCID) && !columnEmpty(t, m.PMCID) {
		return
	}

	t.EnsureColumn(m.PMCID)
	for i := range t.Rows {
		if t.Get(i, m.PMCID) != "" {
			continue
		}
		if pmcid := PMCIDFromURL(t.Get(i, m.PubMedURL)); pmcid != "" {
			t.Set(i, m.PMCID, pmcid)
		}
	}
}

func columnEmpty(t *table.Table, col string) bool {
	for i := range t.Rows {
		if strings.TrimSpace(t.Get(i, col)) != "" {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package header

import (
	"errors"
	"reflect"
	"testing"

	"github.com/tmsincomb/oscapify/pkg/types"
)

func TestRequired(t *testing.T) {
	v := NewValidator(types.DefaultHeaderMapping())
	want := []string{"pmid", "sentence", "pmcid"}
	if got := v.Required(); !reflect.DeepEqual(got, want) {
		t.Errorf("Required() = %v, want %v", got, want)
	}

	m := types.DefaultHeaderMapping()
	m.PMCID = ""
	v = NewValidator(m)
	want = []string{"pmid", "sentence"}
	if got := v.Required(); !reflect.DeepEqual(got, want) {
		t.Errorf("Required() without PMCID = %v, want %v", got, want)
	}
}

func TestValidate(t *testing.T) {
	v := NewValidator(types.DefaultHeaderMapping())

	tests := []struct {
		name            string
		columns         []string
		wantValid       bool
		wantCorrections map[string]string
	}{
		{
			name:            "exact headers",
			columns:         []string{"pmid", "sentence", "pmcid"},
			wantValid:       true,
			wantCorrections: map[string]string{},
		},
		{
			name:            "case-insensitive correction",
			columns:         []string{"PMID", "Sentence", "PMCID"},
			wantValid:       true,
			wantCorrections: map[string]string{"PMID": "pmid", "Sentence": "sentence", "PMCID": "pmcid"},
		},
		{
			name:            "fuzzy correction",
			columns:         []string{"pmids", "sentence", "pmcid"},
			wantValid:       true,
			wantCorrections: map[string]string{"pmids": "pmid"},
		},
		{
			name:            "missing sentence",
			columns:         []string{"pmid", "pmcid"},
			wantValid:       false,
			wantCorrections: map[string]string{},
		},
		{
			name:            "unrelated columns",
			columns:         []string{"foo", "bar"},
			wantValid:       false,
			wantCorrections: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, corrections, err := v.Validate(tt.columns, false)
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if valid != tt.wantValid {
				t.Errorf("valid = %v, want %v", valid, tt.wantValid)
			}
			if !reflect.DeepEqual(corrections, tt.wantCorrections) {
				t.Errorf("corrections = %v, want %v", corrections, tt.wantCorrections)
			}
		})
	}
}

func TestValidateStrict(t *testing.T) {
	v := NewValidator(types.DefaultHeaderMapping())

	valid, _, err := v.Validate([]string{"pmid", "pmcid"}, true)
	if valid {
		t.Error("expected invalid result")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if want := []string{"sentence"}; !reflect.DeepEqual(verr.Missing, want) {
		t.Errorf("Missing = %v, want %v", verr.Missing, want)
	}

	// Corrections alone never trigger the strict error.
	valid, corrections, err := v.Validate([]string{"PMID", "sentence", "pmcid"}, true)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !valid {
		t.Error("expected valid result after correction")
	}
	if corrections["PMID"] != "pmid" {
		t.Errorf("corrections = %v, want PMID mapped to pmid", corrections)
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"pmid", "pmid", 1},
		{"", "", 1},
		{"pmid", "pmids", 0.8},
		{"pmid", "xxxx", 0},
	}

	for _, tt := range tests {
		if got := similarity(tt.a, tt.b); got != tt.want {
			t.Errorf("similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSuggestMapping(t *testing.T) {
	v := NewValidator(types.DefaultHeaderMapping())

	got := v.SuggestMapping([]string{"PubMedID", "text", "pmc_id", "link", "record_id", "score"})
	want := map[string]string{
		"PubMedID":  "pmid",
		"pmc_id":    "pmcid",
		"text":      "sentence",
		"link":      "pubmed_url",
		"record_id": "ID",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SuggestMapping() = %v, want %v", got, want)
	}

	if got := v.SuggestMapping([]string{"score", "structure_1"}); len(got) != 0 {
		t.Errorf("SuggestMapping() = %v, want empty", got)
	}
}

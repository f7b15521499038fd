// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package header

import (
	"reflect"
	"testing"

	"github.com/tmsincomb/oscapify/internal/table"
	"github.com/tmsincomb/oscapify/pkg/types"
)

func TestDebug(t *testing.T) {
	v := NewValidator(types.DefaultHeaderMapping())
	tbl := &table.Table{
		Columns: []string{"PMID", "sentence", "sentence", " doi_link", "score"},
		Rows: [][]string{
			{"111", "a", "a", "10.1/x", "0.9"},
			{"", "b", "b", "", "0.8"},
			{"222", "b", "b", "10.2/y", ""},
		},
	}

	report := v.Debug(tbl)

	if !reflect.DeepEqual(report.FoundHeaders, tbl.Columns) {
		t.Errorf("FoundHeaders = %v, want %v", report.FoundHeaders, tbl.Columns)
	}
	if !reflect.DeepEqual(report.RequiredHeaders, []string{"pmid", "sentence", "pmcid"}) {
		t.Errorf("RequiredHeaders = %v", report.RequiredHeaders)
	}

	if !report.Stats.HasDuplicates {
		t.Error("expected duplicate columns to be flagged")
	}
	if !reflect.DeepEqual(report.Stats.DuplicateHeaders, []string{"sentence", "sentence"}) {
		t.Errorf("DuplicateHeaders = %v", report.Stats.DuplicateHeaders)
	}
	if !reflect.DeepEqual(report.Stats.WhitespaceIssues, []string{" doi_link"}) {
		t.Errorf("WhitespaceIssues = %v", report.Stats.WhitespaceIssues)
	}
	if report.Stats.TotalColumns != 5 {
		t.Errorf("TotalColumns = %d, want 5", report.Stats.TotalColumns)
	}

	pmidSample, ok := report.SampleData["PMID"]
	if !ok {
		t.Fatal("expected sample for PMID column")
	}
	if !reflect.DeepEqual(pmidSample.Samples, []string{"111", "222"}) {
		t.Errorf("PMID samples = %v", pmidSample.Samples)
	}
	if pmidSample.NullCount != 1 || pmidSample.UniqueCount != 2 {
		t.Errorf("PMID null/unique = %d/%d, want 1/2", pmidSample.NullCount, pmidSample.UniqueCount)
	}

	if got := report.DetectedPatterns["pmid_variants"]; !reflect.DeepEqual(got, []string{"PMID"}) {
		t.Errorf("pmid_variants = %v", got)
	}
	if got := report.DetectedPatterns["doi_variants"]; !reflect.DeepEqual(got, []string{" doi_link"}) {
		t.Errorf("doi_variants = %v", got)
	}
	if _, ok := report.DetectedPatterns["pmcid_variants"]; ok {
		t.Error("did not expect pmcid_variants")
	}
}

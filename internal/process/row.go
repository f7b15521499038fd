// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package process

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tmsincomb/oscapify/internal/clean"
	"github.com/tmsincomb/oscapify/internal/ncbi"
	"github.com/tmsincomb/oscapify/internal/table"
	"github.com/tmsincomb/oscapify/pkg/types"
)

// baseColumns is the fixed output column order. Preserved extras follow
// as a single JSON-encoded additional_fields column.
var baseColumns = []string{
	"id", "pmid", "pmcid", "doi", "sentence", "batch_name", "sentence_id", "out_of_scope",
}

// canonicalFields are the logical input columns every table is padded to
// before row processing, so the mapped-or-canonical fallback always has a
// column to read.
var canonicalFields = []string{"pmid", "pmcid", "sentence", "pubmed_url"}

// transform runs the per-row pipeline over a standardized table and
// returns the reshaped output table. Lookup failures stay confined to
// their row: the row keeps doi="" and out_of_scope="yes", and the run's
// failed-lookup counter is incremented.
func (p *Processor) transform(ctx context.Context, t *table.Table, stats *types.ProcessingStats) (*table.Table, error) {
	for _, field := range canonicalFields {
		t.EnsureColumn(field)
	}

	datestamp := time.Now().Format("20060102")
	var records []types.OutputRecord

	for i := range t.Rows {
		rowNum := i + 1

		rec := p.buildInput(t, i)
		if rec.PMCID == "" && rec.PubMedURL != "" {
			rec.PMCID = clean.PMCIDFromURL(rec.PubMedURL)
		}

		rowID := fmt.Sprintf("nlp-%d-%s", rowNum, datestamp)
		out := types.OutputRecord{
			ID:         rowID,
			PMID:       rec.PMID,
			PMCID:      rec.PMCID,
			DOI:        "",
			Sentence:   rec.Sentence,
			BatchName:  p.cfg.BatchName,
			SentenceID: rowID,
			OutOfScope: "yes",
			Extra:      map[string]string{},
		}

		result, err := p.lookupDOI(ctx, rec)
		switch {
		case err == nil:
			out.DOI = result.DOI
			out.OutOfScope = "no"
			if result.PMID != "" {
				out.PMID = result.PMID
			}
			if result.PMCID != "" {
				out.PMCID = result.PMCID
			}
			stats.SuccessfulLookups++
		case ncbi.IsLookupError(err):
			stats.FailedLookups++
			fmt.Fprintf(p.log, "warning: DOI lookup failed for row %d: %v\n", rowNum, err)
			if p.cfg.Strict && ncbi.IsNoIdentifier(err) {
				return nil, err
			}
		default:
			// Unexpected row-level failure: skip the row, or fail fast in
			// debug mode.
			fmt.Fprintf(p.log, "error processing row %d: %v\n", rowNum, err)
			if p.cfg.Debug {
				return nil, err
			}
			continue
		}

		for _, field := range p.cfg.Headers.PreserveFields {
			if t.HasColumn(field) {
				out.Extra[field] = t.Get(i, field)
			}
		}

		records = append(records, out)
		stats.TotalRecords++
	}

	return reshape(records), nil
}

// buildInput reads one row's logical fields, using the mapped column name
// when present in the table and falling back to the canonical name.
func (p *Processor) buildInput(t *table.Table, row int) types.InputRecord {
	m := p.cfg.Headers
	return types.InputRecord{
		PMID:      cleanIDCell(t.Get(row, pickColumn(t, m.PMID, "pmid"))),
		PMCID:     cleanIDCell(t.Get(row, pickColumn(t, m.PMCID, "pmcid"))),
		Sentence:  t.Get(row, pickColumn(t, m.Sentence, "sentence")),
		PubMedURL: strings.TrimSpace(t.Get(row, pickColumn(t, m.PubMedURL, "pubmed_url"))),
	}
}

// cleanIDCell collapses null-like identifier cells to absence. Full
// numeric normalization already happened in standardization; this guards
// the canonical-fallback columns that bypassed it.
func cleanIDCell(v string) string {
	v = strings.TrimSpace(v)
	if s := strings.ToLower(v); s == "nan" || s == "none" || s == "" {
		return ""
	}
	return v
}

func pickColumn(t *table.Table, mapped, canonical string) string {
	if mapped != "" && t.HasColumn(mapped) {
		return mapped
	}
	return canonical
}

// reshape folds output records into a table with the fixed column order.
// When any record carries preserved extras, they are serialized into one
// additional_fields JSON column with empty values omitted.
func reshape(records []types.OutputRecord) *table.Table {
	hasExtras := false
	for _, r := range records {
		for _, v := range r.Extra {
			if v != "" {
				hasExtras = true
			}
		}
	}

	columns := append([]string(nil), baseColumns...)
	if hasExtras {
		columns = append(columns, "additional_fields")
	}

	out := &table.Table{Columns: columns}
	for _, r := range records {
		row := []string{
			r.ID, r.PMID, r.PMCID, r.DOI, r.Sentence, r.BatchName, r.SentenceID, r.OutOfScope,
		}
		if hasExtras {
			row = append(row, encodeExtras(r.Extra))
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// encodeExtras serializes non-empty extra fields as a JSON object. Map
// marshaling sorts keys, so the encoding is deterministic.
func encodeExtras(extra map[string]string) string {
	kept := make(map[string]string, len(extra))
	for k, v := range extra {
		if v != "" {
			kept[k] = v
		}
	}
	data, err := json.Marshal(kept)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// InputRecord is the logical view of one source row after identifier
// cleaning. Empty strings mean the field is absent.
type InputRecord struct {
	PMID      string
	PMCID     string
	Sentence  string
	PubMedURL string
}

// OutputRecord is one emitted OSCAP row. DOI defaults to the empty string;
// OutOfScope is "no" exactly when a DOI was resolved for this row.
type OutputRecord struct {
	ID         string
	PMID       string
	PMCID      string
	DOI        string
	Sentence   string
	BatchName  string
	SentenceID string
	OutOfScope string

	// Extra maps preserved input column names to their original values.
	Extra map[string]string
}

// DOIResult is a parsed ID Converter lookup. The service may return
// canonical PMID/PMCID forms different from the query. A result without a
// DOI is a semantic miss.
type DOIResult struct {
	DOI    string `json:"doi,omitempty"`
	PMID   string `json:"pmid,omitempty"`
	PMCID  string `json:"pmcid,omitempty"`
	ErrMsg string `json:"errmsg,omitempty"`
}

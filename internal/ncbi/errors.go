// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ncbi

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed lookup.
type ErrorKind string

const (
	// KindNoIdentifier means neither PMID nor PMCID was available.
	KindNoIdentifier ErrorKind = "no_identifier"

	// KindTransport means the HTTP request itself failed.
	KindTransport ErrorKind = "transport"

	// KindHTTP means the service answered with a non-2xx status.
	KindHTTP ErrorKind = "http_status"

	// KindParse means the response body could not be decoded.
	KindParse ErrorKind = "parse"

	// KindNoRecord means the service answered but returned no usable
	// record (missing record, error-flagged record, or non-live status).
	KindNoRecord ErrorKind = "no_record"
)

// LookupError describes one failed DOI lookup. All enrichment failures
// surface as this type so callers can choose per-row continuation.
type LookupError struct {
	Kind       ErrorKind
	Identifier string
	URL        string
	StatusCode int
	Message    string
	Body       string
	Err        error
}

func (e *LookupError) Error() string {
	if e.Identifier != "" {
		return fmt.Sprintf("DOI lookup failed for %s: %s", e.Identifier, e.Message)
	}
	return fmt.Sprintf("DOI lookup failed: %s", e.Message)
}

func (e *LookupError) Unwrap() error { return e.Err }

// IsLookupError reports whether err is (or wraps) a LookupError.
func IsLookupError(err error) bool {
	var le *LookupError
	return errors.As(err, &le)
}

// IsNoRecord reports whether err is a lookup miss: the service answered
// but had no DOI for the identifier.
func IsNoRecord(err error) bool {
	var le *LookupError
	return errors.As(err, &le) && le.Kind == KindNoRecord
}

// IsNoIdentifier reports whether err means the row had neither PMID nor
// PMCID to look up.
func IsNoIdentifier(err error) bool {
	var le *LookupError
	return errors.As(err, &le) && le.Kind == KindNoIdentifier
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package process

import (
	"errors"
	"fmt"

	"github.com/tmsincomb/oscapify/internal/header"
	"github.com/tmsincomb/oscapify/internal/ncbi"
)

// FileError marks a failure confined to one input file: unreadable data,
// a failed header validation in strict mode, or a failed write. The batch
// records it and moves on.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("processing %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// errorKind tags an error for the run's error list.
func errorKind(err error) string {
	var ve *header.ValidationError
	var le *ncbi.LookupError

	switch {
	case errors.As(err, &ve):
		return "HeaderValidationError"
	case errors.As(err, &le):
		return "LookupError"
	default:
		return "FileError"
	}
}

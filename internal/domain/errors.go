package domain

import "errors"

var (
	// ErrStoreUnavailable means the structured store could not be opened.
	// The tracker switches to the flat store for the rest of the session.
	ErrStoreUnavailable = errors.New("structured store unavailable")

	// ErrWriteFailed means a single write against an otherwise open store failed.
	ErrWriteFailed = errors.New("write failed")

	ErrNotFound = errors.New("not found")

	// ErrParseFailure marks a corrupt flat store blob. Readers treat it as empty.
	ErrParseFailure = errors.New("parse failure")

	ErrValidation = errors.New("validation failed")
)

package models

import (
	"errors"
	"fmt"
)

// ErrSourceNotFound signals that the symbol list file is missing. It is
// reported distinctly from other failures so the API layer can answer
// with a 404-equivalent instead of a generic error.
var ErrSourceNotFound = errors.New("symbol list file not found")

// ErrCorruptCache signals that a persisted snapshot could not be parsed.
var ErrCorruptCache = errors.New("corrupt cache entry")

// FetchError wraps a total failure of the batch historical download.
// It is distinct from an empty result: "no data for this date" is a
// valid snapshot, a FetchError is not.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("batch fetch failed: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ProviderError wraps a failure of a single-symbol detail or history
// call, carrying the provider's message for the HTTP layer.
type ProviderError struct {
	Symbol string
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider call for %s failed: %v", e.Symbol, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

package domain

import (
	"errors"
	"fmt"
)

// ErrUnsupportedProvider is returned by the availability checker when a
// listing URL matches no known provider domain.
var ErrUnsupportedProvider = errors.New("stay: unsupported provider")

// FetchError covers network failure, non-success status, and rendered-page
// wait timeouts. Status is zero when the failure happened below HTTP.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractionError means the document was fetched but the provider's
// structural markers were absent (markup drift). Zero results on a valid
// results page is an empty slice, not this error.
type ExtractionError struct {
	Provider string
	Reason   string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %s", e.Provider, e.Reason)
}

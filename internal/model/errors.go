package model

import (
	"errors"
	"fmt"
)

var (
	ErrExtraction  = errors.New("extraction failed")
	ErrValidation  = errors.New("validation failed")
	ErrScoring     = errors.New("scoring failed")
	ErrPersistence = errors.New("persistence failed")
	ErrNotFound    = errors.New("not found")
	ErrLocked      = errors.New("locked by another worker")
)

// FetchError is a network or HTTP level failure while fetching a page.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

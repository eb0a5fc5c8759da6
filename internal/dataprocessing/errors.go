package dataprocessing

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnreadable is matched by every LoadError.
	ErrSourceUnreadable = errors.New("source unreadable")
	// ErrNoSources is returned when a load is requested with no input paths.
	ErrNoSources = errors.New("no input sources")
	// ErrIncompatibleResults is returned when merging aggregates of different shapes.
	ErrIncompatibleResults = errors.New("incompatible aggregate results")
)

// LoadError reports a source that could not be opened or decoded at all.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load source %s: %v", e.Source, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *LoadError) Unwrap() []error {
	return []error{ErrSourceUnreadable, e.Err}
}

func newLoadError(source string, err error) *LoadError {
	return &LoadError{Source: source, Err: err}
}

package gust

import (
	"errors"
	"fmt"
)

const pkg = "gust"

var (
	ErrConfigNotFound   = errors.New(pkg + ": seed configuration not found")
	ErrNotPrime         = errors.New(pkg + ": seed value is not prime")
	ErrInvalidContainer = errors.New(pkg + ": invalid container")
	ErrEndMarkerMissing = errors.New(pkg + ": end marker not found")
	ErrChecksumMismatch = errors.New(pkg + ": checksum mismatch")
	ErrGlazeTooLarge    = errors.New(pkg + ": glaze region exceeds stream")
	ErrGlazeOverflow    = errors.New(pkg + ": glaze decompression overflow")
	ErrAllocation       = errors.New(pkg + ": cannot allocate scrambling table")
)

// Error is returned by Codec when a file cannot be processed.
// State is the last state the pipeline reached before failing.
type Error struct {
	Op    string
	State State
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s after %s: %v", pkg, e.Op, e.State, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

package engine

import (
	"errors"
	"fmt"

	"github.com/padraicbc/juniortour/store"
)

var (
	// ErrValidation is missing or out-of-range input, rejected before any write.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized is a missing or wrong credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is an absent tournament, registration, flight or document.
	ErrNotFound = errors.New("not found")
	// ErrConflict is a write against a finalized round.
	ErrConflict = errors.New("conflict")
	// ErrUpstream is a store, renderer or notifier failure.
	ErrUpstream = errors.New("upstream failure")
	// ErrInconsistent is a write that did not match its plan.
	ErrInconsistent = errors.New("internal inconsistency")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// storeErr maps a repository error into the taxonomy.
func storeErr(what string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, store.ErrCountMismatch):
		return fmt.Errorf("%w: %s: %w", ErrInconsistent, what, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrUpstream, what, err)
}

// Class names the taxonomy bucket of err for metrics and responses.
func Class(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrUpstream):
		return "upstream"
	case errors.Is(err, ErrInconsistent):
		return "inconsistent"
	}
	return "internal"
}

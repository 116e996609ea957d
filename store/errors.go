package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a node identity is not present in the store.
	ErrNotFound = errors.New("node not found")

	// ErrCorrupt indicates stored bytes failed archive validation.
	ErrCorrupt = errors.New("data corrupt")

	// ErrClosed indicates an operation on a closed store.
	ErrClosed = errors.New("store is closed")

	// ErrBackendNotRegistered indicates an unknown backend type in the config.
	ErrBackendNotRegistered = errors.New("backend not registered")

	// ErrInvalidConfig indicates the configuration failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// StoreError wraps a failure with the operation, backend, and identity
// involved. It unwraps to its cause so callers can test sentinels with
// errors.Is.
type StoreError struct {
	Op      string
	Backend string
	Hash    Hash256
	Cause   error
}

func (e *StoreError) Error() string {
	if e.Hash.IsZero() {
		return fmt.Sprintf("store %s (%s): %v", e.Op, e.Backend, e.Cause)
	}
	return fmt.Sprintf("store %s (%s) %s: %v", e.Op, e.Backend, e.Hash, e.Cause)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

func statusErr(s Status) error {
	switch s {
	case OK:
		return nil
	case NotFound:
		return ErrNotFound
	case DataCorrupt:
		return ErrCorrupt
	default:
		return fmt.Errorf("backend failure (%s)", s)
	}
}

package store

import (
	"errors"
	"fmt"
)

// ErrNotFound marks an update or delete aimed at an id that does not
// exist in the collection.
var ErrNotFound = errors.New("store: record not found")

// ErrInvalidCredentials is returned by Login on a bad email/password pair.
var ErrInvalidCredentials = errors.New("store: invalid credentials")

// Live attendance marking failures.
var (
	ErrNoActiveSession = errors.New("store: no active attendance session")
	ErrCodeMismatch    = errors.New("store: invalid attendance code")
	ErrAlreadyMarked   = errors.New("store: already marked for this subject today")
	ErrUnknownStudent  = errors.New("store: unknown student")
	ErrUnknownSubject  = errors.New("store: unknown subject")
)

// DeserializationError reports a corrupt blob under a storage key. The
// accessor that hit it still returns an empty collection so callers can
// keep rendering best-effort data, but the error lets them tell "empty
// because new" apart from "empty because corrupted".
type DeserializationError struct {
	Key string
	Err error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("store: corrupt data under %s: %v", e.Key, e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

// WriteError reports a failed write to the storage backend.
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("store: write %s failed: %v", e.Key, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

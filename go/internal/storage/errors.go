package storage

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict indicates a write violated a uniqueness rule or a
	// conditional check.
	ErrConflict = errors.New("record conflict")

	// ErrIndexNotFound indicates a query named a secondary index the
	// backend does not have. Callers may catch it to fall back to a
	// broader index or a scan; any other error must propagate.
	ErrIndexNotFound = errors.New("index not found")
)

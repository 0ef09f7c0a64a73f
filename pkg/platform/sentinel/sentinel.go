// Package sentinel holds infrastructure facts returned by state stores.
// Services translate them into coded domain errors; input validation failures
// use pkg/domain-errors directly.
package sentinel

import "errors"

var (
	// ErrNotFound means no state document has been written yet.
	ErrNotFound = errors.New("not found")
	// ErrConflict means another writer committed first.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable means the backend cannot be reached right now.
	ErrUnavailable = errors.New("unavailable")
)

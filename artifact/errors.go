package artifact

import "errors"

var (
	// ErrNotFound is returned when an artifact for the given session / id pair
	// does not exist in the underlying store.
	ErrNotFound = errors.New("artifact not found")

	// ErrInvalidID is returned for session or artifact ids that would escape
	// the store's namespace (path separators, "..").
	ErrInvalidID = errors.New("invalid artifact id")
)

package roster

import "errors"

var (
	// ErrUserNotFound indicates the user id has no row in the store.
	ErrUserNotFound = errors.New("roster: user not found")
	// ErrUnauthorized indicates the armory rejected the user's stored token.
	// The caller should signal that re-authentication is required.
	ErrUnauthorized = errors.New("roster: armory rejected the stored token")
	// ErrUpstreamUnavailable indicates the roster fetch failed for a reason
	// unrelated to authentication.
	ErrUpstreamUnavailable = errors.New("roster: armory unavailable")
	// ErrPersistence indicates a required batch write failed.
	ErrPersistence = errors.New("roster: persistence failed")
)

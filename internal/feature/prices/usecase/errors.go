package usecase

import "errors"

var (
	// ErrUnauthorized is returned when a stream is requested without an authenticated user.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrStoreUnavailable wraps subscription store read failures. Sessions treat it as transient.
	ErrStoreUnavailable = errors.New("subscription store unavailable")
	// ErrPushFailed wraps transport write failures. Sessions close on it.
	ErrPushFailed = errors.New("push failed")
	// ErrResolveExhausted is returned when the store failed too many ticks in a row.
	ErrResolveExhausted = errors.New("subscription store failed too many consecutive ticks")
	// ErrSessionClosed is returned when Run is called on a session that is no longer usable.
	ErrSessionClosed = errors.New("session closed")
)

// Package usecase implements the subscription business logic for the stocks feature.
package usecase

import "errors"

var (
	// ErrUnauthorized is returned when an operation is attempted without an authenticated user.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidTicker is returned when the ticker is not in the supported set.
	ErrInvalidTicker = errors.New("invalid ticker")

	// ErrAlreadySubscribed is returned when the (user, ticker) pair already exists.
	// Adapters must translate their unique-constraint violation into this error.
	ErrAlreadySubscribed = errors.New("already subscribed to this stock")
)

package usecase

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")

	ErrProviderUnavailable    = errors.New("data provider unavailable")
	ErrLockHeld               = errors.New("refresh lock held")
	ErrStaleOrMissingSettings = errors.New("stale or missing league settings")
	ErrMalformedFormation     = errors.New("malformed formation")
	ErrInconsistentPrediction = errors.New("inconsistent prediction")
)

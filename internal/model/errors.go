package model

import "errors"

// Validation errors returned by watchlist operations. Handlers compare
// against these with errors.Is to pick response codes.
var (
	// ErrValidation wraps malformed caller input that has no more
	// specific error below (empty names, empty ticker lists, and so on).
	ErrValidation = errors.New("invalid watchlist input")

	ErrInvalidDateFormat  = errors.New("invalid date, expected a valid YYYY-MM-DD date")
	ErrFutureDate         = errors.New("date cannot be after today")
	ErrTickerNotFound     = errors.New("ticker not found")
	ErrMetaKeyNotFound    = errors.New("metadata key not found")
	ErrDuplicateMetaKey   = errors.New("metadata key already exists")
	ErrInvalidMergeOption = errors.New("invalid metadata source, expected 0, 1 or 2")
)

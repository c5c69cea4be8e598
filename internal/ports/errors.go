package ports

import (
	"errors"
	"fmt"
)

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
var (
	// General Errors
	ErrNotFound           = errors.New("resource not found")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Input Errors
	ErrInvalidEvent      = errors.New("invalid market event")
	ErrSourceUnavailable = errors.New("event source is unavailable")
	ErrMalformedInput    = errors.New("malformed event input")

	// Database Specific Errors
	ErrNoSnapshot     = fmt.Errorf("no stored snapshot: %w", ErrNotFound)
	ErrDBConnection   = errors.New("database connection error")
	ErrQueryFailed    = errors.New("database query failed")
	ErrUpdateFailed   = errors.New("database update failed")
	ErrDuplicateEntry = errors.New("database record already exists")
)

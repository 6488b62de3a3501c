package domain

import "errors"

// Command failures wrap one of these so callers can classify with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrValidation         = errors.New("validation error")
)

package services

import "errors"

// Business errors surfaced to the caller. The HTTP layer maps these to
// status codes; anything else is treated as an internal error and rolled back.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrForbidden           = errors.New("access denied")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrValidation          = errors.New("validation failed")
)

package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrInstrumentAlreadyExists = errors.New("instrument_already_exists")
	ErrInstrumentNotFound      = errors.New("instrument_not_found")
	ErrNegativeQuantity        = errors.New("negative_quantity")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

package entity

import "errors"

// Domain errors
var (
	// Credential errors
	ErrNoCredentials = errors.New("no session or api credential for chat")
	ErrNoSite        = errors.New("no panel address registered for chat")
	ErrNoCSRFToken   = errors.New("no csrf token in session; login again")

	// Panel response errors
	ErrUnexpectedResponse = errors.New("unexpected panel response")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidExtension = errors.New("invalid file extension")
)

package domain

import "errors"

// Common domain errors
var (
	ErrNotFound             = errors.New("resource not found")
	ErrDuplicateApplication = errors.New("application already exists for this career")
	ErrInvalidTransition    = errors.New("invalid application status transition")
)

package domain

import "errors"

// Common domain errors
var (
	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists is returned when trying to create a resource that already exists
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrValidation is returned when input validation fails
	ErrValidation = errors.New("validation error")
	// ErrUnauthorized is returned when a user is not authorized to perform an action
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when a user is not allowed to perform an action
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidOperation is returned when an action breaks a business rule
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrInvalidArgument is returned when an input is missing or malformed
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict is returned when a concurrent update was lost
	ErrConflict = errors.New("conflict")
)

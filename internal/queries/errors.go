package queries

import "errors"

var (
	// ErrInvalidName is returned when the contact name is missing
	ErrInvalidName = errors.New("name is required")

	// ErrMissingEmail is returned when the contact email is missing
	ErrMissingEmail = errors.New("email is required")

	// ErrInvalidStatus is returned for a status outside the pipeline enum
	ErrInvalidStatus = errors.New("invalid status")

	// ErrQueryNotFound is returned when a query is not found
	ErrQueryNotFound = errors.New("query not found")
)

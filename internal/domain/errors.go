package domain

import "errors"

var (
	// ErrNotFound signals a missing document.
	ErrNotFound = errors.New("not found")
	// ErrInvalidDocuments signals a bulk file that is not a JSON array of objects.
	ErrInvalidDocuments = errors.New("invalid documents")
)

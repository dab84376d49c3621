package engine

import (
	"errors"
	"strconv"
)

// Sentinel errors for engine operations.
var (
	ErrIndexExists = errors.New("engine: index already exists")
	ErrUnavailable = errors.New("engine: unavailable")
)

// Op constants name engine operations for error context and metric labels.
const (
	OpSearch       = "search"
	OpCreateIndex  = "create_index"
	OpAddDocuments = "add_documents"
	OpPing         = "ping"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// StatusError is a non-success answer from the engine. Body holds the raw response.
type StatusError struct {
	Op     string
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return e.Op + ": unexpected status " + strconv.Itoa(e.Status)
}

// Unwrap lets callers treat any non-success answer as ErrUnavailable.
func (e *StatusError) Unwrap() error { return ErrUnavailable }

func isIndexExists(err error) bool {
	return err != nil && errors.Is(err, ErrIndexExists)
}

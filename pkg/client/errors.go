package client

import (
	"errors"
	"strconv"
)

// Sentinel errors. Use errors.Is() to check.
var (
	ErrNotFound  = errors.New("searchgw: not found")
	ErrForbidden = errors.New("searchgw: forbidden")

	// ErrInvalidResponse wraps answers whose body could not be decoded.
	ErrInvalidResponse = errors.New("searchgw: invalid response")
)

// StatusError is an unexpected HTTP answer from the gateway.
type StatusError struct {
	Op     string
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return "searchgw: " + e.Op + ": unexpected status " + strconv.Itoa(e.Status)
}

package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrConflictData       = errors.New("data conflicts with existing data")
	ErrDataNotFound       = errors.New("data not found")
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrInternalError      = errors.New("internal error")

	// ErrValidation is bad caller input, rejected before any external call
	ErrValidation = errors.New("invalid order input")
	// ErrOrderNotFound is a status signal that references a nonexistent order
	ErrOrderNotFound = errors.New("order not found")
	// ErrMissingHandle is a status query before gateway initiation completed
	ErrMissingHandle = errors.New("order has no gateway handle")
	// ErrInvalidCallback is a malformed or unauthenticated gateway notification
	ErrInvalidCallback = errors.New("invalid gateway callback")
	// ErrGatewayUnavailable is a transient gateway failure, retryable by caller
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

// TooManyRequestsError is returned when the gateway throttles the client.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func NewTooManyRequestsError(retryAfter time.Duration) TooManyRequestsError {
	return TooManyRequestsError{RetryAfter: retryAfter}
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// Package apperror defines the error taxonomy shared by the goal service layers.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// CodeInvalidToken marks a DatabaseError caused by an expired or rejected access token.
const CodeInvalidToken = "invalid_token"

var (
	// ErrUnauthenticated is returned when a user-scoped operation has no session.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrGatewayNotConfigured is returned when the conversation API key is missing.
	ErrGatewayNotConfigured = errors.New("conversation API key is not configured")

	// ErrNotFound is returned by single-row lookups that match nothing.
	ErrNotFound = errors.New("record not found")

	// ErrAuthExchange is returned when the auth server rejects a code exchange.
	ErrAuthExchange = errors.New("authorization code exchange failed")

	// ErrAuthUnavailable is returned when the auth server cannot be reached.
	ErrAuthUnavailable = errors.New("auth server unavailable")

	// ErrNoUser is returned when a code exchange yields no user.
	ErrNoUser = errors.New("no user in auth response")
)

// UpstreamError is a non-success response from the conversation service.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return e.Message
}

// DatabaseError is a failed record operation. Code is the SQLSTATE or CodeInvalidToken.
type DatabaseError struct {
	Code    string
	Message string
	Err     error
}

func (e *DatabaseError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (code %s)", e.Message, e.Code)
	}
	return e.Message
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// TimeoutError reports that the goal save budget elapsed before the sequence finished.
type TimeoutError struct {
	Budget time.Duration
	Err    error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("goal save timed out after %s", e.Budget)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// Retryable is always true: a shorter retry of the same save may succeed.
func (e *TimeoutError) Retryable() bool {
	return true
}

// ValidationError is a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsTokenExpired reports whether err carries an expired-token DatabaseError.
func IsTokenExpired(err error) bool {
	var dbErr *DatabaseError
	if !errors.As(err, &dbErr) {
		return false
	}
	return dbErr.Code == CodeInvalidToken
}

// IsTimeout reports whether err is a TimeoutError.
func IsTimeout(err error) bool {
	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr)
}

// HTTPStatus maps an error to the status code handlers respond with.
func HTTPStatus(err error) int {
	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

package merchant

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	// ErrConfiguration is the parent of every client construction error.
	ErrConfiguration = errors.New("invalid client configuration")
	// ErrUnknownEnvironment is returned for environment names other than
	// production and sandbox.
	ErrUnknownEnvironment = fmt.Errorf("%w: unknown environment", ErrConfiguration)

	// ErrValidation is the parent of the local precondition failures below.
	// They are raised before any request is sent.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidAmount indicates an amount outside the range the order allows.
	ErrInvalidAmount = fmt.Errorf("%w: invalid amount", ErrValidation)
	// ErrInvalidOrderState indicates the order's state does not permit the action.
	ErrInvalidOrderState = fmt.Errorf("%w: invalid order state", ErrValidation)

	// ErrNotLoaded is returned when an operation needs a server-assigned id
	// and the entity has none yet.
	ErrNotLoaded = errors.New("not loaded from API")
	// ErrNotSupported marks operations the API client does not implement.
	ErrNotSupported = errors.New("not supported")
)

// APIError is returned for every response whose status is outside [200,300).
type APIError struct {
	StatusCode int
	// ErrorID is the server's errorId, empty when the body did not carry one.
	ErrorID string
	Message string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("merchant api: status %d", e.StatusCode)
	if e.ErrorID != "" {
		msg += fmt.Sprintf(" errorId=%s", e.ErrorID)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// classify turns a failing status and the server's error identifier into
// the error handed back to callers.
func classify(status int, errorID, message string) error {
	return &APIError{StatusCode: status, ErrorID: errorID, Message: message}
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized reports whether err is an APIError with status 401.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// TransportError means the HTTP exchange itself did not complete: a
// timeout, a refused connection, a truncated body.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("merchant transport: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the exchange was cut short by the client timeout
// or the caller's deadline.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// SchemaError is returned when an update names a field the entity does not have.
type SchemaError struct {
	Entity string
	Field  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("merchant: unknown field for %s: %s", e.Entity, e.Field)
}

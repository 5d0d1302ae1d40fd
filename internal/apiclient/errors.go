package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

const unknownErrorMessage = "An unknown error occurred"

// TransportError means no HTTP response was obtained (network unreachable,
// connection reset, unreadable body).
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPError represents a non-2xx API response.
type HTTPError struct {
	Status     int
	StatusText string
	// Payload is the parsed response body, or {"message": StatusText} when
	// the body was not JSON.
	Payload json.RawMessage
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// ServerMessage returns the message field the server put in the payload.
func (e *HTTPError) ServerMessage() string {
	return gjson.GetBytes(e.Payload, "message").String()
}

func newHTTPError(status int, statusText string, payload json.RawMessage) *HTTPError {
	msg := gjson.GetBytes(payload, "message").String()
	if msg == "" {
		msg = statusText
	}
	if msg == "" {
		msg = unknownErrorMessage
	}
	if payload == nil {
		payload, _ = json.Marshal(map[string]string{"message": statusText})
	}
	return &HTTPError{
		Status:     status,
		StatusText: statusText,
		Payload:    payload,
		Message:    msg,
	}
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	return httpErr.Status == http.StatusUnauthorized
}

// ProtocolError means a 2xx response lacked fields the operation requires.
type ProtocolError struct {
	Op     string
	Reason string
}

func (e *ProtocolError) Error() string {
	return e.Op + ": " + e.Reason
}

// ValidationError is a client-side precondition failure raised before any
// network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

package prms

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/prms/console/internal/resource"
)

// APIError is a non-2xx response. Message holds the server-provided text, if
// any, and is what Error returns.
type APIError struct {
	Path       string
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api %s returned status %d", e.Path, e.StatusCode)
}

// NotFound reports a 404 response.
func (e *APIError) NotFound() bool { return e.StatusCode == 404 }

// Unauthorized reports a 401 response, usually an expired session.
func (e *APIError) Unauthorized() bool { return e.StatusCode == 401 }

// TransportError means no usable response arrived: DNS, refused connection,
// TLS, timeout.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("execute request %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the request hit the client deadline.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// ShapeError is a 2xx response whose payload does not match the expected
// contract.
type ShapeError struct {
	Path   string
	Detail string
	Field  string
	Err    error
}

func (e *ShapeError) Error() string {
	msg := fmt.Sprintf("unexpected response from %s: %s", e.Path, e.Detail)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ShapeError) Unwrap() error { return e.Err }

// FieldError is one failed client-side check.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError blocks a request before it is sent.
type ValidationError struct {
	Problems []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.Field+": "+p.Message)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// For returns the message recorded for field, if any.
func (e *ValidationError) For(field string) (string, bool) {
	for _, p := range e.Problems {
		if p.Field == field {
			return p.Message, true
		}
	}
	return "", false
}

const (
	msgOffline    = "Unable to reach the PRMS server. Check your connection and try again."
	msgTimeout    = "The PRMS server did not respond in time. Try again."
	msgShape      = "The server sent an unexpected response."
	msgGeneric    = "Request failed. Try again."
	msgSessionEnd = "Your session has expired. Please log in again."
)

// UserMessage maps err to the text shown in the console. Server messages are
// returned verbatim.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var (
		apiErr   *APIError
		transErr *TransportError
		shapeErr *ShapeError
		valErr   *ValidationError
	)
	switch {
	case errors.Is(err, context.Canceled):
		return "Request cancelled."
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if apiErr.Unauthorized() {
			return msgSessionEnd
		}
		return fmt.Sprintf("Request failed (status %d).", apiErr.StatusCode)
	case errors.As(err, &transErr):
		if transErr.Timeout() {
			return msgTimeout
		}
		return msgOffline
	case errors.As(err, &shapeErr), errors.Is(err, resource.ErrMissingID):
		return msgShape
	case errors.As(err, &valErr):
		if len(valErr.Problems) > 0 {
			return valErr.Problems[0].Message
		}
		return msgGeneric
	default:
		return msgGeneric
	}
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Unauthorized()
}

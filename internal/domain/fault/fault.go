// Package fault defines the closed error taxonomy shared by all
// storegate components. Every failure is classified exactly once, at
// the boundary nearest its origin, into one of four kinds and carried
// unchanged up to the HTTP mapper. No kind is re-classified mid-flight.
package fault

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies the category of a classified failure.
type Kind int

const (
	// KindValidation marks malformed caller input. The message is
	// caller-facing and safe to echo.
	KindValidation Kind = iota
	// KindNotFound marks a missing resource.
	KindNotFound
	// KindUnauthorized marks every authentication or authorization
	// failure regardless of root cause. Distinct internal causes
	// (expired token, bad signature, unknown user) all collapse here
	// so that an unauthenticated prober learns nothing.
	KindUnauthorized
	// KindUnexpected marks configuration or infrastructure failures.
	// The message is internal-only and must never reach the caller.
	KindUnexpected
)

// String returns the kind name for logging.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// Error is a classified failure.
type Error struct {
	Kind Kind
	// Msg is the human-readable description. Echoed to callers only
	// for KindValidation.
	Msg string
	// Err is the wrapped cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a caller-fault error with an echoable message.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// NotFound returns a missing-resource error.
func NotFound() *Error {
	return &Error{Kind: KindNotFound}
}

// Unauthorized returns an access-denied error. The message is kept
// for internal logs only; the HTTP mapper renders a generic body.
func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Msg: msg}
}

// Unexpected wraps an internal failure. The message and cause are
// never rendered to callers.
func Unexpected(msg string, err error) *Error {
	return &Error{Kind: KindUnexpected, Msg: msg, Err: err}
}

// KindOf extracts the kind of a classified error.
// Unclassified errors are treated as KindUnexpected, fail-closed.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnexpected
}

// HTTPStatus maps a classified error to its outward status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// HTTPMessage returns the body text for a classified error.
// Validation messages are caller-supplied-input complaints and safe to
// surface. Everything else gets a fixed generic body: in particular,
// Unexpected text may originate inside credential verification and
// must not leak.
func HTTPMessage(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		switch fe.Kind {
		case KindValidation:
			return fe.Msg
		case KindNotFound:
			return "not found"
		case KindUnauthorized:
			return "unauthorized"
		}
	}
	return "internal error"
}

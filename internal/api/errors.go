package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies where a failure was detected.
type Kind int

const (
	// KindValidation is a local check that failed before any network call.
	KindValidation Kind = iota + 1
	// KindRemote is a non-2xx response from the API.
	KindRemote
	// KindTransport means no response was received.
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRemote:
		return "remote"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// ErrNoToken is returned by Login when the API answers 2xx without a token.
var ErrNoToken = errors.New("login failed: no token returned")

// ErrTokenInvalid is the single failure kind of VerifyToken.
var ErrTokenInvalid = errors.New("token invalid")

// Error is the error type returned by every Client operation.
type Error struct {
	Kind Kind

	// Op names the operation, e.g. "login" or "get todos".
	Op string

	// Status is the HTTP status for KindRemote, 0 otherwise.
	Status int

	// Message is the user-facing text.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindRemote:
		return fmt.Sprintf("%s: %s (%d)", e.Op, e.Message, e.Status)
	case KindTransport:
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		}
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a KindValidation error for a check done before any
// network call.
func Validation(op, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	return kindOf(err) == KindValidation
}

// IsUnauthorized reports whether err (or any error in its chain) is a
// remote 401.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) &&
		apiErr.Kind == KindRemote &&
		apiErr.Status == http.StatusUnauthorized
}

func kindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// Message returns the text to show the user for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNoToken):
		return "Login failed: no token returned"
	case errors.Is(err, ErrTokenInvalid):
		return "Token invalid"
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

package provider

import (
	"errors"
	"fmt"
)

// Error is a coded rejection reported by the identity backend.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provider error: %s", e.Code)
	}
	return fmt.Sprintf("provider error: %s: %s", e.Code, e.Message)
}

// NewError builds a coded provider error.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// CodeOf extracts the provider code from err. ok is false for errors that do
// not carry one.
func CodeOf(err error) (code string, ok bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code, true
	}
	return "", false
}

var (
	// ErrUnavailable reports that the backend could not be reached.
	ErrUnavailable = errors.New("identity provider unavailable")

	// ErrNoSession is returned when an operation needs a signed-in user.
	ErrNoSession = errors.New("no active session")
)

package student

import (
	"errors"
	"fmt"
)

// ErrorKind discriminates service failures.
type ErrorKind string

const (
	KindGeneric       ErrorKind = "generic"
	KindAuthorization ErrorKind = "authorization"
)

// Error is returned by the client for every failed call.
type Error struct {
	Kind    ErrorKind
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// AuthError builds an authorization failure carrying a user-facing message.
func AuthError(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

// IsAuthorization reports whether err is an authorization failure and returns
// its message.
func IsAuthorization(err error) (string, bool) {
	var se *Error
	if errors.As(err, &se) && se.Kind == KindAuthorization {
		return se.Message, true
	}
	return "", false
}

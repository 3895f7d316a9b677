// ABOUTME: Error taxonomy for session operations
// ABOUTME: Sentinels for errors.Is plus a single user-facing message

package session

import (
	"errors"
	"strings"
)

// ErrorKind classifies failures surfaced by the Manager
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNetwork
	KindRejected
)

var (
	// ErrValidation matches client-side input problems; no request was sent
	ErrValidation = errors.New("validation failed")
	// ErrNetwork matches failures to reach the auth service
	ErrNetwork = errors.New("network failure")
	// ErrRejected matches non-2xx answers from the auth service
	ErrRejected = errors.New("rejected by server")
	// ErrRegisteredNotLoggedIn means the account exists but the automatic login failed
	ErrRegisteredNotLoggedIn = errors.New("registered but not logged in")
	// ErrSuperseded means a later login or logout made this login's result stale
	ErrSuperseded = errors.New("login superseded")
)

// Error carries a single user-facing message plus the underlying cause
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets callers match on the kind sentinels with errors.Is
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrRejected:
		return e.Kind == KindRejected
	}
	return false
}

func validationError(op string, problems ...string) *Error {
	return &Error{
		Kind:    KindValidation,
		Op:      op,
		Message: strings.Join(problems, "; "),
	}
}

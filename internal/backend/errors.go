package backend

import (
	"errors"
	"fmt"
)

// Kind classifies a backend failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnreachable
	KindRejected
	KindProtocol
)

func (k Kind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindRejected:
		return "rejected"
	case KindProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks against *Error.
var (
	ErrUnreachable = errors.New("backend unreachable")
	ErrRejected    = errors.New("backend rejected request")
	ErrProtocol    = errors.New("backend protocol error")
)

// Error is a classified backend failure.
type Error struct {
	Kind     Kind
	Provider string
	Status   int    // HTTP status for KindRejected, 0 otherwise
	Body     string // truncated response body, when one was read
	Cause    error
}

func (e *Error) Error() string {
	what := "backend error"
	if s := e.sentinel(); s != nil {
		what = s.Error()
	}
	msg := fmt.Sprintf("%s: %s", e.Provider, what)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches the sentinel corresponding to e.Kind.
func (e *Error) Is(target error) bool {
	s := e.sentinel()
	return s != nil && target == s
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindUnreachable:
		return ErrUnreachable
	case KindRejected:
		return ErrRejected
	case KindProtocol:
		return ErrProtocol
	default:
		return nil
	}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindUnknown
}

// Unreachable wraps cause as a connection-level failure.
func Unreachable(provider string, cause error) *Error {
	return &Error{Kind: KindUnreachable, Provider: provider, Cause: cause}
}

// Rejected reports a non-success response.
func Rejected(provider string, status int, body string) *Error {
	return &Error{Kind: KindRejected, Provider: provider, Status: status, Body: body}
}

// Protocol wraps cause as a malformed-response failure.
func Protocol(provider, body string, cause error) *Error {
	return &Error{Kind: KindProtocol, Provider: provider, Body: body, Cause: cause}
}

// Package fault classifies domain and application errors into the small set of
// kinds the transport layer knows how to report.
package fault

import "errors"

type Kind uint8

const (
	Internal Kind = iota
	NotFound
	Forbidden
	Conflict
	InvalidInput
	Unauthorized
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	case Conflict:
		return "conflict"
	case InvalidInput:
		return "invalid_input"
	case Unauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Error is a classified error. Package level sentinels are declared with New
// and may wrap a cause through Wrap.
type Error struct {
	kind  Kind
	msg   string
	cause error
}

// Kind sentinels match any Error of the same kind with errors.Is.
var (
	ErrNotFound     = &Error{kind: NotFound}
	ErrForbidden    = &Error{kind: Forbidden}
	ErrConflict     = &Error{kind: Conflict}
	ErrInvalidInput = &Error{kind: InvalidInput}
	ErrUnauthorized = &Error{kind: Unauthorized}
	ErrInternal     = &Error{kind: Internal}
)

func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Wrap classifies cause under kind, keeping it reachable through errors.Unwrap.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{kind: kind, msg: msg, cause: cause}
}

func (e *Error) Error() string {
	msg := e.msg
	if msg == "" {
		msg = e.kind.String()
	}
	if e.cause != nil {
		return msg + ": " + e.cause.Error()
	}
	return msg
}

func (e *Error) Kind() Kind { return e.kind }

// Message returns the error text without the wrapped cause.
func (e *Error) Message() string {
	if e.msg == "" {
		return e.kind.String()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.msg == "" && t.cause == nil {
		return t.kind == e.kind
	}
	return false
}

// KindOf reports the kind of the first classified error in err's chain.
// Unclassified errors are Internal.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.kind
	}
	return Internal
}

// MessageOf returns a message safe to show to callers. Internal errors are
// reported generically.
func MessageOf(err error) string {
	var classified *Error
	if errors.As(err, &classified) && classified.kind != Internal {
		return classified.Message()
	}
	return "internal error"
}

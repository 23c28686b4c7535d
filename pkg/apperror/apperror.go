package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind tags an error with the class of failure it represents.
// The HTTP error boundary maps every kind to a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindUnauthorized
	KindNotFound
	KindUpstream
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream"
	case KindConfiguration:
		return "configuration"
	default:
		return "internal"
	}
}

// Status returns the HTTP status code for the kind.
// Upstream failures (media upload) surface as 400 to the caller.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindUpstream:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a failure carrying a kind, a client-facing message and optional field details.
type Error struct {
	Kind    Kind
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validation(msg string) *Error   { return New(KindValidation, msg) }
func Conflict(msg string) *Error     { return New(KindConflict, msg) }
func Unauthorized(msg string) *Error { return New(KindUnauthorized, msg) }
func NotFound(msg string) *Error     { return New(KindNotFound, msg) }

func Upstream(msg string, err error) *Error      { return Wrap(KindUpstream, msg, err) }
func Internal(msg string, err error) *Error      { return Wrap(KindInternal, msg, err) }
func Configuration(msg string, err error) *Error { return Wrap(KindConfiguration, msg, err) }

// WithDetails attaches field-level details (e.g. validation messages).
func (e *Error) WithDetails(d any) *Error {
	e.Details = d
	return e
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == kind
}

// Status maps any error to an HTTP status; untagged errors are 500.
func Status(err error) int {
	if ae, ok := As(err); ok {
		return ae.Kind.Status()
	}
	return http.StatusInternalServerError
}

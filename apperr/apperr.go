// Package apperr defines the error kinds shared by the store, the scoring
// engine, the ingestion workflow and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error so callers can react without string matching.
type Kind string

const (
	KindPrecondition Kind = "precondition"
	KindNotFound     Kind = "not-found"
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindClosed       Kind = "closed"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
)

// Error wraps an underlying error with a kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// Sentinels usable with errors.Is; they match any *Error of the same kind.
var (
	ErrPrecondition = &Error{Kind: KindPrecondition}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrValidation   = &Error{Kind: KindValidation}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrClosed       = &Error{Kind: KindClosed}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrForbidden    = &Error{Kind: KindForbidden}
)

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a bare sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// New builds an *Error with a formatted message.
func New(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches a kind to err. A nil err stays nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain, or "" when
// err carries no kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Package apperr defines the closed set of error kinds the API surfaces.
// Handlers map kinds to HTTP status codes; repositories and services return
// these instead of raw pgx errors so callers can branch with errors.As.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindValidation
	KindConflict
	KindAmbiguousTarget
	KindSelfShare
	KindAlreadyShared
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAmbiguousTarget:
		return "ambiguous_target"
	case KindSelfShare:
		return "self_share"
	case KindAlreadyShared:
		return "already_shared"
	default:
		return "internal"
	}
}

// Error carries a kind plus a user-presentable message. The message is
// structured output for the client to localize, never rendered text.
type Error struct {
	Kind    Kind
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap keeps the underlying cause reachable via errors.Unwrap.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, err: err}
}

func NotFound(msg string) *Error        { return New(KindNotFound, msg) }
func Forbidden(msg string) *Error       { return New(KindForbidden, msg) }
func Validation(msg string) *Error      { return New(KindValidation, msg) }
func Conflict(msg string) *Error        { return New(KindConflict, msg) }
func AmbiguousTarget(msg string) *Error { return New(KindAmbiguousTarget, msg) }
func SelfShare(msg string) *Error       { return New(KindSelfShare, msg) }
func AlreadyShared(msg string) *Error   { return New(KindAlreadyShared, msg) }

// KindOf extracts the kind from any error in the chain, defaulting to
// KindInternal for errors this package does not know about.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a kind to the status code the Fiber error handler returns.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return 404
	case KindForbidden:
		return 403
	case KindValidation, KindSelfShare:
		return 400
	case KindConflict, KindAlreadyShared, KindAmbiguousTarget:
		return 409
	default:
		return 500
	}
}

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness conflict on insert.
	ErrAlreadyExists = errors.New("already exists")
)

// ErrorKind classifies a failure so callers can branch on the cause
// without parsing messages.
type ErrorKind string

const (
	KindEmptyCart          ErrorKind = "empty_cart"
	KindNotAuthenticated   ErrorKind = "not_authenticated"
	KindIdentityUnresolved ErrorKind = "identity_unresolved"
	KindValidationRejected ErrorKind = "validation_rejected"
	KindUnauthorized       ErrorKind = "unauthorized"
	KindNotFound           ErrorKind = "not_found"
	KindServerError        ErrorKind = "server_error"
	KindTransport          ErrorKind = "transport"
	KindStorageCorrupt     ErrorKind = "storage_corrupt"
)

// Error is a classified failure carrying an optional backend-supplied
// detail plus an optional wrapped cause.
type Error struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Detail != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a classified error.
func E(kind ErrorKind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Wrap builds a classified error around a cause.
func Wrap(kind ErrorKind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

// KindOf extracts the classification from err, or empty when err carries
// none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given classification.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

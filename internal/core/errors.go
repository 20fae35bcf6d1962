package core

import (
	"errors"
	"fmt"
)

// ErrorCode classifies domain errors independently of any transport.
// The handler layer maps codes onto RPC status codes; the adapter
// layers map infrastructure failures onto codes.
type ErrorCode int

const (
	ErrorCodeInternal ErrorCode = iota
	ErrorCodeInvalidArgument
	ErrorCodeNotFound
	ErrorCodeAlreadyExists
	ErrorCodePermissionDenied
	ErrorCodeUnauthenticated
	ErrorCodeFailedPrecondition
	ErrorCodeDeadlineExceeded
	ErrorCodeResourceExhausted
	ErrorCodeUnimplemented
	ErrorCodeUnavailable
)

// DomainError is the generic carrier for classified failures crossing
// layer boundaries. Cause, when set, is the underlying infrastructure
// error and is reachable via errors.Unwrap.
type DomainError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// ErrInvalidInput indicates a domain-level input validation failure.
type ErrInvalidInput struct {
	Field   string
	Message string
}

func (e *ErrInvalidInput) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return e.Message
}

// NewNotFound returns the error for a (kind, namespace, name) lookup
// that matched nothing. Recoverable: callers may create the resource
// and retry.
func NewNotFound(kind ResourceKind, namespace, name string) error {
	ns := namespace
	if ns == "" {
		ns = "default"
	}
	return &DomainError{
		Code:    ErrorCodeNotFound,
		Message: fmt.Sprintf("%s %s/%s not found", kind, ns, name),
	}
}

// NewUnimplemented returns the error for an operation a backend
// deliberately does not support.
func NewUnimplemented(op string) error {
	return &DomainError{
		Code:    ErrorCodeUnimplemented,
		Message: fmt.Sprintf("%s is not supported by this backend", op),
	}
}

// IsNotFound reports whether err carries ErrorCodeNotFound.
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

// IsUnimplemented reports whether err carries ErrorCodeUnimplemented.
func IsUnimplemented(err error) bool {
	return hasCode(err, ErrorCodeUnimplemented)
}

func hasCode(err error, code ErrorCode) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}

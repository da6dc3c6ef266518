package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

// RequiredFieldError is the ValidationError returned when `field` is missing.
func RequiredFieldError(field string) error {
	return NewValidationError(
		fmt.Errorf("%s is required", field),
		FieldError{Field: field, Error: requiredText},
	)
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// NotFoundError is returned when a referenced resource does not exist.
type NotFoundError struct {
	Resource string
}

func NewNotFoundError(resource string) error {
	return &NotFoundError{Resource: resource}
}

func (err NotFoundError) Error() string { return err.Resource + " not found" }

// AuthorizationError is returned when the actor does not own the resource it acts upon.
type AuthorizationError struct {
	msg string
}

func NewAuthorizationError(msg string) error {
	return &AuthorizationError{msg: msg}
}

func (err AuthorizationError) Error() string { return err.msg }

// ConflictError is returned when an operation is attempted from a state that does not allow it.
type ConflictError struct {
	msg string
}

func NewConflictError(msg string) error {
	return &ConflictError{msg: msg}
}

func (err ConflictError) Error() string { return err.msg }

// RejectionError is returned when a request was valid but nothing could be done with it.
// Code tells the kinds of rejection apart.
type RejectionError struct {
	Code string
	msg  string
}

func NewRejectionError(code, msg string) error {
	return &RejectionError{Code: code, msg: msg}
}

func (err RejectionError) Error() string { return err.msg }

// TransientError wraps storage contention errors (e.g. serialization failures).
// The whole operation that produced it may be retried.
type TransientError struct {
	Err error
}

func NewTransientError(err error) error {
	return &TransientError{Err: err}
}

func (err TransientError) Error() string {
	if err.Err == nil {
		return "transient store error"
	}
	return "transient store error: " + err.Err.Error()
}

func (err TransientError) Unwrap() error { return err.Err }

func IsTransient(err error) bool {
	_, ok := errors.Cause(err).(*TransientError)
	return ok
}

func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}

package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrorKind classifies domain errors for the HTTP layer.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindForbidden  ErrorKind = "forbidden"
	KindConflict   ErrorKind = "conflict"
	KindAuth       ErrorKind = "unauthorized"
)

// AppError is a domain error that is shown to the caller as is.
type AppError struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string
}

func (e *AppError) Error() string {
	return e.Message
}

func ValidationError(msg string, fields map[string]string) error {
	return &AppError{Kind: KindValidation, Message: msg, Fields: fields}
}

// FieldError is a ValidationError for a single field.
func FieldError(field, msg string) error {
	return ValidationError("Validation failed!", map[string]string{field: msg})
}

func NotFound(msg string) error {
	return &AppError{Kind: KindNotFound, Message: msg}
}

func Forbidden(msg string) error {
	return &AppError{Kind: KindForbidden, Message: msg}
}

func Conflict(msg string) error {
	return &AppError{Kind: KindConflict, Message: msg}
}

func Unauthorized(msg string) error {
	return &AppError{Kind: KindAuth, Message: msg}
}

// ErrResubmissionNotAllowed is returned when a task refuses a second submission.
var ErrResubmissionNotAllowed = Conflict("Resubmission not allowed")

// AsAppError unwraps err into an *AppError if it is one.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Kind == kind
}

// notFoundOr maps gorm.ErrRecordNotFound to a NotFound error and wraps anything else.
func notFoundOr(err error, msg, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(msg)
	}
	return fmt.Errorf("%s: %w", op, err)
}

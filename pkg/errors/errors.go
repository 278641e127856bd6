package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors. Business-rule rejections are recoverable, user-facing
// outcomes: public operations return them as values, never panic.
var (
	ErrInvalidStudent      = New("INVALID_STUDENT", http.StatusBadRequest, "student identifier is required")
	ErrPrerequisitesNotMet = New("PREREQUISITES_NOT_MET", http.StatusUnprocessableEntity, "prerequisites not met")
	ErrScheduleConflict    = New("SCHEDULE_CONFLICT", http.StatusConflict, "schedule conflict with an enrolled course")
	ErrMaxUnitsExceeded    = New("MAX_UNITS_EXCEEDED", http.StatusUnprocessableEntity, "maximum units per semester exceeded")
	ErrAlreadyEnrolled     = New("ALREADY_ENROLLED", http.StatusConflict, "already enrolled in course")
	ErrNotFound            = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrPersistence         = New("PERSISTENCE_ERROR", http.StatusServiceUnavailable, "failed to persist enrollment state")
	ErrValidation          = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrForbidden           = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrInternal            = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// ByCode resolves a predefined error by its code, falling back to
// ErrInternal for unknown codes.
func ByCode(code string) *Error {
	for _, e := range []*Error{
		ErrInvalidStudent, ErrPrerequisitesNotMet, ErrScheduleConflict,
		ErrMaxUnitsExceeded, ErrAlreadyEnrolled, ErrNotFound,
		ErrPersistence, ErrValidation, ErrForbidden,
	} {
		if e.Code == code {
			return e
		}
	}
	return ErrInternal
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

package domain

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeValidation  ErrorCode = "validation_failed"
	CodeNotFound    ErrorCode = "not_found"
	CodePersistence ErrorCode = "persistence_failed"
	CodeAudit       ErrorCode = "audit_failed"
)

// Error is the error type crossing package boundaries. Two Errors match under
// errors.Is when their codes match.
type Error struct {
	Code    ErrorCode
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

var (
	ErrValidation  = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrNotFound    = &Error{Code: CodeNotFound, Message: "not found"}
	ErrPersistence = &Error{Code: CodePersistence, Message: "persistence failed"}
	ErrAudit       = &Error{Code: CodeAudit, Message: "audit failed"}
)

// Validationf builds a validation error for field.
func Validationf(field, format string, args ...any) error {
	return &Error{Code: CodeValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

func NotFound(kind, id string) error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", kind, id)}
}

// Persistence wraps a storage failure. Domain errors pass through unchanged.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Code: CodePersistence, Message: op, Err: err}
}

func Audit(op string, err error) error {
	return &Error{Code: CodeAudit, Message: op, Err: err}
}

// CodeOf returns the code of the first domain error in err's chain.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// FieldOf returns the offending field of a validation error.
func FieldOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Field
	}
	return ""
}

// Package domainerrors defines coded errors for the service layer. Stores
// return sentinel errors (pkg/platform/sentinel); services translate them into
// these coded errors; the HTTP layer maps codes onto status lines. Codes are
// stable machine-readable strings and safe to expose to clients.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error.
type Code string

const (
	CodeValidation         Code = "validation"
	CodeInvalidInput       Code = "invalid_input"
	CodeBadRequest         Code = "bad_request"
	CodeInvariantViolation Code = "invariant_violation"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeTimeout            Code = "timeout"
	CodeUnavailable        Code = "unavailable"
	CodeInternal           Code = "internal"
)

// Error is a coded domain error. Reason carries an optional stable
// machine-readable kind (e.g. "invalid_tenant") that is finer grained than the
// code and survives message rewording.
type Error struct {
	Code    Code
	Reason  string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports equality by code and message so tests can compare constructed
// errors with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New builds a domain error with a code and human message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewWithReason builds a domain error carrying a stable reason kind.
func NewWithReason(code Code, reason, message string) *Error {
	return &Error{Code: code, Reason: reason, Message: message}
}

// Wrap annotates err with a code and message while keeping the cause chain.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}

// Is is shorthand for HasCode, reading naturally at call sites.
func Is(err error, code Code) bool { return HasCode(err, code) }

// ReasonOf returns the stable reason of err, falling back to its code.
func ReasonOf(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return string(CodeInternal)
	}
	if e.Reason != "" {
		return e.Reason
	}
	return string(e.Code)
}

// ToHTTPStatus maps a code to an HTTP status. Unknown codes map to 500 so a
// missed mapping fails loudly rather than leaking success.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeInvalidInput, CodeBadRequest, CodeInvariantViolation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Package apperr carries the error taxonomy of the progress engine together
// with the HTTP status each kind maps to.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation       = "validation_error"
	CodeNotFound         = "not_found"
	CodeStoreUnavailable = "store_unavailable"
	CodeUnauthorized     = "unauthorized"
	CodeForbidden        = "forbidden"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// Validation rejects input before anything is written.
func Validation(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, CodeValidation, fmt.Errorf(format, args...))
}

func NotFound(format string, args ...interface{}) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf(format, args...))
}

// Transient marks a durable-store failure. It is surfaced as-is; nothing in
// the core retries it. Errors that already carry a kind are returned unchanged.
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return New(http.StatusServiceUnavailable, CodeStoreUnavailable, fmt.Errorf("%s: %w", op, err))
}

// StatusOf returns the HTTP status for err, 500 when it carries no kind.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}

func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

func IsCode(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}

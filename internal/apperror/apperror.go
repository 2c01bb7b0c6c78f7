// Package apperror defines the typed operational error used across the
// service layer.  Handlers never build HTTP error responses themselves:
// services return an *Error carrying the status code and user-facing
// message, and the centralized error handler shapes the envelope.
package apperror

import (
	"fmt"
	"net/http"
)

// FieldError describes one invalid request field, mirrored verbatim into
// the response envelope's errors array.
type FieldError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error is an operational error with an HTTP status.  Message is safe to
// show to API consumers.
type Error struct {
	Status  int
	Message string
	Fields  []FieldError
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// New builds an operational error with an arbitrary status.
func New(status int, format string, args ...interface{}) *Error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...)}
}

// BadRequest flags a validation or business-rule violation (400).
func BadRequest(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, format, args...)
}

// Unauthorized flags missing or invalid credentials (401).
func Unauthorized(format string, args ...interface{}) *Error {
	return New(http.StatusUnauthorized, format, args...)
}

// Forbidden flags an authorization failure (403).
func Forbidden(format string, args ...interface{}) *Error {
	return New(http.StatusForbidden, format, args...)
}

// NotFound flags a missing resource (404).
func NotFound(format string, args ...interface{}) *Error {
	return New(http.StatusNotFound, format, args...)
}

// Conflict flags a uniqueness or state conflict (409).
func Conflict(format string, args ...interface{}) *Error {
	return New(http.StatusConflict, format, args...)
}

// WithFields attaches field-level details to the error and returns it.
func (e *Error) WithFields(fields ...FieldError) *Error {
	e.Fields = append(e.Fields, fields...)
	return e
}

package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors - match with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// ConflictError carries details about the resource an operation collided
// with, so handlers can return the existing resource alongside the 409.
type ConflictError struct {
	Message      string
	ResourceType string // issue, workspace, bookmark, ...
	ResourceID   string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode maps the error to its HTTP status.
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Validationf wraps a formatted message with ErrValidation for errors.Is.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf wraps a formatted message with ErrNotFound for errors.Is.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

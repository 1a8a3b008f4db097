package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError provides a structured error that can be rendered to API consumers.
// Meta carries extra fields (such as the skill name or port) that are merged
// into the JSON error body.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	StatusCode int            `json:"-"`
	Internal   error          `json:"-"`
	Meta       map[string]any `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}

	return e.Message
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// WithInternal returns a copy of the AppError with an attached internal error.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Internal = err
	return &cpy
}

// WithMeta returns a copy of the AppError carrying the supplied response fields.
func (e *AppError) WithMeta(meta map[string]any) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Meta = meta
	return &cpy
}

// Common errors exposed to the rest of the application.
var (
	ErrValidation = &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    "Invalid request payload",
		StatusCode: http.StatusBadRequest,
	}

	ErrSkillNotFound = &AppError{
		Code:       "SKILL_NOT_FOUND",
		Message:    "Skill not found",
		StatusCode: http.StatusNotFound,
	}

	ErrUpstreamOffline = &AppError{
		Code:       "UPSTREAM_OFFLINE",
		Message:    "Skill server offline",
		StatusCode: http.StatusServiceUnavailable,
	}

	ErrExecutionTimeout = &AppError{
		Code:       "EXECUTION_TIMEOUT",
		Message:    "Execution failed",
		StatusCode: http.StatusInternalServerError,
	}

	ErrStore = &AppError{
		Code:       "STORE_ERROR",
		Message:    "Database error",
		StatusCode: http.StatusInternalServerError,
	}

	ErrInternalServer = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}
)

// New builds a new application error with the provided metadata.
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap turns any error into an AppError while keeping the original error for logging.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   err,
	}
}

// FromError converts a generic error into an AppError, defaulting to ErrInternalServer.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return ErrInternalServer.WithInternal(err)
}

// NewBadRequest wraps validation failures with a caller-facing message.
func NewBadRequest(message string) *AppError {
	return &AppError{
		Code:       ErrValidation.Code,
		Message:    message,
		StatusCode: ErrValidation.StatusCode,
	}
}

package http

import (
	"fmt"
	"net/http"
)

// AppError is an error that knows which HTTP status it should surface
// as. AppErrorResponse picks it out of a wrapped chain via errors.As.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError builds an AppError with an explicit status.
func NewAppError(code, field, message string, status int) *AppError {
	return &AppError{Code: code, Field: field, Message: message, Status: status}
}

// InternalError builds a 500 AppError wrapping the cause.
func InternalError(message string, err error) *AppError {
	ae := NewAppError("ERR_INTERNAL", "", message, http.StatusInternalServerError)
	ae.Err = err
	return ae
}

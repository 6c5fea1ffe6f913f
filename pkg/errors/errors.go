package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents a client-side error surfaced to a screen
type AppError struct {
	Code     ErrorCode `json:"code"`
	Message  string    `json:"message"`
	Messages []string  `json:"messages,omitempty"`
	Status   int       `json:"status,omitempty"`
	Err      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrConnectivity
	ErrValidation
	ErrUnknown
)

// User-facing messages
const (
	MsgConnectivity = "There was an error connecting to the backend."
	MsgUnknown      = "An unknown error occurred."
	MsgValidation   = "The request was rejected."
)

// Connectivity is returned when no response was received at all.
func Connectivity(err error) *AppError {
	return &AppError{
		Code:    ErrConnectivity,
		Message: MsgConnectivity,
		Err:     err,
	}
}

// Validation carries the backend-supplied error list, joined by newlines.
func Validation(status int, messages []string) *AppError {
	msg := strings.Join(messages, "\n")
	if msg == "" {
		msg = MsgValidation
	}
	return &AppError{
		Code:     ErrValidation,
		Message:  msg,
		Messages: messages,
		Status:   status,
	}
}

// Unknown is returned when a failure body could not be interpreted.
func Unknown(status int, err error) *AppError {
	return &AppError{
		Code:    ErrUnknown,
		Message: MsgUnknown,
		Status:  status,
		Err:     err,
	}
}

// NotFound marks a lookup that resolved to absence.
func NotFound(resource string, status int) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  status,
	}
}

// Is reports whether err is an AppError with the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Message returns the text a screen should render for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// WithCause attaches the underlying error, usually a domain sentinel
func (e *AppError) WithCause(cause error) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Cause:   cause,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the code of the outermost AppError in the chain, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid        = "CONFIG_INVALID"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeHorizonMismatch      = "HORIZON_MISMATCH"
	CodeUnsupportedOperation = "UNSUPPORTED_OPERATION"
	CodeShapeMismatch        = "SHAPE_MISMATCH"
	CodeWorkbookError        = "WORKBOOK_ERROR"
	CodeInternalError        = "INTERNAL_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func HorizonMismatch(message string) *AppError {
	return New(CodeHorizonMismatch, message)
}

func UnsupportedOperation(op string) *AppError {
	return New(CodeUnsupportedOperation, fmt.Sprintf("wrong operation %q, allowed only + - * /", op))
}

func ShapeMismatch(message string) *AppError {
	return New(CodeShapeMismatch, message)
}

func WorkbookError(path string, cause error) *AppError {
	return &AppError{
		Code:    CodeWorkbookError,
		Message: fmt.Sprintf("workbook %s", path),
		Cause:   cause,
	}
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies application errors.
type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "validation_error"
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypeProcessing      ErrorType = "processing_error"
	ErrorTypeStorage         ErrorType = "storage_error"
	ErrorTypeExternalService ErrorType = "external_service_error"
	ErrorTypeConflict        ErrorType = "conflict"
	ErrorTypeTimeout         ErrorType = "timeout"
)

// AppError carries an error type and a user-facing code alongside the cause.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Code    string
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

// NewAppError creates an AppError with a derived code.
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     cause,
		Code:    codeFor(errType),
	}
}

func NewValidationError(message string, cause error) *AppError {
	return NewAppError(ErrorTypeValidation, message, cause)
}

func NewNotFoundError(message string, cause error) *AppError {
	return NewAppError(ErrorTypeNotFound, message, cause)
}

func NewProcessingError(message string, cause error) *AppError {
	return NewAppError(ErrorTypeProcessing, message, cause)
}

func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrorTypeStorage, message, cause)
}

func NewExternalServiceError(message string, cause error) *AppError {
	return NewAppError(ErrorTypeExternalService, message, cause)
}

func NewConflictError(message string, cause error) *AppError {
	return NewAppError(ErrorTypeConflict, message, cause)
}

func isType(err error, t ErrorType) bool {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type == t
	}
	return false
}

func IsValidationError(err error) bool      { return isType(err, ErrorTypeValidation) }
func IsNotFoundError(err error) bool        { return isType(err, ErrorTypeNotFound) }
func IsProcessingError(err error) bool      { return isType(err, ErrorTypeProcessing) }
func IsStorageError(err error) bool         { return isType(err, ErrorTypeStorage) }
func IsExternalServiceError(err error) bool { return isType(err, ErrorTypeExternalService) }
func IsConflictError(err error) bool        { return isType(err, ErrorTypeConflict) }

func codeFor(errType ErrorType) string {
	switch errType {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeProcessing:
		return "PROCESSING_ERROR"
	case ErrorTypeStorage:
		return "STORAGE_ERROR"
	case ErrorTypeExternalService:
		return "EXTERNAL_SERVICE_ERROR"
	case ErrorTypeConflict:
		return "CONFLICT"
	case ErrorTypeTimeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN_ERROR"
	}
}

// WrapError preserves the type and code of an existing AppError while
// prefixing context, or wraps a plain error with the given type.
func WrapError(err error, message string, errType ErrorType) error {
	if err == nil {
		return nil
	}

	var appError *AppError
	if errors.As(err, &appError) {
		return &AppError{
			Type:    appError.Type,
			Message: fmt.Sprintf("%s: %s", message, appError.Message),
			Err:     appError,
			Code:    appError.Code,
		}
	}
	return NewAppError(errType, message, err)
}

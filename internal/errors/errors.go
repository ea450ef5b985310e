package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

const (
	// Validation
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeMissingRequired ErrorCode = "MISSING_REQUIRED"

	// Payment gating
	ErrCodePaymentRequired ErrorCode = "PAYMENT_REQUIRED"
	ErrCodeInvalidPayment  ErrorCode = "INVALID_PAYMENT"
	ErrCodePaymentExpired  ErrorCode = "PAYMENT_EXPIRED"

	// Resource
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// Generation
	ErrCodeFeatureDisabled ErrorCode = "FEATURE_DISABLED"
	ErrCodeUpstream        ErrorCode = "UPSTREAM_ERROR"
	ErrCodeQRGeneration    ErrorCode = "QR_GENERATION_ERROR"

	// Rate limiting
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"

	// Internal
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// AppError is a structured error that can be returned to clients
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause adds a cause to the error
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Common error constructors

func MissingRequired(field string) *AppError {
	return New(ErrCodeMissingRequired, fmt.Sprintf("%s is required", field))
}

func ValidationError(message string) *AppError {
	return New(ErrCodeValidation, message)
}

func PaymentRequired() *AppError {
	return New(ErrCodePaymentRequired, "Payment required")
}

func InvalidPayment() *AppError {
	return New(ErrCodeInvalidPayment, "Payment not valid")
}

func PaymentExpired() *AppError {
	return New(ErrCodePaymentExpired, "Payment session has expired")
}

func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

func FeatureDisabled(message string) *AppError {
	return New(ErrCodeFeatureDisabled, message)
}

func Upstream(message string, cause error) *AppError {
	return Wrap(ErrCodeUpstream, message, cause)
}

func QRGeneration(cause error) *AppError {
	return Wrap(ErrCodeQRGeneration, "Failed to generate QR image", cause)
}

func RateLimitExceeded() *AppError {
	return New(ErrCodeRateLimitExceeded, "Rate limit exceeded")
}

func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetCode returns the error code if the error is an AppError, otherwise returns ErrCodeInternal
func GetCode(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

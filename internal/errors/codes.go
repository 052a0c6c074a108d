package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode classifies a failure for the chat loop and the HTTP boundary.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates a caller-supplied value violates a domain constraint.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeNotFound indicates the referenced entity does not exist for this user.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeTransport indicates an external module was unreachable or timed out.
	ErrCodeTransport ErrorCode = "TRANSPORT"
	// ErrCodeStore indicates the persistence layer itself failed.
	ErrCodeStore ErrorCode = "STORE"
	// ErrCodeUnauthorized indicates authentication failure.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeRateLimitExceeded indicates rate limit has been exceeded.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeLLMUnavailable indicates the LLM service is not available.
	ErrCodeLLMUnavailable ErrorCode = "LLM_UNAVAILABLE"
)

// Error is a structured error carrying a code.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Validation creates an invalid argument error.
func Validation(format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a not found error for the named entity.
func NotFound(entity string) *Error {
	return &Error{Code: ErrCodeNotFound, Message: entity + " not found"}
}

// Transport creates a transport error.
func Transport(msg string, cause error) *Error {
	return &Error{Code: ErrCodeTransport, Message: msg, Cause: cause}
}

// Store marks a persistence failure.
func Store(msg string, cause error) *Error {
	return &Error{Code: ErrCodeStore, Message: msg, Cause: cause}
}

// Unauthorized creates an unauthorized error.
func Unauthorized(msg string) *Error {
	return &Error{Code: ErrCodeUnauthorized, Message: msg}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string) *Error {
	return &Error{Code: ErrCodeRateLimitExceeded, Message: msg}
}

// LLMUnavailable creates an LLM unavailable error.
func LLMUnavailable(msg string, cause error) *Error {
	return &Error{Code: ErrCodeLLMUnavailable, Message: msg, Cause: cause}
}

// Wrap wraps an existing error with a code.
func Wrap(cause error, code ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg, Cause: cause}
}

// CodeOf extracts the code of the first *Error in err's chain.
// Returns the empty code if there is none.
func CodeOf(err error) ErrorCode {
	var coded *Error
	if stderrors.As(err, &coded) {
		return coded.Code
	}
	return ""
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// MessageOf returns the message of a coded error, or err.Error() otherwise.
func MessageOf(err error) string {
	var coded *Error
	if stderrors.As(err, &coded) {
		return coded.Message
	}
	return err.Error()
}

package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Common sentinel errors for quick checks.
var (
	// ErrNotFound is matched by any not-found ResponseError.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is matched by any 401 ResponseError.
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is the base interface for all custom errors in the system.
type Error interface {
	error
	// Code returns the error code
	Code() string
	// Message returns the human-readable error message
	Message() string
	// Unwrap returns the underlying cause
	Unwrap() error
}

// BaseError provides a foundation for all typed errors.
type BaseError struct {
	code    string
	message string
	cause   error
	stack   []uintptr
}

// Error implements the error interface.
func (e *BaseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code returns the error code.
func (e *BaseError) Code() string {
	return e.code
}

// Message returns the error message.
func (e *BaseError) Message() string {
	return e.message
}

// Unwrap returns the underlying cause.
func (e *BaseError) Unwrap() error {
	return e.cause
}

// Stack returns the captured stack trace.
func (e *BaseError) Stack() []uintptr {
	return e.stack
}

// captureStack captures the current stack trace.
func captureStack(skip int) []uintptr {
	const maxDepth = 32
	stack := make([]uintptr, maxDepth)
	n := runtime.Callers(skip+2, stack)
	return stack[:n]
}

// StackTrace returns a formatted stack trace string.
func (e *BaseError) StackTrace() string {
	if len(e.stack) == 0 {
		return ""
	}

	var buf strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			fmt.Fprintf(&buf, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		}
		if !more {
			break
		}
	}
	return buf.String()
}

// ResponseError is the single failure kind produced by the remote client.
// It carries whatever the service attached to the failed response.
type ResponseError struct {
	*BaseError
	URL     string
	Status  int
	Data    map[string]any
	IsAbort bool
}

// NewResponseError creates a ResponseError for a request to url that ended with
// the given HTTP status. Status 0 marks a transport failure; cause is kept as the
// unwrap target.
func NewResponseError(url string, status int, message string, data map[string]any, cause error) *ResponseError {
	if message == "" {
		if status == 0 {
			message = "something went wrong while processing your request"
		} else {
			message = fmt.Sprintf("request failed with status %d", status)
		}
	}
	if data == nil {
		data = map[string]any{}
	}
	return &ResponseError{
		BaseError: &BaseError{
			code:    CodeFromStatus(status),
			message: message,
			cause:   cause,
			stack:   captureStack(1),
		},
		URL:    url,
		Status: status,
		Data:   data,
	}
}

// Aborted marks the error as caused by request cancellation.
func (e *ResponseError) Aborted() *ResponseError {
	e.IsAbort = true
	e.code = CodeCancelled
	return e
}

// Serialization marks the error as a failure to encode the request or decode
// the response, as opposed to a transport or service failure.
func (e *ResponseError) Serialization() *ResponseError {
	e.code = CodeSerializationError
	return e
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	if e.Status == 0 {
		return e.BaseError.Error()
	}
	return fmt.Sprintf("%d %s", e.Status, e.BaseError.Error())
}

// Is lets errors.Is match the package sentinels against the response status.
func (e *ResponseError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == 404
	case ErrUnauthorized:
		return e.Status == 401
	}
	return false
}

// FieldErrors returns the per-field validation payload the service attached,
// keyed by field name. Nil when the failure was not a validation rejection.
func (e *ResponseError) FieldErrors() map[string]string {
	out := map[string]string{}
	for field, raw := range e.Data {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if msg, ok := entry["message"].(string); ok {
			out[field] = msg
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Wrap wraps an error with additional context.
// If the error is already one of our custom types, it preserves the code.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	code := CodeInternal
	var e Error
	if errors.As(err, &e) {
		code = e.Code()
	}
	return &BaseError{
		code:    code,
		message: message,
		cause:   err,
		stack:   captureStack(1),
	}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

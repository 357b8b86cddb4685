package errors

import "net/http"

// Error codes for categorizing remote failures.
const (
	// CodeOK indicates success (not an error).
	CodeOK = "OK"

	// CodeCancelled indicates the request was aborted before a response arrived.
	CodeCancelled = "CANCELLED"

	// CodeNetworkError indicates the service could not be reached.
	CodeNetworkError = "NETWORK_ERROR"

	// CodeValidation indicates the service rejected the request payload.
	CodeValidation = "VALIDATION_ERROR"

	// CodeUnauthorized indicates authentication is required or failed.
	CodeUnauthorized = "UNAUTHORIZED"

	// CodeForbidden indicates the authenticated user lacks permission.
	CodeForbidden = "FORBIDDEN"

	// CodeNotFound indicates a record or collection was not found.
	CodeNotFound = "NOT_FOUND"

	// CodeConflict indicates a resource conflict (e.g., duplicate key).
	CodeConflict = "CONFLICT"

	// CodeRateLimit indicates rate limit was exceeded.
	CodeRateLimit = "RATE_LIMIT_EXCEEDED"

	// CodeServiceUnavailable indicates the service answered with a 5xx.
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"

	// CodeSerializationError indicates a request or response body could not be encoded.
	CodeSerializationError = "SERIALIZATION_ERROR"

	// CodeInternal indicates an unexpected failure.
	CodeInternal = "INTERNAL"
)

// ErrorCategory represents a high-level error category.
type ErrorCategory string

const (
	// CategoryClient indicates a client-side error (4xx).
	CategoryClient ErrorCategory = "CLIENT_ERROR"

	// CategoryServer indicates a server-side error (5xx).
	CategoryServer ErrorCategory = "SERVER_ERROR"

	// CategoryNetwork indicates a network-related error.
	CategoryNetwork ErrorCategory = "NETWORK_ERROR"

	// CategoryAuth indicates an authentication/authorization error.
	CategoryAuth ErrorCategory = "AUTH_ERROR"
)

// CodeFromStatus maps an HTTP status returned by the service to an error code.
// A zero status means no response was received.
func CodeFromStatus(status int) string {
	switch {
	case status == 0:
		return CodeNetworkError
	case status == http.StatusBadRequest:
		return CodeValidation
	case status == http.StatusUnauthorized:
		return CodeUnauthorized
	case status == http.StatusForbidden:
		return CodeForbidden
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusConflict:
		return CodeConflict
	case status == http.StatusTooManyRequests:
		return CodeRateLimit
	case status >= 500:
		return CodeServiceUnavailable
	case status >= 400:
		return CodeValidation
	default:
		return CodeInternal
	}
}

// GetCategory returns the category for an error code.
func GetCategory(code string) ErrorCategory {
	switch code {
	case CodeValidation, CodeNotFound, CodeConflict, CodeRateLimit:
		return CategoryClient

	case CodeUnauthorized, CodeForbidden:
		return CategoryAuth

	case CodeNetworkError, CodeCancelled:
		return CategoryNetwork

	default:
		return CategoryServer
	}
}

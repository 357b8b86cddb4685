package errors

import "errors"

// AsResponse extracts the ResponseError from err's chain.
func AsResponse(err error) (*ResponseError, bool) {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr, true
	}
	return nil, false
}

// IsNotFound checks if an error indicates a record was not found.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized checks if an error indicates missing or rejected credentials.
func IsUnauthorized(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrUnauthorized)
}

// IsValidation checks if the service rejected the request payload.
func IsValidation(err error) bool {
	return GetErrorCode(err) == CodeValidation
}

// IsAbort checks if the request was cancelled before completing.
func IsAbort(err error) bool {
	respErr, ok := AsResponse(err)
	return ok && respErr.IsAbort
}

// StatusCode returns the HTTP status attached to err, or 0 when there is none.
func StatusCode(err error) int {
	if respErr, ok := AsResponse(err); ok {
		return respErr.Status
	}
	return 0
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	if err == nil {
		return CodeOK
	}

	var customErr Error
	if errors.As(err, &customErr) {
		return customErr.Code()
	}
	return CodeInternal
}

// GetErrorMessage extracts a human-readable message from an error.
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var customErr Error
	if errors.As(err, &customErr) {
		return customErr.Message()
	}

	return err.Error()
}

// Cause returns the underlying cause of an error.
// It unwraps the error chain until it finds the root cause.
func Cause(err error) error {
	for {
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		underlying := unwrapper.Unwrap()
		if underlying == nil {
			return err
		}
		err = underlying
	}
}

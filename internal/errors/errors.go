// Package errors defines the error taxonomy for calls against the remote
// airdrop service. Transport-level failures and non-2xx responses are kept
// distinct because only one status code (409 during login) carries domain
// meaning; everything else is tolerated per pipeline step.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// NetworkError represents a transport-level failure reaching the remote
// service (DNS, connect, timeout). Never retryable by the batch loop.
type NetworkError struct {
	Operation string
	Cause     error
}

// Error implements the error interface
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Cause)
}

// Unwrap returns the underlying cause
func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// NewNetworkError creates a network error
func NewNetworkError(operation string, cause error) *NetworkError {
	return &NetworkError{Operation: operation, Cause: cause}
}

// ServiceError represents a non-2xx response from the remote service
type ServiceError struct {
	Operation  string
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s failed with status %d: %s", e.Operation, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s failed with status %d", e.Operation, e.StatusCode)
}

// NewServiceError creates a service error
func NewServiceError(operation string, statusCode int, body string) *ServiceError {
	return &ServiceError{Operation: operation, StatusCode: statusCode, Body: body}
}

// IsConflict reports whether err is a ServiceError with HTTP 409. The login
// endpoint answers 409 when the referral code is invalid or conflicting; it
// is the single status elevated to domain significance.
func IsConflict(err error) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr) && svcErr.StatusCode == http.StatusConflict
}

// IsNetwork reports whether err is (or wraps) a NetworkError
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

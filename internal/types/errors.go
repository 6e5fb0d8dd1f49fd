package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for travel-buddy errors.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
)

// Database error codes
const (
	DB_OPEN_FAILED      ErrorCode = "DB_OPEN_FAILED"
	DB_MIGRATION_FAILED ErrorCode = "DB_MIGRATION_FAILED"
	DB_QUERY_FAILED     ErrorCode = "DB_QUERY_FAILED"
	DB_TX_FAILED        ErrorCode = "DB_TX_FAILED"
)

// Trip error codes
const (
	TRIP_NOT_FOUND    ErrorCode = "TRIP_NOT_FOUND"
	TRIP_SPEC_INVALID ErrorCode = "TRIP_SPEC_INVALID"
)

// Generative gateway error codes. Transport failures and malformed output
// are kept distinct so callers can choose retry-as-is vs. retry-with-stricter
// instructions vs. heuristic fallback.
const (
	LLM_TRANSPORT_FAILED ErrorCode = "LLM_TRANSPORT_FAILED"
	LLM_TIMEOUT          ErrorCode = "LLM_TIMEOUT"
	LLM_RATE_LIMITED     ErrorCode = "LLM_RATE_LIMITED"
	LLM_UNAUTHORIZED     ErrorCode = "LLM_UNAUTHORIZED"
	LLM_MALFORMED_OUTPUT ErrorCode = "LLM_MALFORMED_OUTPUT"
)

// Collaborator error codes
const (
	CATALOG_QUERY_FAILED        ErrorCode = "CATALOG_QUERY_FAILED"
	TRAVEL_ESTIMATE_UNAVAILABLE ErrorCode = "TRAVEL_ESTIMATE_UNAVAILABLE"
)

// Planning error codes
const (
	PLAN_IN_PROGRESS  ErrorCode = "PLAN_IN_PROGRESS"
	PLAN_STAGE_FAILED ErrorCode = "PLAN_STAGE_FAILED"
	PLAN_CANCELLED    ErrorCode = "PLAN_CANCELLED"
	PERSIST_FAILED    ErrorCode = "PERSIST_FAILED"
	LOCK_UNAVAILABLE  ErrorCode = "LOCK_UNAVAILABLE"
)

// TripError represents a structured error with error code, message, and
// optional cause. It supports error wrapping and retryability hints.
type TripError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *TripError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain inspection.
func (e *TripError) Unwrap() error {
	return e.Cause
}

// Is matches errors by code so errors.Is can compare sentinel TripErrors.
func (e *TripError) Is(target error) bool {
	var te *TripError
	if errors.As(target, &te) {
		return e.Code == te.Code
	}
	return false
}

// NewError creates a new non-retryable TripError.
func NewError(code ErrorCode, message string) *TripError {
	return &TripError{Code: code, Message: message}
}

// NewRetryableError creates a new retryable TripError. Use this for
// transient failures that may succeed on retry (timeouts, rate limits).
func NewRetryableError(code ErrorCode, message string) *TripError {
	return &TripError{Code: code, Message: message, Retryable: true}
}

// WrapError creates a non-retryable TripError wrapping an existing error.
func WrapError(code ErrorCode, message string, cause error) *TripError {
	return &TripError{Code: code, Message: message, Cause: cause}
}

// WrapRetryableError creates a retryable TripError wrapping an existing error.
func WrapRetryableError(code ErrorCode, message string, cause error) *TripError {
	return &TripError{Code: code, Message: message, Retryable: true, Cause: cause}
}

// CodeOf extracts the ErrorCode from an error chain, or "" if the chain
// contains no TripError.
func CodeOf(err error) ErrorCode {
	var te *TripError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

// IsRetryable reports whether an error is transient. Errors that are not
// TripErrors are treated as non-retryable.
func IsRetryable(err error) bool {
	var te *TripError
	if !errors.As(err, &te) {
		return false
	}
	if te.Retryable {
		return true
	}
	switch te.Code {
	case LLM_TRANSPORT_FAILED, LLM_TIMEOUT, LLM_RATE_LIMITED:
		return true
	default:
		return false
	}
}

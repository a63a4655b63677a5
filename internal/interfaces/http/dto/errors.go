package dto

import (
	"net/http"
	"strings"
)

// Error codes exposed on the wire. Domain errors carry more specific
// codes (INVALID_QUANTITY, MISSING_SERVICE, ...); NormalizeErrorCode
// folds those into this taxonomy before the response is written.

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
)

// Validation and input error codes
const (
	// ErrCodeValidation covers all input that fails domain validation
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "INVALID_JSON"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "TOKEN_INVALID"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for the current state
	ErrCodeInvalidState = "INVALID_STATE"
	// ErrCodeInsufficientBalance is used when a package balance cannot cover a draw
	ErrCodeInsufficientBalance = "INSUFFICIENT_BALANCE"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes.
// State and balance violations are client errors, not 422s: the
// request was well-formed but asked for something the current state
// cannot give.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState:        http.StatusBadRequest,
	ErrCodeInsufficientBalance: http.StatusBadRequest,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// specificCodeMapping folds domain codes that do not follow a prefix
// rule into taxonomy codes.
var specificCodeMapping = map[string]string{
	"INVALID_INPUT":         ErrCodeValidation,
	"DISCOUNT_NOT_ALLOWED":  ErrCodeValidation,
	"NO_ITEMS":              ErrCodeValidation,
	"ALREADY_ACTIVE":        ErrCodeInvalidState,
	"ALREADY_INACTIVE":      ErrCodeInvalidState,
	"PACKAGE_INACTIVE":      ErrCodeNotFound,
	"PASSWORD_HASH_ERROR":   ErrCodeInternal,
	"OPTIMISTIC_LOCK_ERROR": ErrCodeConcurrencyConflict,
}

// NormalizeErrorCode converts a specific domain error code to the wire
// taxonomy. Taxonomy codes pass through unchanged; so do codes nothing
// matches, which GetHTTPStatus then treats as internal.
func NormalizeErrorCode(code string) string {
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code
	}
	if mapped, ok := specificCodeMapping[code]; ok {
		return mapped
	}
	switch {
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return ErrCodeNotFound
	case strings.HasPrefix(code, "INVALID_"), strings.HasPrefix(code, "MISSING_"):
		return ErrCodeValidation
	}
	return code
}

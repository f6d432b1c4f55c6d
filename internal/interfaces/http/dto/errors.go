package dto

import (
	"net/http"
	"strings"
)

// General error codes
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
)

// Auth error codes
const (
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
)

// Resource error codes
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeConflict      = "CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeCreditLimitExceeded = "CREDIT_LIMIT_EXCEEDED"
	ErrCodeInvalidState        = "INVALID_STATE"
)

// errorCodeHTTPStatus maps exact error codes to HTTP status codes.
// Codes not listed here fall through to the prefix rules below.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,

	ErrCodeUnauthorized:   http.StatusUnauthorized,
	ErrCodeForbidden:      http.StatusForbidden,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	ErrCodeInsufficientStock:   http.StatusUnprocessableEntity,
	ErrCodeCreditLimitExceeded: http.StatusUnprocessableEntity,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	"PRODUCT_INACTIVE":         http.StatusUnprocessableEntity,
	"EMPTY_SALE":               http.StatusUnprocessableEntity,
	"EMPTY_PURCHASE":           http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status for a domain error code.
// Validation style codes map to 400, lookup failures to 404, duplicates
// to 409, anything unrecognized to 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasPrefix(code, "DUPLICATE_"):
		return http.StatusConflict
	case strings.HasPrefix(code, "INVALID_"),
		strings.HasPrefix(code, "EMPTY_"),
		strings.HasPrefix(code, "WEAK_"):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

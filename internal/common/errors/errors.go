// Package errors provides standardized error handling for the query pipeline.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeMissingEntity ErrorCode = "MISSING_ENTITY"
	ErrCodeUnknownField  ErrorCode = "UNKNOWN_FIELD"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeLLMGenerationFailed ErrorCode = "LLM_GENERATION_FAILED"
	ErrCodeLLMTimeout          ErrorCode = "LLM_TIMEOUT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidInputError creates a non-retryable input validation error.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid question input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingEntityError creates a non-retryable template resolution error.
func NewMissingEntityError(placeholder, intent string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingEntity,
		Message:   "Required entity missing from question",
		Details:   fmt.Sprintf("placeholder: %s, intent: %s", placeholder, intent),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownFieldError creates a non-retryable registry miss error.
func NewUnknownFieldError(fieldName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownField,
		Message:   "Field has no semantic definition",
		Details:   fmt.Sprintf("fieldName: %s", fieldName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMGenerationFailedError creates a retryable LLM error.
func NewLLMGenerationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMGenerationFailed,
		Message:   "LLM SQL generation error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMTimeoutError creates a retryable LLM timeout error.
func NewLLMTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMTimeout,
		Message:   "LLM call timeout",
		Details:   "LLM call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. HTTP Status Mapping
// ==========================

// HTTPStatusMapping maps internal error codes to HTTP response statuses.
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeInvalidInput:             http.StatusBadRequest,
	ErrCodeMissingEntity:            http.StatusBadRequest,
	ErrCodeUnknownField:             http.StatusNotFound,
	ErrCodeDatabaseConnectionFailed: http.StatusServiceUnavailable,
	ErrCodeQueryExecutionFailed:     http.StatusInternalServerError,
	ErrCodeQueryTimeout:             http.StatusGatewayTimeout,
	ErrCodeLLMGenerationFailed:      http.StatusBadGateway,
	ErrCodeLLMTimeout:               http.StatusGatewayTimeout,
}

// HTTPStatus returns the HTTP status for an error code.
func HTTPStatus(code ErrorCode) int {
	if status, exists := HTTPStatusMapping[code]; exists {
		return status
	}
	return http.StatusInternalServerError
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeQueryTimeout,
		ErrCodeLLMGenerationFailed,
		ErrCodeLLMTimeout:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "LLM"):
		return "AI"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "MISSING"):
		return "VALIDATION"
	case strings.Contains(codeStr, "FIELD"):
		return "SEMANTICS"
	default:
		return "OTHER"
	}
}

package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal   ErrorCode = "INTERNAL_ERROR"
	CodeNotFound   ErrorCode = "NOT_FOUND"
	CodeValidation ErrorCode = "VALIDATION_ERROR"

	// Pipeline specific errors
	CodeInvalidRequest      ErrorCode = "INVALID_REQUEST"
	CodeInsufficientContent ErrorCode = "INSUFFICIENT_CONTENT"
	CodeFetchFailed         ErrorCode = "FETCH_FAILED"
	CodeParseFailed         ErrorCode = "PARSE_FAILED"
	CodeInferenceFailed     ErrorCode = "INFERENCE_FAILED"
	CodeMalformedOutput     ErrorCode = "MALFORMED_OUTPUT"
	CodeInvalidGeneration   ErrorCode = "INVALID_GENERATION"

	// CodeDuplicateKey never reaches a client; the service resolves the
	// conflicting insert by re-reading the winning row.
	CodeDuplicateKey ErrorCode = "DUPLICATE_KEY"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Helper constructors for the error taxonomy

func NewInvalidRequestError(message string) *DomainError {
	return NewError(CodeInvalidRequest, message, nil)
}

func NewInsufficientContentError(length int) *DomainError {
	return NewError(CodeInsufficientContent,
		fmt.Sprintf("Insufficient article content (%d characters)", length), nil)
}

func NewFetchError(cause error) *DomainError {
	return NewError(CodeFetchFailed, "Unable to fetch Wikipedia page", cause)
}

func NewParseError(message string) *DomainError {
	return NewError(CodeParseFailed, message, nil)
}

func NewInferenceError(cause error) *DomainError {
	return NewError(CodeInferenceFailed, "LLM inference failed", cause)
}

func NewMalformedOutputError(cause error) *DomainError {
	return NewError(CodeMalformedOutput, "Model output is not valid JSON", cause)
}

func NewInvalidGenerationError(message string) *DomainError {
	return NewError(CodeInvalidGeneration, message, nil)
}

func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewDuplicateKeyError(cause error) *DomainError {
	return NewError(CodeDuplicateKey, "Article already exists for this URL", cause)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

// ValidationError describes a single invalid request field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates field-level failures so a response can
// report all of them at once.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return e[0].Error()
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Field: field, Message: "is required"}
}

func NewInvalidFormatError(field, value string) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf("has invalid format: %q", value)}
}

func NewOutOfRangeError(field string, value, min, max int) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf("must be between %d and %d, got %d", min, max, value)}
}

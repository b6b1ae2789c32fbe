package transform

import "fmt"

// ErrorType represents the type of transform action error.
type ErrorType string

const (
	// ErrorTypeExpressionError indicates an invalid or failing jq query.
	ErrorTypeExpressionError ErrorType = "expression_error"

	// ErrorTypeTemplateError indicates the template failed to render.
	ErrorTypeTemplateError ErrorType = "template_error"

	// ErrorTypeValidation indicates invalid input parameters.
	ErrorTypeValidation ErrorType = "validation"
)

// OperationError represents an error from the transform operation.
type OperationError struct {
	Message   string
	ErrorType ErrorType
	Cause     error
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transform: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("transform: %s", e.Message)
}

// Unwrap returns the underlying cause.
func (e *OperationError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns false: transforms are deterministic.
func (e *OperationError) IsRetryable() bool {
	return false
}

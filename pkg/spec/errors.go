package spec

import (
	"fmt"
	"strings"
)

// ValidationError is one validator finding with the exact offending location.
type ValidationError struct {
	// Path is the JSON path to the failing field (e.g., "$.mode", "$.steps[2].config.url")
	Path string

	// Keyword names the failed check (required, type, enum, format, ...)
	Keyword string

	// Message is the human-readable error message
	Message string

	// StepIndex is the index of the step the field belongs to, or -1.
	StepIndex int
}

// NewValidationError creates a validation error outside the steps array.
func NewValidationError(path, keyword, message string) *ValidationError {
	return &ValidationError{
		Path:      path,
		Keyword:   keyword,
		Message:   message,
		StepIndex: -1,
	}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.StepIndex >= 0 {
		return fmt.Sprintf("validation failed at %s (%s, step %d): %s", e.Path, e.Keyword, e.StepIndex, e.Message)
	}
	return fmt.Sprintf("validation failed at %s (%s): %s", e.Path, e.Keyword, e.Message)
}

// Is implements error equality checking for errors.Is().
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return e.Path == t.Path && e.Keyword == t.Keyword
}

// ValidationErrors is the accumulated result of a failed validation.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (errs ValidationErrors) Error() string {
	switch len(errs) {
	case 0:
		return "validation failed"
	case 1:
		return errs[0].Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:", len(errs))
	for _, e := range errs {
		b.WriteString("\n  - ")
		b.WriteString(e.Error())
	}
	return b.String()
}

// Unwrap exposes the individual findings to errors.Is and errors.As.
func (errs ValidationErrors) Unwrap() []error {
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return out
}

// ForStep returns the findings attached to the given step index.
func (errs ValidationErrors) ForStep(index int) ValidationErrors {
	var out ValidationErrors
	for _, e := range errs {
		if e.StepIndex == index {
			out = append(out, e)
		}
	}
	return out
}

package file

import "fmt"

// ErrorType classifies file operation failures for metrics and callers.
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeNotFound      ErrorType = "file_not_found"
	ErrorTypePermission    ErrorType = "permission_denied"
	ErrorTypeIsDirectory   ErrorType = "is_directory"
	ErrorTypeFileTooLarge  ErrorType = "file_too_large"
	ErrorTypeParse         ErrorType = "parse_error"
	ErrorTypeDiskFull      ErrorType = "disk_full"
	ErrorTypePathEscape    ErrorType = "path_escape"
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeInternal      ErrorType = "internal"
)

// OperationError is returned by fileRead and fileWrite for failures other
// than sandbox escapes, which surface as errors.PathEscapeError.
type OperationError struct {
	Operation string
	Path      string
	Message   string
	ErrorType ErrorType
	Cause     error
}

func (e *OperationError) Error() string {
	switch {
	case e.Operation != "" && e.Path != "":
		return fmt.Sprintf("%s %s: %s", e.Operation, e.Path, e.Message)
	case e.Operation != "":
		return fmt.Sprintf("%s: %s", e.Operation, e.Message)
	default:
		return e.Message
	}
}

func (e *OperationError) Unwrap() error {
	return e.Cause
}

package template

import (
	"errors"
	"fmt"
)

// ErrorKind classifies template failures.
type ErrorKind string

const (
	// KindSyntax is a malformed template: unclosed tags, unbalanced blocks,
	// unknown helpers or wrong helper arity.
	KindSyntax ErrorKind = "syntax"

	// KindReference is a path that is not bound in the data.
	KindReference ErrorKind = "reference"

	// KindEvaluation is a helper or block applied to a value it cannot handle.
	KindEvaluation ErrorKind = "evaluation"
)

// Error reports a template that failed to parse or render.
type Error struct {
	Kind ErrorKind

	// Template is the source of the failing template.
	Template string

	// Offset is the byte offset of the offending tag in Template.
	Offset int

	// Path is the unresolved reference for KindReference errors.
	Path string

	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("template %s error at offset %d: %s", e.Kind, e.Offset, e.Message)
}

// IsReference reports whether err is caused by an unbound reference.
func IsReference(err error) bool {
	var tplErr *Error
	return errors.As(err, &tplErr) && tplErr.Kind == KindReference
}

func syntaxErr(offset int, format string, args ...any) *Error {
	return &Error{Kind: KindSyntax, Offset: offset, Message: fmt.Sprintf(format, args...)}
}

func referenceErr(offset int, path, format string, args ...any) *Error {
	return &Error{Kind: KindReference, Offset: offset, Path: path, Message: fmt.Sprintf(format, args...)}
}

func evalErr(offset int, format string, args ...any) *Error {
	return &Error{Kind: KindEvaluation, Offset: offset, Message: fmt.Sprintf(format, args...)}
}

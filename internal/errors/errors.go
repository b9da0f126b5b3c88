// Package errors defines the structured error type shared by the Petra
// runtime and its host marshaling bridge.
package errors

import (
	goerrors "errors"
	"fmt"
)

// Kind classifies a runtime or bridge error.
type Kind string

const (
	// SyntaxError: the evaluator could not parse a source fragment.
	SyntaxError Kind = "SyntaxError"
	// UnexpectedValueType: a checked wrapper construction was given a cell
	// whose tag does not match the requested variant.
	UnexpectedValueType Kind = "UnexpectedValueType"
	// ConversionError: a checked scalar conversion met an undefined value,
	// a partial numeric string, or a reference.
	ConversionError Kind = "ConversionError"
	// NoArgumentOnStack: positional argument access outside the current
	// call's argument window.
	NoArgumentOnStack Kind = "NoArgumentOnStack"
	// InterpreterError: the runtime raised an exception during evaluation
	// or a call; Message carries the runtime's text verbatim.
	InterpreterError Kind = "InterpreterError"
)

// Error carries a kind, a message, and, for syntax errors, a source
// location.
type Error struct {
	Kind    Kind
	Message string
	File    string
	Line    int
	Column  int
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s at %s:%d:%d", e.Kind, e.Message, e.File, e.Line, e.Column)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New builds an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewSyntax builds a syntax error with a source location.
func NewSyntax(message, file string, line, column int) *Error {
	return &Error{Kind: SyntaxError, Message: message, File: file, Line: line, Column: column}
}

// KindOf extracts the Kind of err, unwrapping as needed. Errors that did
// not originate here report an empty Kind.
func KindOf(err error) Kind {
	var e *Error
	if goerrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err (or anything it wraps) carries the kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

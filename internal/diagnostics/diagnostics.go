// Package diagnostics defines the common error shape shared by every
// pipeline stage (lexer/parser, analyzer, evaluator).
package diagnostics

import "fmt"

// Kind distinguishes the three fatal error categories a program can
// raise.
type Kind string

const (
	Syntax    Kind = "SyntaxError"
	Type      Kind = "TypeError"
	Execution Kind = "ExecutionError"
)

// DiagnosticError carries a message and, when known, a source position.
type DiagnosticError struct {
	Kind    Kind
	File    string
	Line    int
	Column  int
	Message string
}

func (e *DiagnosticError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
	}
	return e.Message
}

// New builds a DiagnosticError with no known position.
func New(kind Kind, format string, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewAt builds a DiagnosticError anchored at a source position.
func NewAt(kind Kind, line, column int, format string, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{Kind: kind, Line: line, Column: column, Message: fmt.Sprintf(format, args...)}
}

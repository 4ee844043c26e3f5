package parser

import "fmt"

// SyntaxError is returned for malformed input. Line and Column are 1-based.
type SyntaxError struct {
	Message string
	File    string
	Line    int
	Column  int
}

func (e *SyntaxError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

func newSyntaxError(at Position, format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Message: fmt.Sprintf(format, args...),
		File:    at.File,
		Line:    at.Line,
		Column:  at.Column,
	}
}

// bailout carries a parse failure up the recursive descent to Parse.
type bailout struct {
	err error
}

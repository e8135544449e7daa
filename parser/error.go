package parser

import "fmt"

// SyntaxError reports a parse failure for a single source line. Per
// spec.md §4.2/§7, a SyntaxError never aborts compilation of other lines:
// the offending line compiles as empty and the error is logged once.
//
// Grounded on informatter-nilan/parser/error.go's {Line, Column, Message}
// shape.
type SyntaxError struct {
	Column  int
	Message string
}

func newSyntaxError(column int, message string) SyntaxError {
	return SyntaxError{Column: column, Message: message}
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("💥 syntax error at column %d: %s", e.Column, e.Message)
}

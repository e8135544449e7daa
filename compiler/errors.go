package compiler

import "fmt"

// InternalError reports a compiler invariant violation — something that
// should never happen given a well-formed AST (e.g. a pre/post inc/dec
// operand that isn't a variable). It is distinct from parser.SyntaxError
// and vm.RuntimeError, mirroring informatter-nilan/compiler/errors.go's
// split between semantic and developer-facing error kinds.
type InternalError struct {
	Message string
}

func (e InternalError) Error() string {
	return fmt.Sprintf("🤖 compiler error: %s", e.Message)
}

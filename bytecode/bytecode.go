// Package bytecode defines the Instruction set the compiler emits and the
// VM executes: a single-byte opcode tag plus at most one payload, per
// spec.md §3.
//
// Grounded on informatter-nilan/compiler/code.go's Opcode/OpCodeDefinition
// concept, simplified from packed-byte encoding (appropriate for the
// teacher's general bytecode with variable-width operands) to a plain typed
// struct slice, since YOLOL's fixed 34-instruction set has no variable
// arity worth byte-packing.
package bytecode

import (
	"fmt"
	"strings"

	"yolol/intern"
	"yolol/value"
)

// Op is an instruction's opcode tag.
type Op byte

const (
	// Stack
	Dup Op = iota
	Pop
	PushValue
	Push
	Store
	// Control
	Goto
	Jump
	JumpFalse
	// Binary
	Or
	And
	Eq
	Ne
	Lt
	Gt
	Lte
	Gte
	Add
	Sub
	Mul
	Div
	Mod
	Exp
	// Unary
	Not
	Abs
	Sqrt
	Sin
	Cos
	Tan
	Asin
	Acos
	Atan
	Fac
	Inc
	Dec
)

var opNames = map[Op]string{
	Dup: "dup", Pop: "pop", PushValue: "push_value", Push: "push", Store: "store",
	Goto: "goto", Jump: "jump", JumpFalse: "jump_false",
	Or: "or", And: "and", Eq: "eq", Ne: "ne", Lt: "lt", Gt: "gt", Lte: "lte", Gte: "gte",
	Add: "add", Sub: "sub", Mul: "mul", Div: "div", Mod: "mod", Exp: "exp",
	Not: "not", Abs: "abs", Sqrt: "sqrt", Sin: "sin", Cos: "cos", Tan: "tan",
	Asin: "asin", Acos: "acos", Atan: "atan", Fac: "fac", Inc: "inc", Dec: "dec",
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", op)
}

// IsBinary reports whether op consumes two stack operands and produces one.
func (op Op) IsBinary() bool {
	switch op {
	case Or, And, Eq, Ne, Lt, Gt, Lte, Gte, Add, Sub, Mul, Div, Mod, Exp:
		return true
	}
	return false
}

// IsUnary reports whether op consumes one stack operand and produces one.
func (op Op) IsUnary() bool {
	switch op {
	case Not, Abs, Sqrt, Sin, Cos, Tan, Asin, Acos, Atan, Fac, Inc, Dec:
		return true
	}
	return false
}

// Instruction is one bytecode instruction: an Op tag plus at most one of
// the three payload shapes spec.md §3 allows.
type Instruction struct {
	Op    Op
	Value value.Value         // payload for PushValue
	Index intern.VariableIndex // payload for Push/Store
	Rel   int                  // payload for Jump/JumpFalse (relative distance)
}

func Simple(op Op) Instruction                         { return Instruction{Op: op} }
func WithValue(op Op, v value.Value) Instruction        { return Instruction{Op: op, Value: v} }
func WithIndex(op Op, idx intern.VariableIndex) Instruction { return Instruction{Op: op, Index: idx} }
func WithRel(op Op, rel int) Instruction                { return Instruction{Op: op, Rel: rel} }

// Disassemble renders an instruction vector as one human-readable line per
// instruction, in the spirit of informatter-nilan's
// DiassembleBytecode/DiassembleInstruction pair.
func Disassemble(ins []Instruction) string {
	var b strings.Builder
	for i, instr := range ins {
		fmt.Fprintf(&b, "%04d %s", i, instr.Op)
		switch instr.Op {
		case PushValue:
			fmt.Fprintf(&b, " %s", instr.Value.String())
		case Push, Store:
			fmt.Fprintf(&b, " #%d", instr.Index)
		case Jump, JumpFalse:
			fmt.Fprintf(&b, " %+d -> %04d", instr.Rel, i+1+instr.Rel)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Package vm executes one compiled line's instruction vector against a
// caller-owned variable table, per spec.md §4.5: a reusable operand stack
// scoped to a single Run call, with most arithmetic peephole-fused over the
// stack top (the right operand is popped, the left operand is mutated in
// place) rather than popped-and-repushed.
//
// Grounded on informatter-nilan/vm/vm.go's fetch-dispatch-advance loop and
// informatter-nilan/vm/stack.go's Stack, retargeted from informatter-nilan's
// push/pop-only OP_CONSTANT stub to YOLOL's full arithmetic instruction set
// and its persistent, caller-owned variable table (the teacher's VM has no
// notion of RAM at all).
package vm

import (
	"fmt"

	"yolol/bytecode"
	"yolol/value"
)

// VM holds a single reusable operand stack. Its capacity grows to the
// deepest expression ever evaluated across every Run call and is never
// explicitly shrunk, matching spec.md §4.5's "no allocation on the
// steady-state tick path" goal.
type VM struct {
	stack []value.Value
}

// New returns a VM with an empty, unallocated stack.
func New() *VM {
	return &VM{}
}

// Run executes ins against ram, the chip's persistent variable table,
// indexed by intern.VariableIndex. It returns (target, true, nil) iff a
// Goto instruction executed, having popped its operand as the target line.
// On a RuntimeError the loop stops immediately; every Store already
// executed earlier in ins stays committed, matching spec.md §7's abort
// semantics.
func (m *VM) Run(ins []bytecode.Instruction, ram []value.Value) (target value.Value, didGoto bool, err error) {
	m.stack = m.stack[:0]

	for pc := 0; pc < len(ins); pc++ {
		instr := ins[pc]
		switch {
		case instr.Op == bytecode.PushValue:
			m.push(instr.Value)

		case instr.Op == bytecode.Push:
			m.push(ram[instr.Index])

		case instr.Op == bytecode.Store:
			ram[instr.Index] = m.pop()

		case instr.Op == bytecode.Dup:
			m.push(m.peek())

		case instr.Op == bytecode.Pop:
			m.pop()

		case instr.Op == bytecode.Goto:
			return m.pop(), true, nil

		case instr.Op == bytecode.Jump:
			pc += instr.Rel

		case instr.Op == bytecode.JumpFalse:
			if !m.pop().Truthy() {
				pc += instr.Rel
			}

		case instr.Op.IsBinary():
			if err := m.binary(instr.Op); err != nil {
				return value.Value{}, false, err
			}

		case instr.Op.IsUnary():
			if err := m.unary(instr.Op); err != nil {
				return value.Value{}, false, err
			}

		default:
			return value.Value{}, false, RuntimeError{Message: fmt.Sprintf("unknown opcode %s", instr.Op)}
		}
	}
	return value.Value{}, false, nil
}

func (m *VM) push(v value.Value) { m.stack = append(m.stack, v) }

func (m *VM) pop() value.Value {
	n := len(m.stack) - 1
	v := m.stack[n]
	m.stack = m.stack[:n]
	return v
}

func (m *VM) peek() value.Value { return m.stack[len(m.stack)-1] }

// top returns a pointer to the stack's top slot, letting binary/unary
// fuse their result into the left operand's slot instead of popping it and
// pushing a fresh value.
func (m *VM) top() *value.Value { return &m.stack[len(m.stack)-1] }

// binary pops the right operand, mutates the left operand in place on the
// stack with the result, per spec.md §4.5's stack-top fusion.
func (m *VM) binary(op bytecode.Op) error {
	right := m.pop()
	left := m.top()

	var result value.Value
	var err error
	switch op {
	case bytecode.Or:
		result = value.Or(*left, right)
	case bytecode.And:
		result = value.And(*left, right)
	case bytecode.Eq:
		result = value.Eq(*left, right)
	case bytecode.Ne:
		result = value.Ne(*left, right)
	case bytecode.Lt:
		result, err = value.Lt(*left, right)
	case bytecode.Gt:
		result, err = value.Gt(*left, right)
	case bytecode.Lte:
		result, err = value.Lte(*left, right)
	case bytecode.Gte:
		result, err = value.Gte(*left, right)
	case bytecode.Add:
		result, err = value.Add(*left, right)
	case bytecode.Sub:
		result, err = value.Sub(*left, right)
	case bytecode.Mul:
		result, err = value.Mul(*left, right)
	case bytecode.Div:
		result, err = value.Div(*left, right)
	case bytecode.Mod:
		result, err = value.Mod(*left, right)
	case bytecode.Exp:
		result, err = value.Pow(*left, right)
	}
	if err != nil {
		return RuntimeError{Message: err.Error()}
	}
	*left = result
	return nil
}

// unary mutates the stack top in place with the result of op applied to it.
func (m *VM) unary(op bytecode.Op) error {
	top := m.top()

	var result value.Value
	var err error
	switch op {
	case bytecode.Not:
		result = value.Not(*top)
	case bytecode.Abs:
		result, err = value.Abs(*top)
	case bytecode.Sqrt:
		result, err = value.Sqrt(*top)
	case bytecode.Sin:
		result, err = value.Sin(*top)
	case bytecode.Cos:
		result, err = value.Cos(*top)
	case bytecode.Tan:
		result, err = value.Tan(*top)
	case bytecode.Asin:
		result, err = value.Asin(*top)
	case bytecode.Acos:
		result, err = value.Acos(*top)
	case bytecode.Atan:
		result, err = value.Atan(*top)
	case bytecode.Fac:
		result, err = value.Fac(*top)
	case bytecode.Inc:
		result, err = value.Inc(*top)
	case bytecode.Dec:
		result, err = value.Dec(*top)
	}
	if err != nil {
		return RuntimeError{Message: err.Error()}
	}
	*top = result
	return nil
}

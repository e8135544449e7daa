// Package optimizer implements the type-directed peephole pass described in
// spec.md §4.4: abstract interpretation over a compiled line's instruction
// vector, removing dead stack-producers (expression statements whose value
// is never consumed) and statically pruning unreachable `if` branches.
//
// No teacher file implements anything like this (informatter-nilan has no
// peephole pass); structured as its own package the way
// informatter-nilan/compiler is its own package, walking bytecode
// instruction-by-instruction the way compiler/ast_compiler.go's
// disassembler does.
package optimizer

import (
	"yolol/bytecode"
	"yolol/intern"
	"yolol/value"
)

// AbstractType is a point in the optimizer's 5-element type lattice.
type AbstractType int

const (
	TString     AbstractType = iota
	TIntTrue                  // known-truthy number
	TIntFalse                 // known-falsy number (zero)
	TIntUnknown               // known to be a number, truth value unknown
	TUnknown                  // nothing statically known
)

func (t AbstractType) String() string {
	switch t {
	case TString:
		return "string"
	case TIntTrue:
		return "int(true)"
	case TIntFalse:
		return "int(false)"
	case TIntUnknown:
		return "int(unknown)"
	default:
		return "unknown"
	}
}

func literalType(v value.Value) AbstractType {
	if v.Kind == value.KindString {
		return TString
	}
	if v.Truthy() {
		return TIntTrue
	}
	return TIntFalse
}

// ram is the AbstractRAM: per-variable-index abstract type, defaulting to
// Int(Unknown) for any index never written within this pass.
type ram map[intern.VariableIndex]AbstractType

func (r ram) get(idx intern.VariableIndex) AbstractType {
	if t, ok := r[idx]; ok {
		return t
	}
	return TIntUnknown
}

// stackEntry is one AbstractStack slot: the abstract type plus the absolute
// position (in the instruction vector this pass is building) of the
// instruction that produced it. A entry still present when its enclosing
// body finishes is an orphan producer — dead code with no observable
// effect — and its position is scheduled for removal.
type stackEntry struct {
	pos int
	typ AbstractType
}

const maxPasses = 256

// Optimize runs the peephole pass to a fixed point: each pass either prunes
// a statically-determined branch or removes orphan producers; the loop
// terminates the first time a pass returns no orphans (spec.md §4.4's
// "terminate when a full pass runs without error flag").
func Optimize(ins []bytecode.Instruction) []bytecode.Instruction {
	current := ins
	for pass := 0; pass < maxPasses; pass++ {
		out, orphans := run(current, 0, ram{})
		if len(orphans) == 0 {
			return out
		}
		current = removePositions(out, orphans)
	}
	return current
}

// run walks one instruction sequence (the whole line, or one if-branch's
// body during recursion) left to right, threading a freshly-scoped
// AbstractStack and the shared AbstractRAM. base is the absolute position
// in the top-level output that this call's first emitted instruction will
// occupy, so that orphan positions recorded here are meaningful to the
// caller that ultimately prunes the top-level vector.
func run(ins []bytecode.Instruction, base int, ramSt ram) (out []bytecode.Instruction, orphans []int) {
	var stack []stackEntry
	pop := func() stackEntry {
		if len(stack) == 0 {
			return stackEntry{pos: -1, typ: TUnknown}
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return top
	}
	// push must be called BEFORE the producing instruction is appended to
	// out — it records pos as the instruction's own index, not the index
	// after it.
	push := func(typ AbstractType) {
		stack = append(stack, stackEntry{pos: base + len(out), typ: typ})
	}
	// abort discards the current instruction (and everything after it in
	// this body — nothing downstream of a statically-guaranteed failure
	// ever runs) and reports the still-pending operand(s) as orphans, same
	// as ordinary end-of-body leftovers.
	abort := func(offenders ...stackEntry) ([]bytecode.Instruction, []int) {
		for _, o := range offenders {
			if o.pos >= 0 {
				orphans = append(orphans, o.pos)
			}
		}
		return out, orphans
	}

	i := 0
	for i < len(ins) {
		instr := ins[i]
		switch instr.Op {
		case bytecode.JumpFalse:
			pred := pop()
			body := ins[i+1 : i+1+instr.Rel]
			next := i + 1 + instr.Rel
			if pred.typ == TIntFalse {
				// Body is unreachable — elide it entirely, but keep a
				// JumpFalse(0) so the predicate (already evaluated, possibly
				// for a side effect like n++) is still consumed off the
				// runtime stack.
				out = append(out, bytecode.WithRel(bytecode.JumpFalse, 0))
				i = next
				continue
			}
			// Statically-true and statically-unknown predicates are
			// handled identically: a JumpFalse that can never actually
			// branch is harmless at runtime, and keeping it here (rather
			// than trying to prove the predicate's evaluation has no side
			// effects worth preserving) keeps this pass conservative.
			subOut, subOrphans := run(body, base+len(out)+1, ramSt)
			out = append(out, bytecode.WithRel(bytecode.JumpFalse, len(subOut)))
			out = append(out, subOut...)
			orphans = append(orphans, subOrphans...)
			i = next
			continue

		case bytecode.Jump:
			out = append(out, instr)

		case bytecode.PushValue:
			push(literalType(instr.Value))
			out = append(out, instr)

		case bytecode.Push:
			push(ramSt.get(instr.Index))
			out = append(out, instr)

		case bytecode.Store:
			t := pop()
			ramSt[instr.Index] = t.typ
			out = append(out, instr)

		case bytecode.Dup:
			t := pop()
			// Both copies are recorded at the Dup's position, so an unconsumed
			// copy prunes the Dup and not the instruction that produced t.
			push(t.typ) // original copy
			push(t.typ) // duplicate
			out = append(out, instr)

		case bytecode.Pop:
			pop()
			out = append(out, instr)

		case bytecode.Goto:
			t := pop()
			if t.typ == TString {
				return abort(t)
			}
			out = append(out, instr)

		case bytecode.Or, bytecode.And:
			r, l := pop(), pop()
			push(boolLattice(instr.Op, l.typ, r.typ))
			out = append(out, instr)

		case bytecode.Eq, bytecode.Ne, bytecode.Lt, bytecode.Gt, bytecode.Lte, bytecode.Gte:
			pop()
			pop()
			push(TIntUnknown)
			out = append(out, instr)

		case bytecode.Add, bytecode.Sub:
			r, l := pop(), pop()
			push(addSubType(l.typ, r.typ))
			out = append(out, instr)

		case bytecode.Mul, bytecode.Div, bytecode.Mod, bytecode.Exp:
			r, l := pop(), pop()
			if l.typ == TString || r.typ == TString {
				return abort(l, r)
			}
			push(TIntUnknown)
			out = append(out, instr)

		case bytecode.Not:
			t := pop()
			push(notType(t.typ))
			out = append(out, instr)

		case bytecode.Inc, bytecode.Dec:
			pop()
			push(TIntUnknown)
			out = append(out, instr)

		default: // Abs, Sqrt, Sin, Cos, Tan, Asin, Acos, Atan, Fac
			t := pop()
			if t.typ == TString {
				return abort(t)
			}
			push(TIntUnknown)
			out = append(out, instr)
		}
		i++
	}

	for _, e := range stack {
		orphans = append(orphans, e.pos)
	}
	return out, orphans
}

func truthValue(t AbstractType) (truthy bool, known bool) {
	switch t {
	case TString:
		return false, true
	case TIntTrue:
		return true, true
	case TIntFalse:
		return false, true
	default:
		return false, false
	}
}

func boolLattice(op bytecode.Op, l, r AbstractType) AbstractType {
	lv, lok := truthValue(l)
	rv, rok := truthValue(r)
	if !lok || !rok {
		return TIntUnknown
	}
	var result bool
	if op == bytecode.And {
		result = lv && rv
	} else {
		result = lv || rv
	}
	if result {
		return TIntTrue
	}
	return TIntFalse
}

func addSubType(l, r AbstractType) AbstractType {
	if l == TString || r == TString {
		return TString
	}
	return TIntUnknown
}

// notType departs from a literal reading of spec.md §4.4 ("Not: string ->
// string"): value.Not never inspects a string's contents, it's always
// truthy==false for a string operand, so Not(string) is unconditionally
// Int(True) — a sound, more precise abstraction than propagating String,
// which would make a harmless `not "x"` look like a type error downstream
// (e.g. fed into Goto). See DESIGN.md.
func notType(t AbstractType) AbstractType {
	switch t {
	case TString:
		return TIntTrue
	case TIntTrue:
		return TIntFalse
	case TIntFalse:
		return TIntTrue
	default:
		return TIntUnknown
	}
}

// removePositions deletes the instructions at the given absolute positions
// and shrinks every Jump/JumpFalse's Rel by the count of removed positions
// that fell within its own body span, so jump targets stay correct after
// the cut.
func removePositions(ins []bytecode.Instruction, positions []int) []bytecode.Instruction {
	remove := make(map[int]bool, len(positions))
	for _, p := range positions {
		remove[p] = true
	}

	out := make([]bytecode.Instruction, 0, len(ins))
	for i, in := range ins {
		if remove[i] {
			continue
		}
		if in.Op == bytecode.Jump || in.Op == bytecode.JumpFalse {
			cut := 0
			for j := i + 1; j < i+1+in.Rel && j < len(ins); j++ {
				if remove[j] {
					cut++
				}
			}
			in.Rel -= cut
		}
		out = append(out, in)
	}
	return out
}

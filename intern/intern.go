// Package intern assigns every distinct, case-folded variable name in a
// single compilation unit a stable, dense VariableIndex. Per spec.md §9's
// recommended redesign, an Interner is scoped to one compilation (one
// runner.Chip) rather than shared process-wide, so compiling multiple chips
// concurrently never risks index collisions between them.
package intern

import "strings"

// VariableIndex is the interner's dense, nonnegative identifier for a
// variable name. Locals and globals share the same index space.
type VariableIndex int

// Interner maps case-folded variable names to VariableIndex values, tracking
// which indices denote globals so they can later be enumerated for the
// device-network field bridge.
type Interner struct {
	indices map[string]VariableIndex
	globals map[string]VariableIndex
	next    VariableIndex
}

// New returns an empty Interner, ready for one compilation unit.
func New() *Interner {
	return &Interner{
		indices: make(map[string]VariableIndex),
		globals: make(map[string]VariableIndex),
	}
}

// InternLocal returns the VariableIndex for a local variable name,
// allocating a new one if the (case-folded) name hasn't been seen before.
func (in *Interner) InternLocal(name string) VariableIndex {
	return in.intern(name)
}

// InternGlobal returns the VariableIndex for a global variable name (the
// name should not include the leading ":"), allocating a new one if needed,
// and records the name in the global set.
func (in *Interner) InternGlobal(name string) VariableIndex {
	idx := in.intern(name)
	folded := strings.ToLower(name)
	in.globals[folded] = idx
	return idx
}

func (in *Interner) intern(name string) VariableIndex {
	folded := strings.ToLower(name)
	if idx, ok := in.indices[folded]; ok {
		return idx
	}
	idx := in.next
	in.indices[folded] = idx
	in.next++
	return idx
}

// Len returns the number of distinct variables interned so far; the runner
// sizes its variable table to this count.
func (in *Interner) Len() int {
	return int(in.next)
}

// Globals returns the case-folded global name -> VariableIndex mapping, for
// bridging to the external device-network field view.
func (in *Interner) Globals() map[string]VariableIndex {
	return in.globals
}

// IsGlobal reports whether idx was allocated via InternGlobal.
func (in *Interner) IsGlobal(idx VariableIndex) bool {
	for _, v := range in.globals {
		if v == idx {
			return true
		}
	}
	return false
}

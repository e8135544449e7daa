// Package field bridges a chip's global variables to the external
// device-network view spec.md §4.6 calls `update_globals`/`get_global`:
// a case-insensitive name → value.Value map a collaborator (the bus driver)
// populates before a tick and reads after one.
//
// No teacher file has an equivalent — informatter-nilan's interpreter has no
// notion of an external device network. Shaped as the simplest container
// satisfying spec.md §4.6's contract ("unknown names ignored on input,
// missing indices default on output"), following intern.Interner's own
// case-folding convention (lower-case keys) so a Fields lookup and an
// interned global name always agree.
package field

import (
	"strings"

	"yolol/value"
)

// Fields is a case-insensitive global-name → Value view exchanged with the
// device network once per tick cycle.
type Fields map[string]value.Value

// New returns an empty Fields view.
func New() Fields {
	return make(Fields)
}

// Set records a value under name, case-folded, overwriting any prior entry.
func (f Fields) Set(name string, v value.Value) {
	f[strings.ToLower(name)] = v
}

// Get returns the value stored under name (case-folded) and whether it was
// present.
func (f Fields) Get(name string) (value.Value, bool) {
	v, ok := f[strings.ToLower(name)]
	return v, ok
}

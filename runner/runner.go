// Package runner owns the tick-driven chip lifecycle spec.md §4.6
// describes: compiling a 20-line source file once, then advancing exactly
// one line per external tick and bridging the chip's global variables to a
// device-network view.
//
// Grounded on informatter-nilan/cmd_run.go's file-read-then-lex-then-parse
// sequencing and its "log every line error, keep going" discipline,
// generalized from a one-shot whole-program run to a chip that parses up to
// 20 independent lines (one per `intern.Interner`-shared compilation unit)
// and re-enters at `pc` forever.
package runner

import (
	"fmt"
	"log"
	"os"
	"strings"

	"yolol/bytecode"
	"yolol/compiler"
	"yolol/field"
	"yolol/intern"
	"yolol/lexer"
	"yolol/optimizer"
	"yolol/parser"
	"yolol/value"
	"yolol/vm"
)

// LineCount is the number of addressable lines on a chip. Source lines
// beyond this are ignored at compile time.
const LineCount = 20

// LineError records a line that failed to parse, for logging by the
// caller — spec.md §7: a SyntaxError never aborts compilation of other
// lines, it's logged once with path and line number.
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// CodeRunner is the collaborator capability spec.md §6 names: compile a
// chip definition, advance it one tick, and exchange its globals with an
// external device network. *Chip implements it.
type CodeRunner interface {
	Compile(path string) error
	Tick() error
	SetGlobal(f field.Fields)
	Global() field.Fields
}

// Chip is one compiled 20-line YOLOL program: its own variable table,
// program counter, interner and reusable VM.
type Chip struct {
	lines [LineCount][]bytecode.Instruction
	ram   []value.Value
	pc    int
	in    *intern.Interner
	vm    *vm.VM

	// SyntaxErrors accumulates every line that failed to parse during the
	// last Compile call, in source order.
	SyntaxErrors []LineError
}

var _ CodeRunner = (*Chip)(nil)

// New returns a Chip with no program loaded; Compile must be called before
// Tick.
func New() *Chip {
	return &Chip{vm: vm.New()}
}

// Compile reads path, splits it into at most LineCount lines (CRLF
// normalized to LF first), and parses+compiles+optimizes each one
// independently against a single shared interner. A line that fails to
// parse compiles to an empty instruction vector and is recorded in
// SyntaxErrors rather than aborting the rest of the chip.
func (c *Chip) Compile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	normalized := strings.ReplaceAll(string(data), "\r\n", "\n")
	srcLines := strings.Split(normalized, "\n")
	if len(srcLines) > LineCount {
		srcLines = srcLines[:LineCount]
	}

	c.in = intern.New()
	c.SyntaxErrors = nil
	for i := range c.lines {
		c.lines[i] = nil
	}

	for i, src := range srcLines {
		ins, lineErr := compileLine(src, c.in)
		if lineErr != nil {
			le := LineError{Line: i + 1, Err: lineErr}
			c.SyntaxErrors = append(c.SyntaxErrors, le)
			log.Printf("yolol: %s:%d: %v", path, le.Line, le.Err)
		}
		c.lines[i] = optimizer.Optimize(ins)
	}

	c.ram = make([]value.Value, c.in.Len())
	c.pc = 0
	return nil
}

// compileLine lexes, parses and compiles a single source line. A lex or
// parse failure is returned alongside the (always present, possibly empty)
// instruction vector so the caller can log it without losing the rest of
// the chip.
func compileLine(src string, in *intern.Interner) ([]bytecode.Instruction, error) {
	toks, err := lexer.New(src).Scan()
	if err != nil {
		return nil, err
	}
	stmts, err := parser.Parse(toks, in)
	if err != nil {
		// Parse still returns a compilable (empty-bodied) ErrorStmt even on
		// failure; fall through so the line compiles to nothing.
		ins, cErr := compiler.CompileLine(stmts)
		if cErr != nil {
			return nil, cErr
		}
		return ins, err
	}
	ins, cErr := compiler.CompileLine(stmts)
	if cErr != nil {
		return nil, cErr
	}
	return ins, nil
}

// Tick advances the chip by exactly one line, per spec.md §4.6: an empty
// line falls through; a Goto popped as a number clamps and retargets pc; a
// Goto popped as a string, or a runtime failure, both fall through exactly
// like an empty line. The returned error is reserved for a genuine
// runner-internal invariant violation (an uncompiled chip) — an ordinary
// RuntimeError from the VM is already logged and swallowed here, matching
// spec.md §7's "no error value is surfaced through the tick API" for
// YOLOL-level failures.
func (c *Chip) Tick() error {
	if c.ram == nil {
		return fmt.Errorf("tick: chip has no compiled program (call Compile first)")
	}
	if c.pc >= LineCount {
		c.pc = 0
	}

	ins := c.lines[c.pc]
	if len(ins) == 0 {
		c.pc++
		return nil
	}

	target, didGoto, err := c.vm.Run(ins, c.ram)
	if err != nil {
		log.Printf("yolol: line %d: %v", c.pc+1, err)
		c.pc++
		return nil
	}
	if didGoto && target.Kind == value.KindNumber {
		n := int(target.Number / value.Scale)
		c.pc = clamp(n-1, 0, LineCount-1)
		return nil
	}
	c.pc++
	return nil
}

// PC returns the chip's current (0-indexed) program counter.
func (c *Chip) PC() int { return c.pc }

// SetGlobal copies every field present in f whose name matches one of
// the chip's interned globals into the variable table. Names f holds that
// the chip never declared as global are ignored.
func (c *Chip) SetGlobal(f field.Fields) {
	for name, idx := range c.in.Globals() {
		if v, ok := f.Get(name); ok {
			c.ram[idx] = v
		}
	}
}

// Global returns a fresh Fields view of every global the chip declares. A
// global never written defaults to its variable table's zero value.
func (c *Chip) Global() field.Fields {
	out := field.New()
	for name, idx := range c.in.Globals() {
		out.Set(name, c.ram[idx])
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

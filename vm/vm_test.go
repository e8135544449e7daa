package vm

import (
	"testing"

	"yolol/bytecode"
	"yolol/compiler"
	"yolol/intern"
	"yolol/lexer"
	"yolol/parser"
	"yolol/value"
)

func num(n int64) value.Value { return value.Number(n * value.Scale) }

func TestRunArithmeticStoresResult(t *testing.T) {
	ins := []bytecode.Instruction{
		bytecode.WithValue(bytecode.PushValue, num(1)),
		bytecode.WithValue(bytecode.PushValue, num(2)),
		bytecode.Simple(bytecode.Add),
		bytecode.WithIndex(bytecode.Store, 0),
	}
	ram := make([]value.Value, 1)
	if _, didGoto, err := New().Run(ins, ram); err != nil || didGoto {
		t.Fatalf("unexpected err=%v didGoto=%v", err, didGoto)
	}
	if ram[0] != num(3) {
		t.Errorf("got ram[0]=%v, want 3.000", ram[0])
	}
}

func TestRunGotoReturnsTarget(t *testing.T) {
	ins := []bytecode.Instruction{
		bytecode.WithValue(bytecode.PushValue, num(2)),
		bytecode.Simple(bytecode.Goto),
	}
	target, didGoto, err := New().Run(ins, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !didGoto {
		t.Fatal("expected didGoto true")
	}
	if target != num(2) {
		t.Errorf("got target=%v, want 2.000", target)
	}
}

func TestRunFailureAbortsLineButKeepsEarlierWrites(t *testing.T) {
	// a = 5 succeeds; b = 1/0 fails before its Store ever runs.
	ins := []bytecode.Instruction{
		bytecode.WithValue(bytecode.PushValue, num(5)),
		bytecode.WithIndex(bytecode.Store, 0),
		bytecode.WithValue(bytecode.PushValue, num(1)),
		bytecode.WithValue(bytecode.PushValue, num(0)),
		bytecode.Simple(bytecode.Div),
		bytecode.WithIndex(bytecode.Store, 1),
	}
	ram := make([]value.Value, 2)
	_, didGoto, err := New().Run(ins, ram)
	if err == nil {
		t.Fatal("expected a RuntimeError from division by zero")
	}
	if didGoto {
		t.Error("expected didGoto false on failure")
	}
	if ram[0] != num(5) {
		t.Errorf("expected a's earlier write to survive, got %v", ram[0])
	}
	if ram[1] != (value.Value{}) {
		t.Errorf("expected b to stay unwritten, got %v", ram[1])
	}
}

func TestRunDomainErrorProducesRuntimeError(t *testing.T) {
	ins := []bytecode.Instruction{
		bytecode.WithValue(bytecode.PushValue, num(-1)),
		bytecode.Simple(bytecode.Sqrt),
	}
	_, _, err := New().Run(ins, nil)
	if err == nil {
		t.Fatal("expected a RuntimeError for sqrt of a negative number")
	}
	if _, ok := err.(RuntimeError); !ok {
		t.Errorf("expected a RuntimeError, got %T", err)
	}
}

func TestRunStringOperandRejectedByArithmetic(t *testing.T) {
	ins := []bytecode.Instruction{
		bytecode.WithValue(bytecode.PushValue, value.String("x")),
		bytecode.WithValue(bytecode.PushValue, num(1)),
		bytecode.Simple(bytecode.Mul),
	}
	_, _, err := New().Run(ins, nil)
	if err == nil {
		t.Fatal("expected a RuntimeError multiplying a string")
	}
}

func TestRunReusesStackAcrossCalls(t *testing.T) {
	m := New()
	first := []bytecode.Instruction{
		bytecode.WithValue(bytecode.PushValue, num(1)),
		bytecode.WithIndex(bytecode.Store, 0),
	}
	second := []bytecode.Instruction{
		bytecode.WithValue(bytecode.PushValue, num(9)),
		bytecode.WithIndex(bytecode.Store, 0),
	}
	ram := make([]value.Value, 1)
	if _, _, err := m.Run(first, ram); err != nil {
		t.Fatal(err)
	}
	if _, _, err := m.Run(second, ram); err != nil {
		t.Fatal(err)
	}
	if ram[0] != num(9) {
		t.Errorf("got %v, want 9.000 (stack reuse should leave no residue)", ram[0])
	}
}

// compileLine exercises the full lexer/parser/compiler pipeline, grounding
// this package's tests against real compiled output rather than only
// hand-built instruction vectors.
func compileLine(t *testing.T, src string, in *intern.Interner) []bytecode.Instruction {
	t.Helper()
	toks, err := lexer.New(src).Scan()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	stmts, err := parser.Parse(toks, in)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	ins, err := compiler.CompileLine(stmts)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	return ins
}

func TestRunCompiledPostIncrementLeavesOldValueThenNewInRAM(t *testing.T) {
	in := intern.New()
	ins := compileLine(t, "n++", in)
	idx := in.InternLocal("n")
	ram := make([]value.Value, 1)
	ram[idx] = num(4)
	m := New()
	if _, _, err := m.Run(ins, ram); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(m.stack) != 1 || m.stack[0] != num(4) {
		t.Errorf("got stack %v, want the old value 4.000 left on it", m.stack)
	}
	if ram[idx] != num(5) {
		t.Errorf("got ram[n]=%v, want 5.000 after n++", ram[idx])
	}
}

func TestRunCompiledIfElseTakesElseBranch(t *testing.T) {
	in := intern.New()
	ins := compileLine(t, "if a then b=1 else b=2 end", in)
	aIdx := in.InternLocal("a")
	bIdx := in.InternLocal("b")
	ram := make([]value.Value, 2)
	ram[aIdx] = num(0) // falsy, takes else branch
	if _, _, err := New().Run(ins, ram); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ram[bIdx] != num(2) {
		t.Errorf("got ram[b]=%v, want 2.000 (else branch)", ram[bIdx])
	}
}

package runner

import (
	"os"
	"path/filepath"
	"testing"

	"yolol/field"
	"yolol/value"
)

func writeSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chip.yolol")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newCompiled(t *testing.T, src string) *Chip {
	t.Helper()
	c := New()
	if err := c.Compile(writeSource(t, src)); err != nil {
		t.Fatalf("compile error: %v", err)
	}
	return c
}

func num(n int64) value.Value { return value.Number(n * value.Scale) }

// TestTickCounterLoopsViaExplicitGoto covers spec.md §8 scenario 1's shape
// (a self-incrementing counter) using an explicit `goto` back to its own
// line so the result doesn't depend on how many of the chip's other 18
// (always-empty) lines get walked between two executions of line 1.
func TestTickCounterLoopsViaExplicitGoto(t *testing.T) {
	c := newCompiled(t, "n=n+1\ngoto 1\n")
	nIdx := c.in.InternLocal("n")
	for i := 0; i < 2000; i++ {
		c.Tick()
	}
	if c.ram[nIdx] != num(1000) {
		t.Errorf("got n=%v after 2000 ticks, want 1000.000", c.ram[nIdx])
	}
}

// TestTickConditionalGotoLoopsOnceThresholdReached covers spec.md §8
// scenario 2: once n>=5, line 2 jumps back to line 1 every time it runs.
func TestTickConditionalGotoLoopsOnceThresholdReached(t *testing.T) {
	c := newCompiled(t, "n++\nif n>=5 then goto 1 end\n")
	nIdx := c.in.InternLocal("n")

	// Climbing to the threshold costs one full LineCount cycle per
	// increment below 5 (line 1 runs, line 2 falls through, then 18 idle
	// ticks walk the empty lines and wrap back to 0); the fifth increment
	// lands on tick 4*LineCount+1.
	for i := 0; i < 4*LineCount+1; i++ {
		c.Tick()
	}
	if c.ram[nIdx] != num(5) {
		t.Fatalf("got n=%v after climbing to threshold, want 5.000", c.ram[nIdx])
	}
	// From here the goto fires every time: two ticks (goto, then n++) per
	// increment.
	for i := 0; i < 10; i++ {
		c.Tick()
	}
	if c.ram[nIdx] != num(10) {
		t.Errorf("got n=%v after 10 more ticks, want 10.000 (goto should re-enter line 1 every other tick once armed)", c.ram[nIdx])
	}
}

// TestTickCompoundOpExposesGlobal covers spec.md §8 scenario 3.
func TestTickCompoundOpExposesGlobal(t *testing.T) {
	c := newCompiled(t, `:out = "hi" + " there"`)
	c.Tick()
	got := c.Global()
	v, ok := got.Get("out")
	if !ok {
		t.Fatal("expected global 'out' to be present")
	}
	if v != value.String("hi there") {
		t.Errorf("got out=%v, want \"hi there\"", v)
	}
}

// TestTickIfElseTakesBothBranches covers spec.md §8 scenario 4.
func TestTickIfElseTakesBothBranches(t *testing.T) {
	for _, tt := range []struct {
		aInit value.Value
		wantB value.Value
	}{
		{num(0), num(1)},
		{num(1), num(2)},
	} {
		c := newCompiled(t, "if a then b=1 else b=2 end")
		aIdx := c.in.InternLocal("a")
		bIdx := c.in.InternLocal("b")
		c.ram[aIdx] = tt.aInit
		c.Tick()
		if c.ram[bIdx] != tt.wantB {
			t.Errorf("a=%v: got b=%v, want %v", tt.aInit, c.ram[bIdx], tt.wantB)
		}
	}
}

// TestTickRuntimeFailureLeavesBothWritesUnchanged covers spec.md §8
// scenario 5: a line that fails mid-execution leaves every store it hadn't
// reached yet untouched, including the one that was about to run when the
// failure occurred.
func TestTickRuntimeFailureLeavesBothWritesUnchanged(t *testing.T) {
	c := newCompiled(t, "a=1/0 b=2")
	aIdx := c.in.InternLocal("a")
	bIdx := c.in.InternLocal("b")
	c.Tick()
	if c.ram[aIdx] != (value.Value{}) {
		t.Errorf("expected a to stay unwritten, got %v", c.ram[aIdx])
	}
	if c.ram[bIdx] != (value.Value{}) {
		t.Errorf("expected b to stay unwritten, got %v", c.ram[bIdx])
	}
	if c.PC() != 1 {
		t.Errorf("expected pc to advance to line 2 (index 1), got %d", c.PC())
	}
}

// TestTickOptimizerPruningStillRunsSurvivingStore covers spec.md §8
// scenario 6 end-to-end through the runner.
func TestTickOptimizerPruningStillRunsSurvivingStore(t *testing.T) {
	c := newCompiled(t, "if 0 then x=1 end x=2")
	xIdx := c.in.InternLocal("x")
	c.Tick()
	if c.ram[xIdx] != num(2) {
		t.Errorf("got x=%v, want 2.000", c.ram[xIdx])
	}
}

func TestCompileLine21IsIgnored(t *testing.T) {
	src := ""
	for i := 0; i < 21; i++ {
		src += "n=n+1\n"
	}
	c := newCompiled(t, src)
	for i := 0; i < LineCount; i++ {
		if len(c.lines[i]) == 0 {
			t.Fatalf("expected line %d to carry compiled instructions", i)
		}
	}
}

func TestCompileEmptyLineProducesEmptyVector(t *testing.T) {
	c := newCompiled(t, "")
	if len(c.lines[0]) != 0 {
		t.Errorf("expected line 1 of an empty file to compile to nothing, got %v", c.lines[0])
	}
}

func TestGotoClampsBelowLineOne(t *testing.T) {
	c := newCompiled(t, "goto -5")
	c.Tick()
	if c.PC() != 0 {
		t.Errorf("expected goto -5 to clamp to line 1 (index 0), got pc=%d", c.PC())
	}
}

func TestGotoClampsAboveLineTwenty(t *testing.T) {
	c := newCompiled(t, "goto 999")
	c.Tick()
	if c.PC() != LineCount-1 {
		t.Errorf("expected goto 999 to clamp to line 20 (index 19), got pc=%d", c.PC())
	}
}

func TestSyntaxErrorLineIsLoggedAndCompilesEmpty(t *testing.T) {
	c := newCompiled(t, "if a then\nn=1\n")
	if len(c.SyntaxErrors) != 1 {
		t.Fatalf("expected exactly one recorded syntax error, got %d", len(c.SyntaxErrors))
	}
	if c.SyntaxErrors[0].Line != 1 {
		t.Errorf("expected the error on line 1, got line %d", c.SyntaxErrors[0].Line)
	}
	if len(c.lines[0]) != 0 {
		t.Errorf("expected the unparseable line to compile empty, got %v", c.lines[0])
	}
	nIdx := c.in.InternLocal("n")
	c.Tick() // line 1: empty (syntax error)
	c.Tick() // line 2: n=1
	if c.ram[nIdx] != num(1) {
		t.Errorf("expected line 2 to still compile and run, got n=%v", c.ram[nIdx])
	}
}

func TestSetGlobalIgnoresUnknownNames(t *testing.T) {
	c := newCompiled(t, ":known = 1")
	f := field.New()
	f.Set("known", num(5))
	f.Set("unknown", num(9))
	c.SetGlobal(f)
	out := c.Global()
	v, _ := out.Get("known")
	if v != num(5) {
		t.Errorf("got known=%v, want 5.000", v)
	}
	if _, ok := out.Get("unknown"); ok {
		t.Error("expected 'unknown' to never appear in this chip's globals")
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"yolol/compiler"
	"yolol/field"
	"yolol/intern"
	"yolol/lexer"
	"yolol/optimizer"
	"yolol/parser"
	"yolol/value"
	"yolol/vm"
)

// replCmd runs one persistent compilation unit (one shared Interner and
// variable table) and compiles+executes each submitted line immediately,
// printing the resulting globals after every line, mirroring what `run`
// prints after a chip's final tick.
//
// Grounded on informatter-nilan/cmd_repl.go's scan-lex-parse-interpret loop,
// replacing its bufio.Scanner with readline for history and line editing
// (the teacher's go.mod already declares chzyer/readline but never imports
// it) and its tree-walking Interpret with the real compiler/optimizer/VM
// pipeline.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "interactively compile and execute YOLOL lines" }
func (*replCmd) Usage() string {
	return `repl:
  Start an interactive session. Each line is compiled and executed against
  a persistent variable table shared across the session.
`
}

func (*replCmd) SetFlags(*flag.FlagSet) {}

func (*replCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.New("yolol> ")
	if err != nil {
		fmt.Printf("💥 failed to start readline: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	in := intern.New()
	var ram []value.Value
	m := vm.New()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		}
		if err == io.EOF {
			break
		}
		if line == "" {
			continue
		}

		toks, err := lexer.New(line).Scan()
		if err != nil {
			fmt.Println(err)
			continue
		}
		stmts, err := parser.Parse(toks, in)
		if err != nil {
			fmt.Println(err)
			continue
		}
		ins, err := compiler.CompileLine(stmts)
		if err != nil {
			fmt.Println(err)
			continue
		}
		ins = optimizer.Optimize(ins)

		if in.Len() > len(ram) {
			grown := make([]value.Value, in.Len())
			copy(grown, ram)
			ram = grown
		}

		target, didGoto, err := m.Run(ins, ram)
		if err != nil {
			fmt.Println(err)
			continue
		}
		if didGoto {
			fmt.Printf("goto %s\n", target.String())
		}

		globals := field.New()
		for name, idx := range in.Globals() {
			globals.Set(name, ram[idx])
		}
		for name, v := range globals {
			fmt.Printf(":%s = %s\n", name, v.String())
		}
	}
	return subcommands.ExitSuccess
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"yolol/bytecode"
	"yolol/lexer"
	"yolol/parser"

	"yolol/compiler"
	"yolol/intern"
	"yolol/optimizer"
)

// disasmCmd compiles a chip file and prints each line's optimized
// instruction vector in human-readable form.
type disasmCmd struct{}

func (*disasmCmd) Name() string     { return "disasm" }
func (*disasmCmd) Synopsis() string { return "print the compiled bytecode of a chip file" }
func (*disasmCmd) Usage() string {
	return `disasm <file>:
  Compile a YOLOL chip file and print each line's optimized instructions.
`
}

func (*disasmCmd) SetFlags(*flag.FlagSet) {}

func (*disasmCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 file not provided\n")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	in := intern.New()
	normalized := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(normalized, "\n")
	for i, src := range lines {
		if i >= 20 {
			break
		}
		toks, err := lexer.New(src).Scan()
		if err != nil {
			fmt.Printf("---- line %d ----\n💥 %v\n", i+1, err)
			continue
		}
		stmts, err := parser.Parse(toks, in)
		if err != nil {
			fmt.Printf("---- line %d ----\n💥 %v\n", i+1, err)
			continue
		}
		ins, err := compiler.CompileLine(stmts)
		if err != nil {
			fmt.Printf("---- line %d ----\n💥 %v\n", i+1, err)
			continue
		}
		ins = optimizer.Optimize(ins)
		fmt.Printf("---- line %d ----\n%s", i+1, bytecode.Disassemble(ins))
	}
	return subcommands.ExitSuccess
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/google/subcommands"

	"yolol/runner"
)

// runCmd compiles a chip file and ticks it a fixed number of times,
// printing whatever globals end up set.
type runCmd struct {
	ticks int
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "compile a chip file and tick it" }
func (*runCmd) Usage() string {
	return `run [-ticks N] <file>:
  Compile a YOLOL chip file and advance it N ticks (default 1000), then
  print the resulting globals.
`
}

func (r *runCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&r.ticks, "ticks", 1000, "number of ticks to advance the chip")
}

func (r *runCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 file not provided\n")
		return subcommands.ExitUsageError
	}

	chip := runner.New()
	if err := chip.Compile(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to compile %s: %v\n", args[0], err)
		return subcommands.ExitFailure
	}
	for _, lineErr := range chip.SyntaxErrors {
		fmt.Fprintf(os.Stderr, "💥 %s: %v\n", args[0], lineErr)
	}

	for i := 0; i < r.ticks; i++ {
		if err := chip.Tick(); err != nil {
			fmt.Fprintf(os.Stderr, "💥 %v\n", err)
			return subcommands.ExitFailure
		}
	}

	globals := chip.Global()
	names := make([]string, 0, len(globals))
	for name := range globals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := globals[name]
		fmt.Printf(":%s = %s\n", name, v.String())
	}
	return subcommands.ExitSuccess
}

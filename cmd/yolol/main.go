// Command yolol drives the engine from a terminal: compile-and-run a chip
// file, disassemble its compiled lines, or explore the compiler/VM one line
// at a time in a REPL.
//
// Grounded on informatter-nilan/main.go + cmd_run.go/cmd_repl.go/
// cmd_emit_bytecode.go's per-command-file shape and 💥-prefixed stderr
// messages, wired into the subcommands.Register/flag.Parse/subcommands.Execute
// entry point the teacher's own files never actually call.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&replCmd{}, "")
	subcommands.Register(&disasmCmd{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}

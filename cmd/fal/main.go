// Command fal is the CLI entry point of §6: run a source file once, or
// fall into an interactive read-eval loop when invoked with no
// argument. Grounded on funxy's own cmd/funxy/main.go (a single root
// command dispatching on whether a path argument was given) rebuilt
// on top of github.com/spf13/cobra, which the rest of the retrieval
// pack's CLI entry points (cuelang.org/go's cmd/cue, oxhq/morfx's
// cmd/morfx) use for their root command trees.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/funvibe/funxy-fa/internal/driver"
	"github.com/funvibe/funxy-fa/internal/repl"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fal [path]",
		Short: "Run or interactively evaluate a finite-automata query program",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				repl.New(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr()).Run()
				return nil
			}

			d := &driver.Driver{Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}
			_, err := d.RunFile(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			return nil
		},
	}
	cmd.SilenceUsage = true
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

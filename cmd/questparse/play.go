package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nathoo/questparse/cli"
	"github.com/nathoo/questparse/engine"
	"github.com/nathoo/questparse/tui"
)

func newPlayCmd(a *app) *cobra.Command {
	var (
		plain  bool
		trace  bool
		script string
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Start an interactive parse session",
		Long: `play opens the workbench: every line is parsed against the story, the
structured command is printed and a few built-in actions (movement, take,
drop, open, close) update the world so scope changes can be observed.

The Bubble Tea interface is used when stdout is a terminal. --plain or a
redirected stdout selects the line REPL; --script replays a file of commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := a.newEngine()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			// Script mode: open file, force plain, echo commands.
			if script != "" {
				f, err := os.Open(script)
				if err != nil {
					return fmt.Errorf("opening script: %w", err)
				}
				defer f.Close()
				runPlain(eng, f, out, trace, true)
				return nil
			}

			if plain || !isTerminal() {
				runPlain(eng, cmd.InOrStdin(), out, trace, false)
				return nil
			}
			return tui.Run(eng, trace)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "use the line REPL instead of the TUI")
	cmd.Flags().BoolVar(&trace, "trace", false, "print ranked matches for every command")
	cmd.Flags().StringVar(&script, "script", "", "replay commands from a file")
	return cmd
}

func runPlain(eng *engine.Engine, in io.Reader, out io.Writer, trace, echo bool) {
	if title := titleLine(eng); title != "" {
		fmt.Fprintf(out, "%s\n\n", title)
	}
	c := cli.New(eng)
	c.In = in
	c.Out = out
	c.Trace = trace
	c.EchoInput = echo
	c.Run()
}

// titleLine renders "Title v1.0 by Author", omitting missing parts.
func titleLine(eng *engine.Engine) string {
	game := eng.World.Defs.Game
	title := game.Title
	if game.Version != "" {
		title += " v" + game.Version
	}
	if game.Author != "" {
		title += " by " + game.Author
	}
	return title
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// Package cli provides the line-oriented parse workbench: terminal I/O,
// output formatting and slash-command dispatch.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nathoo/questparse/engine"
	"github.com/nathoo/questparse/types"
)

// CLI handles terminal interaction with the user.
type CLI struct {
	Workbench
	Intro     string
	In        io.Reader
	Out       io.Writer
	EchoInput bool // echo each input line after the prompt (for script playback)
}

// New creates a CLI wired to the given session.
func New(eng *engine.Engine) *CLI {
	return &CLI{
		Workbench: Workbench{Engine: eng, SaveDir: DefaultSaveDir()},
		Intro:     eng.World.Defs.Game.Intro,
		In:        os.Stdin,
		Out:       os.Stdout,
	}
}

// Run shows the intro and the starting room, then loops:
// prompt, input, dispatch, output.
func (c *CLI) Run() {
	if c.Intro != "" {
		c.printLine(c.Intro)
		c.printLine("")
	}
	for _, line := range c.Engine.Describe() {
		c.printLine(line)
	}

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			lines, quit := c.Meta(input)
			for _, line := range lines {
				c.printSystem(line)
			}
			if quit {
				return
			}
			continue
		}

		var trace []string
		if c.Trace {
			trace = c.TraceLines(input)
		}
		c.printResult(c.Engine.Step(input))
		for _, line := range trace {
			c.printLine(line)
		}
	}
}

func (c *CLI) printResult(result types.Result) {
	for _, line := range result.Output {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	if text == "" {
		fmt.Fprintln(c.Out)
		return
	}
	fmt.Fprintf(c.Out, "[%s]\n", text)
}

// QuestParse is a natural-language command parser workbench for text adventures.
// Usage: questparse [--config <file>] [--story <dir>] [--verbose] <command>
package main

import (
	"fmt"
	"os"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

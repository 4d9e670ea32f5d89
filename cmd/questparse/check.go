package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nathoo/questparse/engine/parser"
	"github.com/nathoo/questparse/loader"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load and validate the story without starting a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			story, err := a.readStory()

			var verr *loader.ValidationError
			if errors.As(err, &verr) {
				for _, e := range verr.Errors {
					fmt.Fprintf(out, "error: %s\n", e)
				}
				for _, w := range verr.Warnings {
					fmt.Fprintf(out, "warning: %s\n", w)
				}
				return fmt.Errorf("story has %d error(s)", len(verr.Errors))
			}
			if err != nil {
				return err
			}
			for _, w := range story.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}

			p := parser.New(a.cfg.ParserOptions())
			if err := story.Apply(p, a.cfg.Parser.ExperimentalMultiplier); err != nil {
				return fmt.Errorf("applying story: %w", err)
			}
			stats := p.Story.Stats()
			fmt.Fprintf(out, "%s: %d file(s), %d room(s), %d entities, %d story rule(s), %d rule(s) total\n",
				story.Defs.Game.Title, len(story.Files), len(story.Defs.Rooms), len(story.Defs.Entities),
				stats.Story, stats.Total)
			return nil
		},
	}
}

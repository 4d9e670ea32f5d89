package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nathoo/questparse/cli"
)

func newRulesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rules [action]",
		Short: "List grammar rules, optionally for one action",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta := "/rules"
			if len(args) == 1 {
				meta += " " + args[0]
			}
			return a.workbench(cmd, meta)
		},
	}
}

func newVocabCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "vocab <word>",
		Short: "Show every vocabulary entry for a word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.workbench(cmd, "/vocab "+args[0])
		},
	}
}

// workbench runs one workbench command against a fresh session.
func (a *app) workbench(cmd *cobra.Command, meta string) error {
	eng, err := a.newEngine()
	if err != nil {
		return err
	}
	wb := cli.Workbench{Engine: eng}
	lines, _ := wb.Meta(meta)
	for _, line := range lines {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nathoo/questparse/cli"
	"github.com/nathoo/questparse/engine"
	"github.com/nathoo/questparse/engine/parser"
	"github.com/nathoo/questparse/types"
)

// report is the yaml view of one parsed command or failure.
type report struct {
	Input      string            `yaml:"input"`
	Action     string            `yaml:"action,omitempty"`
	Rule       string            `yaml:"rule,omitempty"`
	Shape      string            `yaml:"shape,omitempty"`
	Verb       string            `yaml:"verb,omitempty"`
	Confidence float64           `yaml:"confidence,omitempty"`
	Slots      map[string]string `yaml:"slots,omitempty"`
	Semantics  types.Semantics   `yaml:"semantics,omitempty"`
	Error      *errorReport      `yaml:"error,omitempty"`
}

type errorReport struct {
	Code        types.ErrorCode `yaml:"code"`
	Message     string          `yaml:"message"`
	Candidates  []string        `yaml:"candidates,omitempty"`
	Suggestions []string        `yaml:"suggestions,omitempty"`
}

func newParseCmd(a *app) *cobra.Command {
	var (
		format  string
		matches bool
	)
	cmd := &cobra.Command{
		Use:   "parse <input...>",
		Short: "Parse one line of input and print the structured commands",
		Example: `  questparse parse put the red ball in the box
  questparse parse --format yaml "take lamp. go north"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "yaml" {
				return fmt.Errorf("unknown format %q (want text or yaml)", format)
			}
			eng, err := a.newEngine()
			if err != nil {
				return err
			}
			input := strings.Join(args, " ")
			results := eng.Parser.ParseChain(input, eng.Context())

			out := cmd.OutOrStdout()
			if format == "yaml" {
				return writeYAML(out, results)
			}
			writeText(out, results)
			if matches {
				wb := cli.Workbench{Engine: eng}
				for _, r := range results {
					for _, line := range wb.TraceLines(r.Input) {
						fmt.Fprintln(out, line)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text|yaml)")
	cmd.Flags().BoolVar(&matches, "matches", false, "also list every ranked match (text format)")
	return cmd
}

func newReport(r parser.Result) report {
	rep := report{Input: r.Input}
	if r.Err != nil {
		rep.Error = &errorReport{Message: engine.Message(r.Err)}
		var pe *parser.Error
		if errors.As(r.Err, &pe) {
			rep.Error.Code = pe.Code
			rep.Error.Candidates = pe.Candidates
			rep.Error.Suggestions = pe.Suggestions
		}
		return rep
	}
	c := r.Command
	rep.Action = c.Action
	rep.Rule = c.RuleID
	rep.Shape = c.Pattern
	rep.Verb = c.Verb.Text
	rep.Confidence = c.Confidence
	rep.Semantics = c.Semantics
	if fields := engine.Fields(c); len(fields) > 0 {
		rep.Slots = make(map[string]string, len(fields))
		for _, f := range fields {
			rep.Slots[f.Name] = f.Value
		}
	}
	return rep
}

func writeYAML(w io.Writer, results []parser.Result) error {
	reports := make([]report, 0, len(results))
	for _, r := range results {
		reports = append(reports, newReport(r))
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(reports); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

func writeText(w io.Writer, results []parser.Result) {
	for _, r := range results {
		rep := newReport(r)
		fmt.Fprintf(w, "%s\n", rep.Input)
		if rep.Error != nil {
			if rep.Error.Code != "" {
				fmt.Fprintf(w, "  error %s: %s\n", rep.Error.Code, rep.Error.Message)
			} else {
				fmt.Fprintf(w, "  error: %s\n", rep.Error.Message)
			}
			continue
		}
		fmt.Fprintf(w, "  %s\n", strings.TrimSpace(fmt.Sprintf("[%s] %s", rep.Action, engine.Summary(r.Command))))
		fmt.Fprintf(w, "  rule=%s shape=%s confidence=%.3f\n", rep.Rule, rep.Shape, rep.Confidence)
	}
}

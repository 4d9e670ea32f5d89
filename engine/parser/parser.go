// Package parser turns raw command lines into ParsedCommands. It owns the
// vocabulary, grammar and pronoun context of one session and wires them
// together: tokenize, match, select, resolve.
package parser

import (
	"strings"

	"github.com/google/uuid"

	"github.com/nathoo/questparse/engine/chain"
	"github.com/nathoo/questparse/engine/grammar"
	"github.com/nathoo/questparse/engine/messages"
	"github.com/nathoo/questparse/engine/pronoun"
	"github.com/nathoo/questparse/engine/scope"
	"github.com/nathoo/questparse/engine/slots"
	"github.com/nathoo/questparse/engine/vocab"
	"github.com/nathoo/questparse/types"
)

// Config tunes matching and error reporting.
type Config struct {
	MinConfidence   float64
	MaxMatches      int
	SuggestionLimit int
	ChainCommas     bool
}

// DefaultConfig returns the standard settings.
func DefaultConfig() Config {
	opts := grammar.DefaultOptions()
	return Config{
		MinConfidence:   opts.MinConfidence,
		MaxMatches:      opts.MaxMatches,
		SuggestionLimit: 3,
		ChainCommas:     true,
	}
}

// Parser is one session's parser. It is not safe for concurrent use; the
// grammar engine alone may be mutated from another goroutine between parses.
type Parser struct {
	Vocab      *vocab.Registry
	Grammar    *grammar.Engine
	Story      *grammar.Story
	Categories *vocab.Categories
	Pronouns   *pronoun.Manager
	Messages   messages.Catalog
	Observer   Observer
	Config     Config
}

// New creates a parser with the built-in English vocabulary and grammar.
func New(cfg Config) *Parser {
	g := grammar.NewCore()
	return &Parser{
		Vocab:      vocab.NewEnglish(),
		Grammar:    g,
		Story:      grammar.NewStory(g),
		Categories: vocab.NewCategories(),
		Pronouns:   pronoun.NewManager(),
		Messages:   messages.English,
		Config:     cfg,
	}
}

// Result is the outcome of parsing one chained segment.
type Result struct {
	Input   string
	Command *types.ParsedCommand
	Err     error
}

// Split breaks input into chained command segments. Commas start a new
// segment only before a known verb, and only when ChainCommas is set.
func (p *Parser) Split(input string) []string {
	var isVerb chain.VerbChecker
	if p.Config.ChainCommas {
		isVerb = p.Vocab.IsVerb
	}
	return chain.Split(input, isVerb)
}

// ParseChain splits input into commands and parses each against the same
// context. Callers that act on each command before the next is resolved
// should use Split and Parse instead.
func (p *Parser) ParseChain(input string, ctx scope.Context) []Result {
	segments := p.Split(input)
	if len(segments) == 0 {
		_, err := p.Parse(input, ctx)
		return []Result{{Input: input, Err: err}}
	}
	out := make([]Result, 0, len(segments))
	for _, seg := range segments {
		cmd, err := p.Parse(seg, ctx)
		out = append(out, Result{Input: seg, Command: cmd, Err: err})
	}
	return out
}

// Parse parses a single command. Failures are returned as *Error.
func (p *Parser) Parse(input string, ctx scope.Context) (*types.ParsedCommand, error) {
	id := uuid.NewString()

	if strings.TrimSpace(input) == "" {
		return nil, p.fail(id, &Error{Code: types.ErrNoInput, Input: input})
	}

	tokens := p.Tokenize(input)
	p.Observer.tokenize(TokenizeEvent{ID: id, Input: input, Tokens: tokens, Unknown: unknownWords(tokens)})
	if len(tokens) == 0 {
		return nil, p.fail(id, &Error{Code: types.ErrNoInput, Input: input})
	}

	opts := grammar.Options{
		MinConfidence: p.Config.MinConfidence,
		MaxMatches:    p.Config.MaxMatches,
	}
	if p.Observer.OnPatternMatch != nil {
		opts.Trace = func(a grammar.Attempt) {
			ev := PatternMatchEvent{ID: id, RuleID: a.Rule.ID, Pattern: a.Rule.Pattern, Action: a.Rule.Action}
			if a.Match != nil {
				ev.Matched = true
				ev.Confidence = a.Match.Confidence
				ev.Progress = a.Match.Consumed
			} else {
				ev.Progress = a.Failure.Progress
				ev.Reason = a.Failure.Reason.String()
			}
			p.Observer.patternMatch(ev)
		}
	}

	matches, failure := p.Grammar.Match(tokens, p.slotContext(ctx), opts)
	if len(matches) == 0 {
		return nil, p.fail(id, p.diagnose(input, tokens, failure, ctx))
	}

	sel := CandidateSelectionEvent{ID: id, Selected: matches[0].Rule.ID}
	for _, m := range matches {
		sel.Candidates = append(sel.Candidates, Candidate{
			RuleID:     m.Rule.ID,
			Action:     m.Rule.Action,
			Confidence: m.Confidence,
			Priority:   m.Rule.Priority,
		})
	}
	p.Observer.candidateSelection(sel)

	cmd, err := p.build(input, tokens, matches[0], ctx)
	if err != nil {
		return nil, p.fail(id, err)
	}
	return cmd, nil
}

// FindMatches exposes the ranked grammar matches for input without
// building a command.
func (p *Parser) FindMatches(input string, ctx scope.Context) []*grammar.PatternMatch {
	opts := grammar.Options{MinConfidence: p.Config.MinConfidence, MaxMatches: p.Config.MaxMatches}
	return p.Grammar.FindMatches(p.Tokenize(input), p.slotContext(ctx), opts)
}

// UpdatePronouns records a validated command's referents.
func (p *Parser) UpdatePronouns(cmd *types.ParsedCommand, world scope.World, turn int) {
	p.Pronouns.UpdateFromCommand(cmd, world, turn)
}

func (p *Parser) slotContext(ctx scope.Context) slots.Context {
	return slots.Context{
		Scope:      ctx,
		Pronouns:   p.Pronouns,
		Vocabulary: p.Categories,
		Lexicon:    p.Vocab,
	}
}

func (p *Parser) fail(id string, err *Error) *Error {
	if err.Message == "" {
		err.Message = p.message(err)
	}
	p.Observer.parseError(ErrorEvent{ID: id, Input: err.Input, Code: err.Code, Message: err.Message})
	return err
}

func unknownWords(tokens []types.Token) []string {
	var out []string
	for _, t := range tokens {
		if len(t.Candidates) == 1 && t.Candidates[0].POS == types.POSUnknown {
			out = append(out, t.Normalized)
		}
	}
	return out
}

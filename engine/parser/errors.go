package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/nathoo/questparse/engine/grammar"
	"github.com/nathoo/questparse/engine/pattern"
	"github.com/nathoo/questparse/engine/scope"
	"github.com/nathoo/questparse/types"
)

// Error is a user-facing parse failure.
type Error struct {
	Code        types.ErrorCode
	Message     string
	Input       string
	Verb        string
	Slot        string
	Text        string   // the slot text that failed
	Preposition string   // literal expected before a missing indirect object
	Object      string   // direct object text, when one was understood
	Understood  string   // leading input understood before leftover words
	Candidates  []string // entity IDs for AMBIGUOUS_INPUT and SCOPE_VIOLATION
	Suggestions []string
	RuleID      string

	carried bool     // scope violation against a carried-only slot
	labels  []string // display names of Candidates
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return string(e.Code)
}

// Is matches errors by code, so errors.Is(err, &parser.Error{Code: c}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// diagnose maps the failure with the most progress onto an error code.
func (p *Parser) diagnose(input string, tokens []types.Token, f *grammar.Failure, ctx scope.Context) *Error {
	first := tokens[0].Normalized
	if f == nil || !f.MatchedVerb() {
		return &Error{
			Code:        types.ErrUnknownVerb,
			Input:       input,
			Verb:        first,
			Suggestions: nearest(first, p.knownVerbs(), p.Config.SuggestionLimit),
		}
	}

	e := &Error{Input: input, Verb: f.Verb, Slot: f.Slot, Text: f.Text, RuleID: f.Rule.ID}
	if e.Verb == "" {
		e.Verb = first
	}
	if f.Rule.ErrorMessage != "" {
		e.Message = f.Rule.ErrorMessage
	}

	switch f.Reason {
	case grammar.ReasonMissingSlot:
		e.Code = types.ErrMissingObject
		e.Object = partialObject(f)
		if f.Role == grammar.RoleIndirect || f.Role == grammar.RoleInstrument ||
			(f.Role != grammar.RoleDirect && e.Object != "") {
			e.Code = types.ErrMissingIndirect
			e.Preposition = f.Expected
			if e.Preposition == "" {
				e.Preposition = f.Preposition
			}
		}

	case grammar.ReasonSlotFailed:
		isEntity := f.SlotType == types.SlotEntity || f.SlotType == types.SlotInstrument
		if !isEntity || ctx.World == nil || f.Text == "" {
			e.Code = types.ErrInvalidSyntax
			break
		}
		p.classifyEntity(e, f, ctx)

	case grammar.ReasonLeftover:
		e.Code = types.ErrInvalidSyntax
		e.Understood = understood(tokens, f.Progress)

	default:
		e.Code = types.ErrInvalidSyntax
	}
	return e
}

// classifyEntity decides between ENTITY_NOT_FOUND and SCOPE_VIOLATION for
// the first list item of the failed slot text that no constraint accepts.
func (p *Parser) classifyEntity(e *Error, f *grammar.Failure, ctx scope.Context) {
	constraints := f.Constraints
	if len(constraints) == 0 {
		constraints = []*scope.Constraint{scope.Visible()}
	}

	for _, item := range splitList(f.Text) {
		if inAny(item, constraints, ctx) {
			continue
		}
		e.Text = item
		if anywhere := scope.FindByName(item, scope.All(), ctx); len(anywhere) > 0 {
			e.Code = types.ErrScopeViolation
			e.Candidates = entityIDs(anywhere)
			e.carried = constraints[0].Base == types.ScopeCarried
			return
		}
		e.Code = types.ErrEntityNotFound
		var names []string
		for _, ent := range scope.InScope(constraints[0], ctx) {
			names = append(names, strings.ToLower(ent.Name))
		}
		e.Suggestions = nearest(scope.StripDeterminers(item), names, p.Config.SuggestionLimit)
		return
	}
	// Every item resolves on its own: the span was wrong, not the names.
	e.Code = types.ErrInvalidSyntax
}

func inAny(text string, constraints []*scope.Constraint, ctx scope.Context) bool {
	for _, c := range constraints {
		if len(scope.FindByName(text, c, ctx)) > 0 {
			return true
		}
	}
	return false
}

func splitList(text string) []string {
	text = strings.ReplaceAll(text, ",", " and ")
	var out []string
	for _, part := range strings.Split(text, " and ") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// partialObject returns the text of a filled slot other than the missing
// one, preferring the direct object.
func partialObject(f *grammar.Failure) string {
	names := make([]string, 0, len(f.Partial))
	for name := range f.Partial {
		names = append(names, name)
	}
	sort.Strings(names)

	var other string
	for _, name := range names {
		role := f.Rule.RoleOf(name)
		if role == f.Role && role != grammar.RoleNone {
			continue
		}
		if role == grammar.RoleDirect {
			return f.Partial[name].Text
		}
		if other == "" {
			other = f.Partial[name].Text
		}
	}
	return other
}

func understood(tokens []types.Token, n int) string {
	words := make([]string, 0, n)
	for _, t := range tokens[:n] {
		words = append(words, t.Word)
	}
	return strings.Join(words, " ")
}

func entityIDs(entities []*types.Entity) []string {
	out := make([]string, len(entities))
	for i, e := range entities {
		out[i] = e.ID
	}
	return out
}

// knownVerbs lists single-word verbs that lead at least one grammar rule.
func (p *Parser) knownVerbs() []string {
	seen := map[string]bool{}
	var out []string
	add := func(w string) {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	for _, r := range p.Grammar.Rules() {
		switch t := r.Compiled.Tokens[0]; t.Kind {
		case pattern.Literal:
			add(t.Value)
		case pattern.Alternatives:
			for _, w := range t.Alternatives {
				add(w)
			}
		}
	}
	return out
}

// nearest returns up to limit candidates within an edit distance that
// grows with the word's length.
func nearest(word string, candidates []string, limit int) []string {
	if limit <= 0 || word == "" {
		return nil
	}
	maxDist := 3
	switch n := len(word); {
	case n <= 4:
		maxDist = 1
	case n <= 8:
		maxDist = 2
	}

	type scored struct {
		word string
		dist int
	}
	var hits []scored
	seen := map[string]bool{}
	for _, c := range candidates {
		if c == word || seen[c] || len(c) < 2 {
			continue
		}
		seen[c] = true
		if d := levenshtein.ComputeDistance(word, c); d <= maxDist {
			hits = append(hits, scored{c, d})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].word < hits[j].word
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.word
	}
	return out
}

func candidateList(e *Error) string {
	names := e.labels
	if len(names) == 0 {
		names = e.Candidates
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return "the " + names[0]
	}
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = "the " + n
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " or " + parts[len(parts)-1]
}

// message renders an error through the message catalog.
func (p *Parser) message(e *Error) string {
	params := map[string]string{
		"verb":        e.Verb,
		"text":        e.Text,
		"object":      e.Object,
		"preposition": e.Preposition,
		"understood":  e.Understood,
		"candidates":  candidateList(e),
		"suggestions": strings.Join(e.Suggestions, ", "),
	}
	key := "parser.invalid_syntax"
	switch e.Code {
	case types.ErrNoInput:
		key = "parser.no_input"
	case types.ErrUnknownVerb:
		key = "parser.unknown_verb"
		if len(e.Suggestions) > 0 {
			key = "parser.unknown_verb_hint"
		}
	case types.ErrMissingObject:
		key = "parser.missing_object"
		if e.Object != "" {
			key = "parser.missing_object_for"
		}
	case types.ErrMissingIndirect:
		key = "parser.missing_indirect"
		if e.Preposition == "" {
			key = "parser.missing_indirect_bare"
		}
	case types.ErrEntityNotFound:
		key = "parser.entity_not_found"
		if len(e.Suggestions) > 0 {
			key = "parser.entity_not_found_hint"
		}
	case types.ErrScopeViolation:
		key = "parser.scope_violation"
		if e.carried {
			key = "parser.scope_carried"
		}
	case types.ErrAmbiguousInput:
		key = "parser.ambiguous"
	case types.ErrInvalidSyntax:
		if e.Understood != "" {
			key = "parser.leftover"
		}
	}
	return p.Messages.Format(key, params)
}

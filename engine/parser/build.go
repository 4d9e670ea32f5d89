package parser

import (
	"sort"
	"strings"

	"github.com/nathoo/questparse/engine/grammar"
	"github.com/nathoo/questparse/engine/pattern"
	"github.com/nathoo/questparse/engine/scope"
	"github.com/nathoo/questparse/engine/slots"
	"github.com/nathoo/questparse/types"
)

// build converts the selected match into a ParsedCommand and, when a world
// is available, resolves its entity slots to IDs.
func (p *Parser) build(input string, tokens []types.Token, m *grammar.PatternMatch, ctx scope.Context) (*types.ParsedCommand, *Error) {
	r := m.Rule
	cmd := &types.ParsedCommand{
		Raw:         input,
		Tokens:      tokens,
		Action:      r.Action,
		RuleID:      r.ID,
		Pattern:     shape(m),
		Verb:        verbPhrase(m),
		Preposition: m.Preposition,
		Direction:   m.Direction,
		Confidence:  m.Confidence,
		Semantics:   m.Semantics,
	}

	nth := ordinal(m)

	// Walk slots in pattern order so positional output is deterministic.
	for _, t := range r.Compiled.Tokens {
		if t.Kind != pattern.Slot {
			continue
		}
		sm, ok := m.Slots[t.SlotName]
		if !ok {
			continue
		}
		spec := r.Slot(t.SlotName)

		switch spec.Type {
		case types.SlotEntity, types.SlotInstrument:
			np := nounPhrase(sm)
			if ctx.World != nil {
				if err := p.resolve(&np, spec, ctx, nth); err != nil {
					err.Input, err.Verb, err.Slot, err.RuleID = input, cmd.Verb.Text, spec.Name, r.ID
					return nil, err
				}
			}
			switch r.RoleOf(spec.Name) {
			case grammar.RoleDirect:
				cmd.DirectObject = &np
			case grammar.RoleIndirect:
				cmd.IndirectObject = &np
			case grammar.RoleInstrument:
				cmd.Instrument = &np
			}
		case types.SlotText, types.SlotTextGreedy:
			if cmd.Text == "" {
				cmd.Text = sm.Text
			}
		case types.SlotTopic:
			cmd.Topic = sm.Text
		case types.SlotQuotedText:
			cmd.QuotedText = sm.Text
		case types.SlotNumber, types.SlotOrdinal, types.SlotTime:
			setValue(cmd, spec.Name, sm.Value)
		case types.SlotDirection:
			if d, ok := sm.Value.(string); ok {
				cmd.Direction = d
			}
			setValue(cmd, spec.Name, sm.Value)
		case types.SlotAdjective, types.SlotNoun:
			setValue(cmd, spec.Name, sm.MatchedWord)
		case types.SlotVocabulary:
			if cmd.Vocabulary == nil {
				cmd.Vocabulary = map[string]types.VocabularyMatch{}
			}
			cmd.Vocabulary[spec.Name] = types.VocabularyMatch{Category: sm.Category, Word: sm.MatchedWord}
		case types.SlotManner:
			cmd.Manner = sm.Manner
		}
	}
	return cmd, nil
}

func setValue(cmd *types.ParsedCommand, name string, v any) {
	if cmd.Values == nil {
		cmd.Values = map[string]any{}
	}
	cmd.Values[name] = v
}

func nounPhrase(sm *slots.Match) types.NounPhrase {
	np := types.NounPhrase{
		Text:      sm.Text,
		Tokens:    sm.Tokens,
		EntityID:  sm.EntityID,
		IsPronoun: sm.IsPronoun,
		IsAll:     sm.IsAll,
		IsList:    sm.IsList,
	}
	for i := range sm.Items {
		np.Items = append(np.Items, nounPhrase(&sm.Items[i]))
	}
	for i := range sm.Excluded {
		np.Excluded = append(np.Excluded, nounPhrase(&sm.Excluded[i]))
	}
	return np
}

// ordinal returns the value of the match's ORDINAL slot, or 0.
func ordinal(m *grammar.PatternMatch) int {
	for name, sm := range m.Slots {
		if spec := m.Rule.Slot(name); spec == nil || spec.Type != types.SlotOrdinal {
			continue
		}
		if n, ok := sm.Value.(int); ok {
			return n
		}
	}
	return 0
}

// resolve binds a noun phrase to entity IDs under the slot's constraints.
// "all" expands to every in-scope entity minus the exclusions. A positive
// nth picks among ambiguous candidates.
func (p *Parser) resolve(np *types.NounPhrase, spec *grammar.SlotSpec, ctx scope.Context, nth int) *Error {
	constraints := spec.Constraints
	if len(constraints) == 0 {
		constraints = []*scope.Constraint{scope.Visible()}
	}

	switch {
	case np.IsAll:
		excluded := map[string]bool{ctx.Actor: true}
		for i := range np.Excluded {
			resolveExclusion(&np.Excluded[i], constraints, ctx)
			for _, id := range np.Excluded[i].Candidates {
				excluded[id] = true
			}
		}
		for _, e := range scope.InScope(constraints[0], ctx) {
			if excluded[e.ID] || e.Actor != nil {
				continue
			}
			np.Items = append(np.Items, types.NounPhrase{Text: e.Name, EntityID: e.ID, Candidates: []string{e.ID}})
		}
		return nil

	case np.IsList:
		for i := range np.Items {
			if err := resolveOne(&np.Items[i], constraints, ctx); err != nil {
				return err
			}
		}
		return nil
	}
	return pickOrdinal(np, nth, resolveOne(np, constraints, ctx))
}

// resolveExclusion binds an "all but" phrase without failing the command.
// An exclusion that names nothing is ignored; an ambiguous one excludes
// every candidate.
func resolveExclusion(np *types.NounPhrase, constraints []*scope.Constraint, ctx scope.Context) {
	if np.EntityID != "" {
		np.Candidates = []string{np.EntityID}
		return
	}
	for _, c := range append(append([]*scope.Constraint(nil), constraints...), scope.All()) {
		res := scope.Resolve(np.Text, c, ctx)
		switch res.Status {
		case scope.Found:
			np.EntityID = res.Entities[0].ID
			np.Candidates = entityIDs(res.Entities)
			return
		case scope.Ambiguous:
			np.Candidates = entityIDs(res.Entities)
			return
		}
	}
}

// pickOrdinal applies "first", "second" and so on to the outcome of
// resolveOne. Candidates are ordered by ID.
func pickOrdinal(np *types.NounPhrase, nth int, err *Error) *Error {
	if nth <= 0 || (err != nil && err.Code != types.ErrAmbiguousInput) {
		return err
	}
	ids := append([]string(nil), np.Candidates...)
	sort.Strings(ids)
	if nth > len(ids) {
		return &Error{Code: types.ErrEntityNotFound, Text: np.Text}
	}
	np.EntityID = ids[nth-1]
	np.Candidates = ids
	return nil
}

func resolveOne(np *types.NounPhrase, constraints []*scope.Constraint, ctx scope.Context) *Error {
	if np.EntityID != "" {
		// Pronoun referents were chosen on an earlier turn; they must still
		// be in scope now.
		for _, c := range constraints {
			for _, e := range scope.InScope(c, ctx) {
				if e.ID == np.EntityID {
					np.Candidates = []string{e.ID}
					return nil
				}
			}
		}
		return &Error{Code: types.ErrScopeViolation, Text: np.Text, Candidates: []string{np.EntityID}, carried: carriedOnly(constraints)}
	}

	var res scope.Resolution
	for _, c := range constraints {
		res = scope.Resolve(np.Text, c, ctx)
		if res.Status == scope.Found || res.Status == scope.Ambiguous {
			break
		}
	}
	ids := entityIDs(res.Entities)
	switch res.Status {
	case scope.Found:
		np.EntityID = ids[0]
		np.Candidates = ids
		return nil
	case scope.Ambiguous:
		np.Candidates = ids
		labels := make([]string, len(res.Entities))
		for i, e := range res.Entities {
			labels[i] = strings.ToLower(e.Name)
		}
		return &Error{Code: types.ErrAmbiguousInput, Text: np.Text, Candidates: ids, labels: labels}
	case scope.OutOfScope:
		return &Error{Code: types.ErrScopeViolation, Text: np.Text, Candidates: ids, carried: carriedOnly(constraints)}
	default:
		return &Error{Code: types.ErrEntityNotFound, Text: np.Text}
	}
}

func carriedOnly(constraints []*scope.Constraint) bool {
	return len(constraints) == 1 && constraints[0].Base == types.ScopeCarried
}

// verbPhrase joins the literal words matched before the first slot.
func verbPhrase(m *grammar.PatternMatch) types.VerbPhrase {
	var vp types.VerbPhrase
	var words []string
	first := m.Rule.Compiled.FirstSlot()
	for _, lit := range m.Literals {
		if lit.Index > first {
			break
		}
		words = append(words, lit.Word)
		vp.Tokens = append(vp.Tokens, lit.Position)
	}
	if len(words) == 0 {
		return vp
	}
	vp.Text = strings.Join(words, " ")
	vp.Head = words[0]
	vp.Particles = words[1:]
	return vp
}

// shape tags the surface form of a match: VERB_ONLY, VERB_NOUN,
// VERB_NOUN_PREP_NOUN, DIRECTION_ONLY and so on.
func shape(m *grammar.PatternMatch) string {
	c := m.Rule.Compiled
	matched := map[int]bool{}
	for _, lit := range m.Literals {
		matched[lit.Index] = true
	}

	var parts []string
	push := func(s string) {
		if len(parts) > 0 && parts[len(parts)-1] == s && (s == "VERB" || s == "PREP") {
			return
		}
		parts = append(parts, s)
	}
	seenSlot := false
	for i, t := range c.Tokens {
		switch t.Kind {
		case pattern.Literal, pattern.Alternatives:
			if !matched[i] {
				continue
			}
			if seenSlot {
				push("PREP")
			} else {
				push("VERB")
			}
		case pattern.Slot:
			if _, ok := m.Slots[t.SlotName]; !ok {
				continue
			}
			seenSlot = true
			push(slotShape(m.Rule.Slot(t.SlotName).Type))
		}
	}

	switch {
	case len(parts) == 1 && parts[0] == "VERB":
		return "VERB_ONLY"
	case len(parts) == 1 && parts[0] == "DIRECTION":
		return "DIRECTION_ONLY"
	}
	return strings.Join(parts, "_")
}

func slotShape(t types.SlotType) string {
	switch t {
	case types.SlotEntity, types.SlotInstrument, types.SlotNoun:
		return "NOUN"
	case types.SlotDirection:
		return "DIRECTION"
	case types.SlotText, types.SlotTextGreedy, types.SlotTopic:
		return "TEXT"
	case types.SlotQuotedText:
		return "QUOTED"
	case types.SlotNumber, types.SlotOrdinal, types.SlotTime:
		return "NUMBER"
	case types.SlotAdjective:
		return "ADJECTIVE"
	case types.SlotManner:
		return "MANNER"
	default:
		return "WORD"
	}
}

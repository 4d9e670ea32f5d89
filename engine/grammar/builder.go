package grammar

import (
	"errors"
	"fmt"

	"github.com/nathoo/questparse/engine/pattern"
	"github.com/nathoo/questparse/engine/scope"
	"github.com/nathoo/questparse/types"
)

// Builder assembles a rule fluently. Errors are collected and reported by Build.
type Builder struct {
	rule   *Rule
	errs   []error
	engine *Engine // nil for detached builders
}

// NewBuilder starts a detached rule; Build does not register it anywhere.
func NewBuilder(source string) *Builder {
	return newBuilder(source, nil, SourceCore)
}

func newBuilder(source string, e *Engine, src Source) *Builder {
	b := &Builder{
		rule: &Rule{
			Pattern:  source,
			Priority: DefaultPriority,
			Slots:    map[string]*SlotSpec{},
			Source:   src,
		},
		engine: e,
	}
	compiled, err := pattern.Compile(source)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.rule.Compiled = compiled
	return b
}

func (b *Builder) slot(name string) *SlotSpec {
	if s, ok := b.rule.Slots[name]; ok {
		return s
	}
	if b.rule.Compiled == nil {
		return &SlotSpec{Name: name}
	}
	idx, ok := b.rule.Compiled.Slots[name]
	if !ok {
		b.errs = append(b.errs, fmt.Errorf("unknown slot %q", name))
		return &SlotSpec{Name: name}
	}
	s := &SlotSpec{Name: name, Type: b.rule.Compiled.Tokens[idx].SlotType}
	b.rule.Slots[name] = s
	return s
}

func (b *Builder) typed(name string, t types.SlotType) *Builder {
	b.slot(name).Type = t
	return b
}

// Where adds a scope constraint to an entity slot. Repeated calls add
// alternatives; the slot is satisfied if any constraint is.
func (b *Builder) Where(name string, c *scope.Constraint) *Builder {
	s := b.slot(name)
	s.Constraints = append(s.Constraints, c)
	return b
}

func (b *Builder) Text(name string) *Builder       { return b.typed(name, types.SlotText) }
func (b *Builder) GreedyText(name string) *Builder { return b.typed(name, types.SlotTextGreedy) }
func (b *Builder) Quoted(name string) *Builder     { return b.typed(name, types.SlotQuotedText) }
func (b *Builder) Topic(name string) *Builder      { return b.typed(name, types.SlotTopic) }
func (b *Builder) Number(name string) *Builder     { return b.typed(name, types.SlotNumber) }
func (b *Builder) Ordinal(name string) *Builder    { return b.typed(name, types.SlotOrdinal) }
func (b *Builder) Time(name string) *Builder       { return b.typed(name, types.SlotTime) }
func (b *Builder) Direction(name string) *Builder  { return b.typed(name, types.SlotDirection) }
func (b *Builder) Adjective(name string) *Builder  { return b.typed(name, types.SlotAdjective) }
func (b *Builder) Noun(name string) *Builder       { return b.typed(name, types.SlotNoun) }
func (b *Builder) Manner(name string) *Builder     { return b.typed(name, types.SlotManner) }

// Instrument marks an entity slot as the instrument of the action.
func (b *Builder) Instrument(name string, constraints ...*scope.Constraint) *Builder {
	s := b.slot(name)
	s.Type = types.SlotInstrument
	s.Constraints = append(s.Constraints, constraints...)
	return b
}

// Vocabulary restricts a slot to words of a contextual vocabulary category.
func (b *Builder) Vocabulary(name, category string) *Builder {
	s := b.slot(name)
	s.Type = types.SlotVocabulary
	s.Category = category
	return b
}

// SlotType sets a slot's type directly.
func (b *Builder) SlotType(name string, t types.SlotType) *Builder {
	return b.typed(name, t)
}

func (b *Builder) MapsTo(action string) *Builder {
	b.rule.Action = action
	return b
}

func (b *Builder) WithPriority(p int) *Builder {
	b.rule.Priority = p
	return b
}

func (b *Builder) WithDefaultSemantics(s types.Semantics) *Builder {
	if b.rule.DefaultSemantics == nil {
		b.rule.DefaultSemantics = types.Semantics{}
	}
	for k, v := range s {
		b.rule.DefaultSemantics[k] = v
	}
	return b
}

func (b *Builder) WithVerbSemantics(m map[string]types.Semantics) *Builder {
	b.rule.VerbSemantics = mergeSemanticMap(b.rule.VerbSemantics, m)
	return b
}

func (b *Builder) WithPrepositionSemantics(m map[string]types.Semantics) *Builder {
	b.rule.PrepositionSemantics = mergeSemanticMap(b.rule.PrepositionSemantics, m)
	return b
}

func (b *Builder) WithDirectionSemantics(m map[string]types.Semantics) *Builder {
	b.rule.DirectionSemantics = mergeSemanticMap(b.rule.DirectionSemantics, m)
	return b
}

// Experimental scales every match of the rule by multiplier (0 < m ≤ 1).
func (b *Builder) Experimental(multiplier float64) *Builder {
	if multiplier <= 0 || multiplier > 1 {
		b.errs = append(b.errs, fmt.Errorf("experimental multiplier %v out of range", multiplier))
	}
	b.rule.Experimental = multiplier
	return b
}

func (b *Builder) Describe(text string) *Builder {
	b.rule.Description = text
	return b
}

func (b *Builder) WithErrorMessage(text string) *Builder {
	b.rule.ErrorMessage = text
	return b
}

// Roles names the slots filling the direct and indirect object roles,
// for patterns where word order differs from the positional default
// ("give :recipient :item").
func (b *Builder) Roles(direct, indirect string) *Builder {
	if direct != "" {
		b.slot(direct)
	}
	if indirect != "" {
		b.slot(indirect)
	}
	b.rule.direct, b.rule.indirect = direct, indirect
	return b
}

// Build validates the rule and, for builders obtained from an Engine or
// Story, registers it.
func (b *Builder) Build() (*Rule, error) {
	r := b.rule
	if r.Action == "" {
		b.errs = append(b.errs, errors.New("no action: call MapsTo"))
	}
	if len(b.errs) > 0 {
		return nil, &RuleError{Action: r.Action, Pattern: r.Pattern, Err: errors.Join(b.errs...)}
	}
	for name, s := range r.Slots {
		if s.Type == types.SlotVocabulary && s.Category == "" {
			return nil, &RuleError{Action: r.Action, Pattern: r.Pattern, Err: fmt.Errorf("vocabulary slot %q has no category", name)}
		}
	}
	if b.engine != nil {
		b.engine.add(r)
	}
	return r, nil
}

// MustBuild is like Build but panics on error. For built-in grammars.
func (b *Builder) MustBuild() *Rule {
	r, err := b.Build()
	if err != nil {
		panic(err)
	}
	return r
}

func mergeSemanticMap(dst, src map[string]types.Semantics) map[string]types.Semantics {
	if dst == nil {
		dst = map[string]types.Semantics{}
	}
	for k, v := range src {
		if dst[k] == nil {
			dst[k] = types.Semantics{}
		}
		for kk, vv := range v {
			dst[k][kk] = vv
		}
	}
	return dst
}

package loader

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nathoo/questparse/engine/grammar"
	"github.com/nathoo/questparse/engine/parser"
	"github.com/nathoo/questparse/engine/scope"
	"github.com/nathoo/questparse/engine/world"
	"github.com/nathoo/questparse/types"
)

const (
	storySource   = "story"
	storyPriority = 50
)

// Name implements vocab.Provider.
func (s *Story) Name() string { return storySource }

// Priority implements vocab.Provider.
func (s *Story) Priority() int { return storyPriority }

// Entries implements vocab.Provider.
func (s *Story) Entries() []types.VocabEntry {
	out := make([]types.VocabEntry, len(s.Vocabulary))
	copy(out, s.Vocabulary)
	return out
}

// World creates a fresh world over the story's definitions.
func (s *Story) World() *world.World {
	return world.New(s.Defs)
}

// Apply installs the story into p: vocabulary, entity names, categories and
// grammar declarations in file order. experimental is the multiplier used
// for rules marked experimental without their own. Every failing
// declaration is reported; the others are still applied.
func (s *Story) Apply(p *parser.Parser, experimental float64) error {
	p.Vocab.LoadProvider(s)
	for _, e := range s.Defs.EntityList() {
		names := append([]string{e.Name}, e.Aliases...)
		p.Vocab.RegisterEntity(e.ID, names, e.Adjectives)
	}
	for _, c := range s.Categories {
		p.Categories.Add(c)
	}

	var errs []error
	for _, d := range s.Grammar {
		if err := d.apply(p, experimental); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d GrammarDecl) apply(p *parser.Parser, experimental float64) error {
	story := p.Story
	var b *grammar.Builder
	switch d.Op {
	case OpRemove:
		id := d.ID
		if id == "" {
			for _, r := range p.Grammar.RulesFor(d.Action) {
				if r.Pattern == d.Pattern {
					id = r.ID
					break
				}
			}
		}
		if id == "" || !story.Remove(id) {
			return fmt.Errorf("remove %s: no such rule", d.label())
		}
		return nil
	case OpDefine:
		b = story.Define(d.Pattern)
		if d.Action != "" {
			b.MapsTo(d.Action)
		}
	case OpOverride:
		b = story.Override(d.Action, d.Pattern)
	case OpExtend:
		b = story.Extend(d.Action)
	default:
		return fmt.Errorf("unknown grammar operation %q", d.Op)
	}

	if d.Priority != 0 {
		b.WithPriority(d.Priority)
	}
	for _, name := range d.slotNames() {
		d.Slots[name].apply(b, name)
	}
	if d.Semantics != nil {
		b.WithDefaultSemantics(d.Semantics)
	}
	if d.VerbSemantics != nil {
		b.WithVerbSemantics(d.VerbSemantics)
	}
	if d.PrepositionSemantics != nil {
		b.WithPrepositionSemantics(d.PrepositionSemantics)
	}
	if d.DirectionSemantics != nil {
		b.WithDirectionSemantics(d.DirectionSemantics)
	}
	if d.Experimental {
		m := d.Multiplier
		if m == 0 {
			m = experimental
		}
		b.Experimental(m)
	}
	if d.Description != "" {
		b.Describe(d.Description)
	}
	if d.ErrorMessage != "" {
		b.WithErrorMessage(d.ErrorMessage)
	}
	if d.Direct != "" || d.Indirect != "" {
		b.Roles(d.Direct, d.Indirect)
	}

	if _, err := b.Build(); err != nil {
		return fmt.Errorf("%s %s: %w", d.Op, d.label(), err)
	}
	return nil
}

func (d GrammarDecl) label() string {
	if d.ID != "" {
		return fmt.Sprintf("%q", d.ID)
	}
	if d.Pattern != "" {
		return fmt.Sprintf("%q", d.Pattern)
	}
	return fmt.Sprintf("%q", d.Action)
}

func (d GrammarDecl) slotNames() []string {
	names := make([]string, 0, len(d.Slots))
	for n := range d.Slots {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (s SlotDecl) apply(b *grammar.Builder, name string) {
	switch s.Type {
	case types.SlotVocabulary:
		b.Vocabulary(name, s.Category)
		return
	case types.SlotInstrument:
		b.Instrument(name, s.constraints()...)
		return
	case "", types.SlotEntity:
		if s.Type != "" {
			b.SlotType(name, s.Type)
		}
		for _, c := range s.constraints() {
			b.Where(name, c)
		}
		return
	default:
		b.SlotType(name, s.Type)
	}
}

func (s SlotDecl) constraints() []*scope.Constraint {
	if s.Scope == "" && len(s.Traits) == 0 && len(s.Props) == 0 {
		return nil
	}
	base := s.Scope
	if base == "" {
		base = types.ScopeVisible
	}
	c := scope.New(base)
	if len(s.Traits) > 0 {
		c = c.HasTrait(s.Traits...)
	}
	if len(s.Props) > 0 {
		c = c.Matching(s.Props)
	}
	return []*scope.Constraint{c}
}

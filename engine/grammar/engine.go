package grammar

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/nathoo/questparse/engine/pattern"
	"github.com/nathoo/questparse/engine/slots"
	"github.com/nathoo/questparse/engine/vocab"
	"github.com/nathoo/questparse/types"
)

// SkipPenalty is the confidence factor applied per skipped optional unit.
const SkipPenalty = 0.9

// Options bound a FindMatches call.
type Options struct {
	MinConfidence float64
	MaxMatches    int
	// Trace, if set, is called once per rule attempted.
	Trace func(Attempt)
}

// DefaultOptions returns the standard match options.
func DefaultOptions() Options {
	return Options{MinConfidence: 0.1, MaxMatches: 10}
}

// LiteralMatch records a literal or alternation unit that matched input.
type LiteralMatch struct {
	Index    int // pattern token index
	Position int // input token index
	Word     string
}

// PatternMatch is one successful rule match.
type PatternMatch struct {
	Rule        *Rule
	Slots       map[string]*slots.Match
	Literals    []LiteralMatch
	Confidence  float64
	Consumed    int
	Skipped     int
	Verb        string
	Preposition string
	Direction   string
	Semantics   types.Semantics
}

// Attempt is the trace record of trying one rule.
type Attempt struct {
	Rule    *Rule
	Match   *PatternMatch // nil on failure
	Failure *Failure      // nil on success
}

// Engine holds the rule set. Matching takes a read lock and mutation a
// write lock, so rules may be changed between parses from another goroutine.
type Engine struct {
	mu    sync.RWMutex
	rules []*Rule
	slots *slots.Registry
	seq   int

	overridden int
	attempts   atomic.Int64
	successes  atomic.Int64
}

// New creates an empty engine using the built-in slot consumers.
func New() *Engine {
	return NewWithSlots(slots.NewRegistry())
}

// NewWithSlots creates an empty engine using the given slot registry.
func NewWithSlots(reg *slots.Registry) *Engine {
	return &Engine{slots: reg}
}

// Define starts a core rule that Build registers with the engine.
func (e *Engine) Define(source string) *Builder {
	return newBuilder(source, e, SourceCore)
}

// Add registers an already-built rule. A rule without a compiled pattern
// is compiled from r.Pattern first; one that fails to compile is rejected.
func (e *Engine) Add(r *Rule) error {
	if r == nil {
		return errors.New("grammar: nil rule")
	}
	if r.Compiled == nil {
		compiled, err := pattern.Compile(r.Pattern)
		if err != nil {
			return &RuleError{Action: r.Action, Pattern: r.Pattern, Err: err}
		}
		r.Compiled = compiled
	}
	e.add(r)
	return nil
}

func (e *Engine) add(r *Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq++
	if r.ID == "" {
		r.ID = fmt.Sprintf("%s:%s:%d", r.Source, r.Action, e.seq)
	}
	r.order = e.seq
	e.rules = append(e.rules, r)
}

// Remove deletes the rule with the given ID.
func (e *Engine) Remove(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, r := range e.rules {
		if r.ID == id {
			e.rules = append(e.rules[:i], e.rules[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops every non-core rule.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	kept := e.rules[:0]
	for _, r := range e.rules {
		if r.Source == SourceCore {
			kept = append(kept, r)
		}
	}
	e.rules = kept
	e.overridden = 0
}

// Rules returns a snapshot of the rule set in registration order.
func (e *Engine) Rules() []*Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]*Rule(nil), e.rules...)
}

// RulesFor returns the rules mapping to action, highest priority first.
func (e *Engine) RulesFor(action string) []*Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rulesFor(action)
}

func (e *Engine) rulesFor(action string) []*Rule {
	var out []*Rule
	for _, r := range e.rules {
		if r.Action == action {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out
}

// Stats summarizes the rule set and match counters.
type Stats struct {
	Total             int
	Core              int
	Story             int
	Overridden        int
	ByAction          map[string]int
	MatchAttempts     int64
	SuccessfulMatches int64
}

// Stats returns current statistics.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s := Stats{
		Total:             len(e.rules),
		Overridden:        e.overridden,
		ByAction:          map[string]int{},
		MatchAttempts:     e.attempts.Load(),
		SuccessfulMatches: e.successes.Load(),
	}
	for _, r := range e.rules {
		if r.Source == SourceCore {
			s.Core++
		} else {
			s.Story++
		}
		s.ByAction[r.Action]++
	}
	return s
}

// FindMatches returns the successful matches for tokens, ranked by
// confidence then priority.
func (e *Engine) FindMatches(tokens []types.Token, ctx slots.Context, opts Options) []*PatternMatch {
	matches, _ := e.Match(tokens, ctx, opts)
	return matches
}

// Match is FindMatches that also reports the failure with the most
// progress when no rule matched.
func (e *Engine) Match(tokens []types.Token, ctx slots.Context, opts Options) ([]*PatternMatch, *Failure) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var matches []*PatternMatch
	var best *Failure
	var rejected []*Rule
	for _, r := range e.rules {
		if r.Compiled.MinTokens > len(tokens) {
			rejected = append(rejected, r)
			continue
		}
		e.attempts.Add(1)
		m, f := e.try(r, tokens, ctx)
		if opts.Trace != nil {
			opts.Trace(Attempt{Rule: r, Match: m, Failure: f})
		}
		if m == nil {
			if f.better(best) {
				best = f
			}
			continue
		}
		e.successes.Add(1)
		if m.Confidence >= opts.MinConfidence {
			matches = append(matches, m)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return a.Rule.Priority > b.Rule.Priority
	})
	if opts.MaxMatches > 0 && len(matches) > opts.MaxMatches {
		matches = matches[:opts.MaxMatches]
	}
	if len(matches) > 0 {
		return matches, nil
	}

	// Rules rejected up front cannot match, but they still tell us how far
	// the input got ("take" stops at the slot of "take :item").
	for _, r := range rejected {
		if _, f := e.try(r, tokens, ctx); f != nil && f.better(best) {
			best = f
		}
	}
	return nil, best
}

// try walks the pattern left to right against the input. It never panics
// or returns an error; failure is reported as a *Failure.
func (e *Engine) try(r *Rule, tokens []types.Token, ctx slots.Context) (*PatternMatch, *Failure) {
	m := &PatternMatch{Rule: r, Slots: map[string]*slots.Match{}, Confidence: 1}
	pos := 0
	fail := func(i int, reason Reason) (*PatternMatch, *Failure) {
		return nil, newFailure(r, m, tokens, i, pos, reason)
	}

	for i, pt := range r.Compiled.Tokens {
		switch pt.Kind {
		case pattern.Literal, pattern.Alternatives:
			if pos < len(tokens) && pt.Matches(tokens[pos].Normalized) {
				m.Literals = append(m.Literals, LiteralMatch{Index: i, Position: pos, Word: tokens[pos].Normalized})
				pos++
				continue
			}
			if pt.Optional {
				m.Skipped++
				continue
			}
			if pos >= len(tokens) {
				return fail(i, ReasonExhausted)
			}
			return fail(i, ReasonMismatch)

		case pattern.Slot:
			spec := r.Slot(pt.SlotName)
			if pos >= len(tokens) {
				if pt.Optional {
					m.Skipped++
					continue
				}
				return fail(i, ReasonMissingSlot)
			}
			sm := e.slots.Consume(&slots.Request{
				Tokens:      tokens,
				Start:       pos,
				Pattern:     r.Compiled,
				Index:       i,
				Name:        pt.SlotName,
				Type:        spec.Type,
				Category:    spec.Category,
				Constraints: spec.Constraints,
				Context:     ctx,
			})
			if sm == nil {
				if pt.Optional {
					m.Skipped++
					continue
				}
				return fail(i, ReasonSlotFailed)
			}
			m.Slots[pt.SlotName] = sm
			m.Confidence *= sm.Confidence
			pos = lastIndex(sm.Tokens) + 1
		}
	}
	if pos < len(tokens) {
		return fail(len(r.Compiled.Tokens), ReasonLeftover)
	}

	m.Consumed = pos
	m.Confidence *= math.Pow(SkipPenalty, float64(m.Skipped))
	if r.Experimental > 0 {
		m.Confidence *= r.Experimental
	}
	resolveSemantics(m)
	return m, nil
}

func lastIndex(idx []int) int {
	last := idx[0]
	for _, i := range idx[1:] {
		if i > last {
			last = i
		}
	}
	return last
}

// resolveSemantics finds the verb, preposition and direction words of a
// match and layers the rule's semantic maps in that order.
func resolveSemantics(m *PatternMatch) {
	r := m.Rule
	firstSlot := r.Compiled.FirstSlot()

	for _, lit := range m.Literals {
		switch {
		case lit.Position == 0:
			m.Verb = lit.Word
		case lit.Index > firstSlot && m.Preposition == "":
			m.Preposition = lit.Word
		}
	}
	for name, sm := range m.Slots {
		switch {
		case sm.Type == types.SlotDirection:
			m.Direction, _ = sm.Value.(string)
		case name == "direction" && m.Direction == "":
			if d, ok := vocab.Directions[strings.ToLower(sm.Text)]; ok {
				m.Direction = d
			} else {
				m.Direction = sm.Text
			}
		case name == "preposition":
			m.Preposition = sm.MatchedWord
			if m.Preposition == "" {
				m.Preposition = sm.Text
			}
		}
	}
	if m.Direction == "" {
		if d, ok := vocab.Directions[m.Verb]; ok && r.DirectionSemantics != nil {
			m.Direction = d
		}
	}

	sem := cloneSemantics(r.DefaultSemantics)
	if sem == nil {
		sem = types.Semantics{}
	}
	layer := func(s types.Semantics) {
		for k, v := range s {
			sem[k] = v
		}
	}
	if m.Verb != "" {
		layer(r.VerbSemantics[m.Verb])
	}
	if m.Preposition != "" {
		layer(r.PrepositionSemantics[m.Preposition])
	}
	if m.Direction != "" {
		layer(r.DirectionSemantics[m.Direction])
	}
	m.Semantics = sem
}

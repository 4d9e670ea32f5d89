package grammar

import (
	"strings"

	"github.com/nathoo/questparse/engine/pattern"
	"github.com/nathoo/questparse/engine/scope"
	"github.com/nathoo/questparse/engine/slots"
	"github.com/nathoo/questparse/types"
)

// Reason says why a rule attempt failed.
type Reason int

// Reasons are ordered from least to most specific; among failures with
// equal progress the more specific one is reported.
const (
	ReasonMismatch    Reason = iota // a required literal did not match
	ReasonExhausted                 // input ended at a required literal
	ReasonLeftover                  // pattern done, tokens remain
	ReasonMissingSlot               // input ended at a required slot
	ReasonSlotFailed                // a slot consumer rejected the input
)

func (r Reason) String() string {
	switch r {
	case ReasonMismatch:
		return "mismatch"
	case ReasonExhausted:
		return "exhausted"
	case ReasonLeftover:
		return "leftover"
	case ReasonMissingSlot:
		return "missing_slot"
	default:
		return "slot_failed"
	}
}

// Failure describes how far a rule got before failing.
type Failure struct {
	Rule     *Rule
	Reason   Reason
	Progress int // input tokens consumed before the failure
	Verb     string
	Expected string // primary word of the literal where input ran out

	// Preposition is the first literal matched after the first slot.
	Preposition string

	Partial map[string]*slots.Match // slots filled before the failure

	// Slot details, for MissingSlot and SlotFailed.
	Slot        string
	SlotType    types.SlotType
	Role        Role
	Text        string // input the slot was offered
	Constraints []*scope.Constraint
}

func newFailure(r *Rule, m *PatternMatch, tokens []types.Token, index, pos int, reason Reason) *Failure {
	f := &Failure{Rule: r, Reason: reason, Progress: pos, Partial: m.Slots}
	first := r.Compiled.FirstSlot()
	for _, lit := range m.Literals {
		switch {
		case lit.Position == 0:
			f.Verb = lit.Word
		case lit.Index > first && f.Preposition == "":
			f.Preposition = lit.Word
		}
	}

	// Input ran out before a literal, but a required slot still follows:
	// report the slot as missing.
	if reason == ReasonExhausted {
		f.Expected = r.Compiled.Tokens[index].Value
		for j := index + 1; j < len(r.Compiled.Tokens); j++ {
			t := r.Compiled.Tokens[j]
			if t.Kind == pattern.Slot && !t.Optional {
				f.Reason = ReasonMissingSlot
				index = j
				break
			}
		}
	}

	if index < len(r.Compiled.Tokens) {
		if t := r.Compiled.Tokens[index]; t.Kind == pattern.Slot {
			spec := r.Slot(t.SlotName)
			f.Slot = t.SlotName
			f.SlotType = spec.Type
			f.Role = r.RoleOf(t.SlotName)
			f.Constraints = spec.Constraints
			if reason == ReasonSlotFailed {
				f.Text = attempted(r.Compiled, index, tokens, pos)
			}
		}
	}
	if reason == ReasonLeftover {
		f.Text = joinWords(tokens[pos:])
	}
	return f
}

// attempted returns the input a slot was offered: everything from pos up to
// the next pattern delimiter.
func attempted(c *pattern.Compiled, index int, tokens []types.Token, pos int) string {
	delim := c.NextDelimiter(index)
	end := len(tokens)
	if delim >= 0 {
		for i := pos; i < len(tokens); i++ {
			if c.Tokens[delim].Matches(tokens[i].Normalized) {
				end = i
				break
			}
		}
	}
	return joinWords(tokens[pos:end])
}

func joinWords(tokens []types.Token) string {
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = t.Word
	}
	return strings.Join(words, " ")
}

// better reports whether f should replace the current best failure.
func (f *Failure) better(best *Failure) bool {
	if best == nil {
		return true
	}
	if f.Progress != best.Progress {
		return f.Progress > best.Progress
	}
	if f.Reason != best.Reason {
		return f.Reason > best.Reason
	}
	if f.Rule.Priority != best.Rule.Priority {
		return f.Rule.Priority > best.Rule.Priority
	}
	return f.Rule.order < best.Rule.order
}

// MatchedVerb reports whether the rule got past its leading unit.
func (f *Failure) MatchedVerb() bool {
	return f.Progress > 0
}

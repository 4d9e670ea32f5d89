// Package grammar owns the compiled rule set and matches token streams
// against it.
package grammar

import (
	"fmt"

	"github.com/nathoo/questparse/engine/pattern"
	"github.com/nathoo/questparse/engine/scope"
	"github.com/nathoo/questparse/types"
)

// Source tags where a rule came from.
type Source string

const (
	SourceCore      Source = "core"
	SourceStory     Source = "story"
	SourceExtension Source = "story_extension"
)

// DefaultPriority is the priority of rules that do not set one.
const DefaultPriority = 100

// SlotSpec declares the type and constraints of one pattern slot.
type SlotSpec struct {
	Name        string
	Type        types.SlotType
	Category    string // VOCABULARY category
	Constraints []*scope.Constraint
}

// Role is the grammatical role an entity slot fills in a parsed command.
type Role int

const (
	RoleNone Role = iota
	RoleDirect
	RoleIndirect
	RoleInstrument
)

// Rule binds a compiled pattern to an action.
type Rule struct {
	ID          string
	Pattern     string
	Compiled    *pattern.Compiled
	Action      string
	Priority    int
	Slots       map[string]*SlotSpec
	Source      Source
	Description string
	// ErrorMessage replaces the generic message when this rule produced
	// the best partial match of a failed parse.
	ErrorMessage string

	DefaultSemantics     types.Semantics
	VerbSemantics        map[string]types.Semantics
	PrepositionSemantics map[string]types.Semantics
	DirectionSemantics   map[string]types.Semantics

	// Experimental, when non-zero, multiplies the confidence of every match.
	Experimental float64

	direct, indirect string // explicit role slots; empty means positional
	order            int
}

// Slot returns the spec for a slot, defaulting to the type implied by the pattern.
func (r *Rule) Slot(name string) *SlotSpec {
	if s, ok := r.Slots[name]; ok {
		return s
	}
	idx, ok := r.Compiled.Slots[name]
	if !ok {
		return nil
	}
	return &SlotSpec{Name: name, Type: r.Compiled.Tokens[idx].SlotType}
}

// RoleOf returns the role a slot plays. Unless overridden with Roles, the
// first entity slot is the direct object, the second the indirect object,
// and INSTRUMENT slots are instruments.
func (r *Rule) RoleOf(name string) Role {
	spec := r.Slot(name)
	if spec == nil {
		return RoleNone
	}
	switch spec.Type {
	case types.SlotInstrument:
		return RoleInstrument
	case types.SlotEntity:
	default:
		return RoleNone
	}
	if r.direct != "" || r.indirect != "" {
		switch name {
		case r.direct:
			return RoleDirect
		case r.indirect:
			return RoleIndirect
		}
		return RoleNone
	}
	n := 0
	for _, t := range r.Compiled.Tokens {
		if t.Kind != pattern.Slot || r.Slot(t.SlotName).Type != types.SlotEntity {
			continue
		}
		if t.SlotName == name {
			if n == 0 {
				return RoleDirect
			}
			return RoleIndirect
		}
		n++
	}
	return RoleNone
}

func (r *Rule) String() string {
	return fmt.Sprintf("%s [%s] → %s (p%d)", r.ID, r.Pattern, r.Action, r.Priority)
}

func (r *Rule) clone() *Rule {
	c := *r
	c.Slots = make(map[string]*SlotSpec, len(r.Slots))
	for k, s := range r.Slots {
		cs := *s
		cs.Constraints = make([]*scope.Constraint, len(s.Constraints))
		for i, con := range s.Constraints {
			cs.Constraints[i] = con.Clone()
		}
		c.Slots[k] = &cs
	}
	c.DefaultSemantics = cloneSemantics(r.DefaultSemantics)
	c.VerbSemantics = cloneSemanticMap(r.VerbSemantics)
	c.PrepositionSemantics = cloneSemanticMap(r.PrepositionSemantics)
	c.DirectionSemantics = cloneSemanticMap(r.DirectionSemantics)
	return &c
}

func cloneSemantics(s types.Semantics) types.Semantics {
	if s == nil {
		return nil
	}
	out := make(types.Semantics, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func cloneSemanticMap(m map[string]types.Semantics) map[string]types.Semantics {
	if m == nil {
		return nil
	}
	out := make(map[string]types.Semantics, len(m))
	for k, v := range m {
		out[k] = cloneSemantics(v)
	}
	return out
}

// RuleError reports a rule that could not be built.
type RuleError struct {
	Action  string
	Pattern string
	Err     error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("grammar rule %q (%s): %v", e.Pattern, e.Action, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

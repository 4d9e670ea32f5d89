// Package scope decides which world entities an entity slot may refer to.
package scope

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/questparse/types"
)

// World is the read-only view of the world model the parser needs.
type World interface {
	VisibleEntities(actor, location string) []*types.Entity
	TouchableEntities(actor, location string) []*types.Entity
	CarriedEntities(actor string) []*types.Entity
	NearbyEntities(actor, location string) []*types.Entity
	AllEntities() []*types.Entity
	Entity(id string) (*types.Entity, bool)
}

// Context is the world snapshot a parse runs against.
type Context struct {
	World    World
	Actor    string
	Location string
}

// Predicate is an arbitrary entity filter.
type Predicate func(e *types.Entity, ctx Context) bool

// Constraint is the eligibility rule of an entity slot.
type Constraint struct {
	Base       types.ScopeBase
	Properties map[string]any
	Predicates []Predicate
	Traits     []string
	Explicit   []string
}

// New returns a constraint over the given base scope.
func New(base types.ScopeBase) *Constraint { return &Constraint{Base: base} }

func All() *Constraint       { return New(types.ScopeAll) }
func Visible() *Constraint   { return New(types.ScopeVisible) }
func Touchable() *Constraint { return New(types.ScopeTouchable) }
func Carried() *Constraint   { return New(types.ScopeCarried) }
func Nearby() *Constraint    { return New(types.ScopeNearby) }

// Matching adds property equality filters.
func (c *Constraint) Matching(props map[string]any) *Constraint {
	if c.Properties == nil {
		c.Properties = map[string]any{}
	}
	for k, v := range props {
		c.Properties[k] = v
	}
	return c
}

// Where adds a predicate filter.
func (c *Constraint) Where(p Predicate) *Constraint {
	c.Predicates = append(c.Predicates, p)
	return c
}

// HasTrait requires every named trait.
func (c *Constraint) HasTrait(traits ...string) *Constraint {
	c.Traits = append(c.Traits, traits...)
	return c
}

// Including allow-lists entity IDs regardless of base scope and filters.
func (c *Constraint) Including(ids ...string) *Constraint {
	c.Explicit = append(c.Explicit, ids...)
	return c
}

// Clone returns a deep copy.
func (c *Constraint) Clone() *Constraint {
	out := &Constraint{Base: c.Base}
	if c.Properties != nil {
		out.Matching(c.Properties)
	}
	out.Predicates = append(out.Predicates, c.Predicates...)
	out.Traits = append(out.Traits, c.Traits...)
	out.Explicit = append(out.Explicit, c.Explicit...)
	return out
}

func (c *Constraint) String() string {
	parts := []string{string(c.Base)}
	keys := make([]string, 0, len(c.Properties))
	for k := range c.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, c.Properties[k]))
	}
	for _, t := range c.Traits {
		parts = append(parts, "+"+t)
	}
	if n := len(c.Predicates); n > 0 {
		parts = append(parts, fmt.Sprintf("where×%d", n))
	}
	for _, id := range c.Explicit {
		parts = append(parts, "#"+id)
	}
	return strings.Join(parts, " ")
}

// HasTrait reports whether an entity declares a trait. The "actor" trait is
// implied by an ActorTrait.
func HasTrait(e *types.Entity, trait string) bool {
	if trait == "actor" && e.Actor != nil {
		return true
	}
	for _, t := range e.Traits {
		if t == trait {
			return true
		}
	}
	return false
}

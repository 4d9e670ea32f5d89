package scope

import (
	"fmt"
	"strings"

	"github.com/nathoo/questparse/types"
)

// Status classifies the outcome of resolving a name against a constraint.
type Status int

const (
	Found      Status = iota // exactly one entity in scope
	Ambiguous                // several equally good entities in scope
	OutOfScope               // exists in the world but not in scope
	NotFound                 // no entity by that name anywhere
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case Ambiguous:
		return "ambiguous"
	case OutOfScope:
		return "out_of_scope"
	default:
		return "not_found"
	}
}

// Resolution is the result of Resolve.
type Resolution struct {
	Status   Status
	Entities []*types.Entity
}

// InScope returns the entities satisfying c, deduplicated by ID.
func InScope(c *Constraint, ctx Context) []*types.Entity {
	if ctx.World == nil {
		return nil
	}
	if c == nil {
		c = Visible()
	}

	var base []*types.Entity
	switch c.Base {
	case types.ScopeAll:
		base = ctx.World.AllEntities()
	case types.ScopeTouchable:
		base = ctx.World.TouchableEntities(ctx.Actor, ctx.Location)
	case types.ScopeCarried:
		base = ctx.World.CarriedEntities(ctx.Actor)
	case types.ScopeNearby:
		base = ctx.World.NearbyEntities(ctx.Actor, ctx.Location)
	default:
		base = ctx.World.VisibleEntities(ctx.Actor, ctx.Location)
	}

	seen := map[string]bool{}
	var out []*types.Entity
	for _, e := range base {
		if seen[e.ID] || !passes(e, c, ctx) {
			continue
		}
		seen[e.ID] = true
		out = append(out, e)
	}
	for _, id := range c.Explicit {
		if seen[id] {
			continue
		}
		if e, ok := ctx.World.Entity(id); ok {
			seen[id] = true
			out = append(out, e)
		}
	}
	return out
}

func passes(e *types.Entity, c *Constraint, ctx Context) bool {
	for k, want := range c.Properties {
		got, ok := e.Props[k]
		if !ok || !Equal(got, want) {
			return false
		}
	}
	for _, p := range c.Predicates {
		if !p(e, ctx) {
			return false
		}
	}
	for _, t := range c.Traits {
		if !HasTrait(e, t) {
			return false
		}
	}
	return true
}

// FindByName returns the in-scope entities called name. Exact matches on
// name or alias (optionally preceded by the entity's adjectives) win;
// otherwise substring matches are returned.
func FindByName(name string, c *Constraint, ctx Context) []*types.Entity {
	name = StripDeterminers(name)
	if name == "" {
		return nil
	}
	candidates := InScope(c, ctx)

	var exact, partial []*types.Entity
	for _, e := range candidates {
		switch {
		case exactName(e, name):
			exact = append(exact, e)
		case partialName(e, name):
			partial = append(partial, e)
		}
	}
	if len(exact) > 0 {
		return exact
	}
	return partial
}

// Resolve finds name within c and classifies the outcome. A name with no
// in-scope match is checked against the whole world to tell OutOfScope
// from NotFound.
func Resolve(name string, c *Constraint, ctx Context) Resolution {
	found := FindByName(name, c, ctx)
	switch {
	case len(found) == 1:
		return Resolution{Status: Found, Entities: found}
	case len(found) > 1:
		return Resolution{Status: Ambiguous, Entities: found}
	}
	if anywhere := FindByName(name, All(), ctx); len(anywhere) > 0 {
		return Resolution{Status: OutOfScope, Entities: anywhere}
	}
	return Resolution{Status: NotFound}
}

func names(e *types.Entity) []string {
	out := []string{strings.ToLower(e.Name)}
	for _, a := range e.Aliases {
		out = append(out, strings.ToLower(a))
	}
	return out
}

func exactName(e *types.Entity, name string) bool {
	bare := stripAdjectives(e, name)
	for _, n := range names(e) {
		if n == name || n == bare {
			return true
		}
	}
	return strings.EqualFold(e.ID, name)
}

func partialName(e *types.Entity, name string) bool {
	for _, n := range names(e) {
		if n != "" && strings.Contains(n, name) {
			return true
		}
	}
	return false
}

func stripAdjectives(e *types.Entity, name string) string {
	words := strings.Fields(name)
	i := 0
	for i < len(words)-1 && isAdjective(e, words[i]) {
		i++
	}
	return strings.Join(words[i:], " ")
}

func isAdjective(e *types.Entity, w string) bool {
	for _, a := range e.Adjectives {
		if strings.EqualFold(a, w) {
			return true
		}
	}
	return false
}

var determiners = map[string]bool{
	"the": true, "a": true, "an": true, "some": true,
	"this": true, "that": true, "my": true, "your": true,
}

// StripDeterminers lowercases a noun phrase and removes leading articles.
func StripDeterminers(text string) string {
	words := strings.Fields(strings.ToLower(text))
	for len(words) > 1 && determiners[words[0]] {
		words = words[1:]
	}
	return strings.Join(words, " ")
}

// Equal compares property values, treating all numeric kinds as float64.
func Equal(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

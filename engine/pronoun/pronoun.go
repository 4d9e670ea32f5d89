// Package pronoun remembers what the player last referred to so that
// "it", "them", "him", "her" and neopronouns can be resolved on later turns.
package pronoun

import (
	"sort"
	"strings"

	"github.com/nathoo/questparse/engine/scope"
	"github.com/nathoo/questparse/types"
)

// objectPronouns is the closed set of recognized object pronouns.
var objectPronouns = map[string]bool{
	"it": true, "them": true,
	"him": true, "her": true,
	"xem": true, "zir": true, "hir": true, "em": true, "faer": true,
}

// IsPronoun reports whether word is a recognized object pronoun.
func IsPronoun(word string) bool {
	return objectPronouns[strings.ToLower(word)]
}

// Manager is the per-session pronoun cache. It is not safe for concurrent use.
type Manager struct {
	it      *types.EntityReference
	them    []types.EntityReference
	animate map[string]types.EntityReference // object pronoun → referent
	last    *types.ParsedCommand
}

// NewManager creates an empty context.
func NewManager() *Manager {
	return &Manager{animate: map[string]types.EntityReference{}}
}

// Resolve returns the references bound to a pronoun, or nil when the
// pronoun is unknown or unbound.
func (m *Manager) Resolve(pronoun string) []types.EntityReference {
	switch p := strings.ToLower(pronoun); p {
	case "it":
		if m.it == nil {
			return nil
		}
		return []types.EntityReference{*m.it}
	case "them":
		if len(m.them) > 0 {
			return append([]types.EntityReference(nil), m.them...)
		}
		if ref, ok := m.animate["them"]; ok {
			return []types.EntityReference{ref}
		}
		return nil
	default:
		if !objectPronouns[p] {
			return nil
		}
		if ref, ok := m.animate[p]; ok {
			return []types.EntityReference{ref}
		}
		return nil
	}
}

// UpdateFromCommand records the referents of a validated command: its
// direct object, indirect object and instrument.
func (m *Manager) UpdateFromCommand(cmd *types.ParsedCommand, world scope.World, turn int) {
	if cmd == nil {
		return
	}
	m.last = cmd
	if world == nil {
		return
	}

	u := update{m: m, world: world, turn: turn}
	for _, np := range []*types.NounPhrase{cmd.DirectObject, cmd.IndirectObject, cmd.Instrument} {
		if np != nil {
			u.phrase(np)
		}
	}
}

// RegisterEntity records a single mention outside of a parsed command,
// for example an entity the player has just been shown.
func (m *Manager) RegisterEntity(id, text string, world scope.World, turn int) {
	if world == nil {
		return
	}
	u := update{m: m, world: world, turn: turn}
	u.entity(id, text)
}

// LastCommand returns the most recent validated command, or nil.
func (m *Manager) LastCommand() *types.ParsedCommand {
	return m.last
}

// Reset clears every cached reference.
func (m *Manager) Reset() {
	m.it = nil
	m.them = nil
	m.animate = map[string]types.EntityReference{}
	m.last = nil
}

// Snapshot is a read-only view of the cache.
type Snapshot struct {
	It      *types.EntityReference
	Them    []types.EntityReference
	Animate map[string]types.EntityReference
}

// Snapshot copies the current state.
func (m *Manager) Snapshot() Snapshot {
	s := Snapshot{
		Them:    append([]types.EntityReference(nil), m.them...),
		Animate: make(map[string]types.EntityReference, len(m.animate)),
	}
	if m.it != nil {
		ref := *m.it
		s.It = &ref
	}
	for k, v := range m.animate {
		s.Animate[k] = v
	}
	return s
}

// Bound returns the sorted pronouns that currently resolve to something.
func (m *Manager) Bound() []string {
	var out []string
	for p := range objectPronouns {
		if m.Resolve(p) != nil {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// update tracks one UpdateFromCommand call so that several plural
// references in the same command accumulate instead of replacing each other.
type update struct {
	m          *Manager
	world      scope.World
	turn       int
	pluralSeen bool
}

func (u *update) phrase(np *types.NounPhrase) {
	if np.IsAll || np.IsList {
		var refs []types.EntityReference
		for _, item := range np.Items {
			if item.EntityID == "" {
				continue
			}
			if _, ok := u.world.Entity(item.EntityID); ok {
				refs = append(refs, types.EntityReference{EntityID: item.EntityID, Text: item.Text, Turn: u.turn})
			}
		}
		if len(refs) > 0 {
			u.plural(refs...)
		}
		return
	}
	if np.EntityID == "" {
		return
	}
	u.entity(np.EntityID, np.Text)
}

func (u *update) entity(id, text string) {
	e, ok := u.world.Entity(id)
	if !ok {
		return
	}
	ref := types.EntityReference{EntityID: id, Text: text, Turn: u.turn}

	if e.Actor != nil && len(e.Actor.Pronouns) > 0 {
		for _, set := range e.Actor.Pronouns {
			if set.Object != "" {
				u.m.animate[strings.ToLower(set.Object)] = ref
			}
		}
		return
	}
	if e.Number == types.Plural {
		u.plural(ref)
		return
	}
	u.m.it = &ref
}

func (u *update) plural(refs ...types.EntityReference) {
	if !u.pluralSeen {
		u.m.them = nil
		u.pluralSeen = true
	}
	u.m.them = append(u.m.them, refs...)
}

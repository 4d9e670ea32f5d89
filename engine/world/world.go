// Package world is an in-memory world model: rooms, entities and their
// locations, with runtime property overrides layered over base definitions.
package world

import (
	"sort"

	"github.com/nathoo/questparse/types"
)

// Defs holds the immutable world definitions loaded from story files.
type Defs struct {
	Game     types.GameDef
	Rooms    map[string]types.Room
	Entities map[string]*types.Entity
}

// NewDefs returns empty definitions.
func NewDefs() *Defs {
	return &Defs{
		Rooms:    map[string]types.Room{},
		Entities: map[string]*types.Entity{},
	}
}

// AddRoom registers a room definition.
func (d *Defs) AddRoom(r types.Room) {
	d.Rooms[r.ID] = r
}

// AddEntity registers an entity definition, placing it at location.
func (d *Defs) AddEntity(e *types.Entity, location string) {
	if e.Props == nil {
		e.Props = map[string]any{}
	}
	if location != "" {
		e.Props["location"] = location
	}
	d.Entities[e.ID] = e
}

// EntityList returns the entity definitions sorted by ID.
func (d *Defs) EntityList() []*types.Entity {
	out := make([]*types.Entity, 0, len(d.Entities))
	for _, e := range d.Entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// World is the mutable view over Defs. Runtime props override base props.
type World struct {
	Defs  *Defs
	props map[string]map[string]any
}

// New creates a world over defs.
func New(defs *Defs) *World {
	return &World{Defs: defs, props: map[string]map[string]any{}}
}

// Prop returns an entity property, checking runtime overrides first.
func (w *World) Prop(id, prop string) (any, bool) {
	if p, ok := w.props[id]; ok {
		if v, ok := p[prop]; ok {
			return v, true
		}
	}
	if e, ok := w.Defs.Entities[id]; ok {
		v, ok := e.Props[prop]
		return v, ok
	}
	return nil, false
}

// SetProp overrides an entity property at runtime.
func (w *World) SetProp(id, prop string, v any) {
	if w.props[id] == nil {
		w.props[id] = map[string]any{}
	}
	w.props[id][prop] = v
}

// Location returns the effective location of an entity.
func (w *World) Location(id string) string {
	v, _ := w.Prop(id, "location")
	s, _ := v.(string)
	return s
}

// Move relocates an entity to a room, container or actor.
func (w *World) Move(id, to string) {
	w.SetProp(id, "location", to)
}

// Reset drops every runtime override.
func (w *World) Reset() {
	w.props = map[string]map[string]any{}
}

// Entity returns the effective entity: base definition with overrides merged.
func (w *World) Entity(id string) (*types.Entity, bool) {
	base, ok := w.Defs.Entities[id]
	if !ok {
		return nil, false
	}
	over := w.props[id]
	if len(over) == 0 {
		return base, true
	}
	e := *base
	e.Props = make(map[string]any, len(base.Props)+len(over))
	for k, v := range base.Props {
		e.Props[k] = v
	}
	for k, v := range over {
		e.Props[k] = v
	}
	return &e, true
}

// AllEntities returns every entity, ordered by ID.
func (w *World) AllEntities() []*types.Entity {
	ids := make([]string, 0, len(w.Defs.Entities))
	for id := range w.Defs.Entities {
		ids = append(ids, id)
	}
	return w.entities(ids)
}

// In returns the IDs of entities directly located at holder.
func (w *World) In(holder string) []string {
	var out []string
	for id := range w.Defs.Entities {
		if w.Location(id) == holder {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Exits returns a room's exits. Runtime overrides are stored as
// "exit:<direction>" props on the room's ID; an empty target closes the exit.
func (w *World) Exits(roomID string) map[string]string {
	room, ok := w.Defs.Rooms[roomID]
	if !ok {
		return nil
	}
	exits := make(map[string]string, len(room.Exits))
	for dir, target := range room.Exits {
		exits[dir] = target
	}
	for key, val := range w.props[roomID] {
		if len(key) > 5 && key[:5] == "exit:" {
			target, _ := val.(string)
			if target == "" {
				delete(exits, key[5:])
			} else {
				exits[key[5:]] = target
			}
		}
	}
	return exits
}

// CarriedEntities returns what the actor holds, including the contents of
// open containers it holds.
func (w *World) CarriedEntities(actor string) []*types.Entity {
	return w.entities(w.reach(actor, false))
}

// VisibleEntities returns everything the actor can see: the room's contents,
// the contents of open or transparent containers, and what it carries.
// Actors other than the viewer are included.
func (w *World) VisibleEntities(actor, location string) []*types.Entity {
	ids := w.reach(location, true)
	ids = append(ids, w.reach(actor, true)...)
	return w.entities(without(ids, actor))
}

// TouchableEntities is VisibleEntities minus anything behind closed glass.
func (w *World) TouchableEntities(actor, location string) []*types.Entity {
	ids := w.reach(location, false)
	ids = append(ids, w.reach(actor, false)...)
	return w.entities(without(ids, actor))
}

// NearbyEntities returns what is visible here plus the top-level contents
// of rooms one exit away.
func (w *World) NearbyEntities(actor, location string) []*types.Entity {
	ids := w.reach(location, true)
	ids = append(ids, w.reach(actor, true)...)
	for _, target := range w.Exits(location) {
		ids = append(ids, w.In(target)...)
	}
	return w.entities(without(ids, actor))
}

// reach collects holder's contents recursively. Closed containers hide their
// contents unless seeThrough is set and the container is transparent.
func (w *World) reach(holder string, seeThrough bool) []string {
	var out []string
	seen := map[string]bool{holder: true}
	queue := []string{holder}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		for _, id := range w.In(h) {
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
			if w.open(id) || (seeThrough && w.flag(id, "transparent")) {
				queue = append(queue, id)
			}
		}
	}
	return out
}

// open reports whether an entity's contents are exposed. Entities without an
// "open" prop are treated as open (supporters, actors, plain holders).
func (w *World) open(id string) bool {
	v, ok := w.Prop(id, "open")
	if !ok {
		return true
	}
	b, _ := v.(bool)
	return b
}

func (w *World) flag(id, prop string) bool {
	v, _ := w.Prop(id, prop)
	b, _ := v.(bool)
	return b
}

func (w *World) entities(ids []string) []*types.Entity {
	sort.Strings(ids)
	out := make([]*types.Entity, 0, len(ids))
	var last string
	for i, id := range ids {
		if i > 0 && id == last {
			continue
		}
		last = id
		if e, ok := w.Entity(id); ok {
			out = append(out, e)
		}
	}
	return out
}

func without(ids []string, drop string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

// Package worldtest provides a small fixed world for parser tests.
package worldtest

import (
	"github.com/nathoo/questparse/engine/scope"
	"github.com/nathoo/questparse/engine/world"
	"github.com/nathoo/questparse/types"
)

const (
	Player = "player"
	Hall   = "hall"
	Garden = "garden"
)

// New builds the fixture:
//
//	hall: player (carrying lamp, note), alice, red ball, blue ball,
//	      box (closed container holding coin), chest (open container),
//	      table (supporter holding cup), door (openable, lockable), radio
//	garden (north of hall): key, rose
func New() *world.World {
	d := world.NewDefs()
	d.Game = types.GameDef{Title: "Fixture", Start: Hall}
	d.AddRoom(types.Room{ID: Hall, Name: "Hall", Exits: map[string]string{"north": Garden}})
	d.AddRoom(types.Room{ID: Garden, Name: "Garden", Exits: map[string]string{"south": Hall}})

	d.AddEntity(&types.Entity{ID: Player, Name: "yourself", Aliases: []string{"me"},
		Actor: &types.ActorTrait{Player: true}}, Hall)
	d.AddEntity(&types.Entity{ID: "alice", Name: "Alice", Aliases: []string{"woman"},
		Actor: &types.ActorTrait{Pronouns: []types.PronounSet{{Subject: "she", Object: "her", Possessive: "hers", Reflexive: "herself"}}}}, Hall)

	d.AddEntity(&types.Entity{ID: "lamp", Name: "lamp", Aliases: []string{"lantern"}, Adjectives: []string{"brass"},
		Traits: []string{"portable", "switchable"}, Props: map[string]any{"portable": true}}, Player)
	d.AddEntity(&types.Entity{ID: "note", Name: "note", Traits: []string{"portable"}, Props: map[string]any{"portable": true}}, Player)
	d.AddEntity(&types.Entity{ID: "red_ball", Name: "red ball", Aliases: []string{"ball"}, Adjectives: []string{"red"},
		Traits: []string{"portable"}, Props: map[string]any{"portable": true}}, Hall)
	d.AddEntity(&types.Entity{ID: "blue_ball", Name: "blue ball", Aliases: []string{"ball"}, Adjectives: []string{"blue"},
		Traits: []string{"portable"}, Props: map[string]any{"portable": true}}, Hall)
	d.AddEntity(&types.Entity{ID: "box", Name: "box", Traits: []string{"container", "openable"},
		Props: map[string]any{"open": false}}, Hall)
	d.AddEntity(&types.Entity{ID: "coin", Name: "coin", Traits: []string{"portable"}, Props: map[string]any{"portable": true}}, "box")
	d.AddEntity(&types.Entity{ID: "chest", Name: "chest", Traits: []string{"container", "openable"},
		Props: map[string]any{"open": true}}, Hall)
	d.AddEntity(&types.Entity{ID: "table", Name: "table", Traits: []string{"supporter"}}, Hall)
	d.AddEntity(&types.Entity{ID: "cup", Name: "cup", Traits: []string{"portable"}, Props: map[string]any{"portable": true}}, "table")
	d.AddEntity(&types.Entity{ID: "door", Name: "door", Adjectives: []string{"oak"}, Traits: []string{"openable", "lockable"},
		Props: map[string]any{"locked": true}}, Hall)
	d.AddEntity(&types.Entity{ID: "radio", Name: "radio", Traits: []string{"switchable"}}, Hall)

	d.AddEntity(&types.Entity{ID: "key", Name: "key", Adjectives: []string{"iron"}, Traits: []string{"portable"},
		Props: map[string]any{"portable": true}}, Garden)
	d.AddEntity(&types.Entity{ID: "rose", Name: "rose", Aliases: []string{"flowers"}, Number: types.Plural}, Garden)

	return world.New(d)
}

// Context returns a parse context for the player standing in the hall.
func Context(w *world.World) scope.Context {
	return scope.Context{World: w, Actor: Player, Location: Hall}
}

package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/questparse/types"
)

func testWorld() *World {
	defs := NewDefs()
	defs.Rooms["hall"] = types.Room{ID: "hall", Name: "Hall", Exits: map[string]string{"north": "garden"}}
	defs.Rooms["garden"] = types.Room{ID: "garden", Name: "Garden"}
	add := func(id, loc string, props map[string]any) {
		if props == nil {
			props = map[string]any{}
		}
		props["location"] = loc
		defs.Entities[id] = &types.Entity{ID: id, Name: id, Props: props}
	}
	add("player", "hall", nil)
	add("lamp", "player", nil)
	add("box", "hall", map[string]any{"open": false})
	add("coin", "box", nil)
	add("case", "hall", map[string]any{"open": false, "transparent": true})
	add("gem", "case", nil)
	add("table", "hall", nil)
	add("cup", "table", nil)
	add("rose", "garden", nil)
	return New(defs)
}

func ids(es []*types.Entity) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.ID
	}
	return out
}

func TestScopes(t *testing.T) {
	w := testWorld()

	assert.Equal(t, []string{"lamp"}, ids(w.CarriedEntities("player")))
	assert.Equal(t, []string{"box", "case", "cup", "gem", "lamp", "table"}, ids(w.VisibleEntities("player", "hall")))
	assert.Equal(t, []string{"box", "case", "cup", "lamp", "table"}, ids(w.TouchableEntities("player", "hall")))
	assert.Contains(t, ids(w.NearbyEntities("player", "hall")), "rose")
	assert.NotContains(t, ids(w.VisibleEntities("player", "hall")), "rose")
}

func TestOverrides(t *testing.T) {
	w := testWorld()

	w.SetProp("box", "open", true)
	assert.Contains(t, ids(w.VisibleEntities("player", "hall")), "coin")

	w.Move("coin", "player")
	assert.Equal(t, "player", w.Location("coin"))
	assert.Equal(t, []string{"coin", "lamp"}, ids(w.CarriedEntities("player")))

	e, ok := w.Entity("box")
	require.True(t, ok)
	assert.Equal(t, true, e.Props["open"])
	assert.Equal(t, false, w.Defs.Entities["box"].Props["open"], "base definition untouched")

	w.Reset()
	assert.Equal(t, "box", w.Location("coin"))
}

func TestExits(t *testing.T) {
	w := testWorld()
	assert.Equal(t, map[string]string{"north": "garden"}, w.Exits("hall"))

	w.SetProp("hall", "exit:east", "garden")
	w.SetProp("hall", "exit:north", "")
	assert.Equal(t, map[string]string{"east": "garden"}, w.Exits("hall"))
	assert.Nil(t, w.Exits("nowhere"))
}

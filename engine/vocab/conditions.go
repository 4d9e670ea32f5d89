package vocab

import (
	"github.com/nathoo/questparse/engine/scope"
	"github.com/nathoo/questparse/types"
)

// Eval evaluates a single activation condition against the parse context.
func Eval(c types.Condition, ctx scope.Context) bool {
	switch c.Type {
	case "in_room":
		room, _ := c.Params["room"].(string)
		return ctx.Location == room

	case "carrying":
		item, _ := c.Params["item"].(string)
		if ctx.World == nil {
			return false
		}
		return containsID(ctx.World.CarriedEntities(ctx.Actor), item)

	case "entity_in_room":
		entity, _ := c.Params["entity"].(string)
		if ctx.World == nil {
			return false
		}
		return containsID(ctx.World.VisibleEntities(ctx.Actor, ctx.Location), entity)

	case "prop_is":
		entity, _ := c.Params["entity"].(string)
		prop, _ := c.Params["prop"].(string)
		expected := c.Params["value"]
		if ctx.World == nil {
			return false
		}
		e, ok := ctx.World.Entity(entity)
		if !ok {
			return false
		}
		actual, ok := e.Props[prop]
		if !ok {
			return expected == nil
		}
		return scope.Equal(actual, expected)

	case "not":
		if c.Inner == nil {
			return true
		}
		return !Eval(*c.Inner, ctx)

	default:
		return false
	}
}

// EvalAll returns true if all conditions pass. An empty list is vacuously true.
func EvalAll(conditions []types.Condition, ctx scope.Context) bool {
	for _, c := range conditions {
		if !Eval(c, ctx) {
			return false
		}
	}
	return true
}

func containsID(entities []*types.Entity, id string) bool {
	for _, e := range entities {
		if e.ID == id {
			return true
		}
	}
	return false
}

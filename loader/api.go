package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerWorld(L, coll)
	registerLanguage(L, coll)
	registerGrammar(L, coll)
	registerConditionHelpers(L)
}

// curried returns a global of the form Name "id" { ... }.
func curried(L *lua.LState, fn func(id string, tbl *lua.LTable)) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			fn(id, L.CheckTable(1))
			return 0
		}))
		return 1
	})
}

func registerWorld(L *lua.LState, coll *collector) {
	// Game { title = "...", start = "..." }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		coll.game = L.CheckTable(1)
		return 0
	}))

	// Room "id" { name = "...", description = "...", exits = { north = "..." } }
	L.SetGlobal("Room", curried(L, func(id string, tbl *lua.LTable) {
		coll.rooms = append(coll.rooms, rawRoom{id: id, table: tbl})
	}))

	// Item "id" { ... } is a portable entity.
	L.SetGlobal("Item", curried(L, func(id string, tbl *lua.LTable) {
		coll.entities = append(coll.entities, rawEntity{id: id, kind: kindItem, table: tbl})
	}))

	// Entity "id" { ... } is a fixed object: scenery, doors, containers.
	L.SetGlobal("Entity", curried(L, func(id string, tbl *lua.LTable) {
		coll.entities = append(coll.entities, rawEntity{id: id, kind: kindEntity, table: tbl})
	}))

	// Actor "id" { pronouns = { "she/her/hers/herself" }, player = true }
	L.SetGlobal("Actor", curried(L, func(id string, tbl *lua.LTable) {
		coll.entities = append(coll.entities, rawEntity{id: id, kind: kindActor, table: tbl})
	}))
}

func registerLanguage(L *lua.LState, coll *collector) {
	// Vocabulary { verb = { magic = { "xyzzy", "plugh" } }, noun = { ... } }
	L.SetGlobal("Vocabulary", L.NewFunction(func(L *lua.LState) int {
		coll.vocabulary = append(coll.vocabulary, L.CheckTable(1))
		return 0
	}))

	// Category "name" { words = { ... }, when = { InRoom("hall") } }
	L.SetGlobal("Category", curried(L, func(name string, tbl *lua.LTable) {
		coll.categories = append(coll.categories, rawCategory{name: name, table: tbl})
	}))
}

func registerGrammar(L *lua.LState, coll *collector) {
	add := func(g rawGrammar) {
		g.order = coll.nextSourceOrder()
		coll.grammar = append(coll.grammar, g)
	}

	// Define "pattern" { action = "...", slots = { ... } }
	L.SetGlobal("Define", curried(L, func(pattern string, tbl *lua.LTable) {
		add(rawGrammar{op: OpDefine, pattern: pattern, table: tbl})
	}))

	// Override("action", "pattern") { slots = { ... } }
	L.SetGlobal("Override", L.NewFunction(func(L *lua.LState) int {
		action := L.CheckString(1)
		pattern := L.CheckString(2)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			add(rawGrammar{op: OpOverride, action: action, pattern: pattern, table: L.CheckTable(1)})
			return 0
		}))
		return 1
	}))

	// Extend "action" { slots = { ... } }
	L.SetGlobal("Extend", curried(L, func(action string, tbl *lua.LTable) {
		add(rawGrammar{op: OpExtend, action: action, table: tbl})
	}))

	// Remove "rule-id" or Remove("action", "pattern")
	L.SetGlobal("Remove", L.NewFunction(func(L *lua.LState) int {
		if L.GetTop() >= 2 {
			add(rawGrammar{op: OpRemove, action: L.CheckString(1), pattern: L.CheckString(2)})
			return 0
		}
		add(rawGrammar{op: OpRemove, id: L.CheckString(1)})
		return 0
	}))
}

func condition(L *lua.LState, typ string, fields map[string]lua.LValue) int {
	tbl := L.NewTable()
	tbl.RawSetString("type", lua.LString(typ))
	for k, v := range fields {
		tbl.RawSetString(k, v)
	}
	L.Push(tbl)
	return 1
}

func registerConditionHelpers(L *lua.LState) {
	// InRoom("room_id")
	L.SetGlobal("InRoom", L.NewFunction(func(L *lua.LState) int {
		return condition(L, "in_room", map[string]lua.LValue{"room": lua.LString(L.CheckString(1))})
	}))

	// Carrying("item")
	L.SetGlobal("Carrying", L.NewFunction(func(L *lua.LState) int {
		return condition(L, "carrying", map[string]lua.LValue{"item": lua.LString(L.CheckString(1))})
	}))

	// EntityInRoom("entity")
	L.SetGlobal("EntityInRoom", L.NewFunction(func(L *lua.LState) int {
		return condition(L, "entity_in_room", map[string]lua.LValue{"entity": lua.LString(L.CheckString(1))})
	}))

	// PropIs("entity", "prop", value)
	L.SetGlobal("PropIs", L.NewFunction(func(L *lua.LState) int {
		return condition(L, "prop_is", map[string]lua.LValue{
			"entity": lua.LString(L.CheckString(1)),
			"prop":   lua.LString(L.CheckString(2)),
			"value":  L.Get(3),
		})
	}))

	// Not(condition)
	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		return condition(L, "not", map[string]lua.LValue{"inner": L.CheckTable(1)})
	}))
}

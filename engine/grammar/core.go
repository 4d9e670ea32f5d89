package grammar

import (
	"github.com/nathoo/questparse/engine/scope"
	"github.com/nathoo/questparse/types"
)

// Core registers the built-in English grammar on e.
func Core(e *Engine) {
	visible := scope.Visible
	touchable := scope.Touchable
	carried := scope.Carried
	portable := func() *scope.Constraint {
		return scope.Visible().Matching(map[string]any{"portable": true})
	}
	animate := func() *scope.Constraint { return scope.Visible().HasTrait("actor") }
	rel := func(r string) types.Semantics { return types.Semantics{"spatialRelation": r} }
	manner := func(m string) types.Semantics { return types.Semantics{"manner": m} }

	// Looking.
	e.Define("look").MapsTo("look").MustBuild()
	e.Define("l").MapsTo("look").WithPriority(90).MustBuild()
	e.Define("look [around]").MapsTo("look").WithPriority(101).MustBuild()
	e.Define("examine|x|inspect|check :target").Where("target", visible()).MapsTo("examine").MustBuild()
	e.Define("look at :target").Where("target", visible()).MapsTo("examine").WithPriority(95).MustBuild()
	e.Define("look [carefully] at :target").Where("target", visible()).
		MapsTo("examine").WithDefaultSemantics(manner("careful")).WithPriority(96).MustBuild()
	e.Define("search [carefully]").MapsTo("search").MustBuild()
	e.Define("search|look in|inside|under :target").Where("target", visible()).MapsTo("search").WithPriority(95).MustBuild()
	e.Define("read :target").Where("target", visible()).MapsTo("read").MustBuild()

	// Taking and dropping.
	e.Define("take|get|grab :item").Where("item", portable()).MapsTo("take").MustBuild()
	e.Define("pick up :item").Where("item", portable()).MapsTo("take").MustBuild()
	e.Define("pick :item up").Where("item", portable()).MapsTo("take").WithPriority(95).MustBuild()
	e.Define("take|get|remove :item from :container").
		Where("item", visible()).Where("container", touchable()).
		MapsTo("take_from").WithPriority(105).MustBuild()
	e.Define("take :nth :item").Ordinal("nth").Where("item", portable()).
		MapsTo("take").WithPriority(90).MustBuild()
	e.Define("drop|discard :item").Where("item", carried()).MapsTo("drop").MustBuild()
	e.Define("put down :item").Where("item", carried()).MapsTo("drop").MustBuild()
	e.Define("put :item down").Where("item", carried()).MapsTo("drop").WithPriority(95).MustBuild()

	// Containers and supporters.
	inSemantics := map[string]types.Semantics{"in": rel("in"), "into": rel("in"), "inside": rel("in")}
	e.Define("put|place :item in|into|inside :container").
		Where("item", carried()).Where("container", touchable().HasTrait("container")).
		MapsTo("insert").WithPrepositionSemantics(inSemantics).
		WithDefaultSemantics(types.Semantics{"spatialRelation": "in", "implicitPreposition": false}).
		MustBuild()
	insertVerbs := map[string]types.Semantics{
		"insert": manner("normal"),
		"stick":  manner("forceful"),
		"jam":    manner("forceful"),
		"slip":   manner("stealthy"),
		"slide":  manner("careful"),
	}
	e.Define("insert|stick|jam|slip|slide :item in|into|inside :container").
		Where("item", carried()).Where("container", touchable().HasTrait("container")).
		MapsTo("insert").WithVerbSemantics(insertVerbs).WithPrepositionSemantics(inSemantics).
		WithDefaultSemantics(types.Semantics{"spatialRelation": "in", "implicitPreposition": false}).
		MustBuild()
	e.Define("insert|stick|slip :item :container").
		Where("item", carried()).Where("container", touchable().HasTrait("container")).
		MapsTo("insert").WithVerbSemantics(insertVerbs).
		WithDefaultSemantics(types.Semantics{"spatialRelation": "in", "implicitPreposition": true}).
		WithPriority(95).MustBuild()
	e.Define("put|place|set :item on|onto|upon :supporter").
		Where("item", carried()).Where("supporter", touchable().HasTrait("supporter")).
		MapsTo("put_on").WithDefaultSemantics(rel("on")).MustBuild()
	e.Define("hang :item on :hook").Where("item", carried()).Where("hook", touchable()).
		MapsTo("put_on").WithDefaultSemantics(rel("on")).WithPriority(110).MustBuild()

	// Writing and speech.
	e.Define("write :content... on|in :surface").Where("surface", touchable()).MapsTo("write").MustBuild()
	e.Define("say|shout|yell :message...").MapsTo("say").MustBuild()
	e.Define("say|shout|yell :quote").Quoted("quote").MapsTo("say").WithPriority(105).MustBuild()
	e.Define("say :quote to :listener").Quoted("quote").Where("listener", animate()).
		MapsTo("say_to").WithPriority(105).MustBuild()
	e.Define("ask :person about :topic").Topic("topic").Where("person", animate()).MapsTo("ask").MustBuild()
	e.Define("tell :person about :topic").Topic("topic").Where("person", animate()).MapsTo("tell").MustBuild()
	e.Define("talk|speak to|with :person").Where("person", animate()).MapsTo("talk").MustBuild()

	// Movement.
	directions := map[string]types.Semantics{}
	for _, d := range []string{"north", "south", "east", "west", "northeast", "northwest", "southeast", "southwest", "up", "down", "in", "out"} {
		directions[d] = types.Semantics{"direction": d}
	}
	e.Define(":direction").Direction("direction").MapsTo("go").
		WithDirectionSemantics(directions).
		WithDefaultSemantics(types.Semantics{"implicitDirection": true}).
		WithPriority(90).MustBuild()
	e.Define("go|walk|run|head :direction").Direction("direction").MapsTo("go").
		WithDirectionSemantics(directions).
		WithVerbSemantics(map[string]types.Semantics{
			"go": manner("normal"), "walk": manner("normal"),
			"run": manner("quick"), "head": manner("normal"),
		}).
		WithDefaultSemantics(types.Semantics{"implicitDirection": false}).
		MustBuild()
	e.Define("push|pull :object :direction").Direction("direction").
		Where("object", touchable()).MapsTo("push_dir").WithPriority(105).MustBuild()
	e.Define("enter :target").Where("target", visible()).MapsTo("enter").MustBuild()
	e.Define("climb :target").Where("target", visible()).MapsTo("climb").MustBuild()

	// Devices and doors.
	e.Define("open :door").Where("door", touchable().HasTrait("openable")).MapsTo("open").MustBuild()
	e.Define("open :door :manner").Manner("manner").Where("door", touchable().HasTrait("openable")).
		MapsTo("open").WithPriority(95).MustBuild()
	e.Define("open :door with :tool").Where("door", touchable().HasTrait("openable")).
		Instrument("tool", carried()).MapsTo("open").WithPriority(105).MustBuild()
	e.Define("close|shut :door").Where("door", touchable().HasTrait("openable")).MapsTo("close").MustBuild()
	e.Define("lock :door with :key").Where("door", touchable().HasTrait("lockable")).
		Instrument("key", carried()).MapsTo("lock").MustBuild()
	e.Define("unlock :door with :key").Where("door", touchable().HasTrait("lockable")).
		Instrument("key", carried()).MapsTo("unlock").MustBuild()
	e.Define("unlock :door").Where("door", touchable().HasTrait("lockable")).MapsTo("unlock").WithPriority(95).MustBuild()
	e.Define("turn|switch on :device").Where("device", touchable().HasTrait("switchable")).MapsTo("switch_on").MustBuild()
	e.Define("turn|switch :device on").Where("device", touchable().HasTrait("switchable")).MapsTo("switch_on").WithPriority(95).MustBuild()
	e.Define("turn|switch off :device").Where("device", touchable().HasTrait("switchable")).MapsTo("switch_off").MustBuild()
	e.Define("turn|switch :device off").Where("device", touchable().HasTrait("switchable")).MapsTo("switch_off").WithPriority(95).MustBuild()
	e.Define("set :device to :setting").Number("setting").Where("device", touchable()).MapsTo("set_to").MustBuild()
	e.Define("push|press :target").Where("target", touchable()).MapsTo("push").MustBuild()
	e.Define("pull :target").Where("target", touchable()).MapsTo("pull").MustBuild()
	e.Define("touch|feel :target").Where("target", touchable()).MapsTo("touch").MustBuild()

	// Social.
	e.Define("give|offer|hand :item to :recipient").Where("item", carried()).Where("recipient", animate()).
		MapsTo("give").MustBuild()
	e.Define("give|offer|hand :recipient :item").Where("item", carried()).Where("recipient", animate()).
		Roles("item", "recipient").MapsTo("give").WithPriority(95).MustBuild()
	e.Define("show :item to :recipient").Where("item", carried()).Where("recipient", animate()).
		MapsTo("show").MustBuild()
	e.Define("show :recipient :item").Where("item", carried()).Where("recipient", animate()).
		Roles("item", "recipient").MapsTo("show").WithPriority(95).MustBuild()
	e.Define("throw|toss :item at :target").Where("item", carried()).Where("target", visible()).
		MapsTo("throw_at").MustBuild()
	e.Define("throw|toss :item to :recipient").Where("item", carried()).Where("recipient", animate()).
		MapsTo("throw_to").MustBuild()

	// Violence and tools.
	e.Define("attack|hit|strike|kill :target").Where("target", visible()).MapsTo("attack").MustBuild()
	e.Define("attack|hit|strike|kill :target with :weapon").Where("target", visible()).
		Instrument("weapon", carried()).MapsTo("attack").WithPriority(105).MustBuild()
	e.Define("cut :target with :tool").Where("target", touchable()).Instrument("tool", carried()).
		MapsTo("cut").MustBuild()
	e.Define("dig [in] :target with :tool").Where("target", visible()).Instrument("tool", carried()).
		MapsTo("dig").MustBuild()

	// Bodily.
	e.Define("eat :item").Where("item", carried()).Where("item", touchable()).MapsTo("eat").MustBuild()
	e.Define("drink :item").Where("item", carried()).Where("item", touchable()).MapsTo("drink").MustBuild()
	e.Define("wear|don :item").Where("item", carried()).MapsTo("wear").MustBuild()
	e.Define("take off :item").Where("item", carried()).MapsTo("remove").WithPriority(105).MustBuild()
	e.Define("remove|doff :item").Where("item", carried()).MapsTo("remove").MustBuild()
	e.Define("smell|sniff").MapsTo("smell").MustBuild()
	e.Define("smell|sniff :target").Where("target", visible()).MapsTo("smell").MustBuild()
	e.Define("listen").MapsTo("listen").MustBuild()
	e.Define("listen to :target").Where("target", visible()).MapsTo("listen").MustBuild()
	e.Define("jump").MapsTo("jump").MustBuild()
	e.Define("sleep").MapsTo("sleep").MustBuild()

	// Time.
	e.Define("wait|z").MapsTo("wait").MustBuild()
	e.Define("wait :count [turns|minutes]").Number("count").MapsTo("wait").MustBuild()
	e.Define("wait until :time").Time("time").MapsTo("wait_until").MustBuild()

	// Meta.
	e.Define("inventory|inv|i").MapsTo("inventory").MustBuild()
	e.Define("again|g").MapsTo("again").MustBuild()
	e.Define("save").MapsTo("save").MustBuild()
	e.Define("restore").MapsTo("restore").MustBuild()
	e.Define("restart").MapsTo("restart").MustBuild()
	e.Define("quit|q").MapsTo("quit").MustBuild()
	e.Define("score").MapsTo("score").MustBuild()
	e.Define("version").MapsTo("version").MustBuild()
	e.Define("help|hint").MapsTo("help").MustBuild()
}

// NewCore returns an engine preloaded with the built-in English grammar.
func NewCore() *Engine {
	e := New()
	Core(e)
	return e
}

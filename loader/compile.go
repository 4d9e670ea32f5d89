package loader

import (
	"fmt"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/questparse/engine/vocab"
	"github.com/nathoo/questparse/engine/world"
	"github.com/nathoo/questparse/types"
)

const (
	kindItem   = "item"
	kindEntity = "entity"
	kindActor  = "actor"
)

// Op is a grammar declaration kind.
type Op string

const (
	OpDefine   Op = "define"
	OpOverride Op = "override"
	OpExtend   Op = "extend"
	OpRemove   Op = "remove"
)

// Story is the compiled content of a set of story files.
type Story struct {
	Defs       *world.Defs
	Vocabulary []types.VocabEntry
	Categories []vocab.Category
	Grammar    []GrammarDecl
	Files      []string
	Warnings   []string

	duplicates []string
}

// GrammarDecl is one Define, Override, Extend or Remove call.
type GrammarDecl struct {
	Op       Op
	Pattern  string
	Action   string
	ID       string // rule ID for OpRemove
	Priority int    // 0 keeps the builder default
	Slots    map[string]SlotDecl

	Semantics            types.Semantics
	VerbSemantics        map[string]types.Semantics
	PrepositionSemantics map[string]types.Semantics
	DirectionSemantics   map[string]types.Semantics

	// Experimental marks the rule as lower confidence. Multiplier 0 means
	// the configured default.
	Experimental bool
	Multiplier   float64

	Description  string
	ErrorMessage string
	Direct       string
	Indirect     string
	Order        int
}

// SlotDecl configures one slot of a grammar declaration.
type SlotDecl struct {
	Type     types.SlotType // empty keeps the pattern's default
	Scope    types.ScopeBase
	Traits   []string
	Props    map[string]any
	Category string
}

// rawRoom holds a room table before compilation.
type rawRoom struct {
	id    string
	table *lua.LTable
}

// rawEntity holds an entity table before compilation.
type rawEntity struct {
	id    string
	kind  string
	table *lua.LTable
}

type rawCategory struct {
	name  string
	table *lua.LTable
}

type rawGrammar struct {
	op      Op
	pattern string
	action  string
	id      string
	table   *lua.LTable
	order   int
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// getStrings reads a field holding either a string or an array of strings.
func getStrings(tbl *lua.LTable, key string) []string {
	return toStrings(tbl.RawGetString(key))
}

func toStrings(v lua.LValue) []string {
	switch val := v.(type) {
	case lua.LString:
		return []string{string(val)}
	case *lua.LTable:
		var out []string
		for i := 1; i <= val.MaxN(); i++ {
			if s, ok := val.RawGetInt(i).(lua.LString); ok {
				out = append(out, string(s))
			}
		}
		return out
	default:
		return nil
	}
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case lua.LString:
		return string(val)
	case *lua.LTable:
		// Sequential integer keys starting at 1 make an array.
		maxN := val.MaxN()
		if maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// tableToStringMap converts a Lua table to a map[string]string.
func tableToStringMap(tbl *lua.LTable) map[string]string {
	if tbl == nil {
		return nil
	}
	m := map[string]string{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			if vs, ok := v.(lua.LString); ok {
				m[string(ks)] = string(vs)
			}
		}
	})
	return m
}

// tableToAnyMap converts a Lua table to a map[string]any.
func tableToAnyMap(tbl *lua.LTable) map[string]any {
	if tbl == nil {
		return nil
	}
	m := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			m[string(ks)] = toGoValue(v)
		}
	})
	return m
}

func tableToSemantics(tbl *lua.LTable) types.Semantics {
	m := tableToAnyMap(tbl)
	if m == nil {
		return nil
	}
	return types.Semantics(m)
}

func tableToSemanticMap(tbl *lua.LTable) map[string]types.Semantics {
	if tbl == nil {
		return nil
	}
	out := map[string]types.Semantics{}
	tbl.ForEach(func(k, v lua.LValue) {
		ks, ok := k.(lua.LString)
		if !ok {
			return
		}
		if t, ok := v.(*lua.LTable); ok {
			out[strings.ToLower(string(ks))] = tableToSemantics(t)
		}
	})
	return out
}

// compile converts all collected Lua data into a Story.
func compile(coll *collector) (*Story, error) {
	story := &Story{Defs: world.NewDefs()}

	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	story.Defs.Game = compileGame(coll.game)

	for _, raw := range coll.rooms {
		if _, dup := story.Defs.Rooms[raw.id]; dup {
			story.duplicates = append(story.duplicates, "room "+raw.id)
		}
		story.Defs.AddRoom(compileRoom(raw))
	}

	for _, raw := range coll.entities {
		if _, dup := story.Defs.Entities[raw.id]; dup {
			story.duplicates = append(story.duplicates, "entity "+raw.id)
		} else if _, clash := story.Defs.Rooms[raw.id]; clash {
			story.duplicates = append(story.duplicates, "entity "+raw.id+" (also a room)")
		}
		entity, location, err := compileEntity(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling entity %s: %w", raw.id, err)
		}
		story.Defs.AddEntity(entity, location)
	}

	for _, tbl := range coll.vocabulary {
		story.Vocabulary = append(story.Vocabulary, compileVocabulary(tbl)...)
	}

	for _, raw := range coll.categories {
		story.Categories = append(story.Categories, vocab.Category{
			Name:  raw.name,
			Words: getStrings(raw.table, "words"),
			When:  compileConditions(getTable(raw.table, "when")),
		})
	}

	for _, raw := range coll.grammar {
		decl, err := compileGrammar(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling %s %q: %w", raw.op, raw.pattern+raw.action+raw.id, err)
		}
		story.Grammar = append(story.Grammar, decl)
	}

	return story, nil
}

func compileGame(tbl *lua.LTable) types.GameDef {
	return types.GameDef{
		Title:   getString(tbl, "title"),
		Author:  getString(tbl, "author"),
		Version: getString(tbl, "version"),
		Start:   getString(tbl, "start"),
		Intro:   getString(tbl, "intro"),
	}
}

func compileRoom(raw rawRoom) types.Room {
	tbl := raw.table
	name := getString(tbl, "name")
	if name == "" {
		name = raw.id
	}
	return types.Room{
		ID:          raw.id,
		Name:        name,
		Description: getString(tbl, "description"),
		Exits:       tableToStringMap(getTable(tbl, "exits")),
	}
}

// entityFields are read into Entity fields rather than Props.
var entityFields = map[string]bool{
	"name": true, "aliases": true, "adjectives": true, "traits": true,
	"location": true, "plural": true, "pronouns": true, "player": true,
}

// compileEntity compiles a raw entity and returns its starting location.
func compileEntity(raw rawEntity) (*types.Entity, string, error) {
	tbl := raw.table
	e := &types.Entity{
		ID:         raw.id,
		Name:       getString(tbl, "name"),
		Aliases:    getStrings(tbl, "aliases"),
		Adjectives: getStrings(tbl, "adjectives"),
		Traits:     getStrings(tbl, "traits"),
		Props:      map[string]any{},
		Number:     types.Singular,
	}
	if getBool(tbl, "plural", false) {
		e.Number = types.Plural
	}

	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok && !entityFields[string(ks)] {
			e.Props[string(ks)] = toGoValue(v)
		}
	})

	switch raw.kind {
	case kindItem:
		// Items are portable unless explicitly set.
		if _, ok := e.Props["portable"]; !ok {
			e.Props["portable"] = true
		}
		if e.Props["portable"] == true && !hasString(e.Traits, "portable") {
			e.Traits = append(e.Traits, "portable")
		}
	case kindActor:
		trait := &types.ActorTrait{Player: getBool(tbl, "player", false)}
		for _, v := range pronounValues(tbl.RawGetString("pronouns")) {
			set, err := parsePronouns(v)
			if err != nil {
				return nil, "", err
			}
			trait.Pronouns = append(trait.Pronouns, set)
		}
		e.Actor = trait
	}
	sort.Strings(e.Traits)

	return e, getString(tbl, "location"), nil
}

func pronounValues(v lua.LValue) []lua.LValue {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		if v == lua.LNil {
			return nil
		}
		return []lua.LValue{v}
	}
	// A single table with named fields is one set.
	if tbl.MaxN() == 0 {
		return []lua.LValue{tbl}
	}
	var out []lua.LValue
	for i := 1; i <= tbl.MaxN(); i++ {
		out = append(out, tbl.RawGetInt(i))
	}
	return out
}

// parsePronouns accepts "she/her/hers/herself" or a table with subject,
// object, possessive and reflexive fields.
func parsePronouns(v lua.LValue) (types.PronounSet, error) {
	switch val := v.(type) {
	case lua.LString:
		parts := strings.Split(string(val), "/")
		if len(parts) != 4 {
			return types.PronounSet{}, fmt.Errorf("pronouns %q: want subject/object/possessive/reflexive", string(val))
		}
		return types.PronounSet{
			Subject:    strings.ToLower(parts[0]),
			Object:     strings.ToLower(parts[1]),
			Possessive: strings.ToLower(parts[2]),
			Reflexive:  strings.ToLower(parts[3]),
		}, nil
	case *lua.LTable:
		set := types.PronounSet{
			Subject:    getString(val, "subject"),
			Object:     getString(val, "object"),
			Possessive: getString(val, "possessive"),
			Reflexive:  getString(val, "reflexive"),
		}
		if set.Subject == "" || set.Object == "" {
			return types.PronounSet{}, fmt.Errorf("pronoun set needs subject and object")
		}
		return set, nil
	default:
		return types.PronounSet{}, fmt.Errorf("pronouns must be a string or table, got %s", v.Type())
	}
}

// compileVocabulary reads { pos = { maps_to = { words... } } } with an
// optional top-level priority.
func compileVocabulary(tbl *lua.LTable) []types.VocabEntry {
	priority := int(getNumber(tbl, "priority"))
	if priority == 0 {
		priority = storyPriority
	}
	var entries []types.VocabEntry
	tbl.ForEach(func(k, v lua.LValue) {
		pos, ok := k.(lua.LString)
		if !ok || pos == "priority" {
			return
		}
		group, ok := v.(*lua.LTable)
		if !ok {
			return
		}
		group.ForEach(func(target, words lua.LValue) {
			mapsTo, ok := target.(lua.LString)
			if !ok {
				return
			}
			for _, w := range toStrings(words) {
				entries = append(entries, types.VocabEntry{
					Word:     strings.ToLower(w),
					POS:      types.PartOfSpeech(strings.ToLower(string(pos))),
					MapsTo:   string(mapsTo),
					Priority: priority,
					Source:   storySource,
				})
			}
		})
	})
	// Lua table iteration order is not stable.
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.POS != b.POS {
			return a.POS < b.POS
		}
		if a.MapsTo != b.MapsTo {
			return a.MapsTo < b.MapsTo
		}
		return a.Word < b.Word
	})
	return entries
}

func compileConditions(tbl *lua.LTable) []types.Condition {
	if tbl == nil {
		return nil
	}
	var conditions []types.Condition
	for i := 1; i <= tbl.MaxN(); i++ {
		if condTbl, ok := tbl.RawGetInt(i).(*lua.LTable); ok {
			conditions = append(conditions, compileCondition(condTbl))
		}
	}
	return conditions
}

func compileCondition(tbl *lua.LTable) types.Condition {
	condType := getString(tbl, "type")

	if condType == "not" {
		if innerTbl := getTable(tbl, "inner"); innerTbl != nil {
			inner := compileCondition(innerTbl)
			return types.Condition{Type: "not", Negate: true, Inner: &inner}
		}
	}

	params := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok && string(ks) != "type" {
			params[string(ks)] = toGoValue(v)
		}
	})
	return types.Condition{Type: condType, Params: params}
}

func compileGrammar(raw rawGrammar) (GrammarDecl, error) {
	decl := GrammarDecl{
		Op:      raw.op,
		Pattern: raw.pattern,
		Action:  raw.action,
		ID:      raw.id,
		Order:   raw.order,
	}
	tbl := raw.table
	if tbl == nil {
		return decl, nil
	}
	if a := getString(tbl, "action"); a != "" {
		decl.Action = a
	}
	decl.Priority = int(getNumber(tbl, "priority"))
	decl.Semantics = tableToSemantics(getTable(tbl, "semantics"))
	decl.VerbSemantics = tableToSemanticMap(getTable(tbl, "verb_semantics"))
	decl.PrepositionSemantics = tableToSemanticMap(getTable(tbl, "preposition_semantics"))
	decl.DirectionSemantics = tableToSemanticMap(getTable(tbl, "direction_semantics"))
	decl.Description = getString(tbl, "description")
	decl.ErrorMessage = getString(tbl, "error_message")

	switch v := tbl.RawGetString("experimental").(type) {
	case lua.LBool:
		decl.Experimental = bool(v)
	case lua.LNumber:
		decl.Experimental = true
		decl.Multiplier = float64(v)
	}

	if roles := getTable(tbl, "roles"); roles != nil {
		decl.Direct = getString(roles, "direct")
		decl.Indirect = getString(roles, "indirect")
	}

	if slotsTbl := getTable(tbl, "slots"); slotsTbl != nil {
		decl.Slots = map[string]SlotDecl{}
		var err error
		slotsTbl.ForEach(func(k, v lua.LValue) {
			name, ok := k.(lua.LString)
			if !ok || err != nil {
				return
			}
			var slot SlotDecl
			slot, err = compileSlot(v)
			if err != nil {
				err = fmt.Errorf("slot %q: %w", string(name), err)
				return
			}
			decl.Slots[string(name)] = slot
		})
		if err != nil {
			return decl, err
		}
	}
	return decl, nil
}

// slotTypeNames maps story-file slot type names to slot types.
var slotTypeNames = map[string]types.SlotType{
	"entity":      types.SlotEntity,
	"instrument":  types.SlotInstrument,
	"text":        types.SlotText,
	"greedy":      types.SlotTextGreedy,
	"text_greedy": types.SlotTextGreedy,
	"quoted":      types.SlotQuotedText,
	"quoted_text": types.SlotQuotedText,
	"topic":       types.SlotTopic,
	"number":      types.SlotNumber,
	"ordinal":     types.SlotOrdinal,
	"time":        types.SlotTime,
	"direction":   types.SlotDirection,
	"adjective":   types.SlotAdjective,
	"noun":        types.SlotNoun,
	"vocabulary":  types.SlotVocabulary,
	"manner":      types.SlotManner,
}

// compileSlot accepts a table, a slot type name or a scope base name.
func compileSlot(v lua.LValue) (SlotDecl, error) {
	switch val := v.(type) {
	case lua.LString:
		s := strings.ToLower(string(val))
		if t, ok := slotTypeNames[s]; ok {
			return SlotDecl{Type: t}, nil
		}
		return SlotDecl{Scope: types.ScopeBase(s)}, nil
	case *lua.LTable:
		slot := SlotDecl{
			Scope:    types.ScopeBase(strings.ToLower(getString(val, "scope"))),
			Traits:   getStrings(val, "traits"),
			Props:    tableToAnyMap(getTable(val, "props")),
			Category: getString(val, "category"),
		}
		if name := strings.ToLower(getString(val, "type")); name != "" {
			t, ok := slotTypeNames[name]
			if !ok {
				t = types.SlotType(strings.ToUpper(name))
			}
			slot.Type = t
		}
		if slot.Category != "" && slot.Type == "" {
			slot.Type = types.SlotVocabulary
		}
		return slot, nil
	default:
		return SlotDecl{}, fmt.Errorf("want a string or table, got %s", v.Type())
	}
}

func hasString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

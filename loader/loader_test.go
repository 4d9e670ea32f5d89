package loader

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/questparse/engine/grammar"
	"github.com/nathoo/questparse/engine/parser"
	"github.com/nathoo/questparse/engine/scope"
	"github.com/nathoo/questparse/types"
)

const minimalSource = `
Game { title = "Inline", start = "hall" }
Room "hall" {}
Actor "player" { name = "yourself", player = true, location = "hall" }
`

func TestLoad_MinimalGame(t *testing.T) {
	story, err := Load("testdata/minimal", "")
	require.NoError(t, err)

	defs := story.Defs
	assert.Equal(t, "Minimal Test Game", defs.Game.Title)
	assert.Equal(t, "hall", defs.Game.Start)
	require.Contains(t, defs.Rooms, "hall")
	assert.Equal(t, "A grand hall.", defs.Rooms["hall"].Description)
	assert.Equal(t, "hall", defs.Rooms["hall"].Name, "room name defaults to its ID")
	assert.Empty(t, story.Warnings)
}

func TestLoad_Castle(t *testing.T) {
	story, err := Load("testdata/castle", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"game.lua", "world.lua", "grammar/verbs.lua"}, story.Files)

	defs := story.Defs
	assert.Equal(t, "Tester", defs.Game.Author)
	assert.Equal(t, "The gate closes behind you.", defs.Game.Intro)
	assert.Len(t, defs.Rooms, 3)
	assert.Equal(t, map[string]string{"north": "hall", "east": "well_room"}, defs.Rooms["courtyard"].Exits)

	sword := defs.Entities["sword"]
	require.NotNil(t, sword)
	assert.Equal(t, []string{"rusty"}, sword.Adjectives)
	assert.Equal(t, []string{"portable"}, sword.Traits)
	assert.Equal(t, map[string]any{"weight": 3, "portable": true, "location": "courtyard"}, sword.Props)
	assert.Nil(t, sword.Actor)

	assert.Equal(t, types.Plural, defs.Entities["coins"].Number)
	assert.Equal(t, types.Singular, defs.Entities["sword"].Number)

	fountain := defs.Entities["fountain"]
	assert.Equal(t, []string{"container"}, fountain.Traits)
	assert.Equal(t, true, fountain.Props["open"])
	assert.NotContains(t, fountain.Props, "portable")

	guard := defs.Entities["guard"]
	require.NotNil(t, guard.Actor)
	assert.False(t, guard.Actor.Player)
	want := []types.PronounSet{
		{Subject: "he", Object: "him", Possessive: "his", Reflexive: "himself"},
		{Subject: "they", Object: "them", Possessive: "theirs", Reflexive: "themself"},
	}
	if diff := cmp.Diff(want, guard.Actor.Pronouns); diff != "" {
		t.Errorf("guard pronouns mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, defs.Entities["player"].Actor.Player)
}

func TestLoad_LanguageDeclarations(t *testing.T) {
	story, err := Load("testdata/castle", "")
	require.NoError(t, err)

	wantVocab := []types.VocabEntry{
		{Word: "buff", POS: types.POSVerb, MapsTo: "polish", Priority: 50, Source: "story"},
		{Word: "polish", POS: types.POSVerb, MapsTo: "polish", Priority: 50, Source: "story"},
		{Word: "wish", POS: types.POSVerb, MapsTo: "wish", Priority: 50, Source: "story"},
	}
	if diff := cmp.Diff(wantVocab, story.Vocabulary); diff != "" {
		t.Errorf("vocabulary mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, story.Categories, 1)
	cat := story.Categories[0]
	assert.Equal(t, "coin_words", cat.Name)
	assert.Equal(t, []string{"heads", "tails"}, cat.Words)
	require.Len(t, cat.When, 2)
	assert.Equal(t, "in_room", cat.When[0].Type)
	assert.Equal(t, map[string]any{"item": "coins"}, cat.When[1].Params)

	var ops []Op
	for i, d := range story.Grammar {
		ops = append(ops, d.Op)
		assert.Equal(t, i+1, d.Order)
	}
	assert.Equal(t, []Op{OpDefine, OpDefine, OpDefine, OpDefine, OpOverride, OpExtend, OpRemove}, ops)

	polishWith := story.Grammar[1]
	assert.Equal(t, "polish", polishWith.Action)
	assert.Equal(t, 110, polishWith.Priority)
	assert.Equal(t, SlotDecl{Type: types.SlotInstrument, Scope: types.ScopeCarried}, polishWith.Slots["cloth"])

	flip := story.Grammar[2]
	assert.Equal(t, SlotDecl{Type: types.SlotVocabulary, Category: "coin_words"}, flip.Slots["call"])

	wish := story.Grammar[3]
	assert.True(t, wish.Experimental)
	assert.Zero(t, wish.Multiplier)

	override := story.Grammar[4]
	assert.Equal(t, "take", override.Action)
	assert.Equal(t, []string{"portable"}, override.Slots["item"].Traits)

	remove := story.Grammar[6]
	assert.Equal(t, "jump", remove.Action)
	assert.Equal(t, "jump", remove.Pattern)
}

func TestLoad_PatternOption(t *testing.T) {
	story, err := Load("testdata/castle", "*.lua")
	require.NoError(t, err)
	assert.Equal(t, []string{"game.lua", "world.lua"}, story.Files)
	assert.Empty(t, story.Grammar)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		dir     string
		pattern string
		want    string
	}{
		{"missing dir", "testdata/nope", "", "no story files"},
		{"no matches", "testdata/minimal", "**/*.yaml", "no story files"},
		{"bad pattern", "testdata/minimal", "[", "invalid story pattern"},
		{"lua syntax", "testdata/syntax", "", "executing game.lua"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.dir, tt.pattern)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_Broken(t *testing.T) {
	story, err := Load("testdata/broken", "")
	require.Error(t, err)
	require.NotNil(t, story)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	for _, want := range []string{
		"duplicate definition of room hall",
		"Game.Title is required",
		`start room "nowhere"`,
		`exit "north" points to undefined room "attic"`,
		"2 player actors",
		`unknown part of speech "adverb"`,
		`in_room references undefined room "cellar"`,
		`carrying references undefined entity "ghost"`,
		`define "frob :thing": action is required`,
		`define "frob :thing": unknown slot "other"`,
		`unknown scope "everywhere"`,
		`define "say [unclosed"`,
	} {
		assertContains(t, ve.Errors, want)
	}
	assertContains(t, story.Warnings, `entity "a" has no name`)
}

func TestLoadSource(t *testing.T) {
	t.Run("sandbox", func(t *testing.T) {
		src := `
if dofile ~= nil or loadstring ~= nil or require ~= nil then error("unsafe globals") end
if os ~= nil or io ~= nil then error("unsafe libraries") end
if math.randomseed ~= nil or math.random ~= nil then error("nondeterministic") end
` + minimalSource
		_, err := LoadSource("sandbox.lua", src)
		require.NoError(t, err)
	})
	t.Run("no game", func(t *testing.T) {
		_, err := LoadSource("empty.lua", `Room "hall" {}`)
		assert.ErrorContains(t, err, "no Game{} definition found")
	})
	t.Run("bad pronouns", func(t *testing.T) {
		_, err := LoadSource("p.lua", minimalSource+`Actor "bob" { pronouns = "he/him", location = "hall" }`)
		assert.ErrorContains(t, err, "subject/object/possessive/reflexive")
	})
	t.Run("runtime error names the chunk", func(t *testing.T) {
		_, err := LoadSource("boom.lua", `error("boom")`)
		assert.ErrorContains(t, err, "boom.lua")
	})
	t.Run("pronoun table", func(t *testing.T) {
		story, err := LoadSource("p.lua", minimalSource+
			`Actor "sam" { name = "Sam", pronouns = { subject = "xe", object = "xem" }, location = "hall" }`)
		require.NoError(t, err)
		assert.Equal(t, []types.PronounSet{{Subject: "xe", Object: "xem"}}, story.Defs.Entities["sam"].Actor.Pronouns)
	})
}

func castleParser(t *testing.T) (*Story, *parser.Parser) {
	t.Helper()
	story, err := Load("testdata/castle", "")
	require.NoError(t, err)
	p := parser.New(parser.DefaultConfig())
	require.NoError(t, story.Apply(p, 0.7))
	return story, p
}

func TestApply(t *testing.T) {
	_, p := castleParser(t)

	assert.True(t, p.Vocab.HasWord("buff", types.POSVerb))
	assert.True(t, p.Vocab.HasWord("soldier", types.POSNoun), "entity aliases become nouns")
	assert.True(t, p.Vocab.HasWord("rusty", types.POSAdjective))
	assert.Equal(t, []string{"coin_words"}, p.Categories.Names())

	assert.Empty(t, p.Grammar.RulesFor("jump"))
	assert.Equal(t, 6, p.Story.Stats().Story)

	wish := p.Grammar.RulesFor("wish")
	require.Len(t, wish, 1)
	assert.Equal(t, 0.7, wish[0].Experimental)

	var sources []grammar.Source
	for _, r := range p.Story.Rules() {
		if r.Action == "drink" {
			sources = append(sources, r.Source)
		}
	}
	assert.Equal(t, []grammar.Source{grammar.SourceExtension}, sources)
}

func TestApply_Parse(t *testing.T) {
	story, p := castleParser(t)
	w := story.World()
	ctx := scope.Context{World: w, Actor: "player", Location: "courtyard"}

	cmd, err := p.Parse("grab sword", ctx)
	require.NoError(t, err)
	assert.Equal(t, "take", cmd.Action)
	assert.True(t, strings.HasPrefix(cmd.RuleID, "story:take:"), cmd.RuleID)
	assert.Equal(t, "sword", cmd.DirectObject.EntityID)

	cmd, err = p.Parse("take ring", ctx)
	require.NoError(t, err, "items in open containers are visible")
	assert.Equal(t, "ring", cmd.DirectObject.EntityID)

	_, err = p.Parse("flip coins for heads", ctx)
	require.Error(t, err, "category inactive until the coins are carried")

	w.Move("coins", "player")
	w.Move("sword", "player")

	cmd, err = p.Parse("flip coins for heads", ctx)
	require.NoError(t, err)
	assert.Equal(t, "flip", cmd.Action)
	assert.Equal(t, "heads", cmd.Vocabulary["call"].Word)

	cmd, err = p.Parse("polish sword", ctx)
	require.NoError(t, err)
	assert.Equal(t, "polish", cmd.Action)
	assert.Equal(t, true, cmd.Semantics["careful"])

	cmd, err = p.Parse("wish for a pony", ctx)
	require.NoError(t, err)
	assert.Equal(t, "wish", cmd.Action)
	assert.Less(t, cmd.Confidence, 1.0)
}

func TestApply_Errors(t *testing.T) {
	story, err := LoadSource("bad.lua", minimalSource+`
Extend "nosuch" {}
Remove("nosuch", "nosuch")
Define "hop" { action = "hop" }
`)
	require.NoError(t, err)

	p := parser.New(parser.DefaultConfig())
	err = story.Apply(p, 0.7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rule to extend")
	assert.Contains(t, err.Error(), `remove "nosuch": no such rule`)
	assert.Len(t, p.Grammar.RulesFor("hop"), 1, "valid declarations are still applied")
}

func assertContains(t *testing.T, list []string, substr string) {
	t.Helper()
	for _, s := range list {
		if strings.Contains(s, substr) {
			return
		}
	}
	t.Errorf("expected an entry containing %q, got:\n  %s", substr, strings.Join(list, "\n  "))
}

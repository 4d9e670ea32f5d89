package grammar

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/questparse/engine/pattern"
	"github.com/nathoo/questparse/engine/scope"
	"github.com/nathoo/questparse/engine/slots"
	"github.com/nathoo/questparse/engine/world/worldtest"
	"github.com/nathoo/questparse/types"
)

func tokens(input string) []types.Token {
	var out []types.Token
	for i, w := range strings.Fields(input) {
		out = append(out, types.Token{Word: w, Normalized: strings.ToLower(w), Position: i})
	}
	return out
}

func best(t *testing.T, e *Engine, input string, ctx slots.Context) *PatternMatch {
	t.Helper()
	matches := e.FindMatches(tokens(input), ctx, DefaultOptions())
	require.NotEmpty(t, matches, "no match for %q", input)
	return matches[0]
}

func TestCoreActions(t *testing.T) {
	e := NewCore()

	tests := []struct {
		input  string
		action string
	}{
		{"look", "look"},
		{"l", "look"},
		{"look around", "look"},
		{"x lamp", "examine"},
		{"look at the lamp", "examine"},
		{"take lamp", "take"},
		{"pick up lamp", "take"},
		{"pick lamp up", "take"},
		{"take coin from box", "take_from"},
		{"drop lamp", "drop"},
		{"put lamp down", "drop"},
		{"put lamp in chest", "insert"},
		{"slip note chest", "insert"},
		{"put cup on table", "put_on"},
		{"hang coat on hook", "put_on"},
		{"n", "go"},
		{"go north", "go"},
		{"push cart east", "push_dir"},
		{"open door", "open"},
		{"open door with key", "open"},
		{"open door carefully", "open"},
		{"turn on radio", "switch_on"},
		{"switch radio off", "switch_off"},
		{"give lamp to alice", "give"},
		{"give alice lamp", "give"},
		{"ask alice about the war", "ask"},
		{`say "hello"`, "say"},
		{"say hello world", "say"},
		{"take off cloak", "remove"},
		{"wait 5 turns", "wait"},
		{"wait until 9:30", "wait_until"},
		{"i", "inventory"},
		{"g", "again"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.action, best(t, e, tt.input, slots.Context{}).Rule.Action)
		})
	}
}

func TestConfidence(t *testing.T) {
	e := New()
	e.Define("look [around]").MapsTo("look").MustBuild()
	e.Define("look [carefully] [around]").MapsTo("look_closely").MustBuild()

	m := best(t, e, "look", slots.Context{})
	assert.Equal(t, "look", m.Rule.Action)
	assert.InDelta(t, 0.9, m.Confidence, 1e-9)
	assert.Equal(t, 1, m.Skipped)

	all := e.FindMatches(tokens("look"), slots.Context{}, DefaultOptions())
	require.Len(t, all, 2)
	assert.InDelta(t, 0.81, all[1].Confidence, 1e-9)

	for _, m := range all {
		assert.Greater(t, m.Confidence, 0.0)
		assert.LessOrEqual(t, m.Confidence, 1.0)
	}
}

func TestExperimentalAndMinConfidence(t *testing.T) {
	e := New()
	e.Define("frob :thing").MapsTo("frob").Experimental(0.05).MustBuild()

	assert.Empty(t, e.FindMatches(tokens("frob lamp"), slots.Context{}, DefaultOptions()))
	opts := DefaultOptions()
	opts.MinConfidence = 0.01
	m := e.FindMatches(tokens("frob lamp"), slots.Context{}, opts)
	require.Len(t, m, 1)
	assert.InDelta(t, 0.05, m[0].Confidence, 1e-9)
}

func TestExactConsumption(t *testing.T) {
	e := New()
	e.Define("look").MapsTo("look").MustBuild()

	matches, f := e.Match(tokens("look lamp"), slots.Context{}, DefaultOptions())
	assert.Empty(t, matches)
	require.NotNil(t, f)
	assert.Equal(t, ReasonLeftover, f.Reason)
	assert.Equal(t, "lamp", f.Text)
	assert.Equal(t, 1, f.Progress)
}

func TestRankingDeterministic(t *testing.T) {
	e := New()
	e.Define("push :thing").MapsTo("push").WithPriority(100).MustBuild()
	e.Define("push :thing").MapsTo("shove").WithPriority(120).MustBuild()
	e.Define("push :thing").MapsTo("nudge").WithPriority(110).MustBuild()

	var first []string
	for i := 0; i < 20; i++ {
		var got []string
		for _, m := range e.FindMatches(tokens("push crate"), slots.Context{}, DefaultOptions()) {
			got = append(got, m.Rule.Action)
		}
		if first == nil {
			first = got
		}
		assert.Equal(t, first, got)
	}
	assert.Equal(t, []string{"shove", "nudge", "push"}, first)

	opts := DefaultOptions()
	opts.MaxMatches = 2
	assert.Len(t, e.FindMatches(tokens("push crate"), slots.Context{}, opts), 2)
}

func TestFailureDiagnosis(t *testing.T) {
	e := NewCore()

	tests := []struct {
		name     string
		input    string
		progress int
		slot     string
		role     Role
		action   string
	}{
		{"verb alone", "take", 1, "item", RoleDirect, "take_from"},
		{"missing indirect", "put lamp in", 3, "container", RoleIndirect, "insert"},
		{"missing instrument", "lock door with", 3, "key", RoleInstrument, "lock"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches, f := e.Match(tokens(tt.input), slots.Context{}, DefaultOptions())
			require.Empty(t, matches)
			require.NotNil(t, f)
			assert.Equal(t, ReasonMissingSlot, f.Reason, f.Reason.String())
			assert.Equal(t, tt.progress, f.Progress)
			assert.Equal(t, tt.slot, f.Slot)
			assert.Equal(t, tt.role, f.Role)
			assert.Equal(t, tt.action, f.Rule.Action)
		})
	}

	_, f := e.Match(tokens("xyzzy lamp"), slots.Context{}, DefaultOptions())
	require.NotNil(t, f)
	assert.False(t, f.MatchedVerb())
	assert.Empty(t, f.Verb)
}

func TestSlotFailedWithWorld(t *testing.T) {
	e := NewCore()
	ctx := slots.Context{Scope: worldtest.Context(worldtest.New())}

	matches, f := e.Match(tokens("drop red ball"), ctx, DefaultOptions())
	require.Empty(t, matches)
	require.NotNil(t, f)
	assert.Equal(t, ReasonSlotFailed, f.Reason)
	assert.Equal(t, "red ball", f.Text)
	assert.True(t, f.MatchedVerb())
}

func TestSemanticsLayering(t *testing.T) {
	e := NewCore()

	m := best(t, e, "run north", slots.Context{})
	assert.Equal(t, "north", m.Direction)
	assert.Equal(t, "run", m.Verb)
	assert.Equal(t, types.Semantics{"implicitDirection": false, "manner": "quick", "direction": "north"}, m.Semantics)

	m = best(t, e, "ne", slots.Context{})
	assert.Equal(t, "northeast", m.Direction)
	assert.Equal(t, true, m.Semantics["implicitDirection"])

	m = best(t, e, "jam note into chest", slots.Context{})
	assert.Equal(t, "into", m.Preposition)
	assert.Equal(t, "forceful", m.Semantics["manner"])
	assert.Equal(t, "in", m.Semantics["spatialRelation"])
	assert.Equal(t, false, m.Semantics["implicitPreposition"])

	m = best(t, e, "stick note chest", slots.Context{})
	assert.Equal(t, true, m.Semantics["implicitPreposition"])

	m = best(t, e, "look carefully at lamp", slots.Context{})
	assert.Equal(t, "careful", m.Semantics["manner"])
}

func TestPrepositionSlot(t *testing.T) {
	e := New()
	e.Define("place :item :preposition :target").SlotType("preposition", types.SlotText).MapsTo("place").MustBuild()

	m := best(t, e, "place lamp under table", slots.Context{})
	assert.Equal(t, "under", m.Preposition)
}

func TestBuilderErrors(t *testing.T) {
	tests := []struct {
		name string
		b    *Builder
	}{
		{"no action", NewBuilder("look")},
		{"bad pattern", NewBuilder("look [at").MapsTo("look")},
		{"unknown slot", NewBuilder("take :item").Where("thing", scope.Visible()).MapsTo("take")},
		{"vocabulary without category", NewBuilder("cast :spell").SlotType("spell", types.SlotVocabulary).MapsTo("cast")},
		{"experimental range", NewBuilder("frob").MapsTo("frob").Experimental(1.5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.b.Build()
			var re *RuleError
			require.True(t, errors.As(err, &re), "got %v", err)
		})
	}

	_, err := NewBuilder("look [at").MapsTo("look").Build()
	var ce *pattern.CompileError
	assert.True(t, errors.As(err, &ce))
	assert.Panics(t, func() { NewBuilder("look").MustBuild() })
}

func TestDetachedBuilderAndAdd(t *testing.T) {
	e := New()
	r := NewBuilder("frob :thing").MapsTo("frob").Describe("frob something").MustBuild()
	assert.Empty(t, e.Rules())

	require.NoError(t, e.Add(r))
	require.Len(t, e.Rules(), 1)
	assert.Equal(t, "core:frob:1", r.ID)
	assert.Equal(t, "frob something", r.Description)
}

func TestAddCompilesBareRule(t *testing.T) {
	e := New()
	r := &Rule{Pattern: "wave :thing", Action: "wave", Priority: DefaultPriority}
	require.NoError(t, e.Add(r))
	require.NotNil(t, r.Compiled)

	m := best(t, e, "wave flag", slots.Context{})
	assert.Equal(t, "wave", m.Rule.Action)
	assert.Equal(t, "flag", m.Slots["thing"].Text)

	err := e.Add(&Rule{Pattern: "wave [at", Action: "wave"})
	var re *RuleError
	require.True(t, errors.As(err, &re), "got %v", err)
	var ce *pattern.CompileError
	assert.True(t, errors.As(err, &ce))
	assert.Error(t, e.Add(nil))
	assert.Len(t, e.Rules(), 1)
}

func TestRoles(t *testing.T) {
	e := NewCore()
	m := best(t, e, "give alice lamp", slots.Context{})
	assert.Equal(t, RoleDirect, m.Rule.RoleOf("item"))
	assert.Equal(t, RoleIndirect, m.Rule.RoleOf("recipient"))

	m = best(t, e, "unlock door with key", slots.Context{})
	assert.Equal(t, RoleDirect, m.Rule.RoleOf("door"))
	assert.Equal(t, RoleInstrument, m.Rule.RoleOf("key"))
	assert.Equal(t, RoleNone, m.Rule.RoleOf("missing"))
}

func TestStoryOverride(t *testing.T) {
	e := NewCore()
	s := NewStory(e)

	r, err := s.Override("remove", "peel off :item").Build()
	require.NoError(t, err)
	assert.Equal(t, 105+OverrideBoost, r.Priority, "take off :item is the highest remove rule")
	assert.Equal(t, SourceStory, r.Source)
	assert.Equal(t, r, e.RulesFor("remove")[0])

	m := best(t, e, "peel off lamp", slots.Context{})
	assert.Equal(t, r.ID, m.Rule.ID)

	e2 := New()
	s2 := NewStory(e2)
	r2 := s2.Override("frob", "frob").MustBuild()
	assert.Equal(t, DefaultPriority+OverrideBoost, r2.Priority)
}

func TestStoryExtend(t *testing.T) {
	e := NewCore()
	s := NewStory(e)
	top := e.RulesFor("drink")[0]

	r := s.Extend("drink").Where("item", scope.Visible().Matching(map[string]any{"liquid": true})).MustBuild()
	assert.Equal(t, top.Priority+ExtendBoost, r.Priority)
	assert.Equal(t, SourceExtension, r.Source)
	assert.Equal(t, top.Pattern, r.Pattern)
	assert.NotEqual(t, top.ID, r.ID)
	assert.Len(t, r.Slot("item").Constraints, len(top.Slot("item").Constraints)+1)
	assert.Len(t, e.RulesFor("drink")[1].Slot("item").Constraints, 2, "original untouched")

	_, err := s.Extend("nothing").Build()
	assert.Error(t, err)
}

func TestStoryRemoveClearStats(t *testing.T) {
	e := NewCore()
	s := NewStory(e)
	core := e.Stats().Core

	r := s.Define("xyzzy").MapsTo("magic").MustBuild()
	s.Override("look", "peer").MustBuild()
	s.Extend("look").MustBuild()

	st := s.Stats()
	assert.Equal(t, core, st.Core)
	assert.Equal(t, 3, st.Story)
	assert.Equal(t, core+3, st.Total)
	assert.Equal(t, 1, st.ByAction["magic"])
	assert.Positive(t, st.Overridden)
	assert.Len(t, s.Rules(), 3)

	assert.True(t, s.Remove(r.ID))
	assert.False(t, s.Remove(r.ID))
	assert.Len(t, s.Rules(), 2)

	s.Clear()
	assert.Empty(t, s.Rules())
	assert.Equal(t, core, e.Stats().Total)
	assert.Zero(t, e.Stats().Overridden)

	_ = e.FindMatches(tokens("look"), slots.Context{}, DefaultOptions())
	st = e.Stats()
	assert.Positive(t, st.MatchAttempts)
	assert.Positive(t, st.SuccessfulMatches)
}

func TestTrace(t *testing.T) {
	e := NewCore()
	var attempts, hits int
	opts := DefaultOptions()
	opts.Trace = func(a Attempt) {
		attempts++
		if a.Match != nil {
			hits++
			assert.Nil(t, a.Failure)
		} else {
			assert.NotNil(t, a.Failure)
		}
	}
	e.FindMatches(tokens("look"), slots.Context{}, opts)
	assert.Positive(t, attempts)
	assert.Equal(t, 2, hits, "look and look [around]")
}

func TestConcurrentMutation(t *testing.T) {
	e := NewCore()
	s := NewStory(e)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			e.FindMatches(tokens("take lamp"), slots.Context{}, DefaultOptions())
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			r := s.Define("frob :thing").MapsTo("frob").MustBuild()
			s.Remove(r.ID)
		}
	}()
	wg.Wait()
	assert.Empty(t, s.Rules())
}

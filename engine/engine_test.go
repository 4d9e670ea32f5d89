package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nathoo/questparse/engine/parser"
	"github.com/nathoo/questparse/engine/world/worldtest"
	"github.com/nathoo/questparse/types"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	return New(worldtest.New(), parser.New(parser.DefaultConfig()), worldtest.Player, nil)
}

func hasLine(output []string, want string) bool {
	for _, line := range output {
		if strings.Contains(line, want) {
			return true
		}
	}
	return false
}

func TestStepLook(t *testing.T) {
	e := newEngine(t)
	res := e.Step("look")

	require.Empty(t, res.Errors)
	require.Len(t, res.Commands, 1)
	assert.Equal(t, "look", res.Commands[0].Action)
	assert.Equal(t, 1, e.Turn)
	assert.Equal(t, "[look]", res.Output[0])
	assert.Equal(t, "Hall", res.Output[1])
	assert.True(t, hasLine(res.Output, "Exits: north."))
	assert.True(t, hasLine(res.Output, "Alice"))
	assert.False(t, hasLine(res.Output, "lamp"), "carried items are not listed in the room")
}

func TestStepMovement(t *testing.T) {
	e := newEngine(t)

	res := e.Step("n")
	require.Empty(t, res.Errors)
	assert.Equal(t, worldtest.Garden, e.Location())
	assert.True(t, hasLine(res.Output, "Garden"))

	res = e.Step("west")
	require.Empty(t, res.Errors)
	assert.True(t, hasLine(res.Output, "You can't go that way."))
	assert.Equal(t, worldtest.Garden, e.Location())

	// The key is only in scope once the player is in the garden.
	res = e.Step("take iron key")
	require.Empty(t, res.Errors)
	assert.Equal(t, worldtest.Player, e.World.Location("key"))
}

func TestStepTakeAndDrop(t *testing.T) {
	e := newEngine(t)

	res := e.Step("take red ball")
	require.Empty(t, res.Errors)
	assert.Equal(t, "[take] object=red_ball", res.Output[0])
	assert.Equal(t, "You take the red ball.", res.Output[1])
	assert.Equal(t, worldtest.Player, e.World.Location("red_ball"))

	res = e.Step("drop it")
	require.Empty(t, res.Errors)
	assert.Equal(t, "You drop the red ball.", res.Output[1])
	assert.Equal(t, worldtest.Hall, e.World.Location("red_ball"))

	res = e.Step("inventory")
	require.Empty(t, res.Errors)
	assert.Equal(t, "You are carrying: lamp, note.", res.Output[1])
}

func TestStepOpenChangesScope(t *testing.T) {
	e := newEngine(t)

	res := e.Step("take coin")
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 0, e.Turn)

	res = e.Step("open box")
	require.Empty(t, res.Errors)
	open, _ := e.World.Prop("box", "open")
	assert.Equal(t, true, open)

	res = e.Step("take coin")
	require.Empty(t, res.Errors)
	assert.Equal(t, worldtest.Player, e.World.Location("coin"))
}

func TestStepErrors(t *testing.T) {
	e := newEngine(t)

	res := e.Step("take ball")
	require.Len(t, res.Errors, 1)
	var pe *parser.Error
	require.ErrorAs(t, res.Errors[0], &pe)
	assert.Equal(t, types.ErrAmbiguousInput, pe.Code)
	assert.Equal(t, "Which do you mean: the blue ball or the red ball?", res.Output[0])
	assert.Empty(t, res.Commands)
	assert.Equal(t, 0, e.Turn)

	res = e.Step("")
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "I beg your pardon?", res.Output[0])
}

func TestStepChainStopsAtError(t *testing.T) {
	e := newEngine(t)
	res := e.Step("take red ball. xyzzy. look")

	require.Len(t, res.Commands, 1)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "take", res.Commands[0].Action)
	assert.Equal(t, 1, e.Turn)
	assert.Equal(t, []string{"take red ball. xyzzy. look"}, e.CommandLog)
}

func TestStepChainSeesEarlierSegments(t *testing.T) {
	e := newEngine(t)

	res := e.Step("north. take key")
	require.Empty(t, res.Errors, "output: %v", res.Output)
	require.Len(t, res.Commands, 2)
	assert.Equal(t, worldtest.Garden, e.Location())
	assert.Equal(t, worldtest.Player, e.World.Location("key"))

	e = newEngine(t)
	res = e.Step("x note. drop it")
	require.Empty(t, res.Errors, "output: %v", res.Output)
	require.Len(t, res.Commands, 2)
	assert.Equal(t, "examine", res.Commands[0].Action)
	assert.Equal(t, "note", res.Commands[1].DirectObject.EntityID)
	assert.Equal(t, worldtest.Hall, e.World.Location("note"))
	assert.Equal(t, 2, e.Turn)
}

func TestStepAgain(t *testing.T) {
	e := newEngine(t)

	res := e.Step("again")
	require.Empty(t, res.Errors)
	assert.Equal(t, []string{"There is nothing to repeat."}, res.Output)
	assert.Equal(t, 0, e.Turn)

	e.Step("look")
	res = e.Step("g")
	require.Empty(t, res.Errors)
	require.Len(t, res.Commands, 1)
	assert.Equal(t, "look", res.Commands[0].Action)
	assert.Equal(t, "(repeating: look)", res.Output[0])
	assert.Equal(t, 2, e.Turn)
}

func TestReset(t *testing.T) {
	e := newEngine(t)
	e.Step("take red ball")
	e.Step("n")
	require.NotEmpty(t, e.Parser.Pronouns.Bound())

	e.Reset()
	assert.Equal(t, 0, e.Turn)
	assert.Empty(t, e.CommandLog)
	assert.Empty(t, e.Parser.Pronouns.Bound())
	assert.Equal(t, worldtest.Hall, e.Location())
	assert.Equal(t, worldtest.Hall, e.World.Location("red_ball"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cmd  types.ParsedCommand
		ok   bool
	}{
		{"no objects", types.ParsedCommand{Action: "look"}, true},
		{"resolved", types.ParsedCommand{Action: "take", DirectObject: &types.NounPhrase{Text: "lamp", EntityID: "lamp"}}, true},
		{"unresolved", types.ParsedCommand{Action: "take", DirectObject: &types.NounPhrase{Text: "lamp"}}, false},
		{"unresolved indirect", types.ParsedCommand{
			Action:         "put",
			DirectObject:   &types.NounPhrase{Text: "lamp", EntityID: "lamp"},
			IndirectObject: &types.NounPhrase{Text: "box"},
		}, false},
		{"list item unresolved", types.ParsedCommand{Action: "take", DirectObject: &types.NounPhrase{
			IsList: true,
			Items:  []types.NounPhrase{{Text: "lamp", EntityID: "lamp"}, {Text: "note"}},
		}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.cmd)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestSummary(t *testing.T) {
	cmd := &types.ParsedCommand{
		Action:         "put",
		DirectObject:   &types.NounPhrase{EntityID: "lamp"},
		IndirectObject: &types.NounPhrase{EntityID: "box"},
		Preposition:    "in",
		Values:         map[string]any{"count": 2},
	}
	assert.Equal(t, "object=lamp indirect=box prep=in count=2", Summary(cmd))
}

func TestStepLogs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	e := New(worldtest.New(), parser.New(parser.DefaultConfig()), worldtest.Player, zap.New(core))

	e.Step("look")
	e.Step("xyzzy")

	entries := logs.FilterMessage("command").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "look", entries[0].ContextMap()["action"])
	assert.Equal(t, 1, logs.FilterMessage("parse failed").Len())
}

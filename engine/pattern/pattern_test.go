package pattern

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/questparse/types"
)

func TestCompile(t *testing.T) {
	c, err := Compile("put :item in|into [the] :container")
	require.NoError(t, err)

	want := []Token{
		{Kind: Literal, Value: "put"},
		{Kind: Slot, Value: "item", SlotName: "item", SlotType: types.SlotEntity},
		{Kind: Alternatives, Value: "in", Alternatives: []string{"in", "into"}},
		{Kind: Literal, Value: "the", Optional: true},
		{Kind: Slot, Value: "container", SlotName: "container", SlotType: types.SlotEntity},
	}
	if diff := cmp.Diff(want, c.Tokens); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 4, c.MinTokens)
	assert.Equal(t, 5, c.MaxTokens)
	assert.Equal(t, map[string]int{"item": 1, "container": 4}, c.Slots)
}

func TestCompileGreedyAndCase(t *testing.T) {
	c, err := Compile("WRITE :message... on :surface")
	require.NoError(t, err)
	assert.Equal(t, "write", c.Tokens[0].Value)
	assert.True(t, c.Tokens[1].Greedy)
	assert.Equal(t, types.SlotTextGreedy, c.Tokens[1].SlotType)
	assert.Equal(t, 2, c.NextDelimiter(1))
	assert.Equal(t, -1, c.NextDelimiter(3))
}

func TestCompileRoundTrip(t *testing.T) {
	for _, src := range []string{
		"look",
		"look [around]",
		"pick :item up",
		"say :words... to :person",
		"turn|switch [on] :device",
		"[go] :dir",
	} {
		t.Run(src, func(t *testing.T) {
			first := MustCompile(src)
			second := MustCompile(first.String())
			if diff := cmp.Diff(first.Tokens, second.Tokens); diff != "" {
				t.Errorf("recompile changed tokens (-first +second):\n%s", diff)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
	}{
		{"empty", "   "},
		{"unbalanced open", "look [at :thing"},
		{"unbalanced close", "look at] :thing"},
		{"nested", "look [[at]] :thing"},
		{"bad slot name", "take :1item"},
		{"empty slot name", "take :"},
		{"duplicate slot", "give :x to :x"},
		{"empty alternative", "put :x in| :y"},
		{"slot in alternation", "put :x in|:y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.pattern)
			var ce *CompileError
			require.True(t, errors.As(err, &ce), "got %v", err)
			assert.Equal(t, tt.pattern, ce.Pattern)
		})
	}
}

func TestMustCompilePanics(t *testing.T) {
	assert.Panics(t, func() { MustCompile("") })
}

func TestTokenMatches(t *testing.T) {
	c := MustCompile("look at|toward :thing")
	assert.True(t, c.Tokens[0].Matches("look"))
	assert.False(t, c.Tokens[0].Matches("l"))
	assert.True(t, c.Tokens[1].Matches("toward"))
	assert.False(t, c.Tokens[2].Matches("thing"))
}

func TestFirstSlot(t *testing.T) {
	assert.Equal(t, 2, MustCompile("pick up :item").FirstSlot())
	assert.Equal(t, 0, MustCompile(":dir").FirstSlot())
	assert.Equal(t, 2, MustCompile("look around").FirstSlot())
}

package parser

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nathoo/questparse/engine/scope"
	"github.com/nathoo/questparse/engine/vocab"
	"github.com/nathoo/questparse/engine/world"
	"github.com/nathoo/questparse/engine/world/worldtest"
	"github.com/nathoo/questparse/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func setup() (*Parser, *world.World, scope.Context) {
	w := worldtest.New()
	return New(DefaultConfig()), w, worldtest.Context(w)
}

func id(np *types.NounPhrase) string {
	if np == nil {
		return ""
	}
	return np.EntityID
}

func TestParse(t *testing.T) {
	p, _, ctx := setup()

	tests := []struct {
		input      string
		action     string
		direct     string
		indirect   string
		instrument string
		shape      string
	}{
		{"look", "look", "", "", "", "VERB_ONLY"},
		{"x lamp", "examine", "lamp", "", "", "VERB_NOUN"},
		{"take the brass lamp", "take", "lamp", "", "", "VERB_NOUN"},
		{"take red ball", "take", "red_ball", "", "", "VERB_NOUN"},
		{"put note in chest", "insert", "note", "chest", "", "VERB_NOUN_PREP_NOUN"},
		{"put note into the chest", "insert", "note", "chest", "", "VERB_NOUN_PREP_NOUN"},
		{"give alice lamp", "give", "lamp", "alice", "", "VERB_NOUN_NOUN"},
		{"give lamp to alice", "give", "lamp", "alice", "", "VERB_NOUN_PREP_NOUN"},
		{"unlock door with lamp", "unlock", "door", "", "lamp", "VERB_NOUN_PREP_NOUN"},
		{"turn on radio", "switch_on", "radio", "", "", "VERB_NOUN"},
		{"n", "go", "", "", "", "DIRECTION_ONLY"},
		{"go north", "go", "", "", "", "VERB_DIRECTION"},
		{"say hello there", "say", "", "", "", "VERB_TEXT"},
		{"i", "inventory", "", "", "", "VERB_ONLY"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd, err := p.Parse(tt.input, ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.action, cmd.Action)
			assert.Equal(t, tt.direct, id(cmd.DirectObject))
			assert.Equal(t, tt.indirect, id(cmd.IndirectObject))
			assert.Equal(t, tt.instrument, id(cmd.Instrument))
			assert.Equal(t, tt.shape, cmd.Pattern)
			assert.Equal(t, tt.input, cmd.Raw)
			assert.Greater(t, cmd.Confidence, 0.0)
			assert.LessOrEqual(t, cmd.Confidence, 1.0)
			assert.NotEmpty(t, cmd.RuleID)
		})
	}
}

func TestParseFields(t *testing.T) {
	p, _, ctx := setup()

	cmd, err := p.Parse("put note into chest", ctx)
	require.NoError(t, err)
	assert.Equal(t, "into", cmd.Preposition)
	assert.Equal(t, "put", cmd.Verb.Head)
	assert.Equal(t, "in", cmd.Semantics["spatialRelation"])

	cmd, err = p.Parse("pick up lamp", ctx)
	require.NoError(t, err)
	assert.Equal(t, "pick up", cmd.Verb.Text)
	assert.Equal(t, []string{"up"}, cmd.Verb.Particles)

	cmd, err = p.Parse("go ne", ctx)
	require.NoError(t, err)
	assert.Equal(t, "northeast", cmd.Direction)
	assert.Equal(t, "northeast", cmd.Values["direction"])

	cmd, err = p.Parse("ask alice about the old war", ctx)
	require.NoError(t, err)
	assert.Equal(t, "the old war", cmd.Topic)
	assert.Equal(t, "alice", id(cmd.DirectObject))

	cmd, err = p.Parse(`say "Hello, friend"`, ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hello, friend", cmd.QuotedText)

	cmd, err = p.Parse("wait 5 turns", ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, cmd.Values["count"])

	cmd, err = p.Parse("wait until 9:30", ctx)
	require.NoError(t, err)
	assert.Equal(t, types.TimeOfDay{Hours: 9, Minutes: 30}, cmd.Values["time"])

	cmd, err = p.Parse("open door carefully", ctx)
	require.NoError(t, err)
	assert.Equal(t, "open", cmd.Action)

	cmd, err = p.Parse("take lamp", ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"lamp"}, cmd.DirectObject.Candidates)
	assert.Len(t, cmd.Tokens, 2)
}

func TestParseErrors(t *testing.T) {
	p, _, ctx := setup()

	tests := []struct {
		input   string
		code    types.ErrorCode
		message string
	}{
		{"", types.ErrNoInput, "I beg your pardon?"},
		{"   ", types.ErrNoInput, "I beg your pardon?"},
		{"...", types.ErrNoInput, "I beg your pardon?"},
		{"xyzzy", types.ErrUnknownVerb, `I don't know the word "xyzzy".`},
		{"take", types.ErrMissingObject, "What do you want to take?"},
		{"put lamp in", types.ErrMissingIndirect, "What do you want to put the lamp in?"},
		{"lock door with", types.ErrMissingIndirect, "What do you want to lock the door with?"},
		{"give alice", types.ErrMissingObject, "What do you want to give alice?"},
		{"take unicorn", types.ErrEntityNotFound, `You can't see any "unicorn" here.`},
		{"take key", types.ErrScopeViolation, "You can't reach the key from here."},
		{"drop red ball", types.ErrScopeViolation, "You aren't holding the red ball."},
		{"take ball", types.ErrAmbiguousInput, "Which do you mean: the blue ball or the red ball?"},
		{"look lamp", types.ErrInvalidSyntax, `I only understood you as far as "look".`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd, err := p.Parse(tt.input, ctx)
			assert.Nil(t, cmd)
			var pe *Error
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, tt.code, pe.Code)
			assert.Equal(t, tt.message, pe.Message)
			assert.True(t, errors.Is(err, &Error{Code: tt.code}))
		})
	}
}

func TestParseErrorDetails(t *testing.T) {
	p, _, ctx := setup()

	_, err := p.Parse("tke lamp", ctx)
	var pe *Error
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, types.ErrUnknownVerb, pe.Code)
	assert.Contains(t, pe.Suggestions, "take")

	_, err = p.Parse("take lamb", ctx)
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, types.ErrEntityNotFound, pe.Code)
	assert.Equal(t, []string{"lamp"}, pe.Suggestions)

	_, err = p.Parse("take ball", ctx)
	require.True(t, errors.As(err, &pe))
	assert.ElementsMatch(t, []string{"red_ball", "blue_ball"}, pe.Candidates)

	_, err = p.Parse("take lamp and unicorn", ctx)
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, types.ErrEntityNotFound, pe.Code)
	assert.Equal(t, "unicorn", pe.Text)
}

func TestMissingIndirectWithoutPreposition(t *testing.T) {
	p, _, ctx := setup()
	p.Grammar.Define("prod :thing :other").MapsTo("prod").MustBuild()

	_, err := p.Parse("prod lamp", ctx)
	var pe *Error
	require.True(t, errors.As(err, &pe), "got %v", err)
	assert.Equal(t, types.ErrMissingIndirect, pe.Code)
	assert.Equal(t, "lamp", pe.Object)
	assert.Empty(t, pe.Preposition)
	assert.Equal(t, "What do you want to prod the lamp?", pe.Message)
}

func TestParseWithoutWorld(t *testing.T) {
	p := New(DefaultConfig())
	cmd, err := p.Parse("take unicorn", scope.Context{})
	require.NoError(t, err)
	assert.Equal(t, "take", cmd.Action)
	assert.Equal(t, "unicorn", cmd.DirectObject.Text)
	assert.Empty(t, cmd.DirectObject.EntityID)
}

func TestParseAllAndLists(t *testing.T) {
	p, _, ctx := setup()

	cmd, err := p.Parse("take all", ctx)
	require.NoError(t, err)
	require.True(t, cmd.DirectObject.IsAll)
	var got []string
	for _, it := range cmd.DirectObject.Items {
		got = append(got, it.EntityID)
	}
	assert.ElementsMatch(t, []string{"lamp", "note", "red_ball", "blue_ball", "cup"}, got)

	cmd, err = p.Parse("take everything except the red ball and cup", ctx)
	require.NoError(t, err)
	got = nil
	for _, it := range cmd.DirectObject.Items {
		got = append(got, it.EntityID)
	}
	assert.ElementsMatch(t, []string{"lamp", "note", "blue_ball"}, got)
	require.Len(t, cmd.DirectObject.Excluded, 2)
	assert.Equal(t, "red_ball", cmd.DirectObject.Excluded[0].EntityID)

	cmd, err = p.Parse("take red ball, cup and note", ctx)
	require.NoError(t, err)
	require.True(t, cmd.DirectObject.IsList)
	got = nil
	for _, it := range cmd.DirectObject.Items {
		got = append(got, it.EntityID)
	}
	assert.Equal(t, []string{"red_ball", "cup", "note"}, got)
}

func TestParseExclusionsAreLenient(t *testing.T) {
	p, _, ctx := setup()

	items := func(cmd *types.ParsedCommand) []string {
		var out []string
		for _, it := range cmd.DirectObject.Items {
			out = append(out, it.EntityID)
		}
		return out
	}

	cmd, err := p.Parse("drop all except key", ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"lamp", "note"}, items(cmd))
	require.Len(t, cmd.DirectObject.Excluded, 1)
	assert.Equal(t, "key", cmd.DirectObject.Excluded[0].EntityID)

	cmd, err = p.Parse("drop all but unicorn", ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"lamp", "note"}, items(cmd))
	assert.Empty(t, cmd.DirectObject.Excluded[0].EntityID)

	cmd, err = p.Parse("take all but ball", ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"lamp", "note", "cup"}, items(cmd))
	assert.ElementsMatch(t, []string{"red_ball", "blue_ball"}, cmd.DirectObject.Excluded[0].Candidates)
}

func TestParseOrdinalPicksCandidate(t *testing.T) {
	p, _, ctx := setup()

	tests := []struct {
		input string
		want  string
	}{
		{"take first ball", "blue_ball"},
		{"take second ball", "red_ball"},
		{"take 2nd ball", "red_ball"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd, err := p.Parse(tt.input, ctx)
			require.NoError(t, err)
			assert.Equal(t, "take", cmd.Action)
			assert.Equal(t, tt.want, cmd.DirectObject.EntityID)
			assert.Equal(t, []string{"blue_ball", "red_ball"}, cmd.DirectObject.Candidates)
		})
	}

	_, err := p.Parse("take third ball", ctx)
	assert.True(t, errors.Is(err, &Error{Code: types.ErrEntityNotFound}), "got %v", err)
}

func TestPronouns(t *testing.T) {
	p, w, ctx := setup()

	cmd, err := p.Parse("x lamp", ctx)
	require.NoError(t, err)
	p.UpdatePronouns(cmd, w, 1)

	cmd, err = p.Parse("drop it", ctx)
	require.NoError(t, err)
	assert.Equal(t, "lamp", cmd.DirectObject.EntityID)
	assert.True(t, cmd.DirectObject.IsPronoun)

	cmd, err = p.Parse("talk to alice", ctx)
	require.NoError(t, err)
	p.UpdatePronouns(cmd, w, 2)
	cmd, err = p.Parse("give note to her", ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", id(cmd.IndirectObject))

	p.Pronouns.RegisterEntity("key", "key", w, 3)
	_, err = p.Parse("x it", ctx)
	assert.True(t, errors.Is(err, &Error{Code: types.ErrScopeViolation}), "got %v", err)
}

func TestParseChain(t *testing.T) {
	p, _, ctx := setup()

	results := p.ParseChain("take lamp, go north. look", ctx)
	require.Len(t, results, 3)
	for _, r := range results {
		require.NoError(t, r.Err, r.Input)
	}
	assert.Equal(t, "take", results[0].Command.Action)
	assert.Equal(t, "go", results[1].Command.Action)
	assert.Equal(t, "look", results[2].Command.Action)

	results = p.ParseChain("take red ball, cup", ctx)
	require.Len(t, results, 1)
	assert.True(t, results[0].Command.DirectObject.IsList)

	results = p.ParseChain("  ", ctx)
	require.Len(t, results, 1)
	assert.True(t, errors.Is(results[0].Err, &Error{Code: types.ErrNoInput}))

	p.Config.ChainCommas = false
	results = p.ParseChain("look, look", ctx)
	require.Len(t, results, 1)
}

func TestTokenize(t *testing.T) {
	p := New(DefaultConfig())

	toks := p.Tokenize(`Take the LAMP,knife!`)
	var words []string
	for _, tk := range toks {
		words = append(words, tk.Normalized)
	}
	assert.Equal(t, []string{"take", "the", "lamp", ",", "knife"}, words)
	assert.Equal(t, "LAMP", toks[2].Word)
	assert.Equal(t, types.POSVerb, toks[0].Candidates[0].POS)
	assert.Equal(t, types.POSUnknown, toks[2].Candidates[0].POS)
	assert.Equal(t, 9, toks[2].Position)
	assert.Equal(t, 14, toks[4].Position)

	toks = p.Tokenize(`say "Hello, World!" now`)
	words = nil
	for _, tk := range toks {
		words = append(words, tk.Word)
	}
	assert.Equal(t, []string{"say", `"Hello,`, `World!"`, "now"}, words)
}

func TestStoryRules(t *testing.T) {
	p, _, ctx := setup()

	p.Categories.Add(vocab.Category{Name: "spells", Words: []string{"frotz", "rezrov"}})
	p.Story.Define("cast :spell").Vocabulary("spell", "spells").MapsTo("cast").MustBuild()
	p.Story.Override("take", "snatch :item").Where("item", scope.Visible()).MustBuild()

	cmd, err := p.Parse("cast frotz", ctx)
	require.NoError(t, err)
	assert.Equal(t, "cast", cmd.Action)
	assert.Equal(t, types.VocabularyMatch{Category: "spells", Word: "frotz"}, cmd.Vocabulary["spell"])

	_, err = p.Parse("cast xyzzy", ctx)
	assert.True(t, errors.Is(err, &Error{Code: types.ErrInvalidSyntax}), "got %v", err)

	cmd, err = p.Parse("snatch cup", ctx)
	require.NoError(t, err)
	assert.Equal(t, "take", cmd.Action)
	assert.Equal(t, "cup", id(cmd.DirectObject))
}

func TestParseDeterministic(t *testing.T) {
	p, _, ctx := setup()

	for _, input := range []string{"put note in chest", "take all but lamp", "give alice note"} {
		first, err := p.Parse(input, ctx)
		require.NoError(t, err)
		second, err := p.Parse(input, ctx)
		require.NoError(t, err)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("%q parsed differently (-first +second):\n%s", input, diff)
		}
	}
}

func TestFindMatches(t *testing.T) {
	p, _, ctx := setup()
	matches := p.FindMatches("look", ctx)
	require.Len(t, matches, 2)
	assert.GreaterOrEqual(t, matches[0].Confidence, matches[1].Confidence)
}

func TestLogObserver(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	p, _, ctx := setup()
	p.Observer = LogObserver(zap.New(core))

	_, err := p.Parse("take lamp", ctx)
	require.NoError(t, err)

	require.Equal(t, 1, logs.FilterMessage("tokenize").Len())
	require.Equal(t, 1, logs.FilterMessage("candidate_selection").Len())
	assert.Positive(t, logs.FilterMessage("pattern_match").Len())
	eventID := logs.All()[0].ContextMap()["event_id"]
	for _, entry := range logs.All() {
		assert.Equal(t, eventID, entry.ContextMap()["event_id"])
	}
	sel := logs.FilterMessage("candidate_selection").All()[0].ContextMap()
	assert.Equal(t, "take", sel["action"])

	core, logs = observer.New(zap.DebugLevel)
	p.Observer = LogObserver(zap.New(core), EventParseError)
	_, err = p.Parse("xyzzy", ctx)
	require.Error(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "UNKNOWN_VERB", logs.All()[0].ContextMap()["code"])

	assert.Equal(t, Observer{}, LogObserver(nil))
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nathoo/questparse/engine"
	"github.com/nathoo/questparse/engine/save"
	"github.com/nathoo/questparse/types"
)

// Workbench implements the slash commands shared by the line REPL and the
// TUI. It holds no terminal state of its own.
type Workbench struct {
	Engine  *engine.Engine
	Trace   bool
	SaveDir string // where /save and /load keep session files
}

// DefaultSaveDir returns ~/.questparse/saves, or a relative directory when
// the home directory is unknown.
func DefaultSaveDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".questparse", "saves")
	}
	return filepath.Join(home, ".questparse", "saves")
}

// HelpLines is the /help text.
var HelpLines = []string{
	"Workbench:",
	"  /quit            Exit",
	"  /help            Show this help",
	"  /trace           Toggle ranked match output",
	"  /pronouns        Show what it, them, him and her refer to",
	"  /rules [action]  List grammar rules",
	"  /vocab <word>    Show vocabulary entries for a word",
	"  /stats           Grammar statistics",
	"  /look            Describe the room and dump each scope",
	"  /reset           Restore the world and forget pronouns",
	"  /save [name]     Save the session (default: quicksave)",
	"  /load [name]     Replay a saved session",
	"",
	"Anything else is parsed as a command. Chain commands with '.' or",
	"', then'; type again (g) to repeat the last one.",
}

// Meta dispatches one slash command. It returns the output lines and
// whether the session should end.
func (w *Workbench) Meta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil, false
	}
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = strings.Join(parts[1:], " ")
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true
	case "/help":
		return HelpLines, false
	case "/trace":
		w.Trace = !w.Trace
		if w.Trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false
	case "/pronouns":
		return w.pronouns(), false
	case "/rules":
		return w.rules(arg), false
	case "/vocab":
		return w.vocab(arg), false
	case "/stats":
		return w.stats(), false
	case "/look":
		return w.look(), false
	case "/save":
		return w.saveSession(arg), false
	case "/load":
		return w.loadSession(arg), false
	case "/reset":
		w.Engine.Reset()
		return append([]string{"World reset."}, w.Engine.Describe()...), false
	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

// TraceLines ranks the rules matching input against the current world.
// Call it before Step so the trace reflects the state the parse saw.
func (w *Workbench) TraceLines(input string) []string {
	matches := w.Engine.Parser.FindMatches(input, w.Engine.Context())
	if len(matches) == 0 {
		return []string{"[trace] no rule matched"}
	}
	lines := make([]string, 0, len(matches))
	for i, m := range matches {
		lines = append(lines, fmt.Sprintf("[trace] %d. %s %q conf=%.3f prio=%d",
			i+1, m.Rule.ID, m.Rule.Pattern, m.Confidence, m.Rule.Priority))
	}
	return lines
}

func (w *Workbench) saveSession(name string) []string {
	if name == "" {
		name = "quicksave"
	}

	data, err := save.Save(w.Engine)
	if err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}

	if err := os.MkdirAll(w.SaveDir, 0o755); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}

	path := filepath.Join(w.SaveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}

	return []string{fmt.Sprintf("Session saved to %s.", name)}
}

func (w *Workbench) loadSession(name string) []string {
	if name == "" {
		name = "quicksave"
	}

	path := filepath.Join(w.SaveDir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}

	sd, err := save.Load(data)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}

	if err := save.ApplySave(w.Engine, sd); err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}

	output := []string{fmt.Sprintf("Session loaded from %s (turn %d).", name, sd.Turn)}
	return append(output, w.Engine.Describe()...)
}

func (w *Workbench) pronouns() []string {
	snap := w.Engine.Parser.Pronouns.Snapshot()
	var lines []string
	if snap.It != nil {
		lines = append(lines, fmt.Sprintf("it: %s (%q, turn %d)", snap.It.EntityID, snap.It.Text, snap.It.Turn))
	}
	if len(snap.Them) > 0 {
		ids := make([]string, 0, len(snap.Them))
		for _, ref := range snap.Them {
			ids = append(ids, ref.EntityID)
		}
		lines = append(lines, "them: "+strings.Join(ids, ", "))
	}
	keys := make([]string, 0, len(snap.Animate))
	for k := range snap.Animate {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", k, snap.Animate[k].EntityID))
	}
	if len(lines) == 0 {
		return []string{"No pronouns are bound."}
	}
	return lines
}

func (w *Workbench) rules(action string) []string {
	g := w.Engine.Parser.Grammar
	rules := g.Rules()
	if action != "" {
		rules = g.RulesFor(action)
	}
	if len(rules) == 0 {
		return []string{fmt.Sprintf("No rules for %q.", action)}
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "PATTERN", "ACTION", "PRIO", "SOURCE")
	for _, r := range rules {
		t.Row(r.ID, r.Pattern, r.Action, fmt.Sprint(r.Priority), string(r.Source))
	}
	return strings.Split(t.String(), "\n")
}

func (w *Workbench) vocab(word string) []string {
	if word == "" {
		return []string{"Usage: /vocab <word>"}
	}
	entries := w.Engine.Parser.Vocab.Lookup(word)
	if len(entries) == 0 {
		return []string{fmt.Sprintf("%q is not in the vocabulary.", word)}
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s: %s -> %s (priority %d, %s)", e.Word, e.POS, e.MapsTo, e.Priority, e.Source))
	}
	return lines
}

func (w *Workbench) stats() []string {
	s := w.Engine.Parser.Story.Stats()
	lines := []string{
		fmt.Sprintf("Rules: %d (core %d, story %d, overridden %d)", s.Total, s.Core, s.Story, s.Overridden),
		fmt.Sprintf("Match attempts: %d, successful: %d", s.MatchAttempts, s.SuccessfulMatches),
	}
	actions := make([]string, 0, len(s.ByAction))
	for a := range s.ByAction {
		actions = append(actions, a)
	}
	sort.Strings(actions)
	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		parts = append(parts, fmt.Sprintf("%s=%d", a, s.ByAction[a]))
	}
	return append(lines, "By action: "+strings.Join(parts, " "))
}

func (w *Workbench) look() []string {
	e := w.Engine
	loc := e.Location()
	lines := e.Describe()
	scopes := []struct {
		name     string
		entities []*types.Entity
	}{
		{"carried", e.World.CarriedEntities(e.Actor)},
		{"visible", e.World.VisibleEntities(e.Actor, loc)},
		{"touchable", e.World.TouchableEntities(e.Actor, loc)},
		{"nearby", e.World.NearbyEntities(e.Actor, loc)},
	}
	for _, s := range scopes {
		ids := make([]string, 0, len(s.entities))
		for _, ent := range s.entities {
			ids = append(ids, ent.ID)
		}
		lines = append(lines, fmt.Sprintf("%s: %s", s.name, strings.Join(ids, ", ")))
	}
	return lines
}

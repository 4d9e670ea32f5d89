// Package engine provides the Step() orchestrator that wires together
// chained parsing, validation, pronoun tracking and a small set of built-in
// world updates into a single turn.
package engine

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/nathoo/questparse/engine/parser"
	"github.com/nathoo/questparse/engine/scope"
	"github.com/nathoo/questparse/engine/world"
	"github.com/nathoo/questparse/types"
)

// Engine is one play session over a world.
type Engine struct {
	World  *world.World
	Parser *parser.Parser
	Actor  string
	Turn   int

	// CommandLog records every input line passed to Step.
	CommandLog []string

	logger *zap.Logger
}

// New creates a session. The actor is placed in the start room if it has
// no location yet.
func New(w *world.World, p *parser.Parser, actor string, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{World: w, Parser: p, Actor: actor, logger: logger}
	if w.Location(actor) == "" && w.Defs.Game.Start != "" {
		w.Move(actor, w.Defs.Game.Start)
	}
	return e
}

// Context is the scope context for the actor's current position.
func (e *Engine) Context() scope.Context {
	return scope.Context{World: e.World, Actor: e.Actor, Location: e.Location()}
}

// Location returns the room the actor stands in.
func (e *Engine) Location() string {
	loc := e.World.Location(e.Actor)
	if loc == "" {
		return e.World.Defs.Game.Start
	}
	return loc
}

// Step processes one input line and returns the result.
func (e *Engine) Step(input string) types.Result {
	var result types.Result
	e.CommandLog = append(e.CommandLog, input)

	segments := e.Parser.Split(input)
	if len(segments) == 0 {
		segments = []string{input}
	}

	// Each segment is parsed only after the previous one has run, so it
	// sees the moved actor and the updated pronouns.
	for _, seg := range segments {
		cmd, err := e.Parser.Parse(seg, e.Context())
		if err != nil {
			result.Errors = append(result.Errors, err)
			result.Output = append(result.Output, Message(err))
			e.logger.Debug("parse failed", zap.String("input", seg), zap.Error(err))
			break
		}

		if cmd.Action == "again" {
			last := e.Parser.Pronouns.LastCommand()
			if last == nil {
				result.Output = append(result.Output, e.format("session.no_again", nil))
				continue
			}
			result.Output = append(result.Output, e.format("session.again", map[string]string{"input": last.Raw}))
			// Re-parse so the command is resolved against the current world.
			again, err := e.Parser.Parse(last.Raw, e.Context())
			if err != nil {
				result.Errors = append(result.Errors, err)
				result.Output = append(result.Output, Message(err))
				break
			}
			cmd = again
		}

		if err := Validate(cmd); err != nil {
			result.Errors = append(result.Errors, err)
			result.Output = append(result.Output, err.Error())
			break
		}

		e.Turn++
		e.Parser.UpdatePronouns(cmd, e.World, e.Turn)
		result.Commands = append(result.Commands, *cmd)
		result.Output = append(result.Output, strings.TrimSpace(e.format("session.ok", map[string]string{
			"action":  cmd.Action,
			"summary": Summary(cmd),
		})))
		result.Output = append(result.Output, e.builtin(cmd)...)
		e.logger.Debug("command",
			zap.Int("turn", e.Turn),
			zap.String("action", cmd.Action),
			zap.String("rule", cmd.RuleID),
			zap.Float64("confidence", cmd.Confidence),
		)
	}
	return result
}

// Reset restores the world and clears the pronoun context and turn counter.
func (e *Engine) Reset() {
	e.World.Reset()
	if e.World.Location(e.Actor) == "" && e.World.Defs.Game.Start != "" {
		e.World.Move(e.Actor, e.World.Defs.Game.Start)
	}
	e.Parser.Pronouns.Reset()
	e.Turn = 0
	e.CommandLog = nil
}

func (e *Engine) format(key string, params map[string]string) string {
	return e.Parser.Messages.Format(key, params)
}

// Message returns the player-facing text of a step error.
func Message(err error) string {
	if pe, ok := err.(*parser.Error); ok && pe.Message != "" {
		return pe.Message
	}
	return err.Error()
}

// ValidationError reports a parsed command that still has unresolved
// entity references.
type ValidationError struct {
	Action string
	Text   string
}

func (v *ValidationError) Error() string {
	return fmt.Sprintf("%s: %q does not refer to anything", v.Action, v.Text)
}

// Validate checks that every noun phrase of cmd resolved to an entity.
// Commands parsed without a world are never valid.
func Validate(cmd *types.ParsedCommand) error {
	for _, np := range []*types.NounPhrase{cmd.DirectObject, cmd.IndirectObject, cmd.Instrument} {
		if np == nil {
			continue
		}
		if np.IsAll || np.IsList {
			for _, item := range np.Items {
				if item.EntityID == "" {
					return &ValidationError{Action: cmd.Action, Text: item.Text}
				}
			}
			continue
		}
		if np.EntityID == "" {
			return &ValidationError{Action: cmd.Action, Text: np.Text}
		}
	}
	return nil
}

// Field is one resolved part of a command, such as object=lamp.
type Field struct {
	Name  string
	Value string
}

// Fields lists the resolved parts of a command in display order.
func Fields(cmd *types.ParsedCommand) []Field {
	var fields []Field
	add := func(name, v string) {
		if v != "" {
			fields = append(fields, Field{Name: name, Value: v})
		}
	}
	add("object", phraseIDs(cmd.DirectObject))
	add("indirect", phraseIDs(cmd.IndirectObject))
	add("instrument", phraseIDs(cmd.Instrument))
	add("prep", cmd.Preposition)
	add("dir", cmd.Direction)
	add("text", cmd.Text)
	add("topic", cmd.Topic)
	add("quote", cmd.QuotedText)
	add("manner", cmd.Manner)
	keys := make([]string, 0, len(cmd.Values))
	for k := range cmd.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		add(k, fmt.Sprint(cmd.Values[k]))
	}
	return fields
}

// Summary renders the resolved parts of a command on one line.
func Summary(cmd *types.ParsedCommand) string {
	fields := Fields(cmd)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Name+"="+f.Value)
	}
	return strings.Join(parts, " ")
}

func phraseIDs(np *types.NounPhrase) string {
	if np == nil {
		return ""
	}
	if np.IsAll || np.IsList {
		ids := make([]string, 0, len(np.Items))
		for _, it := range np.Items {
			ids = append(ids, it.EntityID)
		}
		return strings.Join(ids, ",")
	}
	return np.EntityID
}

// builtin applies the few actions that change what the parser can see.
func (e *Engine) builtin(cmd *types.ParsedCommand) []string {
	switch cmd.Action {
	case "go":
		return e.builtinGo(cmd.Direction)
	case "look":
		return e.Describe()
	case "inventory":
		return e.builtinInventory()
	case "take":
		return e.eachObject(cmd, e.builtinTake)
	case "drop":
		return e.eachObject(cmd, e.builtinDrop)
	case "open", "close":
		return e.eachObject(cmd, func(id string) string {
			e.World.SetProp(id, "open", cmd.Action == "open")
			return fmt.Sprintf("You %s the %s.", cmd.Action, e.entityName(id))
		})
	default:
		return nil
	}
}

func (e *Engine) eachObject(cmd *types.ParsedCommand, fn func(id string) string) []string {
	np := cmd.DirectObject
	if np == nil {
		return nil
	}
	if !np.IsAll && !np.IsList {
		return []string{fn(np.EntityID)}
	}
	var out []string
	for _, it := range np.Items {
		out = append(out, fn(it.EntityID))
	}
	return out
}

func (e *Engine) builtinGo(direction string) []string {
	if direction == "" {
		return []string{"Go where?"}
	}
	target, ok := e.World.Exits(e.Location())[direction]
	if !ok {
		return []string{"You can't go that way."}
	}
	e.World.Move(e.Actor, target)
	return e.Describe()
}

func (e *Engine) builtinInventory() []string {
	carried := e.World.CarriedEntities(e.Actor)
	if len(carried) == 0 {
		return []string{"You are carrying nothing."}
	}
	var names []string
	for _, ent := range carried {
		names = append(names, ent.Name)
	}
	return []string{"You are carrying: " + strings.Join(names, ", ") + "."}
}

func (e *Engine) builtinTake(id string) string {
	if e.World.Location(id) == e.Actor {
		return "You already have that."
	}
	e.World.Move(id, e.Actor)
	return fmt.Sprintf("You take the %s.", e.entityName(id))
}

func (e *Engine) builtinDrop(id string) string {
	e.World.Move(id, e.Location())
	return fmt.Sprintf("You drop the %s.", e.entityName(id))
}

// Describe produces the room description: name, description, visible
// entities and exits.
func (e *Engine) Describe() []string {
	roomID := e.Location()
	room, ok := e.World.Defs.Rooms[roomID]
	if !ok {
		return []string{"You are somewhere unknown."}
	}

	output := []string{room.Name}
	if room.Description != "" {
		output = append(output, room.Description)
	}

	var names []string
	for _, ent := range e.World.VisibleEntities(e.Actor, roomID) {
		if e.World.Location(ent.ID) == e.Actor {
			continue
		}
		names = append(names, ent.Name)
	}
	if len(names) > 0 {
		output = append(output, "You see: "+strings.Join(names, ", ")+".")
	}

	exits := e.World.Exits(roomID)
	if len(exits) > 0 {
		dirs := make([]string, 0, len(exits))
		for dir := range exits {
			dirs = append(dirs, dir)
		}
		sort.Strings(dirs)
		output = append(output, "Exits: "+strings.Join(dirs, ", ")+".")
	}
	return output
}

// entityName returns the display name of an entity.
func (e *Engine) entityName(id string) string {
	if ent, ok := e.World.Entity(id); ok && ent.Name != "" {
		return ent.Name
	}
	return id
}

package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/questparse/engine/pattern"
	"github.com/nathoo/questparse/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Known condition types.
var validConditionTypes = map[string]bool{
	"in_room":        true,
	"carrying":       true,
	"entity_in_room": true,
	"prop_is":        true,
	"not":            true,
}

var validPOS = map[types.PartOfSpeech]bool{
	types.POSVerb:        true,
	types.POSNoun:        true,
	types.POSAdjective:   true,
	types.POSPreposition: true,
	types.POSDeterminer:  true,
	types.POSConjunction: true,
	types.POSPronoun:     true,
	types.POSDirection:   true,
	types.POSNumber:      true,
	types.POSSpecial:     true,
}

var validScopes = map[types.ScopeBase]bool{
	types.ScopeAll:       true,
	types.ScopeVisible:   true,
	types.ScopeTouchable: true,
	types.ScopeCarried:   true,
	types.ScopeNearby:    true,
}

// validate checks the compiled story for referential integrity and
// consistency. Warnings are kept on the story; errors are returned.
func validate(s *Story) error {
	ve := &ValidationError{}
	defs := s.Defs

	for _, d := range s.duplicates {
		ve.Errors = append(ve.Errors, fmt.Sprintf("duplicate definition of %s", d))
	}

	if defs.Game.Title == "" {
		ve.Errors = append(ve.Errors, "Game.Title is required")
	}
	if defs.Game.Start == "" {
		ve.Errors = append(ve.Errors, "Game.Start is required")
	} else if _, ok := defs.Rooms[defs.Game.Start]; !ok {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"start room %q not found in defined rooms", defs.Game.Start))
	}

	for _, roomID := range sortedKeys(defs.Rooms) {
		room := defs.Rooms[roomID]
		for _, dir := range sortedKeys(room.Exits) {
			if target := room.Exits[dir]; !s.isRoom(target) {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"room %q exit %q points to undefined room %q", roomID, dir, target))
			}
		}
	}

	players := 0
	for _, e := range defs.EntityList() {
		if e.Actor != nil && e.Actor.Player {
			players++
		}
		loc, _ := e.Props["location"].(string)
		switch {
		case loc == "":
			if e.Actor == nil || !e.Actor.Player {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf("entity %q has no location", e.ID))
			}
		case loc == e.ID:
			ve.Errors = append(ve.Errors, fmt.Sprintf("entity %q is located inside itself", e.ID))
		case !s.isRoom(loc) && !s.isEntity(loc):
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"entity %q location %q does not match any defined room or entity", e.ID, loc))
		}
		if e.Name == "" {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf("entity %q has no name", e.ID))
		}
	}
	switch {
	case players == 0:
		ve.Warnings = append(ve.Warnings, "no player actor defined")
	case players > 1:
		ve.Errors = append(ve.Errors, fmt.Sprintf("%d player actors defined, want one", players))
	}

	for _, v := range s.Vocabulary {
		if !validPOS[v.POS] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"vocabulary word %q has unknown part of speech %q", v.Word, v.POS))
		}
	}

	categories := map[string]bool{}
	for _, c := range s.Categories {
		categories[strings.ToLower(c.Name)] = true
		if len(c.Words) == 0 {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf("category %q has no words", c.Name))
		}
		validateConditions(c.When, s, ve)
	}

	for _, d := range s.Grammar {
		validateGrammar(d, categories, ve)
	}

	s.Warnings = append(s.Warnings, ve.Warnings...)
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateConditions(conditions []types.Condition, s *Story, ve *ValidationError) {
	for _, cond := range conditions {
		if !validConditionTypes[cond.Type] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"unknown condition type %q", cond.Type))
			continue
		}

		switch cond.Type {
		case "in_room":
			if room, _ := cond.Params["room"].(string); !s.isRoom(room) {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"condition in_room references undefined room %q", room))
			}
		case "carrying":
			if item, _ := cond.Params["item"].(string); !s.isEntity(item) {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"condition carrying references undefined entity %q", item))
			}
		case "entity_in_room", "prop_is":
			if entity, _ := cond.Params["entity"].(string); !s.isEntity(entity) {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"condition %s references undefined entity %q", cond.Type, entity))
			}
		case "not":
			if cond.Inner != nil {
				validateConditions([]types.Condition{*cond.Inner}, s, ve)
			}
		}
	}
}

func validateGrammar(d GrammarDecl, categories map[string]bool, ve *ValidationError) {
	where := fmt.Sprintf("%s %s", d.Op, d.label())

	switch d.Op {
	case OpRemove:
		if d.ID == "" && (d.Action == "" || d.Pattern == "") {
			ve.Errors = append(ve.Errors, "Remove needs a rule ID or an action and pattern")
		}
		return
	case OpDefine, OpOverride:
		if d.Action == "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf("%s: action is required", where))
		}
	case OpExtend:
		if d.Action == "" {
			ve.Errors = append(ve.Errors, "Extend needs an action")
		}
	}

	if d.Experimental && (d.Multiplier < 0 || d.Multiplier > 1) {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"%s: experimental multiplier %v must be in (0, 1]", where, d.Multiplier))
	}
	if d.Priority < 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf("%s: negative priority %d", where, d.Priority))
	}

	// Extend reuses the cloned rule's pattern; its slot names are checked
	// when the story is applied.
	var compiled *pattern.Compiled
	if d.Op != OpExtend {
		var err error
		compiled, err = pattern.Compile(d.Pattern)
		if err != nil {
			ve.Errors = append(ve.Errors, fmt.Sprintf("%s: %v", where, err))
		}
	}

	for _, name := range d.slotNames() {
		slot := d.Slots[name]
		if compiled != nil {
			if _, ok := compiled.Slots[name]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf("%s: unknown slot %q", where, name))
			}
		}
		if slot.Type != "" && !isSlotType(slot.Type) {
			ve.Errors = append(ve.Errors, fmt.Sprintf("%s: slot %q has unknown type %q", where, name, slot.Type))
		}
		if slot.Scope != "" && !validScopes[slot.Scope] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("%s: slot %q has unknown scope %q", where, name, slot.Scope))
		}
		if slot.Type == types.SlotVocabulary {
			switch {
			case slot.Category == "":
				ve.Errors = append(ve.Errors, fmt.Sprintf("%s: vocabulary slot %q has no category", where, name))
			case !categories[strings.ToLower(slot.Category)]:
				ve.Warnings = append(ve.Warnings, fmt.Sprintf(
					"%s: slot %q uses undeclared category %q", where, name, slot.Category))
			}
		}
	}
}

func isSlotType(t types.SlotType) bool {
	for _, known := range slotTypeNames {
		if known == t {
			return true
		}
	}
	return false
}

func (s *Story) isRoom(id string) bool {
	_, ok := s.Defs.Rooms[id]
	return ok
}

func (s *Story) isEntity(id string) bool {
	_, ok := s.Defs.Entities[id]
	return ok
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

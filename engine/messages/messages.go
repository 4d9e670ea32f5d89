// Package messages maps message keys to templates with {name} placeholders.
package messages

import (
	"sort"
	"strings"
)

// Catalog formats user-facing text by key.
type Catalog interface {
	Format(key string, params map[string]string) string
}

// Map is a Catalog backed by a plain map. Unknown keys format as the key.
type Map map[string]string

// Format looks up key and substitutes {name} placeholders from params.
func (m Map) Format(key string, params map[string]string) string {
	tpl, ok := m[key]
	if !ok {
		return key
	}
	return Interpolate(tpl, params)
}

// Interpolate replaces {name} with params[name]. Unknown placeholders are
// left as written.
func Interpolate(tpl string, params map[string]string) string {
	if len(params) == 0 {
		return tpl
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", params[k])
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}

// With returns a copy of m with overrides applied.
func (m Map) With(overrides map[string]string) Map {
	out := make(Map, len(m)+len(overrides))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// English is the default catalog.
var English = Map{
	"parser.no_input":              "I beg your pardon?",
	"parser.unknown_verb":          "I don't know the word \"{verb}\".",
	"parser.unknown_verb_hint":     "I don't know the word \"{verb}\". Did you mean {suggestions}?",
	"parser.missing_object":        "What do you want to {verb}?",
	"parser.missing_object_for":    "What do you want to {verb} {object}?",
	"parser.missing_indirect":      "What do you want to {verb} the {object} {preposition}?",
	"parser.missing_indirect_bare": "What do you want to {verb} the {object}?",
	"parser.entity_not_found":      "You can't see any \"{text}\" here.",
	"parser.entity_not_found_hint": "You can't see any \"{text}\" here. Did you mean {suggestions}?",
	"parser.scope_violation":       "You can't reach the {text} from here.",
	"parser.scope_carried":         "You aren't holding the {text}.",
	"parser.ambiguous":             "Which do you mean: {candidates}?",
	"parser.invalid_syntax":        "I didn't understand that sentence.",
	"parser.leftover":              "I only understood you as far as \"{understood}\".",

	"session.ok":        "[{action}] {summary}",
	"session.again":     "(repeating: {input})",
	"session.no_again":  "There is nothing to repeat.",
	"session.validated": "Understood.",
}

package vocab

import "github.com/nathoo/questparse/types"

// English is the built-in English vocabulary provider.
type English struct{}

func (English) Name() string  { return "base" }
func (English) Priority() int { return 0 }

// verbs maps action IDs to the words that express them.
var verbs = map[string][]string{
	"look":       {"look", "l"},
	"examine":    {"examine", "x", "inspect", "check", "study", "observe", "describe", "look at"},
	"search":     {"search", "look in", "look under"},
	"go":         {"go", "walk", "run", "move", "head", "proceed", "travel", "enter"},
	"take":       {"take", "get", "grab", "carry", "catch", "pick up"},
	"drop":       {"drop", "discard", "put down"},
	"put":        {"put", "place", "set"},
	"insert":     {"insert", "stick", "slip", "jam", "slide"},
	"hang":       {"hang"},
	"read":       {"read"},
	"write":      {"write", "scrawl", "inscribe"},
	"inventory":  {"inventory", "inv", "i"},
	"open":       {"open"},
	"close":      {"close", "shut"},
	"lock":       {"lock"},
	"unlock":     {"unlock"},
	"switch_on":  {"switch on", "turn on"},
	"switch_off": {"switch off", "turn off"},
	"turn":       {"turn", "switch", "rotate"},
	"push":       {"push", "press", "shove", "shift"},
	"pull":       {"pull", "drag", "tug", "yank"},
	"give":       {"give", "offer", "hand", "feed"},
	"show":       {"show", "display"},
	"throw":      {"throw", "toss", "hurl", "lob"},
	"attack":     {"attack", "hit", "fight", "strike", "kill", "punch", "kick", "smash", "break"},
	"cut":        {"cut", "slice", "chop"},
	"dig":        {"dig"},
	"talk":       {"talk", "speak", "chat", "converse"},
	"ask":        {"ask", "question"},
	"tell":       {"tell", "inform"},
	"say":        {"say", "shout", "yell", "scream"},
	"eat":        {"eat", "consume", "devour", "bite"},
	"drink":      {"drink", "sip", "swallow", "quaff"},
	"wear":       {"wear", "don"},
	"remove":     {"remove", "doff", "take off"},
	"wait":       {"wait", "z"},
	"sleep":      {"sleep", "nap", "rest"},
	"smell":      {"smell", "sniff"},
	"listen":     {"listen", "hear"},
	"touch":      {"touch", "feel", "rub"},
	"climb":      {"climb", "scale"},
	"jump":       {"jump", "leap", "hop"},
	"tie":        {"tie", "fasten", "attach"},
	"untie":      {"untie", "detach", "release"},
	"buy":        {"buy", "purchase"},
	"again":      {"again", "g"},
	"save":       {"save"},
	"restore":    {"restore", "load"},
	"restart":    {"restart"},
	"quit":       {"quit", "q"},
	"score":      {"score"},
	"version":    {"version"},
	"help":       {"help", "hint"},
}

var prepositions = []string{
	"in", "into", "inside", "on", "onto", "upon", "at", "to", "toward",
	"with", "using", "from", "about", "under", "underneath", "beneath",
	"behind", "over", "through", "off", "out", "up", "down", "for",
}

var determiners = []string{"the", "a", "an", "some", "this", "that", "these", "those", "my", "your"}

var conjunctions = []string{"and", "then", "but", "except"}

var pronouns = []string{"it", "them", "him", "her", "xem", "zir", "hir", "em", "faer", "me", "myself"}

var specials = []string{"all", "everything", "every"}

// Directions maps direction words and abbreviations to canonical names.
var Directions = map[string]string{
	"n": "north", "north": "north",
	"s": "south", "south": "south",
	"e": "east", "east": "east",
	"w": "west", "west": "west",
	"ne": "northeast", "northeast": "northeast",
	"nw": "northwest", "northwest": "northwest",
	"se": "southeast", "southeast": "southeast",
	"sw": "southwest", "southwest": "southwest",
	"u": "up", "up": "up",
	"d": "down", "down": "down",
	"in": "in", "inside": "in",
	"out": "out", "outside": "out",
}

// Cardinals maps number words to their values.
var Cardinals = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
	"thirty": 30, "forty": 40, "fifty": 50, "sixty": 60, "seventy": 70,
	"eighty": 80, "ninety": 90, "hundred": 100,
}

// Ordinals maps ordinal words to their values.
var Ordinals = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
	"eleventh": 11, "twelfth": 12, "thirteenth": 13, "fourteenth": 14, "fifteenth": 15,
	"sixteenth": 16, "seventeenth": 17, "eighteenth": 18, "nineteenth": 19, "twentieth": 20,
}

// Entries returns the full built-in word list.
func (English) Entries() []types.VocabEntry {
	var out []types.VocabEntry
	for action, words := range verbs {
		for i, w := range words {
			// The first word of each list is the canonical form.
			p := 90
			if i == 0 {
				p = 100
			}
			out = append(out, types.VocabEntry{Word: w, POS: types.POSVerb, MapsTo: action, Priority: p})
		}
	}
	for _, w := range prepositions {
		out = append(out, types.VocabEntry{Word: w, POS: types.POSPreposition, MapsTo: w, Priority: 80})
	}
	for _, w := range determiners {
		out = append(out, types.VocabEntry{Word: w, POS: types.POSDeterminer, MapsTo: w, Priority: 80})
	}
	for _, w := range conjunctions {
		out = append(out, types.VocabEntry{Word: w, POS: types.POSConjunction, MapsTo: w, Priority: 80})
	}
	for _, w := range pronouns {
		out = append(out, types.VocabEntry{Word: w, POS: types.POSPronoun, MapsTo: w, Priority: 80})
	}
	for _, w := range specials {
		out = append(out, types.VocabEntry{Word: w, POS: types.POSSpecial, MapsTo: "all", Priority: 80})
	}
	for w, dir := range Directions {
		out = append(out, types.VocabEntry{Word: w, POS: types.POSDirection, MapsTo: dir, Priority: 70})
	}
	for w := range Cardinals {
		out = append(out, types.VocabEntry{Word: w, POS: types.POSNumber, MapsTo: w, Priority: 60})
	}
	for w := range Ordinals {
		out = append(out, types.VocabEntry{Word: w, POS: types.POSNumber, MapsTo: w, Priority: 60})
	}
	return out
}

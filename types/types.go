// Package types defines the shared data structures for the QuestParse parser.
// This package contains only type definitions and constants with no logic.
package types

// PartOfSpeech is the grammatical category a vocabulary entry belongs to.
type PartOfSpeech string

const (
	POSVerb        PartOfSpeech = "verb"
	POSNoun        PartOfSpeech = "noun"
	POSAdjective   PartOfSpeech = "adjective"
	POSPreposition PartOfSpeech = "preposition"
	POSDeterminer  PartOfSpeech = "determiner"
	POSConjunction PartOfSpeech = "conjunction"
	POSPronoun     PartOfSpeech = "pronoun"
	POSDirection   PartOfSpeech = "direction"
	POSNumber      PartOfSpeech = "number"
	POSSpecial     PartOfSpeech = "special"
	POSUnknown     PartOfSpeech = "unknown"
)

// VocabEntry is one registered word.
type VocabEntry struct {
	Word     string
	POS      PartOfSpeech
	MapsTo   string // target concept: action id, entity id, canonical direction...
	Priority int
	Source   string // "base", "story", "entity:<id>", ...
}

// TokenCandidate is one interpretation of a token offered by the vocabulary.
type TokenCandidate struct {
	POS      PartOfSpeech
	MapsTo   string
	Priority int
	Source   string
}

// Token is one lexical unit of input.
type Token struct {
	Word       string // surface form as typed
	Normalized string // lowercased
	Position   int    // byte offset in the input line
	Candidates []TokenCandidate
}

// SlotType is the closed set of slot kinds a grammar rule can declare.
type SlotType string

const (
	SlotEntity     SlotType = "ENTITY"
	SlotInstrument SlotType = "INSTRUMENT"
	SlotText       SlotType = "TEXT"
	SlotTextGreedy SlotType = "TEXT_GREEDY"
	SlotQuotedText SlotType = "QUOTED_TEXT"
	SlotTopic      SlotType = "TOPIC"
	SlotNumber     SlotType = "NUMBER"
	SlotOrdinal    SlotType = "ORDINAL"
	SlotTime       SlotType = "TIME"
	SlotDirection  SlotType = "DIRECTION"
	SlotAdjective  SlotType = "ADJECTIVE"
	SlotNoun       SlotType = "NOUN"
	SlotVocabulary SlotType = "VOCABULARY"
	SlotManner     SlotType = "MANNER"
)

// ScopeBase is the starting entity set of a scope constraint.
type ScopeBase string

const (
	ScopeAll       ScopeBase = "all"
	ScopeVisible   ScopeBase = "visible"
	ScopeTouchable ScopeBase = "touchable"
	ScopeCarried   ScopeBase = "carried"
	ScopeNearby    ScopeBase = "nearby"
)

// GrammaticalNumber decides whether an inanimate referent is "it" or "them".
type GrammaticalNumber string

const (
	Singular GrammaticalNumber = "singular"
	Plural   GrammaticalNumber = "plural"
)

// PronounSet is one set of pronouns an actor answers to.
type PronounSet struct {
	Subject    string // she, they, xe
	Object     string // her, them, xem
	Possessive string // hers, theirs, xyrs
	Reflexive  string // herself, themself, xemself
}

// ActorTrait marks an entity as animate. Absent on plain objects.
type ActorTrait struct {
	Pronouns []PronounSet
	Player   bool
}

// Entity is a world object as seen by the parser.
type Entity struct {
	ID         string
	Name       string
	Aliases    []string
	Adjectives []string
	Props      map[string]any // base properties; "location" holds the container/room ID
	Traits     []string       // capability names: "container", "openable", "portable"...
	Actor      *ActorTrait    // nil for inanimate entities
	Number     GrammaticalNumber
}

// EntityReference is a remembered mention of an entity.
type EntityReference struct {
	EntityID string
	Text     string
	Turn     int
}

// Room is a location in the world model.
type Room struct {
	ID          string
	Name        string
	Description string
	Exits       map[string]string // direction → room ID
}

// GameDef holds story metadata.
type GameDef struct {
	Title   string
	Author  string
	Version string
	Start   string // starting room ID
	Intro   string
}

// Condition is a predicate over the parse context, used to activate
// vocabulary categories contextually.
type Condition struct {
	Type   string         // "in_room", "carrying", "entity_in_room", "prop_is"
	Params map[string]any // condition-specific parameters
	Negate bool           // true if wrapped in Not()
	Inner  *Condition     // for Not(): the negated inner condition
}

// Semantics is the resolved semantic-property bag of a match.
type Semantics map[string]any

// TimeOfDay is the canonical value of a TIME slot.
type TimeOfDay struct {
	Hours   int
	Minutes int
}

// VerbPhrase is the verb portion of a parsed command.
type VerbPhrase struct {
	Text      string   // every literal word before the first slot, joined
	Head      string   // first word
	Particles []string // remaining words ("up" in "pick up")
	Tokens    []int
}

// NounPhrase is an entity slot as it appears in a parsed command.
type NounPhrase struct {
	Text       string
	Tokens     []int
	EntityID   string   // set when resolution produced exactly one entity
	Candidates []string // in-scope entity IDs matching Text
	IsPronoun  bool
	IsAll      bool
	IsList     bool
	Items      []NounPhrase
	Excluded   []NounPhrase
}

// VocabularyMatch is the payload of a VOCABULARY slot.
type VocabularyMatch struct {
	Category string
	Word     string
}

// ParsedCommand is the structured result handed downstream.
type ParsedCommand struct {
	Raw            string
	Tokens         []Token
	Action         string
	RuleID         string
	Pattern        string // shape tag: VERB_ONLY, VERB_NOUN, VERB_NOUN_PREP_NOUN...
	Verb           VerbPhrase
	DirectObject   *NounPhrase
	IndirectObject *NounPhrase
	Instrument     *NounPhrase
	Preposition    string
	Direction      string
	Text           string
	Topic          string
	QuotedText     string
	Manner         string
	Vocabulary     map[string]VocabularyMatch // slot name → match
	Values         map[string]any             // slot name → canonical value (int, TimeOfDay, string)
	Confidence     float64
	Semantics      Semantics
}

// ErrorCode classifies a parse failure.
type ErrorCode string

const (
	ErrNoInput         ErrorCode = "NO_INPUT"
	ErrUnknownVerb     ErrorCode = "UNKNOWN_VERB"
	ErrMissingObject   ErrorCode = "MISSING_OBJECT"
	ErrMissingIndirect ErrorCode = "MISSING_INDIRECT"
	ErrEntityNotFound  ErrorCode = "ENTITY_NOT_FOUND"
	ErrScopeViolation  ErrorCode = "SCOPE_VIOLATION"
	ErrAmbiguousInput  ErrorCode = "AMBIGUOUS_INPUT"
	ErrInvalidSyntax   ErrorCode = "INVALID_SYNTAX"
)

// Result is the output of one session step.
type Result struct {
	Commands []ParsedCommand
	Errors   []error
	Output   []string
}

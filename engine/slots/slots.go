// Package slots consumes input tokens for pattern slots. Each slot-type
// family has one Consumer; the Registry dispatches by slot type.
package slots

import (
	"fmt"

	"github.com/nathoo/questparse/engine/pattern"
	"github.com/nathoo/questparse/engine/scope"
	"github.com/nathoo/questparse/types"
)

// PronounResolver resolves object pronouns to remembered referents.
type PronounResolver interface {
	Resolve(pronoun string) []types.EntityReference
}

// VocabularyProvider answers contextual category membership.
type VocabularyProvider interface {
	Match(category, word string, ctx scope.Context) bool
}

// Lexicon answers word membership for ADJECTIVE and NOUN slots.
type Lexicon interface {
	HasWord(word string, pos types.PartOfSpeech) bool
}

// Context bundles the collaborators consumers may consult. Any field may be
// nil; consumers degrade to literal behavior.
type Context struct {
	Scope      scope.Context
	Pronouns   PronounResolver
	Vocabulary VocabularyProvider
	Lexicon    Lexicon
}

// Request describes one slot to fill.
type Request struct {
	Tokens      []types.Token
	Start       int
	Pattern     *pattern.Compiled
	Index       int // index of the slot within Pattern.Tokens
	Name        string
	Type        types.SlotType
	Category    string // VOCABULARY category
	Constraints []*scope.Constraint
	Context     Context
}

// Next returns the pattern token immediately after the slot, if any.
func (r *Request) Next() (pattern.Token, bool) {
	if r.Pattern == nil || r.Index+1 >= len(r.Pattern.Tokens) {
		return pattern.Token{}, false
	}
	return r.Pattern.Tokens[r.Index+1], true
}

// isDelimiter reports whether the word at position i is accepted by the
// pattern token following the slot.
func (r *Request) isDelimiter(i int) bool {
	next, ok := r.Next()
	if !ok || next.Kind == pattern.Slot {
		return false
	}
	return next.Matches(r.Tokens[i].Normalized)
}

// Match is the result of consuming tokens for one slot.
type Match struct {
	Tokens      []int
	Text        string
	Confidence  float64
	Type        types.SlotType
	EntityID    string
	IsPronoun   bool
	IsList      bool
	Items       []Match
	IsAll       bool
	Excluded    []Match
	Category    string
	MatchedWord string
	Manner      string
	Value       any // canonical value for typed slots
}

// Consumer consumes tokens for a family of slot types. Consume returns nil
// when the slot cannot be filled at the requested position.
type Consumer interface {
	Types() []types.SlotType
	Consume(req *Request) *Match
}

// Family names the consumer family a slot type belongs to.
func Family(t types.SlotType) string {
	switch t {
	case types.SlotEntity, types.SlotInstrument:
		return "entity"
	case types.SlotText, types.SlotTextGreedy, types.SlotQuotedText, types.SlotTopic:
		return "text"
	case types.SlotNumber, types.SlotOrdinal, types.SlotTime, types.SlotDirection:
		return "typed"
	case types.SlotAdjective, types.SlotNoun, types.SlotVocabulary, types.SlotManner:
		return "vocabulary"
	default:
		return ""
	}
}

// AllTypes lists every slot type.
var AllTypes = []types.SlotType{
	types.SlotEntity, types.SlotInstrument,
	types.SlotText, types.SlotTextGreedy, types.SlotQuotedText, types.SlotTopic,
	types.SlotNumber, types.SlotOrdinal, types.SlotTime, types.SlotDirection,
	types.SlotAdjective, types.SlotNoun, types.SlotVocabulary, types.SlotManner,
}

// Registry dispatches slot consumption by slot type.
type Registry struct {
	byType map[types.SlotType]Consumer
}

// NewRegistry returns a registry with the built-in consumers for every slot type.
func NewRegistry() *Registry {
	r := &Registry{byType: map[types.SlotType]Consumer{}}
	r.Register(EntityConsumer{})
	r.Register(TextConsumer{})
	r.Register(TypedConsumer{})
	r.Register(VocabularyConsumer{})
	return r
}

// Register installs c for every type it declares, replacing earlier consumers.
func (r *Registry) Register(c Consumer) {
	for _, t := range c.Types() {
		r.byType[t] = c
	}
}

// Consumer returns the consumer registered for t.
func (r *Registry) Consumer(t types.SlotType) (Consumer, bool) {
	c, ok := r.byType[t]
	return c, ok
}

// Consume fills a slot. Requests starting past the end of input and
// unknown slot types yield nil.
func (r *Registry) Consume(req *Request) *Match {
	if req.Start >= len(req.Tokens) {
		return nil
	}
	c, ok := r.byType[req.Type]
	if !ok {
		return nil
	}
	m := c.Consume(req)
	if m == nil || len(m.Tokens) == 0 || m.Confidence <= 0 {
		return nil
	}
	if m.Type == "" {
		m.Type = req.Type
	}
	return m
}

func (m *Match) String() string {
	switch {
	case m.IsAll:
		return fmt.Sprintf("all (-%d)", len(m.Excluded))
	case m.IsList:
		return fmt.Sprintf("%q ×%d", m.Text, len(m.Items))
	case m.EntityID != "":
		return fmt.Sprintf("%q → %s", m.Text, m.EntityID)
	default:
		return fmt.Sprintf("%q", m.Text)
	}
}

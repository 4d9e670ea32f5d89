// Package pattern compiles grammar pattern strings such as
// "put :item in|into :container" into token sequences.
//
// Pattern syntax:
//
//	word        literal, matched case-insensitively
//	:name       entity slot
//	:name...    greedy text slot
//	a|b|c       alternation; the first member is the primary form
//	[x]         x (a literal, alternation or slot) is optional
package pattern

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nathoo/questparse/types"
)

// Kind is the kind of a pattern token.
type Kind int

const (
	Literal Kind = iota
	Alternatives
	Slot
)

func (k Kind) String() string {
	switch k {
	case Literal:
		return "literal"
	case Alternatives:
		return "alternatives"
	default:
		return "slot"
	}
}

// Token is one unit of a compiled pattern.
type Token struct {
	Kind         Kind
	Value        string   // literal word, or primary alternative
	Alternatives []string // all members, primary first
	SlotName     string
	SlotType     types.SlotType
	Optional     bool
	Greedy       bool
}

// Matches reports whether a literal or alternation token accepts word.
func (t Token) Matches(word string) bool {
	switch t.Kind {
	case Literal:
		return t.Value == word
	case Alternatives:
		for _, a := range t.Alternatives {
			if a == word {
				return true
			}
		}
	}
	return false
}

// Compiled is an immutable compiled pattern.
type Compiled struct {
	Source    string
	Tokens    []Token
	Slots     map[string]int // slot name → index into Tokens
	MinTokens int            // non-optional units
	MaxTokens int            // all units
}

// CompileError reports a malformed pattern.
type CompileError struct {
	Pattern string
	Reason  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %s", e.Pattern, e.Reason)
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Compile parses a pattern string.
func Compile(source string) (*Compiled, error) {
	fail := func(format string, args ...any) (*Compiled, error) {
		return nil, &CompileError{Pattern: source, Reason: fmt.Sprintf(format, args...)}
	}

	words := strings.Fields(source)
	if len(words) == 0 {
		return fail("pattern is empty")
	}

	c := &Compiled{Source: source, Slots: map[string]int{}}
	for _, w := range words {
		optional := false
		if strings.HasPrefix(w, "[") || strings.HasSuffix(w, "]") {
			if !strings.HasPrefix(w, "[") || !strings.HasSuffix(w, "]") || len(w) < 3 {
				return fail("unbalanced optional marker in %q", w)
			}
			optional = true
			w = w[1 : len(w)-1]
			if strings.ContainsAny(w, "[]") {
				return fail("nested optional marker in %q", w)
			}
		}

		tok, err := compileWord(w)
		if err != nil {
			return fail("%s", err)
		}
		tok.Optional = optional

		if tok.Kind == Slot {
			if _, dup := c.Slots[tok.SlotName]; dup {
				return fail("duplicate slot %q", tok.SlotName)
			}
			c.Slots[tok.SlotName] = len(c.Tokens)
		}
		c.Tokens = append(c.Tokens, tok)
		c.MaxTokens++
		if !optional {
			c.MinTokens++
		}
	}
	return c, nil
}

// MustCompile is like Compile but panics on error. For built-in grammars.
func MustCompile(source string) *Compiled {
	c, err := Compile(source)
	if err != nil {
		panic(err)
	}
	return c
}

func compileWord(w string) (Token, error) {
	if strings.HasPrefix(w, ":") {
		name := w[1:]
		greedy := strings.HasSuffix(name, "...")
		if greedy {
			name = strings.TrimSuffix(name, "...")
		}
		if !identifier.MatchString(name) {
			return Token{}, fmt.Errorf("invalid slot name %q", name)
		}
		tok := Token{Kind: Slot, Value: name, SlotName: name, SlotType: types.SlotEntity, Greedy: greedy}
		if greedy {
			tok.SlotType = types.SlotTextGreedy
		}
		return tok, nil
	}

	if strings.Contains(w, "|") {
		members := strings.Split(strings.ToLower(w), "|")
		for _, m := range members {
			if m == "" {
				return Token{}, fmt.Errorf("empty alternative in %q", w)
			}
			if strings.HasPrefix(m, ":") {
				return Token{}, fmt.Errorf("slot inside alternation %q", w)
			}
		}
		return Token{Kind: Alternatives, Value: members[0], Alternatives: members}, nil
	}

	return Token{Kind: Literal, Value: strings.ToLower(w)}, nil
}

// NextDelimiter returns the index of the first literal or alternation token
// after index i, or -1.
func (c *Compiled) NextDelimiter(i int) int {
	for j := i + 1; j < len(c.Tokens); j++ {
		if c.Tokens[j].Kind != Slot {
			return j
		}
	}
	return -1
}

// FirstSlot returns the index of the first slot token, or len(Tokens) when
// the pattern has none.
func (c *Compiled) FirstSlot() int {
	for i, t := range c.Tokens {
		if t.Kind == Slot {
			return i
		}
	}
	return len(c.Tokens)
}

// String renders the pattern back into DSL form.
func (c *Compiled) String() string {
	parts := make([]string, len(c.Tokens))
	for i, t := range c.Tokens {
		var s string
		switch t.Kind {
		case Literal:
			s = t.Value
		case Alternatives:
			s = strings.Join(t.Alternatives, "|")
		case Slot:
			s = ":" + t.SlotName
			if t.Greedy {
				s += "..."
			}
		}
		if t.Optional {
			s = "[" + s + "]"
		}
		parts[i] = s
	}
	return strings.Join(parts, " ")
}

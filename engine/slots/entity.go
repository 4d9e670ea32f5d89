package slots

import (
	"strings"

	"github.com/nathoo/questparse/engine/pattern"
	"github.com/nathoo/questparse/engine/pronoun"
	"github.com/nathoo/questparse/engine/scope"
	"github.com/nathoo/questparse/types"
)

// EntityConsumer fills ENTITY and INSTRUMENT slots: pronouns, "all [but X]",
// and "and"-joined lists of noun phrases.
type EntityConsumer struct{}

func (EntityConsumer) Types() []types.SlotType {
	return []types.SlotType{types.SlotEntity, types.SlotInstrument}
}

func (c EntityConsumer) Consume(req *Request) *Match {
	first := req.Tokens[req.Start].Normalized

	if req.Context.Pronouns != nil && pronoun.IsPronoun(first) {
		if m := c.resolvePronoun(req, first); m != nil {
			return m
		}
	}
	if first == "all" || first == "everything" {
		return c.all(req)
	}
	return c.phrases(req)
}

func (EntityConsumer) resolvePronoun(req *Request, word string) *Match {
	refs := req.Context.Pronouns.Resolve(word)
	switch len(refs) {
	case 0:
		return nil
	case 1:
		return &Match{
			Tokens:     []int{req.Start},
			Text:       refs[0].Text,
			Confidence: 1,
			EntityID:   refs[0].EntityID,
			IsPronoun:  true,
		}
	}
	m := &Match{
		Tokens:     []int{req.Start},
		Text:       word,
		Confidence: 1,
		IsPronoun:  true,
		IsList:     true,
	}
	for _, ref := range refs {
		m.Items = append(m.Items, Match{Tokens: []int{req.Start}, Text: ref.Text, EntityID: ref.EntityID, Confidence: 1})
	}
	return m
}

// all consumes "all", optionally followed by "but"/"except" and excluded
// noun phrases. Exclusions are not pronoun-resolved.
func (EntityConsumer) all(req *Request) *Match {
	m := &Match{Tokens: []int{req.Start}, Text: "all", Confidence: 1, IsAll: true}
	i := req.Start + 1
	if i >= len(req.Tokens) {
		return m
	}
	if w := req.Tokens[i].Normalized; w != "but" && w != "except" {
		return m
	}
	m.Tokens = append(m.Tokens, i)
	i++

	for i < len(req.Tokens) && !req.isDelimiter(i) {
		if isSeparator(req.Tokens[i].Normalized) {
			m.Tokens = append(m.Tokens, i)
			i++
			continue
		}
		item := Match{Confidence: 1}
		var words []string
		for i < len(req.Tokens) && !isSeparator(req.Tokens[i].Normalized) && !req.isDelimiter(i) {
			item.Tokens = append(item.Tokens, i)
			words = append(words, req.Tokens[i].Word)
			i++
		}
		item.Text = strings.Join(words, " ")
		m.Tokens = append(m.Tokens, item.Tokens...)
		m.Excluded = append(m.Excluded, item)
	}
	if len(m.Excluded) == 0 {
		// "all but" with nothing after it consumes only "all".
		m.Tokens = m.Tokens[:1]
	}
	return m
}

// phrases collects one or more noun phrases joined by "and" or commas.
func (c EntityConsumer) phrases(req *Request) *Match {
	next, hasNext := req.Next()
	consecutive := hasNext && next.Kind == pattern.Slot

	m := &Match{Confidence: 1}
	var words []string
	i := req.Start
	for i < len(req.Tokens) && !req.isDelimiter(i) {
		var item Match
		if consecutive && len(m.Items) == 0 {
			item = c.boundary(req, i)
		} else {
			item = c.span(req, i)
		}
		if len(item.Tokens) > 0 {
			m.Items = append(m.Items, item)
			m.Tokens = append(m.Tokens, item.Tokens...)
			words = append(words, item.Text)
			i += len(item.Tokens)
		}
		j := i
		for j < len(req.Tokens) && isSeparator(req.Tokens[j].Normalized) {
			j++
		}
		if j == i || j >= len(req.Tokens) || req.isDelimiter(j) || len(m.Items) == 0 {
			break
		}
		for ; i < j; i++ {
			m.Tokens = append(m.Tokens, i)
		}
	}
	if len(m.Items) == 0 {
		return nil
	}

	if constrained(req) {
		for _, item := range m.Items {
			if conf := satisfies(req, item.Text); conf < m.Confidence {
				m.Confidence = conf
			}
		}
		if m.Confidence == 0 {
			return nil
		}
	}

	if len(m.Items) == 1 {
		m.Text = m.Items[0].Text
		m.Items = nil
		return m
	}
	m.IsList = true
	m.Text = strings.Join(words, " and ")
	return m
}

// span takes words up to the next separator or pattern delimiter.
func (EntityConsumer) span(req *Request, start int) Match {
	item := Match{Confidence: 1}
	var words []string
	for i := start; i < len(req.Tokens); i++ {
		if isSeparator(req.Tokens[i].Normalized) || req.isDelimiter(i) {
			break
		}
		item.Tokens = append(item.Tokens, i)
		words = append(words, req.Tokens[i].Word)
	}
	item.Text = strings.Join(words, " ")
	return item
}

// boundary finds where a slot ends when the next pattern unit is another
// slot. Span lengths are tried from 1 upward, bounded by the remaining
// tokens and the first separator; the first span whose text satisfies the
// slot's constraints wins. Without constraints exactly one token is taken.
func (EntityConsumer) boundary(req *Request, start int) Match {
	if !constrained(req) {
		return Match{Tokens: []int{start}, Text: req.Tokens[start].Word, Confidence: 1}
	}
	limit := len(req.Tokens) - start
	for n := 1; n <= limit; n++ {
		if isSeparator(req.Tokens[start+n-1].Normalized) {
			break
		}
		item := Match{Confidence: 1}
		var words []string
		for i := start; i < start+n; i++ {
			item.Tokens = append(item.Tokens, i)
			words = append(words, req.Tokens[i].Word)
		}
		item.Text = strings.Join(words, " ")
		if conf := satisfies(req, item.Text); conf > 0 {
			item.Confidence = conf
			return item
		}
	}
	return Match{}
}

func constrained(req *Request) bool {
	return len(req.Constraints) > 0 && req.Context.Scope.World != nil
}

// satisfies returns 1 if text names an entity allowed by any of the slot's
// constraints, 0 otherwise.
func satisfies(req *Request, text string) float64 {
	for _, c := range req.Constraints {
		if len(scope.FindByName(text, c, req.Context.Scope)) > 0 {
			return 1
		}
	}
	return 0
}

func isSeparator(w string) bool {
	return w == "and" || w == ","
}

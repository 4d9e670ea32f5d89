package slots

import (
	"strings"

	"github.com/nathoo/questparse/types"
)

// TextConsumer captures raw text without entity resolution.
type TextConsumer struct{}

func (TextConsumer) Types() []types.SlotType {
	return []types.SlotType{types.SlotText, types.SlotTextGreedy, types.SlotQuotedText, types.SlotTopic}
}

func (c TextConsumer) Consume(req *Request) *Match {
	switch req.Type {
	case types.SlotText:
		return &Match{Tokens: []int{req.Start}, Text: req.Tokens[req.Start].Word, Confidence: 1}
	case types.SlotQuotedText:
		return c.quoted(req)
	default:
		return c.greedy(req)
	}
}

// greedy takes every token up to the next literal or alternation in the
// pattern, or to the end of input.
func (TextConsumer) greedy(req *Request) *Match {
	delim := -1
	if req.Pattern != nil {
		delim = req.Pattern.NextDelimiter(req.Index)
	}
	m := &Match{Confidence: 1}
	var words []string
	for i := req.Start; i < len(req.Tokens); i++ {
		if delim >= 0 && req.Pattern.Tokens[delim].Matches(req.Tokens[i].Normalized) {
			break
		}
		m.Tokens = append(m.Tokens, i)
		words = append(words, req.Tokens[i].Word)
	}
	if len(m.Tokens) == 0 {
		return nil
	}
	m.Text = strings.Join(words, " ")
	return m
}

// quoted requires the first token to open a double quote and consumes up to
// the token that closes it. The quotes are stripped from the text.
func (TextConsumer) quoted(req *Request) *Match {
	first := req.Tokens[req.Start].Word
	if !strings.HasPrefix(first, `"`) {
		return nil
	}
	if len(first) > 2 && strings.HasSuffix(first, `"`) {
		return &Match{Tokens: []int{req.Start}, Text: first[1 : len(first)-1], Confidence: 1}
	}

	m := &Match{Confidence: 1}
	var words []string
	for i := req.Start; i < len(req.Tokens); i++ {
		w := req.Tokens[i].Word
		m.Tokens = append(m.Tokens, i)
		words = append(words, w)
		if i > req.Start && strings.HasSuffix(w, `"`) {
			text := strings.Join(words, " ")
			m.Text = text[1 : len(text)-1]
			return m
		}
	}
	return nil
}

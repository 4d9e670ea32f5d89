package slots

import "github.com/nathoo/questparse/types"

// manners is the built-in closed set of manner adverbs.
var manners = map[string]bool{
	"carefully": true, "quickly": true, "slowly": true, "quietly": true,
	"loudly": true, "gently": true, "forcefully": true, "roughly": true,
	"softly": true, "firmly": true, "cautiously": true, "hastily": true,
	"deliberately": true, "violently": true, "silently": true,
}

// VocabularyConsumer fills slots whose single word must belong to a word set.
type VocabularyConsumer struct{}

func (VocabularyConsumer) Types() []types.SlotType {
	return []types.SlotType{types.SlotAdjective, types.SlotNoun, types.SlotVocabulary, types.SlotManner}
}

func (VocabularyConsumer) Consume(req *Request) *Match {
	tok := req.Tokens[req.Start]
	word := tok.Normalized
	ctx := req.Context
	m := &Match{Tokens: []int{req.Start}, Text: tok.Word, Confidence: 1, MatchedWord: word}

	switch req.Type {
	case types.SlotAdjective:
		if ctx.Lexicon == nil || !ctx.Lexicon.HasWord(word, types.POSAdjective) {
			return nil
		}
	case types.SlotNoun:
		if ctx.Lexicon == nil || !ctx.Lexicon.HasWord(word, types.POSNoun) {
			return nil
		}
	case types.SlotVocabulary:
		if ctx.Vocabulary == nil || !ctx.Vocabulary.Match(req.Category, word, ctx.Scope) {
			return nil
		}
		m.Category = req.Category
	case types.SlotManner:
		if !manners[word] && (ctx.Vocabulary == nil || !ctx.Vocabulary.Match("manner", word, ctx.Scope)) {
			return nil
		}
		m.Manner = word
	default:
		return nil
	}
	return m
}

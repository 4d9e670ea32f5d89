package parser

import (
	"strings"
	"unicode"

	"github.com/nathoo/questparse/types"
)

// Tokenize splits input on whitespace, splits commas into their own
// tokens outside quotes, drops sentence-final punctuation and attaches
// vocabulary candidates to every token.
func (p *Parser) Tokenize(input string) []types.Token {
	var tokens []types.Token
	inQuote := false

	emit := func(word string, pos int) {
		if word == "" {
			return
		}
		norm := strings.ToLower(word)
		cands := p.Vocab.Candidates(norm)
		if len(cands) == 0 {
			cands = []types.TokenCandidate{{POS: types.POSUnknown}}
		}
		tokens = append(tokens, types.Token{Word: word, Normalized: norm, Position: pos, Candidates: cands})
	}

	for _, f := range fields(input) {
		word, pos := f.text, f.pos
		if inQuote {
			emit(word, pos)
			inQuote = !strings.HasSuffix(word, `"`)
			continue
		}
		if strings.HasPrefix(word, `"`) {
			// Quoted words are kept verbatim.
			emit(word, pos)
			inQuote = len(word) == 1 || !strings.HasSuffix(word, `"`)
			continue
		}

		word = strings.TrimRightFunc(word, func(r rune) bool {
			return r == '.' || r == '!' || r == '?' || r == ';'
		})
		for word != "" {
			i := strings.IndexByte(word, ',')
			if i < 0 {
				emit(word, pos)
				break
			}
			emit(word[:i], pos)
			emit(",", pos+i)
			word = word[i+1:]
			pos += i + 1
		}
	}
	return tokens
}

type field struct {
	text string
	pos  int
}

// fields is strings.Fields that also reports byte offsets.
func fields(s string) []field {
	var out []field
	start := -1
	for i, r := range s {
		if unicode.IsSpace(r) {
			if start >= 0 {
				out = append(out, field{s[start:i], start})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, field{s[start:], start})
	}
	return out
}

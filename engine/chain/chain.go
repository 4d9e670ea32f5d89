// Package chain splits one input line into independently parsed commands.
//
// Periods always end a command. A comma ends a command only when the word
// after it is a verb, optionally preceded by "then"; otherwise it separates
// list items ("take knife, lamp").
// Quoted spans are never split.
package chain

import (
	"fmt"
	"strings"
)

// VerbChecker reports whether a word is a known verb.
type VerbChecker func(word string) bool

const placeholderPrefix = "\x00q"

// Split breaks input into command segments. Empty segments are dropped.
func Split(input string, isVerb VerbChecker) []string {
	protected, quotes := protect(input)

	var out []string
	for _, sentence := range strings.Split(protected, ".") {
		for _, seg := range splitCommas(sentence, quotes, isVerb) {
			seg = strings.TrimSpace(restore(seg, quotes))
			if seg != "" {
				out = append(out, seg)
			}
		}
	}
	return out
}

// protect replaces quoted spans with placeholders. An unterminated quote
// protects the rest of the line.
func protect(input string) (string, []string) {
	var b strings.Builder
	var quotes []string
	for i := 0; i < len(input); i++ {
		c := input[i]
		if c != '"' && c != '\'' {
			b.WriteByte(c)
			continue
		}
		// An apostrophe inside a word ("don't") is not a quote.
		if c == '\'' && i > 0 && isWordByte(input[i-1]) {
			b.WriteByte(c)
			continue
		}
		end := strings.IndexByte(input[i+1:], c)
		if end < 0 {
			end = len(input) - i - 1
		} else {
			end++
		}
		quotes = append(quotes, input[i:i+end+1])
		fmt.Fprintf(&b, "%s%d\x00", placeholderPrefix, len(quotes)-1)
		i += end
	}
	return b.String(), quotes
}

func restore(s string, quotes []string) string {
	for i := len(quotes) - 1; i >= 0; i-- {
		s = strings.ReplaceAll(s, fmt.Sprintf("%s%d\x00", placeholderPrefix, i), quotes[i])
	}
	return s
}

// splitCommas splits a sentence at commas followed by a verb.
func splitCommas(sentence string, quotes []string, isVerb VerbChecker) []string {
	parts := strings.Split(sentence, ",")
	if len(parts) == 1 || isVerb == nil {
		return []string{sentence}
	}

	out := []string{parts[0]}
	for _, p := range parts[1:] {
		cmd := p
		if firstWord(restore(cmd, quotes)) == "then" {
			cmd = dropFirstWord(cmd)
		}
		if first := firstWord(restore(cmd, quotes)); first != "" && isVerb(first) {
			out = append(out, cmd)
			continue
		}
		out[len(out)-1] += "," + p
	}
	return out
}

func dropFirstWord(s string) string {
	s = strings.TrimLeft(s, " \t")
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[i:]
	}
	return ""
}

func firstWord(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], `"'`)
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

package vocab

import "strings"

// irregular maps irregular verb forms to their base form.
var irregular = map[string]string{
	"took": "take", "taken": "take", "got": "get", "gotten": "get",
	"went": "go", "gone": "go", "ran": "run", "ate": "eat", "eaten": "eat",
	"drank": "drink", "drunk": "drink", "threw": "throw", "thrown": "throw",
	"gave": "give", "given": "give", "saw": "see", "seen": "see",
	"wrote": "write", "written": "write", "spoke": "speak", "spoken": "speak",
	"hung": "hang", "wore": "wear", "worn": "wear", "dug": "dig",
	"struck": "strike", "broke": "break", "broken": "break", "said": "say",
	"told": "tell", "slept": "sleep", "shut": "shut", "put": "put", "cut": "cut",
}

// Lemmas returns candidate base forms for an inflected word, most likely
// first. The word itself is not included.
func Lemmas(word string) []string {
	if base, ok := irregular[word]; ok && base != word {
		return []string{base}
	}

	var out []string
	add := func(s string) {
		if len(s) >= 2 && s != word {
			out = append(out, s)
		}
	}

	switch {
	case strings.HasSuffix(word, "ied") || strings.HasSuffix(word, "ies"):
		add(word[:len(word)-3] + "y")
	case strings.HasSuffix(word, "ing"):
		stem := word[:len(word)-3]
		add(stem)
		add(stem + "e")
		if undoubled, ok := undouble(stem); ok {
			add(undoubled)
		}
	case strings.HasSuffix(word, "ed"):
		stem := word[:len(word)-2]
		add(stem)
		add(stem + "e")
		if undoubled, ok := undouble(stem); ok {
			add(undoubled)
		}
	case strings.HasSuffix(word, "es"):
		add(word[:len(word)-2])
		add(word[:len(word)-1])
	case strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss"):
		add(word[:len(word)-1])
	}
	return out
}

// undouble strips a doubled final consonant ("dropp" → "drop").
func undouble(stem string) (string, bool) {
	n := len(stem)
	if n < 3 || stem[n-1] != stem[n-2] {
		return "", false
	}
	if strings.ContainsRune("aeiou", rune(stem[n-1])) {
		return "", false
	}
	return stem[:n-1], true
}

package slots

import (
	"regexp"
	"strconv"

	"github.com/nathoo/questparse/engine/vocab"
	"github.com/nathoo/questparse/types"
)

// TypedConsumer validates a single token against a closed format and
// records its canonical value.
type TypedConsumer struct{}

func (TypedConsumer) Types() []types.SlotType {
	return []types.SlotType{types.SlotNumber, types.SlotOrdinal, types.SlotTime, types.SlotDirection}
}

func (TypedConsumer) Consume(req *Request) *Match {
	tok := req.Tokens[req.Start]
	var value any
	var ok bool
	switch req.Type {
	case types.SlotNumber:
		value, ok = ParseNumber(tok.Normalized)
	case types.SlotOrdinal:
		value, ok = ParseOrdinal(tok.Normalized)
	case types.SlotTime:
		value, ok = ParseTime(tok.Normalized)
	case types.SlotDirection:
		value, ok = CanonicalDirection(tok.Normalized)
	}
	if !ok {
		return nil
	}
	return &Match{Tokens: []int{req.Start}, Text: tok.Word, Confidence: 1, Value: value}
}

var (
	digits      = regexp.MustCompile(`^\d+$`)
	ordinalForm = regexp.MustCompile(`^(\d+)(st|nd|rd|th)$`)
	timeForm    = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
)

// ParseNumber accepts digit sequences and cardinal words.
func ParseNumber(word string) (int, bool) {
	if n, ok := vocab.Cardinals[word]; ok {
		return n, true
	}
	if digits.MatchString(word) {
		n, err := strconv.Atoi(word)
		return n, err == nil
	}
	return 0, false
}

// ParseOrdinal accepts ordinal words and suffixed digits ("21st").
func ParseOrdinal(word string) (int, bool) {
	if n, ok := vocab.Ordinals[word]; ok {
		return n, true
	}
	if m := ordinalForm.FindStringSubmatch(word); m != nil {
		n, err := strconv.Atoi(m[1])
		return n, err == nil
	}
	return 0, false
}

// ParseTime accepts H:MM and HH:MM on a 24-hour clock.
func ParseTime(word string) (types.TimeOfDay, bool) {
	m := timeForm.FindStringSubmatch(word)
	if m == nil {
		return types.TimeOfDay{}, false
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	if h > 23 || mins > 59 {
		return types.TimeOfDay{}, false
	}
	return types.TimeOfDay{Hours: h, Minutes: mins}, true
}

// CanonicalDirection maps direction words and abbreviations to full names.
func CanonicalDirection(word string) (string, bool) {
	d, ok := vocab.Directions[word]
	return d, ok
}

// Package vocab holds the vocabulary registry: the table of recognized words
// and the part-of-speech candidates each word maps to.
package vocab

import (
	"sort"
	"strings"

	"github.com/nathoo/questparse/types"
)

// Provider supplies vocabulary entries for one language or story.
type Provider interface {
	Name() string
	Priority() int
	Entries() []types.VocabEntry
}

// Registry maps words to vocabulary entries. It is an explicit value owned by
// a parser; there is no package-level registry. A Registry must not be
// mutated while a parse using it is in flight.
type Registry struct {
	words map[string][]types.VocabEntry // keyed by full word or phrase
	heads map[string][]types.VocabEntry // multi-word entries keyed by first word
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		words: map[string][]types.VocabEntry{},
		heads: map[string][]types.VocabEntry{},
	}
}

// NewEnglish creates a registry preloaded with the built-in English vocabulary.
func NewEnglish() *Registry {
	r := NewRegistry()
	r.LoadProvider(English{})
	return r
}

// LoadProvider registers every entry of each provider, highest priority
// provider first.
func (r *Registry) LoadProvider(providers ...Provider) {
	sorted := make([]Provider, len(providers))
	copy(sorted, providers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() > sorted[j].Priority()
	})
	for _, p := range sorted {
		entries := p.Entries()
		for i := range entries {
			if entries[i].Source == "" {
				entries[i].Source = p.Name()
			}
		}
		r.Register(entries...)
	}
}

// Register adds entries. An entry with the same word, part of speech and
// target replaces the existing one only if its priority is not lower.
func (r *Registry) Register(entries ...types.VocabEntry) {
	for _, e := range entries {
		e.Word = normalize(e.Word)
		if e.Word == "" {
			continue
		}
		r.words[e.Word] = upsert(r.words[e.Word], e)
		if head, _, ok := strings.Cut(e.Word, " "); ok {
			r.heads[head] = upsert(r.heads[head], e)
		}
	}
}

func upsert(list []types.VocabEntry, e types.VocabEntry) []types.VocabEntry {
	for i, existing := range list {
		if existing.POS == e.POS && existing.MapsTo == e.MapsTo {
			if e.Priority >= existing.Priority {
				list[i] = e
			}
			return list
		}
	}
	return append(list, e)
}

// RegisterEntity adds noun entries for an entity's names and adjective
// entries for its descriptive words, all mapping to the entity ID.
func (r *Registry) RegisterEntity(id string, names, adjectives []string) {
	source := "entity:" + id
	for _, n := range names {
		for _, w := range strings.Fields(n) {
			r.Register(types.VocabEntry{Word: w, POS: types.POSNoun, MapsTo: id, Priority: 50, Source: source})
		}
	}
	for _, a := range adjectives {
		r.Register(types.VocabEntry{Word: a, POS: types.POSAdjective, MapsTo: id, Priority: 50, Source: source})
	}
}

// Lookup returns every entry for a word, highest priority first. Multi-word
// entries are also returned when word is their first word.
func (r *Registry) Lookup(word string) []types.VocabEntry {
	word = normalize(word)
	all := append([]types.VocabEntry{}, r.words[word]...)
	all = append(all, r.heads[word]...)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Priority > all[j].Priority
	})
	return all
}

// LookupPOS returns the entries for a word restricted to one part of speech.
func (r *Registry) LookupPOS(word string, pos types.PartOfSpeech) []types.VocabEntry {
	var out []types.VocabEntry
	for _, e := range r.Lookup(word) {
		if e.POS == pos {
			out = append(out, e)
		}
	}
	return out
}

// HasWord reports whether word is registered. An empty pos matches any
// part of speech.
func (r *Registry) HasWord(word string, pos types.PartOfSpeech) bool {
	for _, e := range r.Lookup(word) {
		if pos == "" || e.POS == pos {
			return true
		}
	}
	return false
}

// IsVerb reports whether word, or its lemma, is a known verb.
func (r *Registry) IsVerb(word string) bool {
	if r.HasWord(word, types.POSVerb) {
		return true
	}
	for _, l := range Lemmas(normalize(word)) {
		if r.HasWord(l, types.POSVerb) {
			return true
		}
	}
	return false
}

// Words returns the sorted distinct words registered under pos.
func (r *Registry) Words(pos types.PartOfSpeech) []string {
	var out []string
	for w, entries := range r.words {
		for _, e := range entries {
			if e.POS == pos {
				out = append(out, w)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// Candidates returns the token candidates for a word. When the surface form
// is unknown the first lemma that is known is used instead.
func (r *Registry) Candidates(word string) []types.TokenCandidate {
	entries := r.Lookup(word)
	if len(entries) == 0 {
		for _, l := range Lemmas(normalize(word)) {
			if entries = r.Lookup(l); len(entries) > 0 {
				break
			}
		}
	}
	out := make([]types.TokenCandidate, 0, len(entries))
	for _, e := range entries {
		out = append(out, types.TokenCandidate{
			POS:      e.POS,
			MapsTo:   e.MapsTo,
			Priority: e.Priority,
			Source:   e.Source,
		})
	}
	return out
}

// RemoveSource drops every entry registered with the given source tag.
func (r *Registry) RemoveSource(source string) {
	for _, index := range []map[string][]types.VocabEntry{r.words, r.heads} {
		for w, entries := range index {
			kept := entries[:0]
			for _, e := range entries {
				if e.Source != source {
					kept = append(kept, e)
				}
			}
			if len(kept) == 0 {
				delete(index, w)
			} else {
				index[w] = kept
			}
		}
	}
}

// Clear removes every entry.
func (r *Registry) Clear() {
	r.words = map[string][]types.VocabEntry{}
	r.heads = map[string][]types.VocabEntry{}
}

// Len returns the number of distinct registered words and phrases.
func (r *Registry) Len() int {
	return len(r.words)
}

func normalize(w string) string {
	return strings.Join(strings.Fields(strings.ToLower(w)), " ")
}

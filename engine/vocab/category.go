package vocab

import (
	"sort"
	"strings"

	"github.com/nathoo/questparse/engine/scope"
	"github.com/nathoo/questparse/types"
)

// Category is a named word set that is only active while all of its
// conditions hold.
type Category struct {
	Name  string
	Words []string
	When  []types.Condition
}

// Categories is the grammar-vocabulary provider used by VOCABULARY and
// MANNER slots. Several categories may share a name; a word matches if any
// active one contains it.
type Categories struct {
	byName map[string][]Category
}

// NewCategories creates an empty provider.
func NewCategories() *Categories {
	return &Categories{byName: map[string][]Category{}}
}

// Add registers a category.
func (c *Categories) Add(cat Category) {
	name := strings.ToLower(cat.Name)
	words := make([]string, 0, len(cat.Words))
	for _, w := range cat.Words {
		words = append(words, normalize(w))
	}
	cat.Name = name
	cat.Words = words
	c.byName[name] = append(c.byName[name], cat)
}

// Remove drops every category with the given name.
func (c *Categories) Remove(name string) {
	delete(c.byName, strings.ToLower(name))
}

// Names returns the sorted category names.
func (c *Categories) Names() []string {
	out := make([]string, 0, len(c.byName))
	for n := range c.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Match reports whether word belongs to an active category.
func (c *Categories) Match(category, word string, ctx scope.Context) bool {
	word = normalize(word)
	for _, cat := range c.byName[strings.ToLower(category)] {
		if !EvalAll(cat.When, ctx) {
			continue
		}
		for _, w := range cat.Words {
			if w == word {
				return true
			}
		}
	}
	return false
}

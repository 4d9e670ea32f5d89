package grammar

import "fmt"

// OverrideBoost is added to the highest existing priority by Override.
const OverrideBoost = 50

// ExtendBoost is added to the cloned rule's priority by Extend.
const ExtendBoost = 10

// Story is the rule-mutation surface offered to story content. Rules it
// creates are tagged as story rules and are removed by Clear.
type Story struct {
	engine *Engine
}

// NewStory wraps an engine.
func NewStory(e *Engine) *Story {
	return &Story{engine: e}
}

// Define starts a new story rule.
func (s *Story) Define(source string) *Builder {
	return newBuilder(source, s.engine, SourceStory)
}

// Override starts a rule for an existing action that outranks every rule
// already registered for it.
func (s *Story) Override(action, source string) *Builder {
	e := s.engine
	e.mu.Lock()
	existing := e.rulesFor(action)
	top := DefaultPriority
	for _, r := range existing {
		if r.Priority > top {
			top = r.Priority
		}
	}
	e.overridden += len(existing)
	e.mu.Unlock()

	return newBuilder(source, e, SourceStory).
		MapsTo(action).
		WithPriority(top + OverrideBoost)
}

// Extend clones the highest-priority rule for action so that more slot
// constraints can be added. The clone is registered on Build with a
// priority bump and the story_extension source.
func (s *Story) Extend(action string) *Builder {
	existing := s.engine.RulesFor(action)
	if len(existing) == 0 {
		b := newBuilder("", s.engine, SourceExtension)
		b.errs = []error{fmt.Errorf("no rule to extend for action %q", action)}
		b.rule.Action = action
		return b
	}
	r := existing[0].clone()
	r.ID = ""
	r.Source = SourceExtension
	r.Priority += ExtendBoost
	return &Builder{rule: r, engine: s.engine}
}

// Remove deletes a rule by ID.
func (s *Story) Remove(id string) bool {
	return s.engine.Remove(id)
}

// Clear drops every story rule.
func (s *Story) Clear() {
	s.engine.Clear()
}

// Rules returns the story-owned rules.
func (s *Story) Rules() []*Rule {
	var out []*Rule
	for _, r := range s.engine.Rules() {
		if r.Source != SourceCore {
			out = append(out, r)
		}
	}
	return out
}

// Stats returns the engine statistics.
func (s *Story) Stats() Stats {
	return s.engine.Stats()
}

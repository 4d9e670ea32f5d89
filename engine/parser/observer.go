package parser

import (
	"go.uber.org/zap"

	"github.com/nathoo/questparse/types"
)

// EventKind names an observer event.
type EventKind string

const (
	EventTokenize           EventKind = "tokenize"
	EventPatternMatch       EventKind = "pattern_match"
	EventCandidateSelection EventKind = "candidate_selection"
	EventParseError         EventKind = "parse_error"
)

// TokenizeEvent is emitted once per parse after tokenization.
type TokenizeEvent struct {
	ID      string
	Input   string
	Tokens  []types.Token
	Unknown []string
}

// PatternMatchEvent is emitted once per rule attempted.
type PatternMatchEvent struct {
	ID         string
	RuleID     string
	Pattern    string
	Action     string
	Matched    bool
	Confidence float64
	Progress   int    // tokens consumed before failure
	Reason     string // failure reason, empty on success
}

// Candidate is one ranked match offered for selection.
type Candidate struct {
	RuleID     string
	Action     string
	Confidence float64
	Priority   int
}

// CandidateSelectionEvent is emitted when at least one rule matched.
type CandidateSelectionEvent struct {
	ID         string
	Candidates []Candidate
	Selected   string
}

// ErrorEvent is emitted when a parse fails.
type ErrorEvent struct {
	ID      string
	Input   string
	Code    types.ErrorCode
	Message string
}

// Observer receives parse events. Every callback is optional.
type Observer struct {
	OnTokenize           func(TokenizeEvent)
	OnPatternMatch       func(PatternMatchEvent)
	OnCandidateSelection func(CandidateSelectionEvent)
	OnParseError         func(ErrorEvent)
}

func (o Observer) tokenize(ev TokenizeEvent) {
	if o.OnTokenize != nil {
		o.OnTokenize(ev)
	}
}

func (o Observer) patternMatch(ev PatternMatchEvent) {
	if o.OnPatternMatch != nil {
		o.OnPatternMatch(ev)
	}
}

func (o Observer) candidateSelection(ev CandidateSelectionEvent) {
	if o.OnCandidateSelection != nil {
		o.OnCandidateSelection(ev)
	}
}

func (o Observer) parseError(ev ErrorEvent) {
	if o.OnParseError != nil {
		o.OnParseError(ev)
	}
}

// LogObserver returns an observer that writes the selected event kinds to
// logger at debug level. With no kinds, every event is logged.
func LogObserver(logger *zap.Logger, kinds ...EventKind) Observer {
	if logger == nil {
		return Observer{}
	}
	enabled := map[EventKind]bool{}
	for _, k := range kinds {
		enabled[k] = true
	}
	on := func(k EventKind) bool { return len(kinds) == 0 || enabled[k] }

	var o Observer
	if on(EventTokenize) {
		o.OnTokenize = func(ev TokenizeEvent) {
			words := make([]string, len(ev.Tokens))
			for i, t := range ev.Tokens {
				words[i] = t.Normalized
			}
			logger.Debug("tokenize",
				zap.String("event_id", ev.ID),
				zap.String("input", ev.Input),
				zap.Strings("tokens", words),
				zap.Strings("unknown", ev.Unknown),
			)
		}
	}
	if on(EventPatternMatch) {
		o.OnPatternMatch = func(ev PatternMatchEvent) {
			logger.Debug("pattern_match",
				zap.String("event_id", ev.ID),
				zap.String("rule", ev.RuleID),
				zap.String("pattern", ev.Pattern),
				zap.Bool("matched", ev.Matched),
				zap.Float64("confidence", ev.Confidence),
				zap.Int("progress", ev.Progress),
				zap.String("reason", ev.Reason),
			)
		}
	}
	if on(EventCandidateSelection) {
		o.OnCandidateSelection = func(ev CandidateSelectionEvent) {
			fields := []zap.Field{
				zap.String("event_id", ev.ID),
				zap.Int("candidates", len(ev.Candidates)),
				zap.String("selected", ev.Selected),
			}
			if len(ev.Candidates) > 0 {
				fields = append(fields,
					zap.String("action", ev.Candidates[0].Action),
					zap.Float64("confidence", ev.Candidates[0].Confidence),
				)
			}
			logger.Debug("candidate_selection", fields...)
		}
	}
	if on(EventParseError) {
		o.OnParseError = func(ev ErrorEvent) {
			logger.Debug("parse_error",
				zap.String("event_id", ev.ID),
				zap.String("input", ev.Input),
				zap.String("code", string(ev.Code)),
				zap.String("message", ev.Message),
			)
		}
	}
	return o
}

// Package config provides configuration loading and management for QuestParse.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/nathoo/questparse/engine/parser"
)

// Config represents the complete QuestParse configuration.
type Config struct {
	Parser  ParserConfig  `yaml:"parser"`
	Log     LogConfig     `yaml:"log"`
	Story   StoryConfig   `yaml:"story"`
	Session SessionConfig `yaml:"session"`
}

// ParserConfig tunes matching and error reporting.
type ParserConfig struct {
	// MinConfidence drops matches scoring below it (default: 0.1)
	MinConfidence float64 `yaml:"min_confidence"`
	// MaxMatches caps the ranked candidate list (default: 10)
	MaxMatches int `yaml:"max_matches"`
	// ExperimentalMultiplier is applied to story rules marked experimental
	// without an explicit multiplier (default: 0.7)
	ExperimentalMultiplier float64 `yaml:"experimental_multiplier"`
	// SuggestionLimit caps "did you mean" suggestions (default: 3)
	SuggestionLimit int `yaml:"suggestion_limit"`
	// ChainCommas lets a comma followed by a verb start a new command
	ChainCommas bool `yaml:"chain_commas"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`
	// Format is console or json
	Format string `yaml:"format"`
	// Events selects which parser events are logged at debug level.
	Events EventsConfig `yaml:"events"`
}

// EventsConfig toggles parser observer events.
type EventsConfig struct {
	Tokenize           bool `yaml:"tokenize"`
	PatternMatch       bool `yaml:"pattern_match"`
	CandidateSelection bool `yaml:"candidate_selection"`
	ParseError         bool `yaml:"parse_error"`
}

// StoryConfig locates story files.
type StoryConfig struct {
	// Dir is the story directory (empty = built-in grammar only)
	Dir string `yaml:"dir"`
	// Pattern is a doublestar glob relative to Dir
	Pattern string `yaml:"pattern"`
}

// SessionConfig configures the play session.
type SessionConfig struct {
	Actor string `yaml:"actor"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	p := parser.DefaultConfig()
	return &Config{
		Parser: ParserConfig{
			MinConfidence:          p.MinConfidence,
			MaxMatches:             p.MaxMatches,
			ExperimentalMultiplier: 0.7,
			SuggestionLimit:        p.SuggestionLimit,
			ChainCommas:            p.ChainCommas,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Events: EventsConfig{ParseError: true},
		},
		Story: StoryConfig{
			Pattern: "**/*.lua",
		},
		Session: SessionConfig{
			Actor: "player",
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Parser.MinConfidence < 0 || c.Parser.MinConfidence > 1 {
		return fmt.Errorf("parser.min_confidence must be between 0 and 1")
	}
	if c.Parser.MaxMatches < 1 {
		return fmt.Errorf("parser.max_matches must be at least 1")
	}
	if c.Parser.ExperimentalMultiplier <= 0 || c.Parser.ExperimentalMultiplier > 1 {
		return fmt.Errorf("parser.experimental_multiplier must be in (0, 1]")
	}
	if c.Parser.SuggestionLimit < 0 {
		return fmt.Errorf("parser.suggestion_limit must not be negative")
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	if c.Story.Pattern == "" {
		return fmt.Errorf("story.pattern is required")
	}
	if c.Session.Actor == "" {
		return fmt.Errorf("session.actor is required")
	}
	return nil
}

// LoadFile loads configuration from a YAML file on top of the defaults.
// Unknown keys are an error.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return config, nil
}

// SaveFile saves configuration to a YAML file.
func (c *Config) SaveFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ParserOptions converts the parser section for parser.New.
func (c *Config) ParserOptions() parser.Config {
	return parser.Config{
		MinConfidence:   c.Parser.MinConfidence,
		MaxMatches:      c.Parser.MaxMatches,
		SuggestionLimit: c.Parser.SuggestionLimit,
		ChainCommas:     c.Parser.ChainCommas,
	}
}

// EventKinds lists the parser events enabled for logging. An empty result
// means no observer should be attached.
func (c *Config) EventKinds() []parser.EventKind {
	var kinds []parser.EventKind
	if c.Log.Events.Tokenize {
		kinds = append(kinds, parser.EventTokenize)
	}
	if c.Log.Events.PatternMatch {
		kinds = append(kinds, parser.EventPatternMatch)
	}
	if c.Log.Events.CandidateSelection {
		kinds = append(kinds, parser.EventCandidateSelection)
	}
	if c.Log.Events.ParseError {
		kinds = append(kinds, parser.EventParseError)
	}
	return kinds
}

// Logger builds a zap logger from the log settings. verbose forces debug.
func (c *Config) Logger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Log.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	lvl, err := zap.ParseAtomicLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	if verbose {
		lvl = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zc.Level = lvl
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

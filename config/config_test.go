package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/questparse/engine/parser"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0.1, cfg.Parser.MinConfidence)
	assert.Equal(t, 10, cfg.Parser.MaxMatches)
	assert.Equal(t, 0.7, cfg.Parser.ExperimentalMultiplier)
	assert.Equal(t, "**/*.lua", cfg.Story.Pattern)
	assert.Equal(t, "player", cfg.Session.Actor)
	assert.Equal(t, []parser.EventKind{parser.EventParseError}, cfg.EventKinds())

	if diff := cmp.Diff(parser.DefaultConfig(), cfg.ParserOptions()); diff != "" {
		t.Errorf("parser options mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"min confidence", func(c *Config) { c.Parser.MinConfidence = 1.5 }},
		{"max matches", func(c *Config) { c.Parser.MaxMatches = 0 }},
		{"experimental zero", func(c *Config) { c.Parser.ExperimentalMultiplier = 0 }},
		{"experimental above one", func(c *Config) { c.Parser.ExperimentalMultiplier = 1.2 }},
		{"suggestions", func(c *Config) { c.Parser.SuggestionLimit = -1 }},
		{"level", func(c *Config) { c.Log.Level = "chatty" }},
		{"format", func(c *Config) { c.Log.Format = "xml" }},
		{"pattern", func(c *Config) { c.Story.Pattern = "" }},
		{"actor", func(c *Config) { c.Session.Actor = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questparse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	path := writeFile(t, `
parser:
  max_matches: 3
  chain_commas: false
log:
  level: debug
  events:
    tokenize: true
story:
  dir: stories
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Parser.MaxMatches)
	assert.False(t, cfg.Parser.ChainCommas)
	assert.Equal(t, 0.1, cfg.Parser.MinConfidence, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "stories", cfg.Story.Dir)
	assert.Equal(t, "**/*.lua", cfg.Story.Pattern)
	assert.Equal(t, []parser.EventKind{parser.EventTokenize, parser.EventParseError}, cfg.EventKinds())
}

func TestLoadFileErrors(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorContains(t, err, "failed to read config file")
	})
	t.Run("unknown key", func(t *testing.T) {
		_, err := LoadFile(writeFile(t, "parser:\n  fuzzy: true\n"))
		assert.ErrorContains(t, err, "failed to parse config file")
	})
	t.Run("invalid value", func(t *testing.T) {
		_, err := LoadFile(writeFile(t, "log:\n  format: xml\n"))
		assert.ErrorContains(t, err, "log.format")
	})
	t.Run("empty file", func(t *testing.T) {
		cfg, err := LoadFile(writeFile(t, ""))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})
}

func TestSaveFileRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Session.Actor = "hero"
	cfg.Log.Format = "json"

	path := filepath.Join(t.TempDir(), "nested", "questparse.yaml")
	require.NoError(t, cfg.SaveFile(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLogger(t *testing.T) {
	cfg := DefaultConfig()
	logger, err := cfg.Logger(true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1), "verbose enables debug")

	logger, err = cfg.Logger(false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))
}

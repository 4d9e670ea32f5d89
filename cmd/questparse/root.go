package main

import (
	_ "embed"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nathoo/questparse/config"
	"github.com/nathoo/questparse/engine"
	"github.com/nathoo/questparse/engine/parser"
	"github.com/nathoo/questparse/engine/world"
	"github.com/nathoo/questparse/loader"
)

//go:embed demo.lua
var demoStory string

// app carries the state shared by every subcommand.
type app struct {
	configFile string
	storyDir   string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "questparse",
		Short: "questparse - natural-language command parser for interactive fiction",
		Long: `questparse turns player input such as "put the red ball in the box" into
structured commands, using a vocabulary, a grammar of patterns and a world
model to resolve what each noun phrase refers to.

Without --story the built-in demo story is used.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "config file (yaml)")
	root.PersistentFlags().StringVarP(&a.storyDir, "story", "s", "", "story directory (overrides story.dir)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newPlayCmd(a),
		newParseCmd(a),
		newRulesCmd(a),
		newVocabCmd(a),
		newCheckCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads configuration and builds the logger. Flags override file values.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg := config.DefaultConfig()
	if a.configFile != "" {
		loaded, err := config.LoadFile(a.configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if a.storyDir != "" {
		cfg.Story.Dir = a.storyDir
	}
	a.cfg = cfg

	logger, err := cfg.Logger(a.verbose)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	a.logger = logger
	return nil
}

// readStory loads the configured story directory, or the built-in demo.
func (a *app) readStory() (*loader.Story, error) {
	if a.cfg.Story.Dir == "" {
		return loader.LoadSource("demo.lua", demoStory)
	}
	return loader.Load(a.cfg.Story.Dir, a.cfg.Story.Pattern)
}

// loadStory reads the story and logs its warnings.
func (a *app) loadStory() (*loader.Story, error) {
	story, err := a.readStory()
	if err != nil {
		return nil, err
	}
	for _, w := range story.Warnings {
		a.logger.Warn("story warning", zap.String("warning", w))
	}
	a.logger.Debug("story loaded",
		zap.String("title", story.Defs.Game.Title),
		zap.Strings("files", story.Files),
		zap.Int("rooms", len(story.Defs.Rooms)),
		zap.Int("entities", len(story.Defs.Entities)),
		zap.Int("grammar", len(story.Grammar)),
	)
	return story, nil
}

// newParser builds a parser from config with the story applied.
func (a *app) newParser(story *loader.Story) (*parser.Parser, error) {
	p := parser.New(a.cfg.ParserOptions())
	if kinds := a.cfg.EventKinds(); len(kinds) > 0 {
		p.Observer = parser.LogObserver(a.logger.Named("parser"), kinds...)
	}
	if err := story.Apply(p, a.cfg.Parser.ExperimentalMultiplier); err != nil {
		return nil, fmt.Errorf("applying story: %w", err)
	}
	return p, nil
}

// newEngine wires story, parser and session together.
func (a *app) newEngine() (*engine.Engine, error) {
	story, err := a.loadStory()
	if err != nil {
		return nil, err
	}
	p, err := a.newParser(story)
	if err != nil {
		return nil, err
	}
	w := story.World()
	return engine.New(w, p, playerID(w, a.cfg.Session.Actor), a.logger.Named("session")), nil
}

// playerID returns the story's player actor, falling back to the
// configured actor ID.
func playerID(w *world.World, fallback string) string {
	for _, ent := range w.Defs.EntityList() {
		if ent.Actor != nil && ent.Actor.Player {
			return ent.ID
		}
	}
	return fallback
}

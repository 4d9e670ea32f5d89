// Package save implements JSON serialization of a parse session. A save holds
// the command log; loading resets the world and replays it, so pronouns,
// entity locations and the turn counter come back exactly as they were.
package save

import (
	"encoding/json"
	"fmt"

	"github.com/nathoo/questparse/engine"
)

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Version    string   `json:"version"`
	Game       string   `json:"game"`
	Actor      string   `json:"actor"`
	Turn       int      `json:"turn"`
	CommandLog []string `json:"command_log"`
}

// Save serializes the session to JSON bytes.
func Save(e *engine.Engine) ([]byte, error) {
	game := e.World.Defs.Game
	data := SaveData{
		Version:    game.Version,
		Game:       game.Title,
		Actor:      e.Actor,
		Turn:       e.Turn,
		CommandLog: e.CommandLog,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	// Ensure the log is never nil after load.
	if sd.CommandLog == nil {
		sd.CommandLog = []string{}
	}
	return &sd, nil
}

// ApplySave resets the session and replays the saved command log. It fails
// when the save belongs to another game or the replay does not reach the
// saved turn, which happens when the story changed since saving.
func ApplySave(e *engine.Engine, sd *SaveData) error {
	if title := e.World.Defs.Game.Title; sd.Game != title {
		return fmt.Errorf("save is for %q, not %q", sd.Game, title)
	}
	if sd.Actor != "" {
		e.Actor = sd.Actor
	}
	e.Reset()
	for _, input := range sd.CommandLog {
		e.Step(input)
	}
	if e.Turn != sd.Turn {
		return fmt.Errorf("replay reached turn %d, save is at turn %d", e.Turn, sd.Turn)
	}
	return nil
}

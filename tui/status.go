package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// roomDisplayName returns the room's declared name, or derives one from its
// ID: "great_hall" -> "Great Hall".
func (m Model) roomDisplayName(id string) string {
	if room, ok := m.engine.World.Defs.Rooms[id]; ok && room.Name != "" && room.Name != id {
		return room.Name
	}
	return titleCase(id)
}

func titleCase(id string) string {
	words := strings.Split(id, "_")
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// renderStatusBar produces a full-width inverted status line showing
// current room, exits, carried items and turn count.
func (m Model) renderStatusBar() string {
	e := m.engine
	loc := e.Location()

	exits := e.World.Exits(loc)
	dirs := make([]string, 0, len(exits))
	for dir := range exits {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	left := fmt.Sprintf(" %s | Exits: %s", m.roomDisplayName(loc), strings.Join(dirs, ","))
	right := fmt.Sprintf("T:%d ", e.Turn)

	// Show carried items if they fit, otherwise just count.
	if carried := e.World.CarriedEntities(e.Actor); len(carried) > 0 {
		names := make([]string, 0, len(carried))
		for _, ent := range carried {
			names = append(names, ent.Name)
		}
		candidate := fmt.Sprintf("Inv: %s | T:%d ", strings.Join(names, ", "), e.Turn)
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		} else {
			right = fmt.Sprintf("Inv: %d | T:%d ", len(carried), e.Turn)
		}
	}
	if m.workbench.Trace {
		right = "trace | " + right
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}

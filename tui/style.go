package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleRoomDesc = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleYouSee = lipgloss.NewStyle().
			Bold(true)

	styleExits = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleAction = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	styleSlots = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117"))

	styleNotice = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindRoomDesc lineKind = iota
	kindYouSee
	kindExits
	kindCommand
	kindNotice
	kindError
	kindTrace
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case isCommandLine(line):
		return kindCommand
	case strings.HasPrefix(line, "(") && strings.HasSuffix(line, ")"):
		return kindNotice
	case strings.HasPrefix(line, "You see:"):
		return kindYouSee
	case strings.HasPrefix(line, "Exits:"):
		return kindExits
	case strings.HasPrefix(line, "You can't"),
		strings.HasPrefix(line, "Go where?"),
		strings.HasPrefix(line, "There is nothing to repeat"):
		return kindError
	default:
		return kindRoomDesc
	}
}

// isCommandLine reports whether line is a parsed-command summary such as
// "[take] object=lamp".
func isCommandLine(line string) bool {
	if !strings.HasPrefix(line, "[") {
		return false
	}
	end := strings.Index(line, "]")
	if end < 2 {
		return false
	}
	return !strings.ContainsAny(line[1:end], " [")
}

// styledCommand renders the action tag and its slot summary separately.
func styledCommand(line string) string {
	end := strings.Index(line, "]")
	if end < 0 {
		return styleRoomDesc.Render(line)
	}
	head := styleAction.Render(line[:end+1])
	if rest := line[end+1:]; rest != "" {
		return head + styleSlots.Render(rest)
	}
	return head
}

// styledYouSee renders "You see: item1, item2." with item names bold.
func styledYouSee(line string) string {
	const prefix = "You see: "
	if !strings.HasPrefix(line, prefix) {
		return styleRoomDesc.Render(line)
	}
	return styleRoomDesc.Render(prefix) + styleYouSee.Render(line[len(prefix):])
}

// styledSystemMsg renders a workbench message in gray.
func styledSystemMsg(text string) string {
	return styleSystem.Render(text)
}

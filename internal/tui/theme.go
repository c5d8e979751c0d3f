// Package tui renders playground and monitor views as bubbletea programs.
//
// Models never talk to the network directly. They render state snapshots
// pushed in as tea messages and hand user input to a Sender.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vango-go/voicedesk/pkg/live"
	"github.com/vango-go/voicedesk/pkg/state"
)

// Theme is the color palette shared by both views. Colors are ANSI 256
// codes so the views render on plain terminals.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Transcript roles.
	UserText       lipgloss.Color
	AssistantText  lipgloss.Color
	SystemText     lipgloss.Color
	ToolText       lipgloss.Color
	EscalationText lipgloss.Color

	// Connection and log severity.
	Healthy  lipgloss.Color
	Warning  lipgloss.Color
	Critical lipgloss.Color

	HeaderForeground lipgloss.Color
	HeaderBackground lipgloss.Color
	BorderColor      lipgloss.Color
}

// DefaultTheme is a dark palette.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("243"),

	UserText:       lipgloss.Color("75"),
	AssistantText:  lipgloss.Color("252"),
	SystemText:     lipgloss.Color("243"),
	ToolText:       lipgloss.Color("179"),
	EscalationText: lipgloss.Color("203"),

	Healthy:  lipgloss.Color("78"),
	Warning:  lipgloss.Color("214"),
	Critical: lipgloss.Color("196"),

	HeaderForeground: lipgloss.Color("255"),
	HeaderBackground: lipgloss.Color("237"),
	BorderColor:      lipgloss.Color("240"),
}

// RoleColor returns the transcript color for role. Unknown roles render as
// normal text.
func (theme Theme) RoleColor(role state.Role) lipgloss.Color {
	switch role {
	case state.RoleUser:
		return theme.UserText
	case state.RoleAssistant:
		return theme.AssistantText
	case state.RoleSystem:
		return theme.SystemText
	case state.RoleTool:
		return theme.ToolText
	case state.RoleEscalation:
		return theme.EscalationText
	default:
		return theme.NormalText
	}
}

// ConnColor returns the indicator color for a connection state.
func (theme Theme) ConnColor(conn live.State) lipgloss.Color {
	switch conn {
	case live.StateOpen:
		return theme.Healthy
	case live.StateConnecting:
		return theme.Warning
	case live.StateError:
		return theme.Critical
	default:
		return theme.FaintText
	}
}

// LogColor returns the color for a monitor log entry.
func (theme Theme) LogColor(kind state.LogKind) lipgloss.Color {
	switch kind {
	case state.LogCritical:
		return theme.Critical
	case state.LogAlert:
		return theme.EscalationText
	case state.LogTool, state.LogResult:
		return theme.ToolText
	case state.LogSwitch:
		return theme.UserText
	default:
		return theme.NormalText
	}
}

func (theme Theme) header() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(theme.HeaderForeground).
		Background(theme.HeaderBackground).
		Bold(true).
		Padding(0, 1)
}

func (theme Theme) faint() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(theme.FaintText)
}

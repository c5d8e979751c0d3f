package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vango-go/voicedesk/pkg/core/types"
	"github.com/vango-go/voicedesk/pkg/state"
)

// MonitorMsg carries a monitor snapshot into the tea loop.
type MonitorMsg struct {
	State state.MonitorState
}

// MonitorModel is the read-only live session view: transcript with the
// in-flight assistant chunk on the left, newest-first event log on the
// right.
type MonitorModel struct {
	stream  Stream
	updates <-chan state.MonitorState
	theme   Theme
	keys    KeyMap

	state      state.MonitorState
	transcript viewport.Model
	err        error

	width  int
	height int
	ready  bool
}

// NewMonitorModel returns a monitor view over updates. stream may be nil.
func NewMonitorModel(stream Stream, updates <-chan state.MonitorState) MonitorModel {
	return MonitorModel{
		stream:  stream,
		updates: updates,
		theme:   DefaultTheme,
		keys:    DefaultKeyMap,
	}
}

// Init implements tea.Model.
func (model MonitorModel) Init() tea.Cmd {
	cmds := []tea.Cmd{listen(model.updates, wrapMonitor)}
	if model.stream != nil {
		cmds = append(cmds, waitDone(model.stream.Done(), model.stream.Wait))
	}
	return tea.Batch(cmds...)
}

func wrapMonitor(s state.MonitorState) tea.Msg { return MonitorMsg{State: s} }

// Update implements tea.Model.
func (model MonitorModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		if !model.ready {
			model.transcript = viewport.New(model.transcriptWidth(), model.bodyHeight())
			model.ready = true
		} else {
			model.transcript.Width = model.transcriptWidth()
			model.transcript.Height = model.bodyHeight()
		}
		model.refresh(true)
		return model, nil

	case MonitorMsg:
		model.state = message.State
		model.refresh(false)
		return model, listen(model.updates, wrapMonitor)

	case doneMsg:
		model.err = message.err
		return model, tea.Quit

	case tea.KeyMsg:
		switch {
		case key.Matches(message, model.keys.Quit), key.Matches(message, model.keys.QuitIdle):
			return model, tea.Quit
		case key.Matches(message, model.keys.PageUp):
			model.transcript.HalfViewUp()
		case key.Matches(message, model.keys.PageDown):
			model.transcript.HalfViewDown()
		}
	}
	return model, nil
}

// State returns the last rendered snapshot.
func (model MonitorModel) State() state.MonitorState { return model.state }

// Err returns the error the stream ended with, if any.
func (model MonitorModel) Err() error { return model.err }

func (model MonitorModel) transcriptWidth() int {
	return model.width * 3 / 5
}

func (model MonitorModel) logWidth() int {
	if w := model.width - model.transcriptWidth() - 1; w > 0 {
		return w
	}
	return 0
}

func (model MonitorModel) bodyHeight() int {
	if h := model.height - 2; h > 1 {
		return h
	}
	return 1
}

func (model *MonitorModel) refresh(force bool) {
	if !model.ready {
		return
	}
	follow := force || model.transcript.AtBottom()
	model.transcript.SetContent(model.renderTranscript())
	if follow {
		model.transcript.GotoBottom()
	}
}

// View implements tea.Model.
func (model MonitorModel) View() string {
	if !model.ready {
		return "Connecting..."
	}
	divider := lipgloss.NewStyle().
		Foreground(model.theme.BorderColor).
		Render(strings.TrimSuffix(strings.Repeat("│\n", model.bodyHeight()), "\n"))
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(model.transcriptWidth()).Render(model.transcript.View()),
		divider,
		model.renderLog(),
	)
	footer := model.theme.faint().Render(model.keys.QuitIdle.Help().Key + " " + model.keys.QuitIdle.Help().Desc)
	return lipgloss.JoinVertical(lipgloss.Left, model.renderHeader(), body, footer)
}

func (model MonitorModel) renderHeader() string {
	s := model.state
	title := s.SessionID
	if title == "" {
		title = "all sessions"
	}
	parts := []string{model.theme.header().Render(title)}
	if s.Details != nil && s.Details.AgentID != "" {
		parts = append(parts, "agent "+s.Details.AgentID)
	}
	if s.Status != "" {
		style := lipgloss.NewStyle().Foreground(model.theme.Healthy)
		if s.Status == types.SessionEscalated {
			style = lipgloss.NewStyle().Foreground(model.theme.EscalationText).Bold(true)
		}
		parts = append(parts, style.Render(strings.ToUpper(s.Status)))
	}
	if s.RiskScore > 0 {
		parts = append(parts, lipgloss.NewStyle().Foreground(model.theme.Critical).Render(fmt.Sprintf("risk %.2f", s.RiskScore)))
	}
	parts = append(parts,
		lipgloss.NewStyle().Foreground(model.theme.ConnColor(s.Conn)).Render("● "+string(s.Conn)),
		model.theme.faint().Render(fmt.Sprintf("%d events", s.Events)),
	)
	return strings.Join(parts, " ")
}

func (model MonitorModel) renderTranscript() string {
	s := model.state
	width := model.transcriptWidth()
	var blocks []string
	for _, observed := range s.Observed {
		line := observed.SessionID + " started with " + observed.AgentName
		if observed.CallerID != "" {
			line += " (" + observed.CallerID + ")"
		}
		if observed.Status == types.SessionEscalated {
			line += " " + strings.ToUpper(observed.Status)
		}
		blocks = append(blocks, model.theme.faint().Render(line))
	}
	for _, turn := range s.Messages {
		role := state.Role(turn.Role)
		msg := state.Message{Role: role, Content: turn.Content}
		if turn.SessionID != "" {
			msg.Content = "[" + turn.SessionID + "] " + turn.Content
		}
		blocks = append(blocks, renderMessage(model.theme, msg, "agent", width))
	}
	if s.CurrentChunk != "" {
		chunk := state.Message{Role: state.RoleAssistant, Content: s.CurrentChunk + "▌"}
		blocks = append(blocks, renderMessage(model.theme, chunk, "agent", width))
	}
	if len(blocks) == 0 {
		return model.theme.faint().Render("Waiting for conversation...")
	}
	return strings.Join(blocks, "\n")
}

func (model MonitorModel) renderLog() string {
	width := model.logWidth()
	if width == 0 {
		return ""
	}
	limit := model.bodyHeight()
	lines := make([]string, 0, limit)
	for _, entry := range model.state.Logs {
		if len(lines) >= limit {
			break
		}
		style := lipgloss.NewStyle().Foreground(model.theme.LogColor(entry.Kind))
		line := string(entry.Kind) + " " + entry.Content
		if entry.Detail != "" {
			line += " " + model.theme.faint().Render(entry.Detail)
		}
		lines = append(lines, style.MaxWidth(width).Render(line))
	}
	if len(lines) == 0 {
		lines = append(lines, model.theme.faint().Render("No events"))
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

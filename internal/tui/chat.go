package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vango-go/voicedesk/pkg/core/types"
	"github.com/vango-go/voicedesk/pkg/state"
)

// Sender delivers one user utterance. *desk.PlaygroundSession satisfies
// it.
type Sender interface {
	SendText(text string) (string, error)
}

// Stream is the lifecycle of the connection behind a view.
type Stream interface {
	Done() <-chan struct{}
	Wait() error
}

// PlaygroundMsg carries a playground snapshot into the tea loop.
type PlaygroundMsg struct {
	State state.PlaygroundState
}

type sendResultMsg struct{ err error }

// chromeLines is the number of fixed lines around the transcript: header,
// input line and footer.
const chromeLines = 3

// ChatModel is the playground view: a scrolling transcript above a
// single input line.
type ChatModel struct {
	sender  Sender
	stream  Stream
	updates <-chan state.PlaygroundState
	theme   Theme
	keys    KeyMap

	state    state.PlaygroundState
	viewport viewport.Model
	input    []rune
	notice   string
	err      error

	width  int
	height int
	ready  bool
}

// NewChatModel returns a chat view that sends through sender and renders
// snapshots from updates. stream may be nil.
func NewChatModel(sender Sender, stream Stream, updates <-chan state.PlaygroundState) ChatModel {
	return ChatModel{
		sender:  sender,
		stream:  stream,
		updates: updates,
		theme:   DefaultTheme,
		keys:    DefaultKeyMap,
	}
}

// Init implements tea.Model.
func (model ChatModel) Init() tea.Cmd {
	cmds := []tea.Cmd{listen(model.updates, wrapPlayground)}
	if model.stream != nil {
		cmds = append(cmds, waitDone(model.stream.Done(), model.stream.Wait))
	}
	return tea.Batch(cmds...)
}

func wrapPlayground(s state.PlaygroundState) tea.Msg { return PlaygroundMsg{State: s} }

// Update implements tea.Model.
func (model ChatModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		if !model.ready {
			model.viewport = viewport.New(message.Width, bodyHeight(message.Height))
			model.ready = true
		} else {
			model.viewport.Width = message.Width
			model.viewport.Height = bodyHeight(message.Height)
		}
		model.refresh(true)
		return model, nil

	case PlaygroundMsg:
		model.state = message.State
		model.refresh(false)
		return model, listen(model.updates, wrapPlayground)

	case sendResultMsg:
		if message.err != nil {
			model.notice = "send failed: " + message.err.Error()
		} else {
			model.notice = ""
		}
		return model, nil

	case doneMsg:
		model.err = message.err
		return model, tea.Quit

	case tea.KeyMsg:
		return model.handleKey(message)
	}
	return model, nil
}

func (model ChatModel) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit
	case key.Matches(message, model.keys.Send):
		text := strings.TrimSpace(string(model.input))
		if text == "" {
			return model, nil
		}
		model.input = nil
		return model, sendCmd(model.sender, text)
	case key.Matches(message, model.keys.PageUp):
		model.viewport.HalfViewUp()
		return model, nil
	case key.Matches(message, model.keys.PageDown):
		model.viewport.HalfViewDown()
		return model, nil
	case message.Type == tea.KeyBackspace:
		if n := len(model.input); n > 0 {
			model.input = model.input[:n-1]
		}
		return model, nil
	case message.Type == tea.KeyRunes || message.Type == tea.KeySpace:
		if message.Type == tea.KeySpace {
			model.input = append(model.input, ' ')
		} else {
			model.input = append(model.input, message.Runes...)
		}
		return model, nil
	}
	return model, nil
}

func sendCmd(sender Sender, text string) tea.Cmd {
	return func() tea.Msg {
		_, err := sender.SendText(text)
		return sendResultMsg{err: err}
	}
}

// Input returns the text typed so far.
func (model ChatModel) Input() string { return string(model.input) }

// State returns the last rendered snapshot.
func (model ChatModel) State() state.PlaygroundState { return model.state }

// Err returns the error the stream ended with, if any.
func (model ChatModel) Err() error { return model.err }

func bodyHeight(total int) int {
	if h := total - chromeLines; h > 1 {
		return h
	}
	return 1
}

// refresh re-renders the transcript and follows the tail when the user has
// not scrolled away from it.
func (model *ChatModel) refresh(force bool) {
	if !model.ready {
		return
	}
	follow := force || model.viewport.AtBottom()
	model.viewport.SetContent(renderTranscript(model.theme, model.state, model.width))
	if follow {
		model.viewport.GotoBottom()
	}
}

// View implements tea.Model.
func (model ChatModel) View() string {
	if !model.ready {
		return "Connecting..."
	}
	sections := []string{
		model.renderHeader(),
		model.viewport.View(),
		model.renderInput(),
		model.renderFooter(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (model ChatModel) renderHeader() string {
	name := model.state.AgentName
	if name == "" {
		name = model.state.AgentID
	}
	conn := lipgloss.NewStyle().Foreground(model.theme.ConnColor(model.state.Conn)).Render("● " + string(model.state.Conn))
	title := model.theme.header().Render(name)
	parts := []string{title, conn}
	if model.state.Status == types.SessionEscalated {
		parts = append(parts, lipgloss.NewStyle().Foreground(model.theme.EscalationText).Bold(true).Render("ESCALATED"))
	}
	if model.state.Responding {
		parts = append(parts, model.theme.faint().Render("responding..."))
	}
	return strings.Join(parts, " ")
}

func (model ChatModel) renderInput() string {
	prompt := lipgloss.NewStyle().Foreground(model.theme.UserText).Bold(true).Render("> ")
	cursor := lipgloss.NewStyle().Reverse(true).Render(" ")
	return prompt + string(model.input) + cursor
}

func (model ChatModel) renderFooter() string {
	if model.notice != "" {
		return lipgloss.NewStyle().Foreground(model.theme.Critical).Render(model.notice)
	}
	help := model.keys.Send.Help().Key + " " + model.keys.Send.Help().Desc + " · " +
		model.keys.Quit.Help().Key + " " + model.keys.Quit.Help().Desc
	return model.theme.faint().Render(help)
}

func renderTranscript(theme Theme, s state.PlaygroundState, width int) string {
	if len(s.Messages) == 0 {
		return theme.faint().Render("No messages yet. Type below to talk to the agent.")
	}
	agent := s.AgentName
	if agent == "" {
		agent = "agent"
	}
	blocks := make([]string, 0, len(s.Messages))
	for _, msg := range s.Messages {
		blocks = append(blocks, renderMessage(theme, msg, agent, width))
	}
	return strings.Join(blocks, "\n")
}

func renderMessage(theme Theme, msg state.Message, agent string, width int) string {
	color := theme.RoleColor(msg.Role)
	label := roleLabel(msg.Role, agent)
	labelStyle := lipgloss.NewStyle().Foreground(color).Bold(true)

	body := msg.Content
	switch msg.Status {
	case state.SendPending:
		body += theme.faint().Render(" (sending)")
	case state.SendFailed:
		failed := " (failed)"
		if msg.Error != "" {
			failed = " (failed: " + msg.Error + ")"
		}
		body += lipgloss.NewStyle().Foreground(theme.Critical).Render(failed)
	}

	text := lipgloss.NewStyle().Foreground(color)
	if width > 0 {
		text = text.Width(width)
	}
	return text.Render(labelStyle.Render(label) + " " + body)
}

func roleLabel(role state.Role, agent string) string {
	switch role {
	case state.RoleUser:
		return "you:"
	case state.RoleAssistant:
		return agent + ":"
	case state.RoleTool:
		return "tool:"
	case state.RoleEscalation:
		return "!!"
	default:
		return "·"
	}
}

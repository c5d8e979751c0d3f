package state

import (
	"fmt"
	"time"

	"github.com/vango-go/voicedesk/pkg/core/types"
	"github.com/vango-go/voicedesk/pkg/live"
	"github.com/vango-go/voicedesk/pkg/live/protocol"
)

// Role labels a transcript message.
type Role string

const (
	RoleUser       Role = "user"
	RoleAssistant  Role = "assistant"
	RoleSystem     Role = "system"
	RoleTool       Role = "tool"
	RoleEscalation Role = "escalation"
)

// SendStatus tracks an optimistic user message.
type SendStatus string

const (
	SendPending SendStatus = "pending"
	SendSent    SendStatus = "sent"
	SendFailed  SendStatus = "failed"
)

type Message struct {
	ID      string
	Role    Role
	Content string
	Status  SendStatus
	Error   string
	At      time.Time
}

// PlaygroundState is the agent chat view.
type PlaygroundState struct {
	AgentID    string
	SessionID  string
	AgentName  string
	Status     string
	Messages   []Message
	Connected  bool
	Conn       live.State
	Responding bool
	AudioCount int
	Sessions   int
}

// PlaygroundAction is implemented by the playground actions below.
type PlaygroundAction interface{ playgroundAction() }

// UserSent records an optimistic user message before it is written.
type UserSent struct {
	ID   string
	Text string
	At   time.Time
}

// SendAcked marks a message as written to the socket.
type SendAcked struct{ ID string }

// SendErrored marks a message that could not be written. The message stays
// in the transcript flagged as failed; nothing is resent automatically.
type SendErrored struct {
	ID  string
	Err error
}

type FrameReceived struct {
	Frame protocol.Frame
	At    time.Time
}

// ConnectionChanged reports a connection manager state change. It is
// accepted by both the playground and monitor reducers.
type ConnectionChanged struct {
	State live.State
	Err   error
	At    time.Time
}

func (UserSent) playgroundAction()          {}
func (SendAcked) playgroundAction()         {}
func (SendErrored) playgroundAction()       {}
func (FrameReceived) playgroundAction()     {}
func (ConnectionChanged) playgroundAction() {}

// NewPlaygroundStore returns a store for a chat with agentID.
func NewPlaygroundStore(agentID string) *Store[PlaygroundState, PlaygroundAction] {
	return New(PlaygroundState{AgentID: agentID, Status: types.SessionActive, Conn: live.StateClosed}, ReducePlayground)
}

func ReducePlayground(s PlaygroundState, action PlaygroundAction) PlaygroundState {
	switch a := action.(type) {
	case UserSent:
		s.Messages = appendMessage(s.Messages, Message{ID: a.ID, Role: RoleUser, Content: a.Text, Status: SendPending, At: a.At})
	case SendAcked:
		s.Messages = updateMessage(s.Messages, a.ID, func(m *Message) {
			m.Status = SendSent
		})
	case SendErrored:
		s.Messages = updateMessage(s.Messages, a.ID, func(m *Message) {
			m.Status = SendFailed
			if a.Err != nil {
				m.Error = a.Err.Error()
			}
		})
	case FrameReceived:
		return reducePlaygroundFrame(s, a.Frame, a.At)
	case ConnectionChanged:
		return reducePlaygroundConnection(s, a)
	}
	return s
}

func reducePlaygroundFrame(s PlaygroundState, frame protocol.Frame, at time.Time) PlaygroundState {
	switch f := frame.(type) {
	case protocol.SessionStart:
		if f.SessionID != s.SessionID {
			s.Status = types.SessionActive
		}
		s.SessionID = f.SessionID
		s.AgentName = f.AgentName
		s.Sessions++
		s.Messages = appendMessage(s.Messages, Message{Role: RoleSystem, Content: "Session started with " + f.AgentName, At: at})
	case protocol.TextChunk:
		if n := len(s.Messages); n > 0 && s.Messages[n-1].Role == RoleAssistant {
			last := s.Messages[n-1]
			last.Content += f.Text
			s.Messages = replaceLast(s.Messages, last)
		} else {
			s.Messages = appendMessage(s.Messages, Message{Role: RoleAssistant, Content: f.Text, At: at})
		}
	case protocol.Audio:
		s.AudioCount++
	case protocol.ToolCall:
		name := f.Name
		if name == "" {
			name = "unknown"
		}
		s.Messages = appendMessage(s.Messages, Message{
			Role:    RoleTool,
			Content: fmt.Sprintf("Calling tool: %s\nArgs: %s", name, f.ArgumentsText()),
			At:      at,
		})
	case protocol.IntentDetected:
		s.Messages = appendMessage(s.Messages, Message{Role: RoleSystem, Content: "Intent detected: " + f.Intent, At: at})
	case protocol.AgentSwitch:
		s.Messages = appendMessage(s.Messages, Message{
			Role:    RoleSystem,
			Content: fmt.Sprintf("Routing from %s → %s\nReason: %s", f.From, f.To, f.Reason),
			At:      at,
		})
		s.AgentName = f.To
	case protocol.Escalation:
		s.Status = types.SessionEscalated
		s.Messages = appendMessage(s.Messages, Message{Role: RoleEscalation, Content: "Escalating to human agent\nReason: " + f.Reason, At: at})
	case protocol.Error:
		s.Messages = appendMessage(s.Messages, Message{Role: RoleSystem, Content: "Error: " + f.Message, At: at})
	case protocol.Transcription:
		if f.Text != "" {
			s.Messages = appendMessage(s.Messages, Message{Role: RoleUser, Content: f.Text, Status: SendSent, At: at})
		}
	case protocol.ResponseStart:
		s.Responding = true
	case protocol.ResponseEnd:
		s.Responding = false
	}
	return s
}

func reducePlaygroundConnection(s PlaygroundState, a ConnectionChanged) PlaygroundState {
	prev := s.Conn
	s.Conn = a.State
	s.Connected = a.State == live.StateOpen
	if a.State != live.StateOpen {
		s.Responding = false
	}
	if prev == a.State {
		return s
	}
	switch a.State {
	case live.StateClosed:
		text := "Disconnected"
		if a.Err != nil {
			text += ": " + a.Err.Error()
		}
		s.Messages = appendMessage(s.Messages, Message{Role: RoleSystem, Content: text, At: a.At})
	case live.StateError:
		text := "Connection lost"
		if a.Err != nil {
			text += ": " + a.Err.Error()
		}
		s.Messages = appendMessage(s.Messages, Message{Role: RoleSystem, Content: text, At: a.At})
	}
	return s
}

// appendMessage copies before appending so earlier snapshots keep their
// backing array.
func appendMessage(msgs []Message, m Message) []Message {
	out := make([]Message, len(msgs), len(msgs)+1)
	copy(out, msgs)
	return append(out, m)
}

func replaceLast(msgs []Message, m Message) []Message {
	out := make([]Message, len(msgs))
	copy(out, msgs)
	out[len(out)-1] = m
	return out
}

func updateMessage(msgs []Message, id string, fn func(*Message)) []Message {
	for i := range msgs {
		if msgs[i].ID != id || id == "" {
			continue
		}
		out := make([]Message, len(msgs))
		copy(out, msgs)
		fn(&out[i])
		return out
	}
	return msgs
}

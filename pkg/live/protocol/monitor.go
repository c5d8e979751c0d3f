package protocol

import (
	"encoding/json"

	"github.com/vango-go/voicedesk/pkg/core/types"
)

// Monitor-only frame types. Shared names reuse the playground constants.
const (
	TypeInitialState    = "initial_state"
	TypeToolResult      = "tool_result"
	TypeComplianceAlert = "compliance_alert"
)

// MonitorEvent is the envelope every monitoring frame arrives in. Timestamp
// is the backend's event-loop clock and is only meaningful for ordering.
type MonitorEvent struct {
	SessionID string          `json:"session_id"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp float64         `json:"timestamp"`
	Frame     Frame           `json:"-"`
}

func (e MonitorEvent) FrameType() string { return e.Type }

type InitialState struct {
	Session types.Session
}

func (InitialState) FrameType() string { return TypeInitialState }

type MonitorSessionStart struct {
	AgentID   string  `json:"agent_id"`
	AgentName string  `json:"agent_name"`
	CallerID  *string `json:"caller_id"`
}

func (MonitorSessionStart) FrameType() string { return TypeSessionStart }

type MonitorTranscription struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

func (MonitorTranscription) FrameType() string { return TypeTranscription }

type MonitorTextChunk struct {
	Text string `json:"text"`
}

func (MonitorTextChunk) FrameType() string { return TypeTextChunk }

type MonitorIntent struct {
	Intent string `json:"intent"`
}

func (MonitorIntent) FrameType() string { return TypeIntentDetected }

type MonitorToolCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

func (MonitorToolCall) FrameType() string { return TypeToolCall }

// ArgumentsText renders Arguments for display.
func (f MonitorToolCall) ArgumentsText() string {
	return normalizeRaw(f.Arguments)
}

type ToolResult struct {
	Name   string          `json:"name"`
	Result json.RawMessage `json:"result"`
}

func (ToolResult) FrameType() string { return TypeToolResult }

// ResultText renders Result for display.
func (f ToolResult) ResultText() string {
	return normalizeRaw(f.Result)
}

type MonitorAgentSwitch struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

func (MonitorAgentSwitch) FrameType() string { return TypeAgentSwitch }

type MonitorEscalation struct {
	Reason string `json:"reason"`
}

func (MonitorEscalation) FrameType() string { return TypeEscalation }

type ComplianceAlert struct {
	RiskScore float64 `json:"risk_score"`
}

func (ComplianceAlert) FrameType() string { return TypeComplianceAlert }

var monitorDecoders = map[string]decoder{
	TypeInitialState:    decodeInitialState,
	TypeSessionStart:    decodeAs[MonitorSessionStart],
	TypeTranscription:   decodeAs[MonitorTranscription],
	TypeTextChunk:       decodeAs[MonitorTextChunk],
	TypeIntentDetected:  decodeAs[MonitorIntent],
	TypeToolCall:        decodeAs[MonitorToolCall],
	TypeToolResult:      decodeAs[ToolResult],
	TypeAgentSwitch:     decodeAs[MonitorAgentSwitch],
	TypeEscalation:      decodeAs[MonitorEscalation],
	TypeComplianceAlert: decodeAs[ComplianceAlert],
}

func decodeInitialState(data []byte) (Frame, error) {
	var session types.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return InitialState{Session: session}, nil
}

// DecodeMonitor decodes one monitoring frame. The typed payload decoded
// from Data is stored in the returned event's Frame field; unknown types
// yield an Unknown payload.
func DecodeMonitor(data []byte) (MonitorEvent, error) {
	typ, err := peekType(data)
	if err != nil {
		return MonitorEvent{}, err
	}
	var wire struct {
		SessionID string          `json:"session_id"`
		Data      json.RawMessage `json:"data"`
		Timestamp json.RawMessage `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return MonitorEvent{}, badFrame("invalid monitoring envelope", "")
	}
	event := MonitorEvent{SessionID: wire.SessionID, Type: typ, Data: wire.Data}
	// Non-numeric timestamps are dropped rather than failing the frame.
	_ = json.Unmarshal(wire.Timestamp, &event.Timestamp)
	payload := wire.Data
	if len(payload) == 0 || string(payload) == "null" {
		payload = json.RawMessage("{}")
	}
	frame, err := decodeWith(monitorDecoders, typ, payload)
	if err != nil {
		return MonitorEvent{}, err
	}
	if unknown, ok := frame.(Unknown); ok {
		unknown.Raw = append(json.RawMessage(nil), data...)
		frame = unknown
	}
	if initial, ok := frame.(InitialState); ok && event.SessionID == "" {
		event.SessionID = initial.Session.SessionID
	}
	event.Frame = frame
	return event, nil
}

package protocol

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Playground inbound frame types.
const (
	TypeSessionStart   = "session_start"
	TypeTextChunk      = "text_chunk"
	TypeAudio          = "audio"
	TypeToolCall       = "tool_call"
	TypeIntentDetected = "intent_detected"
	TypeAgentSwitch    = "agent_switch"
	TypeEscalation     = "escalation"
	TypeError          = "error"
	TypeTranscription  = "transcription"
	TypeResponseStart  = "start_response"
	TypeResponseEnd    = "end_response"
)

// CloseAgentNotFound is the close code the playground endpoint uses when
// the requested agent does not exist.
const CloseAgentNotFound = 4004

type SessionStart struct {
	SessionID string `json:"session_id"`
	AgentName string `json:"agent_name"`
}

func (SessionStart) FrameType() string { return TypeSessionStart }

type TextChunk struct {
	Text string `json:"text"`
}

func (TextChunk) FrameType() string { return TypeTextChunk }

// Audio is one synthesized speech segment. Data holds the decoded bytes of
// the base64 "data" field (MP3 from the backend TTS).
type Audio struct {
	Data []byte
}

func (Audio) FrameType() string { return TypeAudio }

// UnmarshalJSON decodes the base64 payload.
func (a *Audio) UnmarshalJSON(data []byte) error {
	var wire struct {
		Data string `json:"data"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(wire.Data))
	if err != nil {
		return fmt.Errorf("decode audio data: %w", err)
	}
	a.Data = decoded
	return nil
}

// ToolCall announces a tool invocation. The backend may omit Name on the
// playground socket.
type ToolCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

func (ToolCall) FrameType() string { return TypeToolCall }

// ArgumentsText renders Arguments for display. String-encoded arguments are
// unquoted; absent arguments render as "{}".
func (f ToolCall) ArgumentsText() string {
	return normalizeRaw(f.Arguments)
}

type IntentDetected struct {
	Intent string `json:"intent"`
}

func (IntentDetected) FrameType() string { return TypeIntentDetected }

type AgentSwitch struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

func (AgentSwitch) FrameType() string { return TypeAgentSwitch }

type Escalation struct {
	Reason string `json:"reason"`
}

func (Escalation) FrameType() string { return TypeEscalation }

type Error struct {
	Message string `json:"message"`
}

func (Error) FrameType() string { return TypeError }

// Transcription echoes the speech-to-text result of an audio frame.
type Transcription struct {
	Text string `json:"text"`
}

func (Transcription) FrameType() string { return TypeTranscription }

type ResponseStart struct{}

func (ResponseStart) FrameType() string { return TypeResponseStart }

type ResponseEnd struct{}

func (ResponseEnd) FrameType() string { return TypeResponseEnd }

var playgroundDecoders = map[string]decoder{
	TypeSessionStart:   decodeAs[SessionStart],
	TypeTextChunk:      decodeAs[TextChunk],
	TypeAudio:          decodeAs[Audio],
	TypeToolCall:       decodeAs[ToolCall],
	TypeIntentDetected: decodeAs[IntentDetected],
	TypeAgentSwitch:    decodeAs[AgentSwitch],
	TypeEscalation:     decodeAs[Escalation],
	TypeError:          decodeAs[Error],
	TypeTranscription:  decodeAs[Transcription],
	TypeResponseStart:  decodeAs[ResponseStart],
	TypeResponseEnd:    decodeAs[ResponseEnd],
}

// DecodePlayground decodes one inbound playground frame.
func DecodePlayground(data []byte) (Frame, error) {
	typ, err := peekType(data)
	if err != nil {
		return nil, err
	}
	return decodeWith(playgroundDecoders, typ, data)
}

// ClientText is the outbound text frame.
type ClientText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ClientAudio is the outbound audio frame; Audio is base64.
type ClientAudio struct {
	Audio string `json:"audio"`
}

// NewClientText builds a text frame.
func NewClientText(text string) ClientText {
	return ClientText{Type: "text", Text: text}
}

// NewClientAudio base64-encodes recorded audio into an outbound frame.
func NewClientAudio(audio []byte) ClientAudio {
	return ClientAudio{Audio: base64.StdEncoding.EncodeToString(audio)}
}

// Package protocol implements the JSON frames of the two backend WebSocket
// endpoints: the agent playground (/orchestrator/ws/{agent_id}) and the
// read-only monitoring feeds (/monitoring/stream/...).
package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeError reports a frame that could not be decoded.
type DecodeError struct {
	Code    string
	Message string
	Param   string
}

func (e *DecodeError) Error() string {
	if e == nil {
		return ""
	}
	if strings.TrimSpace(e.Param) == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Param)
}

func badFrame(message, param string) *DecodeError {
	return &DecodeError{Code: "bad_frame", Message: message, Param: param}
}

// Frame is implemented by every decoded inbound frame.
type Frame interface {
	FrameType() string
}

// Unknown carries a frame whose type has no decoder. Raw is the original
// frame bytes.
type Unknown struct {
	Type string
	Raw  json.RawMessage
}

func (f Unknown) FrameType() string { return f.Type }

type decoder func(data []byte) (Frame, error)

// decodeAs returns a decoder that unmarshals into T.
func decodeAs[T Frame](data []byte) (Frame, error) {
	var frame T
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, err
	}
	return frame, nil
}

func peekType(data []byte) (string, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return "", badFrame("invalid json frame", "")
	}
	typ := strings.TrimSpace(envelope.Type)
	if typ == "" {
		return "", badFrame("missing type", "type")
	}
	return typ, nil
}

func decodeWith(table map[string]decoder, typ string, data []byte) (Frame, error) {
	decode, ok := table[typ]
	if !ok {
		return Unknown{Type: typ, Raw: append(json.RawMessage(nil), data...)}, nil
	}
	frame, err := decode(data)
	if err != nil {
		return nil, badFrame("invalid "+typ+" frame", "")
	}
	return frame, nil
}

func normalizeRaw(raw json.RawMessage) string {
	raw = json.RawMessage(strings.TrimSpace(string(raw)))
	if len(raw) == 0 {
		return "{}"
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err == nil {
		return compact.String()
	}
	return string(raw)
}

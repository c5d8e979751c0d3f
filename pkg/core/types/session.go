package types

import "encoding/json"

// Session statuses the dashboard distinguishes.
const (
	SessionActive    = "active"
	SessionEscalated = "escalated"
	SessionEnded     = "ended"
)

// Turn is one transcript entry of a live session.
type Turn struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
	// SessionID is set on turns collected from the all-sessions feed.
	SessionID string `json:"session_id,omitempty"`
}

// Session is the live state the backend keeps for one conversation.
type Session struct {
	SessionID        string            `json:"session_id"`
	AgentID          string            `json:"agent_id"`
	CallerID         *string           `json:"caller_id,omitempty"`
	Status           string            `json:"status"`
	History          []Turn            `json:"history,omitempty"`
	ToolCalls        []json.RawMessage `json:"tool_calls,omitempty"`
	Metadata         map[string]any    `json:"metadata,omitempty"`
	EscalationReason *string           `json:"escalation_reason,omitempty"`
	TransferredTo    *string           `json:"transferred_to,omitempty"`
	CreatedAt        Timestamp         `json:"created_at"`
	UpdatedAt        Timestamp         `json:"updated_at"`
}

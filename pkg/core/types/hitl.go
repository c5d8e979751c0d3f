package types

// Decision is a human verdict on a pending action.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// Valid reports whether d is one of the two accepted verdicts.
func (d Decision) Valid() bool {
	return d == DecisionApproved || d == DecisionRejected
}

// PendingAction is a backend-proposed sensitive action awaiting approval.
type PendingAction struct {
	ID          string         `json:"id"`
	SessionID   string         `json:"session_id"`
	AgentID     string         `json:"agent_id"`
	ActionType  string         `json:"action_type"`
	Description string         `json:"description"`
	Payload     map[string]any `json:"payload"`
	Status      string         `json:"status"`
	CreatedAt   Timestamp      `json:"created_at"`
	ProcessedAt Timestamp      `json:"processed_at"`
	ProcessedBy *string        `json:"processed_by,omitempty"`
	Feedback    *string        `json:"feedback,omitempty"`
}

// DecisionRequest is the POST /hitl/{id}/decide body.
type DecisionRequest struct {
	Decision Decision `json:"decision"`
	Feedback *string  `json:"feedback,omitempty"`
}

// DecisionResult is the POST /hitl/{id}/decide response.
type DecisionResult struct {
	Status   string `json:"status"`
	Decision string `json:"decision"`
}

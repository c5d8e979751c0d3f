package types

// Knowledge is one entry in an agent's knowledge base.
type Knowledge struct {
	ID             string         `json:"id"`
	AgentID        string         `json:"agent_id"`
	OrganizationID *string        `json:"organization_id,omitempty"`
	Title          string         `json:"title"`
	Content        string         `json:"content"`
	Metadata       map[string]any `json:"data_metadata,omitempty"`
	IsActive       bool           `json:"is_active"`
	CreatedAt      Timestamp      `json:"created_at"`
	UpdatedAt      Timestamp      `json:"updated_at"`
}

// KnowledgeInput is the POST /knowledge/{agent_id} body.
type KnowledgeInput struct {
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"data_metadata,omitempty"`
}

// KnowledgeHit is one semantic search result.
type KnowledgeHit struct {
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"data_metadata"`
}

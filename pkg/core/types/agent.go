package types

import "encoding/json"

// Agent is a backend-defined conversational agent.
type Agent struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Role              string            `json:"role"`
	Persona           string            `json:"persona"`
	Description       *string           `json:"description,omitempty"`
	Language          string            `json:"language"`
	Tools             []json.RawMessage `json:"tools,omitempty"`
	Goals             []json.RawMessage `json:"goals,omitempty"`
	SuccessCriteria   []json.RawMessage `json:"success_criteria,omitempty"`
	FailureConditions []json.RawMessage `json:"failure_conditions,omitempty"`
	ExitActions       []json.RawMessage `json:"exit_actions,omitempty"`
	IsActive          bool              `json:"is_active"`
	ActiveVersionID   *string           `json:"active_version_id,omitempty"`
	TokenLimit        *int              `json:"token_limit,omitempty"`
	FallbackModel     *string           `json:"fallback_model,omitempty"`
	OrganizationID    *string           `json:"organization_id,omitempty"`
	Config            json.RawMessage   `json:"config,omitempty"`
	CreatedAt         Timestamp         `json:"created_at"`
	UpdatedAt         Timestamp         `json:"updated_at"`
}

// AgentInput is the POST /agents/ body. Name, Role and Persona are required
// by the backend; Language defaults to en-US when empty.
type AgentInput struct {
	Name              string         `json:"name" yaml:"name"`
	Role              string         `json:"role" yaml:"role"`
	Persona           string         `json:"persona" yaml:"persona"`
	Description       *string        `json:"description,omitempty" yaml:"description,omitempty"`
	Language          string         `json:"language,omitempty" yaml:"language,omitempty"`
	Tools             []any          `json:"tools,omitempty" yaml:"tools,omitempty"`
	Goals             []any          `json:"goals,omitempty" yaml:"goals,omitempty"`
	SuccessCriteria   []any          `json:"success_criteria,omitempty" yaml:"success_criteria,omitempty"`
	FailureConditions []any          `json:"failure_conditions,omitempty" yaml:"failure_conditions,omitempty"`
	ExitActions       []any          `json:"exit_actions,omitempty" yaml:"exit_actions,omitempty"`
	IsActive          *bool          `json:"is_active,omitempty" yaml:"is_active,omitempty"`
	TokenLimit        *int           `json:"token_limit,omitempty" yaml:"token_limit,omitempty"`
	FallbackModel     *string        `json:"fallback_model,omitempty" yaml:"fallback_model,omitempty"`
	OrganizationID    *string        `json:"organization_id,omitempty" yaml:"organization_id,omitempty"`
	Config            map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// AgentPatch is the PUT /agents/{id} body. Nil fields are left unchanged.
type AgentPatch struct {
	Name              *string        `json:"name,omitempty" yaml:"name,omitempty"`
	Role              *string        `json:"role,omitempty" yaml:"role,omitempty"`
	Persona           *string        `json:"persona,omitempty" yaml:"persona,omitempty"`
	Description       *string        `json:"description,omitempty" yaml:"description,omitempty"`
	Language          *string        `json:"language,omitempty" yaml:"language,omitempty"`
	Tools             []any          `json:"tools,omitempty" yaml:"tools,omitempty"`
	Goals             []any          `json:"goals,omitempty" yaml:"goals,omitempty"`
	SuccessCriteria   []any          `json:"success_criteria,omitempty" yaml:"success_criteria,omitempty"`
	FailureConditions []any          `json:"failure_conditions,omitempty" yaml:"failure_conditions,omitempty"`
	ExitActions       []any          `json:"exit_actions,omitempty" yaml:"exit_actions,omitempty"`
	IsActive          *bool          `json:"is_active,omitempty" yaml:"is_active,omitempty"`
	ActiveVersionID   *string        `json:"active_version_id,omitempty" yaml:"active_version_id,omitempty"`
	TokenLimit        *int           `json:"token_limit,omitempty" yaml:"token_limit,omitempty"`
	FallbackModel     *string        `json:"fallback_model,omitempty" yaml:"fallback_model,omitempty"`
	Config            map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// AgentVersion is one immutable snapshot of an agent's persona and tools.
type AgentVersion struct {
	ID            string            `json:"id"`
	AgentID       string            `json:"agent_id"`
	VersionNumber int               `json:"version_number"`
	Persona       string            `json:"persona"`
	Description   *string           `json:"description,omitempty"`
	Tools         []json.RawMessage `json:"tools,omitempty"`
	Policy        json.RawMessage   `json:"policy,omitempty"`
	ChangeLog     *string           `json:"change_log,omitempty"`
	CreatedAt     Timestamp         `json:"created_at"`
}

// AgentVersionInput is the POST /agents/{id}/versions body.
type AgentVersionInput struct {
	VersionNumber int     `json:"version_number" yaml:"version_number"`
	Persona       string  `json:"persona" yaml:"persona"`
	Description   *string `json:"description,omitempty" yaml:"description,omitempty"`
	Tools         []any   `json:"tools" yaml:"tools"`
	Policy        any     `json:"policy,omitempty" yaml:"policy,omitempty"`
	ChangeLog     *string `json:"change_log,omitempty" yaml:"change_log,omitempty"`
}

// PinResult is the POST /agents/{id}/pin/{version_id} response.
type PinResult struct {
	Status  string `json:"status"`
	Version int    `json:"version"`
}

package desk

import (
	"context"
	"net/http"
	"strings"

	"github.com/vango-go/voicedesk/pkg/core"
	"github.com/vango-go/voicedesk/pkg/core/types"
)

// AgentsService covers agent CRUD and versioning.
type AgentsService struct {
	client *Client
}

func (s *AgentsService) List(ctx context.Context) ([]types.Agent, error) {
	var agents []types.Agent
	if err := s.client.do(ctx, newRequest(http.MethodGet, "/agents/"), &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

func (s *AgentsService) Get(ctx context.Context, id string) (*types.Agent, error) {
	if err := requireID("agent id", id); err != nil {
		return nil, err
	}
	var agent types.Agent
	if err := s.client.do(ctx, newRequest(http.MethodGet, "/agents/{id}", id), &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

func (s *AgentsService) Create(ctx context.Context, in types.AgentInput) (*types.Agent, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Role) == "" || strings.TrimSpace(in.Persona) == "" {
		return nil, core.NewInvalidRequestError("agent name, role and persona are required")
	}
	if in.Language == "" {
		in.Language = "en-US"
	}
	r, err := newRequest(http.MethodPost, "/agents/").withJSON(in)
	if err != nil {
		return nil, err
	}
	var agent types.Agent
	if err := s.client.do(ctx, r, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

func (s *AgentsService) Update(ctx context.Context, id string, patch types.AgentPatch) (*types.Agent, error) {
	if err := requireID("agent id", id); err != nil {
		return nil, err
	}
	r, err := newRequest(http.MethodPut, "/agents/{id}", id).withJSON(patch)
	if err != nil {
		return nil, err
	}
	var agent types.Agent
	if err := s.client.do(ctx, r, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

func (s *AgentsService) Delete(ctx context.Context, id string) error {
	if err := requireID("agent id", id); err != nil {
		return err
	}
	return s.client.do(ctx, newRequest(http.MethodDelete, "/agents/{id}", id), nil)
}

// Versions lists an agent's versions, newest first.
func (s *AgentsService) Versions(ctx context.Context, id string) ([]types.AgentVersion, error) {
	if err := requireID("agent id", id); err != nil {
		return nil, err
	}
	var versions []types.AgentVersion
	if err := s.client.do(ctx, newRequest(http.MethodGet, "/agents/{id}/versions", id), &versions); err != nil {
		return nil, err
	}
	return versions, nil
}

func (s *AgentsService) CreateVersion(ctx context.Context, id string, in types.AgentVersionInput) (*types.AgentVersion, error) {
	if err := requireID("agent id", id); err != nil {
		return nil, err
	}
	if in.Tools == nil {
		in.Tools = []any{}
	}
	r, err := newRequest(http.MethodPost, "/agents/{id}/versions", id).withJSON(in)
	if err != nil {
		return nil, err
	}
	var version types.AgentVersion
	if err := s.client.do(ctx, r, &version); err != nil {
		return nil, err
	}
	return &version, nil
}

// Pin makes versionID the agent's active version.
func (s *AgentsService) Pin(ctx context.Context, id, versionID string) (*types.PinResult, error) {
	if err := requireID("agent id", id); err != nil {
		return nil, err
	}
	if err := requireID("version id", versionID); err != nil {
		return nil, err
	}
	var result types.PinResult
	if err := s.client.do(ctx, newRequest(http.MethodPost, "/agents/{id}/pin/{version}", id, versionID), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func requireID(what, id string) error {
	if strings.TrimSpace(id) == "" {
		return core.NewInvalidRequestError(what + " is required")
	}
	return nil
}

package desk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/vango-go/voicedesk/pkg/core"
	"github.com/vango-go/voicedesk/pkg/core/types"
)

// KnowledgeService covers per-agent knowledge bases.
type KnowledgeService struct {
	client *Client
}

func (s *KnowledgeService) List(ctx context.Context, agentID string) ([]types.Knowledge, error) {
	if err := requireID("agent id", agentID); err != nil {
		return nil, err
	}
	var entries []types.Knowledge
	if err := s.client.do(ctx, newRequest(http.MethodGet, "/knowledge/{agent}", agentID), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *KnowledgeService) Add(ctx context.Context, agentID string, in types.KnowledgeInput) (*types.Knowledge, error) {
	if err := requireID("agent id", agentID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return nil, core.NewInvalidRequestError("knowledge title and content are required")
	}
	r, err := newRequest(http.MethodPost, "/knowledge/{agent}", agentID).withJSON(in)
	if err != nil {
		return nil, err
	}
	var entry types.Knowledge
	if err := s.client.do(ctx, r, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Query runs a semantic search. limit <= 0 uses the backend default.
func (s *KnowledgeService) Query(ctx context.Context, agentID, q string, limit int) ([]types.KnowledgeHit, error) {
	if err := requireID("agent id", agentID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(q) == "" {
		return nil, core.NewInvalidRequestError("query is required")
	}
	query := url.Values{"q": {q}}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var hits []types.KnowledgeHit
	if err := s.client.do(ctx, newRequest(http.MethodGet, "/knowledge/{agent}/query", agentID).withQuery(query), &hits); err != nil {
		return nil, err
	}
	return hits, nil
}

func (s *KnowledgeService) Delete(ctx context.Context, id string) error {
	if err := requireID("knowledge id", id); err != nil {
		return err
	}
	return s.client.do(ctx, newRequest(http.MethodDelete, "/knowledge/{id}", id), nil)
}

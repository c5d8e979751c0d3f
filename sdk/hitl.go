package desk

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/vango-go/voicedesk/pkg/core"
	"github.com/vango-go/voicedesk/pkg/core/types"
)

// HITLService covers the human-in-the-loop approval queue.
type HITLService struct {
	client *Client
}

func (s *HITLService) Pending(ctx context.Context) ([]types.PendingAction, error) {
	var actions []types.PendingAction
	if err := s.client.do(ctx, newRequest(http.MethodGet, "/hitl/pending"), &actions); err != nil {
		return nil, err
	}
	return actions, nil
}

// Decide approves or rejects a pending action. feedback is optional.
func (s *HITLService) Decide(ctx context.Context, id string, decision types.Decision, feedback string) (*types.DecisionResult, error) {
	if err := requireID("action id", id); err != nil {
		return nil, err
	}
	if !decision.Valid() {
		return nil, core.NewInvalidRequestError(fmt.Sprintf("decision must be %q or %q", types.DecisionApproved, types.DecisionRejected))
	}
	body := types.DecisionRequest{Decision: decision}
	if fb := strings.TrimSpace(feedback); fb != "" {
		body.Feedback = &fb
	}
	r, err := newRequest(http.MethodPost, "/hitl/{id}/decide", id).withJSON(body)
	if err != nil {
		return nil, err
	}
	var result types.DecisionResult
	if err := s.client.do(ctx, r, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

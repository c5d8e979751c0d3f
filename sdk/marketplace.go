package desk

import (
	"context"
	"net/http"

	"github.com/vango-go/voicedesk/pkg/core/types"
)

// MarketplaceService covers the agent template catalogue.
type MarketplaceService struct {
	client *Client
}

func (s *MarketplaceService) Templates(ctx context.Context) ([]types.Template, error) {
	var templates []types.Template
	if err := s.client.do(ctx, newRequest(http.MethodGet, "/marketplace/templates"), &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// Install creates an agent from a template.
func (s *MarketplaceService) Install(ctx context.Context, id string) (*types.InstallResult, error) {
	if err := requireID("template id", id); err != nil {
		return nil, err
	}
	var result types.InstallResult
	if err := s.client.do(ctx, newRequest(http.MethodPost, "/marketplace/install/{id}", id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

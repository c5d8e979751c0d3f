package desk

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/vango-go/voicedesk/pkg/core"
	"github.com/vango-go/voicedesk/pkg/core/types"
)

// CampaignsService covers the outbound campaign lifecycle.
type CampaignsService struct {
	client *Client
}

func (s *CampaignsService) List(ctx context.Context) ([]types.Campaign, error) {
	var campaigns []types.Campaign
	if err := s.client.do(ctx, newRequest(http.MethodGet, "/campaigns/"), &campaigns); err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (s *CampaignsService) Create(ctx context.Context, in types.CampaignInput) (*types.CampaignRef, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.AgentID) == "" {
		return nil, core.NewInvalidRequestError("campaign name and agent id are required")
	}
	r, err := newRequest(http.MethodPost, "/campaigns/").withJSON(in)
	if err != nil {
		return nil, err
	}
	var ref types.CampaignRef
	if err := s.client.do(ctx, r, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

// Get returns the campaign with its per-status contact counts.
func (s *CampaignsService) Get(ctx context.Context, id string) (*types.CampaignDetail, error) {
	if err := requireID("campaign id", id); err != nil {
		return nil, err
	}
	var detail types.CampaignDetail
	if err := s.client.do(ctx, newRequest(http.MethodGet, "/campaigns/{id}", id), &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (s *CampaignsService) Start(ctx context.Context, id string) (*types.CampaignStart, error) {
	if err := requireID("campaign id", id); err != nil {
		return nil, err
	}
	var started types.CampaignStart
	if err := s.client.do(ctx, newRequest(http.MethodPost, "/campaigns/{id}/start", id), &started); err != nil {
		return nil, err
	}
	return &started, nil
}

// UploadCSV uploads a contact sheet. Rows need a phone_number column; a
// name or contact_name column is optional and every other column becomes
// custom data.
func (s *CampaignsService) UploadCSV(ctx context.Context, id, filename string, csv io.Reader) (*types.UploadResult, error) {
	if err := requireID("campaign id", id); err != nil {
		return nil, err
	}
	if csv == nil {
		return nil, core.NewInvalidRequestError("csv file is required")
	}
	if filename == "" {
		filename = "contacts.csv"
	}
	r, err := newRequest(http.MethodPost, "/campaigns/{id}/upload-csv", id).withMultipart(nil,
		formFile{field: "file", filename: filepath.Base(filename), content: csv})
	if err != nil {
		return nil, err
	}
	var result types.UploadResult
	if err := s.client.do(ctx, r, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *CampaignsService) AddContacts(ctx context.Context, id string, contacts []types.Contact) (*types.UploadResult, error) {
	if err := requireID("campaign id", id); err != nil {
		return nil, err
	}
	if len(contacts) == 0 {
		return nil, core.NewInvalidRequestError("at least one contact is required")
	}
	r, err := newRequest(http.MethodPost, "/campaigns/{id}/contacts", id).withJSON(contacts)
	if err != nil {
		return nil, err
	}
	var result types.UploadResult
	if err := s.client.do(ctx, r, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

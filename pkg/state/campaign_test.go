package state

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-go/voicedesk/pkg/core/types"
)

func loadedCampaign(total int) *Store[CampaignState, CampaignAction] {
	store := NewCampaignStore()
	store.Dispatch(CampaignLoaded{Detail: types.CampaignDetail{
		Campaign: types.Campaign{ID: "c1", Status: types.CampaignDraft, TotalContacts: total},
		Stats:    map[string]int{},
	}})
	return store
}

func TestCampaign_RejectedUploadLeavesTotalUnchanged(t *testing.T) {
	store := loadedCampaign(12)
	store.Dispatch(UploadStarted{})
	s := store.Dispatch(UploadRejected{})

	require.NotNil(t, s.Detail)
	assert.Equal(t, 12, s.Detail.Campaign.TotalContacts)
	assert.Equal(t, "CSV upload failed. Check format.", s.Notice)
	assert.False(t, s.Uploading)
}

func TestCampaign_UploadErrored(t *testing.T) {
	store := loadedCampaign(0)
	s := store.Dispatch(UploadErrored{Err: errors.New("connection refused")})
	assert.Equal(t, "System error uploading file.", s.Notice)
	assert.Equal(t, 0, s.Detail.Campaign.TotalContacts)
}

func TestCampaign_UploadSucceededClearsNotice(t *testing.T) {
	store := loadedCampaign(0)
	store.Dispatch(UploadRejected{})
	store.Dispatch(UploadStarted{})
	s := store.Dispatch(UploadSucceeded{Added: 40})
	assert.Empty(t, s.Notice)
	assert.Equal(t, 40, s.LastAdded)
}

func TestCampaign_Started(t *testing.T) {
	store := loadedCampaign(5)
	before := store.Dispatch(StartRequested{})
	assert.True(t, before.Starting)
	s := store.Dispatch(Started{Status: types.CampaignRunning})
	assert.False(t, s.Starting)
	assert.Equal(t, types.CampaignRunning, s.Detail.Campaign.Status)
	assert.Equal(t, types.CampaignDraft, before.Detail.Campaign.Status)
}

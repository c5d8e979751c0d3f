package state

import "github.com/vango-go/voicedesk/pkg/core/types"

// Upload notices shown on the campaign detail view.
const (
	UploadRejectedNotice = "CSV upload failed. Check format."
	UploadErroredNotice  = "System error uploading file."
)

type CampaignState struct {
	Detail    *types.CampaignDetail
	Uploading bool
	Notice    string
	LastAdded int
	Starting  bool
}

// CampaignAction is implemented by the campaign detail actions below.
type CampaignAction interface{ campaignAction() }

type CampaignLoaded struct{ Detail types.CampaignDetail }

type UploadStarted struct{}

type UploadSucceeded struct{ Added int }

// UploadRejected is a non-2xx response to the CSV upload.
type UploadRejected struct{}

// UploadErrored is a transport failure during the CSV upload.
type UploadErrored struct{ Err error }

type StartRequested struct{}

// Started reports a successful start request; the status is refreshed by
// the next CampaignLoaded.
type Started struct{ Status string }

func (CampaignLoaded) campaignAction()  {}
func (UploadStarted) campaignAction()   {}
func (UploadSucceeded) campaignAction() {}
func (UploadRejected) campaignAction()  {}
func (UploadErrored) campaignAction()   {}
func (StartRequested) campaignAction()  {}
func (Started) campaignAction()         {}

func NewCampaignStore() *Store[CampaignState, CampaignAction] {
	return New(CampaignState{}, ReduceCampaign)
}

func ReduceCampaign(s CampaignState, action CampaignAction) CampaignState {
	switch a := action.(type) {
	case CampaignLoaded:
		detail := a.Detail
		s.Detail = &detail
	case UploadStarted:
		s.Uploading = true
		s.Notice = ""
	case UploadSucceeded:
		s.Uploading = false
		s.Notice = ""
		s.LastAdded = a.Added
	case UploadRejected:
		s.Uploading = false
		s.Notice = UploadRejectedNotice
	case UploadErrored:
		s.Uploading = false
		s.Notice = UploadErroredNotice
	case StartRequested:
		s.Starting = true
	case Started:
		s.Starting = false
		if s.Detail != nil && a.Status != "" {
			detail := *s.Detail
			detail.Campaign.Status = a.Status
			s.Detail = &detail
		}
	}
	return s
}

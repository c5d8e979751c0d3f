package types

// Campaign statuses.
const (
	CampaignDraft     = "draft"
	CampaignScheduled = "scheduled"
	CampaignRunning   = "running"
	CampaignPaused    = "paused"
	CampaignCompleted = "completed"
	CampaignCancelled = "cancelled"
)

// Campaign is a batch outbound-calling job.
type Campaign struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Description      *string        `json:"description,omitempty"`
	AgentID          string         `json:"agent_id"`
	WorkflowID       *string        `json:"workflow_id,omitempty"`
	Status           string         `json:"status"`
	StartTime        Timestamp      `json:"start_time"`
	ConcurrencyLimit int            `json:"concurrency_limit"`
	RetryConfig      map[string]any `json:"retry_config,omitempty"`
	TotalContacts    int            `json:"total_contacts"`
	CompletedCalls   int            `json:"completed_calls"`
	FailedCalls      int            `json:"failed_calls"`
	CreatedBy        string         `json:"created_by,omitempty"`
	CreatedAt        Timestamp      `json:"created_at"`
	UpdatedAt        Timestamp      `json:"updated_at"`
}

// CampaignDetail is the GET /campaigns/{id} response. Stats maps a
// contact status (pending, completed, failed, ...) to its count.
type CampaignDetail struct {
	Campaign Campaign       `json:"campaign"`
	Stats    map[string]int `json:"stats"`
}

// Progress returns the completed share of contacts in percent, rounded to
// the nearest integer. Zero contacts yields zero.
func (d CampaignDetail) Progress() int {
	total := d.Campaign.TotalContacts
	if total <= 0 {
		return 0
	}
	return (d.Stats[ContactCompleted]*100 + total/2) / total
}

// CampaignInput is the POST /campaigns/ body.
type CampaignInput struct {
	Name             string  `json:"name"`
	AgentID          string  `json:"agent_id"`
	Description      *string `json:"description,omitempty"`
	ConcurrencyLimit *int    `json:"concurrency_limit,omitempty"`
}

// CampaignRef is the POST /campaigns/ response.
type CampaignRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CampaignStart is the POST /campaigns/{id}/start response.
type CampaignStart struct {
	Status   string `json:"status"`
	Campaign string `json:"campaign"`
}

// Contact statuses.
const (
	ContactPending    = "pending"
	ContactQueued     = "queued"
	ContactInProgress = "in_progress"
	ContactCompleted  = "completed"
	ContactFailed     = "failed"
	ContactRetrying   = "retrying"
)

// Contact is one entry for POST /campaigns/{id}/contacts.
type Contact struct {
	PhoneNumber string         `json:"phone_number" yaml:"phone_number"`
	ContactName *string        `json:"contact_name,omitempty" yaml:"contact_name,omitempty"`
	CustomData  map[string]any `json:"custom_data,omitempty" yaml:"custom_data,omitempty"`
}

// UploadResult is returned by contact uploads.
type UploadResult struct {
	Added int `json:"added"`
}

package types

// Template is a pre-built agent configuration from the marketplace.
type Template struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Category         string   `json:"category"`
	Role             string   `json:"role"`
	Description      string   `json:"description"`
	Persona          string   `json:"persona"`
	Language         string   `json:"language"`
	RecommendedTools []string `json:"recommended_tools"`
	Popularity       int      `json:"popularity"`
	Rating           float64  `json:"rating"`
}

// InstallResult is the POST /marketplace/install/{id} response.
type InstallResult struct {
	Status    string `json:"status"`
	AgentID   string `json:"agent_id"`
	AgentName string `json:"agent_name"`
}

package types

// Overview is the aggregate dashboard summary.
type Overview struct {
	TotalCalls   int     `json:"total_calls"`
	TotalMinutes float64 `json:"total_minutes"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
	TotalCost    float64 `json:"total_cost"`
	SuccessRate  float64 `json:"success_rate"`
}

// DailyCount is one bucket of /analytics/daily-trends.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// AgentPerformance is one row of /analytics/agent-performance.
type AgentPerformance struct {
	Name        string  `json:"name"`
	Calls       int     `json:"calls"`
	AvgDuration float64 `json:"avg_duration"`
	AvgLatency  float64 `json:"avg_latency"`
}

// ShadowStats compares a primary and a candidate model configuration.
// The aggregation is backend-defined, so it is carried as an opaque map.
type ShadowStats map[string]any

// CallLog is the detailed record of one completed call.
type CallLog struct {
	ID              string           `json:"id"`
	SessionID       string           `json:"session_id"`
	AgentID         string           `json:"agent_id"`
	AgentName       string           `json:"agent_name,omitempty"`
	CallerID        *string          `json:"caller_id,omitempty"`
	CampaignID      *string          `json:"campaign_id,omitempty"`
	StartTime       Timestamp        `json:"start_time"`
	EndTime         Timestamp        `json:"end_time"`
	DurationSeconds float64          `json:"duration_seconds"`
	AvgLatencyMS    float64          `json:"avg_latency_ms"`
	TTFAPMS         float64          `json:"ttfap_ms"`
	TotalTurns      int              `json:"total_turns"`
	TotalTokens     int              `json:"total_tokens"`
	EstimatedCost   float64          `json:"estimated_cost"`
	Status          string           `json:"status"`
	EndReason       string           `json:"end_reason"`
	Transcript      []map[string]any `json:"transcript,omitempty"`
	Metadata        map[string]any   `json:"metadata_json,omitempty"`
}

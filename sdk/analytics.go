package desk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vango-go/voicedesk/pkg/core/types"
)

// AnalyticsService covers aggregate and per-call metrics.
type AnalyticsService struct {
	client *Client
}

func (s *AnalyticsService) Overview(ctx context.Context) (*types.Overview, error) {
	var overview types.Overview
	if err := s.client.do(ctx, newRequest(http.MethodGet, "/analytics/overview"), &overview); err != nil {
		return nil, err
	}
	return &overview, nil
}

// DailyTrends returns call counts per day for the last days days.
func (s *AnalyticsService) DailyTrends(ctx context.Context, days int) ([]types.DailyCount, error) {
	r := newRequest(http.MethodGet, "/analytics/daily-trends")
	if days > 0 {
		r = r.withQuery(url.Values{"days": {strconv.Itoa(days)}})
	}
	var counts []types.DailyCount
	if err := s.client.do(ctx, r, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

func (s *AnalyticsService) AgentPerformance(ctx context.Context) ([]types.AgentPerformance, error) {
	var perf []types.AgentPerformance
	if err := s.client.do(ctx, newRequest(http.MethodGet, "/analytics/agent-performance"), &perf); err != nil {
		return nil, err
	}
	return perf, nil
}

func (s *AnalyticsService) ShadowStats(ctx context.Context) (types.ShadowStats, error) {
	var stats types.ShadowStats
	if err := s.client.do(ctx, newRequest(http.MethodGet, "/analytics/shadow-stats"), &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// Logs pages through call logs, newest first.
func (s *AnalyticsService) Logs(ctx context.Context, skip, limit int) ([]types.CallLog, error) {
	query := url.Values{}
	if skip > 0 {
		query.Set("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var logs []types.CallLog
	if err := s.client.do(ctx, newRequest(http.MethodGet, "/analytics/").withQuery(query), &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *AnalyticsService) RecentCalls(ctx context.Context, limit int) ([]types.CallLog, error) {
	r := newRequest(http.MethodGet, "/analytics/recent-calls")
	if limit > 0 {
		r = r.withQuery(url.Values{"limit": {strconv.Itoa(limit)}})
	}
	var calls []types.CallLog
	if err := s.client.do(ctx, r, &calls); err != nil {
		return nil, err
	}
	return calls, nil
}

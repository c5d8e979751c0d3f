// Package desk is the Go client for the voice-agent orchestration backend.
//
// REST resources are grouped into services hanging off Client. The two
// WebSocket surfaces (the agent playground and the monitoring feed) are
// exposed as managed sessions that reconnect with backoff and fold frames
// into pkg/state view state.
package desk

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/singleflight"

	"github.com/vango-go/voicedesk/pkg/auth"
	"github.com/vango-go/voicedesk/pkg/metrics"
	"github.com/vango-go/voicedesk/pkg/state"
)

const (
	// DefaultBaseURL is the backend's REST base when none is configured.
	DefaultBaseURL = "http://localhost:8001/api/v1"

	defaultRequestTimeout = 30 * time.Second
	// Access tokens this close to expiry are refreshed before use.
	defaultExpirySkew = 10 * time.Second
)

// Client is the main entry point for the SDK.
type Client struct {
	Auth        *AuthService
	Agents      *AgentsService
	Voices      *VoicesService
	Knowledge   *KnowledgeService
	Campaigns   *CampaignsService
	Analytics   *AnalyticsService
	HITL        *HITLService
	Monitoring  *MonitoringService
	Marketplace *MarketplaceService
	Playground  *PlaygroundService

	baseURL        string
	wsURL          string
	httpClient     *http.Client
	requestTimeout time.Duration
	logger         *slog.Logger
	metrics        *metrics.Metrics

	tokens  auth.Store
	session *state.Store[state.AuthState, state.AuthAction]
	refresh singleflight.Group
	now     func() time.Time

	dialer    *websocket.Dialer
	reconnect ReconnectPolicy
	newID     func() string
}

// ReconnectPolicy controls WebSocket reconnection.
type ReconnectPolicy struct {
	Enabled bool
	Base    time.Duration
	Max     time.Duration
	// Attempts bounds consecutive retries. Zero means unbounded.
	Attempts uint64
}

// DefaultReconnectPolicy retries 8 times with exponential backoff from
// 500ms capped at 30s.
func DefaultReconnectPolicy() ReconnectPolicy {
	return ReconnectPolicy{Enabled: true, Base: 500 * time.Millisecond, Max: 30 * time.Second, Attempts: 8}
}

// NewClient creates a client. Persisted tokens are loaded from the token
// store immediately so the first request is already authenticated.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:        DefaultBaseURL,
		httpClient:     newDefaultHTTPClient(),
		requestTimeout: defaultRequestTimeout,
		logger:         slog.Default(),
		now:            time.Now,
		reconnect:      DefaultReconnectPolicy(),
		newID:          newMessageID,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.baseURL = strings.TrimSuffix(strings.TrimSpace(c.baseURL), "/")
	if c.tokens == nil {
		c.tokens = auth.NewMemoryStore(auth.Tokens{})
	}
	if c.session == nil {
		c.session = state.NewAuthStore()
	}
	if c.dialer == nil {
		c.dialer = websocket.DefaultDialer
	}

	tokens, err := c.tokens.Load()
	if err != nil {
		c.logger.Warn("load stored tokens", "error", err)
	}
	c.session.Dispatch(state.TokensLoaded{Tokens: tokens})

	c.Auth = &AuthService{client: c}
	c.Agents = &AgentsService{client: c}
	c.Voices = &VoicesService{client: c}
	c.Knowledge = &KnowledgeService{client: c}
	c.Campaigns = &CampaignsService{client: c}
	c.Analytics = &AnalyticsService{client: c}
	c.HITL = &HITLService{client: c}
	c.Monitoring = &MonitoringService{client: c}
	c.Marketplace = &MarketplaceService{client: c}
	c.Playground = &PlaygroundService{client: c}
	return c
}

// Session returns the auth store shared by every request the client makes.
func (c *Client) Session() *state.Store[state.AuthState, state.AuthAction] {
	return c.session
}

// BaseURL returns the REST base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Metrics returns the configured metrics sink, which may be nil.
func (c *Client) Metrics() *metrics.Metrics {
	return c.metrics
}

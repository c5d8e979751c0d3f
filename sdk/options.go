package desk

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-go/voicedesk/pkg/auth"
	"github.com/vango-go/voicedesk/pkg/metrics"
	"github.com/vango-go/voicedesk/pkg/state"
)

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// WithBaseURL sets the REST base URL, including the /api/v1 prefix.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithWebSocketURL sets the WebSocket base URL. When unset it is derived
// from the REST base by swapping http(s) for ws(s).
func WithWebSocketURL(url string) ClientOption {
	return func(c *Client) {
		c.wsURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout bounds each REST call that has no context deadline.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.requestTimeout = d
	}
}

// WithLogger sets the logger for the client.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTokenStore sets where tokens are persisted.
func WithTokenStore(s auth.Store) ClientOption {
	return func(c *Client) {
		c.tokens = s
	}
}

// WithAuthStore shares an existing auth state store with the client.
func WithAuthStore(s *state.Store[state.AuthState, state.AuthAction]) ClientOption {
	return func(c *Client) {
		c.session = s
	}
}

// WithMetrics records requests, refreshes and WebSocket activity.
func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithDialer sets the WebSocket dialer.
func WithDialer(d *websocket.Dialer) ClientOption {
	return func(c *Client) {
		c.dialer = d
	}
}

// WithReconnect sets the WebSocket reconnect policy.
func WithReconnect(p ReconnectPolicy) ClientOption {
	return func(c *Client) {
		c.reconnect = p
	}
}

// WithClock overrides the clock used for token expiry checks and message
// timestamps.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIDGenerator overrides how client-side message ids are minted.
func WithIDGenerator(fn func() string) ClientOption {
	return func(c *Client) {
		if fn != nil {
			c.newID = fn
		}
	}
}

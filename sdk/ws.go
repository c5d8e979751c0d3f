package desk

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/vango-go/voicedesk/pkg/core"
	"github.com/vango-go/voicedesk/pkg/live"
)

// wsEndpoint joins path onto the WebSocket base. The base is the explicit
// WithWebSocketURL value or the REST base with its scheme swapped.
func (c *Client) wsEndpoint(path string, query url.Values) (string, error) {
	raw := strings.TrimSpace(c.wsURL)
	if raw == "" {
		raw = c.baseURL
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", core.NewInvalidRequestError("invalid websocket base URL")
	}
	switch strings.ToLower(strings.TrimSpace(u.Scheme)) {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", core.NewInvalidRequestError("websocket base URL must use http(s) or ws(s)")
	}
	u.User = nil
	u.Fragment = ""
	if err := setEscapedPath(u, strings.TrimSuffix(u.EscapedPath(), "/")+"/"+strings.TrimLeft(path, "/")); err != nil {
		return "", core.NewInvalidRequestError("invalid websocket path")
	}
	u.RawQuery = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

// wsHeader runs before every dial so reconnects carry a current token.
func (c *Client) wsHeader(ctx context.Context) (http.Header, error) {
	header := make(http.Header)
	access, err := c.freshAccessToken(ctx)
	if err != nil {
		return nil, err
	}
	if access != "" {
		header.Set("Authorization", "Bearer "+access)
	}
	return header, nil
}

func (c *Client) openConn(stream, endpoint string, onState func(live.State, error)) (*live.Conn, error) {
	opts := live.Options{
		URL:       endpoint,
		Stream:    stream,
		Header:    c.wsHeader,
		Dialer:    c.dialer,
		Backoff:   live.DefaultBackoff(c.reconnect.Base, c.reconnect.Max, c.reconnect.Attempts),
		Reconnect: c.reconnect.Enabled,
		Logger:    c.logger,
		OnState:   onState,
	}
	if c.metrics != nil {
		opts.Observer = c.metrics
	}
	return live.New(opts)
}

// session carries the run loop shared by playground and monitor streams.
type session struct {
	conn *live.Conn
	done chan struct{}
	err  error
}

func (s *session) start(ctx context.Context, onMessage func([]byte), mapErr func(error) error) {
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		err := s.conn.Run(ctx, onMessage)
		if mapErr != nil {
			err = mapErr(err)
		}
		s.err = err
	}()
}

// Done is closed when the stream has stopped for good.
func (s *session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the stream stops and returns why. A cancelled context,
// Close, or a normal server close yield nil.
func (s *session) Wait() error {
	<-s.done
	return s.err
}

// Close stops the stream. It does not wait; use Wait for that.
func (s *session) Close() error {
	return s.conn.Close()
}

// ConnState returns the connection manager's current state.
func (s *session) ConnState() live.State {
	return s.conn.State()
}

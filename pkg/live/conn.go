// Package live manages long-lived WebSocket connections to the backend:
// explicit lifecycle states, reconnect with backoff, and typed dispatch of
// decoded frames.
package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sethvargo/go-retry"
)

const (
	defaultConnectTimeout = 15 * time.Second
	defaultWriteTimeout   = 10 * time.Second
	defaultReadLimit      = 4 << 20
)

// ErrNotOpen is returned by Send when the connection is not open.
var ErrNotOpen = errors.New("connection is not open")

// ErrClosed is returned by Run when Close was called before it started.
var ErrClosed = errors.New("connection closed")

// Observer receives lifecycle signals, typically for metrics.
type Observer interface {
	ConnState(stream string, state State)
	Reconnect(stream string)
}

// HeaderFunc builds request headers for one dial attempt. It runs before
// every attempt so a refreshed bearer token is picked up on reconnect.
type HeaderFunc func(ctx context.Context) (http.Header, error)

// BackoffFunc returns a fresh backoff sequence. A new sequence is started
// after every successful open.
type BackoffFunc func() retry.Backoff

// Options configures a Conn.
type Options struct {
	URL string
	// Stream labels the connection in logs and metrics.
	Stream string

	Header         HeaderFunc
	Dialer         *websocket.Dialer
	Backoff        BackoffFunc
	Reconnect      bool
	ConnectTimeout time.Duration
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	ReadLimit      int64

	Observer Observer
	Logger   *slog.Logger
	// OnState is called after every state change with the error that caused
	// it, if any. It runs on the Run goroutine.
	OnState func(State, error)
}

// DefaultBackoff is exponential from base with 10% jitter, capped at
// maxDelay. attempts bounds consecutive retries; zero means unbounded.
func DefaultBackoff(base, maxDelay time.Duration, attempts uint64) BackoffFunc {
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	return func() retry.Backoff {
		b := retry.NewExponential(base)
		b = retry.WithJitterPercent(10, b)
		if maxDelay > 0 {
			b = retry.WithCappedDuration(maxDelay, b)
		}
		if attempts > 0 {
			b = retry.WithMaxRetries(attempts, b)
		}
		return b
	}
}

// DialError reports a failed handshake. StatusCode is zero when no HTTP
// response was received.
type DialError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *DialError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("dial %s: handshake status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("dial %s: %v", e.URL, e.Err)
}

func (e *DialError) Unwrap() error { return e.Err }

// Permanent reports whether retrying the dial cannot succeed.
func (e *DialError) Permanent() bool {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}

// CloseCode returns the WebSocket close code carried by err.
func CloseCode(err error) (int, bool) {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code, true
	}
	return 0, false
}

// isApplicationClose reports close codes in the private-use range, which
// the backend uses for terminal conditions such as an unknown agent.
func isApplicationClose(code int) bool {
	return code >= 4000 && code <= 4999
}

// Conn is a managed WebSocket connection.
type Conn struct {
	opts   Options
	logger *slog.Logger

	mu    sync.Mutex
	state State
	ws    *websocket.Conn

	writeMu sync.Mutex

	closeOnce sync.Once
	closed    chan struct{}
}

// New validates opts and returns an unstarted Conn in the closed state.
func New(opts Options) (*Conn, error) {
	parsed, err := url.Parse(strings.TrimSpace(opts.URL))
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid websocket url %q", opts.URL)
	}
	switch parsed.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("websocket url must use ws or wss: %q", opts.URL)
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	if opts.Backoff == nil {
		opts.Backoff = DefaultBackoff(500*time.Millisecond, 30*time.Second, 8)
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = defaultConnectTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = defaultReadLimit
	}
	if opts.Stream == "" {
		opts.Stream = parsed.Path
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Conn{
		opts:   opts,
		logger: logger.With("stream", opts.Stream),
		state:  StateClosed,
		closed: make(chan struct{}),
	}, nil
}

// State returns the current lifecycle state.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stream returns the connection's label.
func (c *Conn) Stream() string {
	return c.opts.Stream
}

// Close stops Run and closes the socket. It is safe to call repeatedly.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *Conn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// Send writes v as one JSON text frame.
func (c *Conn) Send(v any) error {
	c.mu.Lock()
	ws, state := c.ws, c.state
	c.mu.Unlock()
	if ws == nil || state != StateOpen {
		return ErrNotOpen
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := ws.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := ws.WriteJSON(v); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Run dials and reads until ctx is cancelled, Close is called, or the
// connection ends in a way that reconnecting cannot fix. onMessage is called
// on the Run goroutine for every text or binary frame.
//
// A clean stop returns nil. A normal close from the server returns nil; an
// application close (4000-4999) returns the *websocket.CloseError; a
// permanent handshake failure returns the *DialError; exhausting the
// backoff returns the last error.
func (c *Conn) Run(ctx context.Context, onMessage func([]byte)) error {
	if c.isClosed() {
		return ErrClosed
	}
	backoff := c.opts.Backoff()
	event := EventDial

	for {
		c.transition(event, nil)

		ws, err := c.dial(ctx)
		if err != nil {
			if c.stopped(ctx) {
				c.transition(EventClose, nil)
				return nil
			}
			c.transition(EventFailed, err)
			var dialErr *DialError
			if errors.As(err, &dialErr) && dialErr.Permanent() {
				c.logger.Warn("websocket dial rejected", "status", dialErr.StatusCode, "error", err)
				c.transition(EventClose, err)
				return err
			}
			if !c.wait(ctx, backoff, err) {
				return c.finish(ctx, err)
			}
			event = EventRetry
			continue
		}

		c.setConn(ws)
		c.transition(EventConnected, nil)
		backoff = c.opts.Backoff()

		err = c.read(ctx, ws, onMessage)
		c.setConn(nil)
		_ = ws.Close()

		if c.stopped(ctx) {
			c.transition(EventClose, nil)
			return nil
		}
		if code, ok := CloseCode(err); ok && (code == websocket.CloseNormalClosure || isApplicationClose(code)) {
			c.logger.Info("websocket closed by server", "code", code, "error", err)
			c.transition(EventClose, err)
			if code == websocket.CloseNormalClosure {
				return nil
			}
			return err
		}

		c.logger.Warn("websocket dropped", "error", err)
		c.transition(EventDropped, err)
		if !c.wait(ctx, backoff, err) {
			return c.finish(ctx, err)
		}
		event = EventRetry
	}
}

// finish moves to closed after a retry loop gave up.
func (c *Conn) finish(ctx context.Context, cause error) error {
	if c.stopped(ctx) {
		c.transition(EventClose, nil)
		return nil
	}
	c.transition(EventClose, cause)
	return cause
}

func (c *Conn) stopped(ctx context.Context) bool {
	return ctx.Err() != nil || c.isClosed()
}

// wait sleeps for the next backoff step. It returns false when reconnect is
// disabled, the backoff is exhausted, or the connection was stopped.
func (c *Conn) wait(ctx context.Context, backoff retry.Backoff, cause error) bool {
	if !c.opts.Reconnect {
		return false
	}
	delay, stop := backoff.Next()
	if stop {
		c.logger.Warn("websocket reconnect attempts exhausted", "error", cause)
		return false
	}
	c.logger.Info("websocket reconnecting", "backoff", delay, "error", cause)
	if c.opts.Observer != nil {
		c.opts.Observer.Reconnect(c.opts.Stream)
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	case <-c.closed:
		return false
	}
}

func (c *Conn) dial(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.opts.ConnectTimeout)
	defer cancel()
	go func() {
		select {
		case <-c.closed:
			cancel()
		case <-dialCtx.Done():
		}
	}()

	var header http.Header
	if c.opts.Header != nil {
		h, err := c.opts.Header(dialCtx)
		if err != nil {
			return nil, fmt.Errorf("build handshake headers: %w", err)
		}
		header = h
	}

	ws, resp, err := c.opts.Dialer.DialContext(dialCtx, c.opts.URL, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		dialErr := &DialError{URL: redactQuery(c.opts.URL), Err: err}
		if resp != nil {
			dialErr.StatusCode = resp.StatusCode
		}
		return nil, dialErr
	}
	ws.SetReadLimit(c.opts.ReadLimit)
	return ws, nil
}

func (c *Conn) read(ctx context.Context, ws *websocket.Conn, onMessage func([]byte)) error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
		case <-c.closed:
		case <-done:
			return
		}
		deadline := time.Now().Add(time.Second)
		_ = ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = ws.Close()
	}()

	if interval := c.opts.PingInterval; interval > 0 {
		_ = ws.SetReadDeadline(time.Now().Add(2 * interval))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(2 * interval))
		})
		go c.ping(ws, interval, done)
	}

	for {
		msgType, data, err := ws.ReadMessage()
		if err != nil {
			return err
		}
		if msgType != websocket.TextMessage && msgType != websocket.BinaryMessage {
			continue
		}
		if onMessage != nil {
			onMessage(data)
		}
	}
}

func (c *Conn) ping(ws *websocket.Conn, interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.opts.WriteTimeout)); err != nil {
				c.logger.Debug("websocket ping failed", "error", err)
				return
			}
		}
	}
}

func (c *Conn) setConn(ws *websocket.Conn) {
	c.mu.Lock()
	c.ws = ws
	c.mu.Unlock()
}

func (c *Conn) transition(event Event, cause error) {
	c.mu.Lock()
	prev := c.state
	next, err := Transition(prev, event)
	if err == nil {
		c.state = next
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Debug("ignored websocket transition", "state", prev, "event", event, "error", err)
		return
	}
	if prev == next {
		return
	}
	c.logger.Debug("websocket state", "state", next, "event", event)
	if c.opts.Observer != nil {
		c.opts.Observer.ConnState(c.opts.Stream, next)
	}
	if c.opts.OnState != nil {
		c.opts.OnState(next, cause)
	}
}

func redactQuery(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	parsed.RawQuery = ""
	parsed.User = nil
	return parsed.String()
}

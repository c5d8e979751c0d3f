package desk

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/vango-go/voicedesk/pkg/core"
	"github.com/vango-go/voicedesk/pkg/core/types"
	"github.com/vango-go/voicedesk/pkg/live"
	"github.com/vango-go/voicedesk/pkg/live/protocol"
	"github.com/vango-go/voicedesk/pkg/state"
)

const (
	monitorStream    = "monitor"
	monitorAllStream = "monitor_all"
)

// MonitoringService covers live session listing and observation.
type MonitoringService struct {
	client *Client
}

// ActiveSessions lists sessions that are active or escalated.
func (s *MonitoringService) ActiveSessions(ctx context.Context) ([]types.Session, error) {
	var sessions []types.Session
	if err := s.client.do(ctx, newRequest(http.MethodGet, "/monitoring/active-sessions"), &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *MonitoringService) Session(ctx context.Context, id string) (*types.Session, error) {
	if err := requireID("session id", id); err != nil {
		return nil, err
	}
	var session types.Session
	if err := s.client.do(ctx, newRequest(http.MethodGet, "/monitoring/session/{id}", id), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// MonitorOption configures a monitor stream.
type MonitorOption func(*monitorConfig)

type monitorConfig struct {
	onEvent func(protocol.MonitorEvent)
	onState func(state.MonitorState)
	noSeed  bool
}

// OnMonitorEvent receives every decoded event before it is reduced.
func OnMonitorEvent(fn func(protocol.MonitorEvent)) MonitorOption {
	return func(cfg *monitorConfig) {
		cfg.onEvent = fn
	}
}

// OnMonitorState receives every new view state.
func OnMonitorState(fn func(state.MonitorState)) MonitorOption {
	return func(cfg *monitorConfig) {
		cfg.onState = fn
	}
}

// WithoutSeed skips the REST lookup Stream does before subscribing.
func WithoutSeed() MonitorOption {
	return func(cfg *monitorConfig) {
		cfg.noSeed = true
	}
}

// MonitorStream is a read-only observation feed.
type MonitorStream struct {
	session

	SessionID string

	client  *Client
	stream  string
	store   *state.Store[state.MonitorState, state.MonitorAction]
	onEvent func(protocol.MonitorEvent)
}

// Stream observes one session. The session record is fetched first and
// seeds the transcript; a failed lookup is logged and the feed's own
// initial_state frame is relied on instead.
func (s *MonitoringService) Stream(ctx context.Context, sessionID string, opts ...MonitorOption) (*MonitorStream, error) {
	if err := requireID("session id", sessionID); err != nil {
		return nil, err
	}
	cfg := applyMonitorOptions(opts)
	return s.open(ctx, monitorStream, "/monitoring/stream/"+url.PathEscape(sessionID), sessionID, cfg)
}

// StreamAll observes every session on the backend.
func (s *MonitoringService) StreamAll(ctx context.Context, opts ...MonitorOption) (*MonitorStream, error) {
	cfg := applyMonitorOptions(opts)
	cfg.noSeed = true
	return s.open(ctx, monitorAllStream, "/monitoring/stream/all", "", cfg)
}

func applyMonitorOptions(opts []MonitorOption) monitorConfig {
	var cfg monitorConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (s *MonitoringService) open(ctx context.Context, stream, path, sessionID string, cfg monitorConfig) (*MonitorStream, error) {
	c := s.client
	endpoint, err := c.wsEndpoint(path, nil)
	if err != nil {
		return nil, err
	}
	ms := &MonitorStream{
		SessionID: sessionID,
		client:    c,
		stream:    stream,
		store:     state.NewMonitorStore(sessionID),
		onEvent:   cfg.onEvent,
	}
	if cfg.onState != nil {
		ms.store.Subscribe(cfg.onState)
	}

	if !cfg.noSeed {
		session, err := s.Session(ctx, sessionID)
		switch {
		case err == nil:
			ms.store.Dispatch(state.SessionLoaded{Session: *session})
		case errors.Is(err, core.ErrSessionExpired):
			return nil, err
		default:
			c.logger.Warn("load session details", "session_id", sessionID, "error", err)
		}
	}

	conn, err := c.openConn(stream, endpoint, func(st live.State, cause error) {
		ms.store.Dispatch(state.ConnectionChanged{State: st, Err: cause, At: c.now()})
	})
	if err != nil {
		return nil, err
	}
	ms.conn = conn
	ms.start(ctx, ms.handle, nil)
	return ms, nil
}

func (ms *MonitorStream) handle(data []byte) {
	event, err := protocol.DecodeMonitor(data)
	if err != nil {
		ms.client.logger.Warn("drop monitor frame", "session_id", ms.SessionID, "error", err)
		return
	}
	ms.client.metrics.RecordFrame(ms.stream, event.Type)
	if ms.onEvent != nil {
		ms.onEvent(event)
	}
	ms.store.Dispatch(state.MonitorEventReceived{Event: event, At: ms.client.now()})
}

// Store exposes the stream's view state.
func (ms *MonitorStream) Store() *state.Store[state.MonitorState, state.MonitorAction] {
	return ms.store
}

// State returns the current view state.
func (ms *MonitorStream) State() state.MonitorState {
	return ms.store.State()
}

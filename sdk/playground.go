package desk

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/vango-go/voicedesk/pkg/core"
	"github.com/vango-go/voicedesk/pkg/live"
	"github.com/vango-go/voicedesk/pkg/live/protocol"
	"github.com/vango-go/voicedesk/pkg/state"
)

const playgroundStream = "playground"

// PlaygroundService opens live chat sessions with an agent.
type PlaygroundService struct {
	client *Client
}

// PlaygroundOption configures a playground session.
type PlaygroundOption func(*playgroundConfig)

type playgroundConfig struct {
	onFrame func(protocol.Frame)
	onState func(state.PlaygroundState)
}

// OnPlaygroundFrame receives every decoded frame before it is reduced,
// on the read goroutine. Audio frames are only surfaced this way.
func OnPlaygroundFrame(fn func(protocol.Frame)) PlaygroundOption {
	return func(cfg *playgroundConfig) {
		cfg.onFrame = fn
	}
}

// OnPlaygroundState receives every new view state.
func OnPlaygroundState(fn func(state.PlaygroundState)) PlaygroundOption {
	return func(cfg *playgroundConfig) {
		cfg.onState = fn
	}
}

// PlaygroundSession is a live chat with one agent. The transcript lives in
// Store; user messages are appended optimistically and flagged failed if
// the write does not go through.
type PlaygroundSession struct {
	session

	AgentID string
	VoiceID string

	client  *Client
	store   *state.Store[state.PlaygroundState, state.PlaygroundAction]
	onFrame func(protocol.Frame)
}

// Connect opens /orchestrator/ws/{agent_id}. voiceID may be empty to use
// the agent's default voice. The session runs until ctx is cancelled or
// Close is called; a missing agent ends it with ErrAgentNotFound.
func (s *PlaygroundService) Connect(ctx context.Context, agentID, voiceID string, opts ...PlaygroundOption) (*PlaygroundSession, error) {
	if err := requireID("agent id", agentID); err != nil {
		return nil, err
	}
	var cfg playgroundConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	c := s.client
	var query url.Values
	if v := strings.TrimSpace(voiceID); v != "" {
		query = url.Values{"voice": {v}}
	}
	endpoint, err := c.wsEndpoint("/orchestrator/ws/"+url.PathEscape(agentID), query)
	if err != nil {
		return nil, err
	}

	ps := &PlaygroundSession{
		AgentID: agentID,
		VoiceID: voiceID,
		client:  c,
		store:   state.NewPlaygroundStore(agentID),
		onFrame: cfg.onFrame,
	}
	if cfg.onState != nil {
		ps.store.Subscribe(cfg.onState)
	}
	conn, err := c.openConn(playgroundStream, endpoint, func(st live.State, cause error) {
		ps.store.Dispatch(state.ConnectionChanged{State: st, Err: cause, At: c.now()})
	})
	if err != nil {
		return nil, err
	}
	ps.conn = conn
	c.logger.Info("playground connecting", "agent_id", agentID)
	ps.start(ctx, ps.handle, ps.mapErr)
	return ps, nil
}

func (ps *PlaygroundSession) handle(data []byte) {
	frame, err := protocol.DecodePlayground(data)
	if err != nil {
		ps.client.logger.Warn("drop playground frame", "agent_id", ps.AgentID, "error", err)
		return
	}
	ps.client.metrics.RecordFrame(playgroundStream, frame.FrameType())
	if ps.onFrame != nil {
		ps.onFrame(frame)
	}
	ps.store.Dispatch(state.FrameReceived{Frame: frame, At: ps.client.now()})
}

func (ps *PlaygroundSession) mapErr(err error) error {
	if code, ok := live.CloseCode(err); ok && code == protocol.CloseAgentNotFound {
		return fmt.Errorf("%w: %s", ErrAgentNotFound, ps.AgentID)
	}
	return err
}

// Store exposes the session's view state.
func (ps *PlaygroundSession) Store() *state.Store[state.PlaygroundState, state.PlaygroundAction] {
	return ps.store
}

// State returns the current view state.
func (ps *PlaygroundSession) State() state.PlaygroundState {
	return ps.store.State()
}

// SendText appends text to the transcript and writes it to the agent. The
// returned id names the transcript message whether or not the write
// succeeded.
func (ps *PlaygroundSession) SendText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", core.NewInvalidRequestError("message text is empty")
	}
	id := ps.client.newID()
	ps.store.Dispatch(state.UserSent{ID: id, Text: text, At: ps.client.now()})
	if err := ps.conn.Send(protocol.NewClientText(text)); err != nil {
		ps.store.Dispatch(state.SendErrored{ID: id, Err: err})
		return id, err
	}
	ps.store.Dispatch(state.SendAcked{ID: id})
	return id, nil
}

// SendAudio writes one chunk of caller audio.
func (ps *PlaygroundSession) SendAudio(audio []byte) error {
	if len(audio) == 0 {
		return core.NewInvalidRequestError("audio chunk is empty")
	}
	return ps.conn.Send(protocol.NewClientAudio(audio))
}

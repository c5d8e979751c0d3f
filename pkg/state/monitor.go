package state

import (
	"strconv"
	"time"

	"github.com/vango-go/voicedesk/pkg/core/types"
	"github.com/vango-go/voicedesk/pkg/live"
	"github.com/vango-go/voicedesk/pkg/live/protocol"
)

// LogKind classifies a monitor event log entry.
type LogKind string

const (
	LogIntent   LogKind = "intent"
	LogTool     LogKind = "tool"
	LogResult   LogKind = "result"
	LogSwitch   LogKind = "switch"
	LogAlert    LogKind = "alert"
	LogCritical LogKind = "critical"
	LogSession  LogKind = "session"
)

type LogEntry struct {
	Kind      LogKind
	SessionID string
	Content   string
	Detail    string
	At        time.Time
}

// ObservedSession is a session seen starting on the global feed.
type ObservedSession struct {
	SessionID string
	AgentID   string
	AgentName string
	CallerID  string
	Status    string
	StartedAt time.Time
}

// MonitorState is the session observation view. Logs are newest first.
// An empty SessionID means the all-sessions feed: Status stays empty and
// each observed session carries its own status.
type MonitorState struct {
	SessionID    string
	Details      *types.Session
	Status       string
	Messages     []types.Turn
	CurrentChunk string
	Logs         []LogEntry
	RiskScore    float64
	Observed     []ObservedSession
	Connected    bool
	Conn         live.State
	Events       int
}

// MonitorAction is implemented by the monitor actions below.
type MonitorAction interface{ monitorAction() }

// SessionLoaded seeds the view from GET /monitoring/session/{id}.
type SessionLoaded struct{ Session types.Session }

type MonitorEventReceived struct {
	Event protocol.MonitorEvent
	At    time.Time
}

func (SessionLoaded) monitorAction()        {}
func (MonitorEventReceived) monitorAction() {}
func (ConnectionChanged) monitorAction()    {}

// NewMonitorStore returns a store observing sessionID. An empty id watches
// the global feed.
func NewMonitorStore(sessionID string) *Store[MonitorState, MonitorAction] {
	return New(MonitorState{SessionID: sessionID, Status: types.SessionActive, Conn: live.StateClosed}, ReduceMonitor)
}

func ReduceMonitor(s MonitorState, action MonitorAction) MonitorState {
	switch a := action.(type) {
	case SessionLoaded:
		return seedSession(s, a.Session)
	case MonitorEventReceived:
		s.Events++
		return reduceMonitorFrame(s, a.Event, a.At)
	case ConnectionChanged:
		s.Conn = a.State
		s.Connected = a.State == live.StateOpen
	}
	return s
}

func seedSession(s MonitorState, session types.Session) MonitorState {
	details := session
	s.Details = &details
	if session.SessionID != "" && s.SessionID == "" {
		s.SessionID = session.SessionID
	}
	s.Messages = append([]types.Turn(nil), session.History...)
	if s.Status != types.SessionEscalated && session.Status != "" {
		s.Status = session.Status
	}
	return s
}

func reduceMonitorFrame(s MonitorState, event protocol.MonitorEvent, at time.Time) MonitorState {
	entry := LogEntry{SessionID: event.SessionID, At: at}
	switch f := event.Frame.(type) {
	case protocol.InitialState:
		return seedSession(s, f.Session)
	case protocol.MonitorSessionStart:
		observed := ObservedSession{SessionID: event.SessionID, AgentID: f.AgentID, AgentName: f.AgentName, Status: types.SessionActive, StartedAt: at}
		if f.CallerID != nil {
			observed.CallerID = *f.CallerID
		}
		s.Observed = append(append([]ObservedSession(nil), s.Observed...), observed)
		entry.Kind = LogSession
		entry.Content = "Session started with " + f.AgentName
	case protocol.MonitorTranscription:
		if f.Role == string(RoleAssistant) {
			s.CurrentChunk = ""
		}
		turn := types.Turn{Role: f.Role, Content: f.Text}
		if s.SessionID == "" {
			turn.SessionID = event.SessionID
		}
		if !at.IsZero() {
			turn.Timestamp = at.UTC().Format(time.RFC3339)
		}
		s.Messages = append(append(make([]types.Turn, 0, len(s.Messages)+1), s.Messages...), turn)
		return s
	case protocol.MonitorTextChunk:
		s.CurrentChunk += f.Text
		return s
	case protocol.MonitorIntent:
		entry.Kind = LogIntent
		entry.Content = f.Intent
	case protocol.MonitorToolCall:
		entry.Kind = LogTool
		entry.Content = "Calling " + f.Name
		entry.Detail = f.ArgumentsText()
	case protocol.ToolResult:
		entry.Kind = LogResult
		entry.Content = "Tool " + f.Name + " returned"
		entry.Detail = f.ResultText()
	case protocol.MonitorAgentSwitch:
		entry.Kind = LogSwitch
		entry.Content = "Switch: " + f.From + " → " + f.To
		entry.Detail = f.Reason
	case protocol.MonitorEscalation:
		if s.SessionID == "" {
			s.Observed = markObserved(s.Observed, event.SessionID, types.SessionEscalated)
		} else {
			s.Status = types.SessionEscalated
		}
		entry.Kind = LogAlert
		entry.Content = "ESCALATION: " + f.Reason
	case protocol.ComplianceAlert:
		s.RiskScore = f.RiskScore
		entry.Kind = LogCritical
		entry.Content = "COMPLIANCE ALERT: Risk Score " + strconv.FormatFloat(f.RiskScore, 'f', -1, 64)
		entry.Detail = "Real-time violation blocked"
	default:
		return s
	}
	s.Logs = prependLog(s.Logs, entry)
	return s
}

// markObserved sets the status of one observed session. Sessions that
// started before the feed was opened are not tracked.
func markObserved(observed []ObservedSession, sessionID, status string) []ObservedSession {
	out := append([]ObservedSession(nil), observed...)
	for i := range out {
		if out[i].SessionID == sessionID {
			out[i].Status = status
		}
	}
	return out
}

func prependLog(logs []LogEntry, entry LogEntry) []LogEntry {
	out := make([]LogEntry, 0, len(logs)+1)
	out = append(out, entry)
	return append(out, logs...)
}

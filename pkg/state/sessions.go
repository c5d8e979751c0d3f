package state

import "github.com/vango-go/voicedesk/pkg/core/types"

// SessionsState is the active-sessions list. Seq is the stamp of the load
// currently displayed.
type SessionsState struct {
	Sessions []types.Session
	Seq      uint64
	Err      string
}

// SessionsAction is implemented by the sessions list actions below.
type SessionsAction interface{ sessionsAction() }

// SessionsLoaded carries the result of a poll stamped with the sequence
// number taken when the request was issued. Loads older than the one
// displayed are dropped.
type SessionsLoaded struct {
	Seq      uint64
	Sessions []types.Session
}

// SessionsFailed records a poll failure without discarding the list.
type SessionsFailed struct {
	Seq uint64
	Err error
}

func (SessionsLoaded) sessionsAction() {}
func (SessionsFailed) sessionsAction() {}

func NewSessionsStore() *Store[SessionsState, SessionsAction] {
	return New(SessionsState{}, ReduceSessions)
}

func ReduceSessions(s SessionsState, action SessionsAction) SessionsState {
	switch a := action.(type) {
	case SessionsLoaded:
		if a.Seq < s.Seq {
			return s
		}
		s.Seq = a.Seq
		s.Sessions = append([]types.Session(nil), a.Sessions...)
		s.Err = ""
	case SessionsFailed:
		if a.Seq < s.Seq {
			return s
		}
		s.Seq = a.Seq
		if a.Err != nil {
			s.Err = a.Err.Error()
		}
	}
	return s
}

package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vango-go/voicedesk/pkg/state"
)

// Snapshots bridges a state store into the tea loop. Only the newest
// snapshot is kept: a slow renderer skips intermediate states instead of
// stalling the store's dispatcher.
type Snapshots[S any] struct {
	mu     sync.Mutex
	ch     chan S
	cancel func()
	closed bool
}

// Watch subscribes to store. The current state is queued immediately so the
// first render does not wait for an event.
func Watch[S, A any](store *state.Store[S, A]) *Snapshots[S] {
	snaps := &Snapshots[S]{ch: make(chan S, 1)}
	snaps.push(store.State())
	snaps.cancel = store.Subscribe(snaps.push)
	return snaps
}

func (s *Snapshots[S]) push(snapshot S) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- snapshot
}

// C returns the snapshot channel. It is closed by Stop.
func (s *Snapshots[S]) C() <-chan S { return s.ch }

// Stop unsubscribes and closes the channel.
func (s *Snapshots[S]) Stop() {
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// listen blocks for the next snapshot and wraps it with wrap. A closed
// channel ends the subscription without producing a message.
func listen[S any](ch <-chan S, wrap func(S) tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		snapshot, ok := <-ch
		if !ok {
			return nil
		}
		return wrap(snapshot)
	}
}

// doneMsg reports that the underlying stream ended.
type doneMsg struct{ err error }

func waitDone(done <-chan struct{}, wait func() error) tea.Cmd {
	if done == nil {
		return nil
	}
	return func() tea.Msg {
		<-done
		var err error
		if wait != nil {
			err = wait()
		}
		return doneMsg{err: err}
	}
}

package tui

import (
	"testing"

	"github.com/vango-go/voicedesk/pkg/state"
)

func TestWatchKeepsOnlyNewestSnapshot(t *testing.T) {
	store := state.NewPlaygroundStore("a1")
	snaps := Watch(store)

	store.Dispatch(state.UserSent{ID: "m1", Text: "one"})
	store.Dispatch(state.UserSent{ID: "m2", Text: "two"})

	got := <-snaps.C()
	if len(got.Messages) != 2 {
		t.Fatalf("got %d messages, want the newest snapshot with 2", len(got.Messages))
	}

	snaps.Stop()
	snaps.Stop()
	store.Dispatch(state.UserSent{ID: "m3", Text: "three"})
	if _, ok := <-snaps.C(); ok {
		t.Error("channel should be closed after Stop")
	}
}

func TestWatchQueuesCurrentState(t *testing.T) {
	store := state.NewMonitorStore("s1")
	snaps := Watch(store)
	defer snaps.Stop()

	got := <-snaps.C()
	if got.SessionID != "s1" {
		t.Errorf("SessionID = %q, want s1", got.SessionID)
	}
}

func TestListenEndsOnClosedChannel(t *testing.T) {
	ch := make(chan state.MonitorState)
	close(ch)
	if message := listen(ch, wrapMonitor)(); message != nil {
		t.Errorf("expected nil message, got %T", message)
	}
	if listen[state.MonitorState](nil, wrapMonitor) != nil {
		t.Error("nil channel should produce no command")
	}
}

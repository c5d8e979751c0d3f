package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-go/voicedesk/pkg/core/types"
	"github.com/vango-go/voicedesk/pkg/metrics"
	"github.com/vango-go/voicedesk/pkg/state"
)

func TestPoll_SequenceNumbersIncrease(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu   sync.Mutex
		seqs []uint64
	)
	poll(ctx, 5*time.Millisecond, func(ctx context.Context, seq uint64) {
		mu.Lock()
		defer mu.Unlock()
		seqs = append(seqs, seq)
		if len(seqs) == 4 {
			cancel()
		}
	})

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(seqs), 4)
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })
	for i, seq := range seqs {
		assert.Equal(t, uint64(i+1), seq)
	}
}

func TestPoll_WaitsForInFlightFetches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var finished atomic.Bool
	poll(ctx, time.Hour, func(ctx context.Context, seq uint64) {
		cancel()
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
	})
	assert.True(t, finished.Load())
}

func activeSessions() []map[string]any {
	return []map[string]any{
		{"session_id": "s1", "agent_id": "a1", "caller_id": "+15550001", "status": "active",
			"history": []map[string]string{{"role": "user", "content": "hi"}}},
		{"session_id": "s2", "agent_id": "a2", "status": "escalated"},
	}
}

func TestSessionsList_Table(t *testing.T) {
	b := newBackend(t)
	b.signIn()
	b.handleJSON("GET /api/v1/monitoring/active-sessions", http.StatusOK, activeSessions())

	res := b.run(testContext(t), nil, "sessions", "list")
	require.Equal(t, ExitOK, res.code, res.stderr)
	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"s1", "a1", "+15550001", "active", "1", "-"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"s2", "a2", "-", "escalated", "0", "-"}, strings.Fields(lines[2]))
}

func TestSessionsList_Empty(t *testing.T) {
	b := newBackend(t)
	b.signIn()
	b.handleJSON("GET /api/v1/monitoring/active-sessions", http.StatusOK, []any{})

	res := b.run(testContext(t), nil, "sessions", "list")
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Equal(t, "No active sessions\n", res.stdout)
}

func TestSessionsList_WatchRefreshes(t *testing.T) {
	b := newBackend(t)
	b.signIn()
	b.handleJSON("GET /api/v1/monitoring/active-sessions", http.StatusOK, activeSessions())

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	res := b.run(ctx, nil, "sessions", "list", "--watch")
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.GreaterOrEqual(t, strings.Count(res.stdout, "SESSION"), 2, res.stdout)
}

func TestSessionsList_WatchReportsFailuresAndKeepsGoing(t *testing.T) {
	b := newBackend(t)
	b.signIn()
	var calls atomic.Int32
	b.handle("GET /api/v1/monitoring/active-sessions", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			writeTestJSON(w, http.StatusServiceUnavailable, map[string]string{"detail": "warming up"})
			return
		}
		writeTestJSON(w, http.StatusOK, activeSessions())
	})

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	res := b.run(ctx, nil, "sessions", "list", "--watch")
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stderr, "refresh failed:")
	assert.Contains(t, res.stdout, "s1")
}

func TestSessionsShow(t *testing.T) {
	b := newBackend(t)
	b.signIn()
	b.handleJSON("GET /api/v1/monitoring/session/{id}", http.StatusOK, map[string]any{
		"session_id": "s1", "agent_id": "a1", "status": "escalated", "escalation_reason": "caller asked for a human",
		"history": []map[string]string{{"role": "user", "content": "hi"}, {"role": "assistant", "content": "hello"}},
	})

	res := b.run(testContext(t), nil, "sessions", "show", "s1")
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "ESCALATION  caller asked for a human")
	assert.Contains(t, res.stdout, "assistant:  hello")
}

func trackerApp(stdout io.Writer) *App {
	return &App{
		stdout:  stdout,
		stderr:  io.Discard,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: metrics.New("test"),
	}
}

func stripClock(out string) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if _, rest, ok := strings.Cut(line, " "); ok {
			lines = append(lines, rest)
		}
	}
	return lines
}

func TestSessionTracker(t *testing.T) {
	var out bytes.Buffer
	app := trackerApp(&out)
	tracker := &sessionTracker{app: app}
	caller := "+15550001"

	tracker.observe(state.SessionsState{Seq: 1, Sessions: []types.Session{
		{SessionID: "s2", AgentID: "a2", Status: types.SessionActive},
		{SessionID: "s1", AgentID: "a1", CallerID: &caller, Status: types.SessionActive},
	}})
	tracker.observe(state.SessionsState{Seq: 1, Sessions: nil})
	tracker.observe(state.SessionsState{Seq: 2, Sessions: []types.Session{
		{SessionID: "s1", AgentID: "a1", Status: types.SessionEscalated},
	}})
	tracker.observe(state.SessionsState{Seq: 3, Err: "503"})

	assert.Equal(t, []string{
		"+ s1 agent=a1 caller=+15550001 status=active",
		"+ s2 agent=a2 caller=- status=active",
		"~ s1 status=escalated",
		"- s2",
	}, stripClock(out.String()))

	rec := httptest.NewRecorder()
	app.metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "test_active_sessions 1")
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestWatch_TracksSessionsAndServesMetrics(t *testing.T) {
	b := newBackend(t)
	b.signIn()
	b.handleJSON("GET /api/v1/monitoring/active-sessions", http.StatusOK, activeSessions())
	addr := freeAddr(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan result, 1)
	go func() { done <- b.run(ctx, nil, "watch", "--metrics-addr", addr) }()

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		body = string(data)
		return strings.Contains(body, "voicedesk_active_sessions 2")
	}, 3*time.Second, 20*time.Millisecond, body)

	cancel()
	select {
	case res := <-done:
		require.Equal(t, ExitOK, res.code, res.stderr)
		lines := stripClock(res.stdout)
		require.GreaterOrEqual(t, len(lines), 2)
		assert.Equal(t, "+ s1 agent=a1 caller=+15550001 status=active", lines[0])
		assert.Equal(t, "+ s2 agent=a2 caller=- status=escalated", lines[1])
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatch_StopsWhenNotLoggedIn(t *testing.T) {
	b := newBackend(t)
	b.handleJSON("GET /api/v1/monitoring/active-sessions", http.StatusUnauthorized, nil)

	res := b.run(testContext(t), nil, "watch")
	assert.Equal(t, ExitFailure, res.code)
	assert.Equal(t, "not logged in, run `voicedesk login`\n", res.stderr)
}

package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/vango-go/voicedesk/pkg/core/types"
	"github.com/vango-go/voicedesk/pkg/state"
)

func (a *App) watchCommand() *Command {
	var metricsAddr string
	return &Command{
		Name:    "watch",
		Summary: "Follow active sessions and export metrics",
		Usage:   "voicedesk watch [--metrics-addr host:port]",
		Flags: func() *pflag.FlagSet {
			fs := a.flags("watch")
			fs.StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics here (overrides metrics_addr)")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			if metricsAddr == "" {
				metricsAddr = a.cfg.MetricsAddr
			}

			store := state.NewSessionsStore()
			tracker := &sessionTracker{app: a}
			defer store.Subscribe(tracker.observe)()

			group, ctx := errgroup.WithContext(ctx)
			if metricsAddr != "" {
				listener, err := net.Listen("tcp", metricsAddr)
				if err != nil {
					return fmt.Errorf("listen %s: %w", metricsAddr, err)
				}
				a.logger.Info("serving metrics", "addr", listener.Addr().String())
				group.Go(func() error { return a.serveMetrics(ctx, listener) })
			}
			group.Go(func() error {
				err := a.pollSessions(ctx, client, store)
				if err != nil {
					return err
				}
				// A clean poll exit means ctx ended; surface that so the
				// metrics server stops too.
				return ctx.Err()
			})
			if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

func (a *App) serveMetrics(ctx context.Context, listener net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve(listener) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	}
}

// sessionTracker prints sessions as they appear, change status and leave,
// and keeps the active-sessions gauge current.
type sessionTracker struct {
	app  *App
	seq  uint64
	seen map[string]string
}

func (t *sessionTracker) observe(s state.SessionsState) {
	if s.Seq == t.seq {
		return
	}
	t.seq = s.Seq
	if s.Err != "" {
		t.app.logger.Warn("sessions poll failed", "error", s.Err)
		return
	}
	t.app.metrics.SetActiveSessions(len(s.Sessions))

	current := make(map[string]string, len(s.Sessions))
	for _, session := range s.Sessions {
		current[session.SessionID] = session.Status
	}
	now := time.Now().Format("15:04:05")
	for _, session := range sortedSessions(s.Sessions) {
		prev, known := t.seen[session.SessionID]
		switch {
		case !known:
			fmt.Fprintf(t.app.stdout, "%s + %s agent=%s caller=%s status=%s\n",
				now, session.SessionID, session.AgentID, deref(session.CallerID), session.Status)
		case prev != session.Status:
			fmt.Fprintf(t.app.stdout, "%s ~ %s status=%s\n", now, session.SessionID, session.Status)
		}
	}
	gone := make([]string, 0)
	for id := range t.seen {
		if _, ok := current[id]; !ok {
			gone = append(gone, id)
		}
	}
	sort.Strings(gone)
	for _, id := range gone {
		fmt.Fprintf(t.app.stdout, "%s - %s\n", now, id)
	}
	t.seen = current
}

func sortedSessions(sessions []types.Session) []types.Session {
	out := append([]types.Session(nil), sessions...)
	sort.Slice(out, func(i, j int) bool { return out[i].SessionID < out[j].SessionID })
	return out
}

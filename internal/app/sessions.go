package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/pflag"

	"github.com/vango-go/voicedesk/pkg/core"
	"github.com/vango-go/voicedesk/pkg/core/types"
	"github.com/vango-go/voicedesk/pkg/state"
	desk "github.com/vango-go/voicedesk/sdk"
)

func (a *App) sessionsCommand() *Command {
	return &Command{
		Name:    "sessions",
		Summary: "Inspect live conversations",
		Subcommands: []*Command{
			a.sessionsListCommand(),
			a.sessionsShowCommand(),
		},
	}
}

func (a *App) sessionsListCommand() *Command {
	var watch bool
	return &Command{
		Name:    "list",
		Summary: "List active sessions",
		Usage:   "voicedesk sessions list [--watch]",
		Flags: func() *pflag.FlagSet {
			fs := a.flags("sessions list")
			fs.BoolVarP(&watch, "watch", "w", false, "refresh at the sessions poll interval")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			if !watch {
				sessions, err := client.Monitoring.ActiveSessions(ctx)
				if err != nil {
					return err
				}
				return a.printSessions(sessions)
			}
			store := state.NewSessionsStore()
			var shown uint64
			cancel := store.Subscribe(func(s state.SessionsState) {
				if s.Seq == shown {
					return
				}
				shown = s.Seq
				if s.Err != "" {
					fmt.Fprintf(a.stderr, "refresh failed: %s\n", s.Err)
					return
				}
				if err := a.printSessions(s.Sessions); err != nil {
					a.logger.Warn("print sessions", "error", err)
				}
			})
			defer cancel()
			return a.pollSessions(ctx, client, store)
		},
	}
}

// pollSessions loads active sessions on the sessions interval into store
// until ctx ends or the session expires.
func (a *App) pollSessions(ctx context.Context, client *desk.Client, store *state.Store[state.SessionsState, state.SessionsAction]) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu    sync.Mutex
		fatal error
	)
	poll(ctx, a.cfg.Polling.Sessions, func(ctx context.Context, seq uint64) {
		sessions, err := client.Monitoring.ActiveSessions(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, core.ErrSessionExpired) || errors.Is(err, core.ErrNotAuthenticated) {
				mu.Lock()
				if fatal == nil {
					fatal = err
				}
				mu.Unlock()
				cancel()
				return
			}
			store.Dispatch(state.SessionsFailed{Seq: seq, Err: err})
			return
		}
		store.Dispatch(state.SessionsLoaded{Seq: seq, Sessions: sessions})
	})
	mu.Lock()
	defer mu.Unlock()
	return fatal
}

func (a *App) printSessions(sessions []types.Session) error {
	return a.emit(sessions, func(w io.Writer) {
		if len(sessions) == 0 {
			fmt.Fprintln(w, "No active sessions")
			return
		}
		row(w, "SESSION", "AGENT", "CALLER", "STATUS", "TURNS", "UPDATED")
		for _, s := range sessions {
			row(w, s.SessionID, s.AgentID, deref(s.CallerID), s.Status, len(s.History), fmtTime(s.UpdatedAt))
		}
	})
}

func (a *App) sessionsShowCommand() *Command {
	return &Command{
		Name:    "show",
		Summary: "Show one session and its transcript",
		Usage:   "voicedesk sessions show <session-id>",
		Flags:   func() *pflag.FlagSet { return a.flags("sessions show") },
		Run: func(ctx context.Context, args []string) error {
			if err := exactArgs(args, 1, "sessions show <session-id>"); err != nil {
				return err
			}
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			session, err := client.Monitoring.Session(ctx, args[0])
			if err != nil {
				return err
			}
			return a.emit(session, func(w io.Writer) {
				row(w, "SESSION", session.SessionID)
				row(w, "AGENT", session.AgentID)
				row(w, "CALLER", deref(session.CallerID))
				row(w, "STATUS", session.Status)
				if session.EscalationReason != nil {
					row(w, "ESCALATION", *session.EscalationReason)
				}
				row(w, "TOOL CALLS", len(session.ToolCalls))
				row(w, "CREATED", fmtTime(session.CreatedAt))
				for _, turn := range session.History {
					row(w, turn.Role+":", turn.Content)
				}
			})
		},
	}
}

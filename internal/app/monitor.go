package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/vango-go/voicedesk/internal/tui"
	"github.com/vango-go/voicedesk/pkg/state"
	desk "github.com/vango-go/voicedesk/sdk"
)

func (a *App) monitorCommand() *Command {
	var all, plain bool
	return &Command{
		Name:    "monitor",
		Summary: "Watch a live session, or every session with --all",
		Usage:   "voicedesk monitor (<session-id> | --all) [--plain]",
		Flags: func() *pflag.FlagSet {
			fs := a.flags("monitor")
			fs.BoolVar(&all, "all", false, "follow every session")
			fs.BoolVar(&plain, "plain", false, "print events as lines instead of the full-screen view")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if all == (len(args) == 1) || len(args) > 1 {
				return usagef("usage: voicedesk monitor (<session-id> | --all) [--plain]")
			}
			client, err := a.connect(!plain)
			if err != nil {
				return err
			}
			if _, err := client.Auth.Restore(ctx); err != nil {
				return err
			}

			var opts []desk.MonitorOption
			if plain {
				printer := &monitorPrinter{w: a.stdout}
				opts = append(opts, desk.OnMonitorState(printer.print))
			}
			var stream *desk.MonitorStream
			if all {
				stream, err = client.Monitoring.StreamAll(ctx, opts...)
			} else {
				stream, err = client.Monitoring.Stream(ctx, args[0], opts...)
			}
			if err != nil {
				return err
			}
			defer stream.Close()

			if plain {
				select {
				case <-ctx.Done():
					return nil
				case <-stream.Done():
					return stream.Wait()
				}
			}
			return a.monitorTUI(ctx, stream)
		},
	}
}

func (a *App) monitorTUI(ctx context.Context, stream *desk.MonitorStream) error {
	snaps := tui.Watch(stream.Store())
	defer snaps.Stop()

	program := tea.NewProgram(
		tui.NewMonitorModel(stream, snaps.C()),
		tea.WithContext(ctx),
		tea.WithInput(a.stdin),
		tea.WithOutput(a.stdout),
		tea.WithAltScreen(),
	)
	final, err := program.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("monitor view: %w", err)
	}
	if model, ok := final.(tui.MonitorModel); ok {
		return model.Err()
	}
	return nil
}

// monitorPrinter prints the transcript turns and log entries each new
// snapshot adds. Snapshots arrive serialized from the store.
type monitorPrinter struct {
	w        io.Writer
	messages int
	logs     int
	observed int
	status   string
	statuses map[string]string
}

func (p *monitorPrinter) print(s state.MonitorState) {
	if s.Status != "" && s.Status != p.status {
		if p.status != "" {
			fmt.Fprintf(p.w, "[%s] status %s\n", s.SessionID, s.Status)
		}
		p.status = s.Status
	}
	for _, o := range s.Observed[min(p.observed, len(s.Observed)):] {
		fmt.Fprintf(p.w, "[%s] session started with %s\n", o.SessionID, o.AgentName)
	}
	p.observed = len(s.Observed)
	p.printObservedStatus(s.Observed)

	if len(s.Messages) < p.messages {
		p.messages = 0
	}
	for _, turn := range s.Messages[p.messages:] {
		sid := turn.SessionID
		if sid == "" {
			sid = s.SessionID
		}
		fmt.Fprintf(p.w, "[%s] %s: %s\n", sid, turn.Role, turn.Content)
	}
	p.messages = len(s.Messages)

	// Logs are newest first.
	if added := len(s.Logs) - p.logs; added > 0 {
		for i := added - 1; i >= 0; i-- {
			entry := s.Logs[i]
			sid := entry.SessionID
			if sid == "" {
				sid = s.SessionID
			}
			line := fmt.Sprintf("[%s] %s: %s", sid, entry.Kind, entry.Content)
			if entry.Detail != "" {
				line += " (" + entry.Detail + ")"
			}
			fmt.Fprintln(p.w, line)
		}
	}
	p.logs = len(s.Logs)
}

// printObservedStatus reports status changes of sessions seen on the
// all-sessions feed. The status a session starts with is not printed.
func (p *monitorPrinter) printObservedStatus(observed []state.ObservedSession) {
	for _, o := range observed {
		prev, seen := p.statuses[o.SessionID]
		if seen && prev != o.Status {
			fmt.Fprintf(p.w, "[%s] status %s\n", o.SessionID, o.Status)
		}
		if p.statuses == nil {
			p.statuses = make(map[string]string)
		}
		p.statuses[o.SessionID] = o.Status
	}
}

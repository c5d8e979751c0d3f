package app

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/pflag"

	"github.com/vango-go/voicedesk/pkg/core/types"
)

func (a *App) analyticsCommand() *Command {
	return &Command{
		Name:    "analytics",
		Summary: "Call volume, performance and logs",
		Subcommands: []*Command{
			a.analyticsOverviewCommand(),
			a.analyticsTrendsCommand(),
			a.analyticsAgentsCommand(),
			a.analyticsShadowCommand(),
			a.analyticsLogsCommand(),
			a.analyticsRecentCommand(),
		},
	}
}

func (a *App) analyticsOverviewCommand() *Command {
	return &Command{
		Name:    "overview",
		Summary: "Headline totals",
		Flags:   func() *pflag.FlagSet { return a.flags("analytics overview") },
		Run: func(ctx context.Context, args []string) error {
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			overview, err := client.Analytics.Overview(ctx)
			if err != nil {
				return err
			}
			return a.emit(overview, func(w io.Writer) {
				row(w, "TOTAL CALLS", overview.TotalCalls)
				row(w, "TOTAL MINUTES", fmt.Sprintf("%.1f", overview.TotalMinutes))
				row(w, "AVG LATENCY", fmt.Sprintf("%.0fms", overview.AvgLatencyMS))
				row(w, "TOTAL COST", fmt.Sprintf("$%.2f", overview.TotalCost))
				row(w, "SUCCESS RATE", percent(overview.SuccessRate))
			})
		},
	}
}

func (a *App) analyticsTrendsCommand() *Command {
	var days int
	return &Command{
		Name:    "trends",
		Summary: "Calls per day",
		Flags: func() *pflag.FlagSet {
			fs := a.flags("analytics trends")
			fs.IntVar(&days, "days", 7, "window in days")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			trends, err := client.Analytics.DailyTrends(ctx, days)
			if err != nil {
				return err
			}
			return a.emit(trends, func(w io.Writer) {
				row(w, "DATE", "CALLS")
				for _, day := range trends {
					row(w, day.Date, day.Count)
				}
			})
		},
	}
}

func (a *App) analyticsAgentsCommand() *Command {
	return &Command{
		Name:    "agents",
		Summary: "Per-agent performance",
		Flags:   func() *pflag.FlagSet { return a.flags("analytics agents") },
		Run: func(ctx context.Context, args []string) error {
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			perf, err := client.Analytics.AgentPerformance(ctx)
			if err != nil {
				return err
			}
			return a.emit(perf, func(w io.Writer) {
				row(w, "AGENT", "CALLS", "AVG DURATION", "AVG LATENCY")
				for _, p := range perf {
					row(w, p.Name, p.Calls, fmt.Sprintf("%.1fs", p.AvgDuration), fmt.Sprintf("%.0fms", p.AvgLatency))
				}
			})
		},
	}
}

func (a *App) analyticsShadowCommand() *Command {
	return &Command{
		Name:    "shadow",
		Summary: "Shadow-mode comparison stats",
		Flags:   func() *pflag.FlagSet { return a.flags("analytics shadow") },
		Run: func(ctx context.Context, args []string) error {
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			stats, err := client.Analytics.ShadowStats(ctx)
			if err != nil {
				return err
			}
			return a.emit(stats, func(w io.Writer) {
				keys := make([]string, 0, len(stats))
				for k := range stats {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					row(w, k, fmt.Sprint(stats[k]))
				}
			})
		},
	}
}

func (a *App) analyticsLogsCommand() *Command {
	var skip, limit int
	return &Command{
		Name:    "logs",
		Summary: "Page through call logs",
		Flags: func() *pflag.FlagSet {
			fs := a.flags("analytics logs")
			fs.IntVar(&skip, "skip", 0, "records to skip")
			fs.IntVar(&limit, "limit", 50, "records to return")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			logs, err := client.Analytics.Logs(ctx, skip, limit)
			if err != nil {
				return err
			}
			return a.printCallLogs(logs)
		},
	}
}

func (a *App) analyticsRecentCommand() *Command {
	var limit int
	return &Command{
		Name:    "recent",
		Summary: "Most recent calls",
		Flags: func() *pflag.FlagSet {
			fs := a.flags("analytics recent")
			fs.IntVar(&limit, "limit", 5, "calls to return")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			logs, err := client.Analytics.RecentCalls(ctx, limit)
			if err != nil {
				return err
			}
			return a.printCallLogs(logs)
		},
	}
}

func (a *App) printCallLogs(logs []types.CallLog) error {
	return a.emit(logs, func(w io.Writer) {
		row(w, "STARTED", "SESSION", "AGENT", "CALLER", "DURATION", "TURNS", "COST", "STATUS")
		for _, l := range logs {
			agent := l.AgentName
			if agent == "" {
				agent = l.AgentID
			}
			row(w, fmtTime(l.StartTime), l.SessionID, orDash(agent), deref(l.CallerID),
				fmt.Sprintf("%.0fs", l.DurationSeconds), l.TotalTurns, fmt.Sprintf("$%.4f", l.EstimatedCost), orDash(l.Status))
		}
	})
}

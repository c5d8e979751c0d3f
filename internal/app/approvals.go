package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/vango-go/voicedesk/pkg/core/types"
	"github.com/vango-go/voicedesk/pkg/state"
)

func (a *App) approvalsCommand() *Command {
	return &Command{
		Name:    "approvals",
		Summary: "Review actions waiting for a human decision",
		Subcommands: []*Command{
			a.approvalsListCommand(),
			a.decideCommand("approve", types.DecisionApproved),
			a.decideCommand("reject", types.DecisionRejected),
		},
	}
}

func (a *App) approvalsListCommand() *Command {
	return &Command{
		Name:    "list",
		Summary: "List pending actions",
		Flags:   func() *pflag.FlagSet { return a.flags("approvals list") },
		Run: func(ctx context.Context, args []string) error {
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			pending, err := client.HITL.Pending(ctx)
			if err != nil {
				return err
			}
			view := state.NewApprovalsStore().Dispatch(state.ActionsLoaded{Actions: pending})
			return a.emit(view.Pending, func(w io.Writer) {
				if len(view.Pending) == 0 {
					fmt.Fprintln(w, "No pending actions")
					return
				}
				row(w, "ID", "TYPE", "SESSION", "AGENT", "CREATED", "DESCRIPTION")
				for _, action := range view.Pending {
					row(w, action.ID, action.ActionType, action.SessionID, action.AgentID, fmtTime(action.CreatedAt), truncate(action.Description, 60))
				}
			})
		},
	}
}

func (a *App) decideCommand(name string, decision types.Decision) *Command {
	var feedback string
	return &Command{
		Name:    name,
		Summary: fmt.Sprintf("Mark a pending action %s", decision),
		Usage:   fmt.Sprintf("voicedesk approvals %s <action-id> [--feedback text]", name),
		Flags: func() *pflag.FlagSet {
			fs := a.flags("approvals " + name)
			fs.StringVar(&feedback, "feedback", "", "note recorded with the decision")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if err := exactArgs(args, 1, "approvals "+name+" <action-id>"); err != nil {
				return err
			}
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			pending, err := client.HITL.Pending(ctx)
			if err != nil {
				return err
			}
			queue := state.NewApprovalsStore()
			queue.Dispatch(state.ActionsLoaded{Actions: pending})

			result, err := client.HITL.Decide(ctx, args[0], decision, feedback)
			if err != nil {
				return err
			}
			view := queue.Dispatch(state.ActionDecided{ID: args[0]})
			if a.jsonOut {
				return writeJSON(a.stdout, decisionOutput{Result: result, Pending: view.Pending})
			}
			fmt.Fprintf(a.stdout, "Action %s %s\n", args[0], orDash(result.Decision))
			printQueue(a.stdout, view.Pending)
			return nil
		},
	}
}

type decisionOutput struct {
	Result  *types.DecisionResult `json:"result"`
	Pending []types.PendingAction `json:"pending"`
}

// printQueue lists the ids still waiting after a decision.
func printQueue(w io.Writer, pending []types.PendingAction) {
	if len(pending) == 0 {
		fmt.Fprintln(w, "No pending actions")
		return
	}
	ids := make([]string, 0, len(pending))
	for _, action := range pending {
		ids = append(ids, action.ID)
	}
	fmt.Fprintf(w, "Still pending: %s\n", strings.Join(ids, ", "))
}

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/pflag"

	"github.com/vango-go/voicedesk/pkg/core"
	"github.com/vango-go/voicedesk/pkg/core/types"
	"github.com/vango-go/voicedesk/pkg/state"
	desk "github.com/vango-go/voicedesk/sdk"
)

func (a *App) campaignsCommand() *Command {
	return &Command{
		Name:    "campaigns",
		Summary: "Create, fill and run outbound call campaigns",
		Subcommands: []*Command{
			a.campaignsListCommand(),
			a.campaignsCreateCommand(),
			a.campaignsShowCommand(),
			a.campaignsStartCommand(),
			a.campaignsUploadCommand(),
			a.campaignsContactsCommand(),
		},
	}
}

func (a *App) campaignsListCommand() *Command {
	return &Command{
		Name:    "list",
		Summary: "List campaigns",
		Flags:   func() *pflag.FlagSet { return a.flags("campaigns list") },
		Run: func(ctx context.Context, args []string) error {
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			campaigns, err := client.Campaigns.List(ctx)
			if err != nil {
				return err
			}
			return a.emit(campaigns, func(w io.Writer) {
				row(w, "ID", "NAME", "STATUS", "AGENT", "CONTACTS", "COMPLETED", "FAILED", "CREATED")
				for _, c := range campaigns {
					row(w, c.ID, c.Name, c.Status, c.AgentID, c.TotalContacts, c.CompletedCalls, c.FailedCalls, fmtTime(c.CreatedAt))
				}
			})
		},
	}
}

func (a *App) campaignsCreateCommand() *Command {
	var name, agentID, description string
	var concurrency int
	return &Command{
		Name:    "create",
		Summary: "Create a draft campaign",
		Usage:   "voicedesk campaigns create --name n --agent agent-id [--description d] [--concurrency n]",
		Flags: func() *pflag.FlagSet {
			fs := a.flags("campaigns create")
			fs.StringVar(&name, "name", "", "campaign name")
			fs.StringVar(&agentID, "agent", "", "agent that places the calls")
			fs.StringVar(&description, "description", "", "free-form description")
			fs.IntVar(&concurrency, "concurrency", 0, "concurrent call limit (backend default when 0)")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if name == "" || agentID == "" {
				return usagef("campaigns create: --name and --agent are required")
			}
			in := types.CampaignInput{Name: name, AgentID: agentID}
			if description != "" {
				in.Description = &description
			}
			if concurrency > 0 {
				in.ConcurrencyLimit = &concurrency
			}
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			ref, err := client.Campaigns.Create(ctx, in)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(a.stdout, ref)
			}
			fmt.Fprintf(a.stdout, "Created campaign %s (%s)\n", ref.Name, ref.ID)
			return nil
		},
	}
}

func (a *App) campaignsShowCommand() *Command {
	var watch bool
	return &Command{
		Name:    "show",
		Summary: "Show campaign progress",
		Usage:   "voicedesk campaigns show <campaign-id> [--watch]",
		Flags: func() *pflag.FlagSet {
			fs := a.flags("campaigns show")
			fs.BoolVarP(&watch, "watch", "w", false, "refresh at the campaign poll interval")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if err := exactArgs(args, 1, "campaigns show <campaign-id> [--watch]"); err != nil {
				return err
			}
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			if !watch {
				detail, err := client.Campaigns.Get(ctx, args[0])
				if err != nil {
					return err
				}
				return a.printCampaign(detail)
			}
			return a.watchCampaign(ctx, client, args[0])
		},
	}
}

// watchCampaign polls one campaign until ctx ends. Auth failures stop the
// watch; other failures are logged and the next tick tries again.
func (a *App) watchCampaign(ctx context.Context, client *desk.Client, id string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store := state.NewCampaignStore()
	var (
		mu      sync.Mutex
		lastSeq uint64
		fatal   error
	)
	poll(ctx, a.cfg.Polling.Campaign, func(ctx context.Context, seq uint64) {
		detail, err := client.Campaigns.Get(ctx, id)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, core.ErrSessionExpired) || errors.Is(err, core.ErrNotAuthenticated) {
				if fatal == nil {
					fatal = err
				}
				cancel()
				return
			}
			a.logger.Warn("campaign poll failed", "campaign_id", id, "error", err)
			return
		}
		if seq < lastSeq {
			return
		}
		lastSeq = seq
		next := store.Dispatch(state.CampaignLoaded{Detail: *detail})
		if err := a.printCampaign(next.Detail); err != nil {
			a.logger.Warn("print campaign", "error", err)
		}
	})
	return fatal
}

func (a *App) printCampaign(detail *types.CampaignDetail) error {
	if detail == nil {
		return nil
	}
	if a.jsonOut {
		return writeJSON(a.stdout, detail)
	}
	c := detail.Campaign
	statuses := make([]string, 0, len(detail.Stats))
	for status := range detail.Stats {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	counts := make([]string, 0, len(statuses))
	for _, status := range statuses {
		counts = append(counts, fmt.Sprintf("%s=%d", status, detail.Stats[status]))
	}
	fmt.Fprintf(a.stdout, "%s  %s  status=%s  progress=%d%%  contacts=%d  %s\n",
		c.ID, c.Name, c.Status, detail.Progress(), c.TotalContacts, strings.Join(counts, " "))
	return nil
}

func (a *App) campaignsStartCommand() *Command {
	return &Command{
		Name:    "start",
		Summary: "Start dialing a campaign",
		Usage:   "voicedesk campaigns start <campaign-id>",
		Flags:   func() *pflag.FlagSet { return a.flags("campaigns start") },
		Run: func(ctx context.Context, args []string) error {
			if err := exactArgs(args, 1, "campaigns start <campaign-id>"); err != nil {
				return err
			}
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			detail, err := client.Campaigns.Get(ctx, args[0])
			if err != nil {
				return err
			}
			store := state.NewCampaignStore()
			store.Dispatch(state.CampaignLoaded{Detail: *detail})
			store.Dispatch(state.StartRequested{})

			started, err := client.Campaigns.Start(ctx, args[0])
			if err != nil {
				return err
			}
			// The start response reports "started"; the campaign itself is now running.
			view := store.Dispatch(state.Started{Status: types.CampaignRunning})
			if a.jsonOut {
				return writeJSON(a.stdout, started)
			}
			fmt.Fprintf(a.stdout, "Campaign %s %s\n", orDash(started.Campaign), started.Status)
			return a.printCampaign(view.Detail)
		},
	}
}

func (a *App) campaignsUploadCommand() *Command {
	return &Command{
		Name:    "upload",
		Summary: "Upload a contacts CSV",
		Usage:   "voicedesk campaigns upload <campaign-id> <contacts.csv|->",
		Flags:   func() *pflag.FlagSet { return a.flags("campaigns upload") },
		Run: func(ctx context.Context, args []string) error {
			if err := exactArgs(args, 2, "campaigns upload <campaign-id> <contacts.csv|->"); err != nil {
				return err
			}
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			csv, filename, err := a.openInput(args[1])
			if err != nil {
				return err
			}
			defer csv.Close()

			store := state.NewCampaignStore()
			store.Dispatch(state.UploadStarted{})
			result, err := client.Campaigns.UploadCSV(ctx, args[0], filename, csv)
			if err != nil {
				next := store.Dispatch(uploadFailure(err))
				fmt.Fprintln(a.stderr, next.Notice)
				return err
			}
			next := store.Dispatch(state.UploadSucceeded{Added: result.Added})
			if a.jsonOut {
				return writeJSON(a.stdout, result)
			}
			fmt.Fprintf(a.stdout, "Added %d contacts\n", next.LastAdded)
			return nil
		},
	}
}

// uploadFailure separates a rejected sheet (4xx) from a system failure.
func uploadFailure(err error) state.CampaignAction {
	var apiErr *core.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode >= http.StatusBadRequest && apiErr.StatusCode < http.StatusInternalServerError {
		return state.UploadRejected{}
	}
	return state.UploadErrored{Err: err}
}

func (a *App) campaignsContactsCommand() *Command {
	var file string
	var phones []string
	return &Command{
		Name:    "contacts",
		Summary: "Add contacts from flags or a YAML/JSON list",
		Usage:   "voicedesk campaigns contacts <campaign-id> (--phone number... | --file contacts.yaml)",
		Flags: func() *pflag.FlagSet {
			fs := a.flags("campaigns contacts")
			fs.StringArrayVar(&phones, "phone", nil, "phone number to add (repeatable)")
			fs.StringVarP(&file, "file", "f", "", "contact list document, - for stdin")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if err := exactArgs(args, 1, "campaigns contacts <campaign-id> --phone number"); err != nil {
				return err
			}
			var contacts []types.Contact
			if file != "" {
				if err := a.readDocument(file, &contacts); err != nil {
					return err
				}
			}
			for _, phone := range phones {
				contacts = append(contacts, types.Contact{PhoneNumber: phone})
			}
			if len(contacts) == 0 {
				return usagef("campaigns contacts: give --phone or --file")
			}
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			result, err := client.Campaigns.AddContacts(ctx, args[0], contacts)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(a.stdout, result)
			}
			fmt.Fprintf(a.stdout, "Added %d contacts\n", result.Added)
			return nil
		},
	}
}

package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
)

func (a *App) templatesCommand() *Command {
	return &Command{
		Name:    "templates",
		Summary: "Browse and install marketplace agent templates",
		Subcommands: []*Command{
			{
				Name:    "list",
				Summary: "List templates",
				Flags:   func() *pflag.FlagSet { return a.flags("templates list") },
				Run: func(ctx context.Context, args []string) error {
					client, err := a.connect(false)
					if err != nil {
						return err
					}
					templates, err := client.Marketplace.Templates(ctx)
					if err != nil {
						return err
					}
					return a.emit(templates, func(w io.Writer) {
						row(w, "ID", "NAME", "CATEGORY", "ROLE", "RATING", "TOOLS")
						for _, t := range templates {
							row(w, t.ID, t.Name, t.Category, t.Role, fmt.Sprintf("%.1f", t.Rating), orDash(strings.Join(t.RecommendedTools, ",")))
						}
					})
				},
			},
			{
				Name:    "install",
				Summary: "Create an agent from a template",
				Usage:   "voicedesk templates install <template-id>",
				Flags:   func() *pflag.FlagSet { return a.flags("templates install") },
				Run: func(ctx context.Context, args []string) error {
					if err := exactArgs(args, 1, "templates install <template-id>"); err != nil {
						return err
					}
					client, err := a.connect(false)
					if err != nil {
						return err
					}
					result, err := client.Marketplace.Install(ctx, args[0])
					if err != nil {
						return err
					}
					if a.jsonOut {
						return writeJSON(a.stdout, result)
					}
					fmt.Fprintf(a.stdout, "Installed %s as agent %s\n", result.AgentName, result.AgentID)
					return nil
				},
			},
		},
	}
}

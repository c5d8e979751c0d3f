package app

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/vango-go/voicedesk/pkg/core/types"
)

func (a *App) agentsCommand() *Command {
	return &Command{
		Name:    "agents",
		Summary: "Manage agents and their versions",
		Subcommands: []*Command{
			a.agentsListCommand(),
			a.agentsGetCommand(),
			a.agentsCreateCommand(),
			a.agentsUpdateCommand(),
			a.agentsDeleteCommand(),
			a.agentsVersionsCommand(),
			a.agentsPinCommand(),
		},
	}
}

func (a *App) agentsListCommand() *Command {
	return &Command{
		Name:    "list",
		Summary: "List agents",
		Flags:   func() *pflag.FlagSet { return a.flags("agents list") },
		Run: func(ctx context.Context, args []string) error {
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			agents, err := client.Agents.List(ctx)
			if err != nil {
				return err
			}
			return a.emit(agents, func(w io.Writer) {
				row(w, "ID", "NAME", "ROLE", "LANGUAGE", "ACTIVE", "UPDATED")
				for _, agent := range agents {
					row(w, agent.ID, agent.Name, agent.Role, agent.Language, agent.IsActive, fmtTime(agent.UpdatedAt))
				}
			})
		},
	}
}

func (a *App) agentsGetCommand() *Command {
	return &Command{
		Name:    "get",
		Summary: "Show one agent",
		Usage:   "voicedesk agents get <agent-id>",
		Flags:   func() *pflag.FlagSet { return a.flags("agents get") },
		Run: func(ctx context.Context, args []string) error {
			if err := exactArgs(args, 1, "agents get <agent-id>"); err != nil {
				return err
			}
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			agent, err := client.Agents.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return a.emit(agent, func(w io.Writer) {
				row(w, "ID", agent.ID)
				row(w, "NAME", agent.Name)
				row(w, "ROLE", agent.Role)
				row(w, "LANGUAGE", agent.Language)
				row(w, "ACTIVE", agent.IsActive)
				row(w, "VERSION", deref(agent.ActiveVersionID))
				row(w, "DESCRIPTION", deref(agent.Description))
				row(w, "PERSONA", truncate(agent.Persona, 100))
				row(w, "TOOLS", len(agent.Tools))
				row(w, "CREATED", fmtTime(agent.CreatedAt))
			})
		},
	}
}

func (a *App) agentsCreateCommand() *Command {
	var file, name, role, persona, language string
	return &Command{
		Name:    "create",
		Summary: "Create an agent from flags or a YAML/JSON file",
		Usage:   "voicedesk agents create (--file agent.yaml | --name n --role r --persona p)",
		Flags: func() *pflag.FlagSet {
			fs := a.flags("agents create")
			fs.StringVarP(&file, "file", "f", "", "agent document, - for stdin")
			fs.StringVar(&name, "name", "", "agent name")
			fs.StringVar(&role, "role", "", "agent role")
			fs.StringVar(&persona, "persona", "", "system persona")
			fs.StringVar(&language, "language", "", "language tag (default en-US)")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			var in types.AgentInput
			if file != "" {
				if err := a.readDocument(file, &in); err != nil {
					return err
				}
			}
			if name != "" {
				in.Name = name
			}
			if role != "" {
				in.Role = role
			}
			if persona != "" {
				in.Persona = persona
			}
			if language != "" {
				in.Language = language
			}
			if in.Name == "" || in.Role == "" || in.Persona == "" {
				return usagef("agents create: name, role and persona are required")
			}
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			agent, err := client.Agents.Create(ctx, in)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(a.stdout, agent)
			}
			fmt.Fprintf(a.stdout, "Created agent %s (%s)\n", agent.Name, agent.ID)
			return nil
		},
	}
}

func (a *App) agentsUpdateCommand() *Command {
	var file string
	return &Command{
		Name:    "update",
		Summary: "Apply a YAML/JSON patch to an agent",
		Usage:   "voicedesk agents update <agent-id> --file patch.yaml",
		Flags: func() *pflag.FlagSet {
			fs := a.flags("agents update")
			fs.StringVarP(&file, "file", "f", "", "patch document, - for stdin")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if err := exactArgs(args, 1, "agents update <agent-id> --file patch.yaml"); err != nil {
				return err
			}
			if file == "" {
				return usagef("agents update: --file is required")
			}
			var patch types.AgentPatch
			if err := a.readDocument(file, &patch); err != nil {
				return err
			}
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			agent, err := client.Agents.Update(ctx, args[0], patch)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(a.stdout, agent)
			}
			fmt.Fprintf(a.stdout, "Updated agent %s (%s)\n", agent.Name, agent.ID)
			return nil
		},
	}
}

func (a *App) agentsDeleteCommand() *Command {
	return &Command{
		Name:    "delete",
		Summary: "Delete an agent",
		Usage:   "voicedesk agents delete <agent-id>",
		Flags:   func() *pflag.FlagSet { return a.flags("agents delete") },
		Run: func(ctx context.Context, args []string) error {
			if err := exactArgs(args, 1, "agents delete <agent-id>"); err != nil {
				return err
			}
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			if err := client.Agents.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Deleted agent %s\n", args[0])
			return nil
		},
	}
}

func (a *App) agentsVersionsCommand() *Command {
	var file string
	return &Command{
		Name:    "versions",
		Summary: "List an agent's versions, or add one with --file",
		Usage:   "voicedesk agents versions <agent-id> [--file version.yaml]",
		Flags: func() *pflag.FlagSet {
			fs := a.flags("agents versions")
			fs.StringVarP(&file, "file", "f", "", "create a version from this document instead of listing")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if err := exactArgs(args, 1, "agents versions <agent-id> [--file version.yaml]"); err != nil {
				return err
			}
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			if file != "" {
				var in types.AgentVersionInput
				if err := a.readDocument(file, &in); err != nil {
					return err
				}
				version, err := client.Agents.CreateVersion(ctx, args[0], in)
				if err != nil {
					return err
				}
				if a.jsonOut {
					return writeJSON(a.stdout, version)
				}
				fmt.Fprintf(a.stdout, "Created version %d (%s)\n", version.VersionNumber, version.ID)
				return nil
			}
			versions, err := client.Agents.Versions(ctx, args[0])
			if err != nil {
				return err
			}
			return a.emit(versions, func(w io.Writer) {
				row(w, "ID", "VERSION", "CHANGE LOG", "CREATED")
				for _, v := range versions {
					row(w, v.ID, v.VersionNumber, truncate(deref(v.ChangeLog), 50), fmtTime(v.CreatedAt))
				}
			})
		},
	}
}

func (a *App) agentsPinCommand() *Command {
	return &Command{
		Name:    "pin",
		Summary: "Make a version the agent's active one",
		Usage:   "voicedesk agents pin <agent-id> <version-id>",
		Flags:   func() *pflag.FlagSet { return a.flags("agents pin") },
		Run: func(ctx context.Context, args []string) error {
			if err := exactArgs(args, 2, "agents pin <agent-id> <version-id>"); err != nil {
				return err
			}
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			result, err := client.Agents.Pin(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(a.stdout, result)
			}
			fmt.Fprintf(a.stdout, "Pinned version %d (%s)\n", result.Version, result.Status)
			return nil
		},
	}
}

package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/vango-go/voicedesk/pkg/core/types"
)

func (a *App) knowledgeCommand() *Command {
	return &Command{
		Name:    "knowledge",
		Summary: "Manage an agent's knowledge base",
		Subcommands: []*Command{
			a.knowledgeListCommand(),
			a.knowledgeAddCommand(),
			a.knowledgeQueryCommand(),
			a.knowledgeDeleteCommand(),
		},
	}
}

func (a *App) knowledgeListCommand() *Command {
	return &Command{
		Name:    "list",
		Summary: "List knowledge entries for an agent",
		Usage:   "voicedesk knowledge list <agent-id>",
		Flags:   func() *pflag.FlagSet { return a.flags("knowledge list") },
		Run: func(ctx context.Context, args []string) error {
			if err := exactArgs(args, 1, "knowledge list <agent-id>"); err != nil {
				return err
			}
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			entries, err := client.Knowledge.List(ctx, args[0])
			if err != nil {
				return err
			}
			return a.emit(entries, func(w io.Writer) {
				row(w, "ID", "TITLE", "ACTIVE", "CONTENT")
				for _, entry := range entries {
					row(w, entry.ID, entry.Title, entry.IsActive, truncate(entry.Content, 60))
				}
			})
		},
	}
}

func (a *App) knowledgeAddCommand() *Command {
	var title, content, file string
	return &Command{
		Name:    "add",
		Summary: "Add a knowledge entry",
		Usage:   "voicedesk knowledge add <agent-id> --title t (--content text | --file doc.md)",
		Flags: func() *pflag.FlagSet {
			fs := a.flags("knowledge add")
			fs.StringVar(&title, "title", "", "entry title")
			fs.StringVar(&content, "content", "", "entry body")
			fs.StringVarP(&file, "file", "f", "", "read the body from this file, - for stdin")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if err := exactArgs(args, 1, "knowledge add <agent-id> --title t --content text"); err != nil {
				return err
			}
			if file != "" {
				body, _, err := a.openInput(file)
				if err != nil {
					return err
				}
				data, err := io.ReadAll(body)
				body.Close()
				if err != nil {
					return fmt.Errorf("read %s: %w", file, err)
				}
				content = string(data)
			}
			if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
				return usagef("knowledge add: --title and --content (or --file) are required")
			}
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			entry, err := client.Knowledge.Add(ctx, args[0], types.KnowledgeInput{Title: title, Content: content})
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(a.stdout, entry)
			}
			fmt.Fprintf(a.stdout, "Added %q (%s)\n", entry.Title, entry.ID)
			return nil
		},
	}
}

func (a *App) knowledgeQueryCommand() *Command {
	var limit int
	return &Command{
		Name:    "query",
		Summary: "Search an agent's knowledge base",
		Usage:   "voicedesk knowledge query <agent-id> <query...> [--limit n]",
		Flags: func() *pflag.FlagSet {
			fs := a.flags("knowledge query")
			fs.IntVar(&limit, "limit", 3, "maximum hits")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) < 2 {
				return usagef("usage: voicedesk knowledge query <agent-id> <query...>")
			}
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			hits, err := client.Knowledge.Query(ctx, args[0], strings.Join(args[1:], " "), limit)
			if err != nil {
				return err
			}
			return a.emit(hits, func(w io.Writer) {
				row(w, "SCORE", "TITLE", "CONTENT")
				for _, hit := range hits {
					row(w, fmt.Sprintf("%.3f", hit.Score), hit.Title, truncate(hit.Content, 70))
				}
			})
		},
	}
}

func (a *App) knowledgeDeleteCommand() *Command {
	return &Command{
		Name:    "delete",
		Summary: "Delete a knowledge entry",
		Usage:   "voicedesk knowledge delete <entry-id>",
		Flags:   func() *pflag.FlagSet { return a.flags("knowledge delete") },
		Run: func(ctx context.Context, args []string) error {
			if err := exactArgs(args, 1, "knowledge delete <entry-id>"); err != nil {
				return err
			}
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			if err := client.Knowledge.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Deleted knowledge entry %s\n", args[0])
			return nil
		},
	}
}

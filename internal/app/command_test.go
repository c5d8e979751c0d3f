package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "voicedesk",
		Subcommands: []*Command{
			{
				Name: "agents",
				Subcommands: []*Command{
					{
						Name: "get",
						Run: func(ctx context.Context, args []string) error {
							called = "agents get"
							receivedArgs = args
							return nil
						},
					},
				},
			},
		},
	}

	if err := root.Execute(context.Background(), &bytes.Buffer{}, []string{"agents", "get", "a1"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "agents get" {
		t.Errorf("dispatched to %q, want %q", called, "agents get")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "a1" {
		t.Errorf("args = %v, want [a1]", receivedArgs)
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var limit int
	var receivedArgs []string

	cmd := &Command{
		Name: "logs",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("logs", pflag.ContinueOnError)
			fs.IntVar(&limit, "limit", 50, "page size")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			receivedArgs = args
			return nil
		},
	}

	if err := cmd.Execute(context.Background(), &bytes.Buffer{}, []string{"--limit", "5", "rest"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if limit != 5 {
		t.Errorf("limit = %d, want 5", limit)
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "rest" {
		t.Errorf("args = %v, want [rest]", receivedArgs)
	}
}

func TestCommand_Execute_BadFlagIsUsageError(t *testing.T) {
	cmd := &Command{
		Name:  "logs",
		Flags: func() *pflag.FlagSet { return pflag.NewFlagSet("logs", pflag.ContinueOnError) },
		Run:   func(ctx context.Context, args []string) error { return nil },
	}
	err := cmd.Execute(context.Background(), &bytes.Buffer{}, []string{"--nope"})
	if !IsUsage(err) {
		t.Fatalf("Execute() error = %v, want a usage error", err)
	}
}

func TestCommand_Execute_UnknownSubcommandSuggests(t *testing.T) {
	root := &Command{
		Name: "voicedesk",
		Subcommands: []*Command{
			{Name: "monitor", Run: func(ctx context.Context, args []string) error { return nil }},
			{Name: "campaigns", Run: func(ctx context.Context, args []string) error { return nil }},
		},
	}

	err := root.Execute(context.Background(), &bytes.Buffer{}, []string{"moniter"})
	if !IsUsage(err) {
		t.Fatalf("Execute() error = %v, want a usage error", err)
	}
	if !strings.Contains(err.Error(), `did you mean "monitor"?`) {
		t.Errorf("error = %q, want a suggestion", err)
	}

	err = root.Execute(context.Background(), &bytes.Buffer{}, []string{"zzzzzzzz"})
	if !IsUsage(err) || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %v, want a usage error without a suggestion", err)
	}
}

func TestCommand_Execute_HelpPrintsSubcommands(t *testing.T) {
	root := &Command{
		Name:    "voicedesk",
		Summary: "Operate agents.",
		Subcommands: []*Command{
			{Name: "chat", Summary: "Talk to an agent", Run: func(ctx context.Context, args []string) error { return nil }},
		},
	}

	var help bytes.Buffer
	err := root.Execute(context.Background(), &help, []string{"--help"})
	if !errors.Is(err, errHelp) {
		t.Fatalf("Execute() error = %v, want errHelp", err)
	}
	for _, want := range []string{"Operate agents.", "Usage:\n  voicedesk <command> [flags]", "chat", "Talk to an agent"} {
		if !strings.Contains(help.String(), want) {
			t.Errorf("help missing %q:\n%s", want, help.String())
		}
	}
}

func TestCommand_Execute_RunErrorPassesThrough(t *testing.T) {
	boom := errors.New("boom")
	cmd := &Command{Name: "start", Run: func(ctx context.Context, args []string) error { return boom }}
	if err := cmd.Execute(context.Background(), &bytes.Buffer{}, nil); !errors.Is(err, boom) {
		t.Errorf("Execute() error = %v, want %v", err, boom)
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"agents", "agents", 0},
		{"agnets", "agents", 2},
		{"voice", "voices", 1},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestExactArgs(t *testing.T) {
	if err := exactArgs([]string{"a"}, 1, "agents get <agent-id>"); err != nil {
		t.Errorf("exactArgs() = %v, want nil", err)
	}
	err := exactArgs(nil, 1, "agents get <agent-id>")
	if !IsUsage(err) || err.Error() != "usage: voicedesk agents get <agent-id>" {
		t.Errorf("exactArgs() = %v", err)
	}
}

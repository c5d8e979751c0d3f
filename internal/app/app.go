// Package app implements the voicedesk command tree.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/vango-go/voicedesk/internal/logging"
	"github.com/vango-go/voicedesk/pkg/auth"
	"github.com/vango-go/voicedesk/pkg/config"
	"github.com/vango-go/voicedesk/pkg/core"
	"github.com/vango-go/voicedesk/pkg/metrics"
	desk "github.com/vango-go/voicedesk/sdk"
)

// Version is stamped at build time with -ldflags "-X".
var Version = "dev"

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// Options wires the process environment into an App.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// ClientOptions are applied after the options derived from config.
	ClientOptions []desk.ClientOption
}

// App holds per-invocation state: parsed global flags, the loaded
// configuration and the lazily built client.
type App struct {
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	clientOpts []desk.ClientOption

	configPath string
	jsonOut    bool

	cfg       config.Config
	logger    *slog.Logger
	logCloser io.Closer
	metrics   *metrics.Metrics
	client    *desk.Client

	root *Command
}

// New builds the command tree.
func New(opts Options) *App {
	a := &App{
		stdin:      opts.Stdin,
		stdout:     opts.Stdout,
		stderr:     opts.Stderr,
		clientOpts: opts.ClientOptions,
	}
	if a.stdin == nil {
		a.stdin = os.Stdin
	}
	if a.stdout == nil {
		a.stdout = os.Stdout
	}
	if a.stderr == nil {
		a.stderr = os.Stderr
	}
	a.root = &Command{
		Name:    "voicedesk",
		Summary: "Operate a voice-agent orchestration backend from the terminal.",
		Subcommands: []*Command{
			a.loginCommand(),
			a.registerCommand(),
			a.logoutCommand(),
			a.whoamiCommand(),
			a.agentsCommand(),
			a.voicesCommand(),
			a.knowledgeCommand(),
			a.campaignsCommand(),
			a.analyticsCommand(),
			a.approvalsCommand(),
			a.sessionsCommand(),
			a.templatesCommand(),
			a.chatCommand(),
			a.monitorCommand(),
			a.watchCommand(),
			a.versionCommand(),
		},
	}
	return a
}

// Run executes args and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	defer a.close()
	err := a.root.Execute(ctx, a.stderr, args)
	return a.report(err)
}

func (a *App) report(err error) int {
	switch {
	case err == nil, errors.Is(err, errHelp):
		return ExitOK
	case IsUsage(err):
		fmt.Fprintln(a.stderr, err)
		return ExitUsage
	case errors.Is(err, core.ErrSessionExpired):
		fmt.Fprintln(a.stderr, "session expired, run `voicedesk login`")
		return ExitFailure
	case errors.Is(err, core.ErrNotAuthenticated):
		fmt.Fprintln(a.stderr, "not logged in, run `voicedesk login`")
		return ExitFailure
	default:
		fmt.Fprintf(a.stderr, "voicedesk: %v\n", err)
		return ExitFailure
	}
}

func (a *App) close() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

// flags returns a flag set carrying the global flags.
func (a *App) flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVar(&a.configPath, "config", "", "config file (default $VOICEDESK_CONFIG)")
	fs.BoolVar(&a.jsonOut, "json", false, "print JSON instead of a table")
	return fs
}

// connect loads configuration and builds the client. Interactive terminal
// views pass toFile so log records go to the log file.
func (a *App) connect(toFile bool) (*desk.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	logger, closer, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
		ToFile: toFile,
		Stderr: a.stderr,
	})
	if err != nil {
		return nil, err
	}
	a.cfg = cfg
	a.logger = logger
	a.logCloser = closer
	a.metrics = metrics.New("voicedesk")

	opts := []desk.ClientOption{
		desk.WithBaseURL(cfg.APIURL),
		desk.WithWebSocketURL(cfg.WSURL),
		desk.WithTimeout(cfg.RequestTimeout),
		desk.WithLogger(logger),
		desk.WithTokenStore(auth.NewFileStore(cfg.TokenFile)),
		desk.WithMetrics(a.metrics),
		desk.WithReconnect(desk.ReconnectPolicy{
			Enabled:  cfg.Reconnect.Enabled,
			Base:     cfg.Reconnect.Base,
			Max:      cfg.Reconnect.Max,
			Attempts: uint64(cfg.Reconnect.Attempts),
		}),
	}
	a.client = desk.NewClient(append(opts, a.clientOpts...)...)
	return a.client, nil
}

func (a *App) versionCommand() *Command {
	return &Command{
		Name:    "version",
		Summary: "Print the voicedesk version",
		Run: func(ctx context.Context, args []string) error {
			fmt.Fprintf(a.stdout, "voicedesk %s\n", Version)
			return nil
		},
	}
}

// exactArgs checks the positional argument count.
func exactArgs(args []string, n int, usage string) error {
	if len(args) != n {
		return usagef("usage: voicedesk %s", usage)
	}
	return nil
}

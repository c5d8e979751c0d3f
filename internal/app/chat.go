package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/vango-go/voicedesk/internal/tui"
	"github.com/vango-go/voicedesk/pkg/live"
	"github.com/vango-go/voicedesk/pkg/live/protocol"
	desk "github.com/vango-go/voicedesk/sdk"
)

func (a *App) chatCommand() *Command {
	var voice string
	var plain bool
	return &Command{
		Name:    "chat",
		Summary: "Talk to an agent in the playground",
		Usage:   "voicedesk chat <agent-id> [--voice id] [--plain]",
		Flags: func() *pflag.FlagSet {
			fs := a.flags("chat")
			fs.StringVar(&voice, "voice", "", "voice id (agent default when empty)")
			fs.BoolVar(&plain, "plain", false, "line mode: read stdin, print frames")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if err := exactArgs(args, 1, "chat <agent-id> [--voice id] [--plain]"); err != nil {
				return err
			}
			client, err := a.connect(!plain)
			if err != nil {
				return err
			}
			if _, err := client.Auth.Restore(ctx); err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			sink := newAudioSink(a.cfg.AudioDir, a.logger)
			var sessionID atomic.Value
			sessionID.Store("")
			router := live.NewRouter[protocol.Frame]().
				Handle(protocol.TypeSessionStart, func(f protocol.Frame) {
					sessionID.Store(f.(protocol.SessionStart).SessionID)
				}).
				Handle(protocol.TypeAudio, func(f protocol.Frame) {
					if _, err := sink.Write(sessionID.Load().(string), f.(protocol.Audio).Data); err != nil {
						a.logger.Warn("drop audio segment", "error", err)
					}
				})
			var printer *framePrinter
			if plain {
				printer = &framePrinter{w: a.stdout}
				printer.register(router)
			}

			session, err := client.Playground.Connect(ctx, args[0], voice,
				desk.OnPlaygroundFrame(func(f protocol.Frame) { router.Dispatch(f) }))
			if err != nil {
				return err
			}
			defer session.Close()

			if plain {
				return a.chatPlain(ctx, session)
			}
			return a.chatTUI(ctx, session)
		},
	}
}

func (a *App) chatTUI(ctx context.Context, session *desk.PlaygroundSession) error {
	snaps := tui.Watch(session.Store())
	defer snaps.Stop()

	program := tea.NewProgram(
		tui.NewChatModel(session, session, snaps.C()),
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
		return fmt.Errorf("chat view: %w", err)
	}
	if model, ok := final.(tui.ChatModel); ok {
		return model.Err()
	}
	return nil
}

// chatPlain sends each stdin line and prints frames as they arrive. EOF on
// stdin closes the session.
func (a *App) chatPlain(ctx context.Context, session *desk.PlaygroundSession) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		for {
			line, err := a.readLine()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-session.Done():
			return session.Wait()
		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
					return fmt.Errorf("read input: %w", err)
				}
				session.Close()
				return session.Wait()
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			if _, err := session.SendText(line); err != nil {
				fmt.Fprintf(a.stderr, "send failed: %v\n", err)
			}
		}
	}
}

// framePrinter renders playground frames as plain lines.
type framePrinter struct {
	w         io.Writer
	streaming bool
}

func (p *framePrinter) register(router *live.Router[protocol.Frame]) {
	router.
		Handle(protocol.TypeSessionStart, p.chain(router, protocol.TypeSessionStart, func(f protocol.Frame) {
			p.line("* session started with %s", f.(protocol.SessionStart).AgentName)
		})).
		Handle(protocol.TypeTextChunk, func(f protocol.Frame) {
			fmt.Fprint(p.w, f.(protocol.TextChunk).Text)
			p.streaming = true
		}).
		Handle(protocol.TypeResponseEnd, func(protocol.Frame) {
			p.endStream()
		}).
		Handle(protocol.TypeToolCall, func(f protocol.Frame) {
			call := f.(protocol.ToolCall)
			name := call.Name
			if name == "" {
				name = "unknown"
			}
			p.line("* tool %s %s", name, call.ArgumentsText())
		}).
		Handle(protocol.TypeIntentDetected, func(f protocol.Frame) {
			p.line("* intent %s", f.(protocol.IntentDetected).Intent)
		}).
		Handle(protocol.TypeAgentSwitch, func(f protocol.Frame) {
			sw := f.(protocol.AgentSwitch)
			p.line("* routing %s -> %s: %s", sw.From, sw.To, sw.Reason)
		}).
		Handle(protocol.TypeEscalation, func(f protocol.Frame) {
			p.line("! escalating to a human: %s", f.(protocol.Escalation).Reason)
		}).
		Handle(protocol.TypeError, func(f protocol.Frame) {
			p.line("! error: %s", f.(protocol.Error).Message)
		}).
		Handle(protocol.TypeTranscription, func(f protocol.Frame) {
			if text := f.(protocol.Transcription).Text; text != "" {
				p.line("you (voice): %s", text)
			}
		})
}

// chain keeps an existing handler for typ and runs next after it.
func (p *framePrinter) chain(router *live.Router[protocol.Frame], typ string, next func(protocol.Frame)) func(protocol.Frame) {
	prev := router.Handler(typ)
	return func(f protocol.Frame) {
		if prev != nil {
			prev(f)
		}
		next(f)
	}
}

func (p *framePrinter) line(format string, args ...any) {
	p.endStream()
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *framePrinter) endStream() {
	if p.streaming {
		fmt.Fprintln(p.w)
		p.streaming = false
	}
}

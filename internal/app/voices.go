package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/pflag"
)

func (a *App) voicesCommand() *Command {
	return &Command{
		Name:    "voices",
		Summary: "Browse, design and clone voices",
		Subcommands: []*Command{
			a.voicesListCommand(),
			a.voicesDesignCommand(),
			a.voicesRegisterCommand(),
			a.voicesDeleteCommand(),
		},
	}
}

func (a *App) voicesListCommand() *Command {
	return &Command{
		Name:    "list",
		Summary: "List the voice catalogue",
		Flags:   func() *pflag.FlagSet { return a.flags("voices list") },
		Run: func(ctx context.Context, args []string) error {
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			voices, err := client.Voices.List(ctx)
			if err != nil {
				return err
			}
			return a.emit(voices, func(w io.Writer) {
				row(w, "ID", "NAME", "FIELDS")
				for _, voice := range voices {
					keys := make([]string, 0, len(voice))
					for k := range voice {
						keys = append(keys, k)
					}
					sort.Strings(keys)
					row(w, orDash(voice.ID()), orDash(voice.Name()), truncate(fmt.Sprint(keys), 60))
				}
			})
		},
	}
}

func (a *App) voicesDesignCommand() *Command {
	var text, instruct, out string
	return &Command{
		Name:    "design",
		Summary: "Synthesize a preview from a voice description",
		Usage:   "voicedesk voices design --text sample --instruct description [--out preview.wav]",
		Flags: func() *pflag.FlagSet {
			fs := a.flags("voices design")
			fs.StringVar(&text, "text", "", "sample text to speak")
			fs.StringVar(&instruct, "instruct", "", "natural-language voice description")
			fs.StringVarP(&out, "out", "o", "", "write the decoded preview audio here")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if text == "" || instruct == "" {
				return usagef("voices design: --text and --instruct are required")
			}
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			design, err := client.Voices.Design(ctx, text, instruct)
			if err != nil {
				return err
			}
			if out != "" {
				audio, err := base64.StdEncoding.DecodeString(design.AudioBase64)
				if err != nil {
					return fmt.Errorf("decode preview audio: %w", err)
				}
				if err := os.WriteFile(out, audio, 0o644); err != nil {
					return fmt.Errorf("write preview: %w", err)
				}
			}
			if a.jsonOut {
				return writeJSON(a.stdout, design)
			}
			if out != "" {
				fmt.Fprintf(a.stdout, "Preview written to %s\n", out)
			} else {
				fmt.Fprintf(a.stdout, "Preview ready (%d base64 bytes); pass --out to save it\n", len(design.AudioBase64))
			}
			return nil
		},
	}
}

func (a *App) voicesRegisterCommand() *Command {
	var name, refText, file string
	return &Command{
		Name:    "register",
		Summary: "Clone a voice from a reference recording",
		Usage:   "voicedesk voices register --name n --ref-text transcript --file sample.wav",
		Flags: func() *pflag.FlagSet {
			fs := a.flags("voices register")
			fs.StringVar(&name, "name", "", "voice name")
			fs.StringVar(&refText, "ref-text", "", "transcript of the reference recording")
			fs.StringVarP(&file, "file", "f", "", "reference audio, - for stdin")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			if name == "" || refText == "" || file == "" {
				return usagef("voices register: --name, --ref-text and --file are required")
			}
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			audio, filename, err := a.openInput(file)
			if err != nil {
				return err
			}
			defer audio.Close()
			reg, err := client.Voices.Register(ctx, name, refText, filename, audio)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(a.stdout, reg)
			}
			fmt.Fprintf(a.stdout, "Registered voice %s (%s): %s\n", reg.Name, reg.VoiceID, orDash(reg.Status))
			return nil
		},
	}
}

func (a *App) voicesDeleteCommand() *Command {
	return &Command{
		Name:    "delete",
		Summary: "Delete a cloned voice",
		Usage:   "voicedesk voices delete <voice-id>",
		Flags:   func() *pflag.FlagSet { return a.flags("voices delete") },
		Run: func(ctx context.Context, args []string) error {
			if err := exactArgs(args, 1, "voices delete <voice-id>"); err != nil {
				return err
			}
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			if err := client.Voices.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Deleted voice %s\n", args[0])
			return nil
		},
	}
}

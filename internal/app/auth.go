package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/vango-go/voicedesk/pkg/core/types"
)

func (a *App) loginCommand() *Command {
	var email string
	return &Command{
		Name:    "login",
		Summary: "Log in and store tokens",
		Usage:   "voicedesk login [--email address]",
		Flags: func() *pflag.FlagSet {
			fs := a.flags("login")
			fs.StringVar(&email, "email", "", "account email (prompted when empty)")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			if email, err = a.promptValue("Email: ", email); err != nil {
				return err
			}
			password, err := a.readSecret("Password: ")
			if err != nil {
				return err
			}
			user, err := client.Auth.Login(ctx, email, password)
			if err != nil {
				return err
			}
			return a.printUser("Logged in as", user)
		},
	}
}

func (a *App) registerCommand() *Command {
	var email, name string
	return &Command{
		Name:    "register",
		Summary: "Create an account and log in",
		Usage:   "voicedesk register [--email address] [--name full-name]",
		Flags: func() *pflag.FlagSet {
			fs := a.flags("register")
			fs.StringVar(&email, "email", "", "account email (prompted when empty)")
			fs.StringVar(&name, "name", "", "full name")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			if email, err = a.promptValue("Email: ", email); err != nil {
				return err
			}
			password, err := a.readSecret("Password: ")
			if err != nil {
				return err
			}
			user, err := client.Auth.Register(ctx, email, password, name)
			if err != nil {
				return err
			}
			return a.printUser("Registered and logged in as", user)
		},
	}
}

func (a *App) logoutCommand() *Command {
	return &Command{
		Name:    "logout",
		Summary: "Forget stored tokens",
		Flags:   func() *pflag.FlagSet { return a.flags("logout") },
		Run: func(ctx context.Context, args []string) error {
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			if err := client.Auth.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, "Logged out")
			return nil
		},
	}
}

func (a *App) whoamiCommand() *Command {
	return &Command{
		Name:    "whoami",
		Summary: "Show the logged-in user",
		Flags:   func() *pflag.FlagSet { return a.flags("whoami") },
		Run: func(ctx context.Context, args []string) error {
			client, err := a.connect(false)
			if err != nil {
				return err
			}
			user, err := client.Auth.Restore(ctx)
			if err != nil {
				return err
			}
			return a.emit(user, func(w io.Writer) {
				row(w, "ID", user.ID)
				row(w, "EMAIL", user.Email)
				row(w, "NAME", deref(user.FullName))
				row(w, "ROLE", user.Role)
				row(w, "ACTIVE", user.IsActive)
				row(w, "CREATED", fmtTime(user.CreatedAt))
			})
		},
	}
}

func (a *App) printUser(prefix string, user *types.User) error {
	if a.jsonOut {
		return writeJSON(a.stdout, user)
	}
	if user == nil {
		fmt.Fprintln(a.stdout, prefix, "unknown user")
		return nil
	}
	fmt.Fprintf(a.stdout, "%s %s (%s)\n", prefix, user.Email, orDash(user.Role))
	return nil
}

// promptValue returns value, or reads it from stdin after printing prompt
// when empty.
func (a *App) promptValue(prompt, value string) (string, error) {
	if value = strings.TrimSpace(value); value != "" {
		return value, nil
	}
	fmt.Fprint(a.stderr, prompt)
	line, err := a.readLine()
	if err != nil {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(strings.TrimSuffix(prompt, ": ")), err)
	}
	if line = strings.TrimSpace(line); line == "" {
		return "", usagef("%s is required", strings.ToLower(strings.TrimSuffix(prompt, ": ")))
	}
	return line, nil
}

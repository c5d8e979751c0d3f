package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/vango-go/voicedesk/internal/app"
)

type mainDeps struct {
	loadEnv func(paths ...string) error
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

func defaultMainDeps() mainDeps {
	return mainDeps{
		loadEnv: godotenv.Load,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
}

// runMain loads .env without overriding the environment, then runs the
// command tree until it finishes or a signal arrives.
func runMain(ctx context.Context, args []string, deps mainDeps) int {
	if deps.stderr == nil {
		deps.stderr = os.Stderr
	}
	if deps.loadEnv != nil {
		if err := deps.loadEnv(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(deps.stderr, "voicedesk: load .env: %v\n", err)
			return app.ExitFailure
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.New(app.Options{
		Stdin:  deps.stdin,
		Stdout: deps.stdout,
		Stderr: deps.stderr,
	}).Run(ctx, args)
}

func main() {
	os.Exit(runMain(context.Background(), os.Args[1:], defaultMainDeps()))
}

package main

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/vango-go/voicedesk/internal/app"
)

func TestRunMain_MissingEnvFileIsIgnored(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := runMain(context.Background(), []string{"version"}, mainDeps{
		loadEnv: func(paths ...string) error { return &fs.PathError{Op: "open", Path: ".env", Err: fs.ErrNotExist} },
		stdout:  &stdout,
		stderr:  &stderr,
	})
	if code != app.ExitOK {
		t.Fatalf("exit=%d stderr=%q", code, stderr.String())
	}
	if !strings.HasPrefix(stdout.String(), "voicedesk ") {
		t.Fatalf("stdout=%q", stdout.String())
	}
}

func TestRunMain_BadEnvFileFails(t *testing.T) {
	var stderr bytes.Buffer
	code := runMain(context.Background(), []string{"version"}, mainDeps{
		loadEnv: func(paths ...string) error { return errors.New("unexpected character") },
		stdout:  &bytes.Buffer{},
		stderr:  &stderr,
	})
	if code != app.ExitFailure {
		t.Fatalf("exit=%d, want %d", code, app.ExitFailure)
	}
	if !strings.Contains(stderr.String(), "load .env") {
		t.Fatalf("stderr=%q", stderr.String())
	}
}

func TestRunMain_UnknownCommandIsUsageError(t *testing.T) {
	var stderr bytes.Buffer
	code := runMain(context.Background(), []string{"agnets"}, mainDeps{
		stdout: &bytes.Buffer{},
		stderr: &stderr,
	})
	if code != app.ExitUsage {
		t.Fatalf("exit=%d, want %d", code, app.ExitUsage)
	}
	if !strings.Contains(stderr.String(), `did you mean "agents"`) {
		t.Fatalf("stderr=%q", stderr.String())
	}
}

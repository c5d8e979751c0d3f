package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_FileWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "log.jsonl")
	logger, closer, err := New(Options{Level: "debug", File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("dialing", "stream", "playground")
	logger.Info("open", "stream", "playground")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2: %q", len(lines), data)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if rec["msg"] != "dialing" || rec["stream"] != "playground" {
		t.Errorf("record = %v", rec)
	}
}

func TestNew_ToFileUsesStateDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)
	if got, want := DefaultFile(), filepath.Join(dir, "voicedesk", "log.jsonl"); got != want {
		t.Fatalf("DefaultFile() = %q, want %q", got, want)
	}
	_, closer, err := New(Options{ToFile: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_ = closer.Close()
	if _, err := os.Stat(DefaultFile()); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestNew_StderrRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Level: "warn", Stderr: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "status", 503)
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "msg=shown") || !strings.Contains(out, "status=503") {
		t.Errorf("output = %q", out)
	}
}

func TestNew_StderrJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, _, _ := New(Options{Format: "json", Stderr: &buf})
	logger.Info("hello")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// audioSink writes synthesized speech segments to numbered files. A sink
// without a directory drops everything.
type audioSink struct {
	dir    string
	logger *slog.Logger

	mu      sync.Mutex
	written int
	ready   bool
}

func newAudioSink(dir string, logger *slog.Logger) *audioSink {
	return &audioSink{dir: dir, logger: logger}
}

// Write stores one MP3 segment and returns its path, or "" when the sink is
// disabled.
func (s *audioSink) Write(sessionID string, data []byte) (string, error) {
	if s == nil || s.dir == "" || len(data) == 0 {
		return "", nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return "", fmt.Errorf("create audio dir: %w", err)
		}
		s.ready = true
	}
	if sessionID == "" {
		sessionID = "playground"
	}
	s.written++
	path := filepath.Join(s.dir, fmt.Sprintf("%s-%04d.mp3", sessionID, s.written))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write audio: %w", err)
	}
	s.logger.Debug("audio segment saved", "path", path, "bytes", len(data))
	return path, nil
}

// Count returns how many segments were written.
func (s *audioSink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}

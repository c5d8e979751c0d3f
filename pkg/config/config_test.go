package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"VOICEDESK_CONFIG", "VOICEDESK_API_URL", "VOICEDESK_WS_URL", "VOICEDESK_TOKEN_FILE",
	"VOICEDESK_REQUEST_TIMEOUT", "VOICEDESK_LOG_LEVEL", "VOICEDESK_LOG_FORMAT", "VOICEDESK_LOG_FILE",
	"VOICEDESK_SESSIONS_POLL", "VOICEDESK_CAMPAIGN_POLL", "VOICEDESK_RECONNECT",
	"VOICEDESK_RECONNECT_BASE", "VOICEDESK_RECONNECT_MAX", "VOICEDESK_RECONNECT_ATTEMPTS",
	"VOICEDESK_METRICS_ADDR", "VOICEDESK_AUDIO_DIR",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, "ws://localhost:8001/api/v1", cfg.WSURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5*time.Second, cfg.Polling.Sessions)
	assert.Equal(t, 10*time.Second, cfg.Polling.Campaign)
	assert.True(t, cfg.Reconnect.Enabled)
	assert.Equal(t, 8, cfg.Reconnect.Attempts)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Equal(t, "tokens.json", filepath.Base(cfg.TokenFile))
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "voicedesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_url: https://desk.example.com/api/v1
request_timeout: 12s
log:
  level: debug
  format: json
polling:
  sessions: 2s
reconnect:
  enabled: false
  attempts: 3
metrics_addr: 127.0.0.1:9464
`), 0o600))

	t.Setenv("VOICEDESK_RECONNECT_ATTEMPTS", "5")
	t.Setenv("VOICEDESK_AUDIO_DIR", "/tmp/voicedesk-audio")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://desk.example.com/api/v1", cfg.APIURL)
	assert.Equal(t, "wss://desk.example.com/api/v1", cfg.WSURL)
	assert.Equal(t, 12*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 2*time.Second, cfg.Polling.Sessions)
	assert.Equal(t, 10*time.Second, cfg.Polling.Campaign, "unset keys keep defaults")
	assert.False(t, cfg.Reconnect.Enabled)
	assert.Equal(t, 5, cfg.Reconnect.Attempts, "env overrides file")
	assert.Equal(t, "127.0.0.1:9464", cfg.MetricsAddr)
	assert.Equal(t, "/tmp/voicedesk-audio", cfg.AudioDir)
}

func TestLoad_ConfigFromEnvPath(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ws_url: wss://stream.example.com/api/v1\n"), 0o600))
	t.Setenv("VOICEDESK_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "wss://stream.example.com/api/v1", cfg.WSURL)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: [unterminated"), 0o600))
	_, err := Load(path)
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"api scheme", func(c *Config) { c.APIURL = "ftp://x/api" }, "api_url"},
		{"ws scheme", func(c *Config) { c.WSURL = "http://x/api" }, "ws_url"},
		{"timeout", func(c *Config) { c.RequestTimeout = 0 }, "request_timeout"},
		{"level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"poll", func(c *Config) { c.Polling.Sessions = 0 }, "polling"},
		{"backoff", func(c *Config) { c.Reconnect.Max = time.Millisecond }, "reconnect.max"},
		{"attempts", func(c *Config) { c.Reconnect.Attempts = -1 }, "reconnect.attempts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.WSURL = "ws://localhost:8001/api/v1"
			require.NoError(t, cfg.Validate())
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestDeriveWSURL(t *testing.T) {
	ws, err := DeriveWSURL("https://desk.example.com/api/v1/")
	require.NoError(t, err)
	assert.Equal(t, "wss://desk.example.com/api/v1", ws)

	_, err = DeriveWSURL("desk.example.com")
	assert.Error(t, err)
}

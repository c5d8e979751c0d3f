// Package config loads voicedesk settings: built-in defaults, then an
// optional YAML file, then VOICEDESK_* environment overrides.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultAPIURL is the backend's default REST base path.
const DefaultAPIURL = "http://localhost:8001/api/v1"

type Config struct {
	// APIURL is the REST base including the version prefix.
	APIURL string `yaml:"api_url"`
	// WSURL is the WebSocket base. Derived from APIURL when empty.
	WSURL string `yaml:"ws_url"`

	TokenFile      string        `yaml:"token_file"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	Log       LogConfig       `yaml:"log"`
	Polling   PollingConfig   `yaml:"polling"`
	Reconnect ReconnectConfig `yaml:"reconnect"`

	// MetricsAddr enables the Prometheus endpoint when non-empty.
	MetricsAddr string `yaml:"metrics_addr"`
	// AudioDir receives playground audio segments when non-empty.
	AudioDir string `yaml:"audio_dir"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type PollingConfig struct {
	Sessions time.Duration `yaml:"sessions"`
	Campaign time.Duration `yaml:"campaign"`
}

type ReconnectConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Base     time.Duration `yaml:"base"`
	Max      time.Duration `yaml:"max"`
	Attempts int           `yaml:"attempts"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:         DefaultAPIURL,
		TokenFile:      defaultTokenFile(),
		RequestTimeout: 30 * time.Second,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Polling: PollingConfig{
			Sessions: 5 * time.Second,
			Campaign: 10 * time.Second,
		},
		Reconnect: ReconnectConfig{
			Enabled:  true,
			Base:     500 * time.Millisecond,
			Max:      30 * time.Second,
			Attempts: 8,
		},
	}
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "voicedesk", "tokens.json")
}

// Load builds the configuration. path names a YAML file; when empty,
// VOICEDESK_CONFIG is consulted, and with neither set no file is read.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = strings.TrimSpace(os.Getenv("VOICEDESK_CONFIG"))
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.applyEnv()
	if strings.TrimSpace(cfg.WSURL) == "" {
		ws, err := DeriveWSURL(cfg.APIURL)
		if err != nil {
			return Config{}, err
		}
		cfg.WSURL = ws
	}
	cfg.TokenFile = expandHome(cfg.TokenFile)
	cfg.AudioDir = expandHome(cfg.AudioDir)
	cfg.Log.File = expandHome(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadFile merges a YAML file over the current values.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.APIURL = envOr("VOICEDESK_API_URL", c.APIURL)
	c.WSURL = envOr("VOICEDESK_WS_URL", c.WSURL)
	c.TokenFile = envOr("VOICEDESK_TOKEN_FILE", c.TokenFile)
	c.RequestTimeout = envDurationOr("VOICEDESK_REQUEST_TIMEOUT", c.RequestTimeout)

	c.Log.Level = envOr("VOICEDESK_LOG_LEVEL", c.Log.Level)
	c.Log.Format = envOr("VOICEDESK_LOG_FORMAT", c.Log.Format)
	c.Log.File = envOr("VOICEDESK_LOG_FILE", c.Log.File)

	c.Polling.Sessions = envDurationOr("VOICEDESK_SESSIONS_POLL", c.Polling.Sessions)
	c.Polling.Campaign = envDurationOr("VOICEDESK_CAMPAIGN_POLL", c.Polling.Campaign)

	c.Reconnect.Enabled = envBoolOr("VOICEDESK_RECONNECT", c.Reconnect.Enabled)
	c.Reconnect.Base = envDurationOr("VOICEDESK_RECONNECT_BASE", c.Reconnect.Base)
	c.Reconnect.Max = envDurationOr("VOICEDESK_RECONNECT_MAX", c.Reconnect.Max)
	c.Reconnect.Attempts = envIntOr("VOICEDESK_RECONNECT_ATTEMPTS", c.Reconnect.Attempts)

	c.MetricsAddr = envOr("VOICEDESK_METRICS_ADDR", c.MetricsAddr)
	c.AudioDir = envOr("VOICEDESK_AUDIO_DIR", c.AudioDir)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if err := requireScheme("api_url", c.APIURL, "http", "https"); err != nil {
		return err
	}
	if err := requireScheme("ws_url", c.WSURL, "ws", "wss"); err != nil {
		return err
	}
	if strings.TrimSpace(c.TokenFile) == "" {
		return fmt.Errorf("token_file must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be > 0")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug|info|warn|error, got %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Polling.Sessions <= 0 || c.Polling.Campaign <= 0 {
		return fmt.Errorf("polling intervals must be > 0")
	}
	if c.Reconnect.Base <= 0 {
		return fmt.Errorf("reconnect.base must be > 0")
	}
	if c.Reconnect.Max < c.Reconnect.Base {
		return fmt.Errorf("reconnect.max must be >= reconnect.base")
	}
	if c.Reconnect.Attempts < 0 {
		return fmt.Errorf("reconnect.attempts must be >= 0")
	}
	return nil
}

// DeriveWSURL maps an http(s) API base onto the matching ws(s) base.
func DeriveWSURL(apiURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(apiURL))
	if err != nil {
		return "", fmt.Errorf("invalid api_url %q: %w", apiURL, err)
	}
	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	default:
		return "", fmt.Errorf("api_url must use http or https, got %q", apiURL)
	}
	parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed.String(), nil
}

func requireScheme(name, raw string, schemes ...string) error {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
	}
	for _, s := range schemes {
		if parsed.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("%s must use %s, got %q", name, strings.Join(schemes, " or "), raw)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envIntOr(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func envBoolOr(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	switch strings.ToLower(raw) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/elonfeng/idearadar/pkg/score"
)

// Signal modes.
const (
	ModeMock = "mock"
	ModeReal = "real"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Signals  SignalsConfig  `yaml:"signals"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Alerts   AlertsConfig   `yaml:"alerts"`
	Server   ServerConfig   `yaml:"server"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ScheduleConfig configures background rescoring.
type ScheduleConfig struct {
	RescoreInterval string `yaml:"rescore_interval"`
}

// ParseRescoreInterval returns the rescore interval as time.Duration.
func (s ScheduleConfig) ParseRescoreInterval() time.Duration {
	d, err := time.ParseDuration(s.RescoreInterval)
	if err != nil || d <= 0 {
		return 6 * time.Hour
	}
	return d
}

// SignalsConfig selects and configures the signal source.
type SignalsConfig struct {
	Mode              string        `yaml:"mode"` // "mock" or "real"
	Timeout           string        `yaml:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	SerpAPI           SerpAPIConfig `yaml:"serpapi"`
	Reddit            RedditConfig  `yaml:"reddit"`
	GitHub            GitHubConfig  `yaml:"github"`
}

// ParseTimeout returns the per-signal timeout as time.Duration.
func (s SignalsConfig) ParseTimeout() time.Duration {
	d, err := time.ParseDuration(s.Timeout)
	if err != nil || d <= 0 {
		return 8 * time.Second
	}
	return d
}

// SerpAPIConfig for the trends and search signals.
type SerpAPIConfig struct {
	APIKey string `yaml:"api_key"`
}

// RedditConfig for the Reddit mentions signal. Without credentials the public
// search endpoint is used.
type RedditConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// GitHubConfig for the competition signal.
type GitHubConfig struct {
	Token string `yaml:"token"`
}

// ScoringConfig configures composite scoring.
type ScoringConfig struct {
	Weights        score.Weights `yaml:"weights"`
	AlertThreshold float64       `yaml:"alert_threshold"`
}

// AlertsConfig configures alert destinations.
type AlertsConfig struct {
	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
	Webhook WebhookConfig `yaml:"webhook"`
}

// SlackConfig for Slack webhook alerts.
type SlackConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// DiscordConfig for Discord webhook alerts.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// WebhookConfig for generic webhook alerts.
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Secret  string `yaml:"secret"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port          int      `yaml:"port"`
	WebhookSecret string   `yaml:"webhook_secret"` // verifies inbound score webhooks when set
	CORSOrigins   []string `yaml:"cors_origins"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./idearadar.db"},
		Log:      LogConfig{Level: "info"},
		Schedule: ScheduleConfig{RescoreInterval: "6h"},
		Signals: SignalsConfig{
			Mode:              ModeMock,
			Timeout:           "8s",
			RequestsPerMinute: 60,
		},
		Scoring: ScoringConfig{
			Weights:        score.DefaultWeights(),
			AlertThreshold: 75,
		},
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"*"},
		},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the rest of the program cannot run with.
func (c *Config) Validate() error {
	switch c.Signals.Mode {
	case ModeMock, ModeReal:
	default:
		return fmt.Errorf("signals.mode must be %q or %q, got %q", ModeMock, ModeReal, c.Signals.Mode)
	}
	if err := c.Scoring.Weights.Validate(); err != nil {
		return fmt.Errorf("scoring.weights: %w", err)
	}
	if t := c.Scoring.AlertThreshold; t < 0 || t > 100 {
		return fmt.Errorf("scoring.alert_threshold must be within 0-100, got %g", t)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	return nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("IDEARADAR_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("IDEARADAR_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("IDEARADAR_SIGNAL_MODE"); v != "" {
		cfg.Signals.Mode = strings.ToLower(v)
	}
	if v := os.Getenv("SERPAPI_KEY"); v != "" {
		cfg.Signals.SerpAPI.APIKey = v
	}
	if v := os.Getenv("REDDIT_CLIENT_ID"); v != "" {
		cfg.Signals.Reddit.ClientID = v
	}
	if v := os.Getenv("REDDIT_CLIENT_SECRET"); v != "" {
		cfg.Signals.Reddit.ClientSecret = v
	}
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.Signals.GitHub.Token = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Slack.WebhookURL = v
		cfg.Alerts.Slack.Enabled = true
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Discord.WebhookURL = v
		cfg.Alerts.Discord.Enabled = true
	}
	if v := os.Getenv("IDEARADAR_WEBHOOK_SECRET"); v != "" {
		cfg.Server.WebhookSecret = v
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the aw-analyzer configuration
type Config struct {
	ActivityWatch ActivityWatchConfig `mapstructure:"activitywatch" toml:"activitywatch"`
	Slack         SlackConfig         `mapstructure:"slack" toml:"slack"`
	OpenRouter    OpenRouterConfig    `mapstructure:"openrouter" toml:"openrouter"`
	Report        ReportConfig        `mapstructure:"report" toml:"report"`
	Jobs          JobsConfig          `mapstructure:"jobs" toml:"jobs"`
	State         StateConfig         `mapstructure:"state" toml:"state"`
	Usage         UsageConfig         `mapstructure:"usage" toml:"usage"`
	Install       InstallConfig       `mapstructure:"install" toml:"install"`
	Log           LogConfig           `mapstructure:"log" toml:"log"`
}

// ActivityWatchConfig configures the local ActivityWatch server connection
type ActivityWatchConfig struct {
	BaseURL        string `mapstructure:"base_url" toml:"base_url"`               // e.g., "http://localhost:5600"
	Hostname       string `mapstructure:"hostname" toml:"hostname"`               // Bucket hostname (empty = os.Hostname())
	TimeoutSeconds int    `mapstructure:"timeout_seconds" toml:"timeout_seconds"` // Request timeout in seconds (default: 30)
}

// SlackConfig configures Slack delivery (webhook and optional bot token)
type SlackConfig struct {
	WebhookURL           string `mapstructure:"webhook_url" toml:"webhook_url"`                     // Incoming webhook URL
	BotToken             string `mapstructure:"bot_token" toml:"bot_token"`                         // xoxb- token for file uploads
	ChannelID            string `mapstructure:"channel_id" toml:"channel_id"`                       // Channel for uploads (e.g., "C0123456789")
	TimeoutSeconds       int    `mapstructure:"timeout_seconds" toml:"timeout_seconds"`             // Webhook timeout in seconds (default: 10)
	UploadTimeoutSeconds int    `mapstructure:"upload_timeout_seconds" toml:"upload_timeout_seconds"` // File upload timeout in seconds (default: 60)
}

// OpenRouterConfig configures OpenRouter.ai API access
type OpenRouterConfig struct {
	APIKey      string   `mapstructure:"api_key" toml:"api_key"`         // OpenRouter API key (empty = deterministic fallback)
	Model       string   `mapstructure:"model" toml:"model"`             // Default model (e.g., "anthropic/claude-3.5-haiku")
	Temperature *float64 `mapstructure:"temperature" toml:"temperature"` // Sampling temperature (nil = default 0.2)
	MaxTokens   *int     `mapstructure:"max_tokens" toml:"max_tokens"`   // Maximum tokens per request (nil = default 1000)
}

// ReportConfig configures report rendering and timeline analysis
type ReportConfig struct {
	UTCOffset        string `mapstructure:"utc_offset" toml:"utc_offset"`                 // Fixed offset for day boundaries (default: "+09:00")
	Days             int    `mapstructure:"days" toml:"days"`                             // Weekly report window in days, clamped to 1..31 (default: 7)
	SleepMinMinutes  int    `mapstructure:"sleep_min_minutes" toml:"sleep_min_minutes"`   // Minimum AFK run treated as sleep (default: 180)
	MinActiveSeconds int    `mapstructure:"min_active_seconds" toml:"min_active_seconds"` // Threshold for a day to count as having data (default: 3600)
	Renderer         string `mapstructure:"renderer" toml:"renderer"`                     // SVG-to-PNG renderer binary (default: "rsvg-convert")
}

// JobsConfig configures the built-in scheduled jobs
type JobsConfig struct {
	DailySummary   DailySummaryConfig   `mapstructure:"daily_summary" toml:"daily_summary"`
	ContinuousWork ContinuousWorkConfig `mapstructure:"continuous_work" toml:"continuous_work"`
	DailyReport    DailyReportConfig    `mapstructure:"daily_report" toml:"daily_report"`
}

// DailySummaryConfig configures the morning summary notification
type DailySummaryConfig struct {
	TargetHour   int `mapstructure:"target_hour" toml:"target_hour"`     // Local hour after which the summary may run (default: 8)
	TargetMinute int `mapstructure:"target_minute" toml:"target_minute"` // Minute within the target hour (default: 0)
}

// ContinuousWorkConfig configures the break reminder
type ContinuousWorkConfig struct {
	ThresholdMinutes int `mapstructure:"threshold_minutes" toml:"threshold_minutes"` // Unbroken work span that triggers an alert (default: 60)
	CooldownMinutes  int `mapstructure:"cooldown_minutes" toml:"cooldown_minutes"`   // Minimum gap between alerts (default: 60)
}

// DailyReportConfig configures the evening Slack report
type DailyReportConfig struct {
	TargetHour   int `mapstructure:"target_hour" toml:"target_hour"`     // Local hour after which the report may run (default: 21)
	TargetMinute int `mapstructure:"target_minute" toml:"target_minute"` // Minute within the target hour (default: 0)
}

// StateConfig configures the persistent job state store
type StateConfig struct {
	Path string `mapstructure:"path" toml:"path"` // State file path (empty = ~/.aw-analyzer/state.json)
}

// UsageConfig configures LLM usage tracking
type UsageConfig struct {
	Enabled bool   `mapstructure:"enabled" toml:"enabled"` // Record token usage per request (default: true)
	Path    string `mapstructure:"path" toml:"path"`       // SQLite database path (empty = ~/.aw-analyzer/usage.db)
}

// InstallConfig configures the launchd agent installer
type InstallConfig struct {
	IntervalMinutes int    `mapstructure:"interval_minutes" toml:"interval_minutes"` // Tick interval in minutes, 1..1440 (default: 5)
	Label           string `mapstructure:"label" toml:"label"`                       // launchd label (default: "com.awtools.aw-analyzer")
}

// LogConfig configures logging output
type LogConfig struct {
	Level string `mapstructure:"level" toml:"level"` // debug, info, warn, error (empty = verbosity flags decide)
	JSON  bool   `mapstructure:"json" toml:"json"`   // Emit JSON logs instead of the console encoder
	Theme string `mapstructure:"theme" toml:"theme"` // Color theme: gruvbox, everforest
}

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)

// DefaultAWPort is the ActivityWatch server's standard port
const DefaultAWPort = 5600

// Dir returns the aw-analyzer home directory (~/.aw-analyzer).
// AW_ANALYZER_DIR overrides it, which tests rely on for isolation.
func Dir() string {
	if dir := os.Getenv("AW_ANALYZER_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".aw-analyzer"
	}
	return filepath.Join(home, ".aw-analyzer")
}

// Path returns the config file path, honoring the AW_ANALYZER_CONFIG override
func Path() string {
	if path := os.Getenv("AW_ANALYZER_CONFIG"); path != "" {
		return path
	}
	return filepath.Join(Dir(), "config.toml")
}

// Redacted returns a copy of the config with secrets masked for display
func (c *Config) Redacted() *Config {
	out := *c
	if out.OpenRouter.APIKey != "" {
		out.OpenRouter.APIKey = "****"
	}
	if out.Slack.WebhookURL != "" {
		out.Slack.WebhookURL = "****"
	}
	if out.Slack.BotToken != "" {
		out.Slack.BotToken = "****"
	}
	return &out
}

// String returns a short description of the config for log lines
func (c *Config) String() string {
	return fmt.Sprintf("Config{AW: %s, Model: %s, Offset: %s}",
		c.ActivityWatch.BaseURL, c.OpenRouter.Model, c.Report.UTCOffset)
}

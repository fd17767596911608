package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/awtools/aw-analyzer/internal/util"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// ActivityWatch defaults
	v.SetDefault("activitywatch.base_url", "http://localhost:5600")
	v.SetDefault("activitywatch.timeout_seconds", 30)

	// Slack defaults
	v.SetDefault("slack.timeout_seconds", 10)
	v.SetDefault("slack.upload_timeout_seconds", 60)

	// OpenRouter defaults
	v.SetDefault("openrouter.model", "anthropic/claude-3.5-haiku") // Cheap, fast summaries
	v.SetDefault("openrouter.temperature", 0.2)                    // Deterministic
	v.SetDefault("openrouter.max_tokens", 1000)                    // Token limit

	// Report defaults
	v.SetDefault("report.utc_offset", "+09:00")
	v.SetDefault("report.days", 7)
	v.SetDefault("report.sleep_min_minutes", 180)  // 3 hours AFK counts as sleep
	v.SetDefault("report.min_active_seconds", 3600) // 1 hour to count as a day with data
	v.SetDefault("report.renderer", "rsvg-convert")

	// Job defaults
	v.SetDefault("jobs.daily_summary.target_hour", 8)
	v.SetDefault("jobs.daily_summary.target_minute", 0)
	v.SetDefault("jobs.continuous_work.threshold_minutes", 60)
	v.SetDefault("jobs.continuous_work.cooldown_minutes", 60)
	v.SetDefault("jobs.daily_report.target_hour", 21)
	v.SetDefault("jobs.daily_report.target_minute", 0)

	// Usage tracking defaults
	v.SetDefault("usage.enabled", true)

	// Install defaults
	v.SetDefault("install.interval_minutes", 5)
	v.SetDefault("install.label", "com.awtools.aw-analyzer")

	// Log defaults
	v.SetDefault("log.theme", "everforest")
}

// BindSensitiveEnvVars explicitly binds sensitive configuration to environment variables.
// The short names take precedence over the AW_ANALYZER_* forms so existing
// shell profiles keep working.
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("openrouter.api_key", "OPENROUTER_API_KEY")
	v.BindEnv("slack.webhook_url", "SLACK_WEBHOOK_URL")
	v.BindEnv("slack.bot_token", "SLACK_BOT_TOKEN")
	v.BindEnv("slack.channel_id", "SLACK_CHANNEL_ID")
	v.BindEnv("activitywatch.base_url", "AW_BASE_URL")
	v.BindEnv("activitywatch.hostname", "AW_HOSTNAME")
	v.BindEnv("log.level", "LOG_LEVEL")
}

// GetHostname returns the bucket hostname, falling back to os.Hostname()
func (c *Config) GetHostname() string {
	if c.ActivityWatch.Hostname != "" {
		return c.ActivityWatch.Hostname
	}
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return hostname
}

// GetAWTimeout returns the ActivityWatch request timeout
func (c *Config) GetAWTimeout() time.Duration {
	if c.ActivityWatch.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.ActivityWatch.TimeoutSeconds) * time.Second
}

// GetSlackTimeout returns the webhook request timeout
func (c *Config) GetSlackTimeout() time.Duration {
	if c.Slack.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Slack.TimeoutSeconds) * time.Second
}

// GetUploadTimeout returns the file upload timeout
func (c *Config) GetUploadTimeout() time.Duration {
	if c.Slack.UploadTimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Slack.UploadTimeoutSeconds) * time.Second
}

// GetStatePath returns the state file path (default: ~/.aw-analyzer/state.json)
func (c *Config) GetStatePath() string {
	if c.State.Path != "" {
		return c.State.Path
	}
	return filepath.Join(Dir(), "state.json")
}

// GetUsageDBPath returns the usage database path (default: ~/.aw-analyzer/usage.db)
func (c *Config) GetUsageDBPath() string {
	if c.Usage.Path != "" {
		return c.Usage.Path
	}
	return filepath.Join(Dir(), "usage.db")
}

// GetReportDays returns the weekly report window, clamped to 1..31
func (c *Config) GetReportDays() int {
	if c.Report.Days == 0 {
		return 7
	}
	return util.ClampInt(c.Report.Days, 1, 31)
}

// GetUTCOffset returns the configured day-boundary offset (default: "+09:00")
func (c *Config) GetUTCOffset() string {
	if c.Report.UTCOffset == "" {
		return "+09:00"
	}
	return c.Report.UTCOffset
}

// GetSleepMinMinutes returns the minimum AFK run treated as sleep
func (c *Config) GetSleepMinMinutes() int {
	if c.Report.SleepMinMinutes <= 0 {
		return 180
	}
	return c.Report.SleepMinMinutes
}

// GetMinActiveSeconds returns the day-with-data threshold in seconds
func (c *Config) GetMinActiveSeconds() int {
	if c.Report.MinActiveSeconds <= 0 {
		return 3600
	}
	return c.Report.MinActiveSeconds
}

// GetRenderer returns the SVG-to-PNG renderer binary name
func (c *Config) GetRenderer() string {
	if c.Report.Renderer == "" {
		return "rsvg-convert"
	}
	return c.Report.Renderer
}

// GetInstallInterval returns the launchd tick interval, clamped to 1..1440 minutes
func (c *Config) GetInstallInterval() int {
	if c.Install.IntervalMinutes == 0 {
		return 5
	}
	return util.ClampInt(c.Install.IntervalMinutes, 1, 1440)
}

// GetInstallLabel returns the launchd agent label
func (c *Config) GetInstallLabel() string {
	if c.Install.Label == "" {
		return "com.awtools.aw-analyzer"
	}
	return c.Install.Label
}

// GetLogTheme returns the log color theme (default: everforest)
func (c *Config) GetLogTheme() string {
	if c.Log.Theme == "" {
		return "everforest"
	}
	return c.Log.Theme
}

// HasSlackWebhook reports whether Slack webhook delivery is configured
func (c *Config) HasSlackWebhook() bool {
	return c.Slack.WebhookURL != ""
}

// HasSlackUpload reports whether Slack file uploads are configured
func (c *Config) HasSlackUpload() bool {
	return c.Slack.BotToken != "" && c.Slack.ChannelID != ""
}

// HasOpenRouter reports whether an OpenRouter API key is configured
func (c *Config) HasOpenRouter() bool {
	return c.OpenRouter.APIKey != ""
}

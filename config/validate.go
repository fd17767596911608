package config

import (
	"net/url"
	"time"

	"github.com/awtools/aw-analyzer/errors"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.ActivityWatch.BaseURL != "" {
		u, err := url.Parse(c.ActivityWatch.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.NewConfigError("activitywatch.base_url is not a valid URL: %q", c.ActivityWatch.BaseURL)
		}
	}
	if c.ActivityWatch.TimeoutSeconds < 0 {
		return errors.NewConfigError("activitywatch.timeout_seconds must be >= 0, got %d", c.ActivityWatch.TimeoutSeconds)
	}

	// Offset format is ±HH:MM; the timeline package re-parses it at use sites
	if c.Report.UTCOffset != "" {
		if _, err := time.Parse("Z07:00", c.Report.UTCOffset); err != nil {
			return errors.NewConfigError("report.utc_offset must look like \"+09:00\", got %q", c.Report.UTCOffset)
		}
	}
	if c.Report.SleepMinMinutes < 0 {
		return errors.NewConfigError("report.sleep_min_minutes must be >= 0, got %d", c.Report.SleepMinMinutes)
	}
	if c.Report.MinActiveSeconds < 0 {
		return errors.NewConfigError("report.min_active_seconds must be >= 0, got %d", c.Report.MinActiveSeconds)
	}

	if c.Jobs.DailySummary.TargetHour < 0 || c.Jobs.DailySummary.TargetHour > 23 {
		return errors.NewConfigError("jobs.daily_summary.target_hour must be 0..23, got %d", c.Jobs.DailySummary.TargetHour)
	}
	if c.Jobs.DailySummary.TargetMinute < 0 || c.Jobs.DailySummary.TargetMinute > 59 {
		return errors.NewConfigError("jobs.daily_summary.target_minute must be 0..59, got %d", c.Jobs.DailySummary.TargetMinute)
	}
	if c.Jobs.DailyReport.TargetHour < 0 || c.Jobs.DailyReport.TargetHour > 23 {
		return errors.NewConfigError("jobs.daily_report.target_hour must be 0..23, got %d", c.Jobs.DailyReport.TargetHour)
	}
	if c.Jobs.DailyReport.TargetMinute < 0 || c.Jobs.DailyReport.TargetMinute > 59 {
		return errors.NewConfigError("jobs.daily_report.target_minute must be 0..59, got %d", c.Jobs.DailyReport.TargetMinute)
	}
	if c.Jobs.ContinuousWork.ThresholdMinutes < 0 {
		return errors.NewConfigError("jobs.continuous_work.threshold_minutes must be >= 0, got %d", c.Jobs.ContinuousWork.ThresholdMinutes)
	}
	if c.Jobs.ContinuousWork.CooldownMinutes < 0 {
		return errors.NewConfigError("jobs.continuous_work.cooldown_minutes must be >= 0, got %d", c.Jobs.ContinuousWork.CooldownMinutes)
	}

	if c.OpenRouter.Temperature != nil && (*c.OpenRouter.Temperature < 0 || *c.OpenRouter.Temperature > 2) {
		return errors.NewConfigError("openrouter.temperature must be 0..2, got %f", *c.OpenRouter.Temperature)
	}
	if c.OpenRouter.MaxTokens != nil && *c.OpenRouter.MaxTokens <= 0 {
		return errors.NewConfigError("openrouter.max_tokens must be > 0, got %d (omit for default)", *c.OpenRouter.MaxTokens)
	}

	if c.Slack.TimeoutSeconds < 0 {
		return errors.NewConfigError("slack.timeout_seconds must be >= 0, got %d", c.Slack.TimeoutSeconds)
	}
	if c.Slack.UploadTimeoutSeconds < 0 {
		return errors.NewConfigError("slack.upload_timeout_seconds must be >= 0, got %d", c.Slack.UploadTimeoutSeconds)
	}

	// 0 = use default, the getter clamps everything else to 1..1440
	if c.Install.IntervalMinutes < 0 {
		return errors.NewConfigError("install.interval_minutes must be >= 0, got %d", c.Install.IntervalMinutes)
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return errors.NewConfigError("log.level must be debug, info, warn, or error, got %q", c.Log.Level)
	}

	switch c.Log.Theme {
	case "", "gruvbox", "everforest":
	default:
		return errors.NewConfigError("log.theme must be gruvbox or everforest, got %q", c.Log.Theme)
	}

	return nil
}

package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/awtools/aw-analyzer/aw"
	"github.com/awtools/aw-analyzer/config"
	"github.com/awtools/aw-analyzer/logger"
	"github.com/awtools/aw-analyzer/report"
	"github.com/awtools/aw-analyzer/slack"
	"github.com/awtools/aw-analyzer/timeline"
)

// loadConfig loads configuration, honoring the persistent --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err := config.LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
		return cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// reportOffset parses the configured day-boundary offset.
func reportOffset(cfg *config.Config) (time.Duration, error) {
	offset, err := timeline.ParseUTCOffset(cfg.GetUTCOffset())
	if err != nil {
		return 0, fmt.Errorf("invalid report.utc_offset %q: %w", cfg.GetUTCOffset(), err)
	}
	return offset, nil
}

// newActivityClient builds the ActivityWatch client from config.
func newActivityClient(cfg *config.Config) *aw.Client {
	return aw.NewClient(aw.Config{
		BaseURL:  cfg.ActivityWatch.BaseURL,
		Hostname: cfg.GetHostname(),
		Timeout:  cfg.GetAWTimeout(),
		Logger:   logger.Logger,
	})
}

// dashboardURL returns the ActivityWatch web UI address for report links.
func dashboardURL(cfg *config.Config) string {
	if cfg.ActivityWatch.BaseURL != "" {
		return cfg.ActivityWatch.BaseURL
	}
	return aw.DefaultBaseURL
}

// buildWebhook returns a Slack webhook sender, or a nil interface when
// no webhook URL is configured.
func buildWebhook(cfg *config.Config) report.Sender {
	if !cfg.HasSlackWebhook() {
		return nil
	}
	webhook, err := slack.NewWebhook(slack.WebhookConfig{
		URL:     cfg.Slack.WebhookURL,
		Timeout: cfg.GetSlackTimeout(),
	}, logger.Logger)
	if err != nil {
		logger.Warnw("Slack webhook misconfigured, continuing without chat delivery", "error", err)
		return nil
	}
	return webhook
}

// buildUploader returns a Slack file uploader, or a nil interface when
// bot credentials are missing.
func buildUploader(cfg *config.Config) report.FileUploader {
	if !cfg.HasSlackUpload() {
		return nil
	}
	uploader, err := slack.NewUploader(slack.UploaderConfig{
		BotToken: cfg.Slack.BotToken,
		Channel:  cfg.Slack.ChannelID,
		Timeout:  cfg.GetUploadTimeout(),
	}, logger.Logger)
	if err != nil {
		logger.Warnw("Slack uploader misconfigured, reports will go out without the heatmap", "error", err)
		return nil
	}
	return uploader
}

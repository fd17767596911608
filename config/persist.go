package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/awtools/aw-analyzer/errors"
	"github.com/awtools/aw-analyzer/logger"
)

// defaultConfigTOML is the starter config written by `aw-analyzer config init`.
// Secrets are left blank so they can come from the environment instead.
const defaultConfigTOML = `# aw-analyzer configuration
# Values here are overridden by AW_ANALYZER_* environment variables.

[activitywatch]
base_url = "http://localhost:5600"
# hostname = ""            # empty = this machine's hostname
timeout_seconds = 30

[slack]
# webhook_url = ""         # or SLACK_WEBHOOK_URL
# bot_token = ""           # or SLACK_BOT_TOKEN, needed for heatmap uploads
# channel_id = ""          # or SLACK_CHANNEL_ID
timeout_seconds = 10
upload_timeout_seconds = 60

[openrouter]
# api_key = ""             # or OPENROUTER_API_KEY, empty = built-in summaries
model = "anthropic/claude-3.5-haiku"
temperature = 0.2
max_tokens = 1000

[report]
utc_offset = "+09:00"
days = 7
sleep_min_minutes = 180
min_active_seconds = 3600
renderer = "rsvg-convert"

[jobs.daily_summary]
target_hour = 8
target_minute = 0

[jobs.continuous_work]
threshold_minutes = 60
cooldown_minutes = 60

[jobs.daily_report]
target_hour = 21
target_minute = 0

[usage]
enabled = true

[install]
interval_minutes = 5
label = "com.awtools.aw-analyzer"

[log]
# level = "info"
theme = "everforest"
`

// createBackup creates rotating backups (.back1, .back2, .back3) before modifying config
func createBackup(configPath string) error {
	// Check if file exists before backing up
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil // No file to backup
	}

	// Rotate backups: .back3 -> delete, .back2 -> .back3, .back1 -> .back2, current -> .back1
	back3 := configPath + ".back3"
	back2 := configPath + ".back2"
	back1 := configPath + ".back1"

	// Delete oldest backup if exists
	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		// Backup rotation failures never block a config save
		logger.Warnf("Failed to delete old backup %s: %v", back3, err)
	}

	// Rotate .back2 to .back3
	if _, err := os.Stat(back2); err == nil {
		if err := os.Rename(back2, back3); err != nil {
			return errors.Wrap(err, "failed to rotate .back2 to .back3")
		}
	}

	// Rotate .back1 to .back2
	if _, err := os.Stat(back1); err == nil {
		if err := os.Rename(back1, back2); err != nil {
			return errors.Wrap(err, "failed to rotate .back1 to .back2")
		}
	}

	// Copy current to .back1
	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}

	if err := os.WriteFile(back1, content, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}

	return nil
}

// Init writes the starter config file and returns its path. An existing
// file is left alone unless force is set, in which case it is backed up
// first. The write is atomic (temp file then rename).
func Init(force bool) (string, error) {
	configPath := Path()

	if _, err := os.Stat(configPath); err == nil {
		if !force {
			return configPath, errors.NewConfigError("config already exists at %s (use --force to overwrite)", configPath)
		}
		if err := createBackup(configPath); err != nil {
			return configPath, err
		}
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		return configPath, errors.WrapConfig(err, "failed to create config directory")
	}

	tmp, err := os.CreateTemp(dir, ".config-*.toml")
	if err != nil {
		return configPath, errors.WrapConfig(err, "failed to create temp config")
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(defaultConfigTOML); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return configPath, errors.WrapConfig(err, "failed to write temp config")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return configPath, errors.WrapConfig(err, "failed to close temp config")
	}

	if err := os.Chmod(tmpPath, DefaultFilePermissions); err != nil {
		os.Remove(tmpPath)
		return configPath, errors.WrapConfig(err, "failed to chmod temp config")
	}

	if err := os.Rename(tmpPath, configPath); err != nil {
		os.Remove(tmpPath)
		return configPath, errors.WrapConfig(err, "failed to move config into place")
	}

	return configPath, nil
}

// RenderTOML renders the effective configuration as TOML for `config show`
func RenderTOML(c *Config) (string, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return "", errors.WrapConfig(err, "failed to marshal config")
	}
	return string(data), nil
}

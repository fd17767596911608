package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/awtools/aw-analyzer/errors"
)

var globalConfig *Config
var viperInstance *viper.Viper

// Load reads the aw-analyzer configuration using Viper
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViper()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.WrapConfig(err, "failed to unmarshal config")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	globalConfig = &config
	return globalConfig, nil
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.WrapConfig(err, "failed to unmarshal config")
	}
	return &config, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	// Defaults apply but environment variables stay unbound for this load
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.WrapConfig(err, "failed to read config file "+configPath)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.WrapConfig(err, "failed to unmarshal config from "+configPath)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viperInstance = nil
}

// initViper initializes Viper with configuration sources and defaults
func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	LoadDotEnv()

	v := viper.New()

	// Set up environment variable binding
	v.SetEnvPrefix("AW_ANALYZER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind specific sensitive configuration values to environment variables
	BindSensitiveEnvVars(v)

	// Set defaults first
	SetDefaults(v)

	// Manually merge configs in precedence order: system -> user -> override -> env vars
	mergeConfigFiles(v)

	viperInstance = v
	return v
}

// LoadDotEnv loads .env files without overriding variables already set in
// the environment. The working directory is checked first, then the
// aw-analyzer home directory.
func LoadDotEnv() {
	_ = godotenv.Load()
	_ = godotenv.Load(filepath.Join(Dir(), ".env"))
}

// mergeConfigFiles manually merges configuration files in the correct precedence order
// Precedence (lowest to highest): system < user < AW_ANALYZER_CONFIG < env vars
func mergeConfigFiles(v *viper.Viper) {
	configPaths := []string{
		"/etc/aw-analyzer/config.toml", // System config (lowest precedence)
		filepath.Join(Dir(), "config.toml"),
	}

	// An explicit AW_ANALYZER_CONFIG wins over both file locations
	if override := os.Getenv("AW_ANALYZER_CONFIG"); override != "" {
		configPaths = append(configPaths, override)
	}

	for _, configPath := range configPaths {
		if _, err := os.Stat(configPath); err == nil {
			tempViper := viper.New()
			tempViper.SetConfigFile(configPath)
			tempViper.SetConfigType("toml")

			if err := tempViper.ReadInConfig(); err == nil {
				for key, value := range tempViper.AllSettings() {
					v.Set(key, value)
				}
			}
		}
	}
}

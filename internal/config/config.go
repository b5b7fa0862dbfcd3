package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/pforge-labs/pforge/internal/branding"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Config keys. Values come from ~/.pforge/config.yaml or PFORGE_*
// environment variables.
const (
	KeyWorkflowMaxAttempts     = "workflow.max_attempts"
	KeyWorkflowBackoff         = "workflow.backoff"
	KeyWorkflowBackoffStrategy = "workflow.backoff_strategy"
	KeyWorkflowCallTimeout     = "workflow.call_timeout"
	KeyWorkflowEnableRollback  = "workflow.enable_rollback"
	KeyIntentMinRequirements   = "intent.min_requirements"
	KeyIntentMaxRounds         = "intent.max_rounds"
	KeyInspectorFreshness      = "inspector.freshness"
	KeyRegistryPath            = "registry.path"
	KeyGitRoot                 = "git.root"
)

// Dir returns the path to the config directory. PFORGE_HOME overrides the
// default ~/.pforge/.
func Dir() string {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.pforge/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()

	viper.SetDefault(KeyWorkflowMaxAttempts, 3)
	viper.SetDefault(KeyWorkflowBackoff, "200ms")
	viper.SetDefault(KeyWorkflowBackoffStrategy, "fixed")
	viper.SetDefault(KeyWorkflowCallTimeout, "30s")
	viper.SetDefault(KeyWorkflowEnableRollback, true)
	viper.SetDefault(KeyIntentMinRequirements, 2)
	viper.SetDefault(KeyIntentMaxRounds, 3)
	viper.SetDefault(KeyInspectorFreshness, "720h")

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// GetInt returns a config value as an int.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a config value as a bool.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a config value as a duration.
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

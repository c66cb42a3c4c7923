// Package conf loads and persists seedvault configuration using viper.
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Settings holds the full application configuration.
type Settings struct {
	Debug bool `yaml:"debug"` // true to enable debug logging

	// Runtime values, not stored in config file
	Version string `yaml:"-"`

	Main struct {
		Name string `yaml:"name"` // identifies this seedvault instance in logs
	} `yaml:"main"`

	WebServer struct {
		Enabled bool   `yaml:"enabled"`
		Port    string `yaml:"port"`
	} `yaml:"webserver"`

	Output struct {
		SQLite struct {
			Enabled bool   `yaml:"enabled"`
			Path    string `yaml:"path"`
		} `yaml:"sqlite"`
		MySQL struct {
			Enabled  bool   `yaml:"enabled"`
			Username string `yaml:"username"`
			Password string `yaml:"password"`
			Database string `yaml:"database"`
			Host     string `yaml:"host"`
			Port     string `yaml:"port"`
		} `yaml:"mysql"`
	} `yaml:"output"`

	Gemini GeminiConfig `yaml:"gemini"`

	Export struct {
		// Fields limits CSV export columns. Empty means every field in
		// the seed schema, in schema order.
		Fields []string `yaml:"fields"`
	} `yaml:"export"`
}

// GeminiConfig holds the generative AI provider settings. The API key and
// selected model live in the datastore options table so they can be
// changed at runtime; only endpoint-level settings belong here.
type GeminiConfig struct {
	Endpoint        string `yaml:"endpoint"`        // base URL of the generative language API
	Timeout         int    `yaml:"timeout"`         // per-request timeout in seconds for content generation
	RefreshSchedule string `yaml:"refreshschedule"` // cron spec for the weekly model list refresh
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into a
// Settings instance.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// Setting returns the loaded settings instance, or nil before Load.
func Setting() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// initViper wires defaults, config file discovery and env overrides.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	viper.SetEnvPrefix("SEEDVAULT")
	viper.AutomaticEnv()

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return createDefaultConfig(configPaths[0])
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes a default config file so the next start has
// something to edit.
func createDefaultConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(defaultConfigYAML), 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}
	return viper.ReadInConfig()
}

// SaveSettings writes the loaded settings back to the active config
// file. It fails before Load has run.
func SaveSettings() error {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()

	if settingsInstance == nil {
		return fmt.Errorf("settings not loaded")
	}

	configPath, err := FindConfigFile()
	if err != nil {
		return fmt.Errorf("error finding config file: %w", err)
	}

	if err := SaveYAMLConfig(configPath, settingsInstance); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}
	return nil
}

// FindConfigFile returns the config file viper is using, or the default
// location when none has been read yet.
func FindConfigFile() (string, error) {
	if path := viper.ConfigFileUsed(); path != "" {
		return path, nil
	}
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return "", err
	}
	return filepath.Join(configPaths[0], "config.yaml"), nil
}

// SaveYAMLConfig writes the settings to the given path as yaml,
// preserving nothing but the struct contents.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("error writing settings to %s: %w", configPath, err)
	}
	return nil
}

// GetDefaultConfigPaths returns the ordered list of directories searched
// for config.yaml.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error fetching user home directory: %w", err)
	}
	return []string{
		filepath.Join(homeDir, ".config", "seedvault"),
		".",
	}, nil
}

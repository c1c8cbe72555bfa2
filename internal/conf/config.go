// Package conf handles loading and validating the MindWell client settings
// from config file, environment, and command line flags via viper.
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Settings holds the complete client configuration
type Settings struct {
	// Debug enables debug logging across all services
	Debug bool

	Main struct {
		// Name is the client instance name used in logs
		Name string
		Log  struct {
			// Enabled controls whether per-service file logs are written
			Enabled bool
			// Path is the directory file logs are written to
			Path string
		}
	}

	Backend struct {
		// BaseURL is the MindWell API root, e.g. https://api.mindwell.app
		BaseURL string
		// Timeout applies to every request
		Timeout time.Duration
		// PageSize is the notification fetch page size (first page only)
		PageSize int
		// CacheTTL controls the unread-count response cache
		CacheTTL time.Duration
	}

	Session struct {
		// Token is the bearer token; TokenFile is read instead when set
		Token     string
		TokenFile string
	}

	Poll struct {
		// Enabled turns the periodic background refresh on
		Enabled bool
		// Interval between automatic refreshes
		Interval time.Duration
	}
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into Settings.
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

	// Validation is deferred until command line flags have been merged in,
	// see cmd.RootCommand
	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
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

	viper.SetEnvPrefix("mindwell")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// No config file present, defaults plus env are enough
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPaths returns the config search paths in priority order.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error fetching user home directory: %w", err)
	}
	return []string{
		".",
		filepath.Join(homeDir, ".config", "mindwell"),
		"/etc/mindwell",
	}, nil
}

// ValidateSettings checks settings for values the client cannot run with.
func ValidateSettings(settings *Settings) error {
	if settings.Backend.BaseURL == "" {
		return fmt.Errorf("backend.baseurl is required")
	}
	if settings.Backend.PageSize <= 0 {
		return fmt.Errorf("backend.pagesize must be positive, got %d", settings.Backend.PageSize)
	}
	if settings.Poll.Enabled && settings.Poll.Interval <= 0 {
		return fmt.Errorf("poll.interval must be positive when polling is enabled, got %s", settings.Poll.Interval)
	}
	return nil
}

// ResolveToken returns the session token, reading Session.TokenFile if set.
func (s *Settings) ResolveToken() (string, error) {
	if s.Session.TokenFile != "" {
		data, err := os.ReadFile(s.Session.TokenFile)
		if err != nil {
			return "", fmt.Errorf("error reading token file %s: %w", s.Session.TokenFile, err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return s.Session.Token, nil
}

// GetSettings returns the current settings instance, nil before Load.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

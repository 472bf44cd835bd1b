package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults for the tracked title and the MANGA Plus web API.
const (
	DefaultTitleID      = 100056
	DefaultTitleName    = "SPYxFAMILY"
	DefaultAPIBaseURL   = "https://jumpg-webapi.tokyo-cdn.com"
	DefaultAckTimeout   = 30
	DefaultFetchTimeout = 30
)

// Notification backends.
const (
	BackendAuto     = "auto"
	BackendDesktop  = "desktop"
	BackendTerminal = "terminal"
)

// envPrefix scopes environment overrides, e.g. MANGAPLUS_NOTIFIER_TITLE_ID.
const envPrefix = "MANGAPLUS_NOTIFIER"

// TitleConfig selects the single title being tracked.
type TitleConfig struct {
	ID   int    `mapstructure:"id" yaml:"id"`
	Name string `mapstructure:"name" yaml:"name"`
}

// APIConfig holds settings for the remote title detail endpoint.
type APIConfig struct {
	BaseURL    string `mapstructure:"base_url" yaml:"base_url"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// NotifyConfig holds notification surface settings.
type NotifyConfig struct {
	// Backend is "auto", "desktop", or "terminal".
	Backend string `mapstructure:"backend" yaml:"backend"`

	// AckTimeoutSec is how long to wait for the user to acknowledge.
	AckTimeoutSec int `mapstructure:"ack_timeout_sec" yaml:"ack_timeout_sec"`

	// WaitForDismiss adds the default click action and keeps the
	// notification resident until acted upon or timed out.
	WaitForDismiss bool `mapstructure:"wait_for_dismiss" yaml:"wait_for_dismiss"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Title   TitleConfig  `mapstructure:"title" yaml:"title"`
	API     APIConfig    `mapstructure:"api" yaml:"api"`
	Notify  NotifyConfig `mapstructure:"notify" yaml:"notify"`
	Log     LogConfig    `mapstructure:"log" yaml:"log"`
	DataDir string       `mapstructure:"data_dir" yaml:"data_dir"`
}

// AckTimeout returns the acknowledgment wait window.
func (c *AppConfig) AckTimeout() time.Duration {
	return time.Duration(c.Notify.AckTimeoutSec) * time.Second
}

// FetchTimeout returns the HTTP client timeout for the title detail call.
func (c *AppConfig) FetchTimeout() time.Duration {
	return time.Duration(c.API.TimeoutSec) * time.Second
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mangaplus-notifier/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "mangaplus-notifier", "config.yaml")
}

// DefaultDataDir returns the per-user hidden directory holding the
// cached snapshot and the acknowledgment record.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mangaplus"
	}
	return filepath.Join(home, ".mangaplus")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Title: TitleConfig{
			ID:   DefaultTitleID,
			Name: DefaultTitleName,
		},
		API: APIConfig{
			BaseURL:    DefaultAPIBaseURL,
			TimeoutSec: DefaultFetchTimeout,
		},
		Notify: NotifyConfig{
			Backend:        BackendAuto,
			AckTimeoutSec:  DefaultAckTimeout,
			WaitForDismiss: true,
		},
		Log: LogConfig{
			Level: "info",
		},
		DataDir: DefaultDataDir(),
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration with
// environment overrides applied.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values.
	def := DefaultAppConfig()
	v.SetDefault("title.id", def.Title.ID)
	v.SetDefault("title.name", def.Title.Name)
	v.SetDefault("api.base_url", def.API.BaseURL)
	v.SetDefault("api.timeout_sec", def.API.TimeoutSec)
	v.SetDefault("notify.backend", def.Notify.Backend)
	v.SetDefault("notify.ack_timeout_sec", def.Notify.AckTimeoutSec)
	v.SetDefault("notify.wait_for_dismiss", def.Notify.WaitForDismiss)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("data_dir", def.DataDir)

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c *AppConfig) Validate() error {
	if c.Title.ID <= 0 {
		return fmt.Errorf("title.id must be positive, got %d", c.Title.ID)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.TimeoutSec < 0 {
		return fmt.Errorf("api.timeout_sec must not be negative, got %d", c.API.TimeoutSec)
	}
	if c.Notify.AckTimeoutSec <= 0 {
		return fmt.Errorf("notify.ack_timeout_sec must be positive, got %d", c.Notify.AckTimeoutSec)
	}
	switch c.Notify.Backend {
	case BackendAuto, BackendDesktop, BackendTerminal:
	default:
		return fmt.Errorf("notify.backend must be one of auto, desktop, terminal; got %q", c.Notify.Backend)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("title.id", cfg.Title.ID)
	v.Set("title.name", cfg.Title.Name)
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.timeout_sec", cfg.API.TimeoutSec)
	v.Set("notify.backend", cfg.Notify.Backend)
	v.Set("notify.ack_timeout_sec", cfg.Notify.AckTimeoutSec)
	v.Set("notify.wait_for_dismiss", cfg.Notify.WaitForDismiss)
	v.Set("log.level", cfg.Log.Level)
	v.Set("data_dir", cfg.DataDir)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	API APIConfig
	UI  UIConfig
	Log LogConfig
}

// APIConfig holds backend connection settings.
type APIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// UIConfig holds presentation settings.
type UIConfig struct {
	PageLimit      int    `mapstructure:"page_limit"`
	RefreshSeconds int    `mapstructure:"refresh_seconds"`
	CurrencySymbol string `mapstructure:"currency_symbol"`
	Timezone       string `mapstructure:"timezone"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
	Path  string
}

// Load reads configuration from file and env. Env var overrides use prefix LEADSCOPE_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("api.base_url", "http://localhost:3001/api/v1")
	v.SetDefault("api.timeout_seconds", 10)
	v.SetDefault("ui.page_limit", 20)
	v.SetDefault("ui.refresh_seconds", 30)
	v.SetDefault("ui.currency_symbol", "$")
	v.SetDefault("ui.timezone", "Asia/Jakarta")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", filepath.Join(os.Getenv("HOME"), ".local", "state", "leadscope", "leadscope.log"))

	v.SetConfigType("toml")

	cfgPath := os.Getenv("LEADSCOPE_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "leadscope"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("LEADSCOPE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
// Used by the TUI settings modal for non-sensitive preferences.
func Save(cfg Config) error {
	path := os.Getenv("LEADSCOPE_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "leadscope", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.timeout_seconds", cfg.API.TimeoutSeconds)
	v.Set("ui.page_limit", cfg.UI.PageLimit)
	v.Set("ui.refresh_seconds", cfg.UI.RefreshSeconds)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)
	v.Set("ui.timezone", cfg.UI.Timezone)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.path", cfg.Log.Path)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

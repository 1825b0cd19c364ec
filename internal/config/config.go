package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jask/studentadmin/internal/logging"
)

// Config holds application configuration.
type Config struct {
	API APIConfig
	Log LogConfig
	UI  UIConfig
}

// APIConfig points the panel at the student service.
type APIConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	TokenEnv string        `mapstructure:"token_env"`
	Token    string        `mapstructure:"token"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// LogConfig holds the diagnostics log settings.
type LogConfig struct {
	Path  string
	Level string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	ToastTTL time.Duration `mapstructure:"toast_ttl"`
}

// Load reads configuration from file and env. Env var overrides use prefix
// STUDENTADMIN_. An explicit path wins over STUDENTADMIN_CONFIG.
func Load(path string) (Config, error) {
	v := viper.New()

	home := os.Getenv("HOME")
	v.SetDefault("api.base_url", "http://localhost:8080/api")
	v.SetDefault("api.token_env", "STUDENTADMIN_TOKEN")
	v.SetDefault("api.token", "")
	v.SetDefault("api.timeout", "0s")
	v.SetDefault("log.path", filepath.Join(home, ".local", "state", "studentadmin", "studentadmin.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("ui.toast_ttl", "4s")

	v.SetConfigType("toml")

	if path == "" {
		path = os.Getenv("STUDENTADMIN_CONFIG")
	}
	explicit := path != ""
	if explicit {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "studentadmin"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("STUDENTADMIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks values that would otherwise fail late inside the TUI.
func (c Config) Validate() error {
	raw := strings.TrimSpace(c.API.BaseURL)
	if raw == "" {
		return fmt.Errorf("config: api.base_url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: api.base_url %q is not an absolute url", raw)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("config: api.timeout must not be negative")
	}
	if c.UI.ToastTTL < 0 {
		return fmt.Errorf("config: ui.toast_ttl must not be negative")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	if strings.TrimSpace(c.Log.Path) == "" {
		return fmt.Errorf("config: log.path is required")
	}
	return nil
}

// Token resolves the bearer token: the configured env var first, then the
// literal value from the config file.
func (c Config) Token() string {
	if env := strings.TrimSpace(c.API.TokenEnv); env != "" {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	return strings.TrimSpace(c.API.Token)
}

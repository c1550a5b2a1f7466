// Package config resolves tada's settings from defaults, TOML files, the
// environment and command-line flags, in that order of precedence.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/idilsaglam/tada/internal/logging"
	"github.com/idilsaglam/tada/internal/ui"
)

const (
	DefaultAPIURL    = "http://localhost:5000/api"
	DefaultTheme     = "classic"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	appName        = "tada"
	configFileName = "config.toml"
)

// ProjectFileNames are looked up in the working directory.
var ProjectFileNames = []string{"tada.toml", ".tada.toml"}

// Config is the effective configuration.
type Config struct {
	APIURL    string   `toml:"api_url"`
	Timeout   Duration `toml:"timeout"`
	Theme     string   `toml:"theme"`
	LogFile   string   `toml:"log_file"`
	LogLevel  string   `toml:"log_level"`
	LogFormat string   `toml:"log_format"`

	// Files lists the config files that were read, lowest precedence first.
	Files []string `toml:"-"`
}

// Duration is a time.Duration written as "5s" in TOML.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	d.Duration = v
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:    DefaultAPIURL,
		Theme:     DefaultTheme,
		LogFile:   defaultLogFile(),
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
	}
}

// Validate checks values a typo would otherwise turn into a confusing
// runtime failure.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("api_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url %q: want an absolute http(s) URL", c.APIURL)
	}
	if c.Timeout.Duration < 0 {
		return fmt.Errorf("timeout %s: must not be negative", c.Timeout)
	}
	if _, ok := ui.LookupTheme(c.Theme); !ok {
		return fmt.Errorf("theme %q: want one of %s", c.Theme, strings.Join(ui.ThemeNames(), ", "))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if _, err := logging.ParseFormatter(c.LogFormat); err != nil {
		return fmt.Errorf("log_format: %w", err)
	}
	return nil
}

// LogOptions maps the logging settings onto logging.Options.
func (c Config) LogOptions() logging.Options {
	return logging.Options{
		Path:   c.LogFile,
		Level:  c.LogLevel,
		Format: c.LogFormat,
		Prefix: appName,
	}
}

// UserConfigPath is $XDG_CONFIG_HOME/tada/config.toml or the OS equivalent.
func UserConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName, appName+".log")
}

func expandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

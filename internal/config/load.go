package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	flag "github.com/spf13/pflag"
)

// Environment variables, applied after config files and before flags.
const (
	EnvConfig    = "TADA_CONFIG"
	EnvAPIURL    = "TADA_API_URL"
	EnvTimeout   = "TADA_TIMEOUT"
	EnvTheme     = "TADA_THEME"
	EnvLogFile   = "TADA_LOG_FILE"
	EnvLogLevel  = "TADA_LOG_LEVEL"
	EnvLogFormat = "TADA_LOG_FORMAT"
)

type flagValues struct {
	configPath string
	apiURL     string
	timeout    time.Duration
	theme      string
	logFile    string
	logLevel   string
	logFormat  string
}

func registerFlags(fs *flag.FlagSet) *flagValues {
	v := &flagValues{}
	fs.StringVarP(&v.configPath, "config", "c", "", "Read configuration from this file only")
	fs.StringVar(&v.apiURL, "api-url", "", "Base URL of the todo API (default "+DefaultAPIURL+")")
	fs.DurationVar(&v.timeout, "timeout", 0, "Per-request timeout, 0 for none")
	fs.StringVar(&v.theme, "theme", "", "Color theme: classic, neon or mono")
	fs.StringVar(&v.logFile, "log-file", "", "Diagnostic log file, - for stderr")
	fs.StringVar(&v.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	fs.StringVar(&v.logFormat, "log-format", "", "Log format: text, json or logfmt")
	return v
}

// Load defines the global flags on fs, parses args and resolves the
// configuration from:
//  1. Defaults
//  2. User config file (~/.config/tada/config.toml or the OS equivalent)
//  3. Project config file (tada.toml or .tada.toml in the working directory)
//  4. Environment variables
//  5. Flags
//
// An explicit --config (or TADA_CONFIG) file replaces steps 2 and 3.
// Flag parse errors, including flag.ErrHelp, are returned unwrapped.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	fv := registerFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := Default()

	explicit := fv.configPath
	if !fs.Changed("config") {
		explicit = os.Getenv(EnvConfig)
	}
	if explicit != "" {
		if err := loadConfigFile(&cfg, expandPath(explicit)); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", explicit, err)
		}
	} else {
		if p, err := UserConfigPath(); err == nil && fileExists(p) {
			if err := loadConfigFile(&cfg, p); err != nil {
				return nil, fmt.Errorf("loading user config file %s: %w", p, err)
			}
		}
		if p := findProjectConfigFile(); p != "" {
			if err := loadConfigFile(&cfg, p); err != nil {
				return nil, fmt.Errorf("loading project config file %s: %w", p, err)
			}
		}
	}

	if err := loadFromEnv(&cfg); err != nil {
		return nil, err
	}
	applyFlags(&cfg, fs, fv)

	cfg.LogFile = expandPath(cfg.LogFile)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadConfigFile overlays the keys present in path onto cfg. Unknown keys
// are an error so typos do not pass silently.
func loadConfigFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	cfg.Files = append(cfg.Files, path)
	return nil
}

func findProjectConfigFile() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for _, name := range ProjectFileNames {
		p := filepath.Join(wd, name)
		if fileExists(p) {
			return p
		}
	}
	return ""
}

func loadFromEnv(cfg *Config) error {
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		var d Duration
		if err := d.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Timeout = d
	}
	if v := os.Getenv(EnvTheme); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
	}
	return nil
}

func applyFlags(cfg *Config, fs *flag.FlagSet, fv *flagValues) {
	if fs.Changed("api-url") {
		cfg.APIURL = fv.apiURL
	}
	if fs.Changed("timeout") {
		cfg.Timeout = Duration{fv.timeout}
	}
	if fs.Changed("theme") {
		cfg.Theme = fv.theme
	}
	if fs.Changed("log-file") {
		cfg.LogFile = fv.logFile
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = fv.logLevel
	}
	if fs.Changed("log-format") {
		cfg.LogFormat = fv.logFormat
	}
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every lookup location at empty temp dirs and clears the
// TADA_* environment.
func isolate(t *testing.T) (configHome, workDir string) {
	t.Helper()
	configHome = t.TempDir()
	workDir = t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	for _, k := range []string{EnvConfig, EnvAPIURL, EnvTimeout, EnvTheme, EnvLogFile, EnvLogLevel, EnvLogFormat} {
		t.Setenv(k, "")
	}
	t.Chdir(workDir)
	return configHome, workDir
}

func load(t *testing.T, args ...string) (*Config, *flag.FlagSet, error) {
	t.Helper()
	fs := flag.NewFlagSet("tada", flag.ContinueOnError)
	fs.SetOutput(&bytes.Buffer{})
	fs.SetInterspersed(false)
	cfg, err := Load(fs, args)
	return cfg, fs, err
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, _, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultTheme, cfg.Theme)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Zero(t, cfg.Timeout.Duration)
	assert.Equal(t, "tada.log", filepath.Base(cfg.LogFile))
	assert.Empty(t, cfg.Files)
}

func TestLoadPrecedence(t *testing.T) {
	configHome, workDir := isolate(t)

	user := filepath.Join(configHome, "tada", "config.toml")
	writeFile(t, user, `
api_url = "http://user.example/api"
theme = "neon"
log_level = "warn"
timeout = "3s"
`)
	project := filepath.Join(workDir, "tada.toml")
	writeFile(t, project, `
api_url = "http://project.example/api"
log_level = "debug"
`)

	t.Run("files", func(t *testing.T) {
		cfg, _, err := load(t)
		require.NoError(t, err)
		assert.Equal(t, "http://project.example/api", cfg.APIURL)
		assert.Equal(t, "neon", cfg.Theme)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, 3*time.Second, cfg.Timeout.Duration)
		assert.Equal(t, []string{user, project}, cfg.Files)
	})

	t.Run("env beats files", func(t *testing.T) {
		t.Setenv(EnvAPIURL, "http://env.example/api")
		t.Setenv(EnvTimeout, "250ms")
		cfg, _, err := load(t)
		require.NoError(t, err)
		assert.Equal(t, "http://env.example/api", cfg.APIURL)
		assert.Equal(t, 250*time.Millisecond, cfg.Timeout.Duration)
	})

	t.Run("flags beat env", func(t *testing.T) {
		t.Setenv(EnvAPIURL, "http://env.example/api")
		cfg, fs, err := load(t, "--api-url", "https://flag.example/api", "--theme", "mono", "ls", "--group")
		require.NoError(t, err)
		assert.Equal(t, "https://flag.example/api", cfg.APIURL)
		assert.Equal(t, "mono", cfg.Theme)
		assert.Equal(t, []string{"ls", "--group"}, fs.Args())
	})
}

func TestLoadExplicitFileReplacesDiscovery(t *testing.T) {
	configHome, workDir := isolate(t)
	writeFile(t, filepath.Join(configHome, "tada", "config.toml"), `theme = "neon"`)
	writeFile(t, filepath.Join(workDir, ".tada.toml"), `theme = "neon"`)

	explicit := filepath.Join(t.TempDir(), "custom.toml")
	writeFile(t, explicit, `api_url = "http://custom.example/api"`)

	cfg, _, err := load(t, "--config", explicit)
	require.NoError(t, err)
	assert.Equal(t, "http://custom.example/api", cfg.APIURL)
	assert.Equal(t, DefaultTheme, cfg.Theme)
	assert.Equal(t, []string{explicit}, cfg.Files)

	t.Setenv(EnvConfig, explicit)
	cfg, _, err = load(t)
	require.NoError(t, err)
	assert.Equal(t, []string{explicit}, cfg.Files)
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name  string
		file  string
		env   map[string]string
		args  []string
		match string
	}{
		{name: "unknown key", file: `colour = "red"`, match: "unknown keys: colour"},
		{name: "bad toml", file: `api_url = `, match: "loading"},
		{name: "bad url", args: []string{"--api-url", "localhost:5000"}, match: "api_url"},
		{name: "bad theme", args: []string{"--theme", "pink"}, match: "theme"},
		{name: "bad level", env: map[string]string{EnvLogLevel: "loud"}, match: "log_level"},
		{name: "bad format", args: []string{"--log-format", "xml"}, match: "log_format"},
		{name: "bad env timeout", env: map[string]string{EnvTimeout: "soon"}, match: EnvTimeout},
		{name: "negative timeout", args: []string{"--timeout", "-1s"}, match: "timeout"},
		{name: "missing explicit file", args: []string{"--config", "/nonexistent/tada.toml"}, match: "loading config file"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, workDir := isolate(t)
			if tc.file != "" {
				writeFile(t, filepath.Join(workDir, "tada.toml"), tc.file)
			}
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, _, err := load(t, tc.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.match)
		})
	}
}

func TestLoadHelp(t *testing.T) {
	isolate(t)
	_, _, err := load(t, "--help")
	assert.True(t, errors.Is(err, flag.ErrHelp))
}

func TestLoadExpandsHomeInLogFile(t *testing.T) {
	isolate(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, _, err := load(t, "--log-file", "~/logs/tada.log")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "logs", "tada.log"), cfg.LogFile)
}

func TestWriteFileRoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	want := Default()
	want.APIURL = "https://todos.example/api"
	want.Timeout = Duration{5 * time.Second}
	want.Theme = "neon"
	require.NoError(t, WriteFile(path, want, false))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `timeout = "5s"`)

	cfg, _, err := load(t, "--config", path)
	require.NoError(t, err)
	assert.Equal(t, want.APIURL, cfg.APIURL)
	assert.Equal(t, want.Timeout, cfg.Timeout)
	assert.Equal(t, want.Theme, cfg.Theme)
}

func TestWriteFileRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, WriteFile(path, Default(), false))

	err := WriteFile(path, Default(), false)
	assert.True(t, errors.Is(err, ErrExists))
	assert.NoError(t, WriteFile(path, Default(), true))
}

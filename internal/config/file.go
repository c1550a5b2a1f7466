package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/natefinch/atomic"
)

// ErrExists is returned by WriteFile when path exists and force is off.
var ErrExists = errors.New("config file already exists")

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("toml encode: %w", err)
	}
	return nil
}

// WriteFile stores cfg at path, replacing the file atomically. Parent
// directories are created with 0700 since the file may name private hosts.
func WriteFile(path string, cfg Config, force bool) error {
	if !force && fileExists(path) {
		return fmt.Errorf("%s: %w", path, ErrExists)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, cfg); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

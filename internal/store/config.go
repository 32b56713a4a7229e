package store

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const configFileName = "config.toml"

type Config struct {
	// Dir is the data directory. Empty means <config dir>/data.
	Dir string `toml:"dir,omitempty"`

	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string `toml:"log_level,omitempty"`

	// SlackTeamID fills the team= parameter of slack:// deep links.
	SlackTeamID string `toml:"slack_team_id,omitempty"`

	TUI *TUIConfig `toml:"tui,omitempty"`
}

type TUIConfig struct {
	// Glyphs selects the glyph set ("unicode" or "ascii").
	Glyphs string `toml:"glyphs,omitempty"`
	// ShowSeconds renders local times with seconds.
	ShowSeconds bool `toml:"show_seconds,omitempty"`
	// Compact drops the blank line between cards.
	Compact bool `toml:"compact,omitempty"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.teamtz).
	if v := strings.TrimSpace(os.Getenv("TEAMTZ_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".teamtz"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// LoadConfig returns an empty config when the file does not exist.
func LoadConfig() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if _, err := toml.Decode(string(b), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("save config: nil config")
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}

	// Keep the previous file around; ignore errors so a bad backup never
	// blocks a save.
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, "config.toml.bak.*.tmp", path+".bak", prev, 0o644)
	}
	return atomicWriteFile(dir, "config.toml.*.tmp", path, buf.Bytes(), 0o600)
}

// ResolveDir picks the data directory: explicit flag/env value, then the
// config file, then DefaultDir.
func ResolveDir(explicit string, cfg *Config) (string, error) {
	if v := strings.TrimSpace(explicit); v != "" {
		return filepath.Clean(v), nil
	}
	if cfg != nil && strings.TrimSpace(cfg.Dir) != "" {
		return filepath.Clean(strings.TrimSpace(cfg.Dir)), nil
	}
	return DefaultDir()
}

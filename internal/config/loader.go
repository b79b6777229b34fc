package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/example/emojiart/internal/theme"
)

// EnvPrefix prefixes the environment variables read by ApplyEnv.
const EnvPrefix = "EMOJIART"

// Loader handles loading the configuration.
type Loader struct {
	Version      string // Build version, used to determine dev mode
	OverridePath string // Set at compile time if needed
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Load reads the rc file, if any, then applies environment overrides.
func (l *Loader) Load() (*Config, error) {
	cfg := New()
	if path := l.GetConfigPath(); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		parsed, err := Parse(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cfg = parsed
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetConfigPath returns the path to the configuration file, or empty string if not found.
func (l *Loader) GetConfigPath() string {
	if l.OverridePath != "" {
		if _, err := os.Stat(l.OverridePath); err == nil {
			return l.OverridePath
		}
	}

	// Local run directory (dev mode)
	if l.Version == "dev" {
		wd, _ := os.Getwd()
		localPath := filepath.Join(wd, ".emojiartrc")
		if _, err := os.Stat(localPath); err == nil {
			return localPath
		}
	}

	if path := DefaultPath(); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// DefaultPath is where "config save" writes: ~/.config/emojiart/config.rc.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "emojiart", "config.rc")
}

type envOverrides struct {
	Store            string        `envconfig:"STORE"`
	DataDir          string        `envconfig:"DATA_DIR"`
	AutosaveInterval time.Duration `envconfig:"AUTOSAVE_INTERVAL"`
	EmojiSize        int           `envconfig:"EMOJI_SIZE"`
	Theme            string        `envconfig:"THEME"`
}

// ApplyEnv overrides settings from EMOJIART_* environment variables.
// Unset variables leave the current value alone.
func (c *Config) ApplyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	if env.Store != "" {
		c.Store = strings.ToLower(env.Store)
	}
	if env.DataDir != "" {
		c.DataDir = env.DataDir
	}
	if env.AutosaveInterval != 0 {
		c.AutosaveInterval = env.AutosaveInterval
	}
	if env.EmojiSize != 0 {
		c.EmojiSize = env.EmojiSize
	}
	if env.Theme != "" {
		c.Theme = env.Theme
	}
	return nil
}

// ResolveTheme returns the theme named by c.Theme, preferring one
// defined in the config file over l.
func (c *Config) ResolveTheme(l *theme.Loader) (*theme.Theme, error) {
	if t, ok := c.Themes[c.Theme]; ok {
		return t, nil
	}
	return l.Load(c.Theme)
}

// Save writes c to path in rc format, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(c.String()), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

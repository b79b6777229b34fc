package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/emojiart/internal/store"
	"github.com/example/emojiart/internal/theme"
)

// Defaults for keys missing from the rc file.
const (
	DefaultAutosaveInterval = 5 * time.Second
	DefaultEmojiSize        = 40
)

// Notify holds notification settings.
type Notify struct {
	FetchFailed bool
	Save        bool
}

// Config holds the application configuration.
type Config struct {
	Store            string
	DataDir          string
	AutosaveInterval time.Duration
	EmojiSize        int
	Theme            string
	Notify           Notify
	Themes           map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Store:            store.BackendFile,
		AutosaveInterval: DefaultAutosaveInterval,
		EmojiSize:        DefaultEmojiSize,
		Notify: Notify{
			FetchFailed: true,
			Save:        false,
		},
		Themes: make(map[string]*theme.Theme),
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	switch c.Store {
	case store.BackendFile, store.BackendSQLite:
	default:
		return fmt.Errorf("store must be %q or %q, got %q", store.BackendFile, store.BackendSQLite, c.Store)
	}
	if c.AutosaveInterval <= 0 {
		return fmt.Errorf("autosave_interval must be positive, got %v", c.AutosaveInterval)
	}
	if c.EmojiSize <= 0 {
		return fmt.Errorf("emoji_size must be positive, got %d", c.EmojiSize)
	}
	return nil
}

// ResolveDataDir returns DataDir, or store.DefaultDir when it is unset.
func (c *Config) ResolveDataDir() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	return store.DefaultDir()
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "store = %s\n", c.Store)
	if c.DataDir != "" {
		fmt.Fprintf(&sb, "data_dir = %s\n", c.DataDir)
	}
	fmt.Fprintf(&sb, "autosave_interval = %s\n", c.AutosaveInterval)
	fmt.Fprintf(&sb, "emoji_size = %d\n", c.EmojiSize)
	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "fetch_failed = %v\n", c.Notify.FetchFailed)
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	sb.WriteString("\n")

	// Sort keys for deterministic output
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		for _, f := range theme.Fields(t) {
			fmt.Fprintf(&sb, "%s: %s\n", f.Name, theme.Hex(f.Color))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

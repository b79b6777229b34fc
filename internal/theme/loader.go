package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Loader resolves theme names to themes.
type Loader struct {
	ConfigDir string
}

// NewLoader returns a Loader that looks in ~/.config/emojiart/themes.
func NewLoader() *Loader {
	home, _ := os.UserHomeDir()
	return &Loader{ConfigDir: filepath.Join(home, ".config", "emojiart", "themes")}
}

// Load resolves name in order: empty name (Default), an existing file
// path, a built-in theme, then <ConfigDir>/<name>.theme.
func (l *Loader) Load(name string) (*Theme, error) {
	if name == "" {
		return Default(), nil
	}
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		return parseFile(name)
	}
	if t, ok := Builtin(strings.ToLower(name)); ok {
		return t, nil
	}
	filename := name
	if !strings.HasSuffix(filename, ".theme") {
		filename += ".theme"
	}
	path := filepath.Join(l.ConfigDir, filename)
	if _, err := os.Stat(path); err == nil {
		return parseFile(path)
	}
	return nil, fmt.Errorf("theme '%s' not found", name)
}

func parseFile(path string) (*Theme, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

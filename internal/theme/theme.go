// Package theme holds the colours used to paint the canvas window and
// exported images.
package theme

import (
	"image/color"
	"sort"
)

// Theme defines the canvas palette.
type Theme struct {
	Name string

	Window     color.RGBA // behind the canvas and under the status bar
	Canvas     color.RGBA // canvas fill when the background is blank
	Foreground color.RGBA // emoji fallback glyphs and status text
	Selection  color.RGBA // outline drawn around selected emoji
	Progress   color.RGBA // spinner shown while a background is fetched
	Failure    color.RGBA // status text after a failed fetch
}

// Default returns the light theme.
func Default() *Theme {
	return &Theme{
		Name:       "default",
		Window:     color.RGBA{220, 220, 220, 255},
		Canvas:     color.RGBA{255, 255, 255, 255},
		Foreground: color.RGBA{0, 0, 0, 255},
		Selection:  color.RGBA{0, 0, 0, 255},
		Progress:   color.RGBA{90, 90, 90, 255},
		Failure:    color.RGBA{200, 0, 0, 255},
	}
}

// Dark returns a dark variant of Default.
func Dark() *Theme {
	return &Theme{
		Name:       "dark",
		Window:     color.RGBA{30, 30, 30, 255},
		Canvas:     color.RGBA{48, 48, 48, 255},
		Foreground: color.RGBA{235, 235, 235, 255},
		Selection:  color.RGBA{255, 200, 0, 255},
		Progress:   color.RGBA{180, 180, 180, 255},
		Failure:    color.RGBA{255, 110, 110, 255},
	}
}

var builtin = map[string]func() *Theme{
	"default": Default,
	"dark":    Dark,
}

// Builtin returns the named built-in theme.
func Builtin(name string) (*Theme, bool) {
	fn, ok := builtin[name]
	if !ok {
		return nil, false
	}
	return fn(), true
}

// BuiltinNames lists the built-in themes in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

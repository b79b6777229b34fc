package theme

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseColor(t *testing.T) {
	for in, want := range map[string]color.RGBA{
		"#102030":   {0x10, 0x20, 0x30, 0xFF},
		"#10203040": {0x10, 0x20, 0x30, 0x40},
		"red":       {0xFF, 0, 0, 0xFF},
		" White ":   {0xFF, 0xFF, 0xFF, 0xFF},
	} {
		got, err := ParseColor(in)
		if err != nil {
			t.Errorf("ParseColor(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseColor(%q) = %v, want %v", in, got, want)
		}
	}
	for _, bad := range []string{"", "#12", "#GGGGGG", "notacolor"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("ParseColor(%q) succeeded", bad)
		}
	}
}

func TestParseKeepsDefaults(t *testing.T) {
	th, err := Parse(strings.NewReader("Name: mine\nselection: #FF0000\n# comment\nunknown: #000000\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if th.Name != "mine" {
		t.Errorf("Name = %q", th.Name)
	}
	if th.Selection != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("Selection = %v", th.Selection)
	}
	if th.Canvas != Default().Canvas {
		t.Errorf("Canvas lost its default: %v", th.Canvas)
	}
}

func TestHexRoundTrip(t *testing.T) {
	for _, f := range Fields(Dark()) {
		got, err := ParseColor(Hex(f.Color))
		if err != nil || got != f.Color {
			t.Errorf("%s: Hex round trip gave %v, %v", f.Name, got, err)
		}
	}
}

func TestLoaderOrder(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "sepia.theme"), []byte("Canvas: #704214\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := &Loader{ConfigDir: dir}

	if th, err := l.Load(""); err != nil || th.Name != "default" {
		t.Fatalf("Load(\"\") = %v, %v", th, err)
	}
	if th, err := l.Load("dark"); err != nil || th.Name != "dark" {
		t.Fatalf("Load(dark) = %v, %v", th, err)
	}
	th, err := l.Load("sepia")
	if err != nil {
		t.Fatalf("Load(sepia): %v", err)
	}
	if th.Canvas != (color.RGBA{0x70, 0x42, 0x14, 0xFF}) {
		t.Fatalf("sepia canvas = %v", th.Canvas)
	}
	if _, err := l.Load("missing"); err == nil {
		t.Fatal("expected missing theme error")
	}
}

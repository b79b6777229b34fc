package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/example/emojiart/internal/appstate"
	"github.com/example/emojiart/internal/artdoc"
	"github.com/example/emojiart/internal/geometry"
	"github.com/example/emojiart/internal/gesture"
	"github.com/example/emojiart/internal/render"
)

const (
	defaultExportWidth  = 1024
	defaultExportHeight = 768
)

type exportCmd struct {
	*root
	fs        *flag.FlagSet
	output    string
	clipboard bool
	width     int
	height    int
	fit       bool
	timeout   time.Duration
}

func (c *exportCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseExportCmd(args []string, r *root) (*exportCmd, error) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	c := &exportCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.output, "output", "", "PNG file to write")
	fs.BoolVar(&c.clipboard, "clipboard", false, "copy the image to the clipboard")
	fs.IntVar(&c.width, "width", 0, "image width (default: background width)")
	fs.IntVar(&c.height, "height", 0, "image height (default: background height)")
	fs.BoolVar(&c.fit, "fit", false, "zoom the background to fit the image")
	fs.DurationVar(&c.timeout, "timeout", 30*time.Second, "how long to wait for a url background")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: c}
	}
	if c.output == "" && !c.clipboard {
		return nil, fmt.Errorf("export needs -output, -clipboard or both")
	}
	if c.width < 0 || c.height < 0 {
		return nil, fmt.Errorf("-width and -height must not be negative")
	}
	return c, nil
}

func (c *exportCmd) Run() error {
	s, err := c.openDocument(context.Background())
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer closeWithLog("document", s.Close)

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	if err := s.doc.WaitFetch(ctx); err != nil {
		return fmt.Errorf("export: waiting for background: %w", err)
	}
	if st := s.doc.FetchStatus(); st.State == artdoc.FetchFailed {
		fmt.Fprintf(os.Stderr, "warning: couldn't load image from %s, exporting without it\n", st.URL)
	}

	img := c.render(s.doc)
	if c.output != "" {
		data, err := render.EncodePNG(img)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if err := os.WriteFile(c.output, data, 0o644); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", c.output)
	}
	if c.clipboard {
		if err := writeClipboardImage(img); err != nil {
			return fmt.Errorf("export: copy to clipboard: %w", err)
		}
	}
	return nil
}

// render draws doc at zoom 1 with the document origin in the middle of
// the image.
func (c *exportCmd) render(doc appstate.SceneSource) *image.RGBA {
	bw, bh := render.Size(doc.BackgroundImage())
	w, h := c.width, c.height
	if w == 0 {
		w = bw
	}
	if h == 0 {
		h = bh
	}
	if w == 0 || h == 0 {
		w, h = defaultExportWidth, defaultExportHeight
	}
	viewport := geometry.Size{W: float64(w), H: float64(h)}

	comp := gesture.NewComposer(nil)
	if c.fit && bw > 0 && bh > 0 {
		comp.DoubleTapCanvas(geometry.Size{W: float64(bw), H: float64(bh)}, viewport)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	render.Compose(dst, appstate.BuildScene(comp, doc, viewport, ""), c.activeTheme)
	return dst
}

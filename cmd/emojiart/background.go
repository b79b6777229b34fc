package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/example/emojiart/internal/artdoc"
	"github.com/example/emojiart/internal/document"
	"github.com/example/emojiart/internal/fetch"
	"github.com/example/emojiart/internal/render"
)

type backgroundCmd struct {
	*root
	fs      *flag.FlagSet
	source  string
	arg     string
	wait    bool
	timeout time.Duration
}

func (c *backgroundCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseBackgroundCmd(args []string, r *root) (*backgroundCmd, error) {
	fs := flag.NewFlagSet("background", flag.ContinueOnError)
	c := &backgroundCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.BoolVar(&c.wait, "wait", true, "wait for a url background to load and report failures")
	fs.DurationVar(&c.timeout, "timeout", 30*time.Second, "how long to wait for a url background")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		return nil, &UsageError{of: c}
	}
	c.source = strings.ToLower(fs.Arg(0))
	switch c.source {
	case "url", "file":
		if fs.NArg() != 2 {
			return nil, &UsageError{of: c}
		}
		c.arg = fs.Arg(1)
	case "clipboard", "blank":
		if fs.NArg() != 1 {
			return nil, &UsageError{of: c}
		}
	default:
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *backgroundCmd) Run() error {
	bg, err := c.resolve()
	if err != nil {
		return fmt.Errorf("background %s: %w", c.source, err)
	}
	return c.editDocument(func(doc *artdoc.Document) error {
		doc.SetBackground(bg)
		if bg.Kind != document.BackgroundURL || !c.wait {
			return nil
		}
		return waitForBackground(doc, c.timeout)
	})
}

func (c *backgroundCmd) resolve() (document.Background, error) {
	switch c.source {
	case "url":
		u, err := url.Parse(c.arg)
		if err != nil || u.Scheme == "" {
			return document.Background{}, fmt.Errorf("invalid url %q", c.arg)
		}
		return document.URLBackground(fetch.ImageURL(u).String()), nil
	case "file":
		data, err := os.ReadFile(c.arg)
		if err != nil {
			return document.Background{}, err
		}
		img, err := render.Decode(data)
		if err != nil {
			return document.Background{}, fmt.Errorf("decode %s: %w", c.arg, err)
		}
		jpeg, err := render.EncodeJPEG(img)
		if err != nil {
			return document.Background{}, err
		}
		return document.ImageDataBackground(jpeg), nil
	case "clipboard":
		content, err := readClipboard()
		if err != nil {
			return document.Background{}, err
		}
		p := payloadFor(content)
		switch {
		case p.URL != nil:
			return document.URLBackground(fetch.ImageURL(p.URL).String()), nil
		case p.Image != nil:
			jpeg, err := render.EncodeJPEG(p.Image)
			if err != nil {
				return document.Background{}, err
			}
			return document.ImageDataBackground(jpeg), nil
		}
		return document.Background{}, errors.New("clipboard holds no image or url")
	default:
		return document.BlankBackground(), nil
	}
}

// waitForBackground blocks until the background fetch settles and
// reports a failed fetch as an error. The background stays set either
// way.
func waitForBackground(doc *artdoc.Document, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := doc.WaitFetch(ctx); err != nil {
		return fmt.Errorf("waiting for background: %w", err)
	}
	if st := doc.FetchStatus(); st.State == artdoc.FetchFailed {
		return fmt.Errorf("couldn't load image from %s", st.URL)
	}
	return nil
}

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/example/emojiart/internal/appstate"
	"github.com/example/emojiart/internal/clipboard"
	"github.com/example/emojiart/internal/gesture"
)

type openCmd struct {
	*root
	fs     *flag.FlagSet
	width  int
	height int
	size   int
}

func (c *openCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseOpenCmd(args []string, r *root) (*openCmd, error) {
	fs := flag.NewFlagSet("open", flag.ContinueOnError)
	c := &openCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.IntVar(&c.width, "width", 1024, "initial window width")
	fs.IntVar(&c.height, "height", 768, "initial window height")
	fs.IntVar(&c.size, "emoji-size", r.config.EmojiSize, "on-screen size of pasted emoji in pixels")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: c}
	}
	if c.size <= 0 {
		return nil, fmt.Errorf("-emoji-size must be positive")
	}
	return c, nil
}

func (c *openCmd) Run() error {
	s, err := c.openDocument(context.Background())
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer closeWithLog("document", s.Close)

	app := appstate.New(s.doc,
		appstate.WithTheme(c.activeTheme),
		appstate.WithEmojiSize(float64(c.size)),
		appstate.WithSize(c.width, c.height),
		appstate.WithTitle("EmojiArt"),
		appstate.WithPaste(pastePayload),
	)
	s.doc.Subscribe(app.NotifyChanged)
	app.Run()
	return nil
}

// pastePayload reads the clipboard as something the canvas can drop.
func pastePayload() (gesture.Payload, error) {
	content, err := readClipboard()
	if err != nil {
		return gesture.Payload{}, err
	}
	return payloadFor(content), nil
}

func payloadFor(c clipboard.Content) gesture.Payload {
	if c.Image != nil {
		return gesture.Payload{Image: c.Image}
	}
	if u := c.URL(); u != nil {
		return gesture.Payload{URL: u}
	}
	return gesture.Payload{Text: c.Text}
}

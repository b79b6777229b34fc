package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/example/emojiart/internal/artdoc"
	"github.com/example/emojiart/internal/geometry"
	"github.com/example/emojiart/internal/gesture"
)

type pasteCmd struct {
	*root
	fs   *flag.FlagSet
	size int
}

func (c *pasteCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parsePasteCmd(args []string, r *root) (*pasteCmd, error) {
	fs := flag.NewFlagSet("paste", flag.ContinueOnError)
	c := &pasteCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.IntVar(&c.size, "emoji-size", r.config.EmojiSize, "size of a pasted emoji in points")
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

// Run drops the clipboard at the centre of an unzoomed canvas, which is
// the document origin.
func (c *pasteCmd) Run() error {
	payload, err := pastePayload()
	if err != nil {
		return fmt.Errorf("paste: %w", err)
	}
	return c.editDocument(func(doc *artdoc.Document) error {
		comp := gesture.NewComposer(doc)
		comp.SetEmojiSize(float64(c.size))
		viewport := geometry.Size{W: 2, H: 2}
		centre := geometry.Point{X: 1, Y: 1}
		if !comp.Drop(payload, centre, viewport, doc) {
			return errors.New("paste: clipboard holds no image, url or emoji")
		}
		return nil
	})
}

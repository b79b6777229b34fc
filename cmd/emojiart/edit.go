package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/example/emojiart/internal/artdoc"
	"github.com/example/emojiart/internal/geometry"
	"github.com/example/emojiart/internal/gesture"
)

func parseInts(args []string, names ...string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: must be a whole number", names[i], a)
		}
		out[i] = v
	}
	return out, nil
}

// editDocument opens the document, runs fn on it and saves the result.
func (r *root) editDocument(fn func(doc *artdoc.Document) error) error {
	s, err := r.openDocument(context.Background())
	if err != nil {
		return err
	}
	if err := fn(s.doc); err != nil {
		closeWithLog("document", s.Close)
		return err
	}
	return s.Close()
}

func requireEmoji(doc *artdoc.Document, id int) error {
	if _, ok := doc.Emoji(id); !ok {
		return fmt.Errorf("no emoji with id %d", id)
	}
	return nil
}

type addCmd struct {
	*root
	fs   *flag.FlagSet
	text string
	x, y int
	size int
}

func (c *addCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseAddCmd(args []string, r *root) (*addCmd, error) {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	c := &addCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.IntVar(&c.size, "size", r.config.EmojiSize, "emoji size in points")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 3 {
		return nil, &UsageError{of: c}
	}
	if !gesture.IsEmoji(fs.Arg(0)) {
		return nil, fmt.Errorf("%q is not an emoji", fs.Arg(0))
	}
	c.text = gesture.FirstCharacter(fs.Arg(0))
	pos, err := parseInts(fs.Args()[1:], "x", "y")
	if err != nil {
		return nil, err
	}
	c.x, c.y = pos[0], pos[1]
	if c.size <= 0 {
		return nil, fmt.Errorf("-size must be positive")
	}
	return c, nil
}

func (c *addCmd) Run() error {
	return c.editDocument(func(doc *artdoc.Document) error {
		e := doc.AddEmoji(c.text, c.x, c.y, c.size)
		c.printf("%d\n", e.ID)
		return nil
	})
}

type moveCmd struct {
	*root
	fs     *flag.FlagSet
	id     int
	dx, dy int
}

func (c *moveCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseMoveCmd(args []string, r *root) (*moveCmd, error) {
	fs := flag.NewFlagSet("move", flag.ContinueOnError)
	c := &moveCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 3 {
		return nil, &UsageError{of: c}
	}
	v, err := parseInts(fs.Args(), "id", "dx", "dy")
	if err != nil {
		return nil, err
	}
	c.id, c.dx, c.dy = v[0], v[1], v[2]
	return c, nil
}

func (c *moveCmd) Run() error {
	return c.editDocument(func(doc *artdoc.Document) error {
		if err := requireEmoji(doc, c.id); err != nil {
			return err
		}
		doc.MoveEmoji(c.id, geometry.Vector{DX: float64(c.dx), DY: float64(c.dy)})
		return nil
	})
}

type scaleCmd struct {
	*root
	fs     *flag.FlagSet
	id     int
	factor float64
}

func (c *scaleCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseScaleCmd(args []string, r *root) (*scaleCmd, error) {
	fs := flag.NewFlagSet("scale", flag.ContinueOnError)
	c := &scaleCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 2 {
		return nil, &UsageError{of: c}
	}
	id, err := parseInts(fs.Args()[:1], "id")
	if err != nil {
		return nil, err
	}
	c.id = id[0]
	c.factor, err = strconv.ParseFloat(fs.Arg(1), 64)
	if err != nil || c.factor <= 0 {
		return nil, fmt.Errorf("invalid factor %q: must be a positive number", fs.Arg(1))
	}
	return c, nil
}

func (c *scaleCmd) Run() error {
	return c.editDocument(func(doc *artdoc.Document) error {
		if err := requireEmoji(doc, c.id); err != nil {
			return err
		}
		doc.ScaleEmoji(c.id, c.factor)
		return nil
	})
}

type deleteCmd struct {
	*root
	fs *flag.FlagSet
	id int
}

func (c *deleteCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseDeleteCmd(args []string, r *root) (*deleteCmd, error) {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	c := &deleteCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: c}
	}
	id, err := parseInts(fs.Args(), "id")
	if err != nil {
		return nil, err
	}
	c.id = id[0]
	return c, nil
}

func (c *deleteCmd) Run() error {
	return c.editDocument(func(doc *artdoc.Document) error {
		if err := requireEmoji(doc, c.id); err != nil {
			return err
		}
		doc.DeleteEmoji(c.id)
		return nil
	})
}

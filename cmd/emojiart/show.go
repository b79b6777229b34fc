package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
)

type showCmd struct {
	*root
	fs     *flag.FlagSet
	asJSON bool
	copy   bool
}

func (c *showCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseShowCmd(args []string, r *root) (*showCmd, error) {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	c := &showCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.BoolVar(&c.asJSON, "json", false, "print the saved document format instead of a summary")
	fs.BoolVar(&c.copy, "copy", false, "also copy the output to the clipboard")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *showCmd) Run() error {
	s, err := c.openDocument(context.Background())
	if err != nil {
		return fmt.Errorf("show: %w", err)
	}
	defer closeWithLog("document", s.Close)

	m := s.doc.Model()
	var out string
	if c.asJSON {
		data, err := m.Marshal()
		if err != nil {
			return fmt.Errorf("show: %w", err)
		}
		out = string(data) + "\n"
	} else {
		var sb strings.Builder
		fmt.Fprintf(&sb, "background: %s\n", m.Background())
		if m.Len() == 0 {
			sb.WriteString("no emoji\n")
		}
		for _, e := range m.Emojis() {
			fmt.Fprintf(&sb, "%d\t%s\tat %d,%d\tsize %d\n", e.ID, e.Text, e.X, e.Y, e.Size)
		}
		out = sb.String()
	}
	c.printf("%s", out)
	if c.copy {
		if err := writeClipboardText(out); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
	}
	return nil
}

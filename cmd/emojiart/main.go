package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/example/emojiart/internal/artdoc"
	"github.com/example/emojiart/internal/clipboard"
	"github.com/example/emojiart/internal/config"
	"github.com/example/emojiart/internal/document"
	"github.com/example/emojiart/internal/fetch"
	"github.com/example/emojiart/internal/notify"
	"github.com/example/emojiart/internal/store"
	"github.com/example/emojiart/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

// closeTimeout bounds how long an editing command waits for a background
// fetch started by Open before exiting.
const closeTimeout = 2 * time.Second

// Seams for tests.
var (
	newFetcher          = func() fetch.Fetcher { return fetch.NewURLFetcher() }
	readClipboard       = clipboard.Read
	writeClipboardText  = clipboard.WriteText
	writeClipboardImage = clipboard.WriteImage
)

type runnable interface{ Run() error }

type root struct {
	fs          *flag.FlagSet
	program     string
	stdout      io.Writer
	notifier    *notify.Notifier
	config      *config.Config
	fetchAlerts bool
	saveAlerts  bool
	storeName   string
	dataDir     string
	themeName   string
	activeTheme *theme.Theme
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}
	return newRootWithConfig(cfg, notify.New(notify.LoadPreferences()))
}

func newRootWithConfig(cfg *config.Config, n *notify.Notifier) *root {
	r := &root{
		fs:       flag.NewFlagSet("emojiart", flag.ContinueOnError),
		program:  "emojiart",
		stdout:   os.Stdout,
		notifier: n,
		config:   cfg,
	}
	r.fs.BoolVar(&r.fetchAlerts, "notify-fetch-failed", cfg.Notify.FetchFailed, "show a desktop notification when a background cannot be loaded")
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after each autosave")

	// Precedence: CLI > Env > Config > Default
	r.fs.StringVar(&r.storeName, "store", "", "document store backend (file, sqlite)")
	r.fs.StringVar(&r.dataDir, "data-dir", "", "directory holding the autosaved document")
	r.fs.StringVar(&r.themeName, "theme", "", "color theme to use (default, dark, high_contrast)")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventFetchFailed, r.fetchAlerts)
		r.notifier.Enable(notify.EventSave, r.saveAlerts)
	}
	if r.storeName != "" {
		r.config.Store = r.storeName
	}
	if r.dataDir != "" {
		r.config.DataDir = r.dataDir
	}
	if r.themeName != "" {
		r.config.Theme = r.themeName
	}
	if err := r.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	t, err := r.config.ResolveTheme(theme.NewLoader())
	if err != nil {
		if r.config.Theme != "" && r.config.Theme != "default" {
			fmt.Fprintf(os.Stderr, "warning: failed to load theme '%s': %v. using default.\n", r.config.Theme, err)
		}
		t = theme.Default()
	}
	r.activeTheme = t

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var cmd runnable
	switch cmdName {
	case "open":
		cmd, err = parseOpenCmd(subArgs, r)
	case "show":
		cmd, err = parseShowCmd(subArgs, r)
	case "background":
		cmd, err = parseBackgroundCmd(subArgs, r)
	case "add":
		cmd, err = parseAddCmd(subArgs, r)
	case "move":
		cmd, err = parseMoveCmd(subArgs, r)
	case "scale":
		cmd, err = parseScaleCmd(subArgs, r)
	case "delete":
		cmd, err = parseDeleteCmd(subArgs, r)
	case "paste":
		cmd, err = parsePasteCmd(subArgs, r)
	case "export":
		cmd, err = parseExportCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{root: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

// session is an open document together with the store backing it.
type session struct {
	doc        *artdoc.Document
	closeStore func() error
}

// openDocument loads the autosaved document. A document that cannot be
// decoded is reported and replaced by an empty one.
func (r *root) openDocument(ctx context.Context) (*session, error) {
	dir, err := r.config.ResolveDataDir()
	if err != nil {
		return nil, err
	}
	st, closeStore, err := store.Open(r.config.Store, dir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	opts := []artdoc.Option{artdoc.WithAutosaveInterval(r.config.AutosaveInterval)}
	if r.notifier != nil {
		opts = append(opts, artdoc.WithNotifier(r.notifier))
	}
	doc := artdoc.New(st, newFetcher(), opts...)
	if err := doc.Open(ctx); err != nil {
		var derr *document.DecodeError
		if !errors.As(err, &derr) {
			closeWithLog("store", closeStore)
			return nil, err
		}
		fmt.Fprintf(os.Stderr, "warning: saved document is unreadable, starting a new one: %v\n", err)
	}
	return &session{doc: doc, closeStore: closeStore}, nil
}

// Close writes pending changes and releases the store.
func (s *session) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	err := s.doc.Close(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	return errors.Join(err, s.closeStore())
}

func closeWithLog(name string, fn func() error) {
	if err := fn(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: close: %v\n", name, err)
	}
}

func (r *root) printf(format string, args ...any) {
	w := r.stdout
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, format, args...)
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
			os.Exit(2)
		}
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Package appstate hosts the EmojiArt canvas in a shiny window.
package appstate

import (
	"fmt"
	"sync"
	"time"

	"github.com/example/emojiart/internal/artdoc"
	"github.com/example/emojiart/internal/gesture"
	"github.com/example/emojiart/internal/theme"
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

// messageDuration is how long a status message stays on the canvas.
const messageDuration = 4 * time.Second

const (
	defaultWidth  = 1024
	defaultHeight = 768
)

// AppState holds the window configuration and the document it edits.
type AppState struct {
	Doc       Document
	Theme     *theme.Theme
	EmojiSize float64
	Width     int
	Height    int
	Title     string

	paste    func() (gesture.Payload, error)
	updateCh chan struct{}

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithTheme sets the colours used to draw the canvas.
func WithTheme(t *theme.Theme) Option { return func(a *AppState) { a.Theme = t } }

// WithEmojiSize sets the screen size of pasted emoji.
func WithEmojiSize(px float64) Option { return func(a *AppState) { a.EmojiSize = px } }

// WithSize sets the initial window size.
func WithSize(w, h int) Option {
	return func(a *AppState) {
		a.Width = w
		a.Height = h
	}
}

// WithTitle sets the window title.
func WithTitle(title string) Option { return func(a *AppState) { a.Title = title } }

// WithPaste sets the clipboard reader used by Ctrl+V.
func WithPaste(fn func() (gesture.Payload, error)) Option {
	return func(a *AppState) { a.paste = fn }
}

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState editing doc.
func New(doc Document, opts ...Option) *AppState {
	a := &AppState{
		Doc:       doc,
		Theme:     theme.Default(),
		EmojiSize: gesture.DefaultEmojiSize,
		Width:     defaultWidth,
		Height:    defaultHeight,
		Title:     "EmojiArt",
		updateCh:  make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(a)
	}
	if a.Width <= 0 || a.Height <= 0 {
		a.Width, a.Height = defaultWidth, defaultHeight
	}
	return a
}

// NotifyChanged requests a repaint. Calls made while one is already
// pending are coalesced.
func (a *AppState) NotifyChanged() {
	if a.updateCh == nil {
		return
	}
	select {
	case a.updateCh <- struct{}{}:
	default:
	}
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// statusTracker turns fetch status transitions into a timed message.
type statusTracker struct {
	last    artdoc.FetchStatus
	message string
	until   time.Time
}

// observe records s and reports whether a new message was raised.
func (t *statusTracker) observe(s artdoc.FetchStatus, now time.Time) bool {
	if s == t.last {
		return false
	}
	t.last = s
	if s.State != artdoc.FetchFailed {
		return false
	}
	t.message = fmt.Sprintf("Couldn't load image from %s.", s.URL)
	t.until = now.Add(messageDuration)
	return true
}

// current is the message to show at now, or "".
func (t *statusTracker) current(now time.Time) string {
	if t.message == "" || now.After(t.until) {
		return ""
	}
	return t.message
}

// dismiss hides the message early.
func (t *statusTracker) dismiss() bool {
	if t.message == "" {
		return false
	}
	t.message = ""
	return true
}

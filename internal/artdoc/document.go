// Package artdoc owns the open EmojiArt document: it applies user
// intents to the model, keeps the decoded background image in step with
// the model's background, and autosaves after a quiet period.
package artdoc

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"github.com/example/emojiart/internal/autosave"
	"github.com/example/emojiart/internal/document"
	"github.com/example/emojiart/internal/fetch"
	"github.com/example/emojiart/internal/geometry"
	"github.com/example/emojiart/internal/render"
	"github.com/example/emojiart/internal/store"
)

// DefaultAutosaveInterval is the quiet period before a save is written.
const DefaultAutosaveInterval = 5 * time.Second

// Notifier is told about events the user should see outside the canvas.
type Notifier interface {
	FetchFailed(url string)
	Saved(location string)
}

// Document is the controller for the single open document. Every intent,
// autosave callback and fetch completion runs under one owner lock, so
// the model is never mutated concurrently.
type Document struct {
	store    store.Store
	fetcher  fetch.Fetcher
	decode   func([]byte) (image.Image, error)
	logger   *log.Logger
	notifier Notifier
	clock    autosave.Clock
	interval time.Duration
	autosave *autosave.Timer

	mu        sync.Mutex
	model     *document.Model
	image     image.Image
	status    FetchStatus
	fetchDone chan struct{}
	listeners []func()

	// saveMu keeps writes sequential; it is taken before mu.
	saveMu  sync.Mutex
	fetches sync.WaitGroup
}

// Option configures a Document.
type Option func(*Document)

// WithClock drives the autosave timer from c.
func WithClock(c autosave.Clock) Option { return func(d *Document) { d.clock = c } }

// WithAutosaveInterval sets the quiet period before saving.
func WithAutosaveInterval(interval time.Duration) Option {
	return func(d *Document) { d.interval = interval }
}

// WithNotifier reports fetch failures and saves to n.
func WithNotifier(n Notifier) Option { return func(d *Document) { d.notifier = n } }

// WithLogger replaces log.Default.
func WithLogger(l *log.Logger) Option { return func(d *Document) { d.logger = l } }

// WithDecoder replaces render.Decode for background bytes.
func WithDecoder(fn func([]byte) (image.Image, error)) Option {
	return func(d *Document) { d.decode = fn }
}

// New returns a controller holding an empty document. Call Open to load
// the autosaved one.
func New(st store.Store, f fetch.Fetcher, opts ...Option) *Document {
	d := &Document{
		store:    st,
		fetcher:  f,
		decode:   render.Decode,
		logger:   log.Default(),
		interval: DefaultAutosaveInterval,
		model:    document.New(),
	}
	for _, o := range opts {
		o(d)
	}
	if d.interval <= 0 {
		d.interval = DefaultAutosaveInterval
	}
	d.autosave = autosave.New(d.clock)
	return d
}

// Open replaces the current document with the autosaved one. When nothing
// was saved the empty document is kept. When the saved bytes cannot be
// decoded the empty document is kept and the *document.DecodeError is
// returned so the caller can report it.
func (d *Document) Open(ctx context.Context) error {
	data, err := d.store.Load(ctx)
	if errors.Is(err, store.ErrNotExist) {
		return nil
	}
	if err != nil {
		d.logger.Printf("open: %v", err)
		return fmt.Errorf("load document: %w", err)
	}
	m, err := document.Unmarshal(data)
	if err != nil {
		d.logger.Printf("open: starting a new document: %v", err)
		return err
	}
	d.mu.Lock()
	d.model = m
	d.resolveBackgroundLocked()
	d.mu.Unlock()
	d.changed()
	return nil
}

// Subscribe registers fn to be called after every visible change. fn is
// called without the owner lock held.
func (d *Document) Subscribe(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, fn)
}

func (d *Document) changed() {
	d.mu.Lock()
	listeners := append([]func(){}, d.listeners...)
	d.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// apply runs mutate under the owner lock. mutate reports whether it
// changed the model; only then is an autosave scheduled, and only when
// the background changed by value is it resolved again.
func (d *Document) apply(mutate func(m *document.Model) bool) bool {
	d.mu.Lock()
	before := d.model.Background()
	if !mutate(d.model) {
		d.mu.Unlock()
		return false
	}
	if !before.Equal(d.model.Background()) {
		d.resolveBackgroundLocked()
	}
	d.autosave.Schedule(d.interval, d.save)
	d.mu.Unlock()
	d.changed()
	return true
}

// SetBackground replaces the background.
func (d *Document) SetBackground(bg document.Background) {
	d.apply(func(m *document.Model) bool {
		m.SetBackground(bg)
		return true
	})
	d.logger.Printf("background set to %v", bg)
}

// AddEmoji places a new emoji and returns it.
func (d *Document) AddEmoji(text string, x, y, size int) document.Emoji {
	var added document.Emoji
	d.apply(func(m *document.Model) bool {
		added = m.AddEmoji(text, x, y, size)
		return true
	})
	return added
}

// MoveEmoji moves the emoji by offset, truncating to whole points. A
// missing id is ignored.
func (d *Document) MoveEmoji(id int, offset geometry.Vector) {
	d.apply(func(m *document.Model) bool {
		if _, ok := m.Emoji(id); !ok {
			return false
		}
		m.MoveEmoji(id, int(offset.DX), int(offset.DY))
		return true
	})
}

// ScaleEmoji resizes the emoji by factor. A missing id is ignored.
func (d *Document) ScaleEmoji(id int, factor float64) {
	d.apply(func(m *document.Model) bool {
		if _, ok := m.Emoji(id); !ok {
			return false
		}
		m.ScaleEmoji(id, factor)
		return true
	})
}

// DeleteEmoji removes the emoji. A missing id is ignored.
func (d *Document) DeleteEmoji(id int) {
	d.apply(func(m *document.Model) bool {
		if _, ok := m.Emoji(id); !ok {
			return false
		}
		m.RemoveEmoji(id)
		return true
	})
}

// Model returns a copy of the current model.
func (d *Document) Model() *document.Model {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.model.Clone()
}

// Emojis returns the placed emoji in z-order.
func (d *Document) Emojis() []document.Emoji {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.model.Emojis()
}

// Emoji looks up one emoji by id.
func (d *Document) Emoji(id int) (document.Emoji, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.model.Emoji(id)
}

// Background returns the current background.
func (d *Document) Background() document.Background {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.model.Background()
}

// BackgroundImage returns the decoded background, or nil.
func (d *Document) BackgroundImage() image.Image {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.image
}

// Close writes any pending autosave immediately and waits for in-flight
// background fetches to finish or ctx to end.
func (d *Document) Close(ctx context.Context) error {
	d.autosave.Flush()
	done := make(chan struct{})
	go func() {
		d.fetches.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

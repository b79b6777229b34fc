package artdoc

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"log"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/example/emojiart/internal/autosave"
	"github.com/example/emojiart/internal/document"
	"github.com/example/emojiart/internal/geometry"
	"github.com/example/emojiart/internal/render"
	"github.com/example/emojiart/internal/store"
)

type memStore struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	saveErr error
}

func (s *memStore) Load(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, store.ErrNotExist
	}
	return s.data, nil
}

func (s *memStore) Save(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		err := s.saveErr
		s.saveErr = nil
		return err
	}
	s.data = append([]byte(nil), data...)
	s.saves++
	return nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

type result struct {
	data []byte
	err  error
}

// gatedFetcher blocks each fetch until the test releases a result for
// that url.
type gatedFetcher struct {
	mu    sync.Mutex
	gates map[string]chan result
	calls []string
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{gates: map[string]chan result{}}
}

func (f *gatedFetcher) gate(u string) chan result {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.gates[u]
	if !ok {
		ch = make(chan result, 1)
		f.gates[u] = ch
	}
	return ch
}

func (f *gatedFetcher) Fetch(ctx context.Context, u *url.URL) ([]byte, error) {
	ch := f.gate(u.String())
	f.mu.Lock()
	f.calls = append(f.calls, u.String())
	f.mu.Unlock()
	r := <-ch
	return r.data, r.err
}

func (f *gatedFetcher) release(u string, data []byte, err error) {
	f.gate(u) <- result{data: data, err: err}
}

func (f *gatedFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type recordingNotifier struct {
	mu     sync.Mutex
	failed []string
	saved  []string
}

func (n *recordingNotifier) FetchFailed(u string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, u)
}

func (n *recordingNotifier) Saved(loc string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.saved = append(n.saved, loc)
}

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	data, err := render.EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	return data
}

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func newTestDocument(t *testing.T, opts ...Option) (*Document, *memStore, *gatedFetcher, *autosave.ManualClock) {
	t.Helper()
	st := &memStore{}
	f := newGatedFetcher()
	clock := &autosave.ManualClock{}
	opts = append([]Option{WithClock(clock), WithLogger(quietLogger())}, opts...)
	return New(st, f, opts...), st, f, clock
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestAutosaveCoalescesRapidEdits(t *testing.T) {
	d, st, _, clock := newTestDocument(t)
	e := d.AddEmoji("😀", 0, 0, 40)
	for i := 0; i < 5; i++ {
		d.MoveEmoji(e.ID, geometry.Vector{DX: 1, DY: 1})
		clock.Advance(500 * time.Millisecond)
	}
	if n := st.count(); n != 0 {
		t.Fatalf("saved %d times during the burst", n)
	}
	clock.Advance(DefaultAutosaveInterval)
	if n := st.count(); n != 1 {
		t.Fatalf("saved %d times, want 1", n)
	}

	m, err := document.Unmarshal(st.data)
	if err != nil {
		t.Fatalf("Unmarshal saved: %v", err)
	}
	if !m.Equal(d.Model()) {
		t.Fatal("saved document differs from the open one")
	}
}

func TestAutosaveSpacedEditsEachSave(t *testing.T) {
	d, st, _, clock := newTestDocument(t)
	for i := 0; i < 3; i++ {
		d.AddEmoji("🐱", i, i, 40)
		clock.Advance(DefaultAutosaveInterval + time.Second)
	}
	if n := st.count(); n != 3 {
		t.Fatalf("saved %d times, want 3", n)
	}
}

func TestMissingIDDoesNotScheduleSave(t *testing.T) {
	d, st, _, clock := newTestDocument(t)
	d.MoveEmoji(42, geometry.Vector{DX: 3})
	d.ScaleEmoji(42, 2)
	d.DeleteEmoji(42)
	clock.Advance(time.Minute)
	if n := st.count(); n != 0 {
		t.Fatalf("saved %d times for no-op edits", n)
	}
}

func TestSaveFailureRetriedOnNextEdit(t *testing.T) {
	n := &recordingNotifier{}
	d, st, _, clock := newTestDocument(t, WithNotifier(n))
	st.saveErr = errors.New("disk full")

	d.AddEmoji("😀", 0, 0, 40)
	clock.Advance(DefaultAutosaveInterval)
	if st.count() != 0 {
		t.Fatal("failed save was counted")
	}
	d.AddEmoji("😀", 1, 1, 40)
	clock.Advance(DefaultAutosaveInterval)
	if st.count() != 1 {
		t.Fatalf("saved %d times, want 1", st.count())
	}
	if len(n.saved) != 1 {
		t.Fatalf("notified %d saves, want 1", len(n.saved))
	}
}

func TestCloseFlushesPendingSave(t *testing.T) {
	d, st, _, _ := newTestDocument(t)
	d.AddEmoji("😀", 0, 0, 40)
	if err := d.Close(waitCtx(t)); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if st.count() != 1 {
		t.Fatalf("saved %d times, want 1", st.count())
	}
}

func TestMoveTruncatesOffset(t *testing.T) {
	d, _, _, _ := newTestDocument(t)
	e := d.AddEmoji("😀", 10, 10, 40)
	d.MoveEmoji(e.ID, geometry.Vector{DX: 2.9, DY: -2.9})
	got, _ := d.Emoji(e.ID)
	if got.X != 12 || got.Y != 8 {
		t.Fatalf("moved to (%d,%d), want (12,8)", got.X, got.Y)
	}
}

func TestURLBackgroundFetchSucceeds(t *testing.T) {
	d, _, f, _ := newTestDocument(t)
	changes := 0
	var mu sync.Mutex
	d.Subscribe(func() {
		mu.Lock()
		changes++
		mu.Unlock()
	})

	d.SetBackground(document.URLBackground("https://example.com/a.png"))
	if got := d.FetchStatus().State; got != FetchFetching {
		t.Fatalf("status = %v, want fetching", got)
	}
	f.release("https://example.com/a.png", pngOf(t, 3, 2), nil)
	if err := d.WaitFetch(waitCtx(t)); err != nil {
		t.Fatalf("WaitFetch: %v", err)
	}
	if got := d.FetchStatus(); got.State != FetchIdle {
		t.Fatalf("status = %v, want idle", got)
	}
	if w, h := render.Size(d.BackgroundImage()); w != 3 || h != 2 {
		t.Fatalf("image size = %dx%d, want 3x2", w, h)
	}
	if err := d.Close(waitCtx(t)); err != nil {
		t.Fatalf("Close: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if changes < 2 {
		t.Fatalf("listeners called %d times, want at least 2", changes)
	}
}

func TestURLBackgroundFetchFails(t *testing.T) {
	n := &recordingNotifier{}
	d, _, f, _ := newTestDocument(t, WithNotifier(n))
	const u = "https://example.com/missing.png"
	d.SetBackground(document.URLBackground(u))
	f.release(u, nil, errors.New("404"))
	if err := d.WaitFetch(waitCtx(t)); err != nil {
		t.Fatalf("WaitFetch: %v", err)
	}
	if got := d.FetchStatus(); got.State != FetchFailed || got.URL != u {
		t.Fatalf("status = %+v, want failed %s", got, u)
	}
	if d.BackgroundImage() != nil {
		t.Fatal("image set after failure")
	}
	if err := d.Close(waitCtx(t)); err != nil {
		t.Fatalf("Close: %v", err)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.failed) != 1 || n.failed[0] != u {
		t.Fatalf("failure notifications = %v", n.failed)
	}

	d.SetBackground(document.BlankBackground())
	if got := d.FetchStatus().State; got != FetchIdle {
		t.Fatalf("status after blank = %v, want idle", got)
	}
}

func TestUndecodableFetchFails(t *testing.T) {
	d, _, f, _ := newTestDocument(t)
	const u = "https://example.com/not-an-image"
	d.SetBackground(document.URLBackground(u))
	f.release(u, []byte("<html>"), nil)
	if err := d.WaitFetch(waitCtx(t)); err != nil {
		t.Fatalf("WaitFetch: %v", err)
	}
	if got := d.FetchStatus(); got.State != FetchFailed {
		t.Fatalf("status = %v, want failed", got)
	}
}

func TestStaleFetchResultDiscarded(t *testing.T) {
	d, _, f, _ := newTestDocument(t)
	const a, b = "https://example.com/a.png", "https://example.com/b.png"
	d.SetBackground(document.URLBackground(a))
	d.SetBackground(document.URLBackground(b))

	f.release(b, pngOf(t, 2, 2), nil)
	if err := d.WaitFetch(waitCtx(t)); err != nil {
		t.Fatalf("WaitFetch: %v", err)
	}
	f.release(a, pngOf(t, 1, 1), nil)
	if err := d.Close(waitCtx(t)); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if w, h := render.Size(d.BackgroundImage()); w != 2 || h != 2 {
		t.Fatalf("image size = %dx%d, want the 2x2 image of b", w, h)
	}
	if got := d.FetchStatus().State; got != FetchIdle {
		t.Fatalf("status = %v, want idle", got)
	}
}

func TestStaleSuccessDoesNotEndNewerFetch(t *testing.T) {
	d, _, f, _ := newTestDocument(t)
	const a, b = "https://example.com/a.png", "https://example.com/b.png"
	d.SetBackground(document.URLBackground(a))
	d.SetBackground(document.URLBackground(b))

	f.release(a, pngOf(t, 1, 1), nil)
	f.release(b, nil, errors.New("timeout"))
	if err := d.WaitFetch(waitCtx(t)); err != nil {
		t.Fatalf("WaitFetch: %v", err)
	}
	if err := d.Close(waitCtx(t)); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := d.FetchStatus(); got.State != FetchFailed || got.URL != b {
		t.Fatalf("status = %+v, want failed %s", got, b)
	}
	if d.BackgroundImage() != nil {
		t.Fatal("stale image from a was applied")
	}
}

func TestSameBackgroundDoesNotRefetch(t *testing.T) {
	d, st, f, clock := newTestDocument(t)
	const u = "https://example.com/a.png"
	d.SetBackground(document.URLBackground(u))
	f.release(u, pngOf(t, 1, 1), nil)
	if err := d.WaitFetch(waitCtx(t)); err != nil {
		t.Fatalf("WaitFetch: %v", err)
	}
	d.SetBackground(document.URLBackground(u))
	if err := d.Close(waitCtx(t)); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if n := f.callCount(); n != 1 {
		t.Fatalf("fetched %d times, want 1", n)
	}
	if d.BackgroundImage() == nil {
		t.Fatal("image cleared by an identical background")
	}
	clock.Advance(time.Minute)
	if st.count() != 1 {
		t.Fatalf("saved %d times, want 1", st.count())
	}
}

func TestImageDataBackground(t *testing.T) {
	d, _, f, _ := newTestDocument(t)
	d.SetBackground(document.ImageDataBackground(pngOf(t, 4, 3)))
	if w, h := render.Size(d.BackgroundImage()); w != 4 || h != 3 {
		t.Fatalf("image size = %dx%d, want 4x3", w, h)
	}
	if got := d.FetchStatus().State; got != FetchIdle {
		t.Fatalf("status = %v, want idle", got)
	}

	d.SetBackground(document.ImageDataBackground([]byte("garbage")))
	if d.BackgroundImage() != nil {
		t.Fatal("undecodable image data produced an image")
	}
	if got := d.FetchStatus().State; got != FetchIdle {
		t.Fatalf("status = %v, want idle for bad image data", got)
	}
	if f.callCount() != 0 {
		t.Fatal("image data triggered a fetch")
	}
}

func TestOpenRestoresSavedDocument(t *testing.T) {
	saved := document.New()
	saved.AddEmoji("🐶", 5, 6, 30)
	saved.SetBackground(document.URLBackground("https://example.com/bg.png"))
	data, err := saved.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	d, st, f, _ := newTestDocument(t)
	st.data = data
	if err := d.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !d.Model().Equal(saved) {
		t.Fatal("opened model differs from saved one")
	}
	if got := d.FetchStatus().State; got != FetchFetching {
		t.Fatalf("status = %v, want fetching", got)
	}
	f.release("https://example.com/bg.png", pngOf(t, 1, 1), nil)
	if err := d.Close(waitCtx(t)); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if st.count() != 0 {
		t.Fatal("opening a document wrote it back")
	}
}

func TestOpenWithNothingSaved(t *testing.T) {
	d, _, _, _ := newTestDocument(t)
	if err := d.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if m := d.Model(); m.Len() != 0 || m.NextEmojiID() != 1 {
		t.Fatalf("fresh model = %d emoji, next id %d", m.Len(), m.NextEmojiID())
	}
}

func TestOpenCorruptStartsFresh(t *testing.T) {
	d, st, _, _ := newTestDocument(t)
	st.data = []byte("{not json")
	err := d.Open(context.Background())
	var de *document.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("Open error = %v, want DecodeError", err)
	}
	if d.Model().Len() != 0 {
		t.Fatal("corrupt document partially loaded")
	}
}

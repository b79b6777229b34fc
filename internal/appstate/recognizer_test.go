package appstate

import (
	"errors"
	"image"
	"testing"
	"time"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/emojiart/internal/artdoc"
	"github.com/example/emojiart/internal/document"
	"github.com/example/emojiart/internal/geometry"
	"github.com/example/emojiart/internal/gesture"
)

// fakeDoc applies intents to a real model so positions can be checked.
type fakeDoc struct {
	model  *document.Model
	img    image.Image
	status artdoc.FetchStatus
}

func newFakeDoc() *fakeDoc { return &fakeDoc{model: document.New()} }

func (d *fakeDoc) MoveEmoji(id int, offset geometry.Vector) {
	d.model.MoveEmoji(id, int(offset.DX), int(offset.DY))
}
func (d *fakeDoc) ScaleEmoji(id int, factor float64)    { d.model.ScaleEmoji(id, factor) }
func (d *fakeDoc) SetBackground(bg document.Background) { d.model.SetBackground(bg) }
func (d *fakeDoc) AddEmoji(text string, x, y, size int) document.Emoji {
	return d.model.AddEmoji(text, x, y, size)
}
func (d *fakeDoc) DeleteEmoji(id int)              { d.model.RemoveEmoji(id) }
func (d *fakeDoc) Emojis() []document.Emoji        { return d.model.Emojis() }
func (d *fakeDoc) BackgroundImage() image.Image    { return d.img }
func (d *fakeDoc) FetchStatus() artdoc.FetchStatus { return d.status }

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestRecognizer(doc *fakeDoc) (*Recognizer, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	r := NewRecognizer(doc, nil)
	r.now = clock.now
	r.Resize(200, 200)
	return r, clock
}

func ev(x, y float32, b mouse.Button, dir mouse.Direction) mouse.Event {
	return mouse.Event{X: x, Y: y, Button: b, Direction: dir}
}

func click(r *Recognizer, x, y float32) {
	r.Mouse(ev(x, y, mouse.ButtonLeft, mouse.DirPress))
	r.Mouse(ev(x, y, mouse.ButtonLeft, mouse.DirRelease))
}

func drag(r *Recognizer, x0, y0, x1, y1 float32) {
	r.Mouse(ev(x0, y0, mouse.ButtonLeft, mouse.DirPress))
	r.Mouse(ev((x0+x1)/2, (y0+y1)/2, mouse.ButtonNone, mouse.DirNone))
	r.Mouse(ev(x1, y1, mouse.ButtonNone, mouse.DirNone))
	r.Mouse(ev(x1, y1, mouse.ButtonLeft, mouse.DirRelease))
}

func TestClickTogglesSelection(t *testing.T) {
	doc := newFakeDoc()
	e := doc.AddEmoji("😀", 0, 0, 40)
	r, _ := newTestRecognizer(doc)

	click(r, 100, 100)
	if !r.Composer().IsSelected(e.ID) {
		t.Fatal("click on emoji did not select it")
	}
	click(r, 100, 100)
	if r.Composer().IsSelected(e.ID) {
		t.Fatal("second click did not deselect")
	}
}

func TestDragEmojiMovesIt(t *testing.T) {
	doc := newFakeDoc()
	e := doc.AddEmoji("😀", 0, 0, 40)
	r, _ := newTestRecognizer(doc)

	drag(r, 100, 100, 130, 90)
	got, _ := doc.model.Emoji(e.ID)
	if got.X != 30 || got.Y != -10 {
		t.Fatalf("emoji at (%d,%d), want (30,-10)", got.X, got.Y)
	}
	if r.Composer().IsSelected(e.ID) {
		t.Fatal("drag counted as a tap")
	}
}

func TestGroupDrag(t *testing.T) {
	doc := newFakeDoc()
	a := doc.AddEmoji("🐶", 0, 0, 40)
	b := doc.AddEmoji("🐱", 60, 60, 40)
	c := doc.AddEmoji("🐭", -60, -60, 40)
	r, _ := newTestRecognizer(doc)

	click(r, 100, 100)
	click(r, 160, 160)
	drag(r, 100, 100, 110, 120)

	want := map[int][2]int{a.ID: {10, 20}, b.ID: {70, 80}, c.ID: {-60, -60}}
	for id, pos := range want {
		got, _ := doc.model.Emoji(id)
		if got.X != pos[0] || got.Y != pos[1] {
			t.Errorf("emoji %d at (%d,%d), want %v", id, got.X, got.Y, pos)
		}
	}
}

func TestDragCanvasPans(t *testing.T) {
	doc := newFakeDoc()
	r, _ := newTestRecognizer(doc)
	drag(r, 10, 10, 40, 30)
	if got := r.Composer().SteadyPan(); got != (geometry.Vector{DX: 30, DY: 20}) {
		t.Fatalf("steady pan = %v, want (30,20)", got)
	}
}

func TestDoubleClickZoomsToFit(t *testing.T) {
	doc := newFakeDoc()
	doc.img = image.NewRGBA(image.Rect(0, 0, 400, 100))
	r, clock := newTestRecognizer(doc)

	click(r, 5, 5)
	clock.t = clock.t.Add(200 * time.Millisecond)
	click(r, 5, 5)
	if got := r.Composer().SteadyZoom(); got != 0.5 {
		t.Fatalf("zoom = %v, want 0.5", got)
	}

	r.Composer().PinchEnded(3)
	click(r, 5, 5)
	clock.t = clock.t.Add(time.Second)
	click(r, 5, 5)
	if got := r.Composer().SteadyZoom(); got != 1.5 {
		t.Fatalf("slow clicks zoomed to fit: zoom = %v", got)
	}
}

func TestWheelZoomsCanvasOrScalesSelection(t *testing.T) {
	doc := newFakeDoc()
	e := doc.AddEmoji("😀", 0, 0, 40)
	r, _ := newTestRecognizer(doc)

	r.Mouse(ev(0, 0, mouse.ButtonWheelUp, mouse.DirStep))
	if got := r.Composer().SteadyZoom(); got != wheelStep {
		t.Fatalf("zoom = %v, want %v", got, wheelStep)
	}
	r.Mouse(ev(0, 0, mouse.ButtonWheelDown, mouse.DirStep))

	r.Composer().TapEmoji(e.ID)
	r.Mouse(ev(0, 0, mouse.ButtonWheelUp, mouse.DirStep))
	got, _ := doc.model.Emoji(e.ID)
	if got.Size != 44 {
		t.Fatalf("selected emoji size = %d, want 44", got.Size)
	}
}

func TestDeleteKeyRemovesSelection(t *testing.T) {
	doc := newFakeDoc()
	a := doc.AddEmoji("🐶", 0, 0, 40)
	b := doc.AddEmoji("🐱", 60, 60, 40)
	r, _ := newTestRecognizer(doc)
	r.Composer().TapEmoji(a.ID)

	if !r.Key(key.Event{Code: key.CodeDeleteBackspace, Direction: key.DirPress}) {
		t.Fatal("delete did not request a repaint")
	}
	emojis := doc.Emojis()
	if len(emojis) != 1 || emojis[0].ID != b.ID {
		t.Fatalf("emojis = %v, want only %d", emojis, b.ID)
	}
	if len(r.Composer().Selected()) != 0 {
		t.Fatal("deleted id still selected")
	}
}

func TestEscapeClearsSelection(t *testing.T) {
	doc := newFakeDoc()
	e := doc.AddEmoji("🐶", 0, 0, 40)
	r, _ := newTestRecognizer(doc)
	r.Composer().TapEmoji(e.ID)
	r.Key(key.Event{Code: key.CodeEscape, Direction: key.DirPress})
	if r.Composer().IsSelected(e.ID) {
		t.Fatal("escape left the selection")
	}
}

func TestCtrlVPastesAtCursor(t *testing.T) {
	doc := newFakeDoc()
	r, _ := newTestRecognizer(doc)
	r.paste = func() (gesture.Payload, error) { return gesture.Payload{Text: "🦊"}, nil }

	r.Mouse(ev(150, 80, mouse.ButtonNone, mouse.DirNone))
	if !r.Key(key.Event{Code: key.CodeV, Modifiers: key.ModControl, Direction: key.DirPress}) {
		t.Fatal("paste not handled")
	}
	emojis := doc.Emojis()
	if len(emojis) != 1 {
		t.Fatalf("emojis = %v", emojis)
	}
	if e := emojis[0]; e.Text != "🦊" || e.X != 50 || e.Y != -20 || e.Size != gesture.DefaultEmojiSize {
		t.Fatalf("pasted %+v", e)
	}

	r.paste = func() (gesture.Payload, error) { return gesture.Payload{}, errors.New("empty") }
	if r.Key(key.Event{Code: key.CodeV, Modifiers: key.ModControl, Direction: key.DirPress}) {
		t.Fatal("failed paste requested a repaint")
	}
}

func TestBuildSceneHidesNothingAndMarksSelection(t *testing.T) {
	doc := newFakeDoc()
	doc.img = image.NewRGBA(image.Rect(0, 0, 20, 10))
	a := doc.AddEmoji("🐶", 10, 0, 40)
	doc.AddEmoji("🐱", 0, 0, 40)
	r, _ := newTestRecognizer(doc)
	r.Composer().TapEmoji(a.ID)
	doc.status = artdoc.FetchStatus{State: artdoc.FetchFetching}

	sc := r.Scene("hello")
	if !sc.Fetching || sc.Status != "hello" {
		t.Fatalf("scene flags = %v %q", sc.Fetching, sc.Status)
	}
	if len(sc.Items) != 2 || !sc.Items[0].Selected || sc.Items[1].Selected {
		t.Fatalf("items = %+v", sc.Items)
	}
	if sc.Items[0].Center != (geometry.Point{X: 110, Y: 100}) {
		t.Fatalf("first item centre = %v", sc.Items[0].Center)
	}
	if sc.BackgroundTransform.Translate != (geometry.Vector{DX: 90, DY: 95}) {
		t.Fatalf("background translate = %v", sc.BackgroundTransform.Translate)
	}
}

func TestStatusTracker(t *testing.T) {
	var st statusTracker
	now := time.Unix(0, 0)
	if st.observe(artdoc.FetchStatus{State: artdoc.FetchFetching}, now) {
		t.Fatal("fetching raised a message")
	}
	failed := artdoc.FetchStatus{State: artdoc.FetchFailed, URL: "https://x/y.png"}
	if !st.observe(failed, now) {
		t.Fatal("failure raised no message")
	}
	if st.observe(failed, now) {
		t.Fatal("same failure raised twice")
	}
	if got := st.current(now); got != "Couldn't load image from https://x/y.png." {
		t.Fatalf("message = %q", got)
	}
	if got := st.current(now.Add(messageDuration + time.Second)); got != "" {
		t.Fatalf("message after expiry = %q", got)
	}
	st.dismiss()
	if got := st.current(now); got != "" {
		t.Fatal("dismissed message still shown")
	}
}

func TestReplacePendingKeepsNewestFrame(t *testing.T) {
	ch := make(chan paintState, 1)
	replacePending(ch, paintState{width: 1})
	replacePending(ch, paintState{width: 2})
	if got := <-ch; got.width != 2 {
		t.Fatalf("queued frame width = %d, want 2", got.width)
	}
}

func TestReplacePendingWithConcurrentPainter(t *testing.T) {
	ch := make(chan paintState, 1)
	painted := make(chan struct{})
	go func() {
		for range ch {
		}
		close(painted)
	}()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10000; i++ {
			replacePending(ch, paintState{width: i})
		}
		close(ch)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("queuing a frame blocked while the painter was draining")
	}
	<-painted
}

package appstate

import (
	"image"
	"log"
	"math"
	"time"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/emojiart/internal/artdoc"
	"github.com/example/emojiart/internal/document"
	"github.com/example/emojiart/internal/geometry"
	"github.com/example/emojiart/internal/gesture"
	"github.com/example/emojiart/internal/render"
)

const (
	// doubleTapWindow is the longest gap between two canvas taps that
	// still counts as a double tap.
	doubleTapWindow = 300 * time.Millisecond
	// dragSlop is how far, in pixels, the pointer must travel before a
	// press becomes a drag instead of a tap.
	dragSlop = 3
	// wheelStep is the pinch factor of one wheel notch.
	wheelStep = 1.1
)

// Document is the part of the open document the window drives.
type Document interface {
	gesture.Intents
	gesture.Target
	DeleteEmoji(id int)
	Emojis() []document.Emoji
	BackgroundImage() image.Image
	FetchStatus() artdoc.FetchStatus
}

type press struct {
	start   geometry.Point
	emojiID int
	onEmoji bool
	moved   bool
}

// Recognizer turns raw pointer and key events into composer gestures.
// It is used from the window's event loop only.
type Recognizer struct {
	comp     *gesture.Composer
	doc      Document
	viewport geometry.Size
	cursor   geometry.Point

	press   *press
	lastTap time.Time

	now   func() time.Time
	paste func() (gesture.Payload, error)
}

// NewRecognizer returns a recognizer driving doc through a new composer.
func NewRecognizer(doc Document, paste func() (gesture.Payload, error)) *Recognizer {
	return &Recognizer{
		comp:  gesture.NewComposer(doc),
		doc:   doc,
		now:   time.Now,
		paste: paste,
	}
}

// Composer exposes the composer for rendering.
func (r *Recognizer) Composer() *gesture.Composer { return r.comp }

// Resize records the window size.
func (r *Recognizer) Resize(w, h int) {
	r.viewport = geometry.Size{W: float64(w), H: float64(h)}
}

// Viewport is the last size passed to Resize.
func (r *Recognizer) Viewport() geometry.Size { return r.viewport }

// Mouse handles one pointer event and reports whether a repaint is
// needed.
func (r *Recognizer) Mouse(e mouse.Event) bool {
	p := geometry.Point{X: float64(e.X), Y: float64(e.Y)}
	r.cursor = p

	switch e.Button {
	case mouse.ButtonWheelUp:
		r.pinchStep(wheelStep)
		return true
	case mouse.ButtonWheelDown:
		r.pinchStep(1 / wheelStep)
		return true
	}

	switch e.Direction {
	case mouse.DirPress:
		if e.Button != mouse.ButtonLeft {
			return false
		}
		id, hit := r.comp.HitTest(p, r.doc.Emojis(), r.viewport)
		r.press = &press{start: p, emojiID: id, onEmoji: hit}
		return false
	case mouse.DirNone:
		if r.press == nil {
			return false
		}
		tr := p.Sub(r.press.start)
		if !r.press.moved && math.Hypot(tr.DX, tr.DY) < dragSlop {
			return false
		}
		r.press.moved = true
		if r.press.onEmoji {
			r.comp.DragChanged(r.press.emojiID, tr)
		} else {
			r.comp.PanChanged(tr)
		}
		return true
	case mouse.DirRelease:
		if e.Button != mouse.ButtonLeft || r.press == nil {
			return false
		}
		pr := r.press
		r.press = nil
		tr := p.Sub(pr.start)
		switch {
		case pr.moved && pr.onEmoji:
			r.comp.DragEnded(pr.emojiID, tr)
		case pr.moved:
			r.comp.PanEnded(tr)
		case pr.onEmoji:
			r.comp.TapEmoji(pr.emojiID)
		default:
			r.tapCanvas()
		}
		return true
	}
	return false
}

func (r *Recognizer) pinchStep(factor float64) {
	r.comp.PinchChanged(factor)
	r.comp.PinchEnded(factor)
}

func (r *Recognizer) tapCanvas() {
	now := r.now()
	if !r.lastTap.IsZero() && now.Sub(r.lastTap) <= doubleTapWindow {
		r.lastTap = time.Time{}
		r.zoomToFit()
		return
	}
	r.lastTap = now
	r.comp.TapCanvas()
}

func (r *Recognizer) zoomToFit() {
	w, h := render.Size(r.doc.BackgroundImage())
	r.comp.DoubleTapCanvas(geometry.Size{W: float64(w), H: float64(h)}, r.viewport)
}

// Key handles one key event and reports whether a repaint is needed.
func (r *Recognizer) Key(e key.Event) bool {
	if e.Direction != key.DirPress {
		return false
	}
	ctrl := e.Modifiers&key.ModControl != 0 || e.Modifiers&key.ModMeta != 0
	switch {
	case e.Code == key.CodeDeleteBackspace || e.Code == key.CodeDeleteForward:
		for _, id := range r.comp.Selected() {
			r.doc.DeleteEmoji(id)
		}
		r.comp.Prune(r.doc.Emojis())
		return true
	case e.Code == key.CodeEscape:
		r.press = nil
		r.comp.Cancel()
		r.comp.TapCanvas()
		return true
	case ctrl && (e.Code == key.CodeV || e.Rune == 'v'):
		return r.Paste(r.cursor)
	case ctrl && (e.Code == key.Code0 || e.Rune == '0'):
		r.zoomToFit()
		return true
	case e.Rune == '+' || e.Rune == '=':
		r.pinchStep(wheelStep)
		return true
	case e.Rune == '-':
		r.pinchStep(1 / wheelStep)
		return true
	}
	return false
}

// Paste drops the clipboard contents at p.
func (r *Recognizer) Paste(p geometry.Point) bool {
	if r.paste == nil {
		return false
	}
	payload, err := r.paste()
	if err != nil {
		log.Printf("paste: %v", err)
		return false
	}
	return r.comp.Drop(payload, p, r.viewport, r.doc)
}

// Scene returns what the window should show for the current state.
func (r *Recognizer) Scene(status string) render.Scene {
	return BuildScene(r.comp, r.doc, r.viewport, status)
}

// SceneSource is what BuildScene reads from the document.
type SceneSource interface {
	Emojis() []document.Emoji
	BackgroundImage() image.Image
	FetchStatus() artdoc.FetchStatus
}

// BuildScene lays the document out for comp's pan, zoom and selection
// in a viewport of the given size.
func BuildScene(comp *gesture.Composer, doc SceneSource, viewport geometry.Size, status string) render.Scene {
	sc := render.Scene{
		Background: doc.BackgroundImage(),
		Fetching:   doc.FetchStatus().State == artdoc.FetchFetching,
		Status:     status,
	}
	if sc.Background != nil {
		w, h := render.Size(sc.Background)
		sc.BackgroundTransform = comp.BackgroundTransform(geometry.Size{W: float64(w), H: float64(h)}, viewport)
	}
	for _, e := range doc.Emojis() {
		sc.Items = append(sc.Items, render.Item{
			Emoji:    e,
			Center:   comp.ToScreen(float64(e.X), float64(e.Y), e.ID, viewport),
			Zoom:     comp.EmojiZoom(e.ID),
			Selected: comp.IsSelected(e.ID),
		})
	}
	return sc
}

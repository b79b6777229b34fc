// Package gesture turns canvas gestures into document intents and
// computes where things appear on screen while gestures are in flight.
//
// A Composer is owned by the window's event loop and is not safe for
// concurrent use.
package gesture

import (
	"sort"

	"github.com/example/emojiart/internal/document"
	"github.com/example/emojiart/internal/geometry"
)

// DefaultEmojiSize is the font size, in screen points, of a newly
// dropped emoji.
const DefaultEmojiSize = 40

// Intents receives the document changes gestures complete into.
type Intents interface {
	MoveEmoji(id int, offset geometry.Vector)
	ScaleEmoji(id int, factor float64)
}

type liveDrag struct {
	id    int
	delta geometry.Vector
}

// Composer tracks selection, steady pan and zoom, and the in-flight
// pan, drag and pinch gestures.
type Composer struct {
	intents  Intents
	selected map[int]bool

	steadyZoom float64
	steadyPan  geometry.Vector

	livePan  geometry.Vector
	liveZoom float64
	drag     *liveDrag

	emojiSize float64
}

// NewComposer returns a composer at zoom 1 with no selection.
func NewComposer(intents Intents) *Composer {
	return &Composer{
		intents:    intents,
		selected:   map[int]bool{},
		steadyZoom: 1,
		liveZoom:   1,
		emojiSize:  DefaultEmojiSize,
	}
}

// SetEmojiSize sets the screen font size of dropped emoji.
func (c *Composer) SetEmojiSize(px float64) {
	if px > 0 {
		c.emojiSize = px
	}
}

// SteadyZoom is the zoom left behind by completed gestures.
func (c *Composer) SteadyZoom() float64 { return c.steadyZoom }

// SteadyPan is the pan, in document units, left behind by completed
// gestures.
func (c *Composer) SteadyPan() geometry.Vector { return c.steadyPan }

// ZoomScale is the canvas zoom. A live pinch only affects it while
// nothing is selected.
func (c *Composer) ZoomScale() float64 {
	if len(c.selected) == 0 {
		return c.steadyZoom * c.liveZoom
	}
	return c.steadyZoom
}

// PanOffset is the canvas pan in screen units.
func (c *Composer) PanOffset() geometry.Vector {
	return c.steadyPan.Add(c.livePan).Scale(c.ZoomScale())
}

// EmojiZoom is the zoom an emoji is drawn at. Selected emoji follow a
// live pinch; unselected ones stay at the steady zoom while anything is
// selected.
func (c *Composer) EmojiZoom(id int) float64 {
	if len(c.selected) == 0 || c.selected[id] {
		return c.steadyZoom * c.liveZoom
	}
	return c.steadyZoom
}

// EmojiPanOffset is the pan applied to one emoji. It includes the live
// drag delta when the emoji is the unselected item being dragged, or
// when both it and the dragged item are selected.
func (c *Composer) EmojiPanOffset(id int) geometry.Vector {
	pan := c.steadyPan.Add(c.livePan)
	if d := c.drag; d != nil {
		switch {
		case !c.selected[id] && d.id == id:
			pan = pan.Add(d.delta)
		case c.selected[id] && c.selected[d.id]:
			pan = pan.Add(d.delta)
		}
	}
	return pan.Scale(c.ZoomScale())
}

// PanChanged records the live translation of a canvas pan.
func (c *Composer) PanChanged(translation geometry.Vector) {
	c.livePan = translation.Div(c.ZoomScale())
}

// PanEnded folds a completed canvas pan into the steady pan.
func (c *Composer) PanEnded(translation geometry.Vector) {
	c.steadyPan = c.steadyPan.Add(translation.Div(c.ZoomScale()))
	c.livePan = geometry.Vector{}
}

// DragChanged records the live translation of a drag that started on
// emoji id.
func (c *Composer) DragChanged(id int, translation geometry.Vector) {
	c.drag = &liveDrag{id: id, delta: translation.Div(c.ZoomScale())}
}

// DragEnded moves the dragged emoji, or every selected emoji when the
// dragged one is selected.
func (c *Composer) DragEnded(id int, translation geometry.Vector) {
	delta := translation.Div(c.ZoomScale())
	c.drag = nil
	if c.selected[id] {
		for _, sel := range c.Selected() {
			c.intents.MoveEmoji(sel, delta)
		}
		return
	}
	c.intents.MoveEmoji(id, delta)
}

// PinchChanged records the live scale of a pinch.
func (c *Composer) PinchChanged(scale float64) {
	c.liveZoom = scale
}

// PinchEnded folds the scale into the canvas zoom when nothing is
// selected and otherwise resizes every selected emoji.
func (c *Composer) PinchEnded(scale float64) {
	c.liveZoom = 1
	if len(c.selected) == 0 {
		c.steadyZoom *= scale
		return
	}
	for _, id := range c.Selected() {
		c.intents.ScaleEmoji(id, scale)
	}
}

// Cancel drops every in-flight gesture without applying it.
func (c *Composer) Cancel() {
	c.livePan = geometry.Vector{}
	c.liveZoom = 1
	c.drag = nil
}

// Dragging reports whether an emoji drag is in flight.
func (c *Composer) Dragging() bool { return c.drag != nil }

// TapEmoji toggles id in the selection.
func (c *Composer) TapEmoji(id int) {
	if c.selected[id] {
		delete(c.selected, id)
		return
	}
	c.selected[id] = true
}

// TapCanvas clears the selection.
func (c *Composer) TapCanvas() {
	clear(c.selected)
}

// DoubleTapCanvas zooms so an image of size img fits the viewport and
// recentres. Nothing happens without an image.
func (c *Composer) DoubleTapCanvas(img, viewport geometry.Size) {
	zoom, ok := geometry.FitZoom(img, viewport)
	if !ok {
		return
	}
	c.steadyZoom = zoom
	c.steadyPan = geometry.Vector{}
}

// IsSelected reports whether id is selected.
func (c *Composer) IsSelected(id int) bool { return c.selected[id] }

// Selected returns the selected ids in ascending order.
func (c *Composer) Selected() []int {
	ids := make([]int, 0, len(c.selected))
	for id := range c.selected {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Prune drops selected ids that are no longer in the document.
func (c *Composer) Prune(emojis []document.Emoji) {
	present := make(map[int]bool, len(emojis))
	for _, e := range emojis {
		present[e.ID] = true
	}
	for id := range c.selected {
		if !present[id] {
			delete(c.selected, id)
		}
	}
}

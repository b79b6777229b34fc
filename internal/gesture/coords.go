package gesture

import (
	"math"

	"github.com/example/emojiart/internal/document"
	"github.com/example/emojiart/internal/geometry"
)

// ToScreen maps document point (x, y) of emoji id to screen space. Pass
// id 0 for a point on the canvas itself.
func (c *Composer) ToScreen(x, y float64, id int, viewport geometry.Size) geometry.Point {
	pan := c.PanOffset()
	if id != 0 {
		pan = c.EmojiPanOffset(id)
	}
	zoom := c.ZoomScale()
	return viewport.Center().Add(geometry.Vector{DX: x * zoom, DY: y * zoom}).Add(pan)
}

// ToDocument maps a screen point to document coordinates. The vertical
// pan component enters with the opposite sign to ToScreen.
func (c *Composer) ToDocument(p geometry.Point, viewport geometry.Size) (int, int) {
	center := viewport.Center()
	pan := c.PanOffset()
	zoom := c.ZoomScale()
	return geometry.Truncate(geometry.Point{
		X: (p.X - pan.DX - center.X) / zoom,
		Y: (p.Y + pan.DY - center.Y) / zoom,
	})
}

// BackgroundTransform places an image of size img centred on the
// document origin and scaled by the canvas zoom.
func (c *Composer) BackgroundTransform(img, viewport geometry.Size) geometry.Transform {
	origin := c.ToScreen(0, 0, 0, viewport)
	zoom := c.ZoomScale()
	return geometry.Transform{
		Scale: zoom,
		Translate: geometry.Vector{
			DX: origin.X - zoom*img.W/2,
			DY: origin.Y - zoom*img.H/2,
		},
	}
}

// HitTest returns the topmost emoji whose drawn box contains p.
func (c *Composer) HitTest(p geometry.Point, emojis []document.Emoji, viewport geometry.Size) (int, bool) {
	for i := len(emojis) - 1; i >= 0; i-- {
		e := emojis[i]
		center := c.ToScreen(float64(e.X), float64(e.Y), e.ID, viewport)
		half := float64(e.Size) * c.EmojiZoom(e.ID) / 2
		if math.Abs(p.X-center.X) <= half && math.Abs(p.Y-center.Y) <= half {
			return e.ID, true
		}
	}
	return 0, false
}

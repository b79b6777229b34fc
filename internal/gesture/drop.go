package gesture

import (
	"image"
	"log"
	"net/url"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/example/emojiart/internal/document"
	"github.com/example/emojiart/internal/fetch"
	"github.com/example/emojiart/internal/geometry"
	"github.com/example/emojiart/internal/render"
)

// Payload is what a drop or paste delivers. The first non-empty field
// in the order URL, Image, Text is used.
type Payload struct {
	URL   *url.URL
	Image image.Image
	Text  string
}

// Target is the document a drop lands on.
type Target interface {
	SetBackground(bg document.Background)
	AddEmoji(text string, x, y, size int) document.Emoji
}

// Drop applies p at screen point at. A URL or image becomes the
// background; text whose first character is an emoji adds that emoji
// where it was dropped. It reports whether anything was applied.
func (c *Composer) Drop(p Payload, at geometry.Point, viewport geometry.Size, target Target) bool {
	switch {
	case p.URL != nil:
		target.SetBackground(document.URLBackground(fetch.ImageURL(p.URL).String()))
		return true
	case p.Image != nil:
		data, err := render.EncodeJPEG(p.Image)
		if err != nil {
			log.Printf("drop image: %v", err)
			return false
		}
		target.SetBackground(document.ImageDataBackground(data))
		return true
	case p.Text != "":
		first := FirstCharacter(p.Text)
		if !IsEmoji(first) {
			return false
		}
		x, y := c.ToDocument(at, viewport)
		target.AddEmoji(first, x, y, int(c.emojiSize/c.ZoomScale()))
		return true
	}
	return false
}

// FirstCharacter returns the first user-perceived character of s.
func FirstCharacter(s string) string {
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(s, -1)
	return cluster
}

// IsEmoji reports whether the first character of s is an emoji. Plain
// characters that merely have an emoji form, such as digits, count only
// when followed by a modifier or presentation selector.
func IsEmoji(s string) bool {
	cluster := FirstCharacter(s)
	if cluster == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(cluster)
	if !unicode.Is(emojiTable, r) {
		return false
	}
	return r >= 0x238d || utf8.RuneCountInString(cluster) > 1
}

var emojiTable = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x0023, Hi: 0x0023, Stride: 1},
		{Lo: 0x002a, Hi: 0x002a, Stride: 1},
		{Lo: 0x0030, Hi: 0x0039, Stride: 1},
		{Lo: 0x00a9, Hi: 0x00ae, Stride: 5},
		{Lo: 0x203c, Hi: 0x203c, Stride: 1},
		{Lo: 0x2049, Hi: 0x2049, Stride: 1},
		{Lo: 0x2122, Hi: 0x2122, Stride: 1},
		{Lo: 0x2139, Hi: 0x2139, Stride: 1},
		{Lo: 0x2194, Hi: 0x2199, Stride: 1},
		{Lo: 0x21a9, Hi: 0x21aa, Stride: 1},
		{Lo: 0x231a, Hi: 0x231b, Stride: 1},
		{Lo: 0x2328, Hi: 0x2328, Stride: 1},
		{Lo: 0x23cf, Hi: 0x23cf, Stride: 1},
		{Lo: 0x23e9, Hi: 0x23f3, Stride: 1},
		{Lo: 0x23f8, Hi: 0x23fa, Stride: 1},
		{Lo: 0x24c2, Hi: 0x24c2, Stride: 1},
		{Lo: 0x25aa, Hi: 0x25ab, Stride: 1},
		{Lo: 0x25b6, Hi: 0x25b6, Stride: 1},
		{Lo: 0x25c0, Hi: 0x25c0, Stride: 1},
		{Lo: 0x25fb, Hi: 0x25fe, Stride: 1},
		{Lo: 0x2600, Hi: 0x27bf, Stride: 1},
		{Lo: 0x2934, Hi: 0x2935, Stride: 1},
		{Lo: 0x2b05, Hi: 0x2b07, Stride: 1},
		{Lo: 0x2b1b, Hi: 0x2b1c, Stride: 1},
		{Lo: 0x2b50, Hi: 0x2b50, Stride: 1},
		{Lo: 0x2b55, Hi: 0x2b55, Stride: 1},
		{Lo: 0x3030, Hi: 0x3030, Stride: 1},
		{Lo: 0x303d, Hi: 0x303d, Stride: 1},
		{Lo: 0x3297, Hi: 0x3299, Stride: 2},
	},
	R32: []unicode.Range32{
		{Lo: 0x1f000, Hi: 0x1faff, Stride: 1},
	},
	LatinOffset: 4,
}

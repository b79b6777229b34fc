package render

import (
	"image"
	"image/draw"
	"log"
	"math"
	"sync"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/example/emojiart/internal/document"
	"github.com/example/emojiart/internal/geometry"
	"github.com/example/emojiart/internal/theme"
)

// Item is one emoji placed on screen.
type Item struct {
	Emoji    document.Emoji
	Center   geometry.Point
	Zoom     float64
	Selected bool
}

// Scene is everything needed to paint one frame of the canvas.
type Scene struct {
	Background          image.Image
	BackgroundTransform geometry.Transform
	Items               []Item
	Fetching            bool
	Status              string
}

// Compose paints s onto dst using th. While a background is being
// fetched the emoji are hidden and a progress ring is drawn instead.
func Compose(dst *image.RGBA, s Scene, th *theme.Theme) {
	if th == nil {
		th = theme.Default()
	}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(th.Canvas), image.Point{}, draw.Src)
	if s.Background != nil {
		xdraw.BiLinear.Transform(dst, s.BackgroundTransform.Aff3(), s.Background, s.Background.Bounds(), xdraw.Over, nil)
	}

	dc := gg.NewContextForRGBA(dst)
	if s.Fetching {
		drawProgress(dc, dst.Bounds(), th)
	} else {
		for _, it := range s.Items {
			drawItem(dc, it, th)
		}
	}
	if s.Status != "" {
		dc.SetFontFace(faceFor(14))
		dc.SetColor(th.Failure)
		b := dst.Bounds()
		dc.DrawStringAnchored(s.Status, float64(b.Min.X)+8, float64(b.Max.Y)-8, 0, 0)
	}
}

func drawItem(dc *gg.Context, it Item, th *theme.Theme) {
	px := float64(it.Emoji.Size) * it.Zoom
	if px < 1 {
		return
	}
	dc.SetFontFace(faceFor(px))
	dc.SetColor(th.Foreground)
	dc.DrawStringAnchored(it.Emoji.Text, it.Center.X, it.Center.Y, 0.5, 0.5)
	if !it.Selected {
		return
	}
	w, h := dc.MeasureString(it.Emoji.Text)
	dc.SetColor(th.Selection)
	dc.SetLineWidth(1)
	dc.DrawRectangle(it.Center.X-w/2, it.Center.Y-h/2, w, h)
	dc.Stroke()
}

func drawProgress(dc *gg.Context, r image.Rectangle, th *theme.Theme) {
	cx := float64(r.Min.X+r.Max.X) / 2
	cy := float64(r.Min.Y+r.Max.Y) / 2
	dc.SetColor(th.Progress)
	dc.SetLineWidth(4)
	dc.DrawArc(cx, cy, 20, 0, 1.5*math.Pi)
	dc.Stroke()
}

var (
	fontOnce  sync.Once
	fontErr   error
	goRegular *opentype.Font

	facesMu sync.Mutex
	faces   = map[int]font.Face{}
)

// faceFor returns a cached goregular face of roughly px points.
func faceFor(px float64) font.Face {
	fontOnce.Do(func() {
		goRegular, fontErr = opentype.Parse(goregular.TTF)
	})
	size := int(math.Round(px))
	if size < 1 {
		size = 1
	}
	facesMu.Lock()
	defer facesMu.Unlock()
	if face, ok := faces[size]; ok {
		return face
	}
	if fontErr != nil {
		log.Printf("parse font: %v", fontErr)
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(goRegular, &opentype.FaceOptions{Size: float64(size), DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		log.Printf("font face: %v", err)
		return basicfont.Face7x13
	}
	faces[size] = face
	return face
}

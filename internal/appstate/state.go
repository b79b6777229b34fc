package appstate

import (
	"context"
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/emojiart/internal/render"
	"github.com/example/emojiart/internal/theme"
)

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

type paintState struct {
	width, height int
	scene         render.Scene
	theme         *theme.Theme
}

// Main runs the window until it is closed.
func (a *AppState) Main(s screen.Screen) {
	width, height := a.Width, a.Height
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: a.Title})
	if err != nil {
		log.Printf("new window: %v", err)
		return
	}
	defer w.Release()
	defer a.notifyClose()

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-a.updateCh:
				w.Send(paint.Event{})
			case <-done:
				return
			}
		}
	}()

	rec := NewRecognizer(a.Doc, a.paste)
	rec.Composer().SetEmojiSize(a.EmojiSize)
	rec.Resize(width, height)
	var status statusTracker

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	defer close(paintCh)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()

	for {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				return
			}
		case size.Event:
			width, height = e.WidthPx, e.HeightPx
			rec.Resize(width, height)
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			now := time.Now()
			if status.observe(a.Doc.FetchStatus(), now) {
				time.AfterFunc(messageDuration, a.NotifyChanged)
			}
			st := paintState{
				width:  width,
				height: height,
				scene:  rec.Scene(status.current(now)),
				theme:  a.Theme,
			}
			replacePending(paintCh, st)
		case mouse.Event:
			repaint := false
			if e.Direction == mouse.DirPress {
				repaint = status.dismiss()
			}
			if rec.Mouse(e) || repaint {
				w.Send(paint.Event{})
			}
		case key.Event:
			if rec.Key(e) {
				w.Send(paint.Event{})
			}
		case error:
			log.Print(e)
		}
	}
}

// replacePending queues st, dropping a frame that is still waiting. The
// caller must be the only sender on ch.
func replacePending(ch chan paintState, st paintState) {
	select {
	case <-ch:
	default:
	}
	ch <- st
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	if st.width <= 0 || st.height <= 0 {
		return
	}
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()

	render.Compose(b.RGBA(), st.scene, st.theme)
	if ctx.Err() != nil {
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

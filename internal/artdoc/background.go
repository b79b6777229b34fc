package artdoc

import (
	"context"
	"fmt"
	"image"
	"net/url"

	"github.com/example/emojiart/internal/document"
	"github.com/example/emojiart/internal/store"
)

// FetchState is the progress of resolving the background to an image.
type FetchState int

const (
	FetchIdle FetchState = iota
	FetchFetching
	FetchFailed
)

func (s FetchState) String() string {
	switch s {
	case FetchIdle:
		return "idle"
	case FetchFetching:
		return "fetching"
	case FetchFailed:
		return "failed"
	}
	return fmt.Sprintf("FetchState(%d)", int(s))
}

// FetchStatus is the current FetchState. URL is set when State is
// FetchFailed and names the address that could not be loaded.
type FetchStatus struct {
	State FetchState
	URL   string
}

func (s FetchStatus) String() string {
	if s.State == FetchFailed {
		return "failed: " + s.URL
	}
	return s.State.String()
}

// FetchStatus returns the current fetch status.
func (d *Document) FetchStatus() FetchStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// WaitFetch blocks until no background fetch is in progress.
func (d *Document) WaitFetch(ctx context.Context) error {
	for {
		d.mu.Lock()
		if d.status.State != FetchFetching {
			d.mu.Unlock()
			return nil
		}
		done := d.fetchDone
		d.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (d *Document) setStatusLocked(s FetchStatus) {
	was := d.status.State == FetchFetching
	now := s.State == FetchFetching
	d.status = s
	switch {
	case now && !was:
		d.fetchDone = make(chan struct{})
	case was && !now:
		close(d.fetchDone)
	}
}

// resolveBackgroundLocked clears the current image and starts producing
// the image for the model's background. Blank and imageData resolve
// immediately; url starts a fetch whose result is applied only if the
// background still equals the one it was started for.
func (d *Document) resolveBackgroundLocked() {
	d.image = nil
	bg := d.model.Background()
	switch bg.Kind {
	case document.BackgroundURL:
		u, err := url.Parse(bg.URL)
		if err != nil {
			d.logger.Printf("background url %q: %v", bg.URL, err)
			d.setStatusLocked(FetchStatus{State: FetchFailed, URL: bg.URL})
			go d.notifyFetchFailed(bg.URL)
			return
		}
		d.setStatusLocked(FetchStatus{State: FetchFetching})
		d.fetches.Add(1)
		go d.fetchBackground(bg, u)
	case document.BackgroundImageData:
		img, err := d.decode(bg.Data)
		if err != nil {
			d.logger.Printf("background image data: %v", err)
		}
		d.image = img
		d.setStatusLocked(FetchStatus{State: FetchIdle})
	default:
		d.setStatusLocked(FetchStatus{State: FetchIdle})
	}
}

func (d *Document) fetchBackground(bg document.Background, u *url.URL) {
	defer d.fetches.Done()
	var img image.Image
	data, err := d.fetcher.Fetch(context.Background(), u)
	if err == nil {
		img, err = d.decode(data)
	}

	d.mu.Lock()
	if !d.model.Background().Equal(bg) {
		d.mu.Unlock()
		d.logger.Printf("discarding stale fetch of %s", bg.URL)
		return
	}
	if err != nil {
		d.logger.Printf("fetch background: %v", err)
		d.setStatusLocked(FetchStatus{State: FetchFailed, URL: bg.URL})
	} else {
		d.image = img
		d.setStatusLocked(FetchStatus{State: FetchIdle})
	}
	d.mu.Unlock()

	if err != nil {
		d.notifyFetchFailed(bg.URL)
	}
	d.changed()
}

func (d *Document) notifyFetchFailed(rawURL string) {
	if d.notifier != nil {
		d.notifier.FetchFailed(rawURL)
	}
}

// save writes the current model. Failures are logged and dropped; the
// next mutation schedules another attempt.
func (d *Document) save() {
	d.saveMu.Lock()
	defer d.saveMu.Unlock()

	d.mu.Lock()
	data, err := d.model.Marshal()
	d.mu.Unlock()
	if err != nil {
		d.logger.Printf("autosave: encode: %v", err)
		return
	}
	if err := d.store.Save(context.Background(), data); err != nil {
		d.logger.Printf("autosave: %v", err)
		return
	}
	if d.notifier == nil {
		return
	}
	location := "store"
	if l, ok := d.store.(store.Locator); ok {
		location = l.Location()
	}
	d.notifier.Saved(location)
}

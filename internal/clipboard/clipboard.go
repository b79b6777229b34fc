// Package clipboard reads pasted backgrounds and emoji from the system
// clipboard and publishes exported images to it.
package clipboard

import (
	"errors"
	"image"
	"net/url"
	"strings"

	"github.com/example/emojiart/internal/render"
)

// ErrEmpty is returned when the clipboard holds nothing of the
// requested kind.
var ErrEmpty = errors.New("clipboard is empty")

// Content is what Read found on the clipboard. Exactly one field is set.
type Content struct {
	Image image.Image
	Text  string
}

// URL returns the text as an absolute http, https or file URL, or nil
// when the text is something else.
func (c Content) URL() *url.URL {
	text := strings.TrimSpace(c.Text)
	if text == "" || strings.ContainsAny(text, " \n\t") {
		return nil
	}
	u, err := url.Parse(text)
	if err != nil {
		return nil
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return nil
		}
		return u
	case "file":
		return u
	}
	return nil
}

// Seams for tests.
var (
	readImage = ReadImage
	readText  = ReadText
)

// Read returns the clipboard image if there is one and its text
// otherwise.
func Read() (Content, error) {
	img, imgErr := readImage()
	if imgErr == nil {
		return Content{Image: img}, nil
	}
	text, textErr := readText()
	if textErr == nil {
		return Content{Text: text}, nil
	}
	if errors.Is(imgErr, ErrEmpty) && errors.Is(textErr, ErrEmpty) {
		return Content{}, ErrEmpty
	}
	return Content{}, errors.Join(imgErr, textErr)
}

func decodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	return render.Decode(data)
}

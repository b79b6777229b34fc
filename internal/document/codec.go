package document

import (
	"encoding/json"
	"errors"
	"fmt"
)

// DecodeError reports persisted bytes that do not describe a document.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode emojiart document: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type wireEmoji struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Size int    `json:"size"`
	ID   int    `json:"id"`
	Text string `json:"text"`
}

type wireModel struct {
	Background  json.RawMessage `json:"background,omitempty"`
	Emojis      []wireEmoji     `json:"emojis"`
	NextEmojiID *int            `json:"nextEmojiId,omitempty"`
}

type wireBlank struct{}

type wireBackground struct {
	Blank     *wireBlank `json:"blank,omitempty"`
	URL       *string    `json:"url,omitempty"`
	ImageData *[]byte    `json:"imageData,omitempty"`
}

// Marshal encodes m in the persisted format. Image data is embedded as
// base64.
func (m *Model) Marshal() ([]byte, error) {
	var bg wireBackground
	switch m.background.Kind {
	case BackgroundURL:
		u := m.background.URL
		bg.URL = &u
	case BackgroundImageData:
		data := m.background.Data
		if data == nil {
			data = []byte{}
		}
		bg.ImageData = &data
	default:
		bg.Blank = &wireBlank{}
	}
	rawBG, err := json.Marshal(bg)
	if err != nil {
		return nil, fmt.Errorf("encode background: %w", err)
	}
	next := m.nextEmojiID
	w := wireModel{
		Background:  rawBG,
		Emojis:      make([]wireEmoji, 0, len(m.emojis)),
		NextEmojiID: &next,
	}
	for _, e := range m.emojis {
		w.Emojis = append(w.Emojis, wireEmoji{X: e.X, Y: e.Y, Size: e.Size, ID: e.ID, Text: e.Text})
	}
	return json.Marshal(w)
}

// Unmarshal decodes a document produced by Marshal. Unknown fields are
// ignored and a missing background decodes as blank. Any structural
// problem is reported as a *DecodeError.
func Unmarshal(data []byte) (*Model, error) {
	var w wireModel
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, &DecodeError{Err: err}
	}
	bg, err := decodeBackground(w.Background)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	m := New()
	m.background = bg
	maxID := 0
	for _, we := range w.Emojis {
		if _, dup := m.index[we.ID]; dup {
			return nil, &DecodeError{Err: fmt.Errorf("duplicate emoji id %d", we.ID)}
		}
		m.index[we.ID] = len(m.emojis)
		m.emojis = append(m.emojis, Emoji{ID: we.ID, Text: we.Text, X: we.X, Y: we.Y, Size: we.Size})
		if we.ID > maxID {
			maxID = we.ID
		}
	}
	m.nextEmojiID = maxID + 1
	if w.NextEmojiID != nil && *w.NextEmojiID > m.nextEmojiID {
		m.nextEmojiID = *w.NextEmojiID
	}
	return m, nil
}

func decodeBackground(raw json.RawMessage) (Background, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return BlankBackground(), nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Background{}, fmt.Errorf("background: %w", err)
	}
	if len(fields) == 0 {
		return BlankBackground(), nil
	}
	var bg wireBackground
	if err := json.Unmarshal(raw, &bg); err != nil {
		return Background{}, fmt.Errorf("background: %w", err)
	}
	variants := 0
	out := BlankBackground()
	if bg.Blank != nil {
		variants++
	}
	if bg.URL != nil {
		out = URLBackground(*bg.URL)
		variants++
	}
	if bg.ImageData != nil {
		out = ImageDataBackground(*bg.ImageData)
		variants++
	}
	switch variants {
	case 0:
		return Background{}, errors.New("background has no known variant")
	case 1:
		return out, nil
	default:
		return Background{}, errors.New("background names more than one variant")
	}
}

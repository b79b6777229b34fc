// Package document defines the EmojiArt model: a background and an
// ordered set of placed emoji, plus its persisted JSON form.
package document

import (
	"bytes"
	"fmt"
	"math"
	"strings"
)

// Emoji is a sticker placed on the canvas. Identity is ID.
type Emoji struct {
	ID   int
	Text string
	X    int
	Y    int
	Size int
}

// BackgroundKind tags the variant held by a Background.
type BackgroundKind int

const (
	BackgroundBlank BackgroundKind = iota
	BackgroundURL
	BackgroundImageData
)

func (k BackgroundKind) String() string {
	switch k {
	case BackgroundBlank:
		return "blank"
	case BackgroundURL:
		return "url"
	case BackgroundImageData:
		return "imageData"
	default:
		return fmt.Sprintf("BackgroundKind(%d)", int(k))
	}
}

// Background is the full-canvas image source. Only the field matching
// Kind is meaningful.
type Background struct {
	Kind BackgroundKind
	URL  string
	Data []byte
}

// BlankBackground returns the empty background.
func BlankBackground() Background { return Background{Kind: BackgroundBlank} }

// URLBackground returns a background fetched from u. Invalid UTF-8 in u
// is replaced with U+FFFD.
func URLBackground(u string) Background {
	return Background{Kind: BackgroundURL, URL: strings.ToValidUTF8(u, "\uFFFD")}
}

// ImageDataBackground returns a background decoded from data.
func ImageDataBackground(data []byte) Background {
	return Background{Kind: BackgroundImageData, Data: data}
}

// Equal compares by value.
func (b Background) Equal(o Background) bool {
	if b.Kind != o.Kind {
		return false
	}
	switch b.Kind {
	case BackgroundURL:
		return b.URL == o.URL
	case BackgroundImageData:
		return bytes.Equal(b.Data, o.Data)
	default:
		return true
	}
}

func (b Background) clone() Background {
	if b.Data != nil {
		b.Data = append([]byte(nil), b.Data...)
	}
	return b
}

func (b Background) String() string {
	switch b.Kind {
	case BackgroundURL:
		return "url(" + b.URL + ")"
	case BackgroundImageData:
		return fmt.Sprintf("imageData(%d bytes)", len(b.Data))
	default:
		return b.Kind.String()
	}
}

// Model is the aggregate root of a document. The zero value is not
// usable; call New or Unmarshal.
//
// nextEmojiID is always greater than any id the instance has handed out,
// so ids are never reused after a removal.
type Model struct {
	background  Background
	emojis      []Emoji
	index       map[int]int
	nextEmojiID int
}

// New returns an empty document with a blank background.
func New() *Model {
	return &Model{
		background:  BlankBackground(),
		index:       make(map[int]int),
		nextEmojiID: 1,
	}
}

// Background returns the current background.
func (m *Model) Background() Background { return m.background }

// SetBackground replaces the background.
func (m *Model) SetBackground(bg Background) { m.background = bg }

// NextEmojiID is the id the next AddEmoji call will assign.
func (m *Model) NextEmojiID() int { return m.nextEmojiID }

// Len returns the number of placed emoji.
func (m *Model) Len() int { return len(m.emojis) }

// Emojis returns the emoji in z-order.
func (m *Model) Emojis() []Emoji {
	out := make([]Emoji, len(m.emojis))
	copy(out, m.emojis)
	return out
}

// Emoji looks up an emoji by id.
func (m *Model) Emoji(id int) (Emoji, bool) {
	i, ok := m.index[id]
	if !ok {
		return Emoji{}, false
	}
	return m.emojis[i], true
}

// AddEmoji appends a new emoji on top of the others and returns it.
// Invalid UTF-8 in text is replaced with U+FFFD.
func (m *Model) AddEmoji(text string, x, y, size int) Emoji {
	e := Emoji{ID: m.nextEmojiID, Text: strings.ToValidUTF8(text, "\uFFFD"), X: x, Y: y, Size: size}
	m.nextEmojiID++
	m.index[e.ID] = len(m.emojis)
	m.emojis = append(m.emojis, e)
	return e
}

// MoveEmoji offsets the emoji with the given id. Unknown ids are ignored.
func (m *Model) MoveEmoji(id, dx, dy int) {
	i, ok := m.index[id]
	if !ok {
		return
	}
	m.emojis[i].X += dx
	m.emojis[i].Y += dy
}

// ScaleEmoji multiplies the size of the emoji by factor, rounding half
// away from zero. Unknown ids are ignored.
func (m *Model) ScaleEmoji(id int, factor float64) {
	i, ok := m.index[id]
	if !ok {
		return
	}
	m.emojis[i].Size = int(math.Round(float64(m.emojis[i].Size) * factor))
}

// RemoveEmoji deletes the emoji with the given id. Unknown ids are ignored.
func (m *Model) RemoveEmoji(id int) {
	i, ok := m.index[id]
	if !ok {
		return
	}
	m.emojis = append(m.emojis[:i], m.emojis[i+1:]...)
	delete(m.index, id)
	for j := i; j < len(m.emojis); j++ {
		m.index[m.emojis[j].ID] = j
	}
}

// Clone returns a deep copy.
func (m *Model) Clone() *Model {
	c := &Model{
		background:  m.background.clone(),
		emojis:      make([]Emoji, len(m.emojis)),
		index:       make(map[int]int, len(m.index)),
		nextEmojiID: m.nextEmojiID,
	}
	copy(c.emojis, m.emojis)
	for id, i := range m.index {
		c.index[id] = i
	}
	return c
}

// Equal reports whether both models hold the same background, the same
// emoji in the same order and the same id counter.
func (m *Model) Equal(o *Model) bool {
	if m == nil || o == nil {
		return m == o
	}
	if !m.background.Equal(o.background) || m.nextEmojiID != o.nextEmojiID {
		return false
	}
	if len(m.emojis) != len(o.emojis) {
		return false
	}
	for i := range m.emojis {
		if m.emojis[i] != o.emojis[i] {
			return false
		}
	}
	return true
}

package document

import (
	"strings"
	"testing"
)

func roundTrip(t *testing.T, m *Model) *Model {
	t.Helper()
	data, err := m.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	out, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v\n%s", err, data)
	}
	return out
}

func TestRoundTripBackgrounds(t *testing.T) {
	for _, bg := range []Background{
		BlankBackground(),
		URLBackground("https://example.com/cat.jpg?size=large"),
		ImageDataBackground([]byte{0x89, 'P', 'N', 'G', 0, 1, 2, 255}),
		ImageDataBackground([]byte{}),
	} {
		m := New()
		m.SetBackground(bg)
		m.AddEmoji("🌲", -4, 7, 40)
		if got := roundTrip(t, m); !got.Equal(m) {
			t.Errorf("round trip of %v changed the model", bg)
		}
	}
}

func TestRoundTripKeepsCounterAfterRemoval(t *testing.T) {
	m := New()
	m.AddEmoji("a", 0, 0, 1)
	b := m.AddEmoji("b", 0, 0, 1)
	m.RemoveEmoji(b.ID)

	got := roundTrip(t, m)
	if !got.Equal(m) {
		t.Fatal("round trip changed the model")
	}
	if next := got.AddEmoji("c", 0, 0, 1); next.ID <= b.ID {
		t.Fatalf("id %d reused after reload", next.ID)
	}
}

func TestTwoEmojiScenario(t *testing.T) {
	m := New()
	first := m.AddEmoji("😀", 0, 0, 30)
	second := m.AddEmoji("😎", 10, 10, 20)

	got := roundTrip(t, m).Emojis()
	want := []Emoji{first, second}
	if len(got) != len(want) {
		t.Fatalf("got %d emojis, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("emoji %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestUnmarshalTolerantInput(t *testing.T) {
	m, err := Unmarshal([]byte(`{"emojis": [{"x": 1, "y": 2, "size": 3, "id": 7, "text": "⭐", "rotation": 90}], "extra": true}`))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if m.Background().Kind != BackgroundBlank {
		t.Errorf("missing background decoded as %v", m.Background())
	}
	if m.NextEmojiID() != 8 {
		t.Errorf("NextEmojiID = %d, want 8", m.NextEmojiID())
	}

	m, err = Unmarshal([]byte(`{"background": {}, "emojis": []}`))
	if err != nil {
		t.Fatalf("Unmarshal empty background: %v", err)
	}
	if m.Background().Kind != BackgroundBlank {
		t.Errorf("empty background decoded as %v", m.Background())
	}
}

func TestMarshalEmbedsImageDataAsBase64(t *testing.T) {
	m := New()
	m.SetBackground(ImageDataBackground([]byte("hello")))
	data, err := m.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"imageData":"aGVsbG8="`) {
		t.Fatalf("image data not embedded as base64: %s", data)
	}
}

func TestRoundTripUnparseableURLs(t *testing.T) {
	for _, raw := range []string{
		"http://example.com/a%zz.png",
		"not a url%",
		"http://[::1",
	} {
		m := New()
		m.SetBackground(URLBackground(raw))
		m.AddEmoji("🐙", 1, 2, 30)
		got := roundTrip(t, m)
		if !got.Equal(m) {
			t.Errorf("round trip of url(%s) changed the model", raw)
		}
		if got.Len() != 1 {
			t.Errorf("url(%s): emojis lost in round trip", raw)
		}
	}
}

func TestRoundTripInvalidUTF8(t *testing.T) {
	m := New()
	m.AddEmoji("\xff", 0, 0, 40)
	m.SetBackground(URLBackground("http://example.com/\xfe.png"))
	if e, _ := m.Emoji(1); e.Text != "�" {
		t.Fatalf("text = %q, want U+FFFD", e.Text)
	}
	if got := roundTrip(t, m); !got.Equal(m) {
		t.Fatal("round trip changed a model built from invalid UTF-8")
	}
}

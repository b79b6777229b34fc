//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/example/emojiart/internal/render"
)

var (
	initOnce     sync.Once
	initErr      error
	errNoDisplay = errors.New("clipboard initialization requires DISPLAY")
	x11          *selectionOwner
)

func ensureInit() error {
	initOnce.Do(func() {
		if os.Getenv("DISPLAY") == "" {
			initErr = errNoDisplay
			return
		}
		x11, initErr = newSelectionOwner()
	})
	return initErr
}

// Targets tried in order when reading.
var (
	imageTargets = []string{"image/png", "image/jpeg", "image/gif", "image/bmp"}
	textTargets  = []string{"UTF8_STRING", "text/plain;charset=utf-8", "STRING"}
)

// WriteImage publishes img to the clipboard as PNG.
func WriteImage(img image.Image) error {
	if err := ensureInit(); err != nil {
		return err
	}
	data, err := render.EncodePNG(img)
	if err != nil {
		return err
	}
	return x11.own(map[string][]byte{"image/png": data})
}

// ReadImage decodes the first image format the clipboard owner offers.
func ReadImage() (image.Image, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	data, err := x11.readAny(imageTargets)
	if err != nil {
		return nil, err
	}
	return decodeImage(data)
}

// WriteText puts text on the clipboard.
func WriteText(text string) error {
	if err := ensureInit(); err != nil {
		return err
	}
	data := []byte(text)
	return x11.own(map[string][]byte{
		"UTF8_STRING":              data,
		"text/plain;charset=utf-8": data,
		"STRING":                   data,
	})
}

// ReadText returns the text on the clipboard.
func ReadText() (string, error) {
	if err := ensureInit(); err != nil {
		return "", err
	}
	data, err := x11.readAny(textTargets)
	if err != nil {
		return "", err
	}
	// Some STRING owners include a trailing NUL.
	if n := len(data); n > 0 && data[n-1] == 0 {
		data = data[:n-1]
	}
	return string(data), nil
}

// selectionOwner holds a hidden window that owns CLIPBOARD while we have
// published data, and converts selections for reads.
type selectionOwner struct {
	conn   *xgb.Conn
	window xproto.Window

	atomMu sync.Mutex
	atoms  map[string]xproto.Atom
	names  map[xproto.Atom]string

	mu    sync.RWMutex
	owned map[string][]byte
}

func newSelectionOwner() (*selectionOwner, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	window, err := hiddenWindow(conn, xproto.EventMaskPropertyChange|xproto.EventMaskStructureNotify)
	if err != nil {
		conn.Close()
		return nil, err
	}
	s := &selectionOwner{
		conn:   conn,
		window: window,
		atoms:  map[string]xproto.Atom{"STRING": xproto.AtomString, "ATOM": xproto.AtomAtom},
		names:  map[xproto.Atom]string{xproto.AtomString: "STRING", xproto.AtomAtom: "ATOM"},
	}
	go s.serve()
	return s, nil
}

func hiddenWindow(conn *xgb.Conn, mask uint32) (xproto.Window, error) {
	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}
	err = xproto.CreateWindowChecked(conn, screen.RootDepth, window, screen.Root,
		0, 0, 1, 1, 0, xproto.WindowClassInputOutput, screen.RootVisual,
		xproto.CwEventMask, []uint32{mask}).Check()
	return window, err
}

// atom interns name on conn, caching results from the owner connection.
func (s *selectionOwner) atom(name string) (xproto.Atom, error) {
	s.atomMu.Lock()
	defer s.atomMu.Unlock()
	if a, ok := s.atoms[name]; ok {
		return a, nil
	}
	reply, err := xproto.InternAtom(s.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("intern %s: %w", name, err)
	}
	s.atoms[name] = reply.Atom
	s.names[reply.Atom] = name
	return reply.Atom, nil
}

func (s *selectionOwner) atomName(a xproto.Atom) string {
	s.atomMu.Lock()
	defer s.atomMu.Unlock()
	return s.names[a]
}

func (s *selectionOwner) own(data map[string][]byte) error {
	for name := range data {
		if _, err := s.atom(name); err != nil {
			return err
		}
	}
	clip, err := s.atom("CLIPBOARD")
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.owned = data
	s.mu.Unlock()
	return xproto.SetSelectionOwnerChecked(s.conn, s.window, clip, xproto.TimeCurrentTime).Check()
}

func (s *selectionOwner) serve() {
	for {
		ev, err := s.conn.WaitForEvent()
		if err != nil {
			return
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			s.answer(e)
		case xproto.SelectionClearEvent:
			s.mu.Lock()
			s.owned = nil
			s.mu.Unlock()
		}
	}
}

// answer replies to another client's conversion request from the data we
// published, or refuses it.
func (s *selectionOwner) answer(e xproto.SelectionRequestEvent) {
	property := e.Property
	if property == xproto.AtomNone {
		property = e.Target
	}
	s.mu.RLock()
	owned := s.owned
	s.mu.RUnlock()

	target := s.atomName(e.Target)
	switch {
	case target == "TARGETS":
		offered := []xproto.Atom{e.Target}
		for name := range owned {
			if a, err := s.atom(name); err == nil {
				offered = append(offered, a)
			}
		}
		buf := make([]byte, 4*len(offered))
		for i, a := range offered {
			xgb.Put32(buf[4*i:], uint32(a))
		}
		xproto.ChangeProperty(s.conn, xproto.PropModeReplace, e.Requestor, property,
			xproto.AtomAtom, 32, uint32(len(offered)), buf)
	case owned[target] != nil:
		data := owned[target]
		xproto.ChangeProperty(s.conn, xproto.PropModeReplace, e.Requestor, property,
			e.Target, 8, uint32(len(data)), data)
	default:
		property = xproto.AtomNone
	}

	reply := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  property,
	}
	xproto.SendEvent(s.conn, false, e.Requestor, 0, string(reply.Bytes()))
}

// readAny returns the selection converted to the first target that the
// owner can supply.
func (s *selectionOwner) readAny(targets []string) ([]byte, error) {
	s.mu.RLock()
	for _, t := range targets {
		if data, ok := s.owned[t]; ok {
			s.mu.RUnlock()
			return append([]byte(nil), data...), nil
		}
	}
	s.mu.RUnlock()

	var lastErr error = ErrEmpty
	for _, t := range targets {
		data, err := s.convert(t)
		if err == nil && len(data) > 0 {
			return data, nil
		}
		if err != nil && !errors.Is(err, ErrEmpty) {
			lastErr = err
		}
	}
	return nil, lastErr
}

// convert asks the current owner for the selection as target, using a
// fresh connection so replies do not race the serve loop.
func (s *selectionOwner) convert(target string) ([]byte, error) {
	clip, err := s.atom("CLIPBOARD")
	if err != nil {
		return nil, err
	}
	want, err := s.atom(target)
	if err != nil {
		return nil, err
	}
	prop, err := s.atom("EMOJIART_PASTE")
	if err != nil {
		return nil, err
	}

	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	window, err := hiddenWindow(conn, xproto.EventMaskPropertyChange)
	if err != nil {
		return nil, err
	}
	defer xproto.DestroyWindow(conn, window)

	if err := xproto.ConvertSelectionChecked(conn, window, clip, want, prop, xproto.TimeCurrentTime).Check(); err != nil {
		return nil, err
	}
	for {
		ev, xerr := conn.WaitForEvent()
		if xerr != nil {
			return nil, xerr
		}
		notify, ok := ev.(xproto.SelectionNotifyEvent)
		if !ok {
			continue
		}
		if notify.Property == xproto.AtomNone {
			return nil, ErrEmpty
		}
		reply, err := xproto.GetProperty(conn, true, window, notify.Property,
			xproto.GetPropertyTypeAny, 0, (1<<31)-1).Reply()
		if err != nil {
			return nil, err
		}
		return append([]byte(nil), reply.Value...), nil
	}
}

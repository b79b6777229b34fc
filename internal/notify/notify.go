// Package notify sends desktop notifications for document events the
// user might otherwise miss, such as a background that failed to load.
package notify

import (
	"fmt"
	"log"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/example/emojiart/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventFetchFailed emits a notification when a background URL cannot
	// be loaded.
	EventFetchFailed Event = "fetch_failed"
	// EventSave emits a notification when the document is autosaved.
	EventSave Event = "save"
)

// EventPreference describes formatting for a notification event.
type EventPreference struct {
	Template string
}

// Preferences describes notification behaviour loaded from configuration.
type Preferences struct {
	Title  string
	Events map[Event]EventPreference
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: platform.AppName,
		Events: map[Event]EventPreference{
			EventFetchFailed: {Template: "Couldn't load image from %s."},
			EventSave:        {Template: "Saved to %s"},
		},
	}
}

type envPreferences struct {
	Title           string `envconfig:"NOTIFY_TITLE"`
	FetchFailedText string `envconfig:"NOTIFY_FETCH_FAILED_TEXT"`
	SaveText        string `envconfig:"NOTIFY_SAVE_TEXT"`
}

// LoadPreferences reads EMOJIART_NOTIFY_* environment variables over the
// defaults.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	var env envPreferences
	if err := envconfig.Process("EMOJIART", &env); err != nil {
		log.Printf("notification preferences: %v", err)
		return prefs
	}
	if v := strings.TrimSpace(env.Title); v != "" {
		prefs.Title = v
	}
	apply := func(v string, event Event) {
		if v = strings.TrimSpace(v); v != "" {
			prefs.Events[event] = EventPreference{Template: v}
		}
	}
	apply(env.FetchFailedText, EventFetchFailed)
	apply(env.SaveText, EventSave)
	return prefs
}

// send is replaced in tests.
var send = platform.Notify

// Notifier sends OS-level notifications based on the configured preferences.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
}

// New creates a new Notifier using the provided preferences.
func New(prefs Preferences) *Notifier {
	cloned := Preferences{Title: prefs.Title, Events: make(map[Event]EventPreference, len(prefs.Events))}
	for k, v := range prefs.Events {
		cloned.Events[k] = v
	}
	return &Notifier{prefs: cloned, enabled: make(map[Event]bool)}
}

// Enable toggles the notifier for the provided event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	if n.enabled == nil {
		n.enabled = make(map[Event]bool)
	}
	n.enabled[event] = enabled
}

// FetchFailed reports a background that could not be loaded.
func (n *Notifier) FetchFailed(url string) {
	n.dispatch(EventFetchFailed, url, platform.Options{Urgent: true})
}

// Saved reports a completed autosave.
func (n *Notifier) Saved(location string) {
	n.dispatch(EventSave, location, platform.Options{})
}

func (n *Notifier) enabledFor(event Event) bool {
	if n == nil || n.enabled == nil {
		return false
	}
	return n.enabled[event]
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	if !n.enabledFor(event) {
		return
	}
	template := strings.TrimSpace(n.prefs.Events[event].Template)
	if template == "" {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(template, strings.TrimSpace(detail)))
	if body == "" {
		return
	}
	if err := send(n.prefs.Title, body, opts); err != nil {
		log.Printf("notification %s: %v", event, err)
	}
}

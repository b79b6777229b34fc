package platform

// AppName is the application name reported to the notification center.
const AppName = "EmojiArt"

// Options configures how a notification is displayed on the host platform.
type Options struct {
	// Urgent asks the notification center to keep the notification visible
	// until dismissed, where supported.
	Urgent bool
}

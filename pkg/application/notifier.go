// Package application orchestrates the scheduling core: completion flows
// with their guard prompts, crew assignment, and date/duration edits.
package application

// Level classifies a user-facing notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a toast-equivalent message surfaced to the user.
type Notification struct {
	Level   Level
	Message string
}

// Notifier is the user-notification collaborator. Implementations render to
// the terminal, a toast layer, or nothing at all.
type Notifier interface {
	Notify(n Notification)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(Notification) {}

func notify(n Notifier, level Level, message string) {
	if n != nil {
		n.Notify(Notification{Level: level, Message: message})
	}
}

// Package notify posts desktop notifications over D-Bus.
package notify

const appName = "ripple"

// Urgency is the freedesktop notification priority.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// Notification contains data for a desktop notification.
type Notification struct {
	Title      string  // summary, required
	Body       string  // supports basic markup
	Icon       string  // image path or icon name
	Timeout    int32   // ms, -1 = server default, 0 = never expire
	ReplacesID uint32  // 0 = new notification
	Urgency    Urgency
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify sends a notification and returns its ID, or 0 when
	// notifications are unavailable.
	Notify(n Notification) (uint32, error)
	Close(id uint32) error
}

// stubNotifier is used when no notification daemon can be reached.
type stubNotifier struct{}

func (stubNotifier) Notify(Notification) (uint32, error) { return 0, nil }

func (stubNotifier) Close(uint32) error { return nil }

package model

import "time"

// NotificationLevel controls how a notification is styled.
type NotificationLevel int

const (
	NotifyInfo NotificationLevel = iota
	NotifySuccess
	NotifyError
)

// Notification is a transient message surfaced in the status bar.
type Notification struct {
	// ID distinguishes notifications so an expiry tick only clears the
	// one it was scheduled for.
	ID int

	Level   NotificationLevel
	Message string

	// CreatedAt is when this notification was raised.
	CreatedAt time.Time
}

package core

import "time"

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
)

const (
	InboxKindNotification = "notification"
	InboxKindHaptic       = "haptic"
)

type (
	// Severity selects the haptic feedback pattern.
	Severity string

	// NotificationHandle identifies a scheduled notification so it can be cancelled.
	NotificationHandle string

	// Notification is a request to show a local notification. A nil FireAt
	// means deliver immediately.
	Notification struct {
		Title  string     `json:"title"`
		Body   string     `json:"body"`
		FireAt *time.Time `json:"fireAt,omitempty"`
	}

	// InboxItem is a persisted notification or haptic request waiting for a
	// device to pick it up.
	InboxItem struct {
		Handle    NotificationHandle `json:"handle"`
		Kind      string             `json:"kind"`
		Title     string             `json:"title,omitempty"`
		Body      string             `json:"body,omitempty"`
		Severity  Severity           `json:"severity,omitempty"`
		FireAt    *time.Time         `json:"fireAt,omitempty"`
		CreatedAt time.Time          `json:"createdAt"`
		Cancelled bool               `json:"cancelled"`
	}
)

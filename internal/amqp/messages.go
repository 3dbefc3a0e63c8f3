package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"hustleledger/internal/core"
)

// MessageKind selects what a NotificationMessage asks the device side to do.
type MessageKind string

const (
	KindNotification MessageKind = "notification"
	KindHaptic       MessageKind = "haptic"
	KindCancel       MessageKind = "cancel"
)

// NotificationMessage carries one haptic, notification or cancellation
// request from the ledger to the notify worker.
type NotificationMessage struct {
	Kind      MessageKind   `json:"kind"`
	Handle    string        `json:"handle"`
	Title     string        `json:"title,omitempty"`
	Body      string        `json:"body,omitempty"`
	Severity  core.Severity `json:"severity,omitempty"`
	FireAt    *time.Time    `json:"fireAt,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

func NewNotificationMessage(handle core.NotificationHandle, n core.Notification) *NotificationMessage {
	return &NotificationMessage{
		Kind:      KindNotification,
		Handle:    string(handle),
		Title:     n.Title,
		Body:      n.Body,
		FireAt:    n.FireAt,
		Timestamp: time.Now(),
	}
}

func NewHapticMessage(handle core.NotificationHandle, severity core.Severity) *NotificationMessage {
	return &NotificationMessage{
		Kind:      KindHaptic,
		Handle:    string(handle),
		Severity:  severity,
		Timestamp: time.Now(),
	}
}

func NewCancelMessage(handle core.NotificationHandle) *NotificationMessage {
	return &NotificationMessage{
		Kind:      KindCancel,
		Handle:    string(handle),
		Timestamp: time.Now(),
	}
}

// Notification returns the notification payload of the message.
func (m *NotificationMessage) Notification() core.Notification {
	return core.Notification{Title: m.Title, Body: m.Body, FireAt: m.FireAt}
}

func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// NotificationMessageFromJSON decodes and validates a message.
func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Kind {
	case KindNotification, KindHaptic, KindCancel:
	default:
		return nil, fmt.Errorf("unknown message kind %q", msg.Kind)
	}
	if msg.Handle == "" {
		return nil, fmt.Errorf("message without handle")
	}
	return &msg, nil
}

// Package worker holds the long-running loops behind the worker binaries.
package worker

import (
	"context"
	"errors"
	"fmt"

	"hustleledger/internal/amqp"
	"hustleledger/internal/core"
	"hustleledger/internal/log"
)

// Deliverer stores notifications that arrive with their handle already set.
type Deliverer interface {
	Deliver(ctx context.Context, h core.NotificationHandle, n core.Notification) (core.NotificationHandle, error)
	DeliverHaptic(ctx context.Context, h core.NotificationHandle, severity core.Severity) error
	Cancel(ctx context.Context, h core.NotificationHandle) error
}

// NotifyWorker moves notification messages from the broker into the inbox.
type NotifyWorker struct {
	inbox  Deliverer
	logger *log.Logger
}

func NewNotifyWorker(inbox Deliverer, logger *log.Logger) *NotifyWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &NotifyWorker{inbox: inbox, logger: logger.WithComponent(log.ComponentWorker)}
}

// HandleMessage applies one message. Returning an error requeues it.
func (w *NotifyWorker) HandleMessage(ctx context.Context, msg *amqp.NotificationMessage) error {
	h := core.NotificationHandle(msg.Handle)
	w.logger.InfoContext(ctx, "Processing notification message",
		"kind", string(msg.Kind),
		log.FieldHandle, msg.Handle,
		"timestamp", msg.Timestamp)

	switch msg.Kind {
	case amqp.KindNotification:
		if _, err := w.inbox.Deliver(ctx, h, msg.Notification()); err != nil {
			return fmt.Errorf("deliver notification: %w", err)
		}
	case amqp.KindHaptic:
		if err := w.inbox.DeliverHaptic(ctx, h, msg.Severity); err != nil {
			return fmt.Errorf("deliver haptic: %w", err)
		}
	case amqp.KindCancel:
		err := w.inbox.Cancel(ctx, h)
		if errors.Is(err, core.ErrNotFound) {
			w.logger.WarnContext(ctx, "Cancel for unknown notification", log.FieldHandle, msg.Handle)
			return nil
		}
		if err != nil {
			return fmt.Errorf("cancel notification: %w", err)
		}
	default:
		// Requeueing an unknown kind would loop forever.
		w.logger.WarnContext(ctx, "Dropping message of unknown kind", "kind", string(msg.Kind))
	}
	return nil
}

package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hustleledger/internal/core"
	"hustleledger/internal/ports"
)

// Inbox persists notifications and haptic requests so a device can fetch and
// present them later.
type Inbox struct {
	store ports.InboxStore
	now   func() time.Time
}

func NewInbox(store ports.InboxStore) *Inbox {
	return &Inbox{store: store, now: time.Now}
}

func (i *Inbox) Notify(ctx context.Context, severity Severity) error {
	return i.DeliverHaptic(ctx, Handle(uuid.NewString()), severity)
}

// DeliverHaptic stores a haptic request under a caller-chosen handle.
func (i *Inbox) DeliverHaptic(ctx context.Context, h Handle, severity Severity) error {
	item := core.InboxItem{
		Handle:    h,
		Kind:      core.InboxKindHaptic,
		Severity:  severity,
		CreatedAt: i.now().UTC(),
	}
	if err := i.store.SaveInboxItem(ctx, item); err != nil {
		return fmt.Errorf("save haptic request: %w", err)
	}
	return nil
}

func (i *Inbox) Schedule(ctx context.Context, n Notification) (Handle, error) {
	return i.Deliver(ctx, Handle(uuid.NewString()), n)
}

// Deliver stores n under a handle chosen by the caller. Used by consumers that
// receive notifications already carrying a handle.
func (i *Inbox) Deliver(ctx context.Context, h Handle, n Notification) (Handle, error) {
	item := core.InboxItem{
		Handle:    h,
		Kind:      core.InboxKindNotification,
		Title:     n.Title,
		Body:      n.Body,
		FireAt:    n.FireAt,
		CreatedAt: i.now().UTC(),
	}
	if err := i.store.SaveInboxItem(ctx, item); err != nil {
		return "", fmt.Errorf("save notification: %w", err)
	}
	return h, nil
}

func (i *Inbox) Cancel(ctx context.Context, h Handle) error {
	if h == "" {
		return nil
	}
	return i.store.CancelInboxItem(ctx, h)
}

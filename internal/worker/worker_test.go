package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hustleledger/internal/amqp"
	"hustleledger/internal/core"
	"hustleledger/internal/notify"
	"hustleledger/internal/storage/memory"
)

func TestNotifyWorker_HandleMessage(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	w := NewNotifyWorker(notify.NewInbox(store), nil)
	fire := time.Date(2025, 2, 27, 9, 0, 0, 0, time.UTC)

	messages := []*amqp.NotificationMessage{
		amqp.NewNotificationMessage("h-1", core.Notification{Title: "Upcoming Recurring Transaction", Body: "Rent is scheduled for tomorrow", FireAt: &fire}),
		amqp.NewHapticMessage("h-2", core.SeverityWarning),
		amqp.NewNotificationMessage("h-3", core.Notification{Title: "Food budget alert", Body: "crossed"}),
		amqp.NewCancelMessage("h-1"),
		amqp.NewCancelMessage("never-seen"),
		{Kind: "sms", Handle: "h-4"},
	}
	for _, m := range messages {
		if err := w.HandleMessage(ctx, m); err != nil {
			t.Fatalf("HandleMessage(%s) error = %v", m.Kind, err)
		}
	}

	pending, err := store.ListInbox(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d items, want 2", len(pending))
	}
	kinds := map[core.NotificationHandle]string{}
	for _, it := range pending {
		kinds[it.Handle] = it.Kind
	}
	if kinds["h-2"] != core.InboxKindHaptic || kinds["h-3"] != core.InboxKindNotification {
		t.Errorf("pending kinds = %v", kinds)
	}

	all, _ := store.ListInbox(ctx, false)
	if len(all) != 3 {
		t.Errorf("all = %d items, want 3", len(all))
	}
}

type failingInbox struct{}

func (failingInbox) Deliver(context.Context, core.NotificationHandle, core.Notification) (core.NotificationHandle, error) {
	return "", errors.New("disk full")
}
func (failingInbox) DeliverHaptic(context.Context, core.NotificationHandle, core.Severity) error {
	return errors.New("disk full")
}
func (failingInbox) Cancel(context.Context, core.NotificationHandle) error {
	return errors.New("disk full")
}

func TestNotifyWorker_ErrorsRequeue(t *testing.T) {
	w := NewNotifyWorker(failingInbox{}, nil)
	for _, m := range []*amqp.NotificationMessage{
		amqp.NewNotificationMessage("h", core.Notification{}),
		amqp.NewHapticMessage("h", core.SeverityError),
		amqp.NewCancelMessage("h"),
	} {
		if err := w.HandleMessage(context.Background(), m); err == nil {
			t.Errorf("HandleMessage(%s) should fail", m.Kind)
		}
	}
}

type fakeSweeper struct {
	mu    sync.Mutex
	due   bool
	calls int
	err   error
}

func (f *fakeSweeper) ProcessDue(context.Context, time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return 1, f.err
}

func (f *fakeSweeper) Due(context.Context, time.Time, time.Duration) bool { return f.due }

func (f *fakeSweeper) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestRecurringWorker_Run(t *testing.T) {
	tests := []struct {
		name      string
		due       bool
		wantFirst int
	}{
		{"sweeps at startup when due", true, 1},
		{"skips startup sweep when recent", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSweeper{due: tt.due}
			w := NewRecurringWorker(s, time.Hour, nil)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			if err := w.Run(ctx); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if s.count() != tt.wantFirst {
				t.Errorf("calls = %d, want %d", s.count(), tt.wantFirst)
			}
		})
	}

	t.Run("ticks until cancelled", func(t *testing.T) {
		s := &fakeSweeper{err: errors.New("store down")}
		w := NewRecurringWorker(s, 5*time.Millisecond, nil)

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
		defer cancel()
		if err := w.Run(ctx); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if s.count() < 2 {
			t.Errorf("calls = %d, want at least 2", s.count())
		}
	})
}

package settings

import (
	"context"
	"errors"
	"testing"
	"time"
)

type mapKV struct {
	data   map[string]string
	reads  int
	getErr error
}

func newMapKV() *mapKV { return &mapKV{data: map[string]string{}} }

func (m *mapKV) Get(_ context.Context, key string) (string, bool, error) {
	m.reads++
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapKV) Set(_ context.Context, key, value string) error {
	m.data[key] = value
	return nil
}

func (m *mapKV) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in   string
		def  bool
		want bool
	}{
		{"true", false, true},
		{" YES ", false, true},
		{"1", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"No", true, false},
		{"off", true, false},
		{"", true, true},
		{"maybe", false, false},
		{"maybe", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseBool(tt.in, tt.def); got != tt.want {
				t.Errorf("ParseBool(%q, %v) = %v, want %v", tt.in, tt.def, got, tt.want)
			}
		})
	}
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to enabled", func(t *testing.T) {
		p := NewPreferences(newMapKV(), time.Minute, nil)
		got, err := p.BudgetNotificationsEnabled(ctx)
		if err != nil || !got {
			t.Errorf("got %v, %v; want true, nil", got, err)
		}
	})

	t.Run("set and read back", func(t *testing.T) {
		kv := newMapKV()
		p := NewPreferences(kv, time.Minute, nil)
		if err := p.SetBudgetNotificationsEnabled(ctx, false); err != nil {
			t.Fatal(err)
		}
		if kv.data[KeyBudgetNotifications] != "false" {
			t.Errorf("stored %q", kv.data[KeyBudgetNotifications])
		}
		if got, _ := p.BudgetNotificationsEnabled(ctx); got {
			t.Error("expected disabled")
		}
	})

	t.Run("reads are cached", func(t *testing.T) {
		kv := newMapKV()
		kv.data[KeyRecurringNotifications] = "off"
		p := NewPreferences(kv, time.Minute, nil)
		for i := 0; i < 3; i++ {
			if got, _ := p.RecurringNotificationsEnabled(ctx); got {
				t.Fatal("expected disabled")
			}
		}
		if kv.reads != 1 {
			t.Errorf("kv reads = %d, want 1", kv.reads)
		}
	})

	t.Run("write invalidates cache", func(t *testing.T) {
		kv := newMapKV()
		p := NewPreferences(kv, time.Minute, nil)
		p.RecurringNotificationsEnabled(ctx)
		if err := p.SetRecurringNotificationsEnabled(ctx, false); err != nil {
			t.Fatal(err)
		}
		if got, _ := p.RecurringNotificationsEnabled(ctx); got {
			t.Error("stale cached value returned after write")
		}
	})

	t.Run("reset", func(t *testing.T) {
		kv := newMapKV()
		p := NewPreferences(kv, time.Minute, nil)
		p.SetBudgetNotificationsEnabled(ctx, false)
		if err := p.ResetBudgetNotifications(ctx, true); err != nil {
			t.Fatal(err)
		}
		if _, ok := kv.data[KeyBudgetNotifications]; ok {
			t.Error("reset to default should remove the key")
		}
		if err := p.ResetBudgetNotifications(ctx, false); err != nil {
			t.Fatal(err)
		}
		if got, _ := p.BudgetNotificationsEnabled(ctx); got {
			t.Error("expected disabled after reset(false)")
		}
	})

	t.Run("read failure returns default and error", func(t *testing.T) {
		kv := newMapKV()
		kv.getErr = errors.New("disk")
		p := NewPreferences(kv, time.Minute, nil)
		got, err := p.BudgetNotificationsEnabled(ctx)
		if err == nil || !got {
			t.Errorf("got %v, %v; want true and an error", got, err)
		}
	})
}

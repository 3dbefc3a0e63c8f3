// Package notify defines the side-effect sinks the engines talk to and the
// sinks this module ships with.
package notify

import (
	"context"
	"errors"

	"hustleledger/internal/core"
)

type (
	Severity     = core.Severity
	Handle       = core.NotificationHandle
	Notification = core.Notification
)

const (
	SeverityWarning = core.SeverityWarning
	SeverityError   = core.SeverityError
	SeveritySuccess = core.SeveritySuccess
)

// ErrUnavailable is returned by sinks whose backing implementation could not
// be loaded. Callers treat it as "feature off".
var ErrUnavailable = errors.New("notification sink unavailable")

// Haptics triggers device feedback.
type Haptics interface {
	Notify(ctx context.Context, severity Severity) error
}

// Scheduler delivers local notifications, immediately or at FireAt.
type Scheduler interface {
	Schedule(ctx context.Context, n Notification) (Handle, error)
	Cancel(ctx context.Context, h Handle) error
}

// Preferences exposes the user's notification toggles.
type Preferences interface {
	BudgetNotificationsEnabled(ctx context.Context) (bool, error)
}

// Sink is a combined haptics and notification target.
type Sink interface {
	Haptics
	Scheduler
}

// Fanout sends every call to all sinks. The first error is returned after
// every sink has been tried; Schedule returns the first successful handle.
type Fanout []Sink

func (f Fanout) Notify(ctx context.Context, severity Severity) error {
	var first error
	for _, s := range f {
		if err := s.Notify(ctx, severity); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f Fanout) Schedule(ctx context.Context, n Notification) (Handle, error) {
	var (
		handle Handle
		first  error
	)
	for _, s := range f {
		h, err := s.Schedule(ctx, n)
		if err != nil {
			if first == nil {
				first = err
			}
			continue
		}
		if handle == "" {
			handle = h
		}
	}
	if handle != "" {
		return handle, nil
	}
	return "", first
}

func (f Fanout) Cancel(ctx context.Context, h Handle) error {
	var first error
	for _, s := range f {
		if err := s.Cancel(ctx, h); err != nil && first == nil {
			first = err
		}
	}
	return first
}

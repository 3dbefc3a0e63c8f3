package notify

import (
	"context"

	"github.com/google/uuid"

	"hustleledger/internal/log"
)

// LogSink writes haptics and notifications to the structured log. It is the
// sink used when no device transport is configured.
type LogSink struct {
	logger *log.Logger
}

func NewLogSink(logger *log.Logger) *LogSink {
	if logger == nil {
		logger = log.Discard()
	}
	return &LogSink{logger: logger.WithComponent(log.ComponentNotify)}
}

func (s *LogSink) Notify(ctx context.Context, severity Severity) error {
	s.logger.InfoContext(ctx, "Haptic feedback", "severity", string(severity))
	return nil
}

func (s *LogSink) Schedule(ctx context.Context, n Notification) (Handle, error) {
	h := Handle(uuid.NewString())
	args := []any{log.FieldHandle, string(h), "title", n.Title, "body", n.Body}
	if n.FireAt != nil {
		args = append(args, "fire_at", n.FireAt.Format("2006-01-02T15:04:05Z07:00"))
	}
	s.logger.InfoContext(ctx, "Notification scheduled", args...)
	return h, nil
}

func (s *LogSink) Cancel(ctx context.Context, h Handle) error {
	s.logger.InfoContext(ctx, "Notification cancelled", log.FieldHandle, string(h))
	return nil
}

package worker

import (
	"context"
	"time"

	"hustleledger/internal/log"
)

// Sweeper is the recurring processor as seen by the ticker loop.
type Sweeper interface {
	ProcessDue(ctx context.Context, now time.Time) (int, error)
	Due(ctx context.Context, now time.Time, interval time.Duration) bool
}

// RecurringWorker runs the recurring sweep on a fixed interval.
type RecurringWorker struct {
	sweeper  Sweeper
	interval time.Duration
	logger   *log.Logger
	now      func() time.Time
}

func NewRecurringWorker(sweeper Sweeper, interval time.Duration, logger *log.Logger) *RecurringWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &RecurringWorker{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentWorker),
		now:      time.Now,
	}
}

// Run sweeps once at startup when the last sweep is older than the interval,
// then on every tick until ctx is cancelled.
func (w *RecurringWorker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Recurring processor configured", "interval", w.interval.String())

	if now := w.now(); w.sweeper.Due(ctx, now, w.interval) {
		w.logger.InfoContext(ctx, "Running initial recurring processing")
		w.sweep(ctx, now)
	} else {
		w.logger.InfoContext(ctx, "Skipping initial processing, last sweep is recent")
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Recurring worker stopped", log.FieldOperation, log.OpShutdown)
			return nil
		case <-ticker.C:
			w.sweep(ctx, w.now())
		}
	}
}

func (w *RecurringWorker) sweep(ctx context.Context, now time.Time) {
	count, err := w.sweeper.ProcessDue(ctx, now)
	if err != nil {
		w.logger.ErrorContext(ctx, "Recurring processing failed",
			log.FieldError, err, log.FieldOperation, log.OpSweep)
		return
	}
	w.logger.InfoContext(ctx, "Recurring processing complete",
		"entries_created", count,
		"next_check", now.Add(w.interval).Format("15:04:05"))
}

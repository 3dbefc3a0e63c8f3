// Package budget tracks spending against budgets and raises alerts when
// spending crosses configured percentages of the limit. Each threshold fires
// at most once per period.
package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"hustleledger/internal/core"
	"hustleledger/internal/log"
	"hustleledger/internal/notify"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrBudgetRequired  = fmt.Errorf("%w: budget is required", ErrInvalidArgument)
)

// Config holds engine settings.
type Config struct {
	// Location is the zone period keys and period starts are computed in.
	Location *time.Location
	// Thresholds apply to budgets that configure none.
	Thresholds []float64
	// RecordWhenMuted marks crossed thresholds as fired even when
	// notifications are disabled, so they stay silent after re-enabling.
	RecordWhenMuted bool
}

func DefaultConfig() Config {
	return Config{
		Location:        time.Local,
		Thresholds:      append([]float64(nil), core.DefaultThresholds...),
		RecordWhenMuted: true,
	}
}

// Update describes one change to apply to a budget.
type Update struct {
	Budget      *core.Budget
	Transaction *core.Transaction
	// Previous is the transaction being replaced on edit or delete.
	Previous *core.Transaction
	// NotificationsEnabled overrides the stored preference when set.
	NotificationsEnabled *bool
	// Now defaults to the engine clock.
	Now time.Time
	// Thresholds override the budget's own thresholds when non-empty.
	Thresholds []float64
}

// Engine applies transactions to budgets. It never mutates its input and
// never returns collaborator failures; those are logged.
type Engine struct {
	config    Config
	haptics   notify.Haptics
	scheduler notify.Scheduler
	prefs     notify.Preferences
	logger    *log.Logger
	now       func() time.Time
}

// NewEngine creates an engine. Any collaborator may be nil, in which case
// that side effect is skipped.
func NewEngine(config Config, haptics notify.Haptics, scheduler notify.Scheduler, prefs notify.Preferences, logger *log.Logger) *Engine {
	if config.Location == nil {
		config.Location = time.Local
	}
	if len(config.Thresholds) == 0 {
		config.Thresholds = append([]float64(nil), core.DefaultThresholds...)
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Engine{
		config:    config,
		haptics:   haptics,
		scheduler: scheduler,
		prefs:     prefs,
		logger:    logger.WithComponent(log.ComponentBudget),
		now:       time.Now,
	}
}

// Location returns the zone the engine computes periods in.
func (e *Engine) Location() *time.Location {
	return e.config.Location
}

// Apply folds u.Transaction (replacing u.Previous) into the budget and fires
// alerts for thresholds crossed by the change.
func (e *Engine) Apply(ctx context.Context, u Update) (core.Budget, error) {
	if u.Budget == nil {
		return core.Budget{}, ErrBudgetRequired
	}
	b := u.Budget.Clone()
	now := e.at(u.Now)

	limit := clampZero(b.Limit)
	spent := clampZero(b.Spent)
	prevPercent := PercentUsed(spent, limit)
	if b.PercentUsed != nil && finite(*b.PercentUsed) {
		prevPercent = *b.PercentUsed
	}

	delta := ExpenseAmount(u.Transaction).Sub(ExpenseAmount(u.Previous))
	nextSpent := decimal.Max(decimal.Zero, spent.Add(delta))
	nextPercent := PercentUsed(nextSpent, limit)

	cadence := b.Cadence.OrDefault()
	periodKey := PeriodKey(now, cadence)
	triggered := carriedTriggers(b.Alerts, periodKey)
	crossed := NewlyCrossed(prevPercent, nextPercent, triggered, e.thresholdsFor(u, b))

	recorded := triggered
	if len(crossed) > 0 {
		enabled := e.notificationsEnabled(ctx, u.NotificationsEnabled)
		if enabled || e.config.RecordWhenMuted {
			recorded = sortedUnique(append(append([]float64(nil), triggered...), crossed...))
		}
		if enabled {
			e.dispatch(ctx, b, periodKey, crossed, nextPercent)
		}
	}

	b.Spent = nextSpent
	b.PercentUsed = &nextPercent
	b.PeriodStart = PeriodStart(now, cadence)
	b.Alerts = core.AlertState{PeriodKey: periodKey, Triggered: nonNil(recorded)}
	b.LastUpdatedAt = now
	return b, nil
}

// Reset clears the fired thresholds and moves the budget to the period
// containing now. Spending is left untouched.
func (e *Engine) Reset(b *core.Budget, now time.Time) (core.Budget, error) {
	if b == nil {
		return core.Budget{}, ErrBudgetRequired
	}
	out := b.Clone()
	now = e.at(now)
	cadence := out.Cadence.OrDefault()
	out.Alerts = core.AlertState{PeriodKey: PeriodKey(now, cadence), Triggered: []float64{}}
	out.PeriodStart = PeriodStart(now, cadence)
	return out, nil
}

func (e *Engine) at(t time.Time) time.Time {
	if t.IsZero() {
		t = e.now()
	}
	return t.In(e.config.Location)
}

func (e *Engine) thresholdsFor(u Update, b core.Budget) []float64 {
	switch {
	case len(u.Thresholds) > 0:
		return u.Thresholds
	case len(b.Thresholds) > 0:
		return core.NormalizeThresholds(b.Thresholds)
	default:
		return e.config.Thresholds
	}
}

func (e *Engine) notificationsEnabled(ctx context.Context, override *bool) bool {
	if override != nil {
		return *override
	}
	if e.prefs == nil {
		return true
	}
	enabled, err := e.prefs.BudgetNotificationsEnabled(ctx)
	if err != nil {
		e.logger.WarnContext(ctx, "Failed to read budget notification preference, assuming enabled",
			log.FieldError, err)
		return true
	}
	return enabled
}

// dispatch sends, per threshold in ascending order, the haptic then the
// notification. Failures are logged and do not stop later thresholds.
func (e *Engine) dispatch(ctx context.Context, b core.Budget, periodKey string, crossed []float64, percent float64) {
	for _, t := range crossed {
		fields := log.NewFields().
			WithBudget(b.ID, b.Name, periodKey).
			WithThreshold(t, percent)

		if e.haptics != nil {
			if err := e.haptics.Notify(ctx, notify.BudgetSeverity(t)); err != nil {
				e.logSinkFailure(ctx, "Budget haptic feedback failed", err, fields)
			}
		}
		if e.scheduler != nil {
			h, err := e.scheduler.Schedule(ctx, notify.BudgetAlert(b.Name, t, percent))
			if err != nil {
				e.logSinkFailure(ctx, "Budget notification scheduling failed", err, fields)
				continue
			}
			e.logger.DebugContext(ctx, "Budget alert sent",
				append(fields.ToSlice(), log.FieldHandle, string(h))...)
		}
	}
}

func (e *Engine) logSinkFailure(ctx context.Context, msg string, err error, fields log.LogFields) {
	if errors.Is(err, notify.ErrUnavailable) {
		e.logger.DebugContext(ctx, msg, fields.WithError(err).ToSlice()...)
		return
	}
	e.logger.WarnContext(ctx, msg, fields.WithError(err).ToSlice()...)
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func nonNil(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}

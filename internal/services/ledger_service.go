package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"hustleledger/internal/budget"
	"hustleledger/internal/core"
	"hustleledger/internal/log"
	"hustleledger/internal/notify"
	"hustleledger/internal/ports"
	"hustleledger/internal/recurrence"
)

const (
	defaultTitle    = "Untitled"
	defaultCategory = "General"
)

// DeleteMode selects whether a delete removes one entry or its whole series.
type DeleteMode int

const (
	DeleteSingle DeleteMode = iota
	DeleteSeries
)

// RecurringPreferences exposes the recurring-notification toggle.
type RecurringPreferences interface {
	RecurringNotificationsEnabled(ctx context.Context) (bool, error)
	SetRecurringNotificationsEnabled(ctx context.Context, enabled bool) error
}

// RecurringSpec turns a new entry into the first occurrence of a series.
type RecurringSpec struct {
	Every              core.RepetitionType
	IntervalDays       int
	EndDate            *time.Time
	RemindOneDayBefore bool
}

type NewEntry struct {
	Title     string
	Amount    decimal.Decimal
	Type      core.EntryType
	Category  string
	Date      time.Time
	Recurring *RecurringSpec
}

// EntryPatch holds the fields an edit changes; nil fields are kept.
type EntryPatch struct {
	Title    *string
	Amount   *decimal.Decimal
	Type     *core.EntryType
	Category *string
	Date     *time.Time
}

// TemplatePatch holds the fields a series edit changes; nil fields are kept.
type TemplatePatch struct {
	Title              *string
	Amount             *decimal.Decimal
	Category           *string
	Every              *core.RepetitionType
	IntervalDays       *int
	NextOccurrence     *time.Time
	EndDate            *time.Time
	ClearEndDate       bool
	Active             *bool
	RemindOneDayBefore *bool
}

// LedgerService orchestrates entries, recurring series and budgets. All
// mutations are serialized.
type LedgerService struct {
	mu        sync.Mutex
	store     ports.Store
	budgets   *budget.Engine
	scheduler notify.Scheduler
	prefs     RecurringPreferences
	logger    *log.Logger
	loc       *time.Location
	now       func() time.Time
}

// NewLedgerService wires the service. scheduler and prefs may be nil: reminders
// are then skipped and recurring notifications treated as enabled.
func NewLedgerService(store ports.Store, engine *budget.Engine, scheduler notify.Scheduler, prefs RecurringPreferences, logger *log.Logger) *LedgerService {
	if logger == nil {
		logger = log.Discard()
	}
	if engine == nil {
		engine = budget.NewEngine(budget.DefaultConfig(), nil, nil, nil, logger)
	}
	return &LedgerService{
		store:     store,
		budgets:   engine,
		scheduler: scheduler,
		prefs:     prefs,
		logger:    logger.WithComponent(log.ComponentLedger),
		loc:       engine.Location(),
		now:       time.Now,
	}
}

// AddEntry records a new entry and folds it into the budgets of its category.
// With Recurring set it also creates the series the entry starts.
func (s *LedgerService) AddEntry(ctx context.Context, in NewEntry) (core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e := core.Entry{
		ID:        uuid.NewString(),
		Title:     orDefault(in.Title, defaultTitle),
		Amount:    in.Amount,
		Type:      in.Type,
		Category:  orDefault(in.Category, defaultCategory),
		Date:      in.Date,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if e.Type == "" {
		e.Type = core.Expense
	}
	if e.Date.IsZero() {
		e.Date = now
	}
	if err := e.Validate(); err != nil {
		return core.Entry{}, fmt.Errorf("validate entry: %w", err)
	}

	if in.Recurring != nil {
		t, err := s.newTemplate(ctx, e, *in.Recurring, now)
		if err != nil {
			return core.Entry{}, err
		}
		e.TemplateID = t.ID
	}

	if err := s.store.SaveEntry(ctx, e); err != nil {
		return core.Entry{}, fmt.Errorf("save entry: %w", err)
	}
	if err := s.applyBudgets(ctx, e.Category, e.Transaction(), nil, now); err != nil {
		return e, err
	}

	s.logger.InfoContext(ctx, "Entry added",
		log.FieldEntryID, e.ID,
		log.FieldCategory, e.Category,
		log.FieldAmount, e.Amount.String(),
		log.FieldTemplateID, e.TemplateID)
	return e, nil
}

func (s *LedgerService) newTemplate(ctx context.Context, first core.Entry, spec RecurringSpec, now time.Time) (core.RecurringTemplate, error) {
	t := core.RecurringTemplate{
		ID:                 uuid.NewString(),
		Title:              first.Title,
		Amount:             first.Amount,
		Type:               first.Type,
		Category:           first.Category,
		Every:              spec.Every,
		IntervalDays:       spec.IntervalDays,
		Active:             true,
		EndDate:            spec.EndDate,
		RemindOneDayBefore: spec.RemindOneDayBefore,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if t.Every == core.Custom {
		t.IntervalDays = recurrence.SafeInterval(t.IntervalDays)
	}
	if t.EndDate != nil && t.EndDate.Before(first.Date) {
		return core.RecurringTemplate{}, fmt.Errorf("validate template: %w", core.ErrInvalidEndDate)
	}
	if next, ok := recurrence.NextDate(first.Date, t.Every, t.IntervalDays); ok {
		if t.EndDate == nil || !next.After(*t.EndDate) {
			t.NextOccurrence = &next
		}
	}
	if err := t.Validate(); err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("validate template: %w", err)
	}

	s.syncReminder(ctx, &t, s.recurringNotificationsEnabled(ctx), now)
	if err := s.store.SaveTemplate(ctx, t); err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("save template: %w", err)
	}
	s.logger.InfoContext(ctx, "Recurring series created",
		log.NewFields().WithTemplate(t.ID, string(t.Every)).ToSlice()...)
	return t, nil
}

// UpdateEntry edits an entry and moves its amount between budgets as needed.
func (s *LedgerService) UpdateEntry(ctx context.Context, id string, p EntryPatch) (core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return core.Entry{}, fmt.Errorf("get entry: %w", err)
	}

	e := prev
	if p.Title != nil {
		e.Title = orDefault(*p.Title, defaultTitle)
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Type != nil {
		e.Type = *p.Type
	}
	if p.Category != nil {
		e.Category = orDefault(*p.Category, defaultCategory)
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	now := s.now()
	e.UpdatedAt = now
	if err := e.Validate(); err != nil {
		return core.Entry{}, fmt.Errorf("validate entry: %w", err)
	}
	if err := s.store.SaveEntry(ctx, e); err != nil {
		return core.Entry{}, fmt.Errorf("save entry: %w", err)
	}

	if e.Category == prev.Category {
		err = s.applyBudgets(ctx, e.Category, e.Transaction(), prev.Transaction(), now)
	} else {
		err = errors.Join(
			s.applyBudgets(ctx, prev.Category, nil, prev.Transaction(), now),
			s.applyBudgets(ctx, e.Category, e.Transaction(), nil, now),
		)
	}
	if err != nil {
		return e, err
	}

	s.logger.InfoContext(ctx, "Entry updated", log.FieldEntryID, e.ID, log.FieldAmount, e.Amount.String())
	return e, nil
}

// DeleteEntry removes an entry, or with DeleteSeries the whole series it
// belongs to, and takes the removed amounts back out of the budgets.
func (s *LedgerService) DeleteEntry(ctx context.Context, id string, mode DeleteMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return fmt.Errorf("get entry: %w", err)
	}
	now := s.now()

	if mode == DeleteSeries && e.TemplateID != "" {
		return s.deleteSeries(ctx, e.TemplateID, now)
	}

	if err := s.store.DeleteEntry(ctx, id); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if err := s.applyBudgets(ctx, e.Category, nil, e.Transaction(), now); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Entry deleted", log.FieldEntryID, id)
	return nil
}

func (s *LedgerService) deleteSeries(ctx context.Context, templateID string, now time.Time) error {
	t, err := s.store.GetTemplate(ctx, templateID)
	switch {
	case err == nil:
		s.cancelReminder(ctx, &t)
	case errors.Is(err, core.ErrNotFound):
	default:
		return fmt.Errorf("get template: %w", err)
	}

	entries, err := s.store.ListEntries(ctx, ports.EntryFilter{TemplateID: templateID})
	if err != nil {
		return fmt.Errorf("list series entries: %w", err)
	}
	n, err := s.store.DeleteEntriesByTemplate(ctx, templateID)
	if err != nil {
		return fmt.Errorf("delete series entries: %w", err)
	}
	if err := s.store.DeleteTemplate(ctx, templateID); err != nil && !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("delete template: %w", err)
	}

	var errs []error
	for _, e := range entries {
		errs = append(errs, s.applyBudgets(ctx, e.Category, nil, e.Transaction(), now))
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Recurring series deleted",
		log.FieldTemplateID, templateID, "entries", n)
	return nil
}

// UpdateTemplate edits a recurring series. Reminders follow the new state.
func (s *LedgerService) UpdateTemplate(ctx context.Context, id string, p TemplatePatch) (core.RecurringTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("get template: %w", err)
	}
	if p.Title != nil {
		t.Title = orDefault(*p.Title, defaultTitle)
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Category != nil {
		t.Category = orDefault(*p.Category, defaultCategory)
	}
	if p.Every != nil {
		t.Every = *p.Every
	}
	if p.IntervalDays != nil {
		t.IntervalDays = *p.IntervalDays
	}
	if t.Every == core.Custom {
		t.IntervalDays = recurrence.SafeInterval(t.IntervalDays)
	}
	if p.NextOccurrence != nil {
		next := *p.NextOccurrence
		t.NextOccurrence = &next
	}
	if p.ClearEndDate {
		t.EndDate = nil
	} else if p.EndDate != nil {
		end := *p.EndDate
		t.EndDate = &end
	}
	if p.Active != nil {
		t.Active = *p.Active
	}
	if p.RemindOneDayBefore != nil {
		t.RemindOneDayBefore = *p.RemindOneDayBefore
	}
	now := s.now()
	t.UpdatedAt = now
	if err := t.Validate(); err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("validate template: %w", err)
	}

	s.syncReminder(ctx, &t, s.recurringNotificationsEnabled(ctx), now)
	if err := s.store.SaveTemplate(ctx, t); err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("save template: %w", err)
	}
	s.logger.InfoContext(ctx, "Recurring series updated",
		log.NewFields().WithTemplate(t.ID, string(t.Every)).WithOperation(log.OpUpdate).ToSlice()...)
	return t, nil
}

// SetRecurringNotifications stores the toggle and reschedules or cancels the
// reminder of every active series.
func (s *LedgerService) SetRecurringNotifications(ctx context.Context, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.prefs != nil {
		if err := s.prefs.SetRecurringNotificationsEnabled(ctx, enabled); err != nil {
			return fmt.Errorf("save recurring notification preference: %w", err)
		}
	}

	templates, err := s.store.ListTemplates(ctx, true)
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}
	now := s.now()
	var errs []error
	for i := range templates {
		t := &templates[i]
		before := t.ReminderNotificationID
		s.syncReminder(ctx, t, enabled, now)
		if t.ReminderNotificationID == before {
			continue
		}
		t.UpdatedAt = now
		if err := s.store.SaveTemplate(ctx, *t); err != nil {
			errs = append(errs, fmt.Errorf("save template %s: %w", t.ID, err))
		}
	}
	return errors.Join(errs...)
}

// UpsertBudget creates a budget or replaces the settings of an existing one.
// Spending and alert state of an existing budget are kept.
func (s *LedgerService) UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if b.ID == "" {
		b.ID = uuid.NewString()
	} else if existing, err := s.store.GetBudget(ctx, b.ID); err == nil {
		b.Spent = existing.Spent
		b.PercentUsed = existing.PercentUsed
		b.PeriodStart = existing.PeriodStart
		b.Alerts = existing.Alerts
	} else if !errors.Is(err, core.ErrNotFound) {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}

	if err := b.Validate(); err != nil {
		return core.Budget{}, fmt.Errorf("validate budget: %w", err)
	}
	b.Cadence = b.Cadence.OrDefault()
	if len(b.Thresholds) > 0 {
		b.Thresholds = core.NormalizeThresholds(b.Thresholds)
	}
	if b.PeriodStart.IsZero() {
		b.PeriodStart = budget.PeriodStart(now.In(s.loc), b.Cadence)
	}
	if b.Alerts.PeriodKey == "" {
		b.Alerts.PeriodKey = budget.PeriodKey(now.In(s.loc), b.Cadence)
	}
	pct := budget.PercentUsed(b.Spent, b.Limit)
	b.PercentUsed = &pct
	b.LastUpdatedAt = now

	if err := s.store.SaveBudget(ctx, b); err != nil {
		return core.Budget{}, fmt.Errorf("save budget: %w", err)
	}
	s.logger.InfoContext(ctx, "Budget saved",
		log.NewFields().WithBudget(b.ID, b.Name, b.Alerts.PeriodKey).ToSlice()...)
	return b, nil
}

// ResetBudget clears the triggered thresholds and starts a new alert period
// containing now. Spending is left untouched.
func (s *LedgerService) ResetBudget(ctx context.Context, id string, now time.Time) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.store.GetBudget(ctx, id)
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	reset, err := s.budgets.Reset(&b, now)
	if err != nil {
		return core.Budget{}, err
	}
	if err := s.store.SaveBudget(ctx, reset); err != nil {
		return core.Budget{}, fmt.Errorf("save budget: %w", err)
	}
	s.logger.InfoContext(ctx, "Budget reset",
		log.NewFields().WithBudget(reset.ID, reset.Name, reset.Alerts.PeriodKey).WithOperation(log.OpReset).ToSlice()...)
	return reset, nil
}

func (s *LedgerService) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	return s.store.ListBudgets(ctx)
}

func (s *LedgerService) ListEntries(ctx context.Context, f ports.EntryFilter) ([]core.Entry, error) {
	return s.store.ListEntries(ctx, f)
}

func (s *LedgerService) ListTemplates(ctx context.Context, activeOnly bool) ([]core.RecurringTemplate, error) {
	return s.store.ListTemplates(ctx, activeOnly)
}

// Location returns the zone dates are interpreted in.
func (s *LedgerService) Location() *time.Location {
	return s.loc
}

// applyBudgets folds one change into every budget tracking category.
func (s *LedgerService) applyBudgets(ctx context.Context, category string, tx, prev *core.Transaction, now time.Time) error {
	budgets, err := s.store.BudgetsByCategory(ctx, category)
	if err != nil {
		return fmt.Errorf("load budgets for %q: %w", category, err)
	}
	var errs []error
	for i := range budgets {
		updated, err := s.budgets.Apply(ctx, budget.Update{
			Budget:      &budgets[i],
			Transaction: tx,
			Previous:    prev,
			Now:         now,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("apply budget %s: %w", budgets[i].ID, err))
			continue
		}
		if err := s.store.SaveBudget(ctx, updated); err != nil {
			errs = append(errs, fmt.Errorf("save budget %s: %w", updated.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *LedgerService) recurringNotificationsEnabled(ctx context.Context) bool {
	if s.prefs == nil {
		return true
	}
	enabled, err := s.prefs.RecurringNotificationsEnabled(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to read recurring notification preference, assuming enabled",
			log.FieldError, err)
		return true
	}
	return enabled
}

// syncReminder replaces the template's reminder with one for its current
// next occurrence, or clears it when the series is off or reminders are
// disabled. Scheduler failures are logged and leave the handle empty.
func (s *LedgerService) syncReminder(ctx context.Context, t *core.RecurringTemplate, enabled bool, now time.Time) {
	s.cancelReminder(ctx, t)
	if !enabled || !t.Active || s.scheduler == nil {
		return
	}
	n, ok := notify.Reminder(*t, now, s.loc)
	if !ok {
		return
	}
	h, err := s.scheduler.Schedule(ctx, n)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to schedule reminder",
			log.NewFields().WithTemplate(t.ID, string(t.Every)).WithError(err).ToSlice()...)
		return
	}
	t.ReminderNotificationID = string(h)
}

func (s *LedgerService) cancelReminder(ctx context.Context, t *core.RecurringTemplate) {
	if t.ReminderNotificationID == "" {
		return
	}
	if s.scheduler != nil {
		if err := s.scheduler.Cancel(ctx, notify.Handle(t.ReminderNotificationID)); err != nil {
			s.logger.WarnContext(ctx, "Failed to cancel reminder",
				log.FieldTemplateID, t.ID, log.FieldHandle, t.ReminderNotificationID, log.FieldError, err)
		}
	}
	t.ReminderNotificationID = ""
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

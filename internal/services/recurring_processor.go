package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hustleledger/internal/core"
	"hustleledger/internal/log"
	"hustleledger/internal/notify"
	"hustleledger/internal/recurrence"
)

// KeyLastRun records when the recurring sweep last completed.
const KeyLastRun = "scheduler:lastRun"

// RecurringProcessor materializes due occurrences of recurring series.
type RecurringProcessor struct {
	ledger *LedgerService
	logger *log.Logger
}

func NewRecurringProcessor(ledger *LedgerService, logger *log.Logger) *RecurringProcessor {
	if logger == nil {
		logger = log.Discard()
	}
	return &RecurringProcessor{
		ledger: ledger,
		logger: logger.WithComponent(log.ComponentRecurrence),
	}
}

// ProcessDue catches every active series up to now: each missed occurrence
// becomes an entry, the series pointer moves past it and the reminder follows
// the new pointer. It returns the number of entries created. A failing series
// is logged and skipped.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.ledger == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}
	s := p.ledger
	s.mu.Lock()
	defer s.mu.Unlock()

	templates, err := s.store.ListTemplates(ctx, true)
	if err != nil {
		return 0, fmt.Errorf("list active templates: %w", err)
	}

	p.logger.InfoContext(ctx, "Processing recurring series",
		"total_active", len(templates),
		"processing_date", now.In(s.loc).Format("2006-01-02"))

	notifyAdded := s.recurringNotificationsEnabled(ctx)
	created := 0
	for _, t := range templates {
		n, err := p.processTemplate(ctx, t, now, notifyAdded)
		created += n
		if err != nil {
			p.logger.ErrorContext(ctx, "Failed to process recurring series",
				log.NewFields().WithTemplate(t.ID, string(t.Every)).WithError(err).WithOperation(log.OpSweep).ToSlice()...)
		}
	}

	if err := s.store.Set(ctx, KeyLastRun, now.UTC().Format(time.RFC3339)); err != nil {
		p.logger.WarnContext(ctx, "Failed to record sweep time", log.FieldError, err)
	}

	p.logger.InfoContext(ctx, "Recurring processing complete",
		"created", created,
		"total_checked", len(templates))
	return created, nil
}

func (p *RecurringProcessor) processTemplate(ctx context.Context, t core.RecurringTemplate, now time.Time, notifyAdded bool) (int, error) {
	s := p.ledger
	res := recurrence.GenerateOccurrencesUntil(t, now)
	if len(res.Occurrences) == 0 {
		if res.NextOccurrence == nil && t.NextOccurrence != nil {
			// Pointer already past the end date.
			return 0, p.advance(ctx, t, nil, notifyAdded, now)
		}
		return 0, nil
	}

	created := 0
	var errs []error
	for _, occ := range res.Occurrences {
		e := t.Instance(uuid.NewString(), occ, now)
		if err := s.store.SaveEntry(ctx, e); err != nil {
			// Park the pointer on the failed occurrence so only it is retried.
			failed := occ
			errs = append(errs, fmt.Errorf("save occurrence %s: %w", occ.Format(time.DateOnly), err),
				p.advance(ctx, t, &failed, notifyAdded, now))
			return created, errors.Join(errs...)
		}
		created++
		errs = append(errs, s.applyBudgets(ctx, e.Category, e.Transaction(), nil, now))

		if notifyAdded && s.scheduler != nil {
			n := notify.RecurringAdded(t.Title, t.Amount, occ.In(s.loc))
			if _, err := s.scheduler.Schedule(ctx, n); err != nil {
				p.logger.WarnContext(ctx, "Failed to send recurring notification",
					log.FieldTemplateID, t.ID, log.FieldError, err)
			}
		}
		p.logger.InfoContext(ctx, "Created entry from recurring series",
			log.FieldTemplateID, t.ID,
			log.FieldEntryID, e.ID,
			log.FieldAmount, t.Amount.String(),
			log.FieldRule, string(t.Every),
			"occurrence", occ.Format(time.DateOnly))
	}

	errs = append(errs, p.advance(ctx, t, res.NextOccurrence, notifyAdded, now))
	return created, errors.Join(errs...)
}

// advance moves the series pointer, follows it with the reminder and saves
// the template.
func (p *RecurringProcessor) advance(ctx context.Context, t core.RecurringTemplate, next *time.Time, notifyAdded bool, now time.Time) error {
	s := p.ledger
	t.NextOccurrence = next
	t.UpdatedAt = now
	s.syncReminder(ctx, &t, notifyAdded, now)
	if err := s.store.SaveTemplate(ctx, t); err != nil {
		return fmt.Errorf("advance template: %w", err)
	}
	return nil
}

// LastRun returns when the sweep last completed, if ever.
func (p *RecurringProcessor) LastRun(ctx context.Context) (time.Time, bool, error) {
	raw, ok, err := p.ledger.store.Get(ctx, KeyLastRun)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse %s: %w", KeyLastRun, err)
	}
	return t, true, nil
}

// Due reports whether at least interval has passed since the last sweep.
// An unreadable record counts as due.
func (p *RecurringProcessor) Due(ctx context.Context, now time.Time, interval time.Duration) bool {
	last, ok, err := p.LastRun(ctx)
	if err != nil {
		p.logger.WarnContext(ctx, "Failed to read last sweep time", log.FieldError, err)
		return true
	}
	return !ok || now.Sub(last) >= interval
}

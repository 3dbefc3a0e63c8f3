// Package ports declares the storage contracts the ledger services depend on.
// Lookups of unknown IDs return errors wrapping core.ErrNotFound.
package ports

import (
	"context"
	"time"

	"hustleledger/internal/core"
)

// EntryFilter narrows ListEntries. Zero values mean "no constraint".
type EntryFilter struct {
	Category   string
	TemplateID string
	From       time.Time
	To         time.Time
}

type (
	EntryStore interface {
		SaveEntry(ctx context.Context, e core.Entry) error
		GetEntry(ctx context.Context, id string) (core.Entry, error)
		DeleteEntry(ctx context.Context, id string) error
		// DeleteEntriesByTemplate removes every entry materialized from the series.
		DeleteEntriesByTemplate(ctx context.Context, templateID string) (int, error)
		// ListEntries returns matching entries, newest first.
		ListEntries(ctx context.Context, f EntryFilter) ([]core.Entry, error)
	}

	TemplateStore interface {
		SaveTemplate(ctx context.Context, t core.RecurringTemplate) error
		GetTemplate(ctx context.Context, id string) (core.RecurringTemplate, error)
		DeleteTemplate(ctx context.Context, id string) error
		ListTemplates(ctx context.Context, activeOnly bool) ([]core.RecurringTemplate, error)
	}

	BudgetStore interface {
		SaveBudget(ctx context.Context, b core.Budget) error
		GetBudget(ctx context.Context, id string) (core.Budget, error)
		DeleteBudget(ctx context.Context, id string) error
		ListBudgets(ctx context.Context) ([]core.Budget, error)
		BudgetsByCategory(ctx context.Context, category string) ([]core.Budget, error)
	}

	// KV is the generic string key-value store used for preferences and
	// scheduler bookkeeping.
	KV interface {
		Get(ctx context.Context, key string) (value string, ok bool, err error)
		Set(ctx context.Context, key, value string) error
		Delete(ctx context.Context, key string) error
	}

	InboxStore interface {
		SaveInboxItem(ctx context.Context, item core.InboxItem) error
		CancelInboxItem(ctx context.Context, handle core.NotificationHandle) error
		ListInbox(ctx context.Context, pendingOnly bool) ([]core.InboxItem, error)
	}

	// Store is everything a backend provides.
	Store interface {
		EntryStore
		TemplateStore
		BudgetStore
		KV
		InboxStore
	}
)

package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const entryColumns = `id, title, amount, type, category, date, template_id, created_at, updated_at`

func scanEntry(row interface{ Scan(...any) error }) (Entry, error) {
	var i Entry
	err := row.Scan(&i.ID, &i.Title, &i.Amount, &i.Type, &i.Category, &i.Date, &i.TemplateID, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const upsertEntry = `-- name: UpsertEntry :exec
INSERT INTO entries (` + entryColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    title = excluded.title,
    amount = excluded.amount,
    type = excluded.type,
    category = excluded.category,
    date = excluded.date,
    template_id = excluded.template_id,
    updated_at = excluded.updated_at
`

func (q *Queries) UpsertEntry(ctx context.Context, arg Entry) error {
	_, err := q.db.ExecContext(ctx, upsertEntry,
		arg.ID, arg.Title, arg.Amount, arg.Type, arg.Category, arg.Date, arg.TemplateID, arg.CreatedAt, arg.UpdatedAt)
	return err
}

const getEntry = `-- name: GetEntry :one
SELECT ` + entryColumns + ` FROM entries WHERE id = ?
`

func (q *Queries) GetEntry(ctx context.Context, id string) (Entry, error) {
	return scanEntry(q.db.QueryRowContext(ctx, getEntry, id))
}

const deleteEntry = `-- name: DeleteEntry :execrows
DELETE FROM entries WHERE id = ?
`

func (q *Queries) DeleteEntry(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteEntry, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteEntriesByTemplate = `-- name: DeleteEntriesByTemplate :execrows
DELETE FROM entries WHERE template_id = ?
`

func (q *Queries) DeleteEntriesByTemplate(ctx context.Context, templateID string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteEntriesByTemplate, templateID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listEntries = `-- name: ListEntries :many
SELECT ` + entryColumns + ` FROM entries
WHERE (? = '' OR category = ?)
  AND (? = '' OR template_id = ?)
  AND (? = '' OR date >= ?)
  AND (? = '' OR date < ?)
ORDER BY date DESC, created_at DESC
`

type ListEntriesParams struct {
	Category   string
	TemplateID string
	From       string
	To         string
}

func (q *Queries) ListEntries(ctx context.Context, arg ListEntriesParams) ([]Entry, error) {
	rows, err := q.db.QueryContext(ctx, listEntries,
		arg.Category, arg.Category,
		arg.TemplateID, arg.TemplateID,
		arg.From, arg.From,
		arg.To, arg.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Entry
	for rows.Next() {
		i, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const templateColumns = `id, title, amount, type, category, rule, interval_days, active, next_occurrence, end_date,
    remind_one_day_before, reminder_notification_id, created_at, updated_at`

func scanTemplate(row interface{ Scan(...any) error }) (RecurringTemplate, error) {
	var i RecurringTemplate
	err := row.Scan(&i.ID, &i.Title, &i.Amount, &i.Type, &i.Category, &i.Rule, &i.IntervalDays, &i.Active,
		&i.NextOccurrence, &i.EndDate, &i.RemindOneDayBefore, &i.ReminderNotificationID, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const upsertTemplate = `-- name: UpsertTemplate :exec
INSERT INTO recurring_templates (` + templateColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    title = excluded.title,
    amount = excluded.amount,
    type = excluded.type,
    category = excluded.category,
    rule = excluded.rule,
    interval_days = excluded.interval_days,
    active = excluded.active,
    next_occurrence = excluded.next_occurrence,
    end_date = excluded.end_date,
    remind_one_day_before = excluded.remind_one_day_before,
    reminder_notification_id = excluded.reminder_notification_id,
    updated_at = excluded.updated_at
`

func (q *Queries) UpsertTemplate(ctx context.Context, arg RecurringTemplate) error {
	_, err := q.db.ExecContext(ctx, upsertTemplate,
		arg.ID, arg.Title, arg.Amount, arg.Type, arg.Category, arg.Rule, arg.IntervalDays, arg.Active,
		arg.NextOccurrence, arg.EndDate, arg.RemindOneDayBefore, arg.ReminderNotificationID, arg.CreatedAt, arg.UpdatedAt)
	return err
}

const getTemplate = `-- name: GetTemplate :one
SELECT ` + templateColumns + ` FROM recurring_templates WHERE id = ?
`

func (q *Queries) GetTemplate(ctx context.Context, id string) (RecurringTemplate, error) {
	return scanTemplate(q.db.QueryRowContext(ctx, getTemplate, id))
}

const deleteTemplate = `-- name: DeleteTemplate :execrows
DELETE FROM recurring_templates WHERE id = ?
`

func (q *Queries) DeleteTemplate(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTemplate, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listTemplates = `-- name: ListTemplates :many
SELECT ` + templateColumns + ` FROM recurring_templates
WHERE (? = 0 OR active = 1)
ORDER BY created_at, id
`

func (q *Queries) ListTemplates(ctx context.Context, activeOnly bool) ([]RecurringTemplate, error) {
	rows, err := q.db.QueryContext(ctx, listTemplates, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RecurringTemplate
	for rows.Next() {
		i, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const budgetColumns = `id, name, category_id, limit_amount, spent, percent_used, cadence, thresholds, rollover,
    period_start, alert_period_key, alert_triggered, last_updated_at`

func scanBudget(row interface{ Scan(...any) error }) (Budget, error) {
	var i Budget
	err := row.Scan(&i.ID, &i.Name, &i.CategoryID, &i.LimitAmount, &i.Spent, &i.PercentUsed, &i.Cadence,
		&i.Thresholds, &i.Rollover, &i.PeriodStart, &i.AlertPeriodKey, &i.AlertTriggered, &i.LastUpdatedAt)
	return i, err
}

const upsertBudget = `-- name: UpsertBudget :exec
INSERT INTO budgets (` + budgetColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    name = excluded.name,
    category_id = excluded.category_id,
    limit_amount = excluded.limit_amount,
    spent = excluded.spent,
    percent_used = excluded.percent_used,
    cadence = excluded.cadence,
    thresholds = excluded.thresholds,
    rollover = excluded.rollover,
    period_start = excluded.period_start,
    alert_period_key = excluded.alert_period_key,
    alert_triggered = excluded.alert_triggered,
    last_updated_at = excluded.last_updated_at
`

func (q *Queries) UpsertBudget(ctx context.Context, arg Budget) error {
	_, err := q.db.ExecContext(ctx, upsertBudget,
		arg.ID, arg.Name, arg.CategoryID, arg.LimitAmount, arg.Spent, arg.PercentUsed, arg.Cadence,
		arg.Thresholds, arg.Rollover, arg.PeriodStart, arg.AlertPeriodKey, arg.AlertTriggered, arg.LastUpdatedAt)
	return err
}

const getBudget = `-- name: GetBudget :one
SELECT ` + budgetColumns + ` FROM budgets WHERE id = ?
`

func (q *Queries) GetBudget(ctx context.Context, id string) (Budget, error) {
	return scanBudget(q.db.QueryRowContext(ctx, getBudget, id))
}

const deleteBudget = `-- name: DeleteBudget :execrows
DELETE FROM budgets WHERE id = ?
`

func (q *Queries) DeleteBudget(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteBudget, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listBudgets = `-- name: ListBudgets :many
SELECT ` + budgetColumns + ` FROM budgets
WHERE (? = '' OR category_id = ?)
ORDER BY name, id
`

func (q *Queries) ListBudgets(ctx context.Context, category string) ([]Budget, error) {
	rows, err := q.db.QueryContext(ctx, listBudgets, category, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Budget
	for rows.Next() {
		i, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getKV = `-- name: GetKV :one
SELECT value FROM kv WHERE key = ?
`

func (q *Queries) GetKV(ctx context.Context, key string) (string, error) {
	var value string
	err := q.db.QueryRowContext(ctx, getKV, key).Scan(&value)
	return value, err
}

const setKV = `-- name: SetKV :exec
INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
`

func (q *Queries) SetKV(ctx context.Context, key, value, updatedAt string) error {
	_, err := q.db.ExecContext(ctx, setKV, key, value, updatedAt)
	return err
}

const deleteKV = `-- name: DeleteKV :exec
DELETE FROM kv WHERE key = ?
`

func (q *Queries) DeleteKV(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, deleteKV, key)
	return err
}

const inboxColumns = `handle, kind, title, body, severity, fire_at, created_at, cancelled`

const upsertInbox = `-- name: UpsertInbox :exec
INSERT INTO inbox (` + inboxColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (handle) DO UPDATE SET
    kind = excluded.kind,
    title = excluded.title,
    body = excluded.body,
    severity = excluded.severity,
    fire_at = excluded.fire_at,
    cancelled = excluded.cancelled
`

func (q *Queries) UpsertInbox(ctx context.Context, arg Inbox) error {
	_, err := q.db.ExecContext(ctx, upsertInbox,
		arg.Handle, arg.Kind, arg.Title, arg.Body, arg.Severity, arg.FireAt, arg.CreatedAt, arg.Cancelled)
	return err
}

const cancelInbox = `-- name: CancelInbox :execrows
UPDATE inbox SET cancelled = 1 WHERE handle = ?
`

func (q *Queries) CancelInbox(ctx context.Context, handle string) (int64, error) {
	result, err := q.db.ExecContext(ctx, cancelInbox, handle)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listInbox = `-- name: ListInbox :many
SELECT ` + inboxColumns + ` FROM inbox
WHERE (? = 0 OR cancelled = 0)
ORDER BY created_at, handle
`

func (q *Queries) ListInbox(ctx context.Context, pendingOnly bool) ([]Inbox, error) {
	rows, err := q.db.QueryContext(ctx, listInbox, pendingOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Inbox
	for rows.Next() {
		var i Inbox
		if err := rows.Scan(&i.Handle, &i.Kind, &i.Title, &i.Body, &i.Severity, &i.FireAt, &i.CreatedAt, &i.Cancelled); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

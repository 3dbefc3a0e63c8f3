package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"hustleledger/internal/core"
	"hustleledger/internal/log"
	"hustleledger/internal/ports"
)

// timeLayout is fixed width so stored instants compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var _ ports.Store = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *log.Logger
}

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentStorage)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer; a single connection serialises access.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("SQLite database ready", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{db: db, queries: New(db), logger: logger}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Entries

func (r *SQLiteRepository) SaveEntry(ctx context.Context, e core.Entry) error {
	if err := r.queries.UpsertEntry(ctx, entryToRow(e)); err != nil {
		return fmt.Errorf("save entry %s: %w", e.ID, err)
	}
	r.logger.DebugContext(ctx, "Entry saved", log.FieldEntryID, e.ID, log.FieldAmount, e.Amount.String())
	return nil
}

func (r *SQLiteRepository) GetEntry(ctx context.Context, id string) (core.Entry, error) {
	row, err := r.queries.GetEntry(ctx, id)
	if err != nil {
		return core.Entry{}, notFound("entry", id, err)
	}
	return rowToEntry(row)
}

func (r *SQLiteRepository) DeleteEntry(ctx context.Context, id string) error {
	n, err := r.queries.DeleteEntry(ctx, id)
	if err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("entry %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) DeleteEntriesByTemplate(ctx context.Context, templateID string) (int, error) {
	n, err := r.queries.DeleteEntriesByTemplate(ctx, templateID)
	if err != nil {
		return 0, fmt.Errorf("delete entries of template %s: %w", templateID, err)
	}
	return int(n), nil
}

func (r *SQLiteRepository) ListEntries(ctx context.Context, f ports.EntryFilter) ([]core.Entry, error) {
	rows, err := r.queries.ListEntries(ctx, ListEntriesParams{
		Category:   f.Category,
		TemplateID: f.TemplateID,
		From:       formatTimeOrEmpty(f.From),
		To:         formatTimeOrEmpty(f.To),
	})
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	out := make([]core.Entry, 0, len(rows))
	for _, row := range rows {
		e, err := rowToEntry(row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Templates

func (r *SQLiteRepository) SaveTemplate(ctx context.Context, t core.RecurringTemplate) error {
	if err := r.queries.UpsertTemplate(ctx, templateToRow(t)); err != nil {
		return fmt.Errorf("save template %s: %w", t.ID, err)
	}
	r.logger.DebugContext(ctx, "Template saved", log.FieldTemplateID, t.ID, log.FieldRule, string(t.Every))
	return nil
}

func (r *SQLiteRepository) GetTemplate(ctx context.Context, id string) (core.RecurringTemplate, error) {
	row, err := r.queries.GetTemplate(ctx, id)
	if err != nil {
		return core.RecurringTemplate{}, notFound("template", id, err)
	}
	return rowToTemplate(row)
}

func (r *SQLiteRepository) DeleteTemplate(ctx context.Context, id string) error {
	n, err := r.queries.DeleteTemplate(ctx, id)
	if err != nil {
		return fmt.Errorf("delete template %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("template %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) ListTemplates(ctx context.Context, activeOnly bool) ([]core.RecurringTemplate, error) {
	rows, err := r.queries.ListTemplates(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	out := make([]core.RecurringTemplate, 0, len(rows))
	for _, row := range rows {
		t, err := rowToTemplate(row)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Budgets

func (r *SQLiteRepository) SaveBudget(ctx context.Context, b core.Budget) error {
	row, err := budgetToRow(b)
	if err != nil {
		return err
	}
	if err := r.queries.UpsertBudget(ctx, row); err != nil {
		return fmt.Errorf("save budget %s: %w", b.ID, err)
	}
	r.logger.DebugContext(ctx, "Budget saved", log.FieldBudgetID, b.ID, log.FieldPeriodKey, b.Alerts.PeriodKey)
	return nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, id string) (core.Budget, error) {
	row, err := r.queries.GetBudget(ctx, id)
	if err != nil {
		return core.Budget{}, notFound("budget", id, err)
	}
	return rowToBudget(row)
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id string) error {
	n, err := r.queries.DeleteBudget(ctx, id)
	if err != nil {
		return fmt.Errorf("delete budget %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	return r.listBudgets(ctx, "")
}

func (r *SQLiteRepository) BudgetsByCategory(ctx context.Context, category string) ([]core.Budget, error) {
	if category == "" {
		return nil, nil
	}
	return r.listBudgets(ctx, category)
}

func (r *SQLiteRepository) listBudgets(ctx context.Context, category string) ([]core.Budget, error) {
	rows, err := r.queries.ListBudgets(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	out := make([]core.Budget, 0, len(rows))
	for _, row := range rows {
		b, err := rowToBudget(row)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// Key-value

func (r *SQLiteRepository) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.queries.GetKV(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return v, true, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key, value string) error {
	if err := r.queries.SetKV(ctx, key, value, formatTime(time.Now())); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	if err := r.queries.DeleteKV(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Inbox

func (r *SQLiteRepository) SaveInboxItem(ctx context.Context, item core.InboxItem) error {
	if err := r.queries.UpsertInbox(ctx, inboxToRow(item)); err != nil {
		return fmt.Errorf("save inbox item %s: %w", item.Handle, err)
	}
	return nil
}

func (r *SQLiteRepository) CancelInboxItem(ctx context.Context, handle core.NotificationHandle) error {
	n, err := r.queries.CancelInbox(ctx, string(handle))
	if err != nil {
		return fmt.Errorf("cancel inbox item %s: %w", handle, err)
	}
	if n == 0 {
		return fmt.Errorf("inbox item %s: %w", handle, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) ListInbox(ctx context.Context, pendingOnly bool) ([]core.InboxItem, error) {
	rows, err := r.queries.ListInbox(ctx, pendingOnly)
	if err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}
	out := make([]core.InboxItem, 0, len(rows))
	for _, row := range rows {
		item, err := rowToInbox(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func notFound(kind, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, core.ErrNotFound)
	}
	return fmt.Errorf("get %s %s: %w", kind, id, err)
}

// Row conversion

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimeOrEmpty(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return formatTime(t)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func entryToRow(e core.Entry) Entry {
	return Entry{
		ID:         e.ID,
		Title:      e.Title,
		Amount:     e.Amount.String(),
		Type:       string(e.Type),
		Category:   e.Category,
		Date:       formatTime(e.Date),
		TemplateID: sql.NullString{String: e.TemplateID, Valid: e.TemplateID != ""},
		CreatedAt:  formatTime(e.CreatedAt),
		UpdatedAt:  formatTime(e.UpdatedAt),
	}
}

func rowToEntry(row Entry) (core.Entry, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Entry{}, fmt.Errorf("entry %s amount: %w", row.ID, err)
	}
	e := core.Entry{
		ID:         row.ID,
		Title:      row.Title,
		Amount:     amount,
		Type:       core.EntryType(row.Type),
		Category:   row.Category,
		TemplateID: row.TemplateID.String,
	}
	if e.Date, err = parseTime(row.Date); err != nil {
		return core.Entry{}, err
	}
	if e.CreatedAt, err = parseTime(row.CreatedAt); err != nil {
		return core.Entry{}, err
	}
	if e.UpdatedAt, err = parseTime(row.UpdatedAt); err != nil {
		return core.Entry{}, err
	}
	return e, nil
}

func templateToRow(t core.RecurringTemplate) RecurringTemplate {
	return RecurringTemplate{
		ID:                     t.ID,
		Title:                  t.Title,
		Amount:                 t.Amount.String(),
		Type:                   string(t.Type),
		Category:               t.Category,
		Rule:                   string(t.Every),
		IntervalDays:           int64(t.IntervalDays),
		Active:                 t.Active,
		NextOccurrence:         nullTime(t.NextOccurrence),
		EndDate:                nullTime(t.EndDate),
		RemindOneDayBefore:     t.RemindOneDayBefore,
		ReminderNotificationID: t.ReminderNotificationID,
		CreatedAt:              formatTime(t.CreatedAt),
		UpdatedAt:              formatTime(t.UpdatedAt),
	}
}

func rowToTemplate(row RecurringTemplate) (core.RecurringTemplate, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("template %s amount: %w", row.ID, err)
	}
	t := core.RecurringTemplate{
		ID:                     row.ID,
		Title:                  row.Title,
		Amount:                 amount,
		Type:                   core.EntryType(row.Type),
		Category:               row.Category,
		Every:                  core.RepetitionType(row.Rule),
		IntervalDays:           int(row.IntervalDays),
		Active:                 row.Active,
		RemindOneDayBefore:     row.RemindOneDayBefore,
		ReminderNotificationID: row.ReminderNotificationID,
	}
	if t.NextOccurrence, err = parseNullTime(row.NextOccurrence); err != nil {
		return core.RecurringTemplate{}, err
	}
	if t.EndDate, err = parseNullTime(row.EndDate); err != nil {
		return core.RecurringTemplate{}, err
	}
	if t.CreatedAt, err = parseTime(row.CreatedAt); err != nil {
		return core.RecurringTemplate{}, err
	}
	if t.UpdatedAt, err = parseTime(row.UpdatedAt); err != nil {
		return core.RecurringTemplate{}, err
	}
	return t, nil
}

func budgetToRow(b core.Budget) (Budget, error) {
	thresholds, err := json.Marshal(nonNilFloats(b.Thresholds))
	if err != nil {
		return Budget{}, fmt.Errorf("encode thresholds: %w", err)
	}
	triggered, err := json.Marshal(nonNilFloats(b.Alerts.Triggered))
	if err != nil {
		return Budget{}, fmt.Errorf("encode triggered thresholds: %w", err)
	}
	row := Budget{
		ID:             b.ID,
		Name:           b.Name,
		CategoryID:     b.CategoryID,
		LimitAmount:    b.Limit.String(),
		Spent:          b.Spent.String(),
		Cadence:        string(b.Cadence.OrDefault()),
		Thresholds:     string(thresholds),
		Rollover:       b.Rollover,
		PeriodStart:    formatTimeOrEmpty(b.PeriodStart),
		AlertPeriodKey: b.Alerts.PeriodKey,
		AlertTriggered: string(triggered),
		LastUpdatedAt:  formatTimeOrEmpty(b.LastUpdatedAt),
	}
	if b.PercentUsed != nil {
		row.PercentUsed = sql.NullFloat64{Float64: *b.PercentUsed, Valid: true}
	}
	return row, nil
}

func rowToBudget(row Budget) (core.Budget, error) {
	limit, err := decimal.NewFromString(row.LimitAmount)
	if err != nil {
		return core.Budget{}, fmt.Errorf("budget %s limit: %w", row.ID, err)
	}
	spent, err := decimal.NewFromString(row.Spent)
	if err != nil {
		return core.Budget{}, fmt.Errorf("budget %s spent: %w", row.ID, err)
	}
	b := core.Budget{
		ID:         row.ID,
		Name:       row.Name,
		CategoryID: row.CategoryID,
		Limit:      limit,
		Spent:      spent,
		Cadence:    core.Cadence(row.Cadence),
		Rollover:   row.Rollover,
		Alerts:     core.AlertState{PeriodKey: row.AlertPeriodKey},
	}
	if row.PercentUsed.Valid {
		p := row.PercentUsed.Float64
		b.PercentUsed = &p
	}
	if err := json.Unmarshal([]byte(row.Thresholds), &b.Thresholds); err != nil {
		return core.Budget{}, fmt.Errorf("budget %s thresholds: %w", row.ID, err)
	}
	if err := json.Unmarshal([]byte(row.AlertTriggered), &b.Alerts.Triggered); err != nil {
		return core.Budget{}, fmt.Errorf("budget %s triggered thresholds: %w", row.ID, err)
	}
	if len(b.Thresholds) == 0 {
		b.Thresholds = nil
	}
	if b.PeriodStart, err = parseTime(row.PeriodStart); err != nil {
		return core.Budget{}, err
	}
	if b.LastUpdatedAt, err = parseTime(row.LastUpdatedAt); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func inboxToRow(item core.InboxItem) Inbox {
	return Inbox{
		Handle:    string(item.Handle),
		Kind:      item.Kind,
		Title:     item.Title,
		Body:      item.Body,
		Severity:  string(item.Severity),
		FireAt:    nullTime(item.FireAt),
		CreatedAt: formatTime(item.CreatedAt),
		Cancelled: item.Cancelled,
	}
}

func rowToInbox(row Inbox) (core.InboxItem, error) {
	item := core.InboxItem{
		Handle:    core.NotificationHandle(row.Handle),
		Kind:      row.Kind,
		Title:     row.Title,
		Body:      row.Body,
		Severity:  core.Severity(row.Severity),
		Cancelled: row.Cancelled,
	}
	var err error
	if item.FireAt, err = parseNullTime(row.FireAt); err != nil {
		return core.InboxItem{}, err
	}
	if item.CreatedAt, err = parseTime(row.CreatedAt); err != nil {
		return core.InboxItem{}, err
	}
	return item, nil
}

func nonNilFloats(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}

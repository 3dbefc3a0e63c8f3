package core

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Daily    RepetitionType = "daily"
	Weekly   RepetitionType = "weekly"
	Biweekly RepetitionType = "biweekly"
	Monthly  RepetitionType = "monthly"
	Yearly   RepetitionType = "yearly"
	Custom   RepetitionType = "custom"
)

const (
	CadenceDaily   Cadence = "daily"
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
)

const (
	Income  EntryType = "income"
	Expense EntryType = "expense"
)

// DefaultThresholds are the alert percentages used when a budget has none configured.
var DefaultThresholds = []float64{50, 80, 100}

type (
	RepetitionType string

	// Cadence is the accounting period length of a budget.
	Cadence string

	EntryType string

	// Entry is a single ledger line. Entries materialized from a recurring
	// series carry the series ID in TemplateID.
	Entry struct {
		ID         string          `json:"id"`
		Title      string          `json:"title"`
		Amount     decimal.Decimal `json:"amount"`
		Type       EntryType       `json:"type"`
		Category   string          `json:"category"`
		Date       time.Time       `json:"date"`
		TemplateID string          `json:"recurringParentId,omitempty"`
		CreatedAt  time.Time       `json:"createdAt"`
		UpdatedAt  time.Time       `json:"updatedAt"`
	}

	// RecurringTemplate is the rule a series of entries is generated from.
	// It is never a ledger line itself.
	RecurringTemplate struct {
		ID                     string          `json:"id"`
		Title                  string          `json:"title"`
		Amount                 decimal.Decimal `json:"amount"`
		Type                   EntryType       `json:"type"`
		Category               string          `json:"category"`
		Every                  RepetitionType  `json:"recurrence"`
		IntervalDays           int             `json:"intervalDays,omitempty"`
		Active                 bool            `json:"isRecurring"`
		NextOccurrence         *time.Time      `json:"nextOccurrence"`
		EndDate                *time.Time      `json:"endDate"`
		RemindOneDayBefore     bool            `json:"remindOneDayBefore"`
		ReminderNotificationID string          `json:"reminderNotificationId,omitempty"`
		CreatedAt              time.Time       `json:"createdAt"`
		UpdatedAt              time.Time       `json:"updatedAt"`
	}

	// AlertState records which thresholds already fired in PeriodKey.
	AlertState struct {
		PeriodKey string    `json:"periodKey"`
		Triggered []float64 `json:"triggered"`
	}

	Budget struct {
		ID            string          `json:"id"`
		Name          string          `json:"name"`
		CategoryID    string          `json:"categoryId"`
		Limit         decimal.Decimal `json:"limit"`
		Spent         decimal.Decimal `json:"spent"`
		PercentUsed   *float64        `json:"percentUsed,omitempty"`
		Cadence       Cadence         `json:"cadence"`
		Thresholds    []float64       `json:"thresholds,omitempty"`
		Rollover      bool            `json:"rollover"`
		PeriodStart   time.Time       `json:"periodStart"`
		Alerts        AlertState      `json:"alerts"`
		LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidType     = errors.New("invalid entry type")
	ErrEmptyTitle      = errors.New("empty title")
	ErrEmptyCategory   = errors.New("empty category")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidRule     = errors.New("invalid repetition type")
	ErrInvalidInterval = errors.New("custom interval must be a positive number of days")
	ErrInvalidEndDate  = errors.New("end date must not be before the next occurrence")
	ErrInvalidCadence  = errors.New("invalid budget cadence")
	ErrNegativeLimit   = errors.New("budget limit cannot be negative")
	ErrNotFound        = errors.New("not found")
	ErrTitleTooLong    = errors.New("title too long (max 200 characters)")
)

const maxTitleLength = 200

var repetitionTypeOrder = []RepetitionType{Daily, Weekly, Biweekly, Monthly, Yearly, Custom}

// RepetitionTypes lists the supported recurrence rules in display order.
func RepetitionTypes() []RepetitionType {
	return append([]RepetitionType(nil), repetitionTypeOrder...)
}

// IsValid reports whether r is a known recurrence rule.
func (r RepetitionType) IsValid() bool {
	for _, known := range repetitionTypeOrder {
		if r == known {
			return true
		}
	}
	return false
}

// IsValid reports whether c is a known cadence.
func (c Cadence) IsValid() bool {
	switch c {
	case CadenceDaily, CadenceWeekly, CadenceMonthly:
		return true
	}
	return false
}

// OrDefault returns c, or monthly when c is empty or unknown.
func (c Cadence) OrDefault() Cadence {
	if c.IsValid() {
		return c
	}
	return CadenceMonthly
}

// IsValid reports whether t is income or expense.
func (t EntryType) IsValid() bool {
	return t == Income || t == Expense
}

func (e Entry) Validate() error {
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(strings.TrimSpace(e.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(e.Title) > maxTitleLength {
		return ErrTitleTooLong
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !e.Type.IsValid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// Transaction converts the entry into the shape consumed by the budget engine.
func (e Entry) Transaction() *Transaction {
	return &Transaction{Amount: e.Amount, Type: string(e.Type)}
}

func (t RecurringTemplate) Validate() error {
	if len(strings.TrimSpace(t.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(t.Title) > maxTitleLength {
		return ErrTitleTooLong
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if !t.Every.IsValid() {
		return ErrInvalidRule
	}
	if t.Every == Custom && t.IntervalDays < 1 {
		return ErrInvalidInterval
	}
	if t.NextOccurrence != nil && t.EndDate != nil && t.EndDate.Before(*t.NextOccurrence) {
		return ErrInvalidEndDate
	}
	return nil
}

// Instance materializes one occurrence of the series as a ledger entry.
func (t RecurringTemplate) Instance(id string, date, now time.Time) Entry {
	return Entry{
		ID:         id,
		Title:      t.Title,
		Amount:     t.Amount,
		Type:       t.Type,
		Category:   t.Category,
		Date:       date,
		TemplateID: t.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if b.Limit.IsNegative() {
		return ErrNegativeLimit
	}
	if b.Cadence != "" && !b.Cadence.IsValid() {
		return ErrInvalidCadence
	}
	return nil
}

// Clone returns a deep copy so callers can hand budgets to the engines
// without sharing slices.
func (b Budget) Clone() Budget {
	out := b
	if b.PercentUsed != nil {
		p := *b.PercentUsed
		out.PercentUsed = &p
	}
	out.Thresholds = append([]float64(nil), b.Thresholds...)
	out.Alerts.Triggered = append([]float64(nil), b.Alerts.Triggered...)
	return out
}

// NormalizeThresholds drops non-finite values and clamps the rest to [0, 100].
// An empty result falls back to DefaultThresholds.
func NormalizeThresholds(in []float64) []float64 {
	out := make([]float64, 0, len(in))
	for _, v := range in {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, math.Min(math.Max(v, 0), 100))
	}
	if len(out) == 0 {
		return append([]float64(nil), DefaultThresholds...)
	}
	return out
}

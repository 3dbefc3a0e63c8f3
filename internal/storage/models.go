package storage

import "database/sql"

// Row types mirror the tables in migrations/. Amounts are decimal strings and
// instants are fixed-width UTC strings so they sort lexically.

type Entry struct {
	ID         string
	Title      string
	Amount     string
	Type       string
	Category   string
	Date       string
	TemplateID sql.NullString
	CreatedAt  string
	UpdatedAt  string
}

type RecurringTemplate struct {
	ID                     string
	Title                  string
	Amount                 string
	Type                   string
	Category               string
	Rule                   string
	IntervalDays           int64
	Active                 bool
	NextOccurrence         sql.NullString
	EndDate                sql.NullString
	RemindOneDayBefore     bool
	ReminderNotificationID string
	CreatedAt              string
	UpdatedAt              string
}

type Budget struct {
	ID             string
	Name           string
	CategoryID     string
	LimitAmount    string
	Spent          string
	PercentUsed    sql.NullFloat64
	Cadence        string
	Thresholds     string
	Rollover       bool
	PeriodStart    string
	AlertPeriodKey string
	AlertTriggered string
	LastUpdatedAt  string
}

type Inbox struct {
	Handle    string
	Kind      string
	Title     string
	Body      string
	Severity  string
	FireAt    sql.NullString
	CreatedAt string
	Cancelled bool
}

package notify

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hustleledger/internal/core"
)

const (
	recurringAddedTitle = "Recurring Transaction Added"
	reminderTitle       = "Upcoming Recurring Transaction"
	reminderHour        = 9
	defaultBudgetName   = "budget"
)

// BudgetAlert builds the immediate notification for a crossed threshold.
func BudgetAlert(name string, threshold, percentUsed float64) Notification {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultBudgetName
	}
	rounded := strconv.FormatFloat(math.Round(percentUsed), 'f', -1, 64)
	body := fmt.Sprintf("You've crossed %s%% of your %s budget (%s%% spent).",
		strconv.FormatFloat(threshold, 'f', -1, 64), name, rounded)
	if threshold >= 100 {
		body = fmt.Sprintf("You've exceeded your %s budget. %s%% spent.", name, rounded)
	}
	return Notification{
		Title: name + " budget alert",
		Body:  body,
	}
}

// BudgetSeverity picks the haptic pattern for a crossed threshold.
func BudgetSeverity(threshold float64) Severity {
	if threshold >= 100 {
		return SeverityError
	}
	return SeverityWarning
}

// RecurringAdded builds the notification sent when the sweep materializes an
// occurrence. The date label uses occurrence's location.
func RecurringAdded(title string, amount decimal.Decimal, occurrence time.Time) Notification {
	return Notification{
		Title: recurringAddedTitle,
		Body:  fmt.Sprintf("%s %s added for %s", title, core.FormatUSD(amount), occurrence.Format("Jan 2")),
	}
}

// Reminder builds the "due tomorrow" notification for the template's next
// occurrence, firing at 09:00 in loc the day before. It reports false when the
// template wants no reminder or the fire time is not after now.
func Reminder(t core.RecurringTemplate, now time.Time, loc *time.Location) (Notification, bool) {
	if !t.RemindOneDayBefore || t.NextOccurrence == nil {
		return Notification{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	occ := t.NextOccurrence.In(loc).AddDate(0, 0, -1)
	fireAt := time.Date(occ.Year(), occ.Month(), occ.Day(), reminderHour, 0, 0, 0, loc)
	if !fireAt.After(now) {
		return Notification{}, false
	}
	return Notification{
		Title:  reminderTitle,
		Body:   t.Title + " is scheduled for tomorrow",
		FireAt: &fireAt,
	}, true
}

package recurrence

import (
	"fmt"
	"time"

	"hustleledger/internal/core"
)

// Result is the outcome of a catch-up walk over a template.
type Result struct {
	// Occurrences are the due dates in chronological order.
	Occurrences []time.Time
	// NextOccurrence is the first date after the walk, nil when the series is exhausted.
	NextOccurrence *time.Time
}

// NextDate advances from by exactly one step of rule. It reports false when
// from is zero or the rule is empty or unknown; callers treat that as
// "no further occurrences".
func NextDate(from time.Time, rule core.RepetitionType, intervalDays int) (time.Time, bool) {
	if from.IsZero() || rule == "" {
		return time.Time{}, false
	}
	s, err := GetStepper(rule)
	if err != nil {
		return time.Time{}, false
	}
	return s.Next(from, intervalDays), true
}

// NextDateString is NextDate for ISO-8601 input as read from storage.
func NextDateString(from string, rule core.RepetitionType, intervalDays int, loc *time.Location) (time.Time, bool) {
	base, ok := ParseInstant(from, loc)
	if !ok {
		return time.Time{}, false
	}
	return NextDate(base, rule, intervalDays)
}

// GenerateOccurrencesUntil walks the template forward from its next occurrence
// and returns every occurrence at or before ref. The walk stops at the end
// date, in which case the series is exhausted and NextOccurrence is nil.
func GenerateOccurrencesUntil(t core.RecurringTemplate, ref time.Time) Result {
	if !t.Active || t.NextOccurrence == nil {
		return Result{}
	}

	next := *t.NextOccurrence
	end := t.EndDate
	var occurrences []time.Time

	for !next.After(ref) {
		if end != nil && next.After(*end) {
			return Result{Occurrences: occurrences}
		}
		occurrences = append(occurrences, next)

		candidate, ok := NextDate(next, t.Every, t.IntervalDays)
		if !ok || !candidate.After(next) {
			return Result{Occurrences: occurrences}
		}
		if end != nil && candidate.After(*end) {
			return Result{Occurrences: occurrences}
		}
		next = candidate
	}

	if end != nil && next.After(*end) {
		return Result{Occurrences: occurrences}
	}
	return Result{Occurrences: occurrences, NextOccurrence: &next}
}

// IsFinished reports whether the series has ended as of ref: it is inactive,
// or its end date lies before the start of ref's day.
func IsFinished(t core.RecurringTemplate, ref time.Time) bool {
	if !t.Active {
		return true
	}
	if t.EndDate == nil {
		return false
	}
	return t.EndDate.Before(StartOfDay(ref))
}

// FormatLabel describes the template's rule for display.
func FormatLabel(t core.RecurringTemplate) string {
	if !t.Active {
		return "Not recurring"
	}
	switch t.Every {
	case core.Daily:
		return "Repeats daily"
	case core.Weekly:
		return "Repeats weekly"
	case core.Biweekly:
		return "Repeats every 2 weeks"
	case core.Monthly:
		return "Repeats monthly"
	case core.Yearly:
		return "Repeats yearly"
	case core.Custom:
		interval := t.IntervalDays
		if interval == 0 {
			interval = 1
		}
		if interval == 1 {
			return "Repeats every day"
		}
		return fmt.Sprintf("Repeats every %d days", interval)
	default:
		return "Recurring"
	}
}

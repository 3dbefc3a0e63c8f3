package budget

import (
	"fmt"
	"time"

	"hustleledger/internal/core"
)

const invalidPeriodKey = "invalid"

// PeriodKey identifies the accounting period containing t, in t's location:
// "2024-10-05" for daily, "2024-W40" (ISO week) for weekly and "2024-10" for
// monthly. An unknown cadence is treated as monthly.
func PeriodKey(t time.Time, cadence core.Cadence) string {
	if t.IsZero() {
		return invalidPeriodKey
	}
	switch cadence.OrDefault() {
	case core.CadenceDaily:
		return t.Format("2006-01-02")
	case core.CadenceWeekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	default:
		return t.Format("2006-01")
	}
}

// PeriodStart returns midnight of the first day of the period containing t.
// Weeks start on Monday.
func PeriodStart(t time.Time, cadence core.Cadence) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch cadence.OrDefault() {
	case core.CadenceDaily:
		return day
	case core.CadenceWeekly:
		wd := int(day.Weekday())
		if wd == 0 {
			wd = 7
		}
		return day.AddDate(0, 0, 1-wd)
	default:
		return day.AddDate(0, 0, 1-day.Day())
	}
}

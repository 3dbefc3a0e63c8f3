package recurrence

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"hustleledger/internal/core"
)

func utc(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDate(t *testing.T) {
	base := utc(2024, 9, 1)

	tests := []struct {
		name     string
		rule     core.RepetitionType
		interval int
		want     string
	}{
		{"daily", core.Daily, 0, "2024-09-02T00:00:00.000Z"},
		{"weekly", core.Weekly, 0, "2024-09-08T00:00:00.000Z"},
		{"biweekly", core.Biweekly, 0, "2024-09-15T00:00:00.000Z"},
		{"monthly", core.Monthly, 0, "2024-10-01T00:00:00.000Z"},
		{"yearly", core.Yearly, 0, "2025-09-01T00:00:00.000Z"},
		{"custom 10 days", core.Custom, 10, "2024-09-11T00:00:00.000Z"},
		{"custom zero coerced to one", core.Custom, 0, "2024-09-02T00:00:00.000Z"},
		{"custom negative coerced to one", core.Custom, -4, "2024-09-02T00:00:00.000Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NextDate(base, tt.rule, tt.interval)
			if !ok {
				t.Fatalf("NextDate(%s) returned no date", tt.rule)
			}
			if s := got.UTC().Format("2006-01-02T15:04:05.000Z"); s != tt.want {
				t.Errorf("NextDate(%s) = %s, want %s", tt.rule, s, tt.want)
			}
		})
	}
}

func TestNextDateRejectsBadInput(t *testing.T) {
	if _, ok := NextDate(time.Time{}, core.Daily, 0); ok {
		t.Error("zero base date should yield no date")
	}
	if _, ok := NextDate(utc(2024, 9, 1), "", 0); ok {
		t.Error("empty rule should yield no date")
	}
	if _, ok := NextDate(utc(2024, 9, 1), "hourly", 0); ok {
		t.Error("unknown rule should yield no date")
	}
	if _, ok := NextDateString("not-a-date", core.Weekly, 0, time.UTC); ok {
		t.Error("unparseable date should yield no date")
	}
}

func TestNextDateString(t *testing.T) {
	got, ok := NextDateString("2024-09-01T00:00:00Z", core.Monthly, 0, time.UTC)
	if !ok || !got.Equal(utc(2024, 10, 1)) {
		t.Fatalf("got %v (ok=%v), want 2024-10-01", got, ok)
	}

	got, ok = NextDateString("2024-09-01", core.Weekly, 0, time.UTC)
	if !ok || !got.Equal(utc(2024, 9, 8)) {
		t.Fatalf("date-only input: got %v (ok=%v), want 2024-09-08", got, ok)
	}
}

func TestMonthEndClamping(t *testing.T) {
	cases := []struct {
		from time.Time
		rule core.RepetitionType
		want time.Time
	}{
		{utc(2024, 1, 31), core.Monthly, utc(2024, 2, 29)},
		{utc(2023, 1, 31), core.Monthly, utc(2023, 2, 28)},
		{utc(2024, 2, 29), core.Monthly, utc(2024, 3, 29)},
		{utc(2024, 12, 31), core.Monthly, utc(2025, 1, 31)},
		{utc(2024, 2, 29), core.Yearly, utc(2025, 2, 28)},
	}
	for _, tc := range cases {
		got, _ := NextDate(tc.from, tc.rule, 0)
		if !got.Equal(tc.want) {
			t.Errorf("NextDate(%s, %s) = %s, want %s", tc.from.Format("2006-01-02"), tc.rule, got.Format("2006-01-02"), tc.want.Format("2006-01-02"))
		}
	}
}

func TestNextDateIsStrictlyIncreasing(t *testing.T) {
	for _, rule := range core.RepetitionTypes() {
		t.Run(string(rule), func(t *testing.T) {
			current := utc(2024, 1, 31)
			seen := map[time.Time]bool{current: true}
			for i := 0; i < 60; i++ {
				next, ok := NextDate(current, rule, 3)
				if !ok {
					t.Fatalf("step %d: no date", i)
				}
				if !next.After(current) {
					t.Fatalf("step %d: %s does not advance past %s", i, next, current)
				}
				if seen[next] {
					t.Fatalf("step %d: duplicate date %s", i, next)
				}
				seen[next] = true
				current = next
			}
		})
	}
}

func weeklyTemplate(next time.Time) core.RecurringTemplate {
	return core.RecurringTemplate{
		ID:             "tmpl-weekly",
		Title:          "Groceries",
		Amount:         decimal.NewFromInt(80),
		Type:           core.Expense,
		Every:          core.Weekly,
		Active:         true,
		NextOccurrence: &next,
	}
}

func TestGenerateOccurrencesUntilCatchesUpMissedDates(t *testing.T) {
	tmpl := weeklyTemplate(utc(2024, 9, 1))

	res := GenerateOccurrencesUntil(tmpl, utc(2024, 9, 29))

	want := []time.Time{utc(2024, 9, 1), utc(2024, 9, 8), utc(2024, 9, 15), utc(2024, 9, 22), utc(2024, 9, 29)}
	if len(res.Occurrences) != len(want) {
		t.Fatalf("expected %d occurrences, got %d: %v", len(want), len(res.Occurrences), res.Occurrences)
	}
	for i := range want {
		if !res.Occurrences[i].Equal(want[i]) {
			t.Errorf("occurrence %d = %s, want %s", i, res.Occurrences[i], want[i])
		}
	}
	if res.NextOccurrence == nil || !res.NextOccurrence.Equal(utc(2024, 10, 6)) {
		t.Fatalf("expected next occurrence 2024-10-06, got %v", res.NextOccurrence)
	}
}

func TestGenerateOccurrencesUntilCompleteness(t *testing.T) {
	for _, rule := range core.RepetitionTypes() {
		t.Run(string(rule), func(t *testing.T) {
			start := utc(2023, 3, 31)
			tmpl := core.RecurringTemplate{Every: rule, IntervalDays: 5, Active: true, NextOccurrence: &start}

			const n = 7
			last := start
			for i := 1; i < n; i++ {
				last, _ = NextDate(last, rule, 5)
			}

			res := GenerateOccurrencesUntil(tmpl, last)
			if len(res.Occurrences) != n {
				t.Fatalf("expected %d occurrences, got %d", n, len(res.Occurrences))
			}
			wantNext, _ := NextDate(last, rule, 5)
			if res.NextOccurrence == nil || !res.NextOccurrence.Equal(wantNext) {
				t.Fatalf("expected next %s, got %v", wantNext, res.NextOccurrence)
			}
		})
	}
}

func TestGenerateOccurrencesUntilStopsAtEndDate(t *testing.T) {
	tmpl := weeklyTemplate(utc(2024, 9, 1))
	end := utc(2024, 9, 15)
	tmpl.EndDate = &end

	res := GenerateOccurrencesUntil(tmpl, utc(2024, 9, 29))

	if len(res.Occurrences) != 3 {
		t.Fatalf("expected 3 occurrences up to the end date, got %d", len(res.Occurrences))
	}
	if res.NextOccurrence != nil {
		t.Fatalf("exhausted series should have no next occurrence, got %v", res.NextOccurrence)
	}
}

func TestGenerateOccurrencesUntilNothingDue(t *testing.T) {
	tmpl := weeklyTemplate(utc(2024, 10, 6))

	res := GenerateOccurrencesUntil(tmpl, utc(2024, 9, 29))

	if len(res.Occurrences) != 0 {
		t.Fatalf("expected no occurrences, got %v", res.Occurrences)
	}
	if res.NextOccurrence == nil || !res.NextOccurrence.Equal(utc(2024, 10, 6)) {
		t.Fatalf("pointer should be unchanged, got %v", res.NextOccurrence)
	}
}

func TestGenerateOccurrencesUntilPointerPastEndDate(t *testing.T) {
	tmpl := weeklyTemplate(utc(2024, 10, 6))
	end := utc(2024, 10, 1)
	tmpl.EndDate = &end

	res := GenerateOccurrencesUntil(tmpl, utc(2024, 9, 29))
	if len(res.Occurrences) != 0 || res.NextOccurrence != nil {
		t.Fatalf("expected exhausted empty result, got %+v", res)
	}
}

func TestGenerateOccurrencesUntilInactive(t *testing.T) {
	tmpl := weeklyTemplate(utc(2024, 9, 1))
	tmpl.Active = false
	if res := GenerateOccurrencesUntil(tmpl, utc(2024, 9, 29)); len(res.Occurrences) != 0 || res.NextOccurrence != nil {
		t.Fatalf("inactive template should produce nothing, got %+v", res)
	}

	tmpl = weeklyTemplate(utc(2024, 9, 1))
	tmpl.NextOccurrence = nil
	if res := GenerateOccurrencesUntil(tmpl, utc(2024, 9, 29)); len(res.Occurrences) != 0 || res.NextOccurrence != nil {
		t.Fatalf("template without pointer should produce nothing, got %+v", res)
	}
}

func TestIsFinished(t *testing.T) {
	ref := time.Date(2024, 9, 10, 15, 0, 0, 0, time.UTC)
	endBefore := utc(2024, 9, 9)
	endSameDay := utc(2024, 9, 10)

	tmpl := weeklyTemplate(utc(2024, 9, 1))
	if IsFinished(tmpl, ref) {
		t.Error("open-ended series should not be finished")
	}
	tmpl.EndDate = &endSameDay
	if IsFinished(tmpl, ref) {
		t.Error("series ending today should not be finished")
	}
	tmpl.EndDate = &endBefore
	if !IsFinished(tmpl, ref) {
		t.Error("series ending yesterday should be finished")
	}
	tmpl.Active = false
	tmpl.EndDate = nil
	if !IsFinished(tmpl, ref) {
		t.Error("inactive series should be finished")
	}
}

func TestFormatLabel(t *testing.T) {
	tests := []struct {
		tmpl core.RecurringTemplate
		want string
	}{
		{core.RecurringTemplate{Active: false, Every: core.Daily}, "Not recurring"},
		{core.RecurringTemplate{Active: true, Every: core.Daily}, "Repeats daily"},
		{core.RecurringTemplate{Active: true, Every: core.Weekly}, "Repeats weekly"},
		{core.RecurringTemplate{Active: true, Every: core.Biweekly}, "Repeats every 2 weeks"},
		{core.RecurringTemplate{Active: true, Every: core.Monthly}, "Repeats monthly"},
		{core.RecurringTemplate{Active: true, Every: core.Yearly}, "Repeats yearly"},
		{core.RecurringTemplate{Active: true, Every: core.Custom, IntervalDays: 1}, "Repeats every day"},
		{core.RecurringTemplate{Active: true, Every: core.Custom}, "Repeats every day"},
		{core.RecurringTemplate{Active: true, Every: core.Custom, IntervalDays: 10}, "Repeats every 10 days"},
		{core.RecurringTemplate{Active: true, Every: "hourly"}, "Recurring"},
	}
	for _, tt := range tests {
		if got := FormatLabel(tt.tmpl); got != tt.want {
			t.Errorf("FormatLabel(%s/%d) = %q, want %q", tt.tmpl.Every, tt.tmpl.IntervalDays, got, tt.want)
		}
	}
}

func TestRegisterStepper(t *testing.T) {
	const quarterly core.RepetitionType = "quarterly"
	RegisterStepper(quarterly, StepperFunc(func(from time.Time, _ int) time.Time {
		return AddMonths(from, 3)
	}))
	defer delete(steppers, quarterly)

	got, ok := NextDate(utc(2024, 11, 30), quarterly, 0)
	if !ok || !got.Equal(utc(2025, 2, 28)) {
		t.Fatalf("got %v (ok=%v), want 2025-02-28", got, ok)
	}
	if _, ok := ParseRule("quarterly"); !ok {
		t.Fatal("registered rule should parse")
	}
}

func TestParseInstant(t *testing.T) {
	cases := map[string]time.Time{
		"2024-09-01T00:00:00.000Z":  utc(2024, 9, 1),
		"2024-09-01T02:00:00+02:00": utc(2024, 9, 1),
		"2024-09-01":                utc(2024, 9, 1),
		"2024-09-01T00:00:00":       utc(2024, 9, 1),
	}
	for in, want := range cases {
		got, ok := ParseInstant(in, time.UTC)
		if !ok || !got.Equal(want) {
			t.Errorf("ParseInstant(%q) = %v (ok=%v), want %v", in, got, ok, want)
		}
	}
	if _, ok := ParseInstant("", time.UTC); ok {
		t.Error("empty input should not parse")
	}
}

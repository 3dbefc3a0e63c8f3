// Package recurrence computes occurrence dates for recurring transactions.
//
// Each repetition type has its own Stepper that advances a date by exactly one
// step; the steppers live in a registry so new rules can be added without
// touching the occurrence walker.
package recurrence

import (
	"fmt"
	"time"

	"hustleledger/internal/core"
)

// Stepper advances a date by one recurrence step. intervalDays is only
// meaningful for custom rules.
type Stepper interface {
	Next(from time.Time, intervalDays int) time.Time
}

// StepperFunc adapts a function to the Stepper interface.
type StepperFunc func(from time.Time, intervalDays int) time.Time

// Next implements Stepper.
func (f StepperFunc) Next(from time.Time, intervalDays int) time.Time {
	return f(from, intervalDays)
}

func fixedDays(n int) Stepper {
	return StepperFunc(func(from time.Time, _ int) time.Time {
		return AddDays(from, n)
	})
}

// CustomStepper advances by a caller-chosen number of days. Intervals below
// one day are coerced to one so the walk always moves forward.
type CustomStepper struct{}

// Next implements Stepper.
func (CustomStepper) Next(from time.Time, intervalDays int) time.Time {
	return AddDays(from, SafeInterval(intervalDays))
}

// steppers maps repetition types to their corresponding steppers.
var steppers = map[core.RepetitionType]Stepper{
	core.Daily:    fixedDays(1),
	core.Weekly:   fixedDays(7),
	core.Biweekly: fixedDays(14),
	core.Monthly: StepperFunc(func(from time.Time, _ int) time.Time {
		return AddMonths(from, 1)
	}),
	core.Yearly: StepperFunc(func(from time.Time, _ int) time.Time {
		return AddYears(from, 1)
	}),
	core.Custom: CustomStepper{},
}

// GetStepper returns the stepper for a repetition type.
// Returns an error if the repetition type is not supported.
func GetStepper(rule core.RepetitionType) (Stepper, error) {
	s, ok := steppers[rule]
	if !ok {
		return nil, fmt.Errorf("unknown repetition type: %q", rule)
	}
	return s, nil
}

// RegisterStepper registers a stepper for a new repetition type. It is meant
// to be called from init functions; the registry is not synchronized.
func RegisterStepper(rule core.RepetitionType, s Stepper) {
	steppers[rule] = s
}

// ParseRule maps a stored rule name to a repetition type.
func ParseRule(s string) (core.RepetitionType, bool) {
	rule := core.RepetitionType(s)
	if _, ok := steppers[rule]; !ok {
		return "", false
	}
	return rule, true
}

// SafeInterval coerces a custom interval to at least one day.
func SafeInterval(intervalDays int) int {
	if intervalDays < 1 {
		return 1
	}
	return intervalDays
}

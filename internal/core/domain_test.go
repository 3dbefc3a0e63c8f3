package core

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestEntryValidate(t *testing.T) {
	date := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	good := Entry{
		Date:     date,
		Title:    "ok",
		Amount:   decimal.NewFromInt(10),
		Type:     Expense,
		Category: "Dining",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Entry{
		{Title: "a", Amount: decimal.NewFromInt(1), Type: Expense, Category: "c"}, // zero date
		{Date: date, Title: " ", Amount: decimal.NewFromInt(1), Type: Expense, Category: "c"},
		{Date: date, Title: "a", Amount: decimal.Zero, Type: Expense, Category: "c"},
		{Date: date, Title: "a", Amount: decimal.NewFromInt(1), Type: "transfer", Category: "c"},
		{Date: date, Title: "a", Amount: decimal.NewFromInt(1), Type: Income, Category: ""},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestRecurringTemplateValidate(t *testing.T) {
	next := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	before := next.AddDate(0, 0, -1)
	base := RecurringTemplate{
		Title:          "Rent",
		Amount:         decimal.NewFromInt(1200),
		Type:           Expense,
		Every:          Monthly,
		Active:         true,
		NextOccurrence: &next,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*RecurringTemplate)
		want   error
	}{
		{"unknown rule", func(r *RecurringTemplate) { r.Every = "hourly" }, ErrInvalidRule},
		{"custom without interval", func(r *RecurringTemplate) { r.Every = Custom }, ErrInvalidInterval},
		{"end before next", func(r *RecurringTemplate) { r.EndDate = &before }, ErrInvalidEndDate},
		{"zero amount", func(r *RecurringTemplate) { r.Amount = decimal.Zero }, ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := base
			tt.mutate(&tmpl)
			if err := tmpl.Validate(); err != tt.want {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTemplateInstance(t *testing.T) {
	tmpl := RecurringTemplate{ID: "tmpl-1", Title: "Gym", Amount: decimal.NewFromInt(30), Type: Expense, Category: "Health"}
	date := time.Date(2024, 9, 8, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 9, 9, 10, 0, 0, 0, time.UTC)

	e := tmpl.Instance("entry-1", date, now)
	if e.TemplateID != "tmpl-1" || !e.Date.Equal(date) || e.Category != "Health" {
		t.Fatalf("unexpected instance: %+v", e)
	}
	if err := e.Validate(); err != nil {
		t.Fatalf("instance should validate: %v", err)
	}
}

func TestBudgetCloneIsDeep(t *testing.T) {
	p := 30.0
	b := Budget{PercentUsed: &p, Thresholds: []float64{50}, Alerts: AlertState{Triggered: []float64{50}}}
	c := b.Clone()
	*c.PercentUsed = 99
	c.Thresholds[0] = 10
	c.Alerts.Triggered[0] = 10
	if *b.PercentUsed != 30 || b.Thresholds[0] != 50 || b.Alerts.Triggered[0] != 50 {
		t.Fatalf("clone shares state with original: %+v", b)
	}
}

func TestNormalizeThresholds(t *testing.T) {
	cases := []struct {
		in   []float64
		want []float64
	}{
		{nil, []float64{50, 80, 100}},
		{[]float64{math.NaN(), math.Inf(1)}, []float64{50, 80, 100}},
		{[]float64{-5, 75, 140}, []float64{0, 75, 100}},
	}
	for _, tc := range cases {
		if got := NormalizeThresholds(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("NormalizeThresholds(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestCadenceOrDefault(t *testing.T) {
	if CadenceWeekly.OrDefault() != CadenceWeekly {
		t.Fatal("weekly should be kept")
	}
	if Cadence("").OrDefault() != CadenceMonthly || Cadence("fortnight").OrDefault() != CadenceMonthly {
		t.Fatal("unknown cadence should default to monthly")
	}
}

func TestTransactionUnmarshalIsLenient(t *testing.T) {
	var tx Transaction
	if err := json.Unmarshal([]byte(`{"amount":"oops","type":"expense","isExpense":true}`), &tx); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !tx.Amount.IsZero() || tx.Type != "expense" || tx.IsExpense == nil || !*tx.IsExpense {
		t.Fatalf("unexpected transaction: %+v", tx)
	}

	if err := json.Unmarshal([]byte(`{"amount":-25.5,"direction":"out"}`), &tx); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !tx.Amount.Equal(decimal.RequireFromString("-25.5")) || tx.Direction != "out" || tx.IsExpense != nil {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
}

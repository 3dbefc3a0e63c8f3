// Package storetest holds the behaviour every ports.Store backend must share.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"hustleledger/internal/core"
	"hustleledger/internal/ports"
)

// Run exercises a fresh store returned by newStore.
func Run(t *testing.T, newStore func(t *testing.T) ports.Store) {
	t.Run("entries", func(t *testing.T) { testEntries(t, newStore(t)) })
	t.Run("templates", func(t *testing.T) { testTemplates(t, newStore(t)) })
	t.Run("budgets", func(t *testing.T) { testBudgets(t, newStore(t)) })
	t.Run("kv", func(t *testing.T) { testKV(t, newStore(t)) })
	t.Run("inbox", func(t *testing.T) { testInbox(t, newStore(t)) })
}

var base = time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)

func entry(id, category, templateID string, day int) core.Entry {
	return core.Entry{
		ID:         id,
		Title:      "entry " + id,
		Amount:     decimal.RequireFromString("12.34"),
		Type:       core.Expense,
		Category:   category,
		Date:       base.AddDate(0, 0, day),
		TemplateID: templateID,
		CreatedAt:  base,
		UpdatedAt:  base,
	}
}

func testEntries(t *testing.T, s ports.Store) {
	ctx := context.Background()
	for _, e := range []core.Entry{
		entry("a", "Food", "", 0),
		entry("b", "Food", "tmpl", 7),
		entry("c", "Rent", "tmpl", 14),
	} {
		if err := s.SaveEntry(ctx, e); err != nil {
			t.Fatalf("SaveEntry(%s): %v", e.ID, err)
		}
	}

	got, err := s.GetEntry(ctx, "b")
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if !got.Amount.Equal(decimal.RequireFromString("12.34")) || got.TemplateID != "tmpl" || !got.Date.Equal(base.AddDate(0, 0, 7)) {
		t.Errorf("round trip mismatch: %+v", got)
	}

	all, err := s.ListEntries(ctx, ports.EntryFilter{})
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(all) != 3 || all[0].ID != "c" || all[2].ID != "a" {
		t.Errorf("ListEntries order = %v, want newest first", ids(all))
	}

	food, _ := s.ListEntries(ctx, ports.EntryFilter{Category: "Food"})
	if len(food) != 2 {
		t.Errorf("category filter returned %v", ids(food))
	}
	window, _ := s.ListEntries(ctx, ports.EntryFilter{From: base.AddDate(0, 0, 1), To: base.AddDate(0, 0, 14)})
	if len(window) != 1 || window[0].ID != "b" {
		t.Errorf("date window returned %v, want [b]", ids(window))
	}

	n, err := s.DeleteEntriesByTemplate(ctx, "tmpl")
	if err != nil || n != 2 {
		t.Errorf("DeleteEntriesByTemplate = %d, %v; want 2", n, err)
	}
	if err := s.DeleteEntry(ctx, "a"); err != nil {
		t.Errorf("DeleteEntry: %v", err)
	}
	if _, err := s.GetEntry(ctx, "a"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetEntry after delete = %v, want ErrNotFound", err)
	}
	if err := s.DeleteEntry(ctx, "a"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("DeleteEntry twice = %v, want ErrNotFound", err)
	}
}

func testTemplates(t *testing.T, s ports.Store) {
	ctx := context.Background()
	next := base.AddDate(0, 1, 0)
	end := base.AddDate(1, 0, 0)
	active := core.RecurringTemplate{
		ID: "t1", Title: "Rent", Amount: decimal.NewFromInt(1200), Type: core.Expense, Category: "Housing",
		Every: core.Monthly, Active: true, NextOccurrence: &next, EndDate: &end,
		RemindOneDayBefore: true, ReminderNotificationID: "h1", CreatedAt: base, UpdatedAt: base,
	}
	stopped := core.RecurringTemplate{
		ID: "t2", Title: "Gym", Amount: decimal.NewFromInt(30), Type: core.Expense, Category: "Health",
		Every: core.Custom, IntervalDays: 10, CreatedAt: base.Add(time.Hour), UpdatedAt: base,
	}
	for _, tm := range []core.RecurringTemplate{active, stopped} {
		if err := s.SaveTemplate(ctx, tm); err != nil {
			t.Fatalf("SaveTemplate: %v", err)
		}
	}

	got, err := s.GetTemplate(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTemplate: %v", err)
	}
	if got.NextOccurrence == nil || !got.NextOccurrence.Equal(next) || got.EndDate == nil || !got.EndDate.Equal(end) {
		t.Errorf("pointer dates lost: %+v", got)
	}
	if !got.RemindOneDayBefore || got.ReminderNotificationID != "h1" || got.Every != core.Monthly {
		t.Errorf("fields lost: %+v", got)
	}

	g2, _ := s.GetTemplate(ctx, "t2")
	if g2.NextOccurrence != nil || g2.IntervalDays != 10 || g2.Active {
		t.Errorf("t2 round trip: %+v", g2)
	}

	list, _ := s.ListTemplates(ctx, true)
	if len(list) != 1 || list[0].ID != "t1" {
		t.Errorf("active templates = %d", len(list))
	}
	list, _ = s.ListTemplates(ctx, false)
	if len(list) != 2 {
		t.Errorf("all templates = %d", len(list))
	}

	if err := s.DeleteTemplate(ctx, "t2"); err != nil {
		t.Errorf("DeleteTemplate: %v", err)
	}
	if _, err := s.GetTemplate(ctx, "t2"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetTemplate after delete = %v", err)
	}
}

func testBudgets(t *testing.T, s ports.Store) {
	ctx := context.Background()
	pct := 66.67
	b := core.Budget{
		ID: "b1", Name: "Groceries", CategoryID: "Food",
		Limit: decimal.NewFromInt(300), Spent: decimal.NewFromInt(200), PercentUsed: &pct,
		Cadence: core.CadenceWeekly, Thresholds: []float64{25, 75}, Rollover: true,
		PeriodStart: base, Alerts: core.AlertState{PeriodKey: "2024-W35", Triggered: []float64{25}},
		LastUpdatedAt: base,
	}
	if err := s.SaveBudget(ctx, b); err != nil {
		t.Fatalf("SaveBudget: %v", err)
	}
	if err := s.SaveBudget(ctx, core.Budget{ID: "b2", Name: "Fun", CategoryID: "Leisure", Limit: decimal.NewFromInt(50)}); err != nil {
		t.Fatalf("SaveBudget: %v", err)
	}

	got, err := s.GetBudget(ctx, "b1")
	if err != nil {
		t.Fatalf("GetBudget: %v", err)
	}
	if got.PercentUsed == nil || *got.PercentUsed != pct || !got.Spent.Equal(b.Spent) || !got.Rollover {
		t.Errorf("budget round trip: %+v", got)
	}
	if len(got.Thresholds) != 2 || len(got.Alerts.Triggered) != 1 || got.Alerts.PeriodKey != "2024-W35" {
		t.Errorf("alert state lost: %+v", got)
	}

	b2, _ := s.GetBudget(ctx, "b2")
	if b2.PercentUsed != nil || b2.Cadence.OrDefault() != core.CadenceMonthly {
		t.Errorf("defaults not applied: %+v", b2)
	}

	food, _ := s.BudgetsByCategory(ctx, "Food")
	if len(food) != 1 || food[0].ID != "b1" {
		t.Errorf("BudgetsByCategory = %+v", food)
	}
	none, _ := s.BudgetsByCategory(ctx, "")
	if len(none) != 0 {
		t.Errorf("empty category should match nothing, got %d", len(none))
	}
	all, _ := s.ListBudgets(ctx)
	if len(all) != 2 || all[0].Name != "Fun" {
		t.Errorf("ListBudgets = %+v", all)
	}

	if err := s.DeleteBudget(ctx, "b2"); err != nil {
		t.Errorf("DeleteBudget: %v", err)
	}
	if _, err := s.GetBudget(ctx, "b2"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetBudget after delete = %v", err)
	}
}

func testKV(t *testing.T, s ports.Store) {
	ctx := context.Background()
	if _, ok, err := s.Get(ctx, "missing"); ok || err != nil {
		t.Errorf("Get(missing) = %v, %v", ok, err)
	}
	if err := s.Set(ctx, "k", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "k", "v2"); err != nil {
		t.Fatal(err)
	}
	if v, ok, _ := s.Get(ctx, "k"); !ok || v != "v2" {
		t.Errorf("Get(k) = %q, %v", v, ok)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("key still present after delete")
	}
}

func testInbox(t *testing.T, s ports.Store) {
	ctx := context.Background()
	fire := base.Add(9 * time.Hour)
	items := []core.InboxItem{
		{Handle: "n1", Kind: core.InboxKindNotification, Title: "t", Body: "b", FireAt: &fire, CreatedAt: base},
		{Handle: "h1", Kind: core.InboxKindHaptic, Severity: core.SeverityError, CreatedAt: base.Add(time.Second)},
	}
	for _, it := range items {
		if err := s.SaveInboxItem(ctx, it); err != nil {
			t.Fatalf("SaveInboxItem: %v", err)
		}
	}
	if err := s.CancelInboxItem(ctx, "n1"); err != nil {
		t.Fatalf("CancelInboxItem: %v", err)
	}
	if err := s.CancelInboxItem(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cancel unknown = %v, want ErrNotFound", err)
	}

	pending, _ := s.ListInbox(ctx, true)
	if len(pending) != 1 || pending[0].Handle != "h1" || pending[0].Severity != core.SeverityError {
		t.Errorf("pending = %+v", pending)
	}
	all, _ := s.ListInbox(ctx, false)
	if len(all) != 2 || !all[0].Cancelled || all[0].FireAt == nil || !all[0].FireAt.Equal(fire) {
		t.Errorf("all = %+v", all)
	}
}

func ids(es []core.Entry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.ID
	}
	return out
}

package cli

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pterm/pterm"

	"hustleledger/internal/backend"
	"hustleledger/internal/config"
	"hustleledger/internal/core"
	"hustleledger/internal/notify"
	"hustleledger/internal/ports"
	"hustleledger/internal/storage/memory"
)

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	os.Exit(m.Run())
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	store := memory.New()
	cfg := &config.Config{
		DataBackend:           "memory",
		RecurringInterval:     time.Hour,
		Timezone:              "UTC",
		BudgetThresholds:      []float64{50, 80, 100},
		DefaultCadence:        core.CadenceMonthly,
		RecordMutedThresholds: true,
	}
	return NewApp(cfg, &backend.BackendResult{
		Store: store,
		Sink:  notify.Fanout{notify.NewInbox(store)},
	}, nil)
}

func run(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(func(context.Context) (*App, error) { return app, nil })
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func mustRun(t *testing.T, app *App, args ...string) string {
	t.Helper()
	out, err := run(t, app, args...)
	if err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

func TestStandaloneCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"monthly clamps", []string{"next-date", "2024-01-31", "monthly"}, "2024-02-29"},
		{"yearly leap day", []string{"next-date", "2024-02-29", "yearly"}, "2025-02-28"},
		{"custom interval", []string{"next-date", "2025-01-01", "custom", "--interval", "10"}, "2025-01-11"},
		{"weekly key", []string{"period-key", "2021-01-03", "--cadence", "weekly"}, "2020-W53"},
		{"monthly key", []string{"period-key", "2025-03-09"}, "2025-03"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, nil, tt.args...)
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if strings.TrimSpace(out) != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}

	if _, err := run(t, nil, "next-date", "2025-01-01", "fortnightly"); err == nil {
		t.Error("unknown rule should fail")
	}
	if _, err := run(t, nil, "period-key", "yesterday"); err == nil {
		t.Error("unparseable date should fail")
	}
}

func TestBudgetFlow(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	out := mustRun(t, app, "budget", "set", "--name", "Food", "--category", "Food", "--limit", "200")
	if !strings.Contains(out, "Budget Food for Food: $200.00 monthly") {
		t.Errorf("budget set output = %q", out)
	}

	today := time.Now().In(time.UTC).Format(dateLayout)
	mustRun(t, app, "add", "--title", "Groceries", "--amount", "120", "--category", "Food", "--date", today)

	out = mustRun(t, app, "budget", "list")
	for _, want := range []string{"Food", "$120.00", "$200.00", "60.00%", "50%"} {
		if !strings.Contains(out, want) {
			t.Errorf("budget list missing %q:\n%s", want, out)
		}
	}

	items, err := app.Store.ListInbox(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Errorf("inbox = %d items, want haptic and alert", len(items))
	}
	out = mustRun(t, app, "inbox")
	if !strings.Contains(out, "Food budget alert") {
		t.Errorf("inbox output = %q", out)
	}

	budgets, _ := app.Store.ListBudgets(ctx)
	out = mustRun(t, app, "budget", "reset", budgets[0].ID)
	if !strings.Contains(out, "Budget Food reset") {
		t.Errorf("reset output = %q", out)
	}

	if _, err := run(t, app, "budget", "set", "--category", "Food", "--limit", "10", "--cadence", "hourly"); err == nil {
		t.Error("invalid cadence should fail")
	}
}

func TestEntryCommands(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	out := mustRun(t, app, "add", "--title", "Rent", "--amount", "1200", "--category", "Housing",
		"--date", "2025-01-31", "--every", "monthly", "--remind")
	if !strings.Contains(out, "Added Rent $1,200.00 on 2025-01-31") || !strings.Contains(out, "Recurring series") {
		t.Errorf("add output = %q", out)
	}

	out = mustRun(t, app, "templates")
	if !strings.Contains(out, "Repeats monthly") || !strings.Contains(out, "2025-02-28") {
		t.Errorf("templates output = %q", out)
	}

	entries, _ := app.Store.ListEntries(ctx, ports.EntryFilter{})
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	id := entries[0].ID

	mustRun(t, app, "edit", id, "--amount", "1250.50")
	out = mustRun(t, app, "entries", "--category", "Housing")
	if !strings.Contains(out, "$1,250.50") {
		t.Errorf("entries output = %q", out)
	}

	mustRun(t, app, "delete", id, "--series")
	out = mustRun(t, app, "entries")
	if !strings.Contains(out, "No entries") {
		t.Errorf("entries after delete = %q", out)
	}
	out = mustRun(t, app, "templates", "--all")
	if !strings.Contains(out, "No recurring series") {
		t.Errorf("templates after delete = %q", out)
	}

	if _, err := run(t, app, "add", "--amount", "abc"); err == nil {
		t.Error("invalid amount should fail")
	}
	if _, err := run(t, app, "edit", "missing", "--title", "x"); err == nil {
		t.Error("editing an unknown entry should fail")
	}
}

func TestSweepCommand(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	next := time.Now().UTC().AddDate(0, 0, -2)
	next = time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, time.UTC)
	if err := app.Store.SaveTemplate(ctx, core.RecurringTemplate{
		ID:             "t-coffee",
		Title:          "Coffee",
		Amount:         core.LooseAmount("4.5"),
		Type:           core.Expense,
		Category:       "Food",
		Every:          core.Daily,
		Active:         true,
		NextOccurrence: &next,
	}); err != nil {
		t.Fatal(err)
	}

	out := mustRun(t, app, "sweep")
	if !strings.Contains(out, "Created 3 entries") {
		t.Errorf("sweep output = %q", out)
	}
	out = mustRun(t, app, "sweep")
	if !strings.Contains(out, "nothing to do") {
		t.Errorf("second sweep output = %q", out)
	}
	out = mustRun(t, app, "sweep", "--force")
	if !strings.Contains(out, "Created 0 entries") {
		t.Errorf("forced sweep output = %q", out)
	}
}

func TestNotificationsCommand(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	mustRun(t, app, "notifications", "budget", "off")
	if on, _ := app.Prefs.BudgetNotificationsEnabled(ctx); on {
		t.Error("budget notifications should be off")
	}
	mustRun(t, app, "notifications", "budget", "reset")
	if on, _ := app.Prefs.BudgetNotificationsEnabled(ctx); !on {
		t.Error("budget notifications should be back on")
	}

	mustRun(t, app, "notifications", "recurring", "off")
	if on, _ := app.Prefs.RecurringNotificationsEnabled(ctx); on {
		t.Error("recurring notifications should be off")
	}

	if _, err := run(t, app, "notifications", "recurring", "maybe"); err == nil {
		t.Error("invalid switch should fail")
	}
}

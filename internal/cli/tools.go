package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"hustleledger/internal/budget"
	"hustleledger/internal/core"
	"hustleledger/internal/recurrence"
	"hustleledger/internal/settings"
)

func (r *runner) sweepCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Create entries for every recurring occurrence that is due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			now := time.Now()
			proc := r.app.Processor
			if !force && !proc.Due(ctx, now, r.app.Config.RecurringInterval) {
				last, _, _ := proc.LastRun(ctx)
				info(cmd.OutOrStdout(), "Last sweep ran %s, nothing to do (use --force)", humanize.Time(last))
				return nil
			}
			n, err := proc.ProcessDue(ctx, now)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Created %s", pluralEntries(n))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "sweep even if the last run is recent")
	return cmd
}

func pluralEntries(n int) string {
	if n == 1 {
		return "1 entry"
	}
	return fmt.Sprintf("%d entries", n)
}

func (r *runner) notificationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Turn budget and recurring notifications on or off",
	}

	budgetCmd := &cobra.Command{
		Use:       "budget on|off|reset",
		Short:     "Budget alert notifications",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off", "reset"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if strings.EqualFold(args[0], "reset") {
				if err := r.app.Prefs.ResetBudgetNotifications(ctx, true); err != nil {
					return err
				}
				success(cmd.OutOrStdout(), "Budget notifications reset to default (on)")
				return nil
			}
			enabled, err := parseSwitch(args[0])
			if err != nil {
				return err
			}
			if err := r.app.Prefs.SetBudgetNotificationsEnabled(ctx, enabled); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Budget notifications %s", args[0])
			return nil
		},
	}

	recurringCmd := &cobra.Command{
		Use:       "recurring on|off",
		Short:     "Recurring entry notifications and reminders",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := parseSwitch(args[0])
			if err != nil {
				return err
			}
			if err := r.app.Ledger.SetRecurringNotifications(cmd.Context(), enabled); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Recurring notifications %s", args[0])
			return nil
		},
	}

	cmd.AddCommand(budgetCmd, recurringCmd)
	return cmd
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "off":
		return settings.ParseBool(s, false), nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

func (r *runner) inboxCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "Show delivered notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := r.app.Store.ListInbox(cmd.Context(), !all)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				info(cmd.OutOrStdout(), "Inbox is empty")
				return nil
			}
			data := pterm.TableData{{"Handle", "Kind", "Title", "Body", "Fires", "Received", "Status"}}
			for _, it := range items {
				title := it.Title
				if it.Kind == core.InboxKindHaptic {
					title = string(it.Severity)
				}
				status := "pending"
				if it.Cancelled {
					status = "cancelled"
				}
				data = append(data, []string{
					shortID(string(it.Handle)),
					it.Kind,
					title,
					it.Body,
					formatDate(it.FireAt),
					humanize.Time(it.CreatedAt),
					status,
				})
			}
			return renderTable(cmd.OutOrStdout(), data)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include cancelled notifications")
	return cmd
}

func nextDateCommand() *cobra.Command {
	var interval int
	cmd := &cobra.Command{
		Use:         "next-date <from> <rule>",
		Short:       "Print the occurrence after from for a repeat rule",
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{standalone: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rule, err := parseRule(args[1])
			if err != nil {
				return err
			}
			next, ok := recurrence.NextDateString(args[0], rule, interval, time.Local)
			if !ok {
				return fmt.Errorf("%w: %q", core.ErrInvalidDate, args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), next.Format(dateLayout))
			return nil
		},
	}
	cmd.Flags().IntVar(&interval, "interval", 0, "days between occurrences for custom rules")
	return cmd
}

func periodKeyCommand() *cobra.Command {
	var cadence string
	cmd := &cobra.Command{
		Use:         "period-key [date]",
		Short:       "Print the budget period key for a date, today by default",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{standalone: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c := core.Cadence(cadence)
			if !c.IsValid() {
				return fmt.Errorf("%w: %q", core.ErrInvalidCadence, cadence)
			}
			t := time.Now()
			if len(args) == 1 {
				var ok bool
				if t, ok = recurrence.ParseInstant(args[0], time.Local); !ok {
					return fmt.Errorf("%w: %q", core.ErrInvalidDate, args[0])
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), budget.PeriodKey(t, c))
			return nil
		},
	}
	cmd.Flags().StringVar(&cadence, "cadence", string(core.CadenceMonthly), "daily, weekly or monthly")
	return cmd
}

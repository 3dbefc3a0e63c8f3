package cli

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"hustleledger/internal/core"
)

func (r *runner) budgetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage budgets",
	}
	cmd.AddCommand(r.budgetSetCommand(), r.budgetListCommand(), r.budgetResetCommand())
	return cmd
}

func (r *runner) budgetSetCommand() *cobra.Command {
	var (
		b                         core.Budget
		limit, cadence, threshold string
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create a budget or change its settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			amt, err := core.ParseAmount(limit)
			if err != nil {
				return err
			}
			b.Limit = amt
			if cadence == "" {
				cadence = string(r.app.Config.DefaultCadence)
			}
			b.Cadence = core.Cadence(cadence)
			if !b.Cadence.IsValid() {
				return fmt.Errorf("%w: %q", core.ErrInvalidCadence, cadence)
			}
			if b.Thresholds, err = parseThresholds(threshold); err != nil {
				return err
			}

			saved, err := r.app.Ledger.UpsertBudget(cmd.Context(), b)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Budget %s for %s: %s %s (%s)",
				saved.Name, saved.CategoryID, core.FormatUSD(saved.Limit), saved.Cadence, saved.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&b.ID, "id", "", "existing budget ID to update")
	f.StringVar(&b.Name, "name", "", "display name")
	f.StringVar(&b.CategoryID, "category", "", "category the budget tracks")
	f.StringVar(&limit, "limit", "", "spending limit")
	f.StringVar(&cadence, "cadence", "", "daily, weekly or monthly")
	f.StringVar(&threshold, "thresholds", "", "alert percentages, e.g. 50,80,100")
	f.BoolVar(&b.Rollover, "rollover", false, "carry unused budget into the next period")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("limit")
	return cmd
}

func (r *runner) budgetListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List budgets with spending and fired alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			budgets, err := r.app.Ledger.ListBudgets(cmd.Context())
			if err != nil {
				return err
			}
			if len(budgets) == 0 {
				info(cmd.OutOrStdout(), "No budgets")
				return nil
			}
			data := pterm.TableData{{"ID", "Name", "Category", "Spent", "Limit", "Used", "Period", "Alerts fired"}}
			for _, b := range budgets {
				data = append(data, []string{
					shortID(b.ID),
					b.Name,
					b.CategoryID,
					core.FormatUSD(b.Spent),
					core.FormatUSD(b.Limit),
					formatPercent(b.PercentUsed),
					b.Alerts.PeriodKey,
					formatThresholds(b.Alerts.Triggered),
				})
			}
			return renderTable(cmd.OutOrStdout(), data)
		},
	}
}

func (r *runner) budgetResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <id>",
		Short: "Clear fired alerts and restart the current period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := r.app.Ledger.ResetBudget(cmd.Context(), args[0], time.Now())
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Budget %s reset for period %s", b.Name, b.Alerts.PeriodKey)
			return nil
		},
	}
}

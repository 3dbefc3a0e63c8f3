package cli

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"hustleledger/internal/core"
	"hustleledger/internal/ports"
	"hustleledger/internal/recurrence"
	"hustleledger/internal/services"
)

func (r *runner) parseDate(s string) (time.Time, error) {
	t, ok := recurrence.ParseInstant(s, r.app.Ledger.Location())
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, s)
	}
	return t, nil
}

func parseRule(s string) (core.RepetitionType, error) {
	rule, ok := recurrence.ParseRule(s)
	if !ok {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidRule, s)
	}
	return rule, nil
}

func (r *runner) addCommand() *cobra.Command {
	var (
		in                       services.NewEntry
		amount, typ, date, every string
		end                      string
		interval                 int
		remind                   bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an entry, optionally starting a recurring series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			amt, err := core.ParseAmount(amount)
			if err != nil {
				return err
			}
			in.Amount = amt
			in.Type = core.EntryType(typ)
			if date != "" {
				if in.Date, err = r.parseDate(date); err != nil {
					return err
				}
			}
			if every != "" {
				rule, err := parseRule(every)
				if err != nil {
					return err
				}
				spec := &services.RecurringSpec{Every: rule, IntervalDays: interval, RemindOneDayBefore: remind}
				if end != "" {
					endDate, err := r.parseDate(end)
					if err != nil {
						return err
					}
					spec.EndDate = &endDate
				}
				in.Recurring = spec
			}

			e, err := r.app.Ledger.AddEntry(cmd.Context(), in)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Added %s %s on %s (%s)", e.Title, core.FormatUSD(e.Amount), e.Date.Format(dateLayout), e.ID)
			if e.TemplateID != "" {
				info(cmd.OutOrStdout(), "Recurring series %s created", e.TemplateID)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Title, "title", "", "entry title")
	f.StringVar(&amount, "amount", "", "amount, e.g. 12.50")
	f.StringVar(&typ, "type", string(core.Expense), "income or expense")
	f.StringVar(&in.Category, "category", "", "category")
	f.StringVar(&date, "date", "", "date (YYYY-MM-DD or RFC3339), defaults to now")
	f.StringVar(&every, "every", "", "repeat rule: daily, weekly, biweekly, monthly, yearly, custom")
	f.IntVar(&interval, "interval", 0, "days between occurrences for custom rules")
	f.StringVar(&end, "end", "", "last date of the series")
	f.BoolVar(&remind, "remind", false, "remind one day before each occurrence")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (r *runner) editCommand() *cobra.Command {
	var title, amount, typ, category, date string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p services.EntryPatch
			f := cmd.Flags()
			if f.Changed("title") {
				p.Title = &title
			}
			if f.Changed("amount") {
				amt, err := core.ParseAmount(amount)
				if err != nil {
					return err
				}
				p.Amount = &amt
			}
			if f.Changed("type") {
				t := core.EntryType(typ)
				p.Type = &t
			}
			if f.Changed("category") {
				p.Category = &category
			}
			if f.Changed("date") {
				d, err := r.parseDate(date)
				if err != nil {
					return err
				}
				p.Date = &d
			}

			e, err := r.app.Ledger.UpdateEntry(cmd.Context(), args[0], p)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Updated %s: %s %s", e.ID, e.Title, core.FormatUSD(e.Amount))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&title, "title", "", "entry title")
	f.StringVar(&amount, "amount", "", "amount")
	f.StringVar(&typ, "type", "", "income or expense")
	f.StringVar(&category, "category", "", "category")
	f.StringVar(&date, "date", "", "date")
	return cmd
}

func (r *runner) deleteCommand() *cobra.Command {
	var series bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an entry or its whole recurring series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := services.DeleteSingle
			if series {
				mode = services.DeleteSeries
			}
			if err := r.app.Ledger.DeleteEntry(cmd.Context(), args[0], mode); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Deleted %s", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&series, "series", false, "delete every entry of the series and the series itself")
	return cmd
}

func (r *runner) entriesCommand() *cobra.Command {
	var (
		filter   ports.EntryFilter
		from, to string
	)
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if from != "" {
				if filter.From, err = r.parseDate(from); err != nil {
					return err
				}
			}
			if to != "" {
				if filter.To, err = r.parseDate(to); err != nil {
					return err
				}
			}
			entries, err := r.app.Ledger.ListEntries(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				info(cmd.OutOrStdout(), "No entries")
				return nil
			}
			data := pterm.TableData{{"ID", "Date", "Title", "Category", "Type", "Amount", "Series"}}
			for _, e := range entries {
				data = append(data, []string{
					shortID(e.ID),
					e.Date.In(r.app.Ledger.Location()).Format(dateLayout),
					e.Title,
					e.Category,
					string(e.Type),
					core.FormatUSD(e.Amount),
					shortID(e.TemplateID),
				})
			}
			return renderTable(cmd.OutOrStdout(), data)
		},
	}
	f := cmd.Flags()
	f.StringVar(&filter.Category, "category", "", "only this category")
	f.StringVar(&filter.TemplateID, "series", "", "only entries of this series")
	f.StringVar(&from, "from", "", "earliest date")
	f.StringVar(&to, "to", "", "latest date")
	return cmd
}

func (r *runner) templatesCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List recurring series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			templates, err := r.app.Ledger.ListTemplates(cmd.Context(), !all)
			if err != nil {
				return err
			}
			if len(templates) == 0 {
				info(cmd.OutOrStdout(), "No recurring series")
				return nil
			}
			now := time.Now()
			data := pterm.TableData{{"ID", "Title", "Amount", "Schedule", "Next", "Ends", "Reminder", "Status"}}
			for _, t := range templates {
				status := "active"
				if recurrence.IsFinished(t, now) {
					status = "finished"
				}
				reminder := "off"
				if t.RemindOneDayBefore {
					reminder = "on"
				}
				data = append(data, []string{
					shortID(t.ID),
					t.Title,
					core.FormatUSD(t.Amount),
					recurrence.FormatLabel(t),
					formatDate(t.NextOccurrence),
					formatDate(t.EndDate),
					reminder,
					status,
				})
			}
			return renderTable(cmd.OutOrStdout(), data)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include inactive series")
	return cmd
}

package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"spendwatch/internal/analytics"
	"spendwatch/internal/core"
	"spendwatch/internal/filter"
	"spendwatch/internal/store"
	"spendwatch/internal/tracker"
)

func addExpenseFlags(cmd *cobra.Command, in *tracker.ExpenseInput) {
	cmd.Flags().StringVar(&in.Title, "title", "", "what the money was spent on (letters and spaces)")
	cmd.Flags().StringVar(&in.Amount, "amount", "", "amount, e.g. 12.50")
	cmd.Flags().StringVar(&in.Category, "category", "", "one of Food, Transportation, Utilities, Entertainment, Subscription, Other")
	cmd.Flags().StringVar(&in.Date, "date", "", "date as YYYY-MM-DD (default today)")
}

func (a *app) newAddCommand() *cobra.Command {
	var in tracker.ExpenseInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new expense",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, svc *tracker.Service, _ []string) error {
			if in.Date == "" {
				in.Date = svc.Today().String()
			}
			e, err := svc.AddExpense(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added expense %s: %s\n", e.ID, describe(e))
			return nil
		}),
	}
	addExpenseFlags(cmd, &in)
	return cmd
}

func (a *app) newEditCommand() *cobra.Command {
	var in tracker.ExpenseInput

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an existing expense; omitted flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, svc *tracker.Service, args []string) error {
			current, ok := findExpense(svc, args[0])
			if !ok {
				return store.Errorf(store.KindNotFound, "edit", "expense %s not found", args[0])
			}

			merged := tracker.InputFrom(current)
			flags := cmd.Flags()
			if flags.Changed("title") {
				merged.Title = in.Title
			}
			if flags.Changed("amount") {
				merged.Amount = in.Amount
			}
			if flags.Changed("category") {
				merged.Category = in.Category
			}
			if flags.Changed("date") {
				merged.Date = in.Date
			}

			e, err := svc.EditExpense(ctx, current.ID, merged)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated expense %s: %s\n", e.ID, describe(e))
			return nil
		}),
	}
	addExpenseFlags(cmd, &in)
	return cmd
}

func (a *app) newRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an expense",
		Args:    cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, svc *tracker.Service, args []string) error {
			if err := svc.DeleteExpense(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted expense %s\n", args[0])
			return nil
		}),
	}
}

func (a *app) newListCommand() *cobra.Command {
	criteria := filter.Criteria{Category: filter.AllCategories}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses with the dashboard summary",
		Args:  cobra.NoArgs,
		RunE: a.run(func(_ context.Context, cmd *cobra.Command, svc *tracker.Service, _ []string) error {
			v := svc.Dashboard(criteria)
			out := cmd.OutOrStdout()

			if len(v.Records) == 0 {
				fmt.Fprintln(out, "No expenses found.")
			} else {
				writeExpenseTable(out, v.Records)
			}

			s := v.Summary
			fmt.Fprintln(out)
			fmt.Fprintf(out, "%s %d total: %s (%s vs last month)\n", s.Month, s.Year, s.MonthTotal, formatDelta(s.VsLastMonth))
			fmt.Fprintf(out, "Highest category: %s\n", s.HighestCategory)
			fmt.Fprintf(out, "Transactions: %d\n", s.TotalTransactions)
			return nil
		}),
	}

	cmd.Flags().StringVar(&criteria.Text, "search", "", "match titles containing this text")
	cmd.Flags().StringVar(&criteria.Category, "category", filter.AllCategories, "only this category")
	cmd.Flags().StringVar(&criteria.Date, "date", "", "only this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&criteria.Amount, "amount", "", "only this exact amount")
	return cmd
}

func findExpense(svc *tracker.Service, id string) (core.Expense, bool) {
	snap, _ := svc.Snapshot()
	for _, e := range snap.Records {
		if e.ID == id {
			return e, true
		}
	}
	return core.Expense{}, false
}

func describe(e core.Expense) string {
	return fmt.Sprintf("%s %s (%s) on %s", e.Title, e.Amount, e.Category, e.Date)
}

func writeExpenseTable(w io.Writer, records []core.Expense) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTITLE\tCATEGORY\tAMOUNT\tID")
	for _, e := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Date, e.Title, e.Category, e.Amount, e.ID)
	}
	tw.Flush()
}

func formatDelta(d analytics.Delta) string {
	if !d.HasPrevious {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", d.PercentageChange)
}

package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"spendwatch/internal/tracker"
)

func (a *app) newAnalyticsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Show the category breakdown and daily trend",
		Args:  cobra.NoArgs,
		RunE: a.run(func(_ context.Context, cmd *cobra.Command, svc *tracker.Service, _ []string) error {
			s := svc.Analytics()
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Total spent: %s\n", s.Total)
			fmt.Fprintf(out, "Average expense: %s\n", s.Average)
			fmt.Fprintf(out, "Expenses: %d\n", s.Count)
			fmt.Fprintf(out, "Highest category: %s\n", s.HighestCategory)
			if s.Count == 0 {
				return nil
			}

			fmt.Fprintln(out)
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "CATEGORY\tAMOUNT\tSHARE")
			for _, c := range s.ByCategory {
				fmt.Fprintf(tw, "%s\t%s\t%.1f%%\n", c.Category, c.Amount, c.Share)
			}
			tw.Flush()

			fmt.Fprintln(out)
			tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "DAY\tAMOUNT")
			for _, p := range s.Trend {
				fmt.Fprintf(tw, "%s\t%s\n", p.Date, p.Amount)
			}
			return tw.Flush()
		}),
	}
}

func (a *app) newHomeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Show the monthly overview",
		Args:  cobra.NoArgs,
		RunE: a.run(func(_ context.Context, cmd *cobra.Command, svc *tracker.Service, _ []string) error {
			v := svc.Home()
			out := cmd.OutOrStdout()

			name := v.FirstName
			if name == "" {
				name = "there"
			}
			if v.Initials != "" {
				fmt.Fprintf(out, "[%s] ", v.Initials)
			}
			fmt.Fprintf(out, "Welcome back, %s!\n", name)
			fmt.Fprintf(out, "Spent this month: %s\n", v.MonthTotal)
			fmt.Fprintf(out, "Most used category: %s\n", v.MostUsedCategory)
			if v.HasLastExpense {
				fmt.Fprintf(out, "Last expense: %s\n", describe(v.LastExpense))
			} else {
				fmt.Fprintln(out, "Last expense: none yet")
			}
			return nil
		}),
	}
}

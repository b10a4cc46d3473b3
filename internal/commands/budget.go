package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"spendwatch/internal/tracker"
)

func (a *app) newBudgetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Show or set this month's budget",
	}
	cmd.AddCommand(a.newBudgetShowCommand(), a.newBudgetSetCommand())
	return cmd
}

func (a *app) newBudgetShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show spending against this month's budget",
		Args:  cobra.NoArgs,
		RunE: a.run(func(_ context.Context, cmd *cobra.Command, svc *tracker.Service, _ []string) error {
			v := svc.BudgetView()
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Budget for %s\n", v.Month.Format("January 2006"))
			if !v.HasBudget {
				fmt.Fprintln(out, "No budget set. Use: spendwatch budget set --total <amount> --limit <amount>")
			}
			st := v.Status
			fmt.Fprintf(out, "Total balance: %s\n", v.Budget.TotalBalance)
			fmt.Fprintf(out, "Alert limit: %s\n", v.Budget.AlertLimit)
			fmt.Fprintf(out, "Spent: %s (%.0f%% of limit, %s)\n", st.Spent, st.ProgressPct, st.Level)
			fmt.Fprintf(out, "Remaining before limit: %s\n", st.RemainingSafe)
			fmt.Fprintf(out, "Remaining balance: %s\n", st.RemainingBalance)
			if st.IsExceeded {
				fmt.Fprintln(out, "Warning: you have exceeded your alert limit.")
			}
			return nil
		}),
	}
}

func (a *app) newBudgetSetCommand() *cobra.Command {
	var total, limit string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set this month's total balance and alert limit",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, cmd *cobra.Command, svc *tracker.Service, _ []string) error {
			b, err := svc.SetBudget(ctx, total, limit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Budget for %s saved: total %s, alert at %s\n",
				b.Month.Format("January 2006"), b.TotalBalance, b.AlertLimit)
			return nil
		}),
	}
	cmd.Flags().StringVar(&total, "total", "", "total monthly balance")
	cmd.Flags().StringVar(&limit, "limit", "", "spending alert limit, at most the total")
	_ = cmd.MarkFlagRequired("total")
	_ = cmd.MarkFlagRequired("limit")
	return cmd
}

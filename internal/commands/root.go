// Package commands is the spendwatch command tree.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"spendwatch/internal/trace"
	"spendwatch/internal/tracker"
)

// ServiceFunc opens the tracker service a command runs against. The returned
// cleanup may be nil.
type ServiceFunc func(ctx context.Context) (*tracker.Service, func() error, error)

type app struct {
	open ServiceFunc
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand(open ServiceFunc) *cobra.Command {
	a := &app{open: open}

	rootCmd := &cobra.Command{
		Use:   "spendwatch",
		Short: "Track expenses against a monthly budget",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		a.newAddCommand(),
		a.newEditCommand(),
		a.newRemoveCommand(),
		a.newListCommand(),
		a.newAnalyticsCommand(),
		a.newHomeCommand(),
		a.newBudgetCommand(),
	)
	return rootCmd
}

type runFunc func(ctx context.Context, cmd *cobra.Command, svc *tracker.Service, args []string) error

// run opens the service, loads a fresh snapshot and hands both to fn.
func (a *app) run(fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx = trace.Ensure(ctx)

		svc, cleanup, err := a.open(ctx)
		if err != nil {
			return fmt.Errorf("opening backend: %w", err)
		}
		if cleanup != nil {
			defer func() {
				if cerr := cleanup(); cerr != nil && err == nil {
					err = fmt.Errorf("closing backend: %w", cerr)
				}
			}()
		}

		if err := svc.Refresh(ctx); err != nil {
			return explain(fmt.Errorf("loading expenses: %w", err))
		}
		return explain(fn(ctx, cmd, svc, args))
	}
}

package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/iir20/amar-dokan-pos-system/internal/service"
)

// NewReportCommand creates the report command group.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Sales, profit and expense reports",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "dashboard",
		Short: "All-time totals, recent trend and low stock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, app *App, out *OutputFormatter) error {
				dash, err := app.Shop.Dashboard(ctx)
				if err != nil {
					return err
				}
				return out.Success(dashboardView(dash))
			})
		},
	})
	cmd.AddCommand(newReportMonthlyCommand(rootOpts))
	return cmd
}

func newReportMonthlyCommand(rootOpts *RootOptions) *cobra.Command {
	var year, month int
	cmd := &cobra.Command{
		Use:     "monthly",
		Short:   "Totals for one calendar month (default: this month)",
		Example: `  dokan report monthly --year 2025 --month 1`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, app *App, out *OutputFormatter) error {
				var (
					sum service.Summary
					err error
				)
				if year == 0 && month == 0 {
					sum, err = app.Shop.CurrentMonth(ctx)
				} else {
					now := app.Clock.Now().UTC()
					if year == 0 {
						year = now.Year()
					}
					if month == 0 {
						month = int(now.Month())
					}
					sum, err = app.Shop.Monthly(ctx, year, time.Month(month))
				}
				if err != nil {
					return err
				}
				return out.Success(summaryView(sum))
			})
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "year (default: current)")
	cmd.Flags().IntVar(&month, "month", 0, "month 1-12 (default: current)")
	return cmd
}

package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/iir20/amar-dokan-pos-system/internal/service"
)

// NewSaleCommand creates the sale command group.
func NewSaleCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sale",
		Short: "Look up recorded sales",
	}
	cmd.AddCommand(newSaleShowCommand(rootOpts))
	cmd.AddCommand(newSaleListCommand(rootOpts))
	cmd.AddCommand(newSaleDueCommand(rootOpts))
	return cmd
}

func newSaleShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one sale with its line items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, app *App, out *OutputFormatter) error {
				sale, err := app.Shop.GetSale(ctx, args[0])
				if err != nil {
					return err
				}
				return out.Success(saleView(sale))
			})
		},
	}
}

func newSaleListCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		from, to, phone string
		limit           int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sales, newest first",
		Example: `  dokan sale list --limit 10
  dokan sale list --from 2025-01-01 --to 2025-01-31
  dokan sale list --phone 01711000000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseDateRange(from, to)
			if err != nil {
				return err
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, app *App, out *OutputFormatter) error {
				sales, err := app.Shop.ListSales(ctx, service.SaleQuery{
					From: start, To: end, CustomerPhone: phone, Limit: limit,
				})
				if err != nil {
					return err
				}
				return out.Success(salesView(sales))
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&phone, "phone", "", "only sales to this customer phone")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum sales to show (0 = all)")
	return cmd
}

func newSaleDueCommand(rootOpts *RootOptions) *cobra.Command {
	var phone string
	cmd := &cobra.Command{
		Use:   "due",
		Short: "List sales with an unpaid balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, app *App, out *OutputFormatter) error {
				due, err := app.Shop.DueList(ctx, phone)
				if err != nil {
					return err
				}
				return out.Success(dueView(due))
			})
		},
	}
	cmd.Flags().StringVar(&phone, "phone", "", "only this customer's dues")
	return cmd
}

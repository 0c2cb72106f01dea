package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iir20/amar-dokan-pos-system/internal/model"
)

// NewExpenseCommand creates the expense command group.
func NewExpenseCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Record shop expenses",
	}
	cmd.AddCommand(newExpenseAddCommand(rootOpts))
	cmd.AddCommand(newExpenseListCommand(rootOpts))
	cmd.AddCommand(newExpenseDeleteCommand(rootOpts))
	return cmd
}

func newExpenseAddCommand(rootOpts *RootOptions) *cobra.Command {
	var description, amount, category, date string
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Record an expense",
		Example: `  dokan expense add --description "Shop rent" --category rent --amount 8000 --date 2025-01-01`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseDecimal("amount", amount)
			if err != nil {
				return err
			}
			spentAt, err := parseDate("date", date)
			if err != nil {
				return err
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, app *App, out *OutputFormatter) error {
				if err := app.RequireSession(ctx, "expense.add"); err != nil {
					return err
				}
				e, err := app.Shop.AddExpense(ctx, model.ExpenseRecord{
					Description: description,
					Amount:      value,
					Category:    category,
					SpentAt:     spentAt,
				})
				if err != nil {
					return err
				}
				return out.Success(expenseView(e))
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "what the money was spent on")
	cmd.Flags().StringVar(&amount, "amount", "", "amount spent")
	cmd.Flags().StringVar(&category, "category", "", "expense category")
	cmd.Flags().StringVar(&date, "date", "", "day spent (YYYY-MM-DD, default now)")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newExpenseListCommand(rootOpts *RootOptions) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseDateRange(from, to)
			if err != nil {
				return err
			}
			return withApp(cmd, rootOpts, func(ctx context.Context, app *App, out *OutputFormatter) error {
				expenses, err := app.Shop.ListExpenses(ctx, start, end)
				if err != nil {
					return err
				}
				return out.Success(expensesView(expenses))
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day, inclusive (YYYY-MM-DD)")
	return cmd
}

func newExpenseDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, app *App, out *OutputFormatter) error {
				if err := app.RequireSession(ctx, "expense.delete"); err != nil {
					return err
				}
				if err := app.Shop.DeleteExpense(ctx, args[0]); err != nil {
					return err
				}
				return out.Success(fmt.Sprintf("Deleted expense %s", args[0]))
			})
		},
	}
}

package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/iir20/amar-dokan-pos-system/internal/checkout"
	"github.com/iir20/amar-dokan-pos-system/internal/model"
)

// CheckoutOptions holds flags for the checkout command.
type CheckoutOptions struct {
	*RootOptions
	Lines    []string
	Paid     string
	Customer string
	Phone    string
	Method   string
}

// NewCheckoutCommand creates the checkout command.
func NewCheckoutCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckoutOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Record a sale and decrement stock",
		Long: `Record a sale from one or more cart lines.

Each --line is ITEM:QTY, or ITEM:QTY@PRICE to override the catalog price.
Without --paid the sale is paid in full. A partly paid sale needs
--customer so the due can be collected later.

Example:
  dokan checkout --line seed-rice-miniket:2 --line seed-sugar:1
  dokan checkout --line seed-rice-miniket:5@72 --paid 200 --customer Rahim --phone 01711000000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(ctx context.Context, app *App, out *OutputFormatter) error {
				if err := app.RequireSession(ctx, "checkout"); err != nil {
					return err
				}
				req, err := opts.request()
				if err != nil {
					return err
				}
				receipt, err := app.Checkout.Checkout(ctx, req)
				if err != nil {
					return err
				}
				return out.Success(receiptView(receipt))
			})
		},
	}

	cmd.Flags().StringArrayVar(&opts.Lines, "line", nil, "cart line ITEM:QTY[@PRICE] (repeatable)")
	cmd.Flags().StringVar(&opts.Paid, "paid", "", "amount tendered (default: total)")
	cmd.Flags().StringVar(&opts.Customer, "customer", "", "customer name")
	cmd.Flags().StringVar(&opts.Phone, "phone", "", "customer phone")
	cmd.Flags().StringVar(&opts.Method, "method", string(model.PaymentCash), "payment method (cash|digital)")
	_ = cmd.MarkFlagRequired("line")

	return cmd
}

func (o *CheckoutOptions) request() (checkout.Request, error) {
	req := checkout.Request{
		CustomerName:  o.Customer,
		CustomerPhone: o.Phone,
		PaymentMethod: model.PaymentMethod(o.Method),
	}
	for _, raw := range o.Lines {
		line, err := parseCartLine(raw)
		if err != nil {
			return checkout.Request{}, err
		}
		req.Lines = append(req.Lines, line)
	}
	if o.Paid != "" {
		paid, err := parseDecimal("paid", o.Paid)
		if err != nil {
			return checkout.Request{}, err
		}
		req.Paid = &paid
	}
	return req, nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"FirstShop/internal/checkout"
	"FirstShop/internal/pricing"
)

func NewCheckoutCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Start checkout and inspect the pending order",
	}

	begin := &cobra.Command{
		Use:   "begin",
		Short: "Freeze the current cart for the order page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, s *session) error {
				snap, err := s.checkout.Begin(ctx, s.cart)
				if errors.Is(err, checkout.ErrEmptyCart) {
					return NewExitError(ExitFailure, "cart is empty")
				}
				if err != nil {
					return err
				}
				return s.out.Success(snap, func(w io.Writer) {
					fmt.Fprintf(w, "Checkout started with %d items\n", snap.ItemCount)
					writeCartTotals(w, snap.Totals())
				})
			})
		},
	}

	summary := &cobra.Command{
		Use:   "summary",
		Short: "Show the pending order with tax",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, s *session) error {
				order, err := s.checkout.Summary(ctx)
				if errors.Is(err, checkout.ErrNoCheckout) {
					return NewExitError(ExitFailure, "no checkout in progress")
				}
				if err != nil {
					return err
				}
				return s.out.Success(order, func(w io.Writer) {
					for _, it := range order.Items {
						fmt.Fprintf(w, "%dx %s  %s\n", it.Quantity, it.Title, pricing.Format(it.LineTotal()))
					}
					fmt.Fprintf(w, "Subtotal: %s\n", pricing.Format(order.Totals.Subtotal))
					fmt.Fprintf(w, "Shipping: %s\n", pricing.Format(order.Totals.Shipping))
					fmt.Fprintf(w, "Tax: %s\n", pricing.Format(order.Totals.Tax))
					fmt.Fprintf(w, "Total: %s\n", pricing.Format(order.Totals.Total))
				})
			})
		},
	}

	cmd.AddCommand(begin, summary)
	return cmd
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"FirstShop/internal/cart"
	"FirstShop/internal/pricing"
)

type cartOptions struct {
	*RootOptions
	Quantity int
	Color    string
	Size     string
}

type cartView struct {
	Items   []cart.LineItem    `json:"items"`
	Count   int                `json:"count"`
	Summary pricing.CartTotals `json:"summary"`
}

func NewCartCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &cartOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and change the shared cart",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the cart with its totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				return opts.print(s)
			})
		},
	}

	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product, or more of one already in the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				return opts.add(ctx, s, args[0])
			})
		},
	}
	add.Flags().IntVarP(&opts.Quantity, "qty", "q", 1, "quantity to add")
	add.Flags().StringVar(&opts.Color, "color", "", "color, when the product offers colors")
	add.Flags().StringVar(&opts.Size, "size", "", "size, when the product offers sizes")

	set := &cobra.Command{
		Use:   "set <product-id> <quantity>",
		Short: "Set a line's quantity; 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				qty, err := strconv.Atoi(args[1])
				if err != nil {
					return NewExitError(ExitCommandError, fmt.Sprintf("bad quantity %q", args[1]))
				}
				if err := s.cart.UpdateQuantity(ctx, id, qty); err != nil {
					return err
				}
				return opts.print(s)
			})
		},
	}

	remove := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if err := s.cart.RemoveItem(ctx, id); err != nil {
					return err
				}
				return opts.print(s)
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, s *session) error {
				if err := s.cart.Clear(ctx); err != nil {
					return err
				}
				return opts.print(s)
			})
		},
	}

	cmd.AddCommand(show, add, set, remove, clearCmd)
	return cmd
}

func (o *cartOptions) add(ctx context.Context, s *session, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	if err := s.catalog.Load(ctx); err != nil {
		return WrapExitError(ExitCommandError, "load catalog", err)
	}

	sel := cart.Selection{ProductID: id, Quantity: o.Quantity}
	if o.Color != "" {
		sel.Color = &o.Color
	}
	if o.Size != "" {
		sel.Size = &o.Size
	}

	item, err := cart.BuildLine(s.catalog, sel)
	if errors.Is(err, cart.ErrUnknownProduct) {
		return NewExitError(ExitFailure, fmt.Sprintf("product %d not found", id))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid selection", err)
	}

	if err := s.cart.AddItem(ctx, item); err != nil {
		return err
	}
	return o.print(s)
}

func (o *cartOptions) print(s *session) error {
	items := s.cart.Items()
	if items == nil {
		items = []cart.LineItem{}
	}
	v := cartView{
		Items:   items,
		Count:   s.cart.TotalItemCount(),
		Summary: pricing.CartSummary(o.env.Config.Pricing, items),
	}

	return s.out.Success(v, func(w io.Writer) {
		if len(v.Items) == 0 {
			fmt.Fprintln(w, "Your cart is empty")
			return
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tOPTIONS\tQTY\tLINE TOTAL")
		for _, it := range v.Items {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", it.ID, it.Title, options(it), it.Quantity, pricing.Format(it.LineTotal()))
		}
		_ = tw.Flush()
		fmt.Fprintf(w, "Items: %d\n", v.Count)
		writeCartTotals(w, v.Summary)
	})
}

func writeCartTotals(w io.Writer, t pricing.CartTotals) {
	fmt.Fprintf(w, "Subtotal: %s\n", pricing.Format(t.Subtotal))
	fmt.Fprintf(w, "Shipping: %s\n", pricing.Format(t.Shipping))
	fmt.Fprintf(w, "Total: %s\n", pricing.Format(t.Total))
}

func options(it cart.LineItem) string {
	var s string
	if it.Color != nil {
		s = *it.Color
	}
	if it.Size != nil {
		if s != "" {
			s += "/"
		}
		s += *it.Size
	}
	if s == "" {
		return "-"
	}
	return s
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("bad product id %q", raw))
	}
	return id, nil
}

package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"FirstShop/internal/catalog"
	"FirstShop/internal/pricing"
)

type productsOptions struct {
	*RootOptions
	Category string
	Sort     string
	Page     int
	PerPage  int
	Limit    int
	To       string
}

func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &productsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the catalog",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List products by category and sort order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.list(cmd)
		},
	}
	list.Flags().StringVar(&opts.Category, "category", catalog.CategoryAll, "category to show")
	list.Flags().StringVar(&opts.Sort, "sort", catalog.SortPopular, "popular|price-low|price-high|newest")
	list.Flags().IntVar(&opts.Page, "page", 1, "page number")
	list.Flags().IntVar(&opts.PerPage, "per-page", catalog.DefaultPerPage, "products per page")

	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Find products by title or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.search(cmd, args[0])
		},
	}
	search.Flags().IntVar(&opts.Limit, "limit", catalog.SearchLimit, "maximum matches, 0 for all")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.show(cmd, args[0])
		},
	}

	seed := &cobra.Command{
		Use:   "seed",
		Short: "Copy the catalog into a Postgres catalog table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.seed(cmd)
		},
	}
	seed.Flags().StringVar(&opts.To, "to", "", "postgres DSN to write the catalog to")
	_ = seed.MarkFlagRequired("to")

	cmd.AddCommand(list, search, show, seed)
	return cmd
}

func (o *productsOptions) list(cmd *cobra.Command) error {
	out := o.output(cmd)
	store, err := o.catalogStore(ctxOf(cmd))
	if err != nil {
		out.Failure(err)
		return err
	}

	page := store.Browse(catalog.Query{Category: o.Category, Sort: o.Sort, Page: o.Page, PerPage: o.PerPage})
	return out.Success(page, func(w io.Writer) {
		writeProducts(w, page.Products)
		fmt.Fprintf(w, "page %d of %d (%d products)\n", page.Page, page.TotalPages, page.Total)
	})
}

func (o *productsOptions) search(cmd *cobra.Command, query string) error {
	out := o.output(cmd)
	store, err := o.catalogStore(ctxOf(cmd))
	if err != nil {
		out.Failure(err)
		return err
	}

	found := store.Search(query, o.Limit)
	if found == nil {
		found = []catalog.Product{}
	}
	return out.Success(found, func(w io.Writer) {
		if len(found) == 0 {
			fmt.Fprintln(w, "No products found")
			return
		}
		writeProducts(w, found)
	})
}

func (o *productsOptions) show(cmd *cobra.Command, rawID string) error {
	out := o.output(cmd)
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		err = NewExitError(ExitCommandError, fmt.Sprintf("bad product id %q", rawID))
		out.Failure(err)
		return err
	}

	store, err := o.catalogStore(ctxOf(cmd))
	if err != nil {
		out.Failure(err)
		return err
	}

	p, ok := store.Get(id)
	if !ok {
		err := NewExitError(ExitFailure, fmt.Sprintf("product %d not found", id))
		out.Failure(err)
		return err
	}

	return out.Success(p, func(w io.Writer) {
		fmt.Fprintf(w, "%s (#%d)\n", p.Title, p.ID)
		fmt.Fprintf(w, "%s\n", p.Description)
		fmt.Fprintf(w, "Category: %s\n", p.Category)
		fmt.Fprintf(w, "Price: %s (was %s, %d%% off)\n", pricing.Format(p.DiscountedPrice), pricing.Format(p.Price), p.DiscountPercent())
		if len(p.Colors) > 0 {
			fmt.Fprintf(w, "Colors: %v\n", p.Colors)
		}
		if len(p.Sizes) > 0 {
			fmt.Fprintf(w, "Sizes: %v\n", p.Sizes)
		}
	})
}

func (o *productsOptions) seed(cmd *cobra.Command) error {
	out := o.output(cmd)
	ctx := ctxOf(cmd)

	store, err := o.catalogStore(ctx)
	if err != nil {
		out.Failure(err)
		return err
	}

	dst, err := catalog.OpenPostgresSource(ctx, o.To)
	if err != nil {
		err = WrapExitError(ExitCommandError, "open catalog table", err)
		out.Failure(err)
		return err
	}
	defer func() { _ = dst.Close() }()

	products := store.GetAll()
	if err := dst.Replace(ctx, products); err != nil {
		out.Failure(err)
		return err
	}

	return out.Success(map[string]int{"products": len(products)}, func(w io.Writer) {
		fmt.Fprintf(w, "Seeded %d products\n", len(products))
	})
}

func writeProducts(w io.Writer, products []catalog.Product) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tPRICE")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Title, p.Category, pricing.Format(p.DiscountedPrice))
	}
	_ = tw.Flush()
}

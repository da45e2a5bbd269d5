package cart

import (
	"errors"
	"slices"

	"github.com/shopspring/decimal"

	"FirstShop/internal/catalog"
)

var (
	ErrUnknownProduct = errors.New("unknown product")
	ErrOptionRequired = errors.New("option required")
	ErrInvalidOption  = errors.New("invalid option")
)

// LineItem is one cart line. Title, prices and image are copied from the
// product when the line is created and never refreshed.
type LineItem struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	Price           decimal.Decimal `json:"price"`
	DiscountedPrice decimal.Decimal `json:"discountedPrice"`
	Image           string          `json:"image"`
	Color           *string         `json:"color,omitempty"`
	Size            *string         `json:"size,omitempty"`
	Quantity        int             `json:"quantity"`
}

func (it LineItem) UnitPrice() decimal.Decimal { return it.DiscountedPrice }
func (it LineItem) Units() int                 { return it.Quantity }

func (it LineItem) LineTotal() decimal.Decimal {
	return it.DiscountedPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

func FromProduct(p catalog.Product, qty int) LineItem {
	return LineItem{
		ID:              p.ID,
		Title:           p.Title,
		Price:           p.Price,
		DiscountedPrice: p.DiscountedPrice,
		Image:           p.Image(),
		Quantity:        qty,
	}
}

type ProductFinder interface {
	Get(id int64) (catalog.Product, bool)
}

// Selection is what a shopper picks on the product page.
type Selection struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Color     *string `json:"color,omitempty"`
	Size      *string `json:"size,omitempty"`
}

// OptionError names the option that was missing or not offered.
type OptionError struct {
	Option string
	Err    error
}

func (e *OptionError) Error() string { return e.Option + ": " + e.Err.Error() }
func (e *OptionError) Unwrap() error { return e.Err }

// BuildLine turns a selection into a line snapshot. Products that offer
// colors or sizes need one of them picked.
func BuildLine(products ProductFinder, sel Selection) (LineItem, error) {
	p, ok := products.Get(sel.ProductID)
	if !ok {
		return LineItem{}, ErrUnknownProduct
	}
	if err := checkOption("color", p.Colors, sel.Color); err != nil {
		return LineItem{}, err
	}
	if err := checkOption("size", p.Sizes, sel.Size); err != nil {
		return LineItem{}, err
	}

	qty := sel.Quantity
	if qty < 1 {
		qty = 1
	}
	it := FromProduct(p, qty)
	if len(p.Colors) > 0 {
		it.Color = sel.Color
	}
	if len(p.Sizes) > 0 {
		it.Size = sel.Size
	}
	return it, nil
}

func checkOption(name string, offered []string, picked *string) error {
	if len(offered) == 0 {
		return nil
	}
	if picked == nil || *picked == "" {
		return &OptionError{Option: name, Err: ErrOptionRequired}
	}
	if !slices.Contains(offered, *picked) {
		return &OptionError{Option: name, Err: ErrInvalidOption}
	}
	return nil
}

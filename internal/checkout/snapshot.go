package checkout

import (
	"time"

	"github.com/shopspring/decimal"

	"FirstShop/internal/cart"
	"FirstShop/internal/pricing"
)

// Snapshot freezes what is being bought and its cart totals at the moment
// checkout starts. Tax is not part of it.
type Snapshot struct {
	Items     []cart.LineItem `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Total     decimal.Decimal `json:"total"`
	Timestamp time.Time       `json:"timestamp"`
	ItemCount int             `json:"itemCount"`
}

func newSnapshot(r pricing.Rules, items []cart.LineItem, at time.Time) Snapshot {
	sum := pricing.CartSummary(r, items)
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return Snapshot{
		Items:     items,
		Subtotal:  sum.Subtotal,
		Shipping:  sum.Shipping,
		Total:     sum.Total,
		Timestamp: at.UTC(),
		ItemCount: n,
	}
}

func (s Snapshot) Totals() pricing.CartTotals {
	return pricing.CartTotals{Subtotal: s.Subtotal, Shipping: s.Shipping, Total: s.Total}
}

// Order is the order page: the frozen lines plus final totals.
type Order struct {
	Items     []cart.LineItem     `json:"items"`
	ItemCount int                 `json:"itemCount"`
	Totals    pricing.OrderTotals `json:"totals"`
	Timestamp time.Time           `json:"timestamp"`
}

type Confirmation struct {
	OrderNumber string              `json:"orderNumber"`
	Email       string              `json:"email"`
	Totals      pricing.OrderTotals `json:"totals"`
}

// Package pricing aggregates cart lines into totals. Every function is
// pure; amounts are never rounded until Format.
package pricing

import "github.com/shopspring/decimal"

// Line is anything priced per unit.
type Line interface {
	UnitPrice() decimal.Decimal
	Units() int
}

type Rules struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	TaxRate               decimal.Decimal
}

func DefaultRules() Rules {
	return Rules{
		FreeShippingThreshold: decimal.NewFromInt(100),
		ShippingFee:           decimal.NewFromInt(10),
		TaxRate:               decimal.RequireFromString("0.08"),
	}
}

// CartTotals is what the cart page shows. It carries no tax.
type CartTotals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// OrderTotals is what the order page shows once totals are final.
type OrderTotals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

func Subtotal[L Line](items []L) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.UnitPrice().Mul(decimal.NewFromInt(int64(it.Units()))))
	}
	return sum
}

func (r Rules) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(r.FreeShippingThreshold) {
		return decimal.Zero
	}
	return r.ShippingFee
}

func (r Rules) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(r.TaxRate)
}

func Total(parts ...decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range parts {
		sum = sum.Add(p)
	}
	return sum
}

func CartSummary[L Line](r Rules, items []L) CartTotals {
	sub := Subtotal(items)
	ship := r.Shipping(sub)
	return CartTotals{
		Subtotal: sub,
		Shipping: ship,
		Total:    Total(sub, ship),
	}
}

// OrderSummary adds tax on top of totals frozen at checkout. The frozen
// total is trusted as-is rather than recomputed from its parts.
func (r Rules) OrderSummary(frozen CartTotals) OrderTotals {
	tax := r.Tax(frozen.Subtotal)
	return OrderTotals{
		Subtotal: frozen.Subtotal,
		Shipping: frozen.Shipping,
		Tax:      tax,
		Total:    Total(frozen.Total, tax),
	}
}

// Format renders an amount with two fractional digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

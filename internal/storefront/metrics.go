package storefront

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"FirstShop/internal/cart"
	"FirstShop/internal/catalog"
)

// CartMetrics is a cart.Renderer that publishes the cart size.
type CartMetrics struct {
	Items prometheus.Gauge
	Lines prometheus.Gauge
}

func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	m := &CartMetrics{
		Items: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storefront_cart_items",
			Help: "Units in this tab's cart",
		}),
		Lines: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storefront_cart_lines",
			Help: "Distinct lines in this tab's cart",
		}),
	}
	reg.MustRegister(m.Items, m.Lines)
	return m
}

func (m *CartMetrics) Render(items []cart.LineItem, count int) {
	m.Items.Set(float64(count))
	m.Lines.Set(float64(len(items)))
}

// lazyCatalog loads the catalog on first lookup. Lookups made while the
// source is down see an empty catalog.
type lazyCatalog struct {
	store *catalog.Store
}

func (c lazyCatalog) Get(id int64) (catalog.Product, bool) {
	_ = c.store.Load(context.Background())
	return c.store.Get(id)
}

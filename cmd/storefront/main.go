package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"FirstShop/internal/cart"
	"FirstShop/internal/catalog"
	"FirstShop/internal/checkout"
	"FirstShop/internal/config"
	"FirstShop/internal/storage"
	"FirstShop/internal/storefront"
	"FirstShop/pkg/kit"
)

func main() {
	service := "storefront"
	cfg := config.Load()

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := storage.Open(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal("open storage failed", zap.Error(err), zap.String("driver", cfg.Storage.Driver))
	}
	defer func() { _ = kv.Close() }()

	log.Info("tab ready", zap.String("tab", cfg.Storage.Tab), zap.String("driver", cfg.Storage.Driver))

	reg := prometheus.NewRegistry()
	cartMetrics := storefront.NewCartMetrics(reg)
	renderer := cart.Renderers(cartMetrics, cart.RenderFunc(func(items []cart.LineItem, count int) {
		log.Debug("cart rendered", zap.Int("lines", len(items)), zap.Int("count", count))
	}))

	products := catalog.NewStore(catalog.NewSource(cfg.CatalogSource), log)
	carts := cart.NewStore(kv, log)
	carts.Load(ctx)
	renderer.Render(carts.Items(), carts.TotalItemCount())

	svc := checkout.NewService(kv, cfg.Pricing, log)
	svc.Delay = cfg.OrderDelay

	h := storefront.NewHandler(storefront.Deps{
		Storage:      kv,
		Catalog:      products,
		Cart:         carts,
		Checkout:     svc,
		Rules:        cfg.Pricing,
		Renderer:     renderer,
		OrderLimiter: kit.NewIPRateLimiter(cfg.OrderRateLimit, cfg.OrderRateWin),
	}, storefront.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return kit.RunHTTPServer(gctx, ":"+cfg.Port, h, log)
	})
	g.Go(func() error {
		return cart.NewSync(carts, renderer, log).Run(gctx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("storefront stopped", zap.Error(err))
	}
}

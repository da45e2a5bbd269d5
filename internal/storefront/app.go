// Package storefront assembles the catalog, cart and checkout surfaces into
// one HTTP handler for a single tab.
package storefront

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"FirstShop/internal/cart"
	"FirstShop/internal/catalog"
	"FirstShop/internal/checkout"
	"FirstShop/internal/pricing"
	"FirstShop/internal/storage"
	"FirstShop/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

type Deps struct {
	Storage  storage.Store
	Catalog  *catalog.Store
	Cart     *cart.Store
	Checkout *checkout.Service
	Rules    pricing.Rules

	// Renderer is told about every cart change this tab makes or sees.
	Renderer cart.Renderer

	// OrderLimiter throttles POST /order per client IP. Nil disables it.
	OrderLimiter *kit.IPRateLimiter
}

const readyTimeout = 2 * time.Second

func NewHandler(deps Deps, httpDeps HTTPDeps) http.Handler {
	log := httpDeps.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	setupMiddleware(r, log)
	setupMetrics(r, httpDeps)

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(deps.Storage, log))

	(&catalog.Server{Store: deps.Catalog, Log: log}).Register(r)

	(&cart.Server{
		Cart:     deps.Cart,
		Products: lazyCatalog{deps.Catalog},
		Rules:    deps.Rules,
		Renderer: deps.Renderer,
		Log:      log,
	}).Register(r)

	co := &checkout.Server{
		Service:  deps.Checkout,
		Cart:     deps.Cart,
		Products: lazyCatalog{deps.Catalog},
		Renderer: deps.Renderer,
		Log:      log,
	}
	if deps.OrderLimiter != nil {
		co.OrderLimit = deps.OrderLimiter.Middleware
	}
	co.Register(r)

	return r
}

func setupMiddleware(r *chi.Mux, log *zap.Logger) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(log, "/healthz", "/readyz", "/metrics"))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.RoutePattern))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func readyz(kv storage.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := kv.Ping(ctx); err != nil {
			log.Warn("readyz failed: storage", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "storage not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

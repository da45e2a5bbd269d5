package checkout

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"FirstShop/internal/cart"
	"FirstShop/pkg/kit"
)

const (
	maxOrderBody = 16 << 10

	cartPage = "/cart"
)

type Server struct {
	Service  *Service
	Cart     *cart.Store
	Products cart.ProductFinder
	Renderer cart.Renderer
	Log      *zap.Logger

	// OrderLimit wraps POST /order, typically an IP rate limiter.
	OrderLimit func(http.Handler) http.Handler
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

func (s *Server) Register(r chi.Router) {
	r.Post("/checkout", s.begin)
	r.Post("/buy-now", s.buyNow)
	r.Get("/order", s.summary)

	place := http.Handler(http.HandlerFunc(s.place))
	if s.OrderLimit != nil {
		place = s.OrderLimit(place)
	}
	r.Method(http.MethodPost, "/order", place)
}

func (s *Server) begin(w http.ResponseWriter, r *http.Request) {
	s.Cart.LoadIfStale(r.Context())

	snap, err := s.Service.Begin(r.Context(), s.Cart)
	if errors.Is(err, ErrEmptyCart) {
		kit.WriteError(w, r, http.StatusConflict, "cart is empty", nil)
		return
	}
	if err != nil {
		s.serverError(w, r, "begin checkout failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, snap)
}

func (s *Server) buyNow(w http.ResponseWriter, r *http.Request) {
	var sel cart.Selection
	if err := kit.DecodeJSON(w, r, maxOrderBody, &sel); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	item, err := cart.BuildLine(s.Products, sel)
	if err != nil {
		var oe *cart.OptionError
		switch {
		case errors.Is(err, cart.ErrUnknownProduct):
			kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"product_id": sel.ProductID})
		case errors.As(err, &oe):
			kit.WriteError(w, r, http.StatusBadRequest, oe.Err.Error(), map[string]any{"option": oe.Option})
		default:
			kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
		}
		return
	}

	snap, err := s.Service.BuyNow(r.Context(), item)
	if err != nil {
		s.serverError(w, r, "buy now failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, snap)
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	order, err := s.Service.Summary(r.Context())
	if errors.Is(err, ErrNoCheckout) {
		http.Redirect(w, r, cartPage, http.StatusSeeOther)
		return
	}
	if err != nil {
		s.serverError(w, r, "order summary failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, order)
}

func (s *Server) place(w http.ResponseWriter, r *http.Request) {
	var form Form
	if err := kit.DecodeJSON(w, r, maxOrderBody, &form); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	s.Cart.LoadIfStale(r.Context())
	conf, err := s.Service.PlaceOrder(r.Context(), s.Cart, form)

	var invalid ValidationErrors
	switch {
	case err == nil:
	case errors.Is(err, ErrNoCheckout):
		http.Redirect(w, r, cartPage, http.StatusSeeOther)
		return
	case errors.As(err, &invalid):
		kit.WriteError(w, r, http.StatusUnprocessableEntity, "invalid order form", invalid)
		return
	case errors.Is(err, context.Canceled):
		// client went away mid-order; nothing was placed
		return
	default:
		s.serverError(w, r, "place order failed", err)
		return
	}

	if s.Renderer != nil {
		s.Renderer.Render(nil, 0)
	}
	kit.WriteJSON(w, http.StatusCreated, conf)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if s.Log != nil {
		s.Log.Error(msg, zap.Error(err))
	}
	kit.WriteError(w, r, http.StatusServiceUnavailable, "storage unavailable", nil)
}

package cart

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"FirstShop/internal/pricing"
	"FirstShop/pkg/kit"
)

const maxCartBody = 64 << 10

type Server struct {
	Cart     *Store
	Products ProductFinder
	Rules    pricing.Rules
	Renderer Renderer
	Log      *zap.Logger
}

type View struct {
	Items   []LineItem         `json:"items"`
	Count   int                `json:"count"`
	Summary pricing.CartTotals `json:"summary"`
}

type quantityReq struct {
	Quantity int `json:"quantity"`
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

func (s *Server) Register(r chi.Router) {
	r.Get("/cart", s.show)
	r.Delete("/cart", s.clear)
	r.Post("/cart/items", s.add)
	r.Patch("/cart/items/{id}", s.update)
	r.Delete("/cart/items/{id}", s.remove)
}

func (s *Server) View() View {
	items := s.Cart.Items()
	if items == nil {
		items = []LineItem{}
	}
	count := 0
	for _, it := range items {
		count += it.Quantity
	}
	return View{
		Items:   items,
		Count:   count,
		Summary: pricing.CartSummary(s.Rules, items),
	}
}

func (s *Server) show(w http.ResponseWriter, r *http.Request) {
	s.Cart.LoadIfStale(r.Context())
	kit.WriteJSON(w, http.StatusOK, s.View())
}

func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	var sel Selection
	if err := kit.DecodeJSON(w, r, maxCartBody, &sel); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	item, err := BuildLine(s.Products, sel)
	if err != nil {
		var oe *OptionError
		switch {
		case errors.Is(err, ErrUnknownProduct):
			kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"product_id": sel.ProductID})
		case errors.As(err, &oe):
			kit.WriteError(w, r, http.StatusBadRequest, oe.Err.Error(), map[string]any{"option": oe.Option})
		default:
			kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
		}
		return
	}

	s.Cart.LoadIfStale(r.Context())
	if err := s.Cart.AddItem(r.Context(), item); err != nil {
		s.storageError(w, r, err)
		return
	}
	s.rendered(w, http.StatusCreated)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := lineID(w, r)
	if !ok {
		return
	}
	var req quantityReq
	if err := kit.DecodeJSON(w, r, maxCartBody, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	s.Cart.LoadIfStale(r.Context())
	if err := s.Cart.UpdateQuantity(r.Context(), id, req.Quantity); err != nil {
		s.storageError(w, r, err)
		return
	}
	s.rendered(w, http.StatusOK)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := lineID(w, r)
	if !ok {
		return
	}

	s.Cart.LoadIfStale(r.Context())
	if err := s.Cart.RemoveItem(r.Context(), id); err != nil {
		s.storageError(w, r, err)
		return
	}
	s.rendered(w, http.StatusOK)
}

func (s *Server) clear(w http.ResponseWriter, r *http.Request) {
	if err := s.Cart.Clear(r.Context()); err != nil {
		s.storageError(w, r, err)
		return
	}
	s.rendered(w, http.StatusOK)
}

func (s *Server) rendered(w http.ResponseWriter, status int) {
	v := s.View()
	if s.Renderer != nil {
		s.Renderer.Render(v.Items, v.Count)
	}
	kit.WriteJSON(w, status, v)
}

func (s *Server) storageError(w http.ResponseWriter, r *http.Request, err error) {
	if s.Log != nil {
		s.Log.Error("cart write failed", zap.Error(err))
	}
	kit.WriteError(w, r, http.StatusServiceUnavailable, "storage unavailable", nil)
}

func lineID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad item id", map[string]any{"id": raw})
		return 0, false
	}
	return id, true
}

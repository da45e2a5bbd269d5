package catalog

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"FirstShop/pkg/kit"
)

type Server struct {
	Store *Store
	Log   *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

func (s *Server) Register(r chi.Router) {
	r.Get("/products", s.list)
	r.Get("/products/search", s.search)
	r.Get("/products/{id}", s.get)
	r.Get("/categories", s.categories)
}

// ensureLoaded pulls the catalog in on first use. A failure is already
// logged by the store and leaves an empty catalog to serve.
func (s *Server) ensureLoaded(r *http.Request) {
	_ = s.Store.Load(r.Context())
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	s.ensureLoaded(r)

	q := r.URL.Query()
	page := s.Store.Browse(Query{
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
		Page:     atoiOr(q.Get("page"), 1),
		PerPage:  atoiOr(q.Get("per_page"), DefaultPerPage),
	})
	if page.Products == nil {
		page.Products = []Product{}
	}

	kit.WriteJSON(w, http.StatusOK, page)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	s.ensureLoaded(r)

	q := r.URL.Query()
	out := s.Store.Search(q.Get("q"), atoiOr(q.Get("limit"), SearchLimit))
	if out == nil {
		out = []Product{}
	}
	kit.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	s.ensureLoaded(r)

	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad product id", map[string]any{"id": raw})
		return
	}

	p, ok := s.Store.Get(id)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}

	kit.WriteJSON(w, http.StatusOK, struct {
		Product
		DiscountPercent int64 `json:"discountPercent"`
	}{p, p.DiscountPercent()})
}

func (s *Server) categories(w http.ResponseWriter, r *http.Request) {
	s.ensureLoaded(r)
	kit.WriteJSON(w, http.StatusOK, s.Store.Categories())
}

func atoiOr(v string, def int) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

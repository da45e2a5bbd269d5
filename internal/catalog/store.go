package catalog

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// CategoryAll disables category filtering.
	CategoryAll = "all"

	// SearchLimit is how many matches the storefront header shows.
	SearchLimit = 5

	fetchTimeout = 10 * time.Second
)

// Store holds the immutable product list. It is fetched lazily, once per
// process; a failed fetch leaves the catalog empty and may be retried.
type Store struct {
	src Source
	log *zap.Logger
	sf  singleflight.Group

	mu       sync.RWMutex
	loaded   bool
	products []Product
	byID     map[int64]int
}

func NewStore(src Source, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{src: src, log: log, byID: map[int64]int{}}
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Store) Load(ctx context.Context) error {
	if s.Loaded() {
		return nil
	}

	_, err, _ := s.sf.Do("load", func() (any, error) {
		if s.Loaded() {
			return nil, nil
		}

		// shared by every waiter, so one caller going away must not cancel it
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		data, err := s.src.Fetch(fctx)
		var products []Product
		if err == nil {
			products, err = decodeProducts(data)
		}
		if err != nil {
			s.log.Warn("catalog load failed, serving empty catalog", zap.Error(err))
			return nil, err
		}

		byID := make(map[int64]int, len(products))
		for i, p := range products {
			if _, dup := byID[p.ID]; dup {
				s.log.Warn("duplicate product id in catalog", zap.Int64("id", p.ID))
				continue
			}
			byID[p.ID] = i
		}

		s.mu.Lock()
		s.products = products
		s.byID = byID
		s.loaded = true
		s.mu.Unlock()

		s.log.Info("catalog loaded", zap.Int("products", len(products)))
		return nil, nil
	})
	return err
}

func (s *Store) GetAll() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.products)
}

func (s *Store) Get(id int64) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return Product{}, false
	}
	return s.products[i], true
}

// Search matches title or description case-insensitively, in catalog
// order. limit <= 0 returns every match.
func (s *Store) Search(query string, limit int) []Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Product
	for _, p := range s.products {
		if limit > 0 && len(out) == limit {
			break
		}
		if strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) FilterByCategory(category string) []Product {
	if category == CategoryAll {
		return s.GetAll()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Product
	for _, p := range s.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

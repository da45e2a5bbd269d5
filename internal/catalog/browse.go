package catalog

import (
	"math"
	"sort"
)

const (
	SortPopular   = "popular"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortNewest    = "newest"

	DefaultPerPage = 10
	MaxPerPage     = 100
)

type Query struct {
	Category string
	Sort     string
	Page     int
	PerPage  int
}

type Page struct {
	Products   []Product `json:"products"`
	Page       int       `json:"page"`
	PerPage    int       `json:"per_page"`
	TotalPages int       `json:"total_pages"`
	Total      int       `json:"total"`
}

type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Browse filters by category, sorts and cuts out one page.
func (s *Store) Browse(q Query) Page {
	if q.Category == "" {
		q.Category = CategoryAll
	}
	if q.PerPage <= 0 {
		q.PerPage = DefaultPerPage
	}
	if q.PerPage > MaxPerPage {
		q.PerPage = MaxPerPage
	}
	if q.Page < 1 {
		q.Page = 1
	}

	products := s.FilterByCategory(q.Category)
	sortProducts(products, q.Sort)

	total := len(products)
	// compare in pages first so a huge page number cannot overflow
	start := total
	if q.Page-1 <= total/q.PerPage {
		start = min((q.Page-1)*q.PerPage, total)
	}
	end := min(start+q.PerPage, total)

	return Page{
		Products:   products[start:end],
		Page:       q.Page,
		PerPage:    q.PerPage,
		TotalPages: (total + q.PerPage - 1) / q.PerPage,
		Total:      total,
	}
}

// Categories lists distinct categories alphabetically with product counts.
func (s *Store) Categories() []CategoryCount {
	s.mu.RLock()
	counts := map[string]int{}
	for _, p := range s.products {
		counts[p.Category]++
	}
	s.mu.RUnlock()

	out := make([]CategoryCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, CategoryCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortProducts(products []Product, by string) {
	switch by {
	case SortPriceLow:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].DiscountedPrice.LessThan(products[j].DiscountedPrice)
		})
	case SortPriceHigh:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].DiscountedPrice.GreaterThan(products[j].DiscountedPrice)
		})
	case SortNewest:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].ID > products[j].ID
		})
	default:
		sort.SliceStable(products, func(i, j int) bool {
			return popularity(products[i]) > popularity(products[j])
		})
	}
}

// popularity weighs rating by how many people gave it.
func popularity(p Product) float64 {
	n := p.RatingCount
	if n < 1 {
		n = 1
	}
	return p.Rating * math.Log(float64(n))
}

package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls atomic.Int32
	data  []byte
	err   error
}

func (s *countingSource) Fetch(ctx context.Context) ([]byte, error) {
	s.calls.Add(1)
	return s.data, s.err
}

// ctxSource fails the way a real fetch does when its context is gone.
type ctxSource struct {
	data     []byte
	deadline bool
}

func (s *ctxSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, s.deadline = ctx.Deadline()
	return s.data, nil
}

func testProducts() []Product {
	return []Product{
		{ID: 1, Title: "Blue Shirt", Description: "Cotton tee", Category: "clothing",
			Price: decimal.NewFromInt(40), DiscountedPrice: decimal.NewFromInt(20), Images: []string{"shirt.png"},
			Colors: []string{"Blue"}, Sizes: []string{"M", "L"}, Rating: 4.5, RatingCount: 120},
		{ID: 2, Title: "Red Hat", Description: "Keeps the sun off", Category: "clothing",
			Price: decimal.NewFromInt(15), DiscountedPrice: decimal.NewFromInt(12), Images: []string{"hat.png"},
			Rating: 4.9, RatingCount: 3},
		{ID: 3, Title: "Desk Lamp", Description: "LED lamp, pairs with any SHIRT-free desk", Category: "home",
			Price: decimal.NewFromInt(60), DiscountedPrice: decimal.NewFromInt(45), Images: []string{"lamp.png"},
			Rating: 4.0, RatingCount: 40},
		{ID: 4, Title: "Headphones", Description: "Wireless", Category: "electronics",
			Price: decimal.NewFromInt(200), DiscountedPrice: decimal.NewFromInt(150), Images: []string{"hp.png"}},
	}
}

func loadedStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(StaticSource(testProducts()), nil)
	require.NoError(t, s.Load(context.Background()))
	return s
}

func TestStore_LoadOnce(t *testing.T) {
	src := &countingSource{data: []byte(`{"products":[{"id":1,"title":"A","price":1,"discountedPrice":1}]}`)}
	s := NewStore(src, nil)

	require.NoError(t, s.Load(context.Background()))
	require.NoError(t, s.Load(context.Background()))

	assert.Equal(t, int32(1), src.calls.Load())
	assert.Len(t, s.GetAll(), 1)
}

func TestStore_ConcurrentLoadFetchesOnce(t *testing.T) {
	src := &countingSource{data: []byte(`[{"id":1,"title":"A"}]`)}
	s := NewStore(src, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Load(context.Background())
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, src.calls.Load(), int32(8))
	assert.Len(t, s.GetAll(), 1)
	require.NoError(t, s.Load(context.Background()))
}

func TestStore_LoadFailureLeavesEmptyAndRetries(t *testing.T) {
	src := &countingSource{err: errors.New("boom")}
	s := NewStore(src, nil)

	err := s.Load(context.Background())
	require.Error(t, err)
	assert.Empty(t, s.GetAll())
	assert.False(t, s.Loaded())

	src.err = nil
	src.data = []byte(`[{"id":7,"title":"Late"}]`)
	require.NoError(t, s.Load(context.Background()))
	assert.Len(t, s.GetAll(), 1)
}

func TestStore_LoadMalformedDocument(t *testing.T) {
	for _, doc := range []string{``, `"nope"`, `{"products": 5}`, `[{"id":`} {
		s := NewStore(&countingSource{data: []byte(doc)}, nil)
		assert.Error(t, s.Load(context.Background()), doc)
		assert.Empty(t, s.GetAll(), doc)
	}
}

func TestStore_LoadSurvivesCancelledCaller(t *testing.T) {
	src := &ctxSource{data: []byte(`[{"id":1,"title":"A"}]`)}
	s := NewStore(src, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, s.Load(ctx))
	assert.Len(t, s.GetAll(), 1)
	assert.True(t, src.deadline)
}

func TestStore_LoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":5,"title":"Mug","price":"9.5","discountedPrice":8}]`), 0o644))

	s := NewStore(NewSource(path), nil)
	require.NoError(t, s.Load(context.Background()))

	p, ok := s.Get(5)
	require.True(t, ok)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("9.5")))
}

func TestStore_LoadMissingFile(t *testing.T) {
	s := NewStore(NewSource(filepath.Join(t.TempDir(), "missing.json")), nil)
	err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrSourceNotFound)
	assert.Empty(t, s.GetAll())
}

func TestStore_GetAllIsACopy(t *testing.T) {
	s := loadedStore(t)

	all := s.GetAll()
	all[0].Title = "changed"

	p, _ := s.Get(1)
	assert.Equal(t, "Blue Shirt", p.Title)
}

func TestStore_Search(t *testing.T) {
	s := NewStore(StaticSource([]Product{
		{ID: 1, Title: "Blue Shirt"},
		{ID: 2, Title: "Red Hat"},
	}), nil)
	require.NoError(t, s.Load(context.Background()))

	got := s.Search("shirt", SearchLimit)
	require.Len(t, got, 1)
	assert.Equal(t, "Blue Shirt", got[0].Title)
}

func TestStore_SearchDescriptionAndOrder(t *testing.T) {
	s := loadedStore(t)

	got := s.Search("SHIRT", 0)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
}

func TestStore_SearchLimitAndBlank(t *testing.T) {
	s := loadedStore(t)

	assert.Len(t, s.Search("e", 2), 2)
	assert.Empty(t, s.Search("   ", SearchLimit))
	assert.Empty(t, s.Search("zebra", SearchLimit))
}

func TestStore_FilterByCategory(t *testing.T) {
	s := loadedStore(t)

	assert.Len(t, s.FilterByCategory(CategoryAll), 4)
	assert.Len(t, s.FilterByCategory("clothing"), 2)
	assert.Empty(t, s.FilterByCategory("Clothing"))
}

func TestProduct_DiscountPercent(t *testing.T) {
	p := Product{Price: decimal.NewFromInt(40), DiscountedPrice: decimal.NewFromInt(20)}
	assert.Equal(t, int64(50), p.DiscountPercent())

	p = Product{Price: decimal.NewFromInt(3), DiscountedPrice: decimal.NewFromInt(2)}
	assert.Equal(t, int64(33), p.DiscountPercent())

	assert.Equal(t, int64(0), Product{}.DiscountPercent())
}

func TestProduct_Image(t *testing.T) {
	assert.Equal(t, "t.png", Product{Thumbnail: "t.png", Images: []string{"a.png"}}.Image())
	assert.Equal(t, "a.png", Product{Images: []string{"a.png"}}.Image())
	assert.Equal(t, "", Product{}.Image())
}

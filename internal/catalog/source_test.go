package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"products":[{"id":1,"title":"Shirt","price":"10","discountedPrice":"8"}]}`))
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	src := NewSource(srv.URL + "/products.json")
	require.IsType(t, &HTTPSource{}, src)

	s := NewStore(src, nil)
	require.NoError(t, s.Load(context.Background()))
	p, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Shirt", p.Title)

	_, err := NewHTTPSource(srv.URL + "/missing").Fetch(context.Background())
	assert.ErrorIs(t, err, ErrSourceNotFound)

	_, err = NewHTTPSource(srv.URL + "/broken").Fetch(context.Background())
	assert.ErrorIs(t, err, ErrSourceBadStatus)
}

func TestNewSource_File(t *testing.T) {
	assert.Equal(t, FileSource{Path: "data/products.json"}, NewSource("data/products.json"))
}

func TestStaticSource_RoundTrip(t *testing.T) {
	data, err := StaticSource(testProducts()).Fetch(context.Background())
	require.NoError(t, err)

	got, err := decodeProducts(data)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, []string{"M", "L"}, got[0].Sizes)
	assert.True(t, got[3].Price.Equal(testProducts()[3].Price))
}

package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := &Server{Store: NewStore(StaticSource(testProducts()), nil)}
	srv := httptest.NewServer(s.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestServer_List(t *testing.T) {
	srv := newCatalogServer(t)

	var page Page
	code := getJSON(t, srv.URL+"/products?category=clothing&sort=price-low", &page)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []int64{2, 1}, ids(page.Products))
	assert.Equal(t, 1, page.TotalPages)

	code = getJSON(t, srv.URL+"/products?category=toys", &page)
	require.Equal(t, http.StatusOK, code)
	assert.NotNil(t, page.Products)
	assert.Empty(t, page.Products)
}

func TestServer_ListHugePage(t *testing.T) {
	srv := newCatalogServer(t)

	var page Page
	code := getJSON(t, srv.URL+"/products?page=9223372036854775807&per_page=2", &page)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, page.Products)

	code = getJSON(t, srv.URL+"/products?page=9223372036854775807&per_page=9223372036854775807", &page)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, page.Products)
}

func TestServer_Search(t *testing.T) {
	srv := newCatalogServer(t)

	var got []Product
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/products/search?q=shirt", &got))
	assert.Len(t, got, 2)

	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/products/search?q=shirt&limit=1", &got))
	assert.Len(t, got, 1)

	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/products/search", &got))
	assert.Empty(t, got)
}

func TestServer_Get(t *testing.T) {
	srv := newCatalogServer(t)

	var got map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/products/1", &got))
	assert.Equal(t, "Blue Shirt", got["title"])
	assert.Equal(t, float64(50), got["discountPercent"])

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/products/99", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/products/abc", nil))
}

func TestServer_Categories(t *testing.T) {
	srv := newCatalogServer(t)

	var got []CategoryCount
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/categories", &got))
	assert.Len(t, got, 3)
}

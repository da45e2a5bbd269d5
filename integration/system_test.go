//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"
)

var (
	baseURL  = getenv("E2E_BASE_URL", "http://localhost:8080")
	otherURL = os.Getenv("E2E_SECOND_TAB_URL")
)

type cartView struct {
	Items []struct {
		ID       int64 `json:"id"`
		Quantity int   `json:"quantity"`
	} `json:"items"`
	Count int `json:"count"`
}

func TestSystem_E2E_CartSurvivesRestart(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	doJSON(t, http.MethodDelete, baseURL+"/cart", nil, nil, 200)

	var page struct {
		Products []struct {
			ID     int64    `json:"id"`
			Colors []string `json:"colors"`
			Sizes  []string `json:"sizes"`
		} `json:"products"`
	}
	doJSON(t, http.MethodGet, baseURL+"/products?sort=newest", nil, &page, 200)
	if len(page.Products) == 0 {
		t.Fatalf("expected non-empty products")
	}

	p := page.Products[0]
	add := map[string]any{"product_id": p.ID, "quantity": 2}
	if len(p.Colors) > 0 {
		add["color"] = p.Colors[0]
	}
	if len(p.Sizes) > 0 {
		add["size"] = p.Sizes[0]
	}

	var cart cartView
	doJSON(t, http.MethodPost, baseURL+"/cart/items", add, &cart, 201)
	if cart.Count != 2 {
		t.Fatalf("count=%d want=2", cart.Count)
	}

	if otherURL != "" {
		waitCartCount(t, ctx, otherURL, 2)
	}

	if os.Getenv("E2E_RESTART_STOREFRONT") == "1" {
		restartContainer(t, ctx, "storefront")
		waitReady(t, ctx, baseURL+"/readyz")
	}

	doJSON(t, http.MethodGet, baseURL+"/cart", nil, &cart, 200)
	if cart.Count != 2 || len(cart.Items) != 1 || cart.Items[0].ID != p.ID {
		t.Fatalf("cart after restart: %+v", cart)
	}

	doJSON(t, http.MethodPost, baseURL+"/checkout", nil, nil, 201)

	var order struct {
		Totals struct {
			Tax string `json:"tax"`
		} `json:"totals"`
	}
	doJSON(t, http.MethodGet, baseURL+"/order", nil, &order, 200)
	if order.Totals.Tax == "" {
		t.Fatalf("order summary without tax")
	}
}

func waitCartCount(t *testing.T, ctx context.Context, url string, want int) {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		var v cartView
		doJSON(t, http.MethodGet, url+"/cart", nil, &v, 200)
		if v.Count == want {
			return
		}
		select {
		case <-ctx.Done():
			t.Fatalf("context done waiting for second tab")
		case <-time.After(200 * time.Millisecond):
		}
	}
	t.Fatalf("second tab never reached count=%d", want)
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func doJSON(t *testing.T, method, url string, body any, out any, want int) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d", method, url, resp.StatusCode, want)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

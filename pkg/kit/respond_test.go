package kit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Quantity int `json:"quantity"`
	}

	cases := map[string]struct {
		in      string
		wantErr bool
	}{
		"ok":       {in: `{"quantity":3}`},
		"unknown":  {in: `{"quantity":3,"x":1}`, wantErr: true},
		"trailing": {in: `{"quantity":3}{}`, wantErr: true},
		"too big":  {in: `{"quantity":` + strings.Repeat("1", 100) + `}`, wantErr: true},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.in))
			var b body
			err := DecodeJSON(httptest.NewRecorder(), req, 64, &b)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 3, b.Quantity)
		})
	}
}

func TestMetricsAuth(t *testing.T) {
	h := MetricsAuth("s3cret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for auth, want := range map[string]int{
		"":              http.StatusForbidden,
		"Bearer nope":   http.StatusForbidden,
		"Basic s3cret":  http.StatusForbidden,
		"Bearer s3cret": http.StatusOK,
	} {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, auth)
	}
}

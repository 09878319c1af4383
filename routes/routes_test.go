package routes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"jinstore-backend/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pinger struct{ err error }

func (p pinger) Ping(ctx context.Context) error { return p.err }

// Guarded routes must reject before any handler runs, so empty handlers do.
func TestGuardsRunBeforeHandlers(t *testing.T) {
	r := gin.New()
	Setup(r, Handlers{}, auth.NewTokens("secret", time.Hour), pinger{})

	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/api/cart", http.StatusUnauthorized},
		{http.MethodPost, "/api/favorites", http.StatusUnauthorized},
		{http.MethodGet, "/api/user/profile", http.StatusUnauthorized},
		{http.MethodPost, "/api/orders", http.StatusUnauthorized},
		{http.MethodPost, "/api/products/abc/reviews", http.StatusUnauthorized},
		{http.MethodGet, "/api/admin/stats", http.StatusUnauthorized},
		{http.MethodGet, "/api/admin/orders/ws", http.StatusUnauthorized},
		{http.MethodGet, "/api/nope", http.StatusNotFound},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		if w.Code != tc.want {
			t.Errorf("%s %s: %d, want %d", tc.method, tc.path, w.Code, tc.want)
		}
	}
}

func TestHealthReportsDatabase(t *testing.T) {
	r := gin.New()
	Setup(r, Handlers{}, auth.NewTokens("secret", time.Hour), pinger{err: errors.New("no primary")})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("got %d", w.Code)
	}
}

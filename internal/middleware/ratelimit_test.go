package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRateLimitMiddleware(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("auth endpoints use the stricter bucket", func(t *testing.T) {
		mw := NewRateLimitMiddleware(100, 2)
		handler := mw.Handler(next)

		statuses := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			handler.ServeHTTP(rec, req)
			statuses = append(statuses, rec.Code)
		}

		require.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)
	})

	t.Run("clients are limited independently", func(t *testing.T) {
		mw := NewRateLimitMiddleware(100, 1)
		handler := mw.Handler(next)

		first := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		first.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, first)
		require.Equal(t, http.StatusOK, rec.Code)

		other := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		other.RemoteAddr = "10.0.0.2:1234"
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, other)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("forwarded header wins over remote addr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
		require.Equal(t, "203.0.113.9", extractClientIP(req))
	})

	t.Run("retry-after header on rejection", func(t *testing.T) {
		mw := NewRateLimitMiddleware(100, 1)
		handler := mw.Handler(next)

		req := authRequest(t)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, authRequest(t))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.Equal(t, "60", rec.Header().Get("Retry-After"))
	})
}

func authRequest(t *testing.T) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.RemoteAddr = "10.0.0.5:4321"
	return req
}

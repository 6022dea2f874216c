package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alextreichler/storefront/internal/apperr"
	"github.com/alextreichler/storefront/internal/checkout"
	"github.com/alextreichler/storefront/internal/store"
	"github.com/gorilla/csrf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := &RateLimiter{window: 5 * time.Second, now: func() time.Time { return now }}
	h := rl.Middleware(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/checkout", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1111").Code)
	limited := call("10.0.0.1:2222")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code, "port does not matter")
	assert.Equal(t, "5", limited.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2:1111").Code)

	now = now.Add(6 * time.Second)
	assert.Equal(t, http.StatusOK, call("10.0.0.1:1111").Code)

	now = now.Add(time.Minute)
	rl.sweep()
	n := 0
	rl.visitors.Range(func(_, _ interface{}) bool { n++; return true })
	assert.Zero(t, n)
}

func TestWriteErrorMapping(t *testing.T) {
	timeout := apperr.Remote("list addresses", context.DeadlineExceeded)
	cases := []struct {
		err    error
		status int
		body   string
	}{
		{apperr.Validation("city", "City is required"), http.StatusBadRequest, `"field":"city"`},
		{apperr.Remote("place order", errors.New("offline")), http.StatusServiceUnavailable, `"retry":true`},
		{timeout, http.StatusServiceUnavailable, "timed out"},
		{fmt.Errorf("lookup: %w", apperr.ErrNotFound), http.StatusNotFound, "Not found"},
		{checkout.ErrInFlight, http.StatusConflict, "already being placed"},
		{store.ErrEmailTaken, http.StatusConflict, `"field":"email"`},
		{errors.New("boom"), http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
		assert.Contains(t, rec.Body.String(), tc.body)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeadersMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cart", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'none'")
}

func TestLoggingMiddlewareCapturesStatus(t *testing.T) {
	var seen int
	h := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		seen = w.(*responseWriter).statusCode
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, http.StatusTeapot, seen)
}

func TestCSRFProtectsMutations(t *testing.T) {
	app, _, _ := newTestApp(t)
	protect := csrf.Protect([]byte(strings.Repeat("c", 32)), csrf.Secure(false), csrf.Path("/"))
	srv := httptest.NewServer(protect(app.Routes()))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	c := &http.Client{Jar: jar}

	post := func(token string) int {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/cart/items", strings.NewReader(`{"product_id":1}`))
		require.NoError(t, err)
		if token != "" {
			req.Header.Set("X-CSRF-Token", token)
		}
		resp, err := c.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	resp, err := c.Get(srv.URL + "/api/csrf")
	require.NoError(t, err)
	token := resp.Header.Get("X-CSRF-Token")
	resp.Body.Close()
	require.NotEmpty(t, token)

	assert.Equal(t, http.StatusForbidden, post(""))
	assert.Equal(t, http.StatusOK, post(token))
}

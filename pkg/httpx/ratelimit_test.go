package httpx_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/marcos777-ux/Newsick-public/pkg/httpx"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func doFrom(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = ip + ":12345"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIPKeyExtractor(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"remote addr", nil, "192.168.1.1"},
		{"prefers X-Forwarded-For", map[string]string{"X-Forwarded-For": "203.0.113.1, 192.168.1.1"}, "203.0.113.1"},
		{"falls back to X-Real-IP", map[string]string{"X-Real-IP": " 203.0.113.2 "}, "203.0.113.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.168.1.1:12345"
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tt.want, httpx.IPKeyExtractor(req))
		})
	}
}

func TestJSONFieldKeyExtractor(t *testing.T) {
	extract := httpx.JSONFieldKeyExtractor("identifier")

	t.Run("reads field and restores body", func(t *testing.T) {
		body := `{"identifier":" Alice@Example.com ","secret":"x"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

		require.Equal(t, "alice@example.com", extract(req))

		rest, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.Equal(t, body, string(rest))
	})

	t.Run("missing or wrong type", func(t *testing.T) {
		for _, body := range []string{`{}`, `{"identifier":42}`, `not json`, ``} {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
			require.Empty(t, extract(req), body)
		}
	})
}

func TestCompositeKeyExtractor(t *testing.T) {
	a := func(*http.Request) string { return "a" }
	empty := func(*http.Request) string { return "" }
	b := func(*http.Request) string { return "b" }

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Equal(t, "a:b", httpx.CompositeKeyExtractor(":", a, empty, b)(req))
	require.Empty(t, httpx.CompositeKeyExtractor(":", empty)(req))
}

func TestRateLimit(t *testing.T) {
	t.Run("blocks over the burst", func(t *testing.T) {
		cfg := httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}
		h := httpx.RateLimitByIP(cfg, nil)(okHandler)

		for i := range 3 {
			require.Equal(t, http.StatusOK, doFrom(h, "192.168.1.1").Code, "request %d", i+1)
		}

		rec := doFrom(h, "192.168.1.1")
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.Equal(t, "20", rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
		require.Contains(t, rec.Body.String(), "rate_limit_exceeded")
	})

	t.Run("keys are tracked separately", func(t *testing.T) {
		cfg := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
		h := httpx.RateLimitByIP(cfg, nil)(okHandler)

		require.Equal(t, http.StatusOK, doFrom(h, "10.0.0.1").Code)
		require.Equal(t, http.StatusTooManyRequests, doFrom(h, "10.0.0.1").Code)
		require.Equal(t, http.StatusOK, doFrom(h, "10.0.0.2").Code)
	})

	t.Run("denied requests do not consume tokens", func(t *testing.T) {
		cfg := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
		h := httpx.RateLimitByIP(cfg, nil)(okHandler)

		doFrom(h, "10.0.0.3")
		first := doFrom(h, "10.0.0.3").Header().Get("Retry-After")
		second := doFrom(h, "10.0.0.3").Header().Get("Retry-After")
		require.Equal(t, first, second)
	})

	t.Run("custom deny", func(t *testing.T) {
		cfg := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
		deny := func(w http.ResponseWriter, _ *http.Request, retry time.Duration) {
			require.Positive(t, retry)
			httpx.WriteJSON(w, http.StatusTooManyRequests, map[string]any{"success": false})
		}
		h := httpx.RateLimitByIP(cfg, deny)(okHandler)

		doFrom(h, "10.0.0.4")
		rec := doFrom(h, "10.0.0.4")
		require.JSONEq(t, `{"success":false}`, rec.Body.String())
	})

	t.Run("empty key is not limited", func(t *testing.T) {
		cfg := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
		h := httpx.RateLimit(cfg, func(*http.Request) string { return "" }, nil)(okHandler)

		for range 3 {
			require.Equal(t, http.StatusOK, doFrom(h, "10.0.0.5").Code)
		}
	})

	t.Run("ip and field", func(t *testing.T) {
		cfg := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
		h := httpx.RateLimitByIPAndField(cfg, "identifier", nil)(okHandler)

		post := func(identifier string) int {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"identifier":"`+identifier+`"}`))
			req.RemoteAddr = "10.0.0.6:1"
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			return rec.Code
		}

		require.Equal(t, http.StatusOK, post("a@b.com"))
		require.Equal(t, http.StatusTooManyRequests, post("A@b.com"))
		require.Equal(t, http.StatusOK, post("c@d.com"))
	})
}

func TestRateLimitProfiles(t *testing.T) {
	for name, cfg := range map[string]httpx.RateLimitConfig{
		"strict":   httpx.StrictLimit,
		"moderate": httpx.ModerateLimit,
		"public":   httpx.PublicLimit,
	} {
		require.True(t, cfg.Valid(), name)
	}
	require.False(t, httpx.RateLimitConfig{}.Valid())
}

package httpx_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/marcos777-ux/Newsick-public/pkg/httpx"
	"github.com/marcos777-ux/Newsick-public/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mw("outer"), mw("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner", "handler"}, order)
}

type stubVerifier struct {
	claims jwtx.Claims
	err    error
	got    string
}

func (s *stubVerifier) Verify(token string) (jwtx.Claims, error) {
	s.got = token
	return s.claims, s.err
}

func TestAuthnMiddleware(t *testing.T) {
	var seen jwtx.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = httpx.ClaimsFromContext(r.Context())
		require.Equal(t, seen.Subject, httpx.SubjectFromContext(r.Context()))
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name     string
		header   string
		verr     error
		wantCode int
		wantDesc string
	}{
		{"valid", "Bearer tok", nil, http.StatusOK, ""},
		{"lowercase scheme", "bearer tok", nil, http.StatusOK, ""},
		{"missing", "", nil, http.StatusUnauthorized, "missing bearer token"},
		{"basic auth", "Basic dXNlcjpwYXNz", nil, http.StatusUnauthorized, "missing bearer token"},
		{"empty token", "Bearer   ", nil, http.StatusUnauthorized, "missing bearer token"},
		{"expired", "Bearer tok", jwtx.ErrExpired, http.StatusUnauthorized, "token expired"},
		{"bad signature", "Bearer tok", errors.New("nope"), http.StatusUnauthorized, "token verification failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &stubVerifier{claims: jwtx.NewAccessClaims("acc1", "a@b.com", "n", "iss", time.Hour, time.Now()), err: tt.verr}
			h := httpx.AuthnMiddleware(v)(next)

			req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusOK {
				require.Equal(t, "tok", v.got)
				require.Equal(t, "acc1", seen.Subject)
				return
			}
			require.Contains(t, rec.Header().Get("WWW-Authenticate"), tt.wantDesc)
			require.Empty(t, rec.Body.String())
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"ok", `{"name":"x"}`, false},
		{"empty", ``, true},
		{"garbage", `{"name":`, true},
		{"two objects", `{"name":"x"}{"name":"y"}`, true},
		{"too big", `{"name":"` + strings.Repeat("a", httpx.MaxBodyBytes) + `"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := httpx.DecodeJSON(httptest.NewRecorder(), req, &p)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "x", p.Name)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteJSON(rec, http.StatusCreated, map[string]string{"a": "b"})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.JSONEq(t, `{"a":"b"}`, rec.Body.String())
}

package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/marcos777-ux/Newsick-public/internal/gateway/service"
	"github.com/marcos777-ux/Newsick-public/internal/gateway/store/drivers/memory"
	"github.com/marcos777-ux/Newsick-public/pkg/authsdk"
	"github.com/marcos777-ux/Newsick-public/pkg/cryptox"
	"github.com/marcos777-ux/Newsick-public/pkg/httpx"
	"github.com/marcos777-ux/Newsick-public/pkg/jwtx"
	"github.com/marcos777-ux/Newsick-public/pkg/session"
	"github.com/marcos777-ux/Newsick-public/pkg/slogx"
	"github.com/stretchr/testify/require"
)

const testIssuer = "http://gateway.test"

func newTestRouter(t *testing.T, limits RateLimits) *Router {
	t.Helper()

	hasher, err := cryptox.NewHasher("pepper")
	require.NoError(t, err)
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("test", pemKey)
	require.NoError(t, err)
	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))

	r := NewRouter(jwtx.NewVerifierEdDSA(keys, testIssuer), "test", limits, slogx.Discard())
	r.AccountsService = &service.AccountService{
		Store:    memory.NewStore(),
		Hasher:   hasher,
		Signer:   signer,
		Issuer:   testIssuer,
		TokenTTL: time.Hour,
	}
	r.ApplyRoutes()
	return r
}

func roomyLimits() RateLimits {
	roomy := httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}
	return RateLimits{Strict: roomy, Moderate: roomy, Public: roomy}
}

type response struct {
	code int
	body string
	hdr  http.Header
}

func (r response) outcome(t *testing.T) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.body), &out), r.body)
	return out
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = "192.0.2.1:1234"
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return response{code: rec.Code, body: rec.Body.String(), hdr: rec.Header()}
}

const aliceRegister = `{"identifier":"alice@example.com","secret":"secret1","displayName":"Alice"}`

func TestRegisterAndLogin(t *testing.T) {
	r := newTestRouter(t, roomyLimits())

	res := do(t, r, http.MethodPost, "/api/register", aliceRegister)
	require.Equal(t, http.StatusOK, res.code, res.body)
	out := res.outcome(t)
	require.Equal(t, true, out["success"])
	require.NotEmpty(t, out["token"])
	require.Nil(t, out["message"])
	require.Equal(t, "no-store", res.hdr.Get("Cache-Control"))

	res = do(t, r, http.MethodPost, "/api/login", `{"identifier":"Alice","secret":"secret1"}`)
	require.Equal(t, http.StatusOK, res.code, res.body)
	token := res.outcome(t)["token"].(string)

	res = do(t, r, http.MethodGet, "/api/profile", "", "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, res.code, res.body)
	var profile authsdk.Profile
	require.NoError(t, json.Unmarshal([]byte(res.body), &profile))
	require.Equal(t, "alice@example.com", profile.Email)
	require.Equal(t, "Alice", profile.DisplayName)
}

func TestStatusCodes(t *testing.T) {
	r := newTestRouter(t, roomyLimits())
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/register", aliceRegister).code)

	tests := []struct {
		name    string
		path    string
		body    string
		code    int
		message string
	}{
		{"wrong password", "/api/login", `{"identifier":"alice@example.com","secret":"nope"}`, http.StatusUnauthorized, service.MsgInvalidCredentials},
		{"unknown account", "/api/login", `{"identifier":"bob@example.com","secret":"secret1"}`, http.StatusUnauthorized, service.MsgInvalidCredentials},
		{"missing secret", "/api/login", `{"identifier":"alice@example.com"}`, http.StatusBadRequest, "Password is required"},
		{"malformed body", "/api/login", `{"identifier":`, http.StatusBadRequest, msgMalformedBody},
		{"short secret", "/api/register", `{"identifier":"b@example.com","secret":"12345","displayName":"b"}`, http.StatusBadRequest, "Password must be at least 6 characters"},
		{"duplicate email", "/api/register", aliceRegister, http.StatusConflict, "An account with this email already exists."},
		{"duplicate name", "/api/register", `{"identifier":"c@example.com","secret":"secret1","displayName":"alice"}`, http.StatusConflict, "That username is already taken."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := do(t, r, http.MethodPost, tt.path, tt.body)
			require.Equal(t, tt.code, res.code, res.body)

			out := res.outcome(t)
			require.Equal(t, false, out["success"])
			require.Nil(t, out["token"])
			require.Equal(t, tt.message, out["message"])
		})
	}
}

func TestProfileRequiresToken(t *testing.T) {
	r := newTestRouter(t, roomyLimits())

	res := do(t, r, http.MethodGet, "/api/profile", "")
	require.Equal(t, http.StatusUnauthorized, res.code)
	require.Contains(t, res.hdr.Get("WWW-Authenticate"), "Bearer")

	res = do(t, r, http.MethodGet, "/api/profile", "", "Authorization", "Bearer garbage")
	require.Equal(t, http.StatusUnauthorized, res.code)
}

func TestLoginRateLimited(t *testing.T) {
	limits := roomyLimits()
	limits.Strict = httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
	r := newTestRouter(t, limits)

	body := `{"identifier":"alice@example.com","secret":"nope"}`
	for range 2 {
		require.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodPost, "/api/login", body).code)
	}

	res := do(t, r, http.MethodPost, "/api/login", body)
	require.Equal(t, http.StatusTooManyRequests, res.code)
	require.NotEmpty(t, res.hdr.Get("Retry-After"))
	out := res.outcome(t)
	require.Equal(t, false, out["success"])
	require.Equal(t, msgRateLimited, out["message"])

	// Another identifier from the same address has its own bucket.
	res = do(t, r, http.MethodPost, "/api/login", `{"identifier":"bob@example.com","secret":"nope"}`)
	require.Equal(t, http.StatusUnauthorized, res.code)
}

func TestLoginRateLimitedPerAccountAcrossAddresses(t *testing.T) {
	limits := roomyLimits()
	limits.Moderate = httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}
	r := newTestRouter(t, limits)

	body := `{"identifier":"alice@example.com","secret":"nope"}`
	for i := range 3 {
		res := do(t, r, http.MethodPost, "/api/login", body, "X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
		require.Equal(t, http.StatusUnauthorized, res.code)
	}

	res := do(t, r, http.MethodPost, "/api/login", body, "X-Forwarded-For", "198.51.100.99")
	require.Equal(t, http.StatusTooManyRequests, res.code)
	require.Equal(t, msgRateLimited, res.outcome(t)["message"])

	// Other accounts are unaffected.
	res = do(t, r, http.MethodPost, "/api/login", `{"identifier":"bob@example.com","secret":"nope"}`, "X-Forwarded-For", "198.51.100.99")
	require.Equal(t, http.StatusUnauthorized, res.code)
}

func TestSystemEndpoints(t *testing.T) {
	r := newTestRouter(t, roomyLimits())

	res := do(t, r, http.MethodGet, "/livez", "", "X-Request-ID", "req-1")
	require.Equal(t, http.StatusOK, res.code)
	require.Equal(t, "req-1", res.hdr.Get("X-Request-ID"))
	var health authsdk.HealthResponse
	require.NoError(t, json.Unmarshal([]byte(res.body), &health))
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "test", health.Version)

	require.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/readyz", "").code)

	do(t, r, http.MethodPost, "/api/login", `{"identifier":"x@example.com","secret":"nope"}`)

	res = do(t, r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, res.code)
	require.Contains(t, res.body, `newsick_gateway_auth_attempts_total{operation="login",result="INVALID_CREDENTIALS"} 1`)
	require.Contains(t, res.body, `newsick_gateway_http_requests_total{code="200",route="GET /livez"} 1`)
}

func TestSwaggerDocs(t *testing.T) {
	r := newTestRouter(t, roomyLimits())

	res := do(t, r, http.MethodGet, "/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, res.code)

	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths       map[string]map[string]any `json:"paths"`
		Definitions map[string]any            `json:"definitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.body), &doc), res.body)
	require.Equal(t, "Newsick Development Gateway API", doc.Info.Title)

	for path, method := range map[string]string{
		"/api/login":    "post",
		"/api/register": "post",
		"/api/profile":  "get",
		"/livez":        "get",
		"/readyz":       "get",
	} {
		require.Contains(t, doc.Paths, path)
		require.Contains(t, doc.Paths[path], method, path)
	}
	require.Contains(t, doc.Definitions, "authsdk.AuthOutcome")

	res = do(t, r, http.MethodGet, "/swagger/index.html", "")
	require.Equal(t, http.StatusOK, res.code)
	require.Contains(t, res.hdr.Get("Content-Type"), "text/html")
}

func TestReadyzAfterStoreClosed(t *testing.T) {
	r := newTestRouter(t, roomyLimits())
	require.NoError(t, r.AccountsService.Store.Close())

	require.Equal(t, http.StatusServiceUnavailable, do(t, r, http.MethodGet, "/readyz", "").code)
}

// TestSessionAgainstGateway drives the real client stack against the router.
func TestSessionAgainstGateway(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t, roomyLimits()))
	t.Cleanup(srv.Close)

	client := authsdk.NewSDKClient(srv.URL)
	ctrl := session.New(client, session.WithLogger(slogx.Discard()))
	t.Cleanup(ctrl.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, ctrl.SubmitRegistrationStart("Alice@Example.com", "secret1"))
	require.Equal(t, session.UsernameRequired, ctrl.State().Phase)
	require.NoError(t, ctrl.SubmitRegistrationFinish("Alice"))

	s, err := ctrl.Await(ctx)
	require.NoError(t, err)
	require.Equal(t, session.Authenticated, s.Phase, s.Message())

	profile, err := client.GetProfile(ctx, s.Token)
	require.NoError(t, err)
	require.Equal(t, "Alice", profile.DisplayName)

	ctrl.Logout()
	require.NoError(t, ctrl.SubmitLogin("alice@example.com", "wrong1"))
	s, err = ctrl.Await(ctx)
	require.NoError(t, err)
	require.Equal(t, session.Failed, s.Phase)
	require.Equal(t, service.MsgInvalidCredentials, s.Message())

	require.NoError(t, ctrl.SubmitLogin("Alice", "secret1"))
	s, err = ctrl.Await(ctx)
	require.NoError(t, err)
	require.Equal(t, session.Authenticated, s.Phase)
}

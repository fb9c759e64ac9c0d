package http

import (
	"log/slog"
	"net/http"
	"time"

	_ "github.com/marcos777-ux/Newsick-public/api/gateway" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/marcos777-ux/Newsick-public/internal/gateway/service"
	"github.com/marcos777-ux/Newsick-public/pkg/httpx"
	"github.com/marcos777-ux/Newsick-public/pkg/jwtx"
	"github.com/marcos777-ux/Newsick-public/pkg/slogx"
)

// RateLimits groups the limiter profiles the router applies.
type RateLimits struct {
	Strict   httpx.RateLimitConfig
	Moderate httpx.RateLimitConfig
	Public   httpx.RateLimitConfig
}

// DefaultRateLimits are the httpx profiles.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		Strict:   httpx.StrictLimit,
		Moderate: httpx.ModerateLimit,
		Public:   httpx.PublicLimit,
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	limits       RateLimits

	Metrics         *Metrics
	AccountsService *service.AccountService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	limits RateLimits,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		limits:       limits,
		Metrics:      NewMetrics(),
	}

	// Request logging wraps metrics so both see the same status recorder.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		r.Metrics.Middleware(),
	}

	return r
}

// ApplyRoutes registers every endpoint. Call it once the services are set.
func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerProfile()
	r.registerSystem()

	r.Mux.Handle("GET /swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
//
//	@title			Newsick Development Gateway API
//	@version		0.1.0
//	@description	Stand-in for the Newsick account backend: login, registration and profile.
//	@description	Tokens are EdDSA signed JWTs; clients treat them as opaque.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Access token from login or register. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{Accounts: r.AccountsService, Metrics: r.Metrics}
	deny := r.Metrics.denyRateLimited

	// Strict per IP + identifier so one address can't hammer an account,
	// moderate per identifier so an account can't be sprayed from many
	// addresses either.
	r.Mux.Handle("POST /api/login",
		httpx.Chain(http.HandlerFunc(h.Login),
			httpx.RateLimitByIPAndField(r.limits.Strict, "identifier", deny),
			httpx.RateLimitByField(r.limits.Moderate, "identifier", deny),
		),
	)

	r.Mux.Handle("POST /api/register",
		httpx.Chain(http.HandlerFunc(h.Register),
			httpx.RateLimitByIP(r.limits.Strict, deny),
		),
	)
}

func (r *Router) registerProfile() {
	r.Mux.Handle("GET /api/profile",
		httpx.Chain(&ProfileHandler{Accounts: r.AccountsService},
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitBySubject(r.limits.Moderate, nil),
		),
	)
}

func (r *Router) registerSystem() {
	public := httpx.RateLimitByIP(r.limits.Public, nil)

	r.Mux.Handle("GET /livez", httpx.Chain(LivezHandler(r.startTime, r.buildVersion), public))
	r.Mux.Handle("GET /readyz", httpx.Chain(ReadyzHandler(r.AccountsService.Store, r.buildVersion), public))
	r.Mux.Handle("GET /metrics", r.Metrics.Handler())
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/marcos777-ux/Newsick-public/internal/gateway/http"
	"github.com/marcos777-ux/Newsick-public/internal/gateway/service"
	"github.com/marcos777-ux/Newsick-public/internal/gateway/store"
	"github.com/marcos777-ux/Newsick-public/internal/gateway/store/drivers/memory"
	"github.com/marcos777-ux/Newsick-public/internal/gateway/store/drivers/sqlite"
	"github.com/marcos777-ux/Newsick-public/pkg/cryptox"
	"github.com/marcos777-ux/Newsick-public/pkg/jwtx"
	"github.com/marcos777-ux/Newsick-public/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application is the dev gateway with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	signer   *jwtx.EdDSASigner
	verifier jwtx.Verifier

	accountService *service.AccountService

	server *http.Server
	router *httpapi.Router
}

// New wires the application. Nothing listens until Run.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "newsick-gateway",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	db, err := openStore(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	app.db = db

	signer, verifier, err := InitSigningKey(cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize signing key: %w", err)
	}
	app.signer, app.verifier = signer, verifier

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler exposes the router, mostly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run serves until SIGINT/SIGTERM or a server error.
func (app *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", app.server.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return app.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (app *Application) Serve(ctx context.Context, ln net.Listener) error {
	app.logger.Info("gateway starting", "addr", ln.Addr().String(), "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		app.logger.Info("shutdown requested")
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	}
}

// Shutdown gives in-flight requests the grace period, then closes the store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down gateway...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing store", "error", err)
		return err
	}

	app.logger.Info("gateway stopped")
	return nil
}

func openStore(cfg Config, logger *slog.Logger) (store.Store, error) {
	if cfg.DatabaseFile == "" {
		logger.Warn("no GATEWAY_DATABASE_FILE set, accounts are kept in memory")
		return memory.NewStore(), nil
	}
	db, err := sqlite.Open(cfg.DatabaseFile)
	if err != nil {
		return nil, err
	}
	logger.Info("account store ready", "driver", "sqlite", "path", cfg.DatabaseFile)
	return db, nil
}

func (app *Application) initServices() error {
	pepper, err := cryptox.LoadOrCreatePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}
	hasher, err := cryptox.NewHasher(pepper)
	if err != nil {
		return fmt.Errorf("failed to initialize password hasher: %w", err)
	}

	app.accountService = &service.AccountService{
		Store:    app.db,
		Hasher:   hasher,
		Signer:   app.signer,
		Issuer:   app.cfg.Issuer,
		TokenTTL: app.cfg.TokenTTL,
	}
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		BuildVersion,
		httpapi.RateLimits{
			Strict:   app.cfg.StrictLimit,
			Moderate: app.cfg.ModerateLimit,
			Public:   app.cfg.PublicLimit,
		},
		app.logger,
	)
	router.AccountsService = app.accountService
	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

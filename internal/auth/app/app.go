package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/paperbark/journal/internal/auth/http"
	"github.com/paperbark/journal/internal/auth/service"
	"github.com/paperbark/journal/internal/auth/store"
	"github.com/paperbark/journal/internal/auth/store/drivers/sqlite"
	"github.com/paperbark/journal/pkg/cryptox"
	"github.com/paperbark/journal/pkg/httpx"
	"github.com/paperbark/journal/pkg/jwtx"
	"github.com/paperbark/journal/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	sessionService *service.SessionService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	if err := app.initHTTP(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes the business logic services
func (app *Application) initServices() {
	app.sessionService = &service.SessionService{
		Store:      app.db,
		AccessCtx:  app.signingContext(app.cfg.AccessSecret, app.cfg.AccessTTL),
		RefreshCtx: app.signingContext(app.cfg.RefreshSecret, app.cfg.RefreshTTL),
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() error {
	accessCtx := app.signingContext(app.cfg.AccessSecret, app.cfg.AccessTTL)
	if err := accessCtx.Validate(); err != nil {
		return fmt.Errorf("access signing context: %w", err)
	}

	app.router = httpapi.NewRouter(httpapi.RouterConfig{
		Logger:    app.logger,
		Store:     app.db,
		Sessions:  app.sessionService,
		AccessCtx: accessCtx,
		RateLimit: httpx.RateLimitConfig{
			MaxRequests: app.cfg.RateLimitMax,
			Window:      app.cfg.RateLimitWindow,
		},
		Cookies: httpapi.CookieConfig{
			Secure:     app.cfg.Env != "dev",
			AccessTTL:  app.cfg.AccessTTL,
			RefreshTTL: app.cfg.RefreshTTL,
		},
	})

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}

func (app *Application) signingContext(secret string, ttl time.Duration) jwtx.SigningContext {
	return jwtx.SigningContext{
		Secret:   []byte(secret),
		TTL:      ttl,
		Issuer:   app.cfg.Issuer,
		Audience: app.cfg.Audience,
	}
}

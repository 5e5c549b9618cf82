package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpapi "github.com/qmiks/rolegate/internal/auth/http"
	"github.com/qmiks/rolegate/internal/auth/service"
	"github.com/qmiks/rolegate/internal/auth/session"
	"github.com/qmiks/rolegate/internal/auth/store"
	"github.com/qmiks/rolegate/internal/auth/store/drivers/jsonfile"
	"github.com/qmiks/rolegate/pkg/cryptox"
	"github.com/qmiks/rolegate/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application wires the auth core together with its HTTP surface.
type Application struct {
	cfg    Config
	logger *slog.Logger

	store    store.Store
	sessions *session.Manager

	authService *service.AuthService
	userService *service.UserService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized. The users
// snapshot is loaded (and bootstrapped if missing) here, so a corrupted
// store fails the process at startup instead of on the first request.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "rolegate",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	hasher, err := selectHasher(cfg)
	if err != nil {
		return nil, err
	}

	app.store = jsonfile.New(cfg.UsersFile, hasher)
	if _, err := app.store.Load(context.Background()); err != nil {
		return nil, fmt.Errorf("load users store: %w", err)
	}

	app.sessions = session.NewManager()
	app.authService = &service.AuthService{Store: app.store, Hash: hasher}
	app.userService = &service.UserService{Store: app.store}

	app.initHTTP()
	return app, nil
}

func selectHasher(cfg Config) (cryptox.Hasher, error) {
	switch cfg.HashScheme {
	case "", "sha256":
		return cryptox.SHA256Hasher, nil
	case "argon2id":
		cryptox.SetPepperPath(cfg.PepperFile)
		return cryptox.Argon2Hasher, nil
	}
	return nil, fmt.Errorf("unknown hash scheme %q", cfg.HashScheme)
}

func (app *Application) initHTTP() {
	app.router = httpapi.NewRouter(app.store, app.sessions, app.logger, BuildVersion)
	app.router.AuthService = app.authService
	app.router.UserService = app.userService
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: app.router,
	}
}

// Run starts the HTTP server and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("rolegate starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"users_file", app.cfg.UsersFile,
		"hash_scheme", app.cfg.HashScheme,
	)

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

// Shutdown stops the HTTP server within the configured grace period.
func (app *Application) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("http server shutdown failed", "error", err)
		return err
	}

	app.logger.Info("shutdown complete")
	return nil
}

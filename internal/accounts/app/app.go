package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/scrimflow/accounts/internal/accounts/cooldown"
	"github.com/scrimflow/accounts/internal/accounts/geo"
	httpapi "github.com/scrimflow/accounts/internal/accounts/http"
	"github.com/scrimflow/accounts/internal/accounts/notify"
	"github.com/scrimflow/accounts/internal/accounts/service"
	"github.com/scrimflow/accounts/internal/accounts/store"
	"github.com/scrimflow/accounts/internal/accounts/store/drivers/postgres"
	"github.com/scrimflow/accounts/internal/accounts/store/drivers/sqlite"
	"github.com/scrimflow/accounts/pkg/cryptox"
	"github.com/scrimflow/accounts/pkg/httpx"
	"github.com/scrimflow/accounts/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the accounts service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db         store.Store
	redis      *redis.Client
	cooldown   cooldown.Limiter
	mailer     notify.Mailer
	dispatcher *notify.Dispatcher
	hasher     *cryptox.Hasher
	geo        *geo.Client

	// Services
	verificationService *service.VerificationService
	sessionService      *service.SessionService
	anomalyNotifier     *service.AnomalyNotifier
	authService         *service.AuthService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "accounts-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	pepper, err := cryptox.LoadPepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.NewHasher(pepper)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initCooldown(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initNotify(); err != nil {
		app.closeBackends()
		return nil, err
	}

	app.geo = geo.NewClient(cfg.GeoLookupURL, cfg.GeoLookupTimeout)

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("accounts service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"database", app.cfg.DatabaseDriver,
		"mail", app.cfg.MailDriver,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// Shutdown stops accepting requests, drains queued notifications and closes
// the backends.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down accounts service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Queued mail still reads the database, so drain before closing it.
	app.dispatcher.Close()
	if dropped := app.dispatcher.Dropped(); dropped > 0 {
		app.logger.Warn("notifications dropped during lifetime", "count", dropped)
	}

	if err := app.closeBackends(); err != nil {
		return err
	}

	app.logger.Info("accounts service stopped")
	return nil
}

func (app *Application) closeBackends() error {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// initDatabase opens the configured driver and applies migrations.
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.DatabaseDriver {
	case "sqlite":
		db, err = sqlite.NewStore(app.cfg.DatabaseFile)
	case "postgres":
		if app.cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL, postgres.Options{
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		})
	default:
		return fmt.Errorf("unknown database driver %q", app.cfg.DatabaseDriver)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initCooldown picks the shared Redis limiter when REDIS_URL is set and the
// in-process one otherwise.
func (app *Application) initCooldown() error {
	if app.cfg.CodeCooldown <= 0 {
		app.logger.Info("code issuance cooldown disabled")
		return nil
	}

	if app.cfg.RedisURL == "" {
		app.cooldown = cooldown.NewMemory(app.cfg.CodeCooldown)
		return nil
	}

	opts, err := redis.ParseURL(app.cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	app.redis = redis.NewClient(opts)

	limiter := cooldown.NewRedis(app.redis, app.cfg.CodeCooldown)

	// Redis being down at boot is not fatal; Allow fails open.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := limiter.Ping(ctx); err != nil {
		app.logger.Warn("redis unreachable at startup", "error", err)
	}

	app.cooldown = limiter
	return nil
}

func (app *Application) initNotify() error {
	switch app.cfg.MailDriver {
	case "log":
		app.mailer = notify.LogMailer{}
	case "smtp":
		mailer, err := notify.NewSMTPMailer(notify.SMTPConfig{
			Host:         app.cfg.SMTPHost,
			Port:         app.cfg.SMTPPort,
			Username:     app.cfg.SMTPUser,
			Password:     app.cfg.SMTPPassword,
			From:         app.cfg.MailFrom,
			SecurityFrom: app.cfg.SecurityMailFrom,
			CodeTTL:      service.DefaultCodeTTL,
			SecurityURL:  app.cfg.SecurityURL,
		})
		if err != nil {
			return fmt.Errorf("failed to configure smtp mailer: %w", err)
		}
		app.mailer = mailer
	default:
		return fmt.Errorf("unknown mail driver %q", app.cfg.MailDriver)
	}

	app.dispatcher = notify.NewDispatcher(notify.Config{
		Workers:   app.cfg.NotifyWorkers,
		QueueSize: app.cfg.NotifyQueueSize,
	}, app.logger)

	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.verificationService = &service.VerificationService{
		Store:    app.db,
		Mailer:   app.mailer,
		Runner:   app.dispatcher,
		Cooldown: app.cooldown,
		CodeTTL:  service.DefaultCodeTTL,
	}

	app.sessionService = &service.SessionService{
		Store: app.db,
		TTL:   service.DefaultSessionTTL,
	}

	app.anomalyNotifier = &service.AnomalyNotifier{
		Sessions: app.sessionService,
		Geo:      app.geo,
		Mailer:   app.mailer,
		Runner:   app.dispatcher,
	}

	app.authService = &service.AuthService{
		Store:        app.db,
		Hasher:       app.hasher,
		Verification: app.verificationService,
		Sessions:     app.sessionService,
		Anomaly:      app.anomalyNotifier,
	}
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	httpx.TrustedProxies = app.cfg.TrustedProxies

	router := httpapi.NewRouter(
		BuildVersion,
		app.db,
		app.authService,
		app.logger,
	)

	router.Geo = app.geo
	router.GeoTimeout = app.cfg.GeoLookupTimeout
	router.SecureCookies = app.cfg.Env == "prod"
	if limiter, ok := app.cooldown.(*cooldown.Redis); ok {
		router.Cache = limiter
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

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

	httpapi "github.com/casefolio/stepup/internal/mfa/http"
	"github.com/casefolio/stepup/internal/mfa/service"
	"github.com/casefolio/stepup/internal/mfa/store"
	"github.com/casefolio/stepup/internal/mfa/store/drivers/sqlite"
	"github.com/casefolio/stepup/pkg/cryptox"
	"github.com/casefolio/stepup/pkg/jwtx"
	"github.com/casefolio/stepup/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the step-up MFA service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db           store.Store
	markerSigner *jwtx.EdDSASigner
	authVerifier jwtx.Verifier

	// Services
	engine              *service.Engine
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "stepup-mfa",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for code hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	signer, err := InitMarkerSigner(app.cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize marker signer: %w", err)
	}
	app.markerSigner = signer

	verifier, err := InitAuthVerifier(app.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize auth verifier: %w", err)
	}
	app.authVerifier = verifier

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("step-up MFA service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down step-up MFA service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("step-up MFA service stopped")
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

// initServices initializes the assurance engine and its collaborators
func (app *Application) initServices() {
	challenges := &service.ChallengeService{
		Store:       app.db,
		Sender:      &service.SlogCodeSender{Logger: app.logger},
		Logger:      app.logger,
		TTL:         app.cfg.ChallengeTTL,
		MaxAttempts: app.cfg.ChallengeMaxAttempts,
	}

	devices := &service.DeviceService{
		Store:     app.db,
		TrustTTL:  app.cfg.DeviceTrustTTL,
		IncludeIP: app.cfg.FingerprintIncludeIP,
	}

	app.engine = &service.Engine{
		Store:      app.db,
		Challenges: challenges,
		Devices:    devices,
		Grace: service.GracePolicy{
			Window:      app.cfg.GraceWindow,
			EnforceFrom: app.cfg.EnforceFrom,
		},
		Marker:    app.markerSigner,
		MarkerTTL: app.cfg.MarkerTTL,
		Issuer:    app.cfg.Issuer,
		Authz:     service.ScopeAuthorizer{},
		Audit:     &service.SlogAuditRecorder{Logger: app.logger},
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.authVerifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.Engine = app.engine
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

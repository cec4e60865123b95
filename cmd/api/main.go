package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"budgetcontrol/internal/auth"
	"budgetcontrol/internal/config"
	"budgetcontrol/internal/database"
	"budgetcontrol/internal/logger"
	"budgetcontrol/internal/mailer"
	"budgetcontrol/internal/ratelimit"
	"budgetcontrol/internal/server"
	"budgetcontrol/internal/validator"
)

// @title           Budget Control API
// @version         1.0
// @description     Budget Control lets users register, verify their account by email and track spending against budgets.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const shutdownTimeout = 10 * time.Second

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() { _ = dbManager.Close() }()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	issuer, err := auth.NewSessionIssuer(appConfig.JWTSecret, appConfig.JWTExpirationDur)
	if err != nil {
		return fmt.Errorf("failed to create session issuer: %w", err)
	}

	notifier, err := newNotifier(appConfig)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	limiter, err := newLimiter(ctx, appConfig)
	if err != nil {
		return err
	}

	validator.Register()

	router := server.NewRouter(server.Deps{
		DB:            dbManager.DB(),
		Issuer:        issuer,
		Hasher:        auth.NewBcryptHasher(appConfig.BcryptCost),
		Notifier:      notifier,
		Limiter:       limiter,
		CodeTTL:       appConfig.OneTimeTokenTTL,
		AllowedOrigin: appConfig.FrontendURL,
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Budget Control server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnf("server shutdown: %v", err)
	}

	// Let queued emails finish before exiting.
	notifier.Wait()
	return nil
}

// newNotifier builds the asynchronous email notifier for the configured driver.
func newNotifier(cfg *config.Config) (*mailer.Async, error) {
	renderer, err := mailer.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}

	var transport mailer.Transport
	switch cfg.MailDriver {
	case "smtp":
		transport, err = mailer.NewSMTPTransport(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
		if err != nil {
			return nil, fmt.Errorf("failed to create SMTP transport: %w", err)
		}
	default:
		transport = mailer.NewLogTransport(logger.Named("mail"))
	}

	m := mailer.New(renderer, transport, cfg.FrontendURL, cfg.OneTimeTokenTTL)
	return mailer.NewAsync(m, logger.Named("mail")), nil
}

// newLimiter uses redis when REDIS_URL is set and an in-process limiter otherwise.
func newLimiter(ctx context.Context, cfg *config.Config) (ratelimit.Limiter, error) {
	if cfg.RedisURL == "" {
		logger.Get().Info("REDIS_URL not set, using in-memory rate limiter")
		return ratelimit.NewMemoryLimiter(cfg.RateLimitMax, cfg.RateLimitWindow), nil
	}

	client, err := ratelimit.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return ratelimit.NewRedisLimiter(client, cfg.RateLimitMax, cfg.RateLimitWindow), nil
}

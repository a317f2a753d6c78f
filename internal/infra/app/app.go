package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/edvana/school-platform-auth/internal/core/port"
	"github.com/edvana/school-platform-auth/internal/infra/config"
	"github.com/edvana/school-platform-auth/internal/infra/database"
	"github.com/edvana/school-platform-auth/internal/infra/kafka"
	"github.com/edvana/school-platform-auth/internal/infra/mail"
	redisinfra "github.com/edvana/school-platform-auth/internal/infra/redis"
	"github.com/edvana/school-platform-auth/internal/infra/security"
	postgresrepo "github.com/edvana/school-platform-auth/internal/repository/postgres"
	redisrepo "github.com/edvana/school-platform-auth/internal/repository/redis"
	"github.com/edvana/school-platform-auth/internal/transport/http/handlers"
	"github.com/edvana/school-platform-auth/internal/transport/http/middleware"
	"github.com/edvana/school-platform-auth/internal/transport/http/routes"
	"github.com/edvana/school-platform-auth/internal/usecase"
)

// App owns the wired dependency graph and the HTTP server lifecycle.
type App struct {
	cfg    *config.AppConfig
	log    *zap.Logger
	server *http.Server

	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafka.Producer
}

// New builds the full dependency graph from configuration.
func New(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (*App, error) {
	if err := security.ConfigureArgon2(security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	}); err != nil {
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, err
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, err
	}

	tokens, err := security.NewTokenService(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, err
	}

	app := &App{cfg: cfg, log: log, pool: pool, redis: redisClient}

	var events port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, log)
		if err != nil {
			app.closeInfra()
			return nil, err
		}
		app.producer = producer
		events = kafka.NewEventPublisher(producer, cfg.Kafka.TopicPrefix, log)
	} else {
		log.Warn("no kafka brokers configured, events will only be logged")
		events = kafka.NewStubEventPublisher(log)
	}

	var notifier port.Notifier
	if cfg.SMTP.Host != "" {
		notifier, err = mail.NewSMTPNotifier(cfg.SMTP, log)
		if err != nil {
			app.closeInfra()
			return nil, err
		}
	} else {
		log.Warn("no smtp host configured, reset codes will only be logged")
		notifier = mail.NewLoggingNotifier(log)
	}

	users := postgresrepo.NewUserRepository(pool)
	store := redisrepo.NewTTLStore(redisClient.Client())

	authService := usecase.NewAuthService(users, store, tokens, events, log)
	resetService := usecase.NewPasswordResetService(
		users, store, notifier, events,
		security.DefaultPasswordValidator(),
		cfg.JWT.OTPTTL,
		log,
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.CORS(),
	)

	routes.Register(router, routes.Deps{
		Auth:      handlers.NewAuthHandler(authService),
		Password:  handlers.NewPasswordHandler(resetService),
		Health:    handlers.NewHealthHandler(pool, redisClient),
		Validator: authService,
		Limiter:   middleware.NewRateLimiter(redisClient.Client(), cfg.RateLimit.WindowDuration, log),
		RateLimit: cfg.RateLimit,
	})

	app.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return app, nil
}

// Run serves HTTP until the context is canceled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.closeInfra()
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.log.Error("http shutdown failed", zap.Error(err))
	}

	a.closeInfra()
	return nil
}

func (a *App) closeInfra() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.log.Error("close kafka producer failed", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Error("close redis failed", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

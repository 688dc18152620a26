package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fidena/fidena/adapters/events"
	"github.com/fidena/fidena/adapters/postgres"
	"github.com/fidena/fidena/adapters/store"
	"github.com/fidena/fidena/adapters/tokenizer"
	"github.com/fidena/fidena/config"
	"github.com/fidena/fidena/internal/logging"
	"github.com/fidena/fidena/internal/ratelimit"
	"github.com/fidena/fidena/ports"
	"github.com/fidena/fidena/service"
	"github.com/fidena/fidena/transport/http"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err := logging.New(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		if cfg.Production() {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg, logger)
	},
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.RunMigrations(ctx, db); err != nil {
		return err
	}
	storage := postgres.NewStorage(db)

	var redisClient redis.UniversalClient
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		redisClient = client
	}

	publisher, err := events.NewPublisher(redisClient, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()
	eventPub := events.NewWatermillPublisher(publisher)

	var (
		challenges  ports.ChallengeStore = store.NewMemoryChallengeStore()
		revocations ports.RevocationStore
	)
	if redisClient != nil {
		challenges = store.NewRedisChallengeStore(redisClient)
	}
	if cfg.SessionRevocation {
		if redisClient != nil {
			revocations = store.NewRedisRevocationStore(redisClient)
		} else {
			revocations = store.NewMemoryRevocationStore()
		}
	}

	tk, err := tokenizer.NewJWTTokenizer([]byte(cfg.SessionSecret))
	if err != nil {
		return err
	}

	auth := service.NewAuthService(tk, challenges, revocations, eventPub, logger, service.AuthConfig{
		Issuer:     tokenizer.Issuer(cfg.Version),
		SessionTTL: cfg.SessionTTL,
	})

	router, err := http.SetupRouter(http.Deps{
		Auth:         auth,
		Registration: service.NewRegistrationService(storage, auth, eventPub, logger),
		Users:        service.NewUserService(storage),
		Finance:      service.NewFinanceService(storage, logger),
		Gate: http.GateConfig{
			PathPatterns:   cfg.GatePaths,
			RedirectTarget: cfg.GateRedirect,
		},
		Cookies: http.CookieConfig{
			Secure: cfg.Production(),
			TTL:    auth.SessionTTL(),
		},
		RateLimit: &ratelimit.Config{
			Enabled:           cfg.RateLimitEnabled,
			RequestsPerMinute: cfg.RateLimitRPM,
		},
		Ping:   storage.Ping,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	srv := &nethttp.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("env", cfg.Env),
			zap.Bool("redis", redisClient != nil),
			zap.Bool("revocation", revocations != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

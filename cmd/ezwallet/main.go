package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattiachiarle/ezwallet-sub000/internal/authz"
	"github.com/mattiachiarle/ezwallet-sub000/internal/config"
	"github.com/mattiachiarle/ezwallet-sub000/internal/handlers"
	"github.com/mattiachiarle/ezwallet-sub000/internal/logging"
	"github.com/mattiachiarle/ezwallet-sub000/internal/ratelimit"
	"github.com/mattiachiarle/ezwallet-sub000/internal/repository"
	"github.com/mattiachiarle/ezwallet-sub000/internal/server"
	"github.com/mattiachiarle/ezwallet-sub000/internal/service"
	"github.com/mattiachiarle/ezwallet-sub000/pkg/tokens"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("ezwallet"))
	logging.SetDefault(&logging.Logger{Logger: logger})

	slog.Info("Starting EzWallet API",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Logging.Level),
	)
	if *configPath != "" {
		slog.Info("Loaded configuration", slog.String("config_path", *configPath))
	}

	// Repository selection
	var repo repository.Repository
	if cfg.Database.Type == "postgres" {
		connString := cfg.Database.Postgres.ConnString()

		slog.Info("Connecting to PostgreSQL",
			slog.String("host", cfg.Database.Postgres.Host),
			slog.Int("port", cfg.Database.Postgres.Port),
			slog.String("database", cfg.Database.Postgres.Database),
		)

		pgRepo, err := repository.NewPostgresRepository(context.Background(), connString)
		if err != nil {
			slog.Error("Failed to connect to PostgreSQL", logging.Error(err))
			os.Exit(1)
		}
		defer pgRepo.Close()
		repo = pgRepo

		slog.Info("Running database migrations")
		if err := repository.RunMigrations(connString); err != nil {
			slog.Error("Migrations failed", logging.Error(err))
			os.Exit(1)
		}
	} else {
		slog.Warn("Using in-memory repository (development only)")
		repo = repository.NewInMemoryRepository()
	}

	// Login rate limiter
	var limiter ratelimit.Limiter = &ratelimit.NoOpLimiter{}
	if cfg.RateLimit.Enabled {
		redisLimiter, err := ratelimit.NewRedisLimiter(
			cfg.RateLimit.RedisURL,
			cfg.RateLimit.LoginLimit,
			cfg.RateLimit.Window,
		)
		if err != nil {
			slog.Error("Failed to connect rate limiter", logging.Error(err))
			os.Exit(1)
		}
		defer redisLimiter.Close()
		limiter = redisLimiter
		slog.Info("Login rate limiting enabled",
			slog.Int("limit", cfg.RateLimit.LoginLimit),
			slog.Duration("window", cfg.RateLimit.Window),
		)
	}

	// Core wiring: codec -> issuer + evaluator -> handlers
	codec := tokens.NewCodec(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	evaluator := authz.NewEvaluator(codec)
	authService := service.NewAuthService(repo, codec, cfg.Auth.BcryptCost)
	walletService := service.NewWalletService(repo)

	authHandler := handlers.NewAuthHandler(authService, codec, limiter)
	walletHandler := handlers.NewWalletHandler(walletService, evaluator)
	router := server.NewRouter(authHandler, walletHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("EzWallet API listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", logging.Error(err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", logging.Error(err))
		os.Exit(1)
	}

	slog.Info("Server stopped gracefully")
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	_ "github.com/redmonkez12/trip-expense-api/docs" // Swagger docs (generated)
	"github.com/redmonkez12/trip-expense-api/internal/auth"
	"github.com/redmonkez12/trip-expense-api/internal/config"
	"github.com/redmonkez12/trip-expense-api/internal/database"
	"github.com/redmonkez12/trip-expense-api/internal/email"
	httpServer "github.com/redmonkez12/trip-expense-api/internal/http"
	"github.com/redmonkez12/trip-expense-api/internal/identity"
	"github.com/redmonkez12/trip-expense-api/internal/logging"
	"github.com/redmonkez12/trip-expense-api/internal/ratelimit"
	"github.com/redmonkez12/trip-expense-api/internal/trip"
	"github.com/redmonkez12/trip-expense-api/internal/user"
)

// @title           Trip Expense API
// @version         1.0
// @description     Backend for tracking trips and their expenses per authenticated user.

// @host      localhost:8000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	db, err := database.Open(cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := database.CreateSchema(context.Background(), db); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	userRepo := user.NewRepository(db)
	tripRepo := trip.NewRepository(db)

	rateLimiter := ratelimit.NewLimiter(redisClient)

	tokenService, err := newTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	passwordScheme, err := auth.NewPasswordScheme(cfg.Auth.PasswordScheme)
	if err != nil {
		return fmt.Errorf("failed to initialize password scheme: %w", err)
	}

	emailService := email.NewService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FrontendURL,
	)

	var provider identity.Provider = identity.NoopProvider{}
	if cfg.Auth.RequireEmailVerification {
		provider = identity.NewMailProvider(userRepo, emailService, logger)
	}

	authService := auth.NewService(
		userRepo,
		tokenService,
		provider,
		passwordScheme,
		logger,
		cfg.Auth.LoginTokenDuration,
		cfg.Auth.RegisterTokenDuration,
		cfg.Auth.RequireEmailVerification,
	)
	tripService := trip.NewService(tripRepo, userRepo)

	authHandler := auth.NewHandler(authService, rateLimiter, logger)
	tripHandler := trip.NewHandler(tripService, logger)
	authMiddleware := auth.NewMiddleware(tokenService)

	router := httpServer.NewRouter(cfg, authHandler, tripHandler, authMiddleware, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// newTokenService picks the configured token codec.
func newTokenService(cfg config.AuthConfig) (auth.TokenService, error) {
	switch cfg.TokenProvider {
	case "paseto":
		return auth.NewPasetoService(cfg.SecretKey)
	default:
		return auth.NewJWTService(cfg.SecretKey, cfg.Algorithm)
	}
}

func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

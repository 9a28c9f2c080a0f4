package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/bloggers-platform/accounts-api/internal/api"
	"github.com/bloggers-platform/accounts-api/internal/core/ports"
	"github.com/bloggers-platform/accounts-api/internal/core/service"
	"github.com/bloggers-platform/accounts-api/internal/infrastructure/db/mongo"
	"github.com/bloggers-platform/accounts-api/internal/infrastructure/db/redis"
	"github.com/bloggers-platform/accounts-api/internal/infrastructure/email"
	"github.com/bloggers-platform/accounts-api/internal/infrastructure/queue"
	"github.com/bloggers-platform/accounts-api/internal/pkg/config"
	"github.com/bloggers-platform/accounts-api/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	userRepo := mongo.NewUserRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create user indexes")
	}

	var sender ports.NotificationSender
	if cfg.Email.MailgunDomain != "" && cfg.Email.MailgunAPIKey != "" {
		sender = email.NewMailgunSender(email.Config{
			Domain:  cfg.Email.MailgunDomain,
			APIKey:  cfg.Email.MailgunAPIKey,
			From:    cfg.Email.From,
			BaseURL: cfg.Email.PublicBaseURL,
		})
	} else {
		log.Warn().Msg("mailgun not configured, emails will only be logged")
		sender = email.NewLogSender(log)
	}

	dispatcher := queue.NewEmailDispatcher(0, sender, log)
	dispatcher.Start(ctx)

	limiter := redis.NewRateLimiter(rdb, cfg.Throttle.Limit, cfg.Throttle.Window)

	// --- Services ---
	hasher := service.NewBcryptHasher(0)
	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	factory := service.NewUserFactory(userRepo, hasher)
	authService := service.NewAuthService(userRepo, factory, hasher, tokens, sender, dispatcher,
		service.Expirations{
			EmailConfirmation: cfg.EmailConfirmationExpiration,
			PasswordRecovery:  cfg.PasswordRecoveryExpiration,
		}, log)
	usersService := service.NewUsersService(userRepo, log)

	// --- HTTP ---
	e := api.NewRouter(api.RouterParams{
		Env:          cfg.Env,
		AuthService:  authService,
		UsersService: usersService,
		Verifier:     tokens,
		Limiter:      limiter,
		Mongo:        db,
		Redis:        rdb,
		Log:          log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("accounts API listening")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

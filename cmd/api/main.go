package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/civicsync/civicsync-api/internal/api"
	"github.com/civicsync/civicsync-api/internal/infrastructure/config"
	mongodb "github.com/civicsync/civicsync-api/internal/infrastructure/db/mongo"
	redisdb "github.com/civicsync/civicsync-api/internal/infrastructure/db/redis"
	"github.com/civicsync/civicsync-api/internal/infrastructure/queue"
	"github.com/civicsync/civicsync-api/pkg/logger"
)

// @title           CivicSync API
// @version         1.0
// @description     Civic issue-reporting backend: citizens raise issues, authorities assign and resolve them.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// The signing secret is process-wide state; starting without it
	// would leave every login and token check broken, so refuse to boot.
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	principalRepo := mongodb.NewPrincipalRepository(db)
	issueRepo := mongodb.NewIssueRepository(db)
	if err := principalRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("principal index creation failed")
	}
	if err := issueRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("issue index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	dispatcher := queue.NewDispatcher(cfg.Workers, principalRepo, log)
	dispatcher.Start(ctx)

	e := api.NewRouter(db, rdb, dispatcher, cfg, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

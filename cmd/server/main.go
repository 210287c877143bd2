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

	"github.com/T-Watch/T-Watch-Backend/internal/api"
	"github.com/T-Watch/T-Watch-Backend/internal/auth"
	"github.com/T-Watch/T-Watch-Backend/internal/config"
	"github.com/T-Watch/T-Watch-Backend/internal/logging"
	"github.com/T-Watch/T-Watch-Backend/internal/repository"
	"github.com/T-Watch/T-Watch-Backend/internal/repository/memory"
	"github.com/T-Watch/T-Watch-Backend/internal/repository/mongo"
	"github.com/T-Watch/T-Watch-Backend/internal/service"
	"github.com/T-Watch/T-Watch-Backend/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, err := logging.New(cfg.App.IsProduction(), cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log.Info("starting T-Watch server",
		zap.String("environment", cfg.App.Environment),
		zap.String("driver", cfg.Database.Driver))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage backend ---
	var repos repository.Repositories
	switch cfg.Database.Driver {
	case config.DriverMemory:
		log.Warn("using the in-memory store, data is lost on exit")
		repos = memory.NewStore().Repositories()
	default:
		store := mongo.NewStore(cfg.Database.URI, cfg.Database.Name, log.Named("mongo"))
		// the server starts answering right away; storage calls fail with
		// 503 until the connection is up
		store.ConnectAsync(ctx, cfg.Database.ConnectRetry)
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := store.Disconnect(disconnectCtx); err != nil {
				log.Error("failed to disconnect MongoDB", zap.Error(err))
			}
		}()
		repos = store.Repositories()
	}

	// --- Photo storage ---
	var photos storage.PhotoStorage
	if cfg.S3.Enabled() {
		photos, err = storage.NewS3Storage(ctx, cfg.S3, log.Named("s3"))
		if err != nil {
			return fmt.Errorf("init photo storage: %w", err)
		}
	} else {
		log.Info("photo storage disabled, s3.bucket_name is empty")
	}

	// --- Services ---
	tokens, err := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.PreviousSecrets...)
	if err != nil {
		return err
	}
	if cfg.Auth.Bypass {
		log.Warn("authorization bypass is enabled, gated operations accept requests without a token")
	}

	users := service.NewUserService(repos.Users, repos.Trainings, photos, log.Named("users"))
	svc := api.Services{
		Gate:     auth.NewGate(tokens, cfg.Auth.Bypass),
		Auth:     service.NewAuthService(repos.Users, tokens),
		Users:    users,
		Training: service.NewTrainingService(repos.Trainings, repos.Blocks, service.NewBlockResolver(repos.Blocks)),
		Results:  service.NewResultCoordinator(repos, cfg.Database.Transactions, log.Named("results")),
		Plans:    service.NewPlanService(repos.Plans),
		Messages: service.NewMessageService(repos.Messages),
		Health:   repos.Health,
	}

	// --- HTTP ---
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	api.SetupRoutes(router, svc, cfg.Server.CORSOrigins, log.Named("http"))

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("server exited")
	return nil
}

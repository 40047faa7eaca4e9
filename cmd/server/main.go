package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/api"
	"github.com/roupadegala/servicecontrol/internal/cache"
	"github.com/roupadegala/servicecontrol/internal/config"
	"github.com/roupadegala/servicecontrol/internal/logging"
	"github.com/roupadegala/servicecontrol/internal/repository"
	"github.com/roupadegala/servicecontrol/internal/repository/memory"
	"github.com/roupadegala/servicecontrol/internal/repository/postgres"
	"github.com/roupadegala/servicecontrol/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting service order server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("storage", cfg.Storage),
		zap.String("timezone", cfg.Location.String()),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize storage
	var repos *repository.Repositories
	switch cfg.Storage {
	case config.StorageMemory:
		repos = memory.NewRepositories()
		logger.Warn("Using in-memory storage; data is lost on restart")
	default:
		var db *sql.DB
		db, err = postgres.NewConnection(cfg.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if cfg.Database.MigrateOnStart {
			if err := postgres.RunMigrations(cfg.Database, logger); err != nil {
				logger.Fatal("Failed to run migrations", zap.Error(err))
			}
		}
		repos = postgres.NewRepositories(db, logger)
	}

	// Optional phase cache
	if cfg.Redis.Addr != "" {
		rdb, err := cache.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer rdb.Close()
		repos.Phase = cache.NewPhaseRepository(repos.Phase, rdb, cfg.Redis.PhaseTTL, logger)
		logger.Info("Phase cache enabled", zap.String("redis_addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.PhaseTTL))
	}

	// Initialize services
	opts := []service.Option{
		service.WithLocation(cfg.Location),
		service.WithUpcomingWindow(cfg.UpcomingWindowDays),
	}
	registry := service.NewPhaseRegistry(repos.Phase, logger)
	composer := service.NewItemComposer(repos, logger)
	lifecycle := service.NewOrderLifecycle(repos, registry, composer, logger, opts...)
	reporter := service.NewReporter(repos, lifecycle, logger, opts...)
	actors := service.NewActorService(repos, logger)

	if cfg.Storage == config.StorageMemory {
		if err := bootstrapAdmin(ctx, actors, os.Stdout, logger); err != nil {
			logger.Fatal("Failed to create bootstrap admin", zap.Error(err))
		}
	}

	// Initialize router
	router := api.NewRouter(cfg, api.Services{
		Orders:          lifecycle,
		Metrics:         reporter,
		Actors:          actors,
		Auth:            actors,
		IdempotencyKeys: repos.IdempotencyKey,
	}, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	go service.RunSweepLoop(ctx, lifecycle, cfg.SweepInterval, logger)

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// bootstrapAdmin creates an administrator for in-memory runs, where no CLI
// can reach the store. The key goes to out once and never to the log.
func bootstrapAdmin(ctx context.Context, actors *service.ActorService, out io.Writer, logger *zap.Logger) error {
	created, err := actors.Create(ctx, service.CreateActorRequest{Name: "admin", Role: "ADMIN"})
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "in-memory admin api key: %s\n", created.APIKey); err != nil {
		return err
	}
	logger.Warn("Created in-memory admin actor", zap.String("actor_id", created.Actor.ID.String()))
	return nil
}

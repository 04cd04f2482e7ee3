package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"product-catalog/internal/config"
	"product-catalog/internal/database"
	"product-catalog/internal/logger"
	"product-catalog/internal/repository"
	"product-catalog/internal/server"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	// In-flight requests get 30 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")
	done <- true
}

// openRepository connects the configured storage backend.
// The returned closer releases its connection.
func openRepository(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.ProductRepository, server.CloserFunc, error) {
	switch cfg.Storage.Driver {
	case config.StorageMongo:
		client, err := database.ConnectMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}

		repo := repository.NewMongoProductRepository(database.ProductCollection(client, cfg.Mongo))
		return repo, func() error {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.Disconnect(disconnectCtx)
		}, nil

	case config.StoragePostgres:
		db, err := database.OpenPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}

		if err := database.RunMigrations(db, log); err != nil {
			db.Close()
			return nil, nil, err
		}

		return repository.NewPostgresProductRepository(db), db.Close, nil

	case config.StorageMemory:
		log.Warn("Using in-memory storage, products are lost on restart")
		return repository.NewMemoryProductRepository(), func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("invalid configuration: %v", err))
	}

	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting product catalog API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Driver),
	)

	repo, closeRepo, err := openRepository(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("Failed to open storage", zap.Error(err))
	}
	log.Info("Storage ready", zap.String("driver", cfg.Storage.Driver))

	var redisClient *redis.Client
	if cfg.RateLimit.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		log.Info("Rate limiting enabled",
			zap.String("redis_addr", cfg.Redis.Addr()),
			zap.Int("requests", cfg.RateLimit.Requests),
			zap.Int("window_seconds", cfg.RateLimit.WindowSeconds),
		)
	}

	srv := server.NewServer(cfg, log, repo, redisClient, server.WithCloser(closeRepo))

	done := make(chan bool, 1)
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	log.Info("Graceful shutdown complete")
}

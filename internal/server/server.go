package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"product-catalog/internal/config"
	custommiddleware "product-catalog/internal/middleware"
	"product-catalog/internal/repository"
	"product-catalog/internal/service"
	"product-catalog/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config  *config.Config
	logger  *zap.Logger
	repo    repository.ProductRepository
	closers []io.Closer
}

// Option customizes a server
type Option func(*Server)

// CloserFunc adapts a function to io.Closer
type CloserFunc func() error

func (f CloserFunc) Close() error {
	return f()
}

// WithCloser registers a resource released when the server closes
func WithCloser(c io.Closer) Option {
	return func(s *Server) {
		s.closers = append(s.closers, c)
	}
}

func NewServer(cfg *config.Config, logger *zap.Logger, repo repository.ProductRepository, redisClient *redis.Client, opts ...Option) *Server {
	server := &Server{
		config: cfg,
		logger: logger,
		repo:   repo,
	}
	for _, opt := range opts {
		opt(server)
	}
	if redisClient != nil {
		server.closers = append(server.closers, redisClient)
	}

	server.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      server.routes(redisClient),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}

func (s *Server) routes(redisClient *redis.Client) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(custommiddleware.LoggingMiddleware(s.logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.ErrorHandlingMiddleware(s.logger))
	router.Use(custommiddleware.CORSMiddleware(s.config.Server.AllowedOrigins, s.config.IsDevelopment()))

	if s.config.RateLimit.Enabled && redisClient != nil {
		router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: s.config.RateLimit.Requests,
			Window:            time.Duration(s.config.RateLimit.WindowSeconds) * time.Second,
			KeyPrefix:         "product_catalog_rate_limit",
		}, s.logger))
	}

	router.Get("/health", s.health)

	productService := service.NewProductService(s.repo, s.logger.Named("products"))
	transport.NewProductHandler(productService, s.logger).RegisterRoutes(router)

	return router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.repo.Ping(ctx); err != nil {
		s.logger.Warn("Storage health check failed", zap.Error(err))
		custommiddleware.RespondWithError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}

	custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"storage": s.config.Storage.Driver,
	})
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			s.logger.Error("Failed to close resource", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}

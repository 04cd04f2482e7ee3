package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"product-catalog/internal/domain"
	"product-catalog/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductQuery holds the optional, inclusive price bounds of a product query
type ProductQuery struct {
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
}

// ProductService defines the product catalog operations.
// Failures are reported as *domain.NotFoundError, *domain.InsertionError,
// *domain.ValidationError or *domain.ConversionError, or wrap a storage error.
type ProductService interface {
	Create(ctx context.Context, in domain.ProductIn) (domain.ProductOut, error)
	Get(ctx context.Context, id uuid.UUID) (domain.ProductOut, error)
	Query(ctx context.Context, query ProductQuery) ([]domain.ProductOut, error)
	Update(ctx context.Context, id uuid.UUID, update domain.ProductUpdate) (domain.ProductUpdateOut, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Option customizes a product service
type Option func(*productService)

// WithClock sets the source of creation and update timestamps
func WithClock(now func() time.Time) Option {
	return func(s *productService) {
		s.clock = now
	}
}

// WithIDGenerator sets the source of new product IDs
func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(s *productService) {
		s.newID = newID
	}
}

type productService struct {
	productRepo repository.ProductRepository
	logger      *zap.Logger
	clock       func() time.Time
	newID       func() uuid.UUID

	mu       sync.Mutex
	lastTime time.Time
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository, logger *zap.Logger, opts ...Option) ProductService {
	s := &productService{
		productRepo: productRepo,
		logger:      logger,
		clock:       time.Now,
		newID:       uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// now returns the current time in UTC at millisecond precision, the finest
// resolution every storage backend keeps. Successive stamps strictly increase,
// so an update never shares its updated_at with the previous write even when
// both land in the same millisecond.
func (s *productService) now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock().UTC().Truncate(time.Millisecond)
	if !now.After(s.lastTime) {
		now = s.lastTime.Add(time.Millisecond)
	}
	s.lastTime = now
	return now
}

// Create stores a new product with a generated ID and fresh timestamps
func (s *productService) Create(ctx context.Context, in domain.ProductIn) (domain.ProductOut, error) {
	product, err := domain.NewProduct(in, s.newID(), s.now())
	if err != nil {
		return domain.ProductOut{}, err
	}

	if err := s.productRepo.InsertOne(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductRejected) {
			s.logger.Warn("Product insertion rejected",
				zap.String("product_id", product.ID.String()),
				zap.Error(err),
			)
			return domain.ProductOut{}, &domain.InsertionError{Message: err.Error()}
		}
		return domain.ProductOut{}, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	return product.Out(), nil
}

// Get retrieves a product by ID
func (s *productService) Get(ctx context.Context, id uuid.UUID) (domain.ProductOut, error) {
	product, err := s.productRepo.FindOne(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return domain.ProductOut{}, &domain.NotFoundError{ID: id}
		}
		return domain.ProductOut{}, fmt.Errorf("failed to get product: %w", err)
	}

	return product.Out(), nil
}

// Query lists the products whose price falls inside the query bounds
func (s *productService) Query(ctx context.Context, query ProductQuery) ([]domain.ProductOut, error) {
	products, err := s.productRepo.FindMany(ctx, repository.ProductFilter{
		PriceMin: query.PriceMin,
		PriceMax: query.PriceMax,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	out := make([]domain.ProductOut, 0, len(products))
	for _, product := range products {
		out = append(out, product.Out())
	}

	return out, nil
}

// Update merges the fields present in the update into the stored product.
// updated_at is always advanced, even when no other field is set.
func (s *productService) Update(ctx context.Context, id uuid.UUID, update domain.ProductUpdate) (domain.ProductUpdateOut, error) {
	update.UpdatedAt = s.now()
	if update.IsEmpty() {
		s.logger.Debug("Empty product update, only updated_at advances", zap.String("product_id", id.String()))
	}

	patch, err := domain.BuildPatch(update)
	if err != nil {
		return domain.ProductUpdateOut{}, err
	}

	product, err := s.productRepo.UpdateOne(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return domain.ProductUpdateOut{}, &domain.NotFoundError{ID: id}
		}
		return domain.ProductUpdateOut{}, fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info("Product updated",
		zap.String("product_id", id.String()),
		zap.Strings("fields", patch.Fields()),
	)
	return product.UpdateOut(), nil
}

// Delete removes a product by ID
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.productRepo.DeleteOne(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if deleted == 0 {
		return &domain.NotFoundError{ID: id}
	}

	s.logger.Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}

package repository

import (
	"context"
	"fmt"
	"sync"

	"product-catalog/internal/domain"

	"github.com/google/uuid"
)

type memoryProductRepository struct {
	mu       sync.RWMutex
	order    []uuid.UUID
	products map[uuid.UUID]domain.Product
}

// NewMemoryProductRepository creates a ProductRepository that keeps documents in memory.
// FindMany returns documents in insertion order.
func NewMemoryProductRepository() ProductRepository {
	return &memoryProductRepository{
		products: make(map[uuid.UUID]domain.Product),
	}
}

func (r *memoryProductRepository) InsertOne(ctx context.Context, product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[product.ID]; exists {
		return fmt.Errorf("%w: duplicate id %s", ErrProductRejected, product.ID)
	}

	r.products[product.ID] = product
	r.order = append(r.order, product.ID)
	return nil
}

func (r *memoryProductRepository) FindOne(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, exists := r.products[id]
	if !exists {
		return domain.Product{}, ErrProductNotFound
	}
	return product, nil
}

func (r *memoryProductRepository) FindMany(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := []domain.Product{}
	for _, id := range r.order {
		product := r.products[id]
		if filter.Matches(product.Price) {
			products = append(products, product)
		}
	}
	return products, nil
}

func (r *memoryProductRepository) UpdateOne(ctx context.Context, id uuid.UUID, patch domain.Patch) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, exists := r.products[id]
	if !exists {
		return domain.Product{}, ErrProductNotFound
	}

	merged, err := domain.ApplyPatch(product, patch)
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to apply patch: %w", err)
	}

	r.products[id] = merged
	return merged, nil
}

func (r *memoryProductRepository) DeleteOne(ctx context.Context, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[id]; !exists {
		return 0, nil
	}

	delete(r.products, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return 1, nil
}

func (r *memoryProductRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

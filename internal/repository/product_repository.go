package repository

import (
	"context"
	"errors"

	"product-catalog/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrProductRejected = errors.New("product not inserted")
)

// ProductFilter restricts FindMany to an inclusive price range.
// A nil bound leaves that side open.
type ProductFilter struct {
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
}

// Matches reports whether a price falls inside the filter bounds
func (f ProductFilter) Matches(price decimal.Decimal) bool {
	if f.PriceMin != nil && price.LessThan(*f.PriceMin) {
		return false
	}
	if f.PriceMax != nil && price.GreaterThan(*f.PriceMax) {
		return false
	}
	return true
}

// ProductRepository defines the interface for product document storage
type ProductRepository interface {
	InsertOne(ctx context.Context, product domain.Product) error
	FindOne(ctx context.Context, id uuid.UUID) (domain.Product, error)
	FindMany(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	UpdateOne(ctx context.Context, id uuid.UUID, patch domain.Patch) (domain.Product, error)
	DeleteOne(ctx context.Context, id uuid.UUID) (int64, error)
	Ping(ctx context.Context) error
}

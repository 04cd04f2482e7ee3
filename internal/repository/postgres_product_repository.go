package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"product-catalog/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

const productColumns = "id, name, quantity, price, status, created_at, updated_at"

type postgresProductRepository struct {
	db *sql.DB
}

// NewPostgresProductRepository creates a ProductRepository backed by the products table
func NewPostgresProductRepository(db *sql.DB) ProductRepository {
	return &postgresProductRepository{db: db}
}

// InsertOne inserts a new product using parameterized queries
func (r *postgresProductRepository) InsertOne(ctx context.Context, product domain.Product) error {
	query := `
		INSERT INTO products (id, name, quantity, price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Quantity,
		product.Price,
		product.Status,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == pgUniqueViolation || pgErr.Code == pgCheckViolation) {
			return fmt.Errorf("%w: %s", ErrProductRejected, pgErr.Message)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// FindOne retrieves a product by ID
func (r *postgresProductRepository) FindOne(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// FindMany retrieves products inside the filter's price range
func (r *postgresProductRepository) FindMany(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	conditions := []string{}
	args := []interface{}{}

	if filter.PriceMin != nil {
		args = append(args, *filter.PriceMin)
		conditions = append(conditions, fmt.Sprintf("price >= $%d", len(args)))
	}
	if filter.PriceMax != nil {
		args = append(args, *filter.PriceMax)
		conditions = append(conditions, fmt.Sprintf("price <= $%d", len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		%s
		ORDER BY created_at, id
	`, productColumns, whereClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// UpdateOne applies a patch and returns the merged row
func (r *postgresProductRepository) UpdateOne(ctx context.Context, id uuid.UUID, patch domain.Patch) (domain.Product, error) {
	if err := patch.Validate(); err != nil {
		return domain.Product{}, err
	}

	// Column names come from the patch whitelist, values are always bound
	args := []interface{}{id}
	setClauses := make([]string, 0, len(patch))
	for _, field := range patch.Fields() {
		value := patch[field]
		if stored, ok := value.(primitive.Decimal128); ok {
			price, err := domain.FromStorageDecimal(stored)
			if err != nil {
				return domain.Product{}, err
			}
			value = price
		}

		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field, len(args)))
	}

	query := fmt.Sprintf(`
		UPDATE products
		SET %s
		WHERE id = $1
		RETURNING %s
	`, strings.Join(setClauses, ", "), productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// DeleteOne removes a product and reports how many rows were affected
func (r *postgresProductRepository) DeleteOne(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

func (r *postgresProductRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var product domain.Product
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Quantity,
		&product.Price,
		&product.Status,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return domain.Product{}, err
	}

	product.CreatedAt = product.CreatedAt.UTC()
	product.UpdatedAt = product.UpdatedAt.UTC()
	return product, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"product-catalog/internal/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// productDocument is the persisted layout of a product. The product id is the document _id.
type productDocument struct {
	ID        string               `bson:"_id"`
	Name      string               `bson:"name"`
	Quantity  int                  `bson:"quantity"`
	Price     primitive.Decimal128 `bson:"price"`
	Status    bool                 `bson:"status"`
	CreatedAt time.Time            `bson:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at"`
}

func newProductDocument(p domain.Product) (productDocument, error) {
	price, err := domain.ToStorageDecimal(p.Price)
	if err != nil {
		return productDocument{}, err
	}

	return productDocument{
		ID:        p.ID.String(),
		Name:      p.Name,
		Quantity:  p.Quantity,
		Price:     price,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}, nil
}

func (d productDocument) toDomain() (domain.Product, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("invalid product id %q: %w", d.ID, err)
	}

	price, err := domain.FromStorageDecimal(d.Price)
	if err != nil {
		return domain.Product{}, err
	}

	return domain.Product{
		ID:        id,
		Name:      d.Name,
		Quantity:  d.Quantity,
		Price:     price,
		Status:    d.Status,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}, nil
}

type mongoProductRepository struct {
	collection *mongo.Collection
}

// NewMongoProductRepository creates a ProductRepository backed by a MongoDB collection
func NewMongoProductRepository(collection *mongo.Collection) ProductRepository {
	return &mongoProductRepository{collection: collection}
}

func (r *mongoProductRepository) InsertOne(ctx context.Context, product domain.Product) error {
	doc, err := newProductDocument(product)
	if err != nil {
		return err
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: duplicate id %s", ErrProductRejected, product.ID)
		}
		return fmt.Errorf("failed to insert product: %w", err)
	}

	if result.InsertedID == nil {
		return ErrProductRejected
	}

	return nil
}

func (r *mongoProductRepository) FindOne(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	var doc productDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Product{}, ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return doc.toDomain()
}

func (r *mongoProductRepository) FindMany(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	query, err := priceRangeQuery(filter)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []domain.Product{}
	for cursor.Next(ctx) {
		var doc productDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode product: %w", err)
		}

		product, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func (r *mongoProductRepository) UpdateOne(ctx context.Context, id uuid.UUID, patch domain.Patch) (domain.Product, error) {
	if err := patch.Validate(); err != nil {
		return domain.Product{}, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc productDocument
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": bson.M(patch)},
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Product{}, ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("failed to update product: %w", err)
	}

	return doc.toDomain()
}

func (r *mongoProductRepository) DeleteOne(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return 0, fmt.Errorf("failed to delete product: %w", err)
	}

	return result.DeletedCount, nil
}

func (r *mongoProductRepository) Ping(ctx context.Context) error {
	return r.collection.Database().Client().Ping(ctx, readpref.Primary())
}

func priceRangeQuery(filter ProductFilter) (bson.M, error) {
	price := bson.M{}

	if filter.PriceMin != nil {
		lower, err := domain.ToStorageDecimal(*filter.PriceMin)
		if err != nil {
			return nil, err
		}
		price["$gte"] = lower
	}
	if filter.PriceMax != nil {
		upper, err := domain.ToStorageDecimal(*filter.PriceMax)
		if err != nil {
			return nil, err
		}
		price["$lte"] = upper
	}

	if len(price) == 0 {
		return bson.M{}, nil
	}
	return bson.M{"price": price}, nil
}

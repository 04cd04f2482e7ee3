package database

import (
	"context"
	"fmt"
	"time"

	"product-catalog/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectMongo connects to MongoDB and verifies the primary is reachable
func ConnectMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return client, nil
}

// ProductCollection returns the configured products collection
func ProductCollection(client *mongo.Client, cfg config.MongoConfig) *mongo.Collection {
	return client.Database(cfg.Database).Collection(cfg.Collection)
}

package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/infrastructure/config"
	"github.com/usdt-vault/vault_service/pkg/retry"
)

// NewMongoClient connects to MongoDB and verifies the primary is reachable.
// Multi-document transactions require a replica set or sharded cluster.
func NewMongoClient(ctx context.Context, cfg config.MongoConfig, maxRetries int, logger *zap.Logger) (*mongo.Client, error) {
	timeout := time.Duration(cfg.ConnectTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var client *mongo.Client
	policy := retry.DefaultPolicy()
	policy.MaxRetries = maxRetries

	err := retry.Do(ctx, policy, logger, func() error {
		connectCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		c, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI).SetConnectTimeout(timeout))
		if err != nil {
			return fmt.Errorf("failed to connect to mongo: %w", err)
		}
		if err := c.Ping(connectCtx, readpref.Primary()); err != nil {
			_ = c.Disconnect(context.Background())
			return fmt.Errorf("failed to ping mongo: %w", err)
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Connected to MongoDB", zap.String("database", cfg.Database))
	return client, nil
}

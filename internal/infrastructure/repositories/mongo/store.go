// Package mongo is the MongoDB ledger store. Multi-record mutations run in a
// session transaction, which needs a replica set deployment.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/domain/repositories"
)

const (
	usersCollection        = "users"
	transactionsCollection = "transactions"
	goalsCollection        = "savings_goals"
	plansCollection        = "investment_plans"
)

// Store implements repositories.Store on MongoDB.
type Store struct {
	client *mongodrv.Client
	db     *mongodrv.Database
	logger *zap.Logger
}

func NewStore(client *mongodrv.Client, database string, logger *zap.Logger) *Store {
	return &Store{
		client: client,
		db:     client.Database(database),
		logger: logger,
	}
}

// EnsureIndexes creates the unique and lookup indexes the repositories rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongodrv.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		transactionsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "seq", Value: -1}}},
		},
		goalsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		plansCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
	}
	for collection, models := range indexes {
		if _, err := s.db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", collection, err)
		}
	}
	s.logger.Info("Mongo indexes ensured", zap.String("database", s.db.Name()))
	return nil
}

func (s *Store) Users() repositories.UserRepository               { return &userRepo{db: s.db} }
func (s *Store) Transactions() repositories.TransactionRepository { return &transactionRepo{db: s.db} }
func (s *Store) Goals() repositories.SavingsGoalRepository        { return &goalRepo{db: s.db} }
func (s *Store) Plans() repositories.InvestmentPlanRepository     { return &planRepo{db: s.db} }

// WithinTransaction runs fn inside a session transaction. The session context
// is handed to fn so every repository call joins the transaction. The driver
// retries fn on transient transaction errors such as write conflicts.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Repositories) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start mongo session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongodrv.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx, s)
	})
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

func (s *Store) Name() string { return "mongo" }

package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	domainrepos "github.com/usdt-vault/vault_service/internal/domain/repositories"
	"github.com/usdt-vault/vault_service/internal/infrastructure/database"
)

// executor is satisfied by both *sqlx.DB and *sqlx.Tx.
type executor interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// PostgresStore is the SQL ledger store.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Users() domainrepos.UserRepository { return NewUserRepository(s.db) }
func (s *PostgresStore) Transactions() domainrepos.TransactionRepository {
	return NewTransactionRepository(s.db)
}
func (s *PostgresStore) Goals() domainrepos.SavingsGoalRepository {
	return NewSavingsGoalRepository(s.db)
}
func (s *PostgresStore) Plans() domainrepos.InvestmentPlanRepository {
	return NewInvestmentPlanRepository(s.db)
}

func (s *PostgresStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx domainrepos.Repositories) error) error {
	return database.WithTransaction(ctx, s.db, func(tx *sqlx.Tx) error {
		return fn(ctx, &pgTx{tx: tx})
	})
}

func (s *PostgresStore) Ping(ctx context.Context) error { return database.HealthCheck(ctx, s.db) }
func (s *PostgresStore) Close() error                   { return s.db.Close() }
func (s *PostgresStore) Name() string                   { return "postgres" }

// DB exposes the pool for connection metrics.
func (s *PostgresStore) DB() *sqlx.DB { return s.db }

type pgTx struct {
	tx *sqlx.Tx
}

func (t *pgTx) Users() domainrepos.UserRepository { return NewUserRepository(t.tx) }
func (t *pgTx) Transactions() domainrepos.TransactionRepository {
	return NewTransactionRepository(t.tx)
}
func (t *pgTx) Goals() domainrepos.SavingsGoalRepository    { return NewSavingsGoalRepository(t.tx) }
func (t *pgTx) Plans() domainrepos.InvestmentPlanRepository { return NewInvestmentPlanRepository(t.tx) }

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func checkAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

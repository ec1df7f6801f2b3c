package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
)

// TransactionRepository handles the append-only ledger log
type TransactionRepository struct {
	db executor
}

func NewTransactionRepository(db executor) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	if err := tx.Type.Validate(); err != nil {
		return fmt.Errorf("validate transaction: %w", err)
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO transactions (id, user_id, type, amount, address, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := r.db.ExecContext(ctx, query,
		tx.ID, tx.UserID, tx.Type, tx.Amount, tx.Address, tx.Status, tx.CreatedAt,
	); err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter entities.TransactionFilter) ([]*entities.Transaction, error) {
	query := `
		SELECT id, user_id, type, amount, address, status, created_at
		FROM transactions
		WHERE user_id = $1 AND ($2::text IS NULL OR type = $2)
		ORDER BY created_at DESC, seq DESC
	`
	args := []interface{}{userID, filter.Type}
	if filter.Limit > 0 {
		query += ` LIMIT $3`
		args = append(args, filter.Limit)
	}

	var txs []*entities.Transaction
	if err := r.db.SelectContext(ctx, &txs, query, args...); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (r *TransactionRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM transactions WHERE user_id = $1`, userID); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return count, nil
}

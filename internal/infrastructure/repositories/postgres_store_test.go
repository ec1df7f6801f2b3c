package repositories

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
	apperrors "github.com/usdt-vault/vault_service/internal/domain/errors"
)

var transactionColumns = []string{"id", "user_id", "type", "amount", "address", "status", "created_at"}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unique violation", &pq.Error{Code: "23505"}, true},
		{"wrapped unique violation", fmt.Errorf("exec: %w", &pq.Error{Code: "23505"}), true},
		{"foreign key violation", &pq.Error{Code: "23503"}, false},
		{"plain error", errors.New("connection reset"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}

func TestUserRepository_Create(t *testing.T) {
	t.Run("duplicate username maps to conflict", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO users").WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

		err := NewUserRepository(db).Create(context.Background(), &entities.User{ID: uuid.New(), Username: "alice"})

		assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		assert.True(t, apperrors.IsAlreadyExists(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other driver errors stay internal", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO users").WillReturnError(errors.New("connection reset"))

		err := NewUserRepository(db).Create(context.Background(), &entities.User{ID: uuid.New(), Username: "alice"})

		require.Error(t, err)
		assert.False(t, apperrors.IsAlreadyExists(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_UpdateBalance_MissingUser(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("UPDATE users SET balance").WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewUserRepository(db).UpdateBalance(context.Background(), uuid.New(), decimal.NewFromInt(5))

	assert.True(t, apperrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_ListByUser(t *testing.T) {
	userID := uuid.New()
	newer := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	t.Run("orders newest first with seq as tie-break", func(t *testing.T) {
		db, mock := newMockDB(t)
		first, second := uuid.New(), uuid.New()
		rows := sqlmock.NewRows(transactionColumns).
			AddRow(first.String(), userID.String(), "send", "20.000000000000000001", "0xabc", "completed", newer).
			AddRow(second.String(), userID.String(), "receive", "50", "", "completed", older)
		mock.ExpectQuery(`ORDER BY created_at DESC, seq DESC`).
			WithArgs(userID, nil).
			WillReturnRows(rows)

		txs, err := NewTransactionRepository(db).ListByUser(context.Background(), userID, entities.TransactionFilter{})

		require.NoError(t, err)
		require.Len(t, txs, 2)
		assert.Equal(t, first, txs[0].ID)
		assert.Equal(t, entities.TransactionTypeSend, txs[0].Type)
		assert.Equal(t, "20.000000000000000001", txs[0].Amount.String())
		assert.Equal(t, second, txs[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("type filter and limit are bound", func(t *testing.T) {
		db, mock := newMockDB(t)
		receive := entities.TransactionTypeReceive
		mock.ExpectQuery(`ORDER BY created_at DESC, seq DESC\s+LIMIT \$3`).
			WithArgs(userID, "receive", 5).
			WillReturnRows(sqlmock.NewRows(transactionColumns))

		txs, err := NewTransactionRepository(db).ListByUser(context.Background(), userID,
			entities.TransactionFilter{Type: &receive, Limit: 5})

		require.NoError(t, err)
		assert.Empty(t, txs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
)

// UserRepository persists users. GetByIDForUpdate locks the row for the
// duration of the enclosing transaction on backends that support it.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	ListWithLinkedAddress(ctx context.Context) ([]*entities.User, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
	UpdatePINHash(ctx context.Context, id uuid.UUID, pinHash string) error
	IncrementPINFailures(ctx context.Context, id uuid.UUID) (int, error)
	ResetPINFailures(ctx context.Context, id uuid.UUID) error
	UpdateLinkedAddress(ctx context.Context, id uuid.UUID, address *string) error
}

// TransactionRepository is the append-only ledger log.
type TransactionRepository interface {
	Create(ctx context.Context, tx *entities.Transaction) error
	ListByUser(ctx context.Context, userID uuid.UUID, filter entities.TransactionFilter) ([]*entities.Transaction, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
}

type SavingsGoalRepository interface {
	Create(ctx context.Context, goal *entities.SavingsGoal) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.SavingsGoal, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.SavingsGoal, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.SavingsGoal, error)
	UpdateCurrentAmount(ctx context.Context, id uuid.UUID, current decimal.Decimal) error
	UpdateAutoSave(ctx context.Context, id uuid.UUID, settings entities.AutoSaveSettings) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type InvestmentPlanRepository interface {
	Create(ctx context.Context, plan *entities.InvestmentPlan) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.InvestmentPlan, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.InvestmentPlan, error)
	UpdateAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
	UpdateAutoInvest(ctx context.Context, id uuid.UUID, autoInvest bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repositories groups the four record stores bound to one connection or transaction.
type Repositories interface {
	Users() UserRepository
	Transactions() TransactionRepository
	Goals() SavingsGoalRepository
	Plans() InvestmentPlanRepository
}

// Store is the ledger store. WithinTransaction runs fn against repositories bound
// to a single atomic transaction: fn's writes commit together or not at all.
type Store interface {
	Repositories
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error
	Ping(ctx context.Context) error
	Close() error
	Name() string
}

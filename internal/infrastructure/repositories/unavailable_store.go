package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
	apperrors "github.com/usdt-vault/vault_service/internal/domain/errors"
	domainrepos "github.com/usdt-vault/vault_service/internal/domain/repositories"
)

// UnavailableStore stands in when no ledger store is configured. Every
// operation fails with ErrStoreUnavailable so the service keeps running with
// chain views only.
type UnavailableStore struct {
	reason string
}

func NewUnavailableStore(reason string) *UnavailableStore {
	return &UnavailableStore{reason: reason}
}

func (s *UnavailableStore) Reason() string { return s.reason }

func (s *UnavailableStore) Users() domainrepos.UserRepository { return unavailableRepo{} }
func (s *UnavailableStore) Transactions() domainrepos.TransactionRepository {
	return unavailableLedger{}
}
func (s *UnavailableStore) Goals() domainrepos.SavingsGoalRepository    { return unavailableGoals{} }
func (s *UnavailableStore) Plans() domainrepos.InvestmentPlanRepository { return unavailablePlans{} }

func (s *UnavailableStore) WithinTransaction(context.Context, func(context.Context, domainrepos.Repositories) error) error {
	return apperrors.ErrStoreUnavailable
}

func (s *UnavailableStore) Ping(context.Context) error { return apperrors.ErrStoreUnavailable }
func (s *UnavailableStore) Close() error               { return nil }
func (s *UnavailableStore) Name() string               { return "unavailable" }

var errUnavailable = apperrors.ErrStoreUnavailable

type unavailableRepo struct{}

func (unavailableRepo) Create(context.Context, *entities.User) error { return errUnavailable }
func (unavailableRepo) GetByID(context.Context, uuid.UUID) (*entities.User, error) {
	return nil, errUnavailable
}
func (unavailableRepo) GetByIDForUpdate(context.Context, uuid.UUID) (*entities.User, error) {
	return nil, errUnavailable
}
func (unavailableRepo) GetByUsername(context.Context, string) (*entities.User, error) {
	return nil, errUnavailable
}
func (unavailableRepo) ListWithLinkedAddress(context.Context) ([]*entities.User, error) {
	return nil, errUnavailable
}
func (unavailableRepo) UpdateBalance(context.Context, uuid.UUID, decimal.Decimal) error {
	return errUnavailable
}
func (unavailableRepo) UpdatePINHash(context.Context, uuid.UUID, string) error { return errUnavailable }
func (unavailableRepo) IncrementPINFailures(context.Context, uuid.UUID) (int, error) {
	return 0, errUnavailable
}
func (unavailableRepo) ResetPINFailures(context.Context, uuid.UUID) error { return errUnavailable }
func (unavailableRepo) UpdateLinkedAddress(context.Context, uuid.UUID, *string) error {
	return errUnavailable
}

type unavailableLedger struct{}

func (unavailableLedger) Create(context.Context, *entities.Transaction) error { return errUnavailable }
func (unavailableLedger) ListByUser(context.Context, uuid.UUID, entities.TransactionFilter) ([]*entities.Transaction, error) {
	return nil, errUnavailable
}
func (unavailableLedger) CountByUser(context.Context, uuid.UUID) (int, error) {
	return 0, errUnavailable
}

type unavailableGoals struct{}

func (unavailableGoals) Create(context.Context, *entities.SavingsGoal) error { return errUnavailable }
func (unavailableGoals) GetByID(context.Context, uuid.UUID) (*entities.SavingsGoal, error) {
	return nil, errUnavailable
}
func (unavailableGoals) GetByIDForUpdate(context.Context, uuid.UUID) (*entities.SavingsGoal, error) {
	return nil, errUnavailable
}
func (unavailableGoals) ListByUser(context.Context, uuid.UUID) ([]*entities.SavingsGoal, error) {
	return nil, errUnavailable
}
func (unavailableGoals) UpdateCurrentAmount(context.Context, uuid.UUID, decimal.Decimal) error {
	return errUnavailable
}
func (unavailableGoals) UpdateAutoSave(context.Context, uuid.UUID, entities.AutoSaveSettings) error {
	return errUnavailable
}
func (unavailableGoals) Delete(context.Context, uuid.UUID) error { return errUnavailable }

type unavailablePlans struct{}

func (unavailablePlans) Create(context.Context, *entities.InvestmentPlan) error {
	return errUnavailable
}
func (unavailablePlans) GetByID(context.Context, uuid.UUID) (*entities.InvestmentPlan, error) {
	return nil, errUnavailable
}
func (unavailablePlans) ListByUser(context.Context, uuid.UUID) ([]*entities.InvestmentPlan, error) {
	return nil, errUnavailable
}
func (unavailablePlans) UpdateAmount(context.Context, uuid.UUID, decimal.Decimal) error {
	return errUnavailable
}
func (unavailablePlans) UpdateAutoInvest(context.Context, uuid.UUID, bool) error {
	return errUnavailable
}
func (unavailablePlans) Delete(context.Context, uuid.UUID) error { return errUnavailable }

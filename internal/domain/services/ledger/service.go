package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
	domainerrors "github.com/usdt-vault/vault_service/internal/domain/errors"
	"github.com/usdt-vault/vault_service/internal/domain/events"
	"github.com/usdt-vault/vault_service/internal/domain/repositories"
	"github.com/usdt-vault/vault_service/internal/domain/services/wallet"
	"github.com/usdt-vault/vault_service/pkg/metrics"
)

// DefaultHistoryLimit bounds a ledger history query when no limit is given.
const DefaultHistoryLimit = 50

var (
	ErrInvalidAmount       = domainerrors.ErrInvalidAmount
	ErrInsufficientBalance = fmt.Errorf("insufficient balance: %w", domainerrors.ErrInsufficientFunds)
)

// PINVerifier checks a withdrawal PIN for a loaded user.
type PINVerifier interface {
	VerifyUser(ctx context.Context, user *entities.User, pin string) error
}

// Service records user-entered deposits and withdrawals against the tracked balance.
type Service struct {
	store     repositories.Store
	pins      PINVerifier
	publisher events.Publisher
	logger    *zap.Logger
}

func NewService(store repositories.Store, pins PINVerifier, publisher events.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service{
		store:     store,
		pins:      pins,
		publisher: publisher,
		logger:    logger,
	}
}

// Deposit credits amount to the user's balance and records a receive entry.
// fromAddress is optional.
func (s *Service) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, fromAddress string) (*entities.Transaction, error) {
	if !amount.IsPositive() {
		metrics.RecordLedgerOperation("deposit", "rejected", 0)
		return nil, ErrInvalidAmount
	}
	address, err := optionalAddress(fromAddress)
	if err != nil {
		metrics.RecordLedgerOperation("deposit", "rejected", 0)
		return nil, err
	}

	var (
		record  *entities.Transaction
		balance decimal.Decimal
	)
	err = s.store.WithinTransaction(ctx, func(ctx context.Context, tx repositories.Repositories) error {
		user, err := tx.Users().GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		record = newTransaction(userID, entities.TransactionTypeReceive, amount, address)
		if err := tx.Transactions().Create(ctx, record); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}

		balance = user.Balance.Add(amount)
		if err := tx.Users().UpdateBalance(ctx, userID, balance); err != nil {
			return fmt.Errorf("update balance: %w", err)
		}
		return nil
	})
	if err != nil {
		metrics.RecordLedgerOperation("deposit", "error", 0)
		return nil, err
	}

	metrics.RecordLedgerOperation("deposit", "success", amount.InexactFloat64())
	s.logger.Info("Deposit recorded",
		zap.String("user_id", userID.String()),
		zap.String("transaction_id", record.ID.String()),
		zap.String("amount", amount.String()))

	events.Emit(ctx, s.publisher, s.logger, entities.LedgerEvent{
		Type:     entities.EventLedgerDeposit,
		UserID:   userID,
		EntityID: record.ID,
		Amount:   amount,
		Balance:  balance,
	})
	return record, nil
}

// Withdraw debits amount from the user's balance and records a send entry.
// When the user has a PIN it is verified before the balance transaction opens,
// so a failed attempt is counted even though nothing else changes.
func (s *Service) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, toAddress, pin string) (*entities.Transaction, error) {
	if !amount.IsPositive() {
		metrics.RecordLedgerOperation("withdrawal", "rejected", 0)
		return nil, ErrInvalidAmount
	}
	address, err := wallet.ChecksumAddress(strings.TrimSpace(toAddress))
	if err != nil {
		metrics.RecordLedgerOperation("withdrawal", "rejected", 0)
		return nil, err
	}

	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(user.Balance) {
		metrics.RecordLedgerOperation("withdrawal", "rejected", 0)
		return nil, domainerrors.InsufficientFundsError(ErrInsufficientBalance, amount.String(), user.Balance.String())
	}
	if user.HasPIN() {
		if s.pins == nil {
			return nil, fmt.Errorf("withdrawal PIN configured but no verifier available")
		}
		if err := s.pins.VerifyUser(ctx, user, pin); err != nil {
			metrics.RecordLedgerOperation("withdrawal", "rejected", 0)
			return nil, err
		}
	}

	var (
		record  *entities.Transaction
		balance decimal.Decimal
	)
	err = s.store.WithinTransaction(ctx, func(ctx context.Context, tx repositories.Repositories) error {
		locked, err := tx.Users().GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(locked.Balance) {
			return domainerrors.InsufficientFundsError(ErrInsufficientBalance, amount.String(), locked.Balance.String())
		}

		record = newTransaction(userID, entities.TransactionTypeSend, amount, address)
		if err := tx.Transactions().Create(ctx, record); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}

		balance = locked.Balance.Sub(amount)
		if err := tx.Users().UpdateBalance(ctx, userID, balance); err != nil {
			return fmt.Errorf("update balance: %w", err)
		}
		return nil
	})
	if err != nil {
		metrics.RecordLedgerOperation("withdrawal", "error", 0)
		return nil, err
	}

	metrics.RecordLedgerOperation("withdrawal", "success", amount.InexactFloat64())
	s.logger.Info("Withdrawal recorded",
		zap.String("user_id", userID.String()),
		zap.String("transaction_id", record.ID.String()),
		zap.String("amount", amount.String()))

	events.Emit(ctx, s.publisher, s.logger, entities.LedgerEvent{
		Type:     entities.EventLedgerWithdrawal,
		UserID:   userID,
		EntityID: record.ID,
		Amount:   amount,
		Balance:  balance,
	})
	return record, nil
}

// ListTransactions returns the user's ledger entries newest first.
func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID, filter entities.TransactionFilter) ([]*entities.Transaction, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultHistoryLimit
	}
	txs, err := s.store.Transactions().ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func newTransaction(userID uuid.UUID, txType entities.TransactionType, amount decimal.Decimal, address string) *entities.Transaction {
	return &entities.Transaction{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      txType,
		Amount:    amount,
		Address:   address,
		Status:    entities.TransactionStatusCompleted,
		CreatedAt: time.Now().UTC(),
	}
}

func optionalAddress(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	return wallet.ChecksumAddress(s)
}

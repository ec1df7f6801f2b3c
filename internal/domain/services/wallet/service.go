package wallet

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
)

// Service is the read-only view of a single BSC address.
type Service struct {
	balances *BalanceReader
	history  *HistoryReader
	logger   *zap.Logger
}

func NewService(balances *BalanceReader, history *HistoryReader, logger *zap.Logger) *Service {
	return &Service{balances: balances, history: history, logger: logger}
}

func (s *Service) Balance(ctx context.Context, address string) (*entities.BalanceSnapshot, error) {
	return s.balances.GetWalletBalance(ctx, address)
}

func (s *Service) Transactions(ctx context.Context, address string, limit int) ([]entities.ChainTransaction, error) {
	return s.history.GetAllTransactions(ctx, address, limit)
}

func (s *Service) Status(ctx context.Context) *entities.ChainStatus {
	return s.balances.Status(ctx)
}

// Overview loads the balance and the transaction list for address. Only an
// invalid address is an error; upstream failures leave their half empty.
func (s *Service) Overview(ctx context.Context, address string, limit int) (*entities.WalletOverview, error) {
	checksum, err := ChecksumAddress(address)
	if err != nil {
		return nil, err
	}

	overview := &entities.WalletOverview{Address: checksum, Transactions: []entities.ChainTransaction{}}
	snapshot, err := s.balances.GetWalletBalance(ctx, checksum)
	switch {
	case err == nil:
		overview.Balance = snapshot
	case errors.Is(err, ErrBalanceUnavailable):
		overview.BalanceError = "unable to read balance from chain"
	default:
		s.logger.Warn("Wallet overview balance failed", zap.String("address", checksum), zap.Error(err))
		overview.BalanceError = "unable to read balance from chain"
	}

	txs, err := s.history.GetAllTransactions(ctx, checksum, limit)
	if err != nil {
		s.logger.Warn("Wallet overview history failed", zap.String("address", checksum), zap.Error(err))
		return overview, nil
	}
	overview.Transactions = txs
	return overview, nil
}

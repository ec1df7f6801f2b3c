package wallet

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
)

const (
	DefaultHistoryLimit = 100
	defaultTokenDecimal = 18
)

// Explorer lists raw account transactions.
type Explorer interface {
	NativeTransactions(ctx context.Context, address string, limit int) ([]entities.ExplorerTransaction, error)
	TokenTransactions(ctx context.Context, address string, limit int) ([]entities.ExplorerTransaction, error)
}

// HistoryConfig identifies the tracked token.
type HistoryConfig struct {
	TokenAddress string
	NativeSymbol string
}

// HistoryReader merges native and token transfers into one display list.
type HistoryReader struct {
	explorer Explorer
	config   HistoryConfig
	logger   *zap.Logger
}

func NewHistoryReader(explorer Explorer, config HistoryConfig, logger *zap.Logger) *HistoryReader {
	if config.NativeSymbol == "" {
		config.NativeSymbol = "BNB"
	}
	return &HistoryReader{explorer: explorer, config: config, logger: logger}
}

// GetAllTransactions returns up to limit transfers for address, newest first.
// A failing explorer call contributes no records; it never fails the listing.
func (h *HistoryReader) GetAllTransactions(ctx context.Context, address string, limit int) ([]entities.ChainTransaction, error) {
	if !ValidateAddress(address) {
		return nil, ErrInvalidAddress
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	var (
		wg             sync.WaitGroup
		native, tokens []entities.ExplorerTransaction
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		txs, err := h.explorer.NativeTransactions(ctx, address, limit)
		if err != nil {
			h.logger.Warn("Native transaction listing failed", zap.String("address", address), zap.Error(err))
			return
		}
		native = txs
	}()
	go func() {
		defer wg.Done()
		txs, err := h.explorer.TokenTransactions(ctx, address, limit)
		if err != nil {
			h.logger.Warn("Token transaction listing failed", zap.String("address", address), zap.Error(err))
			return
		}
		tokens = h.filterToken(txs)
	}()
	wg.Wait()

	merged := make([]entities.ExplorerTransaction, 0, len(native)+len(tokens))
	merged = append(merged, native...)
	merged = append(merged, tokens...)
	sort.SliceStable(merged, func(i, j int) bool {
		return parseUint(merged[i].TimeStamp) > parseUint(merged[j].TimeStamp)
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}

	out := make([]entities.ChainTransaction, 0, len(merged))
	for _, raw := range merged {
		out = append(out, FormatTransaction(raw, address, h.config.NativeSymbol))
	}
	return out, nil
}

func (h *HistoryReader) filterToken(txs []entities.ExplorerTransaction) []entities.ExplorerTransaction {
	if h.config.TokenAddress == "" {
		return txs
	}
	filtered := txs[:0:0]
	for _, tx := range txs {
		if strings.EqualFold(tx.ContractAddress, h.config.TokenAddress) {
			filtered = append(filtered, tx)
		}
	}
	return filtered
}

// FormatTransaction converts an explorer record into a display record relative
// to address. Records with a token symbol use the token's decimals, defaulting
// to 18; native records are priced in nativeSymbol.
func FormatTransaction(raw entities.ExplorerTransaction, address, nativeSymbol string) entities.ChainTransaction {
	isSend := strings.EqualFold(raw.From, address)

	decimals := int32(defaultTokenDecimal)
	currency := nativeSymbol
	if raw.TokenSymbol != "" {
		currency = raw.TokenSymbol
		if d, err := strconv.ParseInt(raw.TokenDecimal, 10, 32); err == nil && d >= 0 {
			decimals = int32(d)
		}
	}

	value, err := decimal.NewFromString(raw.Value)
	if err != nil {
		value = decimal.Zero
	}

	tx := entities.ChainTransaction{
		ID:          raw.Hash,
		Hash:        raw.Hash,
		Type:        entities.ChainTransactionReceive,
		Amount:      value.Shift(-decimals),
		Currency:    currency,
		From:        raw.From,
		To:          raw.To,
		BlockNumber: parseUint(raw.BlockNumber),
		GasUsed:     parseUint(raw.GasUsed),
		GasPrice:    raw.GasPrice,
		Status:      "success",
		Timestamp:   time.Unix(int64(parseUint(raw.TimeStamp)), 0).UTC(),
	}
	// Token transfer listings carry no isError field, so only an explicit
	// non-zero value marks a record as failed.
	if raw.IsError != "" && raw.IsError != "0" {
		tx.Status = "failed"
	}
	if isSend {
		tx.Type = entities.ChainTransactionSend
		tx.CounterpartyAddress = raw.To
	} else {
		tx.CounterpartyAddress = raw.From
	}
	return tx
}

func parseUint(s string) uint64 {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

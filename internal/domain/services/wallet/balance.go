package wallet

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
	"github.com/usdt-vault/vault_service/pkg/metrics"
)

// ErrBalanceUnavailable is returned when neither balance leg could be read.
var ErrBalanceUnavailable = errors.New("balance unavailable")

// ChainReader reads raw balances from the chain.
type ChainReader interface {
	NativeBalance(ctx context.Context, account common.Address) (*big.Int, error)
	TokenBalance(ctx context.Context, account common.Address) (*big.Int, uint8, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// Cache memoises snapshots. Any Get error is treated as a miss.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
}

// BalanceConfig names the chain assets and the memoisation window.
type BalanceConfig struct {
	ChainName      string
	NativeSymbol   string
	TokenSymbol    string
	NativeDecimals int32
	CacheTTL       time.Duration
}

// BalanceReader builds balance snapshots from two independent RPC legs.
type BalanceReader struct {
	chain  ChainReader
	cache  Cache
	oracle PriceOracle
	config BalanceConfig
	logger *zap.Logger
	now    func() time.Time
}

func NewBalanceReader(chain ChainReader, cache Cache, oracle PriceOracle, config BalanceConfig, logger *zap.Logger) *BalanceReader {
	if config.NativeSymbol == "" {
		config.NativeSymbol = "BNB"
	}
	if config.TokenSymbol == "" {
		config.TokenSymbol = "USDT"
	}
	if config.NativeDecimals <= 0 {
		config.NativeDecimals = 18
	}
	if config.ChainName == "" {
		config.ChainName = "bsc"
	}
	if oracle == nil {
		oracle = NewStaticPriceOracle(DefaultNativeUSD)
	}
	return &BalanceReader{
		chain:  chain,
		cache:  cache,
		oracle: oracle,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

func balanceCacheKey(address string) string {
	return "balance:" + address
}

// GetWalletBalance returns the native and token balances of address with a USD
// total. A failed leg is reported as unknown and leaves the total unset; when
// both legs fail ErrBalanceUnavailable is returned.
func (r *BalanceReader) GetWalletBalance(ctx context.Context, address string) (*entities.BalanceSnapshot, error) {
	checksum, err := ChecksumAddress(address)
	if err != nil {
		return nil, err
	}
	key := balanceCacheKey(checksum)

	if r.cache != nil && r.config.CacheTTL > 0 {
		var cached entities.BalanceSnapshot
		if err := r.cache.Get(ctx, key, &cached); err == nil {
			metrics.BalanceCacheTotal.WithLabelValues("hit").Inc()
			return &cached, nil
		}
		metrics.BalanceCacheTotal.WithLabelValues("miss").Inc()
	}

	account := common.HexToAddress(checksum)
	snapshot := &entities.BalanceSnapshot{
		Address: checksum,
		Native:  entities.Leg{Amount: decimal.Zero, Symbol: r.config.NativeSymbol},
		Token:   entities.Leg{Amount: decimal.Zero, Symbol: r.config.TokenSymbol},
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		wei, err := r.chain.NativeBalance(ctx, account)
		if err != nil {
			r.logger.Warn("Native balance leg failed", zap.String("address", checksum), zap.Error(err))
			return
		}
		snapshot.Native.Amount = decimal.NewFromBigInt(wei, -r.config.NativeDecimals)
		snapshot.Native.Known = true
	}()
	go func() {
		defer wg.Done()
		raw, decimals, err := r.chain.TokenBalance(ctx, account)
		if err != nil {
			r.logger.Warn("Token balance leg failed", zap.String("address", checksum), zap.Error(err))
			return
		}
		snapshot.Token.Amount = decimal.NewFromBigInt(raw, -int32(decimals))
		snapshot.Token.Known = true
	}()
	wg.Wait()

	if !snapshot.Native.Known && !snapshot.Token.Known {
		return nil, ErrBalanceUnavailable
	}

	price, err := r.oracle.NativeUSD(ctx)
	if err != nil {
		r.logger.Warn("Native price unavailable", zap.Error(err))
	} else {
		snapshot.NativePriceUSD = price
	}

	if snapshot.Native.Known && snapshot.Token.Known && err == nil {
		total := snapshot.Token.Amount.Add(snapshot.Native.Amount.Mul(price)).Round(2)
		snapshot.TotalUSD = &total
	} else {
		snapshot.Partial = true
	}
	snapshot.FetchedAt = r.now().UTC()

	if r.cache != nil && r.config.CacheTTL > 0 {
		if err := r.cache.Set(ctx, key, snapshot, r.config.CacheTTL); err != nil {
			r.logger.Warn("Failed to cache balance snapshot", zap.String("address", checksum), zap.Error(err))
		}
	}
	return snapshot, nil
}

// IsConnected reports whether the node answers a block number query.
func (r *BalanceReader) IsConnected(ctx context.Context) bool {
	_, err := r.chain.BlockNumber(ctx)
	return err == nil
}

// CurrentBlock returns the node's latest block number.
func (r *BalanceReader) CurrentBlock(ctx context.Context) (uint64, error) {
	return r.chain.BlockNumber(ctx)
}

// Status reports node connectivity and the current block.
func (r *BalanceReader) Status(ctx context.Context) *entities.ChainStatus {
	status := &entities.ChainStatus{Chain: r.config.ChainName}
	block, err := r.chain.BlockNumber(ctx)
	if err != nil {
		status.Error = "unable to reach chain node"
		return status
	}
	status.Connected = true
	status.CurrentBlock = block
	return status
}

package di

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	domainrepos "github.com/usdt-vault/vault_service/internal/domain/repositories"
	"github.com/usdt-vault/vault_service/internal/domain/services/wallet"
	"github.com/usdt-vault/vault_service/internal/infrastructure/adapters/bscrpc"
	"github.com/usdt-vault/vault_service/internal/infrastructure/adapters/bscscan"
	"github.com/usdt-vault/vault_service/internal/infrastructure/cache"
	"github.com/usdt-vault/vault_service/internal/infrastructure/config"
	"github.com/usdt-vault/vault_service/internal/infrastructure/database"
	"github.com/usdt-vault/vault_service/internal/infrastructure/repositories"
	"github.com/usdt-vault/vault_service/internal/infrastructure/repositories/memory"
	mongostore "github.com/usdt-vault/vault_service/internal/infrastructure/repositories/mongo"
)

// StoreBuilder opens the ledger store selected by configuration.
type StoreBuilder struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreBuilder creates a new store builder
func NewStoreBuilder(cfg *config.Config, logger *zap.Logger) *StoreBuilder {
	return &StoreBuilder{cfg: cfg, logger: logger}
}

// Build opens the configured backend. A backend that cannot be reached yields
// an unavailable store so the chain views keep serving.
func (b *StoreBuilder) Build(ctx context.Context) domainrepos.Store {
	switch b.cfg.Store.Driver {
	case config.StoreDriverPostgres:
		db, err := database.NewConnection(ctx, b.cfg.Database, b.logger)
		if err != nil {
			b.logger.Error("Postgres store unavailable", zap.Error(err))
			return repositories.NewUnavailableStore(err.Error())
		}
		return repositories.NewPostgresStore(db)

	case config.StoreDriverMongo:
		client, err := database.NewMongoClient(ctx, b.cfg.Mongo, b.cfg.Database.MaxRetries, b.logger)
		if err != nil {
			b.logger.Error("Mongo store unavailable", zap.Error(err))
			return repositories.NewUnavailableStore(err.Error())
		}
		store := mongostore.NewStore(client, b.cfg.Mongo.Database, b.logger)
		if err := store.EnsureIndexes(ctx); err != nil {
			b.logger.Warn("Failed to ensure mongo indexes", zap.Error(err))
		}
		return store

	case config.StoreDriverMemory:
		b.logger.Warn("Using in-memory store, data is lost on restart")
		return memory.NewStore()

	default:
		b.logger.Warn("No store configured, ledger endpoints will return 503")
		return repositories.NewUnavailableStore("no store configured")
	}
}

// ChainServicesBuilder builds the read-only chain views.
type ChainServicesBuilder struct {
	cfg    *config.Config
	cache  cache.Cache
	logger *zap.Logger
}

// NewChainServicesBuilder creates a new chain services builder
func NewChainServicesBuilder(cfg *config.Config, c cache.Cache, logger *zap.Logger) *ChainServicesBuilder {
	return &ChainServicesBuilder{cfg: cfg, cache: c, logger: logger}
}

// ChainServices holds the chain clients and readers built on them.
type ChainServices struct {
	RPC      *bscrpc.Client
	Explorer *bscscan.Client
	Balances *wallet.BalanceReader
	History  *wallet.HistoryReader
	Wallet   *wallet.Service
}

// Build dials the node and wires the readers.
func (b *ChainServicesBuilder) Build(ctx context.Context) (*ChainServices, error) {
	chainCfg := b.cfg.Chain

	rpc, err := bscrpc.Dial(ctx, bscrpc.Config{
		RPCURL:       chainCfg.RPCURL,
		TokenAddress: chainCfg.TokenAddress,
		Timeout:      time.Duration(chainCfg.Timeout) * time.Second,
	}, b.logger)
	if err != nil {
		return nil, fmt.Errorf("chain rpc: %w", err)
	}

	explorer := bscscan.NewClient(bscscan.Config{
		BaseURL:         b.cfg.Explorer.BaseURL,
		APIKey:          b.cfg.Explorer.APIKey,
		Timeout:         time.Duration(b.cfg.Explorer.Timeout) * time.Second,
		RateLimitPerSec: b.cfg.Explorer.RateLimitPerSec,
		MaxRetries:      b.cfg.Explorer.MaxRetries,
	}, b.logger)

	balances := wallet.NewBalanceReader(
		rpc,
		b.cache,
		wallet.NewStaticPriceOracle(b.cfg.Pricing.NativePrice()),
		wallet.BalanceConfig{
			ChainName:      chainCfg.Name,
			NativeSymbol:   chainCfg.NativeSymbol,
			TokenSymbol:    chainCfg.TokenSymbol,
			NativeDecimals: int32(chainCfg.NativeDecimals),
			CacheTTL:       time.Duration(chainCfg.BalanceCacheTTL) * time.Second,
		},
		b.logger,
	)
	history := wallet.NewHistoryReader(explorer, wallet.HistoryConfig{
		TokenAddress: chainCfg.TokenAddress,
		NativeSymbol: chainCfg.NativeSymbol,
	}, b.logger)

	return &ChainServices{
		RPC:      rpc,
		Explorer: explorer,
		Balances: balances,
		History:  history,
		Wallet:   wallet.NewService(balances, history, b.logger),
	}, nil
}

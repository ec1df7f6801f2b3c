package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/api/middleware"
	"github.com/usdt-vault/vault_service/internal/domain/events"
	domainrepos "github.com/usdt-vault/vault_service/internal/domain/repositories"
	"github.com/usdt-vault/vault_service/internal/domain/services/account"
	"github.com/usdt-vault/vault_service/internal/domain/services/investing"
	"github.com/usdt-vault/vault_service/internal/domain/services/ledger"
	"github.com/usdt-vault/vault_service/internal/domain/services/pin"
	"github.com/usdt-vault/vault_service/internal/domain/services/reconciliation"
	"github.com/usdt-vault/vault_service/internal/domain/services/savings"
	"github.com/usdt-vault/vault_service/internal/domain/services/wallet"
	"github.com/usdt-vault/vault_service/internal/infrastructure/cache"
	"github.com/usdt-vault/vault_service/internal/infrastructure/config"
	"github.com/usdt-vault/vault_service/internal/infrastructure/messaging"
	"github.com/usdt-vault/vault_service/internal/workers/reconciliation_worker"
	"github.com/usdt-vault/vault_service/pkg/auth"
	"github.com/usdt-vault/vault_service/pkg/health"
	"github.com/usdt-vault/vault_service/pkg/logger"
)

const (
	authRequestsPerMinute = 10
	readinessTimeout      = 5 * time.Second
	reconciliationDrift   = "0.01"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *logger.Logger
	ZapLog *zap.Logger

	Store     domainrepos.Store
	Cache     cache.Cache
	Publisher events.Publisher
	nats      *messaging.NATSPublisher
	Chain     *ChainServices

	PINService            *pin.Service
	LedgerService         *ledger.Service
	SavingsService        *savings.Service
	InvestingService      *investing.Service
	AccountService        *account.Service
	ReconciliationService *reconciliation.Service
	ReconciliationWorker  *reconciliation_worker.Worker

	AuthRateLimiter *middleware.AuthRateLimiter
	Readiness       *health.HealthChecker
}

// NewContainer wires every service from configuration. Only a malformed chain
// endpoint is fatal; an unreachable store or broker degrades instead.
func NewContainer(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	zapLog := log.Zap()

	c := &Container{
		Config:    cfg,
		Logger:    log,
		ZapLog:    zapLog,
		Cache:     cache.New(&cfg.Redis, zapLog),
		Publisher: events.Noop{},
	}

	c.Store = NewStoreBuilder(cfg, zapLog).Build(ctx)

	chain, err := NewChainServicesBuilder(cfg, c.Cache, zapLog).Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build chain services: %w", err)
	}
	c.Chain = chain

	if cfg.NATS.URL != "" {
		publisher, err := messaging.Connect(messaging.Config{
			URL:           cfg.NATS.URL,
			SubjectPrefix: cfg.NATS.SubjectPrefix,
			Name:          "usdt-vault",
		}, zapLog)
		if err != nil {
			log.Warn("NATS unavailable, ledger events will be dropped", "error", err)
		} else {
			c.nats = publisher
			c.Publisher = publisher
		}
	}

	c.PINService = pin.NewService(c.Store.Users(), pin.Config{
		MaxAttempts: cfg.Security.PINMaxAttempts,
		BcryptCost:  cfg.Security.BcryptCost,
	}, zapLog)
	c.LedgerService = ledger.NewService(c.Store, c.PINService, c.Publisher, zapLog)
	c.SavingsService = savings.NewService(c.Store, c.Publisher, zapLog)
	c.InvestingService = investing.NewService(c.Store.Plans(), zapLog)
	c.AccountService = account.NewService(
		c.Store,
		chain.Balances,
		auth.NewTokenBlacklist(c.Cache),
		account.Config{
			Tokens: auth.TokenConfig{
				Secret:     cfg.JWT.Secret,
				Issuer:     cfg.JWT.Issuer,
				AccessTTL:  cfg.JWT.AccessTTL,
				RefreshTTL: cfg.JWT.RefreshTTL,
			},
			BcryptCost:        cfg.Security.BcryptCost,
			PasswordMinLength: cfg.Security.PasswordMinLength,
			UsernameMinLength: cfg.Security.UsernameMinLength,
		},
		zapLog,
	)

	c.ReconciliationService = reconciliation.NewService(
		c.Store.Users(),
		chain.Balances,
		log,
		reconciliation.Config{Tolerance: decimal.RequireFromString(reconciliationDrift)},
	)
	c.ReconciliationWorker = reconciliation_worker.NewWorker(c.ReconciliationService, reconciliation_worker.Config{
		Schedule: cfg.Reconciliation.Schedule,
		Timeout:  time.Duration(cfg.Reconciliation.Timeout) * time.Second,
	}, zapLog)

	c.AuthRateLimiter = middleware.NewAuthRateLimiter(authRequestsPerMinute)
	c.Readiness = c.buildReadiness()

	log.Info("Container initialized",
		"store", c.Store.Name(),
		"chain", cfg.Chain.Name,
		"nats", c.nats != nil,
	)
	return c, nil
}

func (c *Container) buildReadiness() *health.HealthChecker {
	return health.NewHealthChecker(readinessTimeout).
		AddCheck("store", c.Store.Ping, true).
		AddCheck("cache", c.Cache.Ping, false).
		AddCheck("chain", func(ctx context.Context) error {
			if !c.Chain.Balances.IsConnected(ctx) {
				return errors.New("chain node unreachable")
			}
			return nil
		}, false)
}

// WalletService returns the chain view facade.
func (c *Container) WalletService() *wallet.Service {
	return c.Chain.Wallet
}

// StartWorkers starts the background jobs enabled in configuration.
func (c *Container) StartWorkers() error {
	if !c.Config.Reconciliation.Enabled {
		return nil
	}
	return c.ReconciliationWorker.Start()
}

// Shutdown releases resources in reverse dependency order.
func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error

	if c.Config.Reconciliation.Enabled {
		if err := c.ReconciliationWorker.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("reconciliation worker: %w", err))
		}
	}
	c.AuthRateLimiter.Stop()

	if c.nats != nil {
		if err := c.nats.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("nats: %w", err))
		}
	}
	c.Chain.RPC.Close()
	if err := c.Cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("cache: %w", err))
	}
	if err := c.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}

	return errors.Join(errs...)
}

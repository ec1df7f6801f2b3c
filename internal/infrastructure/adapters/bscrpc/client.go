// Package bscrpc reads balances from a BNB Smart Chain JSON-RPC node.
package bscrpc

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/pkg/metrics"
)

const (
	DefaultRPCURL       = "https://bsc-dataseed.binance.org/"
	DefaultTokenAddress = "0x55d398326f99059ff775485246999027b3197955"

	defaultTimeout = 10 * time.Second

	LegNative = "native"
	LegToken  = "token"
	LegBlock  = "block"
)

// erc20ABI covers the two read-only calls needed for a token balance.
const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"}
]`

var (
	ErrInvalidAddress = errors.New("address is not a valid hex format")
	ErrRPCCall        = errors.New("call remote service")
)

// Backend is the subset of ethclient.Client used by the reader.
type Backend interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// Config represents RPC client configuration
type Config struct {
	RPCURL       string
	TokenAddress string
	Timeout      time.Duration
}

// Client issues balance reads against one node. Every call is bounded by the
// configured timeout and runs through a shared circuit breaker.
type Client struct {
	backend        Backend
	closer         func()
	token          common.Address
	tokenABI       abi.ABI
	timeout        time.Duration
	circuitBreaker *gobreaker.CircuitBreaker
	logger         *zap.Logger

	decimalsMu sync.Mutex
	decimals   *uint8
}

// Dial connects to the configured endpoint. HTTP endpoints connect lazily so
// an unreachable node surfaces on the first call, not here.
func Dial(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.RPCURL == "" {
		cfg.RPCURL = DefaultRPCURL
	}
	eth, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial to endpoint '%s': %w", cfg.RPCURL, err)
	}
	c, err := NewClient(eth, cfg, logger)
	if err != nil {
		eth.Close()
		return nil, err
	}
	c.closer = eth.Close
	return c, nil
}

// NewClient wraps an existing backend.
func NewClient(backend Backend, cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.TokenAddress == "" {
		cfg.TokenAddress = DefaultTokenAddress
	}
	if !common.IsHexAddress(cfg.TokenAddress) {
		return nil, fmt.Errorf("token contract %q: %w", cfg.TokenAddress, ErrInvalidAddress)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("parse token abi: %w", err)
	}

	cbSettings := gobreaker.Settings{
		Name:        "ChainRPC",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     20 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Chain RPC circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &Client{
		backend:        backend,
		token:          common.HexToAddress(cfg.TokenAddress),
		tokenABI:       parsed,
		timeout:        cfg.Timeout,
		circuitBreaker: gobreaker.NewCircuitBreaker(cbSettings),
		logger:         logger,
	}, nil
}

// Close releases the underlying connection when the client owns it.
func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

// TokenAddress returns the tracked token contract.
func (c *Client) TokenAddress() common.Address {
	return c.token
}

// NativeBalance returns the account's native balance in wei.
func (c *Client) NativeBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	var balance *big.Int
	err := c.call(ctx, LegNative, func(ctx context.Context) error {
		b, err := c.backend.BalanceAt(ctx, account, nil)
		if err != nil {
			return err
		}
		balance = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

// TokenBalance returns the account's raw token balance and the contract's decimals.
func (c *Client) TokenBalance(ctx context.Context, account common.Address) (*big.Int, uint8, error) {
	var (
		raw      *big.Int
		decimals uint8
	)
	err := c.call(ctx, LegToken, func(ctx context.Context) error {
		d, err := c.tokenDecimals(ctx)
		if err != nil {
			return fmt.Errorf("decimals: %w", err)
		}
		out, err := c.callToken(ctx, "balanceOf", account)
		if err != nil {
			return fmt.Errorf("balanceOf: %w", err)
		}
		b, ok := out[0].(*big.Int)
		if !ok {
			return fmt.Errorf("balanceOf: unexpected result type %T", out[0])
		}
		raw, decimals = b, d
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return raw, decimals, nil
}

// BlockNumber returns the node's latest block.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	var block uint64
	err := c.call(ctx, LegBlock, func(ctx context.Context) error {
		n, err := c.backend.BlockNumber(ctx)
		if err != nil {
			return err
		}
		block = n
		return nil
	})
	return block, err
}

func (c *Client) tokenDecimals(ctx context.Context) (uint8, error) {
	c.decimalsMu.Lock()
	defer c.decimalsMu.Unlock()
	if c.decimals != nil {
		return *c.decimals, nil
	}

	out, err := c.callToken(ctx, "decimals")
	if err != nil {
		return 0, err
	}
	d, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected result type %T", out[0])
	}
	c.decimals = &d
	return d, nil
}

func (c *Client) callToken(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := c.tokenABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	token := c.token
	raw, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, err
	}
	out, err := c.tokenABI.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("unpack %s: empty result", method)
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, leg string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	_, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return nil, fn(ctx)
	})
	metrics.ChainCallDuration.WithLabelValues(leg).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ChainCallsTotal.WithLabelValues(leg, "error").Inc()
		c.logger.Warn("Chain RPC call failed", zap.String("leg", leg), zap.Error(err))
		return errors.Join(ErrRPCCall, err)
	}
	metrics.ChainCallsTotal.WithLabelValues(leg, "success").Inc()
	return nil
}

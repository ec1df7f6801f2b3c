package bscscan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
	"github.com/usdt-vault/vault_service/pkg/metrics"
	"github.com/usdt-vault/vault_service/pkg/retry"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultRateLimit = 5
	maxBodyBytes     = 8 << 20
)

// Config represents explorer client configuration
type Config struct {
	BaseURL         string
	APIKey          string
	Timeout         time.Duration
	RateLimitPerSec float64
	MaxRetries      int
}

// Client is a BscScan-compatible account API client
type Client struct {
	config         Config
	httpClient     *http.Client
	circuitBreaker *gobreaker.CircuitBreaker
	rateLimiter    *rate.Limiter
	logger         *zap.Logger
}

// NewClient creates a new explorer client
func NewClient(config Config, logger *zap.Logger) *Client {
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.RateLimitPerSec <= 0 {
		config.RateLimitPerSec = defaultRateLimit
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}

	cbSettings := gobreaker.Settings{
		Name:        "ExplorerAPI",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		// 4xx responses mean the explorer answered.
		IsSuccessful: func(err error) bool {
			var httpErr *HTTPError
			if errors.As(err, &httpErr) {
				return httpErr.StatusCode < 500 && httpErr.StatusCode != http.StatusTooManyRequests
			}
			return err == nil
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Explorer circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &Client{
		config:         config,
		httpClient:     &http.Client{Timeout: config.Timeout},
		circuitBreaker: gobreaker.NewCircuitBreaker(cbSettings),
		rateLimiter:    rate.NewLimiter(rate.Limit(config.RateLimitPerSec), 1),
		logger:         logger,
	}
}

// NativeTransactions lists normal transactions for an address, newest first.
func (c *Client) NativeTransactions(ctx context.Context, address string, limit int) ([]entities.ExplorerTransaction, error) {
	return c.list(ctx, ActionTxList, address, limit)
}

// TokenTransactions lists BEP20 transfer events for an address, newest first.
// Transfers of every token contract are returned.
func (c *Client) TokenTransactions(ctx context.Context, address string, limit int) ([]entities.ExplorerTransaction, error) {
	return c.list(ctx, ActionTokenTx, address, limit)
}

func (c *Client) list(ctx context.Context, action, address string, limit int) ([]entities.ExplorerTransaction, error) {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", action)
	params.Set("address", address)
	params.Set("startblock", startBlock)
	params.Set("endblock", endBlock)
	params.Set("page", "1")
	params.Set("offset", strconv.Itoa(limit))
	params.Set("sort", "desc")
	if c.config.APIKey != "" {
		params.Set("apikey", c.config.APIKey)
	}

	var env envelope
	if err := c.doRequest(ctx, params, &env); err != nil {
		metrics.ExplorerCallsTotal.WithLabelValues(action, "error").Inc()
		return nil, fmt.Errorf("%s request failed: %w", action, err)
	}

	if env.Status != StatusOK {
		// An empty history is reported as status 0 with this message.
		if strings.EqualFold(env.Message, "No transactions found") {
			metrics.ExplorerCallsTotal.WithLabelValues(action, "empty").Inc()
			return []entities.ExplorerTransaction{}, nil
		}
		metrics.ExplorerCallsTotal.WithLabelValues(action, "rejected").Inc()
		apiErr := &APIError{Action: action, Status: env.Status, Message: env.Message}
		var result string
		if json.Unmarshal(env.Result, &result) == nil {
			apiErr.Result = result
		}
		return nil, apiErr
	}

	var raws []RawTransaction
	if err := json.Unmarshal(env.Result, &raws); err != nil {
		metrics.ExplorerCallsTotal.WithLabelValues(action, "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	metrics.ExplorerCallsTotal.WithLabelValues(action, "success").Inc()
	txs := make([]entities.ExplorerTransaction, 0, len(raws))
	for _, raw := range raws {
		txs = append(txs, raw.toEntity())
	}
	return txs, nil
}

func (c *Client) doRequest(ctx context.Context, params url.Values, response *envelope) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	policy := retry.DefaultPolicy()
	policy.MaxRetries = c.config.MaxRetries
	policy.RetryableFunc = isRetryable

	return retry.Do(ctx, policy, c.logger, func() error {
		_, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return nil, c.doRequestInternal(ctx, params, response)
		})
		return err
	})
}

func (c *Client) doRequestInternal(ctx context.Context, params url.Values, response *envelope) error {
	fullURL := c.config.BaseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, response); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return nil
}

func isRetryable(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500 || httpErr.StatusCode == http.StatusTooManyRequests
	}
	switch {
	case err == nil,
		errors.Is(err, ErrInvalidResponse),
		errors.Is(err, gobreaker.ErrOpenState),
		errors.Is(err, gobreaker.ErrTooManyRequests),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

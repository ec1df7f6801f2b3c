package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/api/handlers"
	"github.com/usdt-vault/vault_service/internal/api/middleware"
	"github.com/usdt-vault/vault_service/internal/domain/entities"
	"github.com/usdt-vault/vault_service/internal/domain/events"
	"github.com/usdt-vault/vault_service/internal/domain/repositories"
	"github.com/usdt-vault/vault_service/internal/domain/services/account"
	"github.com/usdt-vault/vault_service/internal/domain/services/investing"
	"github.com/usdt-vault/vault_service/internal/domain/services/ledger"
	"github.com/usdt-vault/vault_service/internal/domain/services/pin"
	"github.com/usdt-vault/vault_service/internal/domain/services/savings"
	"github.com/usdt-vault/vault_service/internal/domain/services/wallet"
	"github.com/usdt-vault/vault_service/internal/infrastructure/cache"
	infrarepos "github.com/usdt-vault/vault_service/internal/infrastructure/repositories"
	"github.com/usdt-vault/vault_service/internal/infrastructure/repositories/memory"
	"github.com/usdt-vault/vault_service/pkg/auth"
	"github.com/usdt-vault/vault_service/pkg/idempotency"
)

const (
	toAddress   = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	maxAttempts = 3
)

type fakeViewer struct {
	snapshot *entities.BalanceSnapshot
	txs      []entities.ChainTransaction
	err      error
}

func (f fakeViewer) Balance(_ context.Context, address string) (*entities.BalanceSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	if !wallet.ValidateAddress(address) {
		return nil, wallet.ErrInvalidAddress
	}
	return f.snapshot, nil
}

func (f fakeViewer) Transactions(_ context.Context, address string, _ int) ([]entities.ChainTransaction, error) {
	if !wallet.ValidateAddress(address) {
		return nil, wallet.ErrInvalidAddress
	}
	return f.txs, nil
}

func (f fakeViewer) Status(context.Context) *entities.ChainStatus {
	return &entities.ChainStatus{Chain: "bsc", Connected: true, CurrentBlock: 42}
}

func newTestRouter(t *testing.T, store repositories.Store, viewer handlers.WalletViewer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handlers.RegisterValidators()
	logger := zap.NewNop()

	pins := pin.NewService(store.Users(), pin.Config{MaxAttempts: maxAttempts, BcryptCost: 4}, logger)
	accounts := account.NewService(store, nil, auth.NewTokenBlacklist(cache.NewMemoryCache()), account.Config{
		Tokens:     auth.TokenConfig{Secret: "test-secret", Issuer: "test", AccessTTL: 300, RefreshTTL: 3600},
		BcryptCost: 4,
	}, logger)

	h := APIHandlers{
		Auth:      handlers.NewAuthHandlers(accounts, logger),
		Account:   handlers.NewAccountHandlers(accounts, logger),
		PIN:       handlers.NewPINHandlers(pins, logger),
		Ledger:    handlers.NewLedgerHandlers(ledger.NewService(store, pins, events.Noop{}, logger), logger),
		Savings:   handlers.NewSavingsHandlers(savings.NewService(store, events.Noop{}, logger), logger),
		Investing: handlers.NewInvestingHandlers(investing.NewService(store.Plans(), logger), logger),
		Wallet:    handlers.NewWalletHandlers(viewer, logger),
	}

	router := gin.New()
	limiter := middleware.NewAuthRateLimiter(1000)
	t.Cleanup(limiter.Stop)
	RegisterAPI(router.Group("/api/v1"), h,
		middleware.Authentication(accounts),
		limiter.Limit(),
		idempotency.Middleware(cache.NewMemoryCache(), time.Minute, logger),
	)
	return router
}

type client struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func (c *client) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	return c.doWithKey(method, path, "", body)
}

func (c *client) doWithKey(method, path, key string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if key != "" {
		req.Header.Set(idempotency.HeaderIdempotencyKey, key)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp entities.ErrorResponse
	decode(t, w, &resp)
	return resp.Code
}

func registered(t *testing.T, router *gin.Engine, username string) *client {
	t.Helper()
	c := &client{t: t, router: router}
	w := c.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": username, "password": "correct-horse", "confirm_password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp entities.AuthResponse
	decode(t, w, &resp)
	c.token = resp.AccessToken
	return c
}

func TestAuthFlow(t *testing.T) {
	router := newTestRouter(t, memory.NewStore(), fakeViewer{})
	anon := &client{t: t, router: router}

	w := anon.do(http.MethodGet, "/api/v1/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	alice := registered(t, router, "Alice")
	w = alice.do(http.MethodGet, "/api/v1/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me entities.UserInfo
	decode(t, w, &me)
	assert.Equal(t, "alice", me.Username)

	w = anon.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "ALICE", "password": "password1", "confirm_password": "password1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = anon.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "alice", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = anon.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "alice", "password": "correct-horse"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = alice.do(http.MethodPost, "/api/v1/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = alice.do(http.MethodGet, "/api/v1/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLedgerFlow(t *testing.T) {
	router := newTestRouter(t, memory.NewStore(), fakeViewer{})
	alice := registered(t, router, "alice")

	w := alice.do(http.MethodPost, "/api/v1/ledger/deposits", map[string]string{"amount": "0"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = alice.do(http.MethodPost, "/api/v1/ledger/deposits", map[string]string{"amount": "100"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = alice.do(http.MethodPost, "/api/v1/ledger/withdrawals", map[string]string{"amount": "500", "to_address": toAddress})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, handlers.ErrCodeInsufficientFunds, errorCode(t, w))

	w = alice.do(http.MethodPost, "/api/v1/ledger/withdrawals", map[string]string{"amount": "10", "to_address": "0x123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = alice.do(http.MethodPost, "/api/v1/ledger/withdrawals", map[string]string{"amount": "30", "to_address": toAddress})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = alice.do(http.MethodGet, "/api/v1/me", nil)
	var me entities.UserInfo
	decode(t, w, &me)
	assert.Equal(t, "70", me.Balance.String())

	w = alice.do(http.MethodGet, "/api/v1/ledger/transactions?type=receive", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Transactions []entities.Transaction `json:"transactions"`
		Count        int                    `json:"count"`
	}
	decode(t, w, &list)
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, entities.TransactionTypeReceive, list.Transactions[0].Type)

	w = alice.do(http.MethodGet, "/api/v1/ledger/transactions?type=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = alice.do(http.MethodGet, "/api/v1/ledger/transactions/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "Date,Type,Amount,Address,Status", lines[0])
}

func TestIdempotentDeposit(t *testing.T) {
	router := newTestRouter(t, memory.NewStore(), fakeViewer{})
	alice := registered(t, router, "alice")
	bob := registered(t, router, "bob")

	deposit := func(c *client, key, amount string) *httptest.ResponseRecorder {
		return c.doWithKey(http.MethodPost, "/api/v1/ledger/deposits", key, map[string]string{"amount": amount})
	}

	first := deposit(alice, "deposit-0001", "100")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	replay := deposit(alice, "deposit-0001", "100")
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, first.Body.String(), replay.Body.String())

	w := deposit(alice, "deposit-0001", "250")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = deposit(alice, "bad key", "1")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Keys are scoped per user.
	w = deposit(bob, "deposit-0001", "100")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, w.Header().Get("Idempotent-Replayed"))

	w = alice.do(http.MethodGet, "/api/v1/me", nil)
	var me entities.UserInfo
	decode(t, w, &me)
	assert.Equal(t, "100", me.Balance.String())
}

func TestWithdrawPINLockout(t *testing.T) {
	router := newTestRouter(t, memory.NewStore(), fakeViewer{})
	alice := registered(t, router, "alice")

	require.Equal(t, http.StatusCreated, alice.do(http.MethodPost, "/api/v1/ledger/deposits", map[string]string{"amount": "100"}).Code)

	w := alice.do(http.MethodPost, "/api/v1/me/pin", map[string]string{"pin": "123456", "confirm_pin": "123456"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = alice.do(http.MethodPost, "/api/v1/me/pin", map[string]string{"pin": "654321", "confirm_pin": "654321"})
	assert.Equal(t, http.StatusConflict, w.Code)

	withdraw := func(pinValue string) *httptest.ResponseRecorder {
		return alice.do(http.MethodPost, "/api/v1/ledger/withdrawals", map[string]string{
			"amount": "10", "to_address": toAddress, "pin": pinValue,
		})
	}

	for i := 0; i < maxAttempts; i++ {
		w = withdraw("000000")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, handlers.ErrCodePINMismatch, errorCode(t, w))
	}

	w = withdraw("123456")
	assert.Equal(t, http.StatusLocked, w.Code)

	w = alice.do(http.MethodGet, "/api/v1/me", nil)
	var me entities.UserInfo
	decode(t, w, &me)
	assert.Equal(t, "100", me.Balance.String(), "rejected withdrawals leave the balance untouched")
}

func TestGoalsAndPlans(t *testing.T) {
	router := newTestRouter(t, memory.NewStore(), fakeViewer{})
	alice := registered(t, router, "alice")
	require.Equal(t, http.StatusCreated, alice.do(http.MethodPost, "/api/v1/ledger/deposits", map[string]string{"amount": "100"}).Code)

	w := alice.do(http.MethodPost, "/api/v1/goals", map[string]interface{}{
		"title": "Laptop", "target_amount": "200", "deadline": "2099-12-31",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var goal entities.SavingsGoal
	decode(t, w, &goal)

	w = alice.do(http.MethodPost, "/api/v1/goals/"+goal.ID.String()+"/deposit", map[string]string{"amount": "150"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = alice.do(http.MethodPost, "/api/v1/goals/"+goal.ID.String()+"/deposit", map[string]string{"amount": "50"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = alice.do(http.MethodPost, "/api/v1/goals/not-a-uuid/deposit", map[string]string{"amount": "5"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = alice.do(http.MethodDelete, "/api/v1/goals/"+goal.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var deleted struct {
		Refunded decimal.Decimal `json:"refunded"`
	}
	decode(t, w, &deleted)
	assert.Equal(t, "50", deleted.Refunded.String())

	w = alice.do(http.MethodPost, "/api/v1/plans", map[string]interface{}{
		"name": "Index", "amount": "50", "frequency": "weekly",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var plan entities.InvestmentPlan
	decode(t, w, &plan)
	assert.True(t, plan.AutoInvest)
	assert.True(t, plan.NextContribution.After(time.Now()))

	w = alice.do(http.MethodPost, "/api/v1/plans/"+plan.ID.String()+"/pause", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = alice.do(http.MethodGet, "/api/v1/plans", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary entities.PlanSummary
	decode(t, w, &summary)
	assert.Equal(t, "200", summary.MonthlyEstimate.String())
	assert.Equal(t, 0, summary.ActiveCount)

	bob := registered(t, router, "bob")
	w = bob.do(http.MethodDelete, "/api/v1/plans/"+plan.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = alice.do(http.MethodDelete, "/api/v1/plans/"+plan.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = alice.do(http.MethodGet, "/api/v1/me/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats entities.AccountStats
	decode(t, w, &stats)
	assert.Equal(t, "100", stats.Balance.String())
	assert.Zero(t, stats.GoalCount)
	assert.Zero(t, stats.PlanCount)
}

func TestStoreUnavailable(t *testing.T) {
	router := newTestRouter(t, infrarepos.NewUnavailableStore("no store configured"), fakeViewer{})
	anon := &client{t: t, router: router}

	w := anon.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "alice", "password": "correct-horse", "confirm_password": "correct-horse",
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, handlers.ErrCodeStoreUnavailable, errorCode(t, w))

	w = anon.do(http.MethodGet, "/api/v1/chain/status", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPublicWalletViews(t *testing.T) {
	total := decimal.NewFromInt(42)
	viewer := fakeViewer{
		snapshot: &entities.BalanceSnapshot{Address: toAddress, TotalUSD: &total},
		txs: []entities.ChainTransaction{{
			Hash: "0xabc", Type: entities.ChainTransactionReceive, Amount: decimal.NewFromInt(5),
			Currency: "USDT", Status: "success", Timestamp: time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC),
		}},
	}
	router := newTestRouter(t, memory.NewStore(), viewer)
	anon := &client{t: t, router: router}

	w := anon.do(http.MethodGet, "/api/v1/wallets/"+toAddress+"/balance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snap entities.BalanceSnapshot
	decode(t, w, &snap)
	assert.Equal(t, "42", snap.TotalUSD.String())

	w = anon.do(http.MethodGet, "/api/v1/wallets/0x123/balance", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = anon.do(http.MethodGet, "/api/v1/wallets/"+toAddress+"/transactions/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "0xabc")

	router = newTestRouter(t, memory.NewStore(), fakeViewer{err: wallet.ErrBalanceUnavailable})
	anon = &client{t: t, router: router}
	w = anon.do(http.MethodGet, "/api/v1/wallets/"+toAddress+"/balance", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, handlers.ErrCodeChainUnavailable, errorCode(t, w))
}

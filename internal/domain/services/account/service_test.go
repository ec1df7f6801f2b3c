package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
	domainerrors "github.com/usdt-vault/vault_service/internal/domain/errors"
	"github.com/usdt-vault/vault_service/internal/domain/services/wallet"
	"github.com/usdt-vault/vault_service/internal/infrastructure/cache"
	"github.com/usdt-vault/vault_service/internal/infrastructure/repositories/memory"
	"github.com/usdt-vault/vault_service/pkg/auth"
)

const linked = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

type stubBalances struct {
	snapshot *entities.BalanceSnapshot
	err      error
}

func (s stubBalances) GetWalletBalance(_ context.Context, address string) (*entities.BalanceSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	snap := *s.snapshot
	snap.Address = address
	return &snap, nil
}

func newTestService(balances BalanceLookup) (*Service, *memory.Store) {
	store := memory.NewStore()
	cfg := Config{
		Tokens:     auth.TokenConfig{Secret: "test-secret", Issuer: "test", AccessTTL: 300, RefreshTTL: 3600},
		BcryptCost: 4,
	}
	return NewService(store, balances, auth.NewTokenBlacklist(cache.NewMemoryCache()), cfg, zap.NewNop()), store
}

func register(t *testing.T, svc *Service, username string) *entities.AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), &entities.RegisterRequest{
		Username: username, Password: "correct-horse", ConfirmPassword: "correct-horse",
	})
	require.NoError(t, err)
	return resp
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(nil)

	resp := register(t, svc, "  Alice ")
	assert.Equal(t, "alice", resp.User.Username)
	assert.True(t, resp.User.Balance.IsZero())
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	_, err := svc.Register(ctx, &entities.RegisterRequest{Username: "ALICE", Password: "password1", ConfirmPassword: "password1"})
	assert.True(t, domainerrors.IsAlreadyExists(err))
	assert.Equal(t, "Username already exists", err.Error())

	_, err = svc.Register(ctx, &entities.RegisterRequest{Username: "ab", Password: "password1", ConfirmPassword: "password1"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidUsername)

	_, err = svc.Register(ctx, &entities.RegisterRequest{Username: "bob", Password: "short", ConfirmPassword: "short"})
	assert.ErrorIs(t, err, domainerrors.ErrWeakPassword)

	_, err = svc.Register(ctx, &entities.RegisterRequest{Username: "bob", Password: "password1", ConfirmPassword: "password2"})
	assert.ErrorIs(t, err, domainerrors.ErrPasswordMismatch)
	assert.True(t, domainerrors.IsInvalidInput(err))
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(nil)
	register(t, svc, "alice")

	resp, err := svc.Login(ctx, &entities.LoginRequest{Username: "Alice", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.User.Username)

	_, err = svc.Login(ctx, &entities.LoginRequest{Username: "alice", Password: "wrong-password"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	assert.Equal(t, "Invalid username or password", err.Error())

	_, err = svc.Login(ctx, &entities.LoginRequest{Username: "nobody", Password: "whatever1"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthenticateRefreshAndLogout(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(nil)
	resp := register(t, svc, "alice")

	claims, err := svc.Authenticate(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	_, err = svc.Authenticate(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)

	pair, err := svc.Refresh(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	_, err = svc.Refresh(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)

	require.NoError(t, svc.Logout(ctx, resp.AccessToken, claims))
	_, err = svc.Authenticate(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, domainerrors.ErrTokenBlacklisted)
}

func TestLinkAndUnlinkWallet(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(nil)
	resp := register(t, svc, "alice")

	_, err := svc.LinkWallet(ctx, resp.User.ID, "0x123")
	assert.ErrorIs(t, err, wallet.ErrInvalidAddress)

	info, err := svc.LinkWallet(ctx, resp.User.ID, "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	require.NoError(t, err)
	require.NotNil(t, info.LinkedAddress)
	assert.Equal(t, linked, *info.LinkedAddress)

	info, err = svc.UnlinkWallet(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Nil(t, info.LinkedAddress)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(nil)
	resp := register(t, svc, "alice")
	userID := resp.User.ID

	require.NoError(t, store.Users().UpdateBalance(ctx, userID, decimal.NewFromInt(40)))
	require.NoError(t, store.Transactions().Create(ctx, &entities.Transaction{UserID: userID, Type: entities.TransactionTypeReceive, Amount: decimal.NewFromInt(100), CreatedAt: time.Now()}))
	for _, current := range []int64{25, 35} {
		require.NoError(t, store.Goals().Create(ctx, &entities.SavingsGoal{
			ID: uuid.New(), UserID: userID, Title: "g", TargetAmount: decimal.NewFromInt(100), CurrentAmount: decimal.NewFromInt(current),
		}))
	}
	require.NoError(t, store.Plans().Create(ctx, &entities.InvestmentPlan{ID: uuid.New(), UserID: userID, Name: "p", Amount: decimal.NewFromInt(5), Frequency: entities.FrequencyDaily}))

	stats, err := svc.Stats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "40", stats.Balance.String())
	assert.Equal(t, 1, stats.TransactionCount)
	assert.Equal(t, 2, stats.GoalCount)
	assert.Equal(t, 1, stats.PlanCount)
	assert.Equal(t, "60", stats.TotalSaved.String())
}

func TestPublicProfile(t *testing.T) {
	ctx := context.Background()
	total := decimal.RequireFromString("12.50")
	svc, _ := newTestService(stubBalances{snapshot: &entities.BalanceSnapshot{TotalUSD: &total}})
	resp := register(t, svc, "alice")

	profile, err := svc.PublicProfile(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Nil(t, profile.LinkedAddress)
	assert.Empty(t, profile.QRPayload)
	assert.Nil(t, profile.ChainBalance)

	_, err = svc.LinkWallet(ctx, resp.User.ID, linked)
	require.NoError(t, err)

	profile, err = svc.PublicProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "ethereum:"+linked, profile.QRPayload)
	require.NotNil(t, profile.ChainBalance)
	assert.Equal(t, linked, profile.ChainBalance.Address)

	_, err = svc.PublicProfile(ctx, "ghost")
	assert.True(t, domainerrors.IsNotFound(err))
}

func TestPublicProfile_ChainFailureKeepsProfile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(stubBalances{err: errors.New("rpc down")})
	resp := register(t, svc, "alice")
	_, err := svc.LinkWallet(ctx, resp.User.ID, linked)
	require.NoError(t, err)

	profile, err := svc.PublicProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, profile.ChainBalance)
	assert.NotEmpty(t, profile.BalanceError)
	assert.Equal(t, "ethereum:"+linked, profile.QRPayload)
}

package savings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
	domainerrors "github.com/usdt-vault/vault_service/internal/domain/errors"
	"github.com/usdt-vault/vault_service/internal/domain/events"
	"github.com/usdt-vault/vault_service/internal/infrastructure/repositories/memory"
)

func setup(t *testing.T, balance int64) (*Service, *memory.Store, uuid.UUID) {
	t.Helper()
	store := memory.NewStore()
	user := &entities.User{ID: uuid.New(), Username: "saver", Balance: decimal.NewFromInt(balance), CreatedAt: time.Now()}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return NewService(store, events.Noop{}, zap.NewNop()), store, user.ID
}

func createGoal(t *testing.T, svc *Service, userID uuid.UUID, target int64) *entities.GoalView {
	t.Helper()
	goal, err := svc.CreateGoal(context.Background(), userID, CreateGoalInput{
		Title:        "Emergency fund",
		TargetAmount: decimal.NewFromInt(target),
		Deadline:     time.Now().AddDate(0, 3, 0),
	})
	require.NoError(t, err)
	return goal
}

func balanceOf(t *testing.T, store *memory.Store, userID uuid.UUID) string {
	t.Helper()
	user, err := store.Users().GetByID(context.Background(), userID)
	require.NoError(t, err)
	return user.Balance.String()
}

func TestProgress(t *testing.T) {
	tests := []struct {
		current, target string
		want            string
	}{
		{"50", "200", "25"},
		{"250", "200", "100"},
		{"0", "200", "0"},
		{"5", "0", "100"},
		{"1", "3", "33.33"},
	}
	for _, tt := range tests {
		got := Progress(decimal.RequireFromString(tt.current), decimal.RequireFromString(tt.target)).Round(2)
		assert.Equal(t, tt.want, got.String(), "%s/%s", tt.current, tt.target)
	}
}

func TestDaysLeft(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 10, DaysLeft(now.AddDate(0, 0, 10), now))
	assert.Equal(t, 0, DaysLeft(now.Add(-48*time.Hour), now))
	assert.Equal(t, 0, DaysLeft(now.Add(12*time.Hour), now))
}

func TestDepositToGoal(t *testing.T) {
	ctx := context.Background()
	svc, store, userID := setup(t, 500)
	goal := createGoal(t, svc, userID, 1000)

	view, err := svc.DepositToGoal(ctx, userID, goal.ID, decimal.NewFromInt(200))
	require.NoError(t, err)
	assert.Equal(t, "200", view.CurrentAmount.String())
	assert.Equal(t, "300", balanceOf(t, store, userID))

	_, err = svc.DepositToGoal(ctx, userID, goal.ID, decimal.NewFromInt(600))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, "300", balanceOf(t, store, userID))

	stored, err := store.Goals().GetByID(ctx, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, "200", stored.CurrentAmount.String())

	_, err = svc.DepositToGoal(ctx, userID, goal.ID, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestWithdrawFromGoal(t *testing.T) {
	ctx := context.Background()
	svc, store, userID := setup(t, 100)
	goal := createGoal(t, svc, userID, 200)

	_, err := svc.DepositToGoal(ctx, userID, goal.ID, decimal.NewFromInt(80))
	require.NoError(t, err)

	_, err = svc.WithdrawFromGoal(ctx, userID, goal.ID, decimal.NewFromInt(81))
	assert.ErrorIs(t, err, ErrInsufficientGoalFunds)
	assert.True(t, domainerrors.IsInsufficientFunds(err))

	view, err := svc.WithdrawFromGoal(ctx, userID, goal.ID, decimal.NewFromInt(30))
	require.NoError(t, err)
	assert.Equal(t, "50", view.CurrentAmount.String())
	assert.Equal(t, "25", view.Progress.String())
	assert.Equal(t, "50", balanceOf(t, store, userID))
}

func TestDeleteGoal_Refunds(t *testing.T) {
	ctx := context.Background()
	svc, store, userID := setup(t, 175)
	goal := createGoal(t, svc, userID, 500)

	_, err := svc.DepositToGoal(ctx, userID, goal.ID, decimal.NewFromInt(75))
	require.NoError(t, err)
	require.Equal(t, "100", balanceOf(t, store, userID))

	refund, err := svc.DeleteGoal(ctx, userID, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, "75", refund.String())
	assert.Equal(t, "175", balanceOf(t, store, userID))

	_, err = store.Goals().GetByID(ctx, goal.ID)
	assert.True(t, domainerrors.IsNotFound(err))
}

func TestOtherUsersGoalIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc, store, ownerID := setup(t, 100)
	goal := createGoal(t, svc, ownerID, 100)

	intruder := &entities.User{ID: uuid.New(), Username: "mallory", Balance: decimal.NewFromInt(100)}
	require.NoError(t, store.Users().Create(ctx, intruder))

	_, err := svc.DepositToGoal(ctx, intruder.ID, goal.ID, decimal.NewFromInt(10))
	assert.True(t, domainerrors.IsNotFound(err))
	_, err = svc.DeleteGoal(ctx, intruder.ID, goal.ID)
	assert.True(t, domainerrors.IsNotFound(err))
	_, err = svc.UpdateAutoSave(ctx, intruder.ID, goal.ID, entities.AutoSaveSettings{})
	assert.True(t, domainerrors.IsNotFound(err))

	assert.Equal(t, "100", balanceOf(t, store, intruder.ID))
}

func TestCreateGoal_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _, userID := setup(t, 0)

	_, err := svc.CreateGoal(ctx, userID, CreateGoalInput{Title: " ", TargetAmount: decimal.NewFromInt(1), Deadline: time.Now()})
	assert.True(t, domainerrors.IsInvalidInput(err))

	_, err = svc.CreateGoal(ctx, userID, CreateGoalInput{Title: "Car", TargetAmount: decimal.Zero, Deadline: time.Now()})
	assert.True(t, domainerrors.IsInvalidInput(err))

	_, err = svc.CreateGoal(ctx, userID, CreateGoalInput{
		Title: "Car", TargetAmount: decimal.NewFromInt(1), Deadline: time.Now(),
		AutoSaveEnabled: true, AutoSaveAmount: decimal.NewFromInt(5), AutoSaveFrequency: "hourly",
	})
	assert.True(t, domainerrors.IsInvalidInput(err))
}

func TestUpdateAutoSaveAndList(t *testing.T) {
	ctx := context.Background()
	svc, _, userID := setup(t, 0)
	goal := createGoal(t, svc, userID, 100)

	view, err := svc.UpdateAutoSave(ctx, userID, goal.ID, entities.AutoSaveSettings{
		Enabled: true, Amount: decimal.NewFromInt(25), Frequency: entities.FrequencyWeekly,
	})
	require.NoError(t, err)
	assert.True(t, view.AutoSaveEnabled)

	goals, err := svc.ListGoals(ctx, userID)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, entities.FrequencyWeekly, goals[0].AutoSaveFrequency)
	assert.Equal(t, "25", goals[0].AutoSaveAmount.String())
	assert.Greater(t, goals[0].DaysLeft, 80)

	total, count, err := svc.TotalSaved(ctx, userID)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
	assert.Equal(t, 1, count)
}

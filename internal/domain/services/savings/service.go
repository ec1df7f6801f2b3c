// Package savings moves funds between a user's tracked balance and their
// savings goals. Every balance-affecting operation runs in one store transaction.
package savings

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
	domainerrors "github.com/usdt-vault/vault_service/internal/domain/errors"
	"github.com/usdt-vault/vault_service/internal/domain/events"
	"github.com/usdt-vault/vault_service/internal/domain/repositories"
	"github.com/usdt-vault/vault_service/pkg/metrics"
)

var (
	ErrInvalidAmount         = domainerrors.ErrInvalidAmount
	ErrInsufficientBalance   = fmt.Errorf("insufficient balance: %w", domainerrors.ErrInsufficientFunds)
	ErrInsufficientGoalFunds = fmt.Errorf("insufficient goal funds: %w", domainerrors.ErrInsufficientFunds)
)

var hundred = decimal.NewFromInt(100)

// CreateGoalInput describes a new savings goal. Auto-save fields are optional.
type CreateGoalInput struct {
	Title             string
	TargetAmount      decimal.Decimal
	Deadline          time.Time
	AutoSaveEnabled   bool
	AutoSaveAmount    decimal.Decimal
	AutoSaveFrequency entities.Frequency
}

type Service struct {
	store     repositories.Store
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(store repositories.Store, publisher events.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Progress is current/target as a percentage capped at 100. A non-positive
// target is treated as 1.
func Progress(current, target decimal.Decimal) decimal.Decimal {
	if !target.IsPositive() {
		target = decimal.NewFromInt(1)
	}
	p := current.Div(target).Mul(hundred)
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}

// DaysLeft counts whole days until deadline, never negative.
func DaysLeft(deadline, now time.Time) int {
	days := int(math.Floor(deadline.Sub(now).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

func (s *Service) view(goal *entities.SavingsGoal) *entities.GoalView {
	progress := Progress(goal.CurrentAmount, goal.TargetAmount)
	return &entities.GoalView{
		SavingsGoal: goal,
		Progress:    progress.Round(2),
		DaysLeft:    DaysLeft(goal.Deadline, s.now()),
		Completed:   progress.GreaterThanOrEqual(hundred),
	}
}

func (s *Service) CreateGoal(ctx context.Context, userID uuid.UUID, input CreateGoalInput) (*entities.GoalView, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domainerrors.ValidationError("title", "goal title is required")
	}
	if !input.TargetAmount.IsPositive() {
		return nil, domainerrors.ValidationError("target_amount", "target amount must be greater than zero")
	}
	if input.Deadline.IsZero() {
		return nil, domainerrors.ValidationError("deadline", "deadline is required")
	}

	frequency := input.AutoSaveFrequency
	if frequency == "" {
		frequency = entities.FrequencyMonthly
	}
	if err := frequency.Validate(); err != nil {
		return nil, domainerrors.ValidationError("auto_save_frequency", err.Error())
	}
	if input.AutoSaveEnabled && !input.AutoSaveAmount.IsPositive() {
		return nil, domainerrors.ValidationError("auto_save_amount", "auto-save amount must be greater than zero")
	}

	now := s.now().UTC()
	goal := &entities.SavingsGoal{
		ID:                uuid.New(),
		UserID:            userID,
		Title:             title,
		TargetAmount:      input.TargetAmount,
		CurrentAmount:     decimal.Zero,
		Deadline:          input.Deadline.UTC(),
		AutoSaveEnabled:   input.AutoSaveEnabled,
		AutoSaveAmount:    input.AutoSaveAmount,
		AutoSaveFrequency: frequency,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.store.Goals().Create(ctx, goal); err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}

	s.logger.Info("Savings goal created",
		zap.String("user_id", userID.String()),
		zap.String("goal_id", goal.ID.String()),
		zap.String("target", goal.TargetAmount.String()))
	return s.view(goal), nil
}

func (s *Service) ListGoals(ctx context.Context, userID uuid.UUID) ([]*entities.GoalView, error) {
	goals, err := s.store.Goals().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	views := make([]*entities.GoalView, 0, len(goals))
	for _, g := range goals {
		views = append(views, s.view(g))
	}
	return views, nil
}

// ownedGoal loads goalID for update and hides goals owned by someone else.
func ownedGoal(ctx context.Context, tx repositories.Repositories, userID, goalID uuid.UUID) (*entities.SavingsGoal, error) {
	goal, err := tx.Goals().GetByIDForUpdate(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, domainerrors.NotFoundError("GOAL")
	}
	return goal, nil
}

// DepositToGoal moves amount from the user's balance into the goal.
func (s *Service) DepositToGoal(ctx context.Context, userID, goalID uuid.UUID, amount decimal.Decimal) (*entities.GoalView, error) {
	if !amount.IsPositive() {
		metrics.RecordLedgerOperation("goal_deposit", "rejected", 0)
		return nil, ErrInvalidAmount
	}

	var (
		goal    *entities.SavingsGoal
		balance decimal.Decimal
	)
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, tx repositories.Repositories) error {
		user, err := tx.Users().GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		goal, err = ownedGoal(ctx, tx, userID, goalID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(user.Balance) {
			return domainerrors.InsufficientFundsError(ErrInsufficientBalance, amount.String(), user.Balance.String())
		}

		goal.CurrentAmount = goal.CurrentAmount.Add(amount)
		if err := tx.Goals().UpdateCurrentAmount(ctx, goalID, goal.CurrentAmount); err != nil {
			return fmt.Errorf("update goal: %w", err)
		}
		balance = user.Balance.Sub(amount)
		if err := tx.Users().UpdateBalance(ctx, userID, balance); err != nil {
			return fmt.Errorf("update balance: %w", err)
		}
		return nil
	})
	if err != nil {
		metrics.RecordLedgerOperation("goal_deposit", outcome(err), 0)
		return nil, err
	}

	metrics.RecordLedgerOperation("goal_deposit", "success", amount.InexactFloat64())
	s.logger.Info("Goal deposit recorded",
		zap.String("user_id", userID.String()),
		zap.String("goal_id", goalID.String()),
		zap.String("amount", amount.String()))
	events.Emit(ctx, s.publisher, s.logger, entities.LedgerEvent{
		Type: entities.EventGoalDeposit, UserID: userID, EntityID: goalID, Amount: amount, Balance: balance,
	})
	return s.view(goal), nil
}

// WithdrawFromGoal moves amount from the goal back to the user's balance.
func (s *Service) WithdrawFromGoal(ctx context.Context, userID, goalID uuid.UUID, amount decimal.Decimal) (*entities.GoalView, error) {
	if !amount.IsPositive() {
		metrics.RecordLedgerOperation("goal_withdrawal", "rejected", 0)
		return nil, ErrInvalidAmount
	}

	var (
		goal    *entities.SavingsGoal
		balance decimal.Decimal
	)
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, tx repositories.Repositories) error {
		user, err := tx.Users().GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		goal, err = ownedGoal(ctx, tx, userID, goalID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(goal.CurrentAmount) {
			return domainerrors.InsufficientFundsError(ErrInsufficientGoalFunds, amount.String(), goal.CurrentAmount.String())
		}

		goal.CurrentAmount = goal.CurrentAmount.Sub(amount)
		if err := tx.Goals().UpdateCurrentAmount(ctx, goalID, goal.CurrentAmount); err != nil {
			return fmt.Errorf("update goal: %w", err)
		}
		balance = user.Balance.Add(amount)
		if err := tx.Users().UpdateBalance(ctx, userID, balance); err != nil {
			return fmt.Errorf("update balance: %w", err)
		}
		return nil
	})
	if err != nil {
		metrics.RecordLedgerOperation("goal_withdrawal", outcome(err), 0)
		return nil, err
	}

	metrics.RecordLedgerOperation("goal_withdrawal", "success", amount.InexactFloat64())
	s.logger.Info("Goal withdrawal recorded",
		zap.String("user_id", userID.String()),
		zap.String("goal_id", goalID.String()),
		zap.String("amount", amount.String()))
	events.Emit(ctx, s.publisher, s.logger, entities.LedgerEvent{
		Type: entities.EventGoalWithdrawal, UserID: userID, EntityID: goalID, Amount: amount, Balance: balance,
	})
	return s.view(goal), nil
}

// DeleteGoal refunds any saved amount to the user's balance and removes the goal.
// It returns the refunded amount.
func (s *Service) DeleteGoal(ctx context.Context, userID, goalID uuid.UUID) (decimal.Decimal, error) {
	var (
		refund  decimal.Decimal
		balance decimal.Decimal
	)
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, tx repositories.Repositories) error {
		user, err := tx.Users().GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		goal, err := ownedGoal(ctx, tx, userID, goalID)
		if err != nil {
			return err
		}

		balance = user.Balance
		if goal.CurrentAmount.IsPositive() {
			refund = goal.CurrentAmount
			balance = balance.Add(refund)
			if err := tx.Users().UpdateBalance(ctx, userID, balance); err != nil {
				return fmt.Errorf("refund balance: %w", err)
			}
		}
		if err := tx.Goals().Delete(ctx, goalID); err != nil {
			return fmt.Errorf("delete goal: %w", err)
		}
		return nil
	})
	if err != nil {
		metrics.RecordLedgerOperation("goal_delete", outcome(err), 0)
		return decimal.Zero, err
	}

	metrics.RecordLedgerOperation("goal_delete", "success", refund.InexactFloat64())
	s.logger.Info("Savings goal deleted",
		zap.String("user_id", userID.String()),
		zap.String("goal_id", goalID.String()),
		zap.String("refund", refund.String()))
	events.Emit(ctx, s.publisher, s.logger, entities.LedgerEvent{
		Type: entities.EventGoalDeleted, UserID: userID, EntityID: goalID, Amount: refund, Balance: balance,
	})
	return refund, nil
}

// UpdateAutoSave changes the goal's advisory auto-save settings.
func (s *Service) UpdateAutoSave(ctx context.Context, userID, goalID uuid.UUID, settings entities.AutoSaveSettings) (*entities.GoalView, error) {
	if settings.Frequency == "" {
		settings.Frequency = entities.FrequencyMonthly
	}
	if err := settings.Frequency.Validate(); err != nil {
		return nil, domainerrors.ValidationError("frequency", err.Error())
	}
	if settings.Enabled && !settings.Amount.IsPositive() {
		return nil, domainerrors.ValidationError("amount", "auto-save amount must be greater than zero")
	}

	goal, err := s.store.Goals().GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, domainerrors.NotFoundError("GOAL")
	}
	if err := s.store.Goals().UpdateAutoSave(ctx, goalID, settings); err != nil {
		return nil, fmt.Errorf("update auto-save: %w", err)
	}

	goal.AutoSaveEnabled = settings.Enabled
	goal.AutoSaveAmount = settings.Amount
	goal.AutoSaveFrequency = settings.Frequency
	return s.view(goal), nil
}

// TotalSaved sums the current amount across the user's goals.
func (s *Service) TotalSaved(ctx context.Context, userID uuid.UUID) (decimal.Decimal, int, error) {
	goals, err := s.store.Goals().ListByUser(ctx, userID)
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("list goals: %w", err)
	}
	total := decimal.Zero
	for _, g := range goals {
		total = total.Add(g.CurrentAmount)
	}
	return total, len(goals), nil
}

func outcome(err error) string {
	if domainerrors.IsInsufficientFunds(err) || domainerrors.IsNotFound(err) || domainerrors.IsInvalidInput(err) {
		return "rejected"
	}
	return "error"
}

package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
	apperrors "github.com/usdt-vault/vault_service/internal/domain/errors"
)

const goalColumns = `id, user_id, title, target_amount, current_amount, deadline,
	auto_save_enabled, auto_save_amount, auto_save_frequency, saving_streak, created_at, updated_at`

// SavingsGoalRepository handles savings goal persistence
type SavingsGoalRepository struct {
	db executor
}

func NewSavingsGoalRepository(db executor) *SavingsGoalRepository {
	return &SavingsGoalRepository{db: db}
}

func (r *SavingsGoalRepository) Create(ctx context.Context, goal *entities.SavingsGoal) error {
	query := `
		INSERT INTO savings_goals (` + goalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	now := time.Now().UTC()
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = now
	}
	goal.UpdatedAt = now

	if _, err := r.db.ExecContext(ctx, query,
		goal.ID, goal.UserID, goal.Title, goal.TargetAmount, goal.CurrentAmount, goal.Deadline,
		goal.AutoSaveEnabled, goal.AutoSaveAmount, goal.AutoSaveFrequency, goal.SavingStreak,
		goal.CreatedAt, goal.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create savings goal: %w", err)
	}
	return nil
}

func (r *SavingsGoalRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.SavingsGoal, error) {
	return r.get(ctx, `SELECT `+goalColumns+` FROM savings_goals WHERE id = $1`, id)
}

func (r *SavingsGoalRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.SavingsGoal, error) {
	return r.get(ctx, `SELECT `+goalColumns+` FROM savings_goals WHERE id = $1 FOR UPDATE`, id)
}

func (r *SavingsGoalRepository) get(ctx context.Context, query string, id uuid.UUID) (*entities.SavingsGoal, error) {
	var goal entities.SavingsGoal
	if err := r.db.GetContext(ctx, &goal, query, id); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFoundError("GOAL")
		}
		return nil, fmt.Errorf("get savings goal: %w", err)
	}
	return &goal, nil
}

func (r *SavingsGoalRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.SavingsGoal, error) {
	query := `SELECT ` + goalColumns + ` FROM savings_goals WHERE user_id = $1 ORDER BY created_at DESC`

	var goals []*entities.SavingsGoal
	if err := r.db.SelectContext(ctx, &goals, query, userID); err != nil {
		return nil, fmt.Errorf("list savings goals: %w", err)
	}
	return goals, nil
}

func (r *SavingsGoalRepository) UpdateCurrentAmount(ctx context.Context, id uuid.UUID, current decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE savings_goals SET current_amount = $2, updated_at = NOW() WHERE id = $1`, id, current)
	if err != nil {
		return fmt.Errorf("update goal amount: %w", err)
	}
	return checkAffected(res, apperrors.NotFoundError("GOAL"))
}

func (r *SavingsGoalRepository) UpdateAutoSave(ctx context.Context, id uuid.UUID, settings entities.AutoSaveSettings) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE savings_goals
		SET auto_save_enabled = $2, auto_save_amount = $3, auto_save_frequency = $4, updated_at = NOW()
		WHERE id = $1`,
		id, settings.Enabled, settings.Amount, settings.Frequency)
	if err != nil {
		return fmt.Errorf("update goal auto-save: %w", err)
	}
	return checkAffected(res, apperrors.NotFoundError("GOAL"))
}

func (r *SavingsGoalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM savings_goals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete savings goal: %w", err)
	}
	return checkAffected(res, apperrors.NotFoundError("GOAL"))
}

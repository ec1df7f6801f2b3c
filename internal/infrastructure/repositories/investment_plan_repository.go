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

const planColumns = `id, user_id, name, amount, frequency, next_contribution, auto_invest, created_at, updated_at`

// InvestmentPlanRepository handles investment plan persistence
type InvestmentPlanRepository struct {
	db executor
}

func NewInvestmentPlanRepository(db executor) *InvestmentPlanRepository {
	return &InvestmentPlanRepository{db: db}
}

func (r *InvestmentPlanRepository) Create(ctx context.Context, plan *entities.InvestmentPlan) error {
	if err := plan.Frequency.Validate(); err != nil {
		return fmt.Errorf("validate plan: %w", err)
	}
	now := time.Now().UTC()
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = now
	}
	plan.UpdatedAt = now

	query := `INSERT INTO investment_plans (` + planColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(ctx, query,
		plan.ID, plan.UserID, plan.Name, plan.Amount, plan.Frequency,
		plan.NextContribution, plan.AutoInvest, plan.CreatedAt, plan.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create investment plan: %w", err)
	}
	return nil
}

func (r *InvestmentPlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.InvestmentPlan, error) {
	var plan entities.InvestmentPlan
	err := r.db.GetContext(ctx, &plan, `SELECT `+planColumns+` FROM investment_plans WHERE id = $1`, id)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFoundError("PLAN")
		}
		return nil, fmt.Errorf("get investment plan: %w", err)
	}
	return &plan, nil
}

func (r *InvestmentPlanRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.InvestmentPlan, error) {
	var plans []*entities.InvestmentPlan
	err := r.db.SelectContext(ctx, &plans,
		`SELECT `+planColumns+` FROM investment_plans WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list investment plans: %w", err)
	}
	return plans, nil
}

func (r *InvestmentPlanRepository) UpdateAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE investment_plans SET amount = $2, updated_at = NOW() WHERE id = $1`, id, amount)
	if err != nil {
		return fmt.Errorf("update plan amount: %w", err)
	}
	return checkAffected(res, apperrors.NotFoundError("PLAN"))
}

func (r *InvestmentPlanRepository) UpdateAutoInvest(ctx context.Context, id uuid.UUID, autoInvest bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE investment_plans SET auto_invest = $2, updated_at = NOW() WHERE id = $1`, id, autoInvest)
	if err != nil {
		return fmt.Errorf("update plan auto-invest: %w", err)
	}
	return checkAffected(res, apperrors.NotFoundError("PLAN"))
}

func (r *InvestmentPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM investment_plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete investment plan: %w", err)
	}
	return checkAffected(res, apperrors.NotFoundError("PLAN"))
}

package investing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
	domainerrors "github.com/usdt-vault/vault_service/internal/domain/errors"
	"github.com/usdt-vault/vault_service/internal/domain/repositories"
)

// MinPlanAmount is the smallest contribution an edited plan may carry.
var MinPlanAmount = decimal.NewFromInt(1)

// CreatePlanInput describes a new recurring investment plan. A zero
// NextContribution is derived from the frequency.
type CreatePlanInput struct {
	Name             string
	Amount           decimal.Decimal
	Frequency        entities.Frequency
	NextContribution time.Time
	AutoInvest       bool
}

// Service manages recurring investment plans. Plans are advisory: nothing
// executes them and they never touch the ledger balance.
type Service struct {
	plans  repositories.InvestmentPlanRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(plans repositories.InvestmentPlanRepository, logger *zap.Logger) *Service {
	return &Service{
		plans:  plans,
		logger: logger,
		now:    time.Now,
	}
}

// MonthlyEstimate sums each plan's amount scaled to one month
// (daily x30, weekly x4, monthly x1). No compounding is applied.
func MonthlyEstimate(plans []*entities.InvestmentPlan) decimal.Decimal {
	total := decimal.Zero
	for _, p := range plans {
		total = total.Add(p.MonthlyEquivalent())
	}
	return total
}

func (s *Service) CreatePlan(ctx context.Context, userID uuid.UUID, input CreatePlanInput) (*entities.InvestmentPlan, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domainerrors.ValidationError("name", "plan name is required")
	}
	if input.Amount.LessThan(MinPlanAmount) {
		return nil, domainerrors.ValidationError("amount", "amount must be at least 1")
	}
	if err := input.Frequency.Validate(); err != nil {
		return nil, domainerrors.ValidationError("frequency", err.Error())
	}

	now := s.now().UTC()
	next := input.NextContribution
	if next.IsZero() {
		next = input.Frequency.NextAfter(now)
	}

	plan := &entities.InvestmentPlan{
		ID:               uuid.New(),
		UserID:           userID,
		Name:             name,
		Amount:           input.Amount,
		Frequency:        input.Frequency,
		NextContribution: next.UTC(),
		AutoInvest:       input.AutoInvest,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}

	s.logger.Info("Investment plan created",
		zap.String("user_id", userID.String()),
		zap.String("plan_id", plan.ID.String()),
		zap.String("frequency", string(plan.Frequency)))
	return plan, nil
}

// ListPlans returns the user's plans with the monthly estimate and the number
// of plans with auto-invest on.
func (s *Service) ListPlans(ctx context.Context, userID uuid.UUID) (*entities.PlanSummary, error) {
	plans, err := s.plans.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	if plans == nil {
		plans = []*entities.InvestmentPlan{}
	}

	active := 0
	for _, p := range plans {
		if p.AutoInvest {
			active++
		}
	}
	return &entities.PlanSummary{
		Plans:           plans,
		MonthlyEstimate: MonthlyEstimate(plans),
		ActiveCount:     active,
	}, nil
}

func (s *Service) owned(ctx context.Context, userID, planID uuid.UUID) (*entities.InvestmentPlan, error) {
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.UserID != userID {
		return nil, domainerrors.NotFoundError("PLAN")
	}
	return plan, nil
}

func (s *Service) Pause(ctx context.Context, userID, planID uuid.UUID) (*entities.InvestmentPlan, error) {
	return s.setAutoInvest(ctx, userID, planID, false)
}

func (s *Service) Resume(ctx context.Context, userID, planID uuid.UUID) (*entities.InvestmentPlan, error) {
	return s.setAutoInvest(ctx, userID, planID, true)
}

func (s *Service) setAutoInvest(ctx context.Context, userID, planID uuid.UUID, on bool) (*entities.InvestmentPlan, error) {
	plan, err := s.owned(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	if err := s.plans.UpdateAutoInvest(ctx, planID, on); err != nil {
		return nil, fmt.Errorf("update auto-invest: %w", err)
	}
	plan.AutoInvest = on
	s.logger.Info("Investment plan toggled",
		zap.String("plan_id", planID.String()),
		zap.Bool("auto_invest", on))
	return plan, nil
}

func (s *Service) UpdateAmount(ctx context.Context, userID, planID uuid.UUID, amount decimal.Decimal) (*entities.InvestmentPlan, error) {
	if amount.LessThan(MinPlanAmount) {
		return nil, domainerrors.ValidationError("amount", "amount must be at least 1")
	}
	plan, err := s.owned(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	if err := s.plans.UpdateAmount(ctx, planID, amount); err != nil {
		return nil, fmt.Errorf("update amount: %w", err)
	}
	plan.Amount = amount
	return plan, nil
}

func (s *Service) DeletePlan(ctx context.Context, userID, planID uuid.UUID) error {
	if _, err := s.owned(ctx, userID, planID); err != nil {
		return err
	}
	if err := s.plans.Delete(ctx, planID); err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	s.logger.Info("Investment plan deleted", zap.String("plan_id", planID.String()))
	return nil
}

// CountPlans reports how many plans the user holds.
func (s *Service) CountPlans(ctx context.Context, userID uuid.UUID) (int, error) {
	plans, err := s.plans.ListByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list plans: %w", err)
	}
	return len(plans), nil
}

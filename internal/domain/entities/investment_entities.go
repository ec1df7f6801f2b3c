package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvestmentPlan is a recurring contribution intent. Nothing executes it;
// NextContribution is display metadata.
type InvestmentPlan struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	UserID           uuid.UUID       `json:"user_id" db:"user_id"`
	Name             string          `json:"name" db:"name"`
	Amount           decimal.Decimal `json:"amount" db:"amount"`
	Frequency        Frequency       `json:"frequency" db:"frequency"`
	NextContribution time.Time       `json:"next_contribution" db:"next_contribution"`
	AutoInvest       bool            `json:"auto_invest" db:"auto_invest"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// MonthlyEquivalent is the plan amount scaled to one month.
func (p *InvestmentPlan) MonthlyEquivalent() decimal.Decimal {
	return p.Amount.Mul(decimal.NewFromInt(p.Frequency.MonthlyMultiplier()))
}

// PlanSummary lists a user's plans with the estimated monthly total.
type PlanSummary struct {
	Plans           []*InvestmentPlan `json:"plans"`
	MonthlyEstimate decimal.Decimal   `json:"monthly_estimate"`
	ActiveCount     int               `json:"active_count"`
}

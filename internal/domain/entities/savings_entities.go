package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Frequency of auto-save and investment contributions
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func (f Frequency) Validate() error {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return nil
	default:
		return fmt.Errorf("invalid frequency: %s", f)
	}
}

// MonthlyMultiplier is the number of contributions counted per month.
func (f Frequency) MonthlyMultiplier() int64 {
	switch f {
	case FrequencyDaily:
		return 30
	case FrequencyWeekly:
		return 4
	case FrequencyMonthly:
		return 1
	default:
		return 0
	}
}

// NextAfter returns the default next contribution date for a plan created at t.
func (f Frequency) NextAfter(t time.Time) time.Time {
	switch f {
	case FrequencyDaily:
		return t.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	default:
		return t.AddDate(0, 0, 30)
	}
}

// SavingsGoal is a named target funded from the owner's ledger balance.
type SavingsGoal struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	UserID            uuid.UUID       `json:"user_id" db:"user_id"`
	Title             string          `json:"title" db:"title"`
	TargetAmount      decimal.Decimal `json:"target_amount" db:"target_amount"`
	CurrentAmount     decimal.Decimal `json:"current_amount" db:"current_amount"`
	Deadline          time.Time       `json:"deadline" db:"deadline"`
	AutoSaveEnabled   bool            `json:"auto_save_enabled" db:"auto_save_enabled"`
	AutoSaveAmount    decimal.Decimal `json:"auto_save_amount" db:"auto_save_amount"`
	AutoSaveFrequency Frequency       `json:"auto_save_frequency" db:"auto_save_frequency"`
	SavingStreak      int             `json:"saving_streak" db:"saving_streak"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// GoalView is a goal with derived progress fields.
type GoalView struct {
	*SavingsGoal
	Progress  decimal.Decimal `json:"progress"`
	DaysLeft  int             `json:"days_left"`
	Completed bool            `json:"completed"`
}

// AutoSaveSettings updates a goal's advisory auto-save configuration.
type AutoSaveSettings struct {
	Enabled   bool
	Amount    decimal.Decimal
	Frequency Frequency
}

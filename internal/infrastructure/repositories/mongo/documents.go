package mongo

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
)

// Documents keep ids and amounts as strings so values survive the round trip
// without custom BSON codecs.

type userDoc struct {
	ID            string    `bson:"_id"`
	Username      string    `bson:"username"`
	PasswordHash  string    `bson:"password_hash"`
	PINHash       *string   `bson:"pin_hash,omitempty"`
	PINFailures   int       `bson:"pin_failures"`
	Balance       string    `bson:"balance"`
	LinkedAddress *string   `bson:"linked_address,omitempty"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

func newUserDoc(u *entities.User) userDoc {
	return userDoc{
		ID:            u.ID.String(),
		Username:      u.Username,
		PasswordHash:  u.PasswordHash,
		PINHash:       u.PINHash,
		PINFailures:   u.PINFailures,
		Balance:       u.Balance.String(),
		LinkedAddress: u.LinkedAddress,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func (d userDoc) entity() (*entities.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("decode user id: %w", err)
	}
	balance, err := decimal.NewFromString(d.Balance)
	if err != nil {
		return nil, fmt.Errorf("decode user balance: %w", err)
	}
	return &entities.User{
		ID:            id,
		Username:      d.Username,
		PasswordHash:  d.PasswordHash,
		PINHash:       d.PINHash,
		PINFailures:   d.PINFailures,
		Balance:       balance,
		LinkedAddress: d.LinkedAddress,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}, nil
}

type transactionDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Type      string    `bson:"type"`
	Amount    string    `bson:"amount"`
	Address   string    `bson:"address"`
	Status    string    `bson:"status"`
	CreatedAt time.Time `bson:"created_at"`
	Seq       int64     `bson:"seq"`
}

// seq orders entries created in the same instant; later inserts sort first.
func newTransactionDoc(tx *entities.Transaction, seq int64) transactionDoc {
	return transactionDoc{
		ID:        tx.ID.String(),
		UserID:    tx.UserID.String(),
		Type:      string(tx.Type),
		Amount:    tx.Amount.String(),
		Address:   tx.Address,
		Status:    string(tx.Status),
		CreatedAt: tx.CreatedAt,
		Seq:       seq,
	}
}

func (d transactionDoc) entity() (*entities.Transaction, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("decode transaction id: %w", err)
	}
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, fmt.Errorf("decode transaction user id: %w", err)
	}
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return nil, fmt.Errorf("decode transaction amount: %w", err)
	}
	return &entities.Transaction{
		ID:        id,
		UserID:    userID,
		Type:      entities.TransactionType(d.Type),
		Amount:    amount,
		Address:   d.Address,
		Status:    entities.TransactionStatus(d.Status),
		CreatedAt: d.CreatedAt,
	}, nil
}

type goalDoc struct {
	ID                string    `bson:"_id"`
	UserID            string    `bson:"user_id"`
	Title             string    `bson:"title"`
	TargetAmount      string    `bson:"target_amount"`
	CurrentAmount     string    `bson:"current_amount"`
	Deadline          time.Time `bson:"deadline"`
	AutoSaveEnabled   bool      `bson:"auto_save_enabled"`
	AutoSaveAmount    string    `bson:"auto_save_amount"`
	AutoSaveFrequency string    `bson:"auto_save_frequency"`
	SavingStreak      int       `bson:"saving_streak"`
	CreatedAt         time.Time `bson:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at"`
}

func newGoalDoc(g *entities.SavingsGoal) goalDoc {
	return goalDoc{
		ID:                g.ID.String(),
		UserID:            g.UserID.String(),
		Title:             g.Title,
		TargetAmount:      g.TargetAmount.String(),
		CurrentAmount:     g.CurrentAmount.String(),
		Deadline:          g.Deadline,
		AutoSaveEnabled:   g.AutoSaveEnabled,
		AutoSaveAmount:    g.AutoSaveAmount.String(),
		AutoSaveFrequency: string(g.AutoSaveFrequency),
		SavingStreak:      g.SavingStreak,
		CreatedAt:         g.CreatedAt,
		UpdatedAt:         g.UpdatedAt,
	}
}

func (d goalDoc) entity() (*entities.SavingsGoal, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("decode goal id: %w", err)
	}
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, fmt.Errorf("decode goal user id: %w", err)
	}
	amounts, err := parseDecimals(d.TargetAmount, d.CurrentAmount, d.AutoSaveAmount)
	if err != nil {
		return nil, fmt.Errorf("decode goal amounts: %w", err)
	}
	return &entities.SavingsGoal{
		ID:                id,
		UserID:            userID,
		Title:             d.Title,
		TargetAmount:      amounts[0],
		CurrentAmount:     amounts[1],
		Deadline:          d.Deadline,
		AutoSaveEnabled:   d.AutoSaveEnabled,
		AutoSaveAmount:    amounts[2],
		AutoSaveFrequency: entities.Frequency(d.AutoSaveFrequency),
		SavingStreak:      d.SavingStreak,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}, nil
}

type planDoc struct {
	ID               string    `bson:"_id"`
	UserID           string    `bson:"user_id"`
	Name             string    `bson:"name"`
	Amount           string    `bson:"amount"`
	Frequency        string    `bson:"frequency"`
	NextContribution time.Time `bson:"next_contribution"`
	AutoInvest       bool      `bson:"auto_invest"`
	CreatedAt        time.Time `bson:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at"`
}

func newPlanDoc(p *entities.InvestmentPlan) planDoc {
	return planDoc{
		ID:               p.ID.String(),
		UserID:           p.UserID.String(),
		Name:             p.Name,
		Amount:           p.Amount.String(),
		Frequency:        string(p.Frequency),
		NextContribution: p.NextContribution,
		AutoInvest:       p.AutoInvest,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func (d planDoc) entity() (*entities.InvestmentPlan, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("decode plan id: %w", err)
	}
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, fmt.Errorf("decode plan user id: %w", err)
	}
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return nil, fmt.Errorf("decode plan amount: %w", err)
	}
	return &entities.InvestmentPlan{
		ID:               id,
		UserID:           userID,
		Name:             d.Name,
		Amount:           amount,
		Frequency:        entities.Frequency(d.Frequency),
		NextContribution: d.NextContribution,
		AutoInvest:       d.AutoInvest,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}, nil
}

func parseDecimals(values ...string) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		if v == "" {
			out[i] = decimal.Zero
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

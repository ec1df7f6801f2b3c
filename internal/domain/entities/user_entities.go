package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is a ledger account holder. Usernames are stored lower-cased.
type User struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Username      string          `json:"username" db:"username"`
	PasswordHash  string          `json:"-" db:"password_hash"`
	PINHash       *string         `json:"-" db:"pin_hash"`
	PINFailures   int             `json:"-" db:"pin_failures"`
	Balance       decimal.Decimal `json:"balance" db:"balance"`
	LinkedAddress *string         `json:"linked_address,omitempty" db:"linked_address"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// HasPIN reports whether a PIN has been set.
func (u *User) HasPIN() bool {
	return u.PINHash != nil && *u.PINHash != ""
}

// UserInfo is the authenticated view of a user.
type UserInfo struct {
	ID            uuid.UUID       `json:"id"`
	Username      string          `json:"username"`
	Balance       decimal.Decimal `json:"balance"`
	LinkedAddress *string         `json:"linked_address,omitempty"`
	HasPIN        bool            `json:"has_pin"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (u *User) Info() *UserInfo {
	return &UserInfo{
		ID:            u.ID,
		Username:      u.Username,
		Balance:       u.Balance,
		LinkedAddress: u.LinkedAddress,
		HasPIN:        u.HasPIN(),
		CreatedAt:     u.CreatedAt,
	}
}

// PublicProfile is the unauthenticated lookup view. Only public fields are exposed.
type PublicProfile struct {
	Username      string           `json:"username"`
	LinkedAddress *string          `json:"linked_address,omitempty"`
	MemberSince   time.Time        `json:"member_since"`
	QRPayload     string           `json:"qr_payload,omitempty"`
	ChainBalance  *BalanceSnapshot `json:"chain_balance,omitempty"`
	BalanceError  string           `json:"balance_error,omitempty"`
}

// AccountStats summarises a user's ledger records.
type AccountStats struct {
	Balance          decimal.Decimal `json:"balance"`
	TransactionCount int             `json:"transaction_count"`
	GoalCount        int             `json:"goal_count"`
	PlanCount        int             `json:"plan_count"`
	TotalSaved       decimal.Decimal `json:"total_saved"`
}

// PINStatus describes a user's withdrawal PIN configuration.
type PINStatus struct {
	Enabled           bool `json:"enabled"`
	Locked            bool `json:"locked"`
	FailedAttempts    int  `json:"failed_attempts"`
	RemainingAttempts int  `json:"remaining_attempts"`
}

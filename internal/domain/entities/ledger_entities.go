package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a ledger entry
type TransactionType string

const (
	TransactionTypeSend    TransactionType = "send"
	TransactionTypeReceive TransactionType = "receive"
)

func (t TransactionType) Validate() error {
	switch t {
	case TransactionTypeSend, TransactionTypeReceive:
		return nil
	default:
		return fmt.Errorf("invalid transaction type: %s", t)
	}
}

// TransactionStatus of a ledger entry. Entries are recorded as completed.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
)

// Transaction is an immutable ledger entry.
type Transaction struct {
	ID        uuid.UUID         `json:"id" db:"id"`
	UserID    uuid.UUID         `json:"user_id" db:"user_id"`
	Type      TransactionType   `json:"type" db:"type"`
	Amount    decimal.Decimal   `json:"amount" db:"amount"`
	Address   string            `json:"address" db:"address"`
	Status    TransactionStatus `json:"status" db:"status"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
}

// TransactionFilter narrows a ledger history query.
type TransactionFilter struct {
	Type  *TransactionType
	Limit int
}

// ParseTransactionFilterType maps the history filter names onto transaction types.
// "all" and "" mean no filter; deposits are receives and withdrawals are sends.
func ParseTransactionFilterType(s string) (*TransactionType, error) {
	var t TransactionType
	switch s {
	case "", "all":
		return nil, nil
	case "send", "withdrawals", "withdrawal":
		t = TransactionTypeSend
	case "receive", "deposits", "deposit":
		t = TransactionTypeReceive
	default:
		return nil, fmt.Errorf("invalid transaction filter: %s", s)
	}
	return &t, nil
}

// LedgerEvent is published after a ledger mutation commits.
type LedgerEvent struct {
	Type       string          `json:"type"`
	UserID     uuid.UUID       `json:"user_id"`
	EntityID   uuid.UUID       `json:"entity_id"`
	Amount     decimal.Decimal `json:"amount"`
	Balance    decimal.Decimal `json:"balance"`
	OccurredAt time.Time       `json:"occurred_at"`
}

const (
	EventLedgerDeposit    = "ledger.deposit"
	EventLedgerWithdrawal = "ledger.withdrawal"
	EventGoalDeposit      = "goal.deposit"
	EventGoalWithdrawal   = "goal.withdrawal"
	EventGoalDeleted      = "goal.deleted"
)

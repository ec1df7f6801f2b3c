package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DriftEntry compares one user's tracked ledger balance with the USDT held at
// their linked address. Drift is ledger minus chain.
type DriftEntry struct {
	UserID        uuid.UUID       `json:"user_id"`
	Username      string          `json:"username"`
	Address       string          `json:"address"`
	LedgerBalance decimal.Decimal `json:"ledger_balance"`
	ChainBalance  decimal.Decimal `json:"chain_balance"`
	Drift         decimal.Decimal `json:"drift"`
}

// DriftReport is the read-only output of a reconciliation run.
type DriftReport struct {
	ID         uuid.UUID       `json:"id"`
	RunType    string          `json:"run_type"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Checked    int             `json:"checked"`
	Drifted    int             `json:"drifted"`
	Skipped    int             `json:"skipped"`
	Entries    []DriftEntry    `json:"entries"`
	TotalDrift decimal.Decimal `json:"total_drift"`
}

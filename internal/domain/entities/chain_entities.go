package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Leg is one side of a balance lookup. Amount is zero when Known is false,
// and callers must not treat an unknown leg as a real zero.
type Leg struct {
	Amount decimal.Decimal `json:"amount"`
	Known  bool            `json:"known"`
	Symbol string          `json:"symbol"`
}

// BalanceSnapshot is a derived on-chain balance. TotalUSD is only set when both legs are known.
type BalanceSnapshot struct {
	Address        string           `json:"address"`
	Native         Leg              `json:"native"`
	Token          Leg              `json:"token"`
	NativePriceUSD decimal.Decimal  `json:"native_price_usd"`
	TotalUSD       *decimal.Decimal `json:"total_usd"`
	Partial        bool             `json:"partial"`
	FetchedAt      time.Time        `json:"fetched_at"`
}

// ChainTransactionType is the direction of an on-chain transfer relative to the queried address.
type ChainTransactionType string

const (
	ChainTransactionSend    ChainTransactionType = "send"
	ChainTransactionReceive ChainTransactionType = "receive"
)

// ChainTransaction is an explorer record formatted for display.
type ChainTransaction struct {
	ID                  string               `json:"id"`
	Hash                string               `json:"transaction_hash"`
	Type                ChainTransactionType `json:"type"`
	Amount              decimal.Decimal      `json:"amount"`
	Currency            string               `json:"currency"`
	From                string               `json:"from_address"`
	To                  string               `json:"to_address"`
	CounterpartyAddress string               `json:"counterparty_address"`
	BlockNumber         uint64               `json:"block_number"`
	GasUsed             uint64               `json:"gas_used"`
	GasPrice            string               `json:"gas_price"`
	Status              string               `json:"status"`
	Timestamp           time.Time            `json:"timestamp"`
}

// ChainStatus reports node connectivity.
type ChainStatus struct {
	Chain        string `json:"chain"`
	Connected    bool   `json:"connected"`
	CurrentBlock uint64 `json:"current_block,omitempty"`
	Error        string `json:"error,omitempty"`
}

// WalletOverview pairs a balance snapshot with recent transfers. Either half
// may be missing when its upstream failed.
type WalletOverview struct {
	Address      string             `json:"address"`
	Balance      *BalanceSnapshot   `json:"balance"`
	BalanceError string             `json:"balance_error,omitempty"`
	Transactions []ChainTransaction `json:"transactions"`
}

// ExplorerTransaction is one block-explorer record before formatting. Native
// and token listings share the shape; token-only fields are empty for native
// transfers. Numeric fields keep the explorer's decimal-string encoding.
type ExplorerTransaction struct {
	BlockNumber     string
	TimeStamp       string
	Hash            string
	From            string
	To              string
	Value           string
	Gas             string
	GasPrice        string
	GasUsed         string
	IsError         string
	ContractAddress string
	TokenName       string
	TokenSymbol     string
	TokenDecimal    string
}

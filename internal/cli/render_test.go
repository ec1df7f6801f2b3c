package cli

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
)

const (
	self  = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	other = "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
)

func TestRenderBalance(t *testing.T) {
	total := decimal.RequireFromString("1634.5")
	out := RenderBalance(&entities.BalanceSnapshot{
		Token:    entities.Leg{Amount: decimal.RequireFromString("1234.5"), Known: true, Symbol: "USDT"},
		Native:   entities.Leg{Amount: decimal.RequireFromString("1.3333333333"), Known: true, Symbol: "BNB"},
		TotalUSD: &total,
	}, "")

	assert.Contains(t, out, "1234.50")
	assert.Contains(t, out, "1.333333")
	assert.Contains(t, out, "$1,634.50")
	assert.NotContains(t, out, "could not be read")
}

func TestRenderBalance_Partial(t *testing.T) {
	out := RenderBalance(&entities.BalanceSnapshot{
		Token:   entities.Leg{Amount: decimal.NewFromInt(5), Known: true, Symbol: "USDT"},
		Native:  entities.Leg{Symbol: "BNB"},
		Partial: true,
	}, "")

	assert.Contains(t, out, "5.00")
	assert.Contains(t, out, unavailable)
	assert.Contains(t, out, "could not be read")
}

func TestRenderBalance_Missing(t *testing.T) {
	assert.Contains(t, RenderBalance(nil, "chain node unreachable"), "chain node unreachable")
	assert.Contains(t, RenderBalance(nil, ""), "balance unavailable")
}

func TestRenderTransactions(t *testing.T) {
	assert.Contains(t, RenderTransactions(nil), "No transactions")

	ts := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	out := RenderTransactions([]entities.ChainTransaction{
		{Type: entities.ChainTransactionReceive, Amount: decimal.NewFromInt(100), Currency: "USDT", From: other, To: self, Status: "success", Timestamp: ts},
		{Type: entities.ChainTransactionSend, Amount: decimal.RequireFromString("0.5"), Currency: "BNB", From: self, To: other, Status: "failed", Timestamp: ts},
	})

	assert.Contains(t, out, "2024-05-01 12:30")
	assert.Contains(t, out, "100 USDT")
	assert.Contains(t, out, "0.5 BNB")
	assert.Contains(t, out, "from 0xfB691609...c5d359")
	assert.Contains(t, out, "to   0xfB691609...c5d359")
	assert.Contains(t, out, "failed")
}

func TestRenderWallet(t *testing.T) {
	out := RenderWallet("@hashyz", &entities.WalletOverview{Address: self, BalanceError: "balance unavailable"})
	assert.Contains(t, out, "@hashyz")
	assert.Contains(t, out, self)
	assert.Contains(t, out, "No transactions")
}

package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
)

func TestFormatUSD(t *testing.T) {
	cases := map[string]string{
		"0":           "$0.00",
		"5":           "$5.00",
		"1234.5":      "$1,234.50",
		"1234567.891": "$1,234,567.89",
		"-42.1":       "-$42.10",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatUSD(decimal.RequireFromString(in)), in)
	}
}

func TestFilenames(t *testing.T) {
	at := time.Date(2026, 3, 7, 15, 4, 0, 0, time.UTC)
	assert.Equal(t, "transactions_20260307.csv", LedgerFilename(at))
	assert.Equal(t, "chain_transactions_20260307.csv", ChainFilename(at))
}

func TestWriteLedger(t *testing.T) {
	userID := uuid.New()
	base := time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC)
	txs := []*entities.Transaction{
		{ID: uuid.New(), UserID: userID, Type: entities.TransactionTypeSend, Amount: decimal.RequireFromString("1234.5"),
			Address: "0x8894E0a0c962CB723c1976a4421c95949bE2D4E3", Status: entities.TransactionStatusCompleted, CreatedAt: base.Add(time.Hour)},
		{ID: uuid.New(), UserID: userID, Type: entities.TransactionTypeReceive, Amount: decimal.NewFromInt(10),
			Address: "0x55d398326f99059fF775485246999027B3197955", Status: entities.TransactionStatusCompleted, CreatedAt: base},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLedger(&buf, txs))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"Date", "Type", "Amount", "Address", "Status"}, rows[0])
	assert.Equal(t, []string{"2026-01-02 10:30", "Send", "$1,234.50", "0x8894E0a0...E2D4E3", "Completed"}, rows[1])
	assert.Equal(t, []string{"2026-01-02 09:30", "Receive", "$10.00", "0x55d39832...197955", "Completed"}, rows[2])
}

func TestWriteChain(t *testing.T) {
	txs := []entities.ChainTransaction{
		{Hash: "0xaaa", Type: entities.ChainTransactionReceive, Amount: decimal.RequireFromString("1.5"), Currency: "BNB",
			CounterpartyAddress: "0x8894E0a0c962CB723c1976a4421c95949bE2D4E3", Status: "success", Timestamp: time.Unix(1700000100, 0)},
		{Hash: "0xbbb", Type: entities.ChainTransactionSend, Amount: decimal.NewFromInt(5), Currency: "USDT",
			CounterpartyAddress: "0x55d398326f99059fF775485246999027B3197955", Status: "failed", Timestamp: time.Unix(1700000000, 0)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteChain(&buf, txs))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Transaction Hash", rows[0][6])
	assert.Equal(t, []string{"Receive", "1.5", "Success", "BNB", "0xaaa"}, []string{rows[1][1], rows[1][2], rows[1][4], rows[1][5], rows[1][6]})
	assert.Equal(t, []string{"Send", "5", "Failed", "USDT", "0xbbb"}, []string{rows[2][1], rows[2][2], rows[2][4], rows[2][5], rows[2][6]})
}

func TestWriters_Concurrent(t *testing.T) {
	ledger := []*entities.Transaction{
		{ID: uuid.New(), Type: entities.TransactionTypeReceive, Amount: decimal.NewFromInt(10),
			Status: entities.TransactionStatusCompleted, CreatedAt: time.Unix(1700000000, 0)},
	}
	chain := []entities.ChainTransaction{
		{Hash: "0xccc", Type: entities.ChainTransactionSend, Amount: decimal.NewFromInt(1), Currency: "USDT",
			Status: "success", Timestamp: time.Unix(1700000000, 0)},
	}

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				var lb, cb bytes.Buffer
				if err := WriteLedger(&lb, ledger); err != nil {
					errs <- err
					return
				}
				if err := WriteChain(&cb, chain); err != nil {
					errs <- err
					return
				}
				if !strings.Contains(lb.String(), ",Receive,") || !strings.Contains(cb.String(), ",Send,") {
					errs <- assert.AnError
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

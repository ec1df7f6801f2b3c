// Package export renders transaction listings as CSV downloads.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
	"github.com/usdt-vault/vault_service/pkg/security"
)

const (
	ContentType = "text/csv"
	dateLayout  = "2006-01-02 15:04"
)

var (
	ledgerHeader = []string{"Date", "Type", "Amount", "Address", "Status"}
	chainHeader  = []string{"Date", "Type", "Amount", "Address", "Status", "Currency", "Transaction Hash"}

	printer = message.NewPrinter(language.English)
)

// newTitleCaser returns a fresh caser; a cases.Caser is not safe for concurrent use.
func newTitleCaser() cases.Caser {
	return cases.Title(language.English)
}

// LedgerFilename is the download name for a ledger export produced at t.
func LedgerFilename(t time.Time) string {
	return "transactions_" + t.Format("20060102") + ".csv"
}

// ChainFilename is the download name for an on-chain export produced at t.
func ChainFilename(t time.Time) string {
	return "chain_transactions_" + t.Format("20060102") + ".csv"
}

// WriteLedger writes one row per ledger entry in the order given.
func WriteLedger(w io.Writer, txs []*entities.Transaction) error {
	titleCaser := newTitleCaser()
	cw := csv.NewWriter(w)
	if err := cw.Write(ledgerHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, tx := range txs {
		row := []string{
			tx.CreatedAt.UTC().Format(dateLayout),
			titleCaser.String(string(tx.Type)),
			FormatUSD(tx.Amount),
			security.MaskAddress(tx.Address),
			titleCaser.String(string(tx.Status)),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteChain writes one row per on-chain transfer in the order given. Amounts
// are in the transfer's own currency.
func WriteChain(w io.Writer, txs []entities.ChainTransaction) error {
	titleCaser := newTitleCaser()
	cw := csv.NewWriter(w)
	if err := cw.Write(chainHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, tx := range txs {
		row := []string{
			tx.Timestamp.UTC().Format(dateLayout),
			titleCaser.String(string(tx.Type)),
			tx.Amount.String(),
			security.MaskAddress(tx.CounterpartyAddress),
			titleCaser.String(tx.Status),
			tx.Currency,
			tx.Hash,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatUSD renders an amount as $1,234.56.
func FormatUSD(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	fixed := d.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return sign + "$" + fixed
	}
	return sign + "$" + printer.Sprintf("%d", n) + "." + frac
}

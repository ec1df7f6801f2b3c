// Package cli renders the standalone wallet viewer for the terminal.
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
	"github.com/usdt-vault/vault_service/internal/domain/services/export"
	"github.com/usdt-vault/vault_service/pkg/security"
)

const (
	titleWidth  = 60
	unavailable = "unavailable"
	timeLayout  = "2006-01-02 15:04"
)

var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorText).Align(lipgloss.Center)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	labelStyle   = lipgloss.NewStyle().Foreground(ColorTextMuted)
	valueStyle   = lipgloss.NewStyle().Foreground(ColorText)
	receiveStyle = lipgloss.NewStyle().Foreground(ColorGreen)
	sendStyle    = lipgloss.NewStyle().Foreground(ColorRed)
	warnStyle    = lipgloss.NewStyle().Foreground(ColorOrange)
	dimStyle     = lipgloss.NewStyle().Foreground(ColorTextDim)
)

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(titleWidth).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderWallet renders the single-wallet view: header, balances and recent transfers.
func RenderWallet(username string, overview *entities.WalletOverview) string {
	var b strings.Builder

	title := "Wallet"
	if username != "" {
		title = username
	}
	b.WriteString(RenderTitle(title))
	b.WriteString("\n")
	b.WriteString(field("Address", overview.Address))
	b.WriteString("\n")

	b.WriteString(RenderBalance(overview.Balance, overview.BalanceError))
	b.WriteString("\n")
	b.WriteString(RenderTransactions(overview.Transactions))
	return b.String()
}

// RenderBalance renders both legs and the USD total. Unknown legs print as unavailable.
func RenderBalance(snapshot *entities.BalanceSnapshot, balanceErr string) string {
	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(headerStyle.Render("Balance"))
	b.WriteString("\n")

	if snapshot == nil {
		msg := "balance unavailable"
		if balanceErr != "" {
			msg = balanceErr
		}
		b.WriteString("  ")
		b.WriteString(warnStyle.Render(msg))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(field(legLabel(snapshot.Token, "USDT"), legValue(snapshot.Token)))
	b.WriteString(field(legLabel(snapshot.Native, "BNB"), legValue(snapshot.Native)))

	total := unavailable
	if snapshot.TotalUSD != nil {
		total = export.FormatUSD(*snapshot.TotalUSD)
	}
	b.WriteString(field("Total (USD)", total))
	if snapshot.Partial {
		b.WriteString("  ")
		b.WriteString(warnStyle.Render("some balances could not be read"))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderTransactions renders the transfer list newest first, as given.
func RenderTransactions(txs []entities.ChainTransaction) string {
	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(headerStyle.Render("Recent transactions"))
	b.WriteString("\n")

	if len(txs) == 0 {
		b.WriteString("  ")
		b.WriteString(dimStyle.Render("No transactions"))
		b.WriteString("\n")
		return b.String()
	}

	for _, tx := range txs {
		direction, counterparty, style := "IN ", "from "+security.MaskAddress(tx.From), receiveStyle
		if tx.Type == entities.ChainTransactionSend {
			direction, counterparty, style = "OUT", "to   "+security.MaskAddress(tx.To), sendStyle
		}
		line := fmt.Sprintf("  %s  %s  %s  %s",
			dimStyle.Render(tx.Timestamp.UTC().Format(timeLayout)),
			style.Render(direction),
			valueStyle.Render(fmt.Sprintf("%s %s", tx.Amount.String(), tx.Currency)),
			labelStyle.Render(counterparty),
		)
		b.WriteString(line)
		if tx.Status != "" && !strings.EqualFold(tx.Status, "success") {
			b.WriteString("  ")
			b.WriteString(warnStyle.Render(tx.Status))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func field(label, value string) string {
	return fmt.Sprintf("  %s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", label)), valueStyle.Render(value))
}

func legLabel(leg entities.Leg, fallback string) string {
	if leg.Symbol != "" {
		return leg.Symbol
	}
	return fallback
}

func legValue(leg entities.Leg) string {
	if !leg.Known {
		return unavailable
	}
	return leg.Amount.StringFixed(decimalPlaces(leg.Amount))
}

// decimalPlaces keeps at least two places and at most six for display.
func decimalPlaces(d decimal.Decimal) int32 {
	exp := -d.Exponent()
	switch {
	case exp < 2:
		return 2
	case exp > 6:
		return 6
	default:
		return exp
	}
}

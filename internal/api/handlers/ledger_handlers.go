package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
	"github.com/usdt-vault/vault_service/internal/domain/services/export"
	"github.com/usdt-vault/vault_service/internal/domain/services/ledger"
)

const ledgerExportLimit = 1000

// LedgerHandlers records deposits and withdrawals against the tracked balance
type LedgerHandlers struct {
	ledger *ledger.Service
	logger *zap.Logger
	now    func() time.Time
}

func NewLedgerHandlers(ledger *ledger.Service, logger *zap.Logger) *LedgerHandlers {
	return &LedgerHandlers{ledger: ledger, logger: logger, now: time.Now}
}

type DepositRequest struct {
	Amount      decimal.Decimal `json:"amount" swaggertype:"string"`
	FromAddress string          `json:"from_address" binding:"omitempty,bscaddr"`
}

type WithdrawRequest struct {
	Amount    decimal.Decimal `json:"amount" swaggertype:"string"`
	ToAddress string          `json:"to_address" binding:"required,bscaddr"`
	PIN       string          `json:"pin"`
}

func (h *LedgerHandlers) filter(c *gin.Context, defaultLimit int) (entities.TransactionFilter, bool) {
	txType, err := entities.ParseTransactionFilterType(c.Query("type"))
	if err != nil {
		SendBadRequest(c, ErrCodeInvalidFilter, "type must be one of all, send, receive")
		return entities.TransactionFilter{}, false
	}
	return entities.TransactionFilter{Type: txType, Limit: parseIntParam(c, "limit", defaultLimit)}, true
}

// ListTransactions handles GET /api/v1/ledger/transactions
// @Summary Ledger history, newest first
// @Tags ledger
// @Security BearerAuth
// @Produce json
// @Param type query string false "all, send or receive"
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} entities.ErrorResponse
// @Router /api/v1/ledger/transactions [get]
func (h *LedgerHandlers) ListTransactions(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	filter, ok := h.filter(c, ledger.DefaultHistoryLimit)
	if !ok {
		return
	}
	txs, err := h.ledger.ListTransactions(c.Request.Context(), userID, filter)
	if err != nil {
		SendServiceError(c, h.logger, err, "list transactions")
		return
	}
	SendSuccess(c, gin.H{"transactions": txs, "count": len(txs)})
}

// Deposit handles POST /api/v1/ledger/deposits
// @Summary Record a deposit
// @Tags ledger
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body DepositRequest true "Deposit"
// @Success 201 {object} entities.Transaction
// @Failure 400 {object} entities.ErrorResponse
// @Router /api/v1/ledger/deposits [post]
func (h *LedgerHandlers) Deposit(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBindError(c, err)
		return
	}
	tx, err := h.ledger.Deposit(c.Request.Context(), userID, req.Amount, req.FromAddress)
	if err != nil {
		SendServiceError(c, h.logger, err, "deposit")
		return
	}
	SendCreated(c, tx)
}

// Withdraw handles POST /api/v1/ledger/withdrawals
// @Summary Record a PIN-protected withdrawal
// @Tags ledger
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body WithdrawRequest true "Withdrawal"
// @Success 201 {object} entities.Transaction
// @Failure 400 {object} entities.ErrorResponse
// @Failure 422 {object} entities.ErrorResponse
// @Failure 423 {object} entities.ErrorResponse
// @Router /api/v1/ledger/withdrawals [post]
func (h *LedgerHandlers) Withdraw(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBindError(c, err)
		return
	}
	tx, err := h.ledger.Withdraw(c.Request.Context(), userID, req.Amount, req.ToAddress, req.PIN)
	if err != nil {
		SendServiceError(c, h.logger, err, "withdraw")
		return
	}
	SendCreated(c, tx)
}

// Export handles GET /api/v1/ledger/transactions/export
// @Summary Ledger history as CSV
// @Tags ledger
// @Security BearerAuth
// @Produce text/csv
// @Param type query string false "all, send or receive"
// @Success 200 {file} file
// @Router /api/v1/ledger/transactions/export [get]
func (h *LedgerHandlers) Export(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	filter, ok := h.filter(c, ledgerExportLimit)
	if !ok {
		return
	}
	txs, err := h.ledger.ListTransactions(c.Request.Context(), userID, filter)
	if err != nil {
		SendServiceError(c, h.logger, err, "export transactions")
		return
	}

	var buf bytes.Buffer
	if err := export.WriteLedger(&buf, txs); err != nil {
		SendServiceError(c, h.logger, err, "export transactions")
		return
	}
	sendCSV(c, export.LedgerFilename(h.now()), buf.Bytes())
}

func sendCSV(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, export.ContentType, data)
}

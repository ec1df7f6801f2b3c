package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
	"github.com/usdt-vault/vault_service/internal/domain/services/export"
	"github.com/usdt-vault/vault_service/internal/domain/services/wallet"
)

const chainHistoryLimit = 50

// WalletViewer reads public chain data for any address.
type WalletViewer interface {
	Balance(ctx context.Context, address string) (*entities.BalanceSnapshot, error)
	Transactions(ctx context.Context, address string, limit int) ([]entities.ChainTransaction, error)
	Status(ctx context.Context) *entities.ChainStatus
}

// WalletHandlers serves the public chain views
type WalletHandlers struct {
	wallets WalletViewer
	logger  *zap.Logger
	now     func() time.Time
}

func NewWalletHandlers(wallets WalletViewer, logger *zap.Logger) *WalletHandlers {
	return &WalletHandlers{wallets: wallets, logger: logger, now: time.Now}
}

// Balance handles GET /api/v1/wallets/:address/balance
// @Summary Live balance of a BSC address
// @Tags wallets
// @Produce json
// @Param address path string true "BSC address"
// @Success 200 {object} entities.BalanceSnapshot
// @Failure 400 {object} entities.ErrorResponse
// @Failure 503 {object} entities.ErrorResponse
// @Router /api/v1/wallets/{address}/balance [get]
func (h *WalletHandlers) Balance(c *gin.Context) {
	snapshot, err := h.wallets.Balance(c.Request.Context(), c.Param("address"))
	if err != nil {
		if errors.Is(err, wallet.ErrBalanceUnavailable) {
			SendServiceUnavailable(c, ErrCodeChainUnavailable, "Unable to read balance from chain")
			return
		}
		SendServiceError(c, h.logger, err, "wallet balance")
		return
	}
	SendSuccess(c, snapshot)
}

// Transactions handles GET /api/v1/wallets/:address/transactions
// @Summary Recent native and USDT transfers, newest first
// @Tags wallets
// @Produce json
// @Param address path string true "BSC address"
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} entities.ErrorResponse
// @Router /api/v1/wallets/{address}/transactions [get]
func (h *WalletHandlers) Transactions(c *gin.Context) {
	txs, err := h.wallets.Transactions(c.Request.Context(), c.Param("address"), parseIntParam(c, "limit", chainHistoryLimit))
	if err != nil {
		SendServiceError(c, h.logger, err, "wallet transactions")
		return
	}
	SendSuccess(c, gin.H{"transactions": txs, "count": len(txs)})
}

// Export handles GET /api/v1/wallets/:address/transactions/export
// @Summary Chain history as CSV
// @Tags wallets
// @Produce text/csv
// @Param address path string true "BSC address"
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {file} file
// @Router /api/v1/wallets/{address}/transactions/export [get]
func (h *WalletHandlers) Export(c *gin.Context) {
	txs, err := h.wallets.Transactions(c.Request.Context(), c.Param("address"), parseIntParam(c, "limit", chainHistoryLimit))
	if err != nil {
		SendServiceError(c, h.logger, err, "export wallet transactions")
		return
	}
	var buf bytes.Buffer
	if err := export.WriteChain(&buf, txs); err != nil {
		SendServiceError(c, h.logger, err, "export wallet transactions")
		return
	}
	sendCSV(c, export.ChainFilename(h.now()), buf.Bytes())
}

// ChainStatus handles GET /api/v1/chain/status
// @Summary Node connectivity and current block
// @Tags wallets
// @Produce json
// @Success 200 {object} entities.ChainStatus
// @Router /api/v1/chain/status [get]
func (h *WalletHandlers) ChainStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.wallets.Status(c.Request.Context()))
}

package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/domain/services/account"
)

// AccountHandlers serves the caller's profile, statistics and linked wallet,
// plus the public profile lookup.
type AccountHandlers struct {
	accounts *account.Service
	logger   *zap.Logger
}

func NewAccountHandlers(accounts *account.Service, logger *zap.Logger) *AccountHandlers {
	return &AccountHandlers{accounts: accounts, logger: logger}
}

type LinkWalletRequest struct {
	Address string `json:"address" binding:"required,bscaddr"`
}

// Me handles GET /api/v1/me
// @Summary Current user
// @Tags account
// @Security BearerAuth
// @Produce json
// @Success 200 {object} entities.UserInfo
// @Router /api/v1/me [get]
func (h *AccountHandlers) Me(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	info, err := h.accounts.Me(c.Request.Context(), userID)
	if err != nil {
		SendServiceError(c, h.logger, err, "me")
		return
	}
	SendSuccess(c, info)
}

// Stats handles GET /api/v1/me/stats
// @Summary Account statistics
// @Tags account
// @Security BearerAuth
// @Produce json
// @Success 200 {object} entities.AccountStats
// @Router /api/v1/me/stats [get]
func (h *AccountHandlers) Stats(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	stats, err := h.accounts.Stats(c.Request.Context(), userID)
	if err != nil {
		SendServiceError(c, h.logger, err, "stats")
		return
	}
	SendSuccess(c, stats)
}

// LinkWallet handles PUT /api/v1/me/wallet
// @Summary Link a BSC address
// @Tags account
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body LinkWalletRequest true "Address"
// @Success 200 {object} entities.UserInfo
// @Failure 400 {object} entities.ErrorResponse
// @Router /api/v1/me/wallet [put]
func (h *AccountHandlers) LinkWallet(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req LinkWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBindError(c, err)
		return
	}
	info, err := h.accounts.LinkWallet(c.Request.Context(), userID, req.Address)
	if err != nil {
		SendServiceError(c, h.logger, err, "link wallet")
		return
	}
	SendSuccess(c, info)
}

// UnlinkWallet handles DELETE /api/v1/me/wallet
// @Summary Unlink the BSC address
// @Tags account
// @Security BearerAuth
// @Produce json
// @Success 200 {object} entities.UserInfo
// @Router /api/v1/me/wallet [delete]
func (h *AccountHandlers) UnlinkWallet(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	info, err := h.accounts.UnlinkWallet(c.Request.Context(), userID)
	if err != nil {
		SendServiceError(c, h.logger, err, "unlink wallet")
		return
	}
	SendSuccess(c, info)
}

// PublicProfile handles GET /api/v1/profiles?user=<username>
// @Summary Public profile
// @Tags profiles
// @Produce json
// @Param user query string true "Username"
// @Success 200 {object} entities.PublicProfile
// @Failure 404 {object} entities.ErrorResponse
// @Router /api/v1/profiles [get]
func (h *AccountHandlers) PublicProfile(c *gin.Context) {
	username := c.Query("user")
	if username == "" {
		SendInvalidField(c, "user", "user query parameter is required")
		return
	}
	profile, err := h.accounts.PublicProfile(c.Request.Context(), username)
	if err != nil {
		SendServiceError(c, h.logger, err, "public profile")
		return
	}
	SendSuccess(c, profile)
}

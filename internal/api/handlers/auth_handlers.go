package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
	"github.com/usdt-vault/vault_service/internal/domain/services/account"
)

// AuthHandlers manages registration and token issuance
type AuthHandlers struct {
	accounts *account.Service
	logger   *zap.Logger
}

func NewAuthHandlers(accounts *account.Service, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{accounts: accounts, logger: logger}
}

// Register handles POST /api/v1/auth/register
// @Summary Register a user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body entities.RegisterRequest true "Registration"
// @Success 201 {object} entities.AuthResponse
// @Failure 400 {object} entities.ErrorResponse
// @Failure 409 {object} entities.ErrorResponse
// @Router /api/v1/auth/register [post]
func (h *AuthHandlers) Register(c *gin.Context) {
	var req entities.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBindError(c, err)
		return
	}

	resp, err := h.accounts.Register(c.Request.Context(), &req)
	if err != nil {
		SendServiceError(c, h.logger, err, "register")
		return
	}
	SendCreated(c, resp)
}

// Login handles POST /api/v1/auth/login
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body entities.LoginRequest true "Credentials"
// @Success 200 {object} entities.AuthResponse
// @Failure 401 {object} entities.ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandlers) Login(c *gin.Context) {
	var req entities.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBindError(c, err)
		return
	}

	resp, err := h.accounts.Login(c.Request.Context(), &req)
	if err != nil {
		SendServiceError(c, h.logger, err, "login")
		return
	}
	SendSuccess(c, resp)
}

// Refresh handles POST /api/v1/auth/refresh
// @Summary Exchange a refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body entities.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} auth.TokenPair
// @Failure 401 {object} entities.ErrorResponse
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandlers) Refresh(c *gin.Context) {
	var req entities.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBindError(c, err)
		return
	}

	pair, err := h.accounts.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		SendServiceError(c, h.logger, err, "refresh")
		return
	}
	SendSuccess(c, pair)
}

// Logout handles POST /api/v1/auth/logout
// @Summary Revoke the current access token
// @Tags auth
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Router /api/v1/auth/logout [post]
func (h *AuthHandlers) Logout(c *gin.Context) {
	token := c.GetString(ContextToken)
	if err := h.accounts.Logout(c.Request.Context(), token, getClaims(c)); err != nil {
		SendServiceError(c, h.logger, err, "logout")
		return
	}
	SendSuccess(c, gin.H{"message": "Logged out"})
}

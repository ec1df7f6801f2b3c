package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/domain/services/pin"
)

// PINHandlers manages the withdrawal PIN
type PINHandlers struct {
	pins   *pin.Service
	logger *zap.Logger
}

func NewPINHandlers(pins *pin.Service, logger *zap.Logger) *PINHandlers {
	return &PINHandlers{pins: pins, logger: logger}
}

type SetPINRequest struct {
	PIN        string `json:"pin" binding:"required"`
	ConfirmPIN string `json:"confirm_pin" binding:"required"`
}

type ChangePINRequest struct {
	CurrentPIN string `json:"current_pin" binding:"required"`
	NewPIN     string `json:"new_pin" binding:"required"`
	ConfirmPIN string `json:"confirm_pin" binding:"required"`
}

type VerifyPINRequest struct {
	PIN string `json:"pin" binding:"required"`
}

// Status handles GET /api/v1/me/pin
// @Summary PIN status
// @Tags pin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} entities.PINStatus
// @Router /api/v1/me/pin [get]
func (h *PINHandlers) Status(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	status, err := h.pins.GetStatus(c.Request.Context(), userID)
	if err != nil {
		SendServiceError(c, h.logger, err, "pin status")
		return
	}
	SendSuccess(c, status)
}

// Set handles POST /api/v1/me/pin
// @Summary Set the withdrawal PIN
// @Tags pin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body SetPINRequest true "PIN"
// @Success 201 {object} entities.PINStatus
// @Failure 409 {object} entities.ErrorResponse
// @Router /api/v1/me/pin [post]
func (h *PINHandlers) Set(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req SetPINRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBindError(c, err)
		return
	}
	status, err := h.pins.SetPIN(c.Request.Context(), userID, req.PIN, req.ConfirmPIN)
	if err != nil {
		SendServiceError(c, h.logger, err, "set pin")
		return
	}
	SendCreated(c, status)
}

// Change handles PUT /api/v1/me/pin
// @Summary Change the withdrawal PIN
// @Tags pin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body ChangePINRequest true "PINs"
// @Success 200 {object} entities.PINStatus
// @Failure 423 {object} entities.ErrorResponse
// @Router /api/v1/me/pin [put]
func (h *PINHandlers) Change(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req ChangePINRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBindError(c, err)
		return
	}
	status, err := h.pins.ChangePIN(c.Request.Context(), userID, req.CurrentPIN, req.NewPIN, req.ConfirmPIN)
	if err != nil {
		SendServiceError(c, h.logger, err, "change pin")
		return
	}
	SendSuccess(c, status)
}

// Verify handles POST /api/v1/me/pin/verify
// @Summary Verify the withdrawal PIN
// @Tags pin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body VerifyPINRequest true "PIN"
// @Success 200 {object} map[string]bool
// @Failure 423 {object} entities.ErrorResponse
// @Router /api/v1/me/pin/verify [post]
func (h *PINHandlers) Verify(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req VerifyPINRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBindError(c, err)
		return
	}
	if err := h.pins.Verify(c.Request.Context(), userID, req.PIN); err != nil {
		SendServiceError(c, h.logger, err, "verify pin")
		return
	}
	SendSuccess(c, gin.H{"valid": true})
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
	"github.com/usdt-vault/vault_service/internal/domain/services/investing"
)

// InvestingHandlers manages recurring investment plans
type InvestingHandlers struct {
	plans  *investing.Service
	logger *zap.Logger
}

func NewInvestingHandlers(plans *investing.Service, logger *zap.Logger) *InvestingHandlers {
	return &InvestingHandlers{plans: plans, logger: logger}
}

type CreatePlanRequest struct {
	Name             string             `json:"name" binding:"required,max=100"`
	Amount           decimal.Decimal    `json:"amount" swaggertype:"string"`
	Frequency        entities.Frequency `json:"frequency" binding:"required"`
	NextContribution *time.Time         `json:"next_contribution"`
	AutoInvest       *bool              `json:"auto_invest"`
}

type UpdatePlanAmountRequest struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"string"`
}

// ListPlans handles GET /api/v1/plans
// @Summary Investment plans with the monthly estimate
// @Tags plans
// @Security BearerAuth
// @Produce json
// @Success 200 {object} entities.PlanSummary
// @Router /api/v1/plans [get]
func (h *InvestingHandlers) ListPlans(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	summary, err := h.plans.ListPlans(c.Request.Context(), userID)
	if err != nil {
		SendServiceError(c, h.logger, err, "list plans")
		return
	}
	SendSuccess(c, summary)
}

// CreatePlan handles POST /api/v1/plans
// @Summary Create an investment plan
// @Tags plans
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreatePlanRequest true "Plan"
// @Success 201 {object} entities.InvestmentPlan
// @Failure 400 {object} entities.ErrorResponse
// @Router /api/v1/plans [post]
func (h *InvestingHandlers) CreatePlan(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBindError(c, err)
		return
	}

	input := investing.CreatePlanInput{
		Name:       req.Name,
		Amount:     req.Amount,
		Frequency:  req.Frequency,
		AutoInvest: true,
	}
	if req.NextContribution != nil {
		input.NextContribution = *req.NextContribution
	}
	if req.AutoInvest != nil {
		input.AutoInvest = *req.AutoInvest
	}

	plan, err := h.plans.CreatePlan(c.Request.Context(), userID, input)
	if err != nil {
		SendServiceError(c, h.logger, err, "create plan")
		return
	}
	SendCreated(c, plan)
}

// Pause handles POST /api/v1/plans/:id/pause
// @Summary Pause auto-invest
// @Tags plans
// @Security BearerAuth
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} entities.InvestmentPlan
// @Router /api/v1/plans/{id}/pause [post]
func (h *InvestingHandlers) Pause(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	planID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	plan, err := h.plans.Pause(c.Request.Context(), userID, planID)
	if err != nil {
		SendServiceError(c, h.logger, err, "pause plan")
		return
	}
	SendSuccess(c, plan)
}

// Resume handles POST /api/v1/plans/:id/resume
// @Summary Resume auto-invest
// @Tags plans
// @Security BearerAuth
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} entities.InvestmentPlan
// @Router /api/v1/plans/{id}/resume [post]
func (h *InvestingHandlers) Resume(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	planID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	plan, err := h.plans.Resume(c.Request.Context(), userID, planID)
	if err != nil {
		SendServiceError(c, h.logger, err, "resume plan")
		return
	}
	SendSuccess(c, plan)
}

// UpdateAmount handles PUT /api/v1/plans/:id/amount
// @Summary Change the contribution amount
// @Tags plans
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param request body UpdatePlanAmountRequest true "Amount"
// @Success 200 {object} entities.InvestmentPlan
// @Router /api/v1/plans/{id}/amount [put]
func (h *InvestingHandlers) UpdateAmount(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	planID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req UpdatePlanAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBindError(c, err)
		return
	}
	plan, err := h.plans.UpdateAmount(c.Request.Context(), userID, planID, req.Amount)
	if err != nil {
		SendServiceError(c, h.logger, err, "update plan amount")
		return
	}
	SendSuccess(c, plan)
}

// DeletePlan handles DELETE /api/v1/plans/:id
// @Summary Delete an investment plan
// @Tags plans
// @Security BearerAuth
// @Param id path string true "Plan ID"
// @Success 204
// @Router /api/v1/plans/{id} [delete]
func (h *InvestingHandlers) DeletePlan(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	planID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.plans.DeletePlan(c.Request.Context(), userID, planID); err != nil {
		SendServiceError(c, h.logger, err, "delete plan")
		return
	}
	c.Status(http.StatusNoContent)
}

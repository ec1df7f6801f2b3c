package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
	"github.com/usdt-vault/vault_service/internal/domain/services/savings"
)

// SavingsHandlers manages savings goals
type SavingsHandlers struct {
	savings *savings.Service
	logger  *zap.Logger
}

func NewSavingsHandlers(savings *savings.Service, logger *zap.Logger) *SavingsHandlers {
	return &SavingsHandlers{savings: savings, logger: logger}
}

type CreateGoalRequest struct {
	Title             string             `json:"title" binding:"required,max=100"`
	TargetAmount      decimal.Decimal    `json:"target_amount" swaggertype:"string"`
	Deadline          string             `json:"deadline" binding:"required" example:"2025-12-31"`
	AutoSaveEnabled   bool               `json:"auto_save_enabled"`
	AutoSaveAmount    decimal.Decimal    `json:"auto_save_amount" swaggertype:"string"`
	AutoSaveFrequency entities.Frequency `json:"auto_save_frequency"`
}

type GoalAmountRequest struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"string"`
}

type AutoSaveRequest struct {
	Enabled   bool               `json:"enabled"`
	Amount    decimal.Decimal    `json:"amount" swaggertype:"string"`
	Frequency entities.Frequency `json:"frequency"`
}

// parseDeadline accepts a calendar date or an RFC3339 timestamp.
func parseDeadline(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// ListGoals handles GET /api/v1/goals
// @Summary Savings goals with progress
// @Tags goals
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/goals [get]
func (h *SavingsHandlers) ListGoals(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	goals, err := h.savings.ListGoals(c.Request.Context(), userID)
	if err != nil {
		SendServiceError(c, h.logger, err, "list goals")
		return
	}
	SendSuccess(c, gin.H{"goals": goals, "count": len(goals)})
}

// CreateGoal handles POST /api/v1/goals
// @Summary Create a savings goal
// @Tags goals
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateGoalRequest true "Goal"
// @Success 201 {object} entities.GoalView
// @Failure 400 {object} entities.ErrorResponse
// @Router /api/v1/goals [post]
func (h *SavingsHandlers) CreateGoal(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBindError(c, err)
		return
	}
	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		SendInvalidField(c, "deadline", "deadline must be YYYY-MM-DD or RFC3339")
		return
	}

	goal, err := h.savings.CreateGoal(c.Request.Context(), userID, savings.CreateGoalInput{
		Title:             req.Title,
		TargetAmount:      req.TargetAmount,
		Deadline:          deadline,
		AutoSaveEnabled:   req.AutoSaveEnabled,
		AutoSaveAmount:    req.AutoSaveAmount,
		AutoSaveFrequency: req.AutoSaveFrequency,
	})
	if err != nil {
		SendServiceError(c, h.logger, err, "create goal")
		return
	}
	SendCreated(c, goal)
}

// Deposit handles POST /api/v1/goals/:id/deposit
// @Summary Move ledger balance into a goal
// @Tags goals
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Goal ID"
// @Param request body GoalAmountRequest true "Amount"
// @Success 200 {object} entities.GoalView
// @Failure 422 {object} entities.ErrorResponse
// @Router /api/v1/goals/{id}/deposit [post]
func (h *SavingsHandlers) Deposit(c *gin.Context) {
	h.move(c, "goal deposit", h.savings.DepositToGoal)
}

// Withdraw handles POST /api/v1/goals/:id/withdraw
// @Summary Move goal funds back to the ledger balance
// @Tags goals
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Goal ID"
// @Param request body GoalAmountRequest true "Amount"
// @Success 200 {object} entities.GoalView
// @Failure 422 {object} entities.ErrorResponse
// @Router /api/v1/goals/{id}/withdraw [post]
func (h *SavingsHandlers) Withdraw(c *gin.Context) {
	h.move(c, "goal withdrawal", h.savings.WithdrawFromGoal)
}

type goalTransfer func(ctx context.Context, userID, goalID uuid.UUID, amount decimal.Decimal) (*entities.GoalView, error)

func (h *SavingsHandlers) move(c *gin.Context, action string, fn goalTransfer) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	goalID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req GoalAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBindError(c, err)
		return
	}
	goal, err := fn(c.Request.Context(), userID, goalID, req.Amount)
	if err != nil {
		SendServiceError(c, h.logger, err, action)
		return
	}
	SendSuccess(c, goal)
}

// DeleteGoal handles DELETE /api/v1/goals/:id
// @Summary Delete a goal and refund its funds
// @Tags goals
// @Security BearerAuth
// @Produce json
// @Param id path string true "Goal ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/goals/{id} [delete]
func (h *SavingsHandlers) DeleteGoal(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	goalID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	refund, err := h.savings.DeleteGoal(c.Request.Context(), userID, goalID)
	if err != nil {
		SendServiceError(c, h.logger, err, "delete goal")
		return
	}
	SendSuccess(c, gin.H{"deleted": true, "refunded": refund})
}

// UpdateAutoSave handles PUT /api/v1/goals/:id/auto-save
// @Summary Update auto-save settings
// @Tags goals
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Goal ID"
// @Param request body AutoSaveRequest true "Settings"
// @Success 200 {object} entities.GoalView
// @Router /api/v1/goals/{id}/auto-save [put]
func (h *SavingsHandlers) UpdateAutoSave(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	goalID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req AutoSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBindError(c, err)
		return
	}
	goal, err := h.savings.UpdateAutoSave(c.Request.Context(), userID, goalID, entities.AutoSaveSettings{
		Enabled:   req.Enabled,
		Amount:    req.Amount,
		Frequency: req.Frequency,
	})
	if err != nil {
		SendServiceError(c, h.logger, err, "update auto-save")
		return
	}
	SendSuccess(c, goal)
}

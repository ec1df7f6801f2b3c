package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/pkg/health"
	"github.com/usdt-vault/vault_service/pkg/version"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	readinessChecker *health.HealthChecker
	logger           *zap.Logger
	startTime        time.Time
}

// NewHealthHandler creates a new health handler. The readiness checker
// decides whether the service takes traffic.
func NewHealthHandler(readinessChecker *health.HealthChecker, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		readinessChecker: readinessChecker,
		logger:           logger,
		startTime:        time.Now(),
	}
}

func (h *HealthHandler) respond(c *gin.Context) (health.Status, health.HealthResponse) {
	status, checks := h.readinessChecker.Check(c.Request.Context())
	return status, health.HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Version:   version.Version,
		Checks:    checks,
	}
}

// Health handles the general health endpoint
// @Summary General health check
// @Description Returns overall service health with detailed component status
// @Tags health
// @Produce json
// @Success 200 {object} health.HealthResponse
// @Failure 503 {object} health.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	status, response := h.respond(c)

	uptime := int(time.Since(h.startTime).Seconds())
	for name, check := range response.Checks {
		response.Checks[name] = check.WithMetadata("uptime_seconds", uptime)
	}

	statusCode := http.StatusOK
	if status == health.StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, response)
}

// Ready handles the readiness check
// @Summary Readiness check
// @Tags health
// @Produce json
// @Success 200 {object} health.HealthResponse
// @Failure 503 {object} health.HealthResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	status, response := h.respond(c)

	statusCode := http.StatusOK
	switch status {
	case health.StatusUnhealthy:
		statusCode = http.StatusServiceUnavailable
		h.logger.Warn("Readiness check failed", zap.Any("checks", response.Checks))
	case health.StatusDegraded:
		h.logger.Warn("Service degraded", zap.Any("checks", response.Checks))
	}
	c.JSON(statusCode, response)
}

// Live handles the liveness check
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now(),
		"uptime":    time.Since(h.startTime).String(),
	})
}

// Version returns the application version
// @Summary Build information
// @Tags health
// @Produce json
// @Success 200 {object} version.Info
// @Router /version [get]
func (h *HealthHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, version.Get())
}

// Metrics exposes Prometheus metrics
func Metrics() gin.HandlerFunc {
	handler := promhttp.Handler()
	return func(c *gin.Context) {
		handler.ServeHTTP(c.Writer, c.Request)
	}
}

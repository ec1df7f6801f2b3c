package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
	domainerrors "github.com/usdt-vault/vault_service/internal/domain/errors"
	"github.com/usdt-vault/vault_service/internal/domain/services/pin"
)

func TestSendServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"duplicate username", domainerrors.UserAlreadyExistsError("alice"), http.StatusConflict, ErrCodeUserExists},
		{"other duplicate", fmt.Errorf("insert: %w", domainerrors.ErrAlreadyExists), http.StatusConflict, ErrCodeConflict},
		{"goal not found", domainerrors.NotFoundError("GOAL"), http.StatusNotFound, "GOAL_NOT_FOUND"},
		{"field validation", domainerrors.ValidationError("amount", "amount must be at least 1"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"insufficient funds", domainerrors.InsufficientFundsError(domainerrors.ErrInsufficientFunds, "10", "5"), http.StatusUnprocessableEntity, ErrCodeInsufficientFunds},
		{"pin locked", fmt.Errorf("withdraw: %w", pin.ErrPINLocked), http.StatusLocked, ErrCodePINLocked},
		{"store down", domainerrors.ErrStoreUnavailable, http.StatusServiceUnavailable, ErrCodeStoreUnavailable},
		{"bad credentials", domainerrors.InvalidCredentialsError(), http.StatusUnauthorized, ErrCodeInvalidCredentials},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			SendServiceError(c, zap.NewNop(), tt.err, "test")

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp entities.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}

func TestSendServiceError_KeepsDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SendServiceError(c, zap.NewNop(), domainerrors.InsufficientFundsError(domainerrors.ErrInsufficientFunds, "10", "5"), "withdraw")

	var resp entities.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "10", resp.Details["requested"])
	assert.Equal(t, "5", resp.Details["available"])
}

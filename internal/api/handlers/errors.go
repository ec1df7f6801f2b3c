package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
	domainerrors "github.com/usdt-vault/vault_service/internal/domain/errors"
	"github.com/usdt-vault/vault_service/internal/domain/services/pin"
	"github.com/usdt-vault/vault_service/internal/domain/services/wallet"
)

// Error codes as constants for consistent error responses across handlers
const (
	// Authentication
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       = "INVALID_TOKEN"

	// Validation
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeValidationError = "VALIDATION_ERROR"
	ErrCodeInvalidID       = "INVALID_ID"
	ErrCodeInvalidAddress  = "INVALID_ADDRESS"
	ErrCodeInvalidAmount   = "INVALID_AMOUNT"
	ErrCodeInvalidFilter   = "INVALID_FILTER"

	// Resources
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeUserExists   = "USER_EXISTS"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeNoLinkedAddr = "WALLET_NOT_LINKED"

	// Operations
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeStoreUnavailable   = "STORE_UNAVAILABLE"
	ErrCodeChainUnavailable   = "CHAIN_UNAVAILABLE"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"

	// Funds
	ErrCodeInsufficientFunds = "INSUFFICIENT_FUNDS"

	// PIN
	ErrCodePINNotSet         = "PIN_NOT_SET"
	ErrCodePINExists         = "PIN_EXISTS"
	ErrCodePINMismatch       = "PIN_MISMATCH"
	ErrCodePINLocked         = "PIN_LOCKED"
	ErrCodePINInvalid        = "INVALID_PIN_FORMAT"
	ErrCodePINUnchanged      = "PIN_UNCHANGED"
	ErrCodePINConfirmation   = "PIN_CONFIRMATION_MISMATCH"
	ErrCodePasswordMismatch  = "PASSWORD_MISMATCH"
	ErrCodeWeakPassword      = "WEAK_PASSWORD"
	ErrCodeInvalidUsername   = "INVALID_USERNAME"
	ErrCodeTokenBlacklisted  = "TOKEN_REVOKED"
	ErrCodeNoTransactionsCSV = "NO_TRANSACTIONS"
)

// Error messages as constants for consistency
const (
	MsgInvalidRequest     = "Invalid request payload"
	MsgUnauthorized       = "Authentication required"
	MsgInternalError      = "Internal server error"
	MsgServiceUnavailable = "Service temporarily unavailable"
	MsgStoreUnavailable   = "Ledger store is unavailable"
)

func sendError(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.JSON(status, entities.ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// SendBadRequest sends a 400 Bad Request error
func SendBadRequest(c *gin.Context, code, message string, details ...map[string]interface{}) {
	var det map[string]interface{}
	if len(details) > 0 {
		det = details[0]
	}
	sendError(c, http.StatusBadRequest, code, message, det)
}

// SendUnauthorized sends a 401 Unauthorized error
func SendUnauthorized(c *gin.Context, message string) {
	sendError(c, http.StatusUnauthorized, ErrCodeUnauthorized, message, nil)
}

// SendNotFound sends a 404 Not Found error
func SendNotFound(c *gin.Context, code, message string) {
	sendError(c, http.StatusNotFound, code, message, nil)
}

// SendConflict sends a 409 Conflict error
func SendConflict(c *gin.Context, code, message string) {
	sendError(c, http.StatusConflict, code, message, nil)
}

// SendUnprocessable sends a 422 Unprocessable Entity error
func SendUnprocessable(c *gin.Context, code, message string, details map[string]interface{}) {
	sendError(c, http.StatusUnprocessableEntity, code, message, details)
}

// SendLocked sends a 423 Locked error
func SendLocked(c *gin.Context, code, message string) {
	sendError(c, http.StatusLocked, code, message, nil)
}

// SendTooManyRequests sends a 429 Too Many Requests error
func SendTooManyRequests(c *gin.Context, message string) {
	sendError(c, http.StatusTooManyRequests, ErrCodeTooManyRequests, message, nil)
}

// SendInternalError sends a 500 Internal Server Error
func SendInternalError(c *gin.Context, code, message string) {
	sendError(c, http.StatusInternalServerError, code, message, nil)
}

// SendServiceUnavailable sends a 503 Service Unavailable error
func SendServiceUnavailable(c *gin.Context, code, message string) {
	sendError(c, http.StatusServiceUnavailable, code, message, nil)
}

// SendSuccess sends a 200 OK response with data
func SendSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// SendCreated sends a 201 Created response with data
func SendCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// SendInvalidField sends an error for a specific invalid field
func SendInvalidField(c *gin.Context, field, message string) {
	sendError(c, http.StatusBadRequest, ErrCodeValidationError, message, map[string]interface{}{
		"field": field,
	})
}

// SendBindError reports a request body that failed binding. Failed validator
// tags are listed per field.
func SendBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		sendError(c, http.StatusBadRequest, ErrCodeValidationError, MsgInvalidRequest, map[string]interface{}{
			"validation_errors": fields,
		})
		return
	}
	SendBadRequest(c, ErrCodeInvalidRequest, MsgInvalidRequest)
}

// SendServiceError maps a domain or service error onto a response. Anything
// unrecognised is logged and reported as a 500.
func SendServiceError(c *gin.Context, logger *zap.Logger, err error, action string) {
	domainErr, hasDomain := domainerrors.AsDomainError(err)
	details := map[string]interface{}(nil)
	if hasDomain {
		details = domainErr.Details
	}

	switch {
	case errors.Is(err, pin.ErrPINLocked):
		SendLocked(c, ErrCodePINLocked, err.Error())
	case errors.Is(err, pin.ErrPINNotSet):
		SendBadRequest(c, ErrCodePINNotSet, "Set a PIN before withdrawing")
	case errors.Is(err, pin.ErrPINMismatch):
		SendBadRequest(c, ErrCodePINMismatch, err.Error())
	case errors.Is(err, pin.ErrPINAlreadySet):
		SendConflict(c, ErrCodePINExists, "PIN already set. Use the change endpoint instead.")
	case errors.Is(err, pin.ErrPINInvalidFormat):
		SendBadRequest(c, ErrCodePINInvalid, err.Error())
	case errors.Is(err, pin.ErrPINConfirmMismatch):
		SendBadRequest(c, ErrCodePINConfirmation, err.Error())
	case errors.Is(err, pin.ErrPINSameAsCurrent):
		SendBadRequest(c, ErrCodePINUnchanged, err.Error())
	case errors.Is(err, wallet.ErrInvalidAddress):
		SendBadRequest(c, ErrCodeInvalidAddress, "Invalid BSC address")
	case errors.Is(err, domainerrors.ErrInsufficientFunds):
		SendUnprocessable(c, ErrCodeInsufficientFunds, err.Error(), details)
	case errors.Is(err, domainerrors.ErrInvalidAmount):
		SendBadRequest(c, ErrCodeInvalidAmount, err.Error())
	case errors.Is(err, domainerrors.ErrStoreUnavailable):
		SendServiceUnavailable(c, ErrCodeStoreUnavailable, MsgStoreUnavailable)
	case errors.Is(err, domainerrors.ErrServiceUnavailable):
		SendServiceUnavailable(c, ErrCodeServiceUnavailable, MsgServiceUnavailable)
	case errors.Is(err, domainerrors.ErrTokenBlacklisted):
		sendError(c, http.StatusUnauthorized, ErrCodeTokenBlacklisted, err.Error(), nil)
	case errors.Is(err, domainerrors.ErrInvalidCredentials):
		sendError(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, err.Error(), nil)
	case errors.Is(err, domainerrors.ErrUnauthorized):
		sendError(c, http.StatusUnauthorized, ErrCodeInvalidToken, "Invalid or expired token", nil)
	case errors.Is(err, domainerrors.ErrNotFound):
		code := ErrCodeNotFound
		if hasDomain && domainErr.Code != "" {
			code = domainErr.Code
		}
		SendNotFound(c, code, err.Error())
	case errors.Is(err, domainerrors.ErrUserAlreadyExists):
		SendConflict(c, ErrCodeUserExists, "Username already exists")
	case errors.Is(err, domainerrors.ErrAlreadyExists):
		SendConflict(c, ErrCodeConflict, err.Error())
	case errors.Is(err, domainerrors.ErrInvalidInput):
		code := ErrCodeValidationError
		if hasDomain && domainErr.Code != "" {
			code = domainErr.Code
		}
		sendError(c, http.StatusBadRequest, code, err.Error(), details)
	default:
		logger.Error("Request failed",
			zap.String("action", action),
			zap.String("request_id", getRequestID(c)),
			zap.Error(err))
		SendInternalError(c, ErrCodeInternalError, MsgInternalError)
	}
}

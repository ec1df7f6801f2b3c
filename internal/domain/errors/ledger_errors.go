package errors

import (
	"errors"
	"fmt"
)

// Ledger errors
var (
	ErrInvalidAmount     = fmt.Errorf("amount must be greater than zero: %w", ErrInvalidInput)
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// InsufficientFundsError reports the shortfall between what was requested and what is available.
func InsufficientFundsError(err error, requested, available string) *DomainError {
	return &DomainError{
		Err:     err,
		Code:    "INSUFFICIENT_FUNDS",
		Message: err.Error(),
		Details: map[string]interface{}{
			"requested": requested,
			"available": available,
		},
	}
}

func IsInsufficientFunds(err error) bool {
	return errors.Is(err, ErrInsufficientFunds)
}

// Package events defines how committed ledger mutations are announced.
package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
)

// Publisher announces a ledger event.
type Publisher interface {
	Publish(ctx context.Context, event entities.LedgerEvent) error
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, entities.LedgerEvent) error { return nil }

// Emit publishes event after a committed mutation. Failures are logged and
// never reach the caller.
func Emit(ctx context.Context, p Publisher, logger *zap.Logger, event entities.LedgerEvent) {
	if p == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := p.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish ledger event",
			zap.String("type", event.Type),
			zap.String("user_id", event.UserID.String()),
			zap.Error(err))
	}
}

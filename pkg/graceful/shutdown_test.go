package graceful

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/usdt-vault/vault_service/pkg/logger"
)

func TestShutdownRunsComponentsInOrder(t *testing.T) {
	var order []string
	sm := NewShutdownManager(nil, logger.NewNop())
	sm.Register(ShutdownFunc(func(context.Context) error {
		order = append(order, "worker")
		return nil
	}))
	sm.Register(ShutdownFunc(func(context.Context) error {
		order = append(order, "store")
		return errors.New("already closed")
	}))
	sm.Register(ShutdownFunc(func(context.Context) error {
		order = append(order, "tracer")
		return nil
	}))

	sm.Shutdown(context.Background())
	assert.Equal(t, []string{"worker", "store", "tracer"}, order)
}

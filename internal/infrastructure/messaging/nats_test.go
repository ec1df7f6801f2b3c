package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
)

type fakeConn struct {
	connected bool
	err       error
	subjects  []string
	payloads  [][]byte
	drained   bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func (f *fakeConn) IsConnected() bool { return f.connected }

func (f *fakeConn) Drain() error {
	f.drained = true
	return nil
}

func TestPublish(t *testing.T) {
	conn := &fakeConn{connected: true}
	p := NewNATSPublisher(conn, "vault", zap.NewNop())

	event := entities.LedgerEvent{
		Type:     entities.EventLedgerDeposit,
		UserID:   uuid.New(),
		EntityID: uuid.New(),
		Amount:   decimal.RequireFromString("12.5"),
		Balance:  decimal.RequireFromString("112.5"),
	}
	require.NoError(t, p.Publish(context.Background(), event))

	require.Equal(t, []string{"vault.ledger.deposit"}, conn.subjects)
	var decoded entities.LedgerEvent
	require.NoError(t, json.Unmarshal(conn.payloads[0], &decoded))
	assert.Equal(t, event.UserID, decoded.UserID)
	assert.True(t, event.Amount.Equal(decoded.Amount))
}

func TestPublish_Disconnected(t *testing.T) {
	p := NewNATSPublisher(&fakeConn{}, "vault", zap.NewNop())
	err := p.Publish(context.Background(), entities.LedgerEvent{Type: entities.EventGoalDeleted})
	assert.ErrorIs(t, err, nats.ErrConnectionClosed)
}

func TestPublish_ConnError(t *testing.T) {
	p := NewNATSPublisher(&fakeConn{connected: true, err: errors.New("slow consumer")}, "", zap.NewNop())
	err := p.Publish(context.Background(), entities.LedgerEvent{Type: entities.EventGoalDeposit})
	assert.ErrorContains(t, err, "publish goal.deposit")
}

func TestShutdownDrains(t *testing.T) {
	conn := &fakeConn{connected: true}
	require.NoError(t, NewNATSPublisher(conn, "vault", zap.NewNop()).Shutdown(context.Background()))
	assert.True(t, conn.drained)
}

// Package messaging publishes committed ledger events to NATS.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/usdt-vault/vault_service/internal/domain/entities"
	"github.com/usdt-vault/vault_service/pkg/metrics"
)

// Conn is the subset of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subject string, data []byte) error
	IsConnected() bool
	Drain() error
}

type Config struct {
	URL           string
	SubjectPrefix string
	Name          string
}

// NATSPublisher publishes ledger events as JSON on <prefix>.<event type>.
type NATSPublisher struct {
	conn   Conn
	prefix string
	logger *zap.Logger
}

// Connect dials NATS with reconnects enabled.
func Connect(cfg Config, logger *zap.Logger) (*NATSPublisher, error) {
	name := cfg.Name
	if name == "" {
		name = "usdt-vault"
	}
	nc, err := nats.Connect(cfg.URL,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	logger.Info("Connected to NATS", zap.String("url", nc.ConnectedUrl()))
	return NewNATSPublisher(nc, cfg.SubjectPrefix, logger), nil
}

func NewNATSPublisher(conn Conn, prefix string, logger *zap.Logger) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: prefix, logger: logger}
}

// Subject returns the subject an event type is published on.
func (p *NATSPublisher) Subject(eventType string) string {
	if p.prefix == "" {
		return eventType
	}
	return p.prefix + "." + eventType
}

func (p *NATSPublisher) Publish(ctx context.Context, event entities.LedgerEvent) error {
	subject := p.Subject(event.Type)
	if err := ctx.Err(); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(subject, "cancelled").Inc()
		return err
	}
	if !p.conn.IsConnected() {
		metrics.EventsPublishedTotal.WithLabelValues(subject, "disconnected").Inc()
		return nats.ErrConnectionClosed
	}

	data, err := json.Marshal(event)
	if err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(subject, "error").Inc()
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(subject, "error").Inc()
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	metrics.EventsPublishedTotal.WithLabelValues(subject, "success").Inc()
	p.logger.Debug("Ledger event published", zap.String("subject", subject), zap.String("user_id", event.UserID.String()))
	return nil
}

// Shutdown drains pending messages and closes the connection.
func (p *NATSPublisher) Shutdown(context.Context) error {
	if err := p.conn.Drain(); err != nil {
		return fmt.Errorf("drain NATS: %w", err)
	}
	return nil
}

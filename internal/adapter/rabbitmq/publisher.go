// Package rabbitmq publishes committed property trace entries to a RabbitMQ
// topic exchange. Routing keys have the form property.<event>, e.g.
// property.price_change.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"

	"github.com/heartmarshall/realestate-backend/internal/config"
	"github.com/heartmarshall/realestate-backend/internal/domain"
)

const exchangeKind = "topic"

// channel is the subset of *amqp.Channel used by Publisher.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type connection interface {
	IsClosed() bool
	Close() error
}

// Publisher sends trace events to a durable topic exchange.
type Publisher struct {
	conn     connection
	ch       channel
	exchange string
	timeout  time.Duration
	log      *slog.Logger
}

// Dial connects to the broker, opens a channel and declares the exchange.
func Dial(cfg config.BrokerConfig, logger *slog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}

	p, err := newPublisher(conn, ch, cfg, logger)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return p, nil
}

func newPublisher(conn connection, ch channel, cfg config.BrokerConfig, logger *slog.Logger) (*Publisher, error) {
	if err := ch.ExchangeDeclare(cfg.Exchange, exchangeKind, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("rabbitmq: declare exchange %q: %w", cfg.Exchange, err)
	}

	logger.Debug("rabbitmq exchange declared", slog.String("exchange", cfg.Exchange))

	return &Publisher{
		conn:     conn,
		ch:       ch,
		exchange: cfg.Exchange,
		timeout:  cfg.PublishTimeout,
		log:      logger.With("component", "rabbitmq"),
	}, nil
}

// traceMessage is the JSON body of a published trace event.
type traceMessage struct {
	ID         uuid.UUID        `json:"id"`
	PropertyID uuid.UUID        `json:"property_id"`
	EventType  string           `json:"event_type"`
	EventDate  time.Time        `json:"event_date"`
	ActorName  *string          `json:"actor_name,omitempty"`
	OldTotal   *decimal.Decimal `json:"old_total,omitempty"`
	OldBase    *decimal.Decimal `json:"old_base,omitempty"`
	OldTax     *decimal.Decimal `json:"old_tax,omitempty"`
	NewTotal   *decimal.Decimal `json:"new_total,omitempty"`
	NewBase    *decimal.Decimal `json:"new_base,omitempty"`
	NewTax     *decimal.Decimal `json:"new_tax,omitempty"`
	Notes      string           `json:"notes"`
}

func toMessage(t domain.PropertyTrace) traceMessage {
	return traceMessage{
		ID:         t.ID,
		PropertyID: t.PropertyID,
		EventType:  t.EventType.String(),
		EventDate:  t.EventDate,
		ActorName:  t.ActorName,
		OldTotal:   t.OldTotal,
		OldBase:    t.OldBase,
		OldTax:     t.OldTax,
		NewTotal:   t.NewTotal,
		NewBase:    t.NewBase,
		NewTax:     t.NewTax,
		Notes:      t.Notes,
	}
}

// RoutingKey returns the routing key used for an event type.
func RoutingKey(eventType domain.TraceEventType) string {
	return "property." + strings.ToLower(eventType.String())
}

// PublishTraces publishes each trace as a persistent message. It stops at the
// first failure; earlier messages stay published.
func (p *Publisher) PublishTraces(ctx context.Context, traces []domain.PropertyTrace) error {
	if len(traces) == 0 {
		return nil
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	for _, t := range traces {
		body, err := json.Marshal(toMessage(t))
		if err != nil {
			return fmt.Errorf("rabbitmq: marshal trace %s: %w", t.ID, err)
		}

		msg := amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    t.ID.String(),
			Timestamp:    t.EventDate,
			Type:         t.EventType.String(),
			Headers:      amqp.Table{"property_id": t.PropertyID.String()},
			Body:         body,
		}

		key := RoutingKey(t.EventType)
		if err := p.ch.PublishWithContext(ctx, p.exchange, key, false, false, msg); err != nil {
			return fmt.Errorf("rabbitmq: publish %s: %w", key, err)
		}
	}

	p.log.DebugContext(ctx, "traces published", slog.Int("count", len(traces)))
	return nil
}

// Ping reports whether the broker connection is still open.
func (p *Publisher) Ping(context.Context) error {
	if p.conn == nil || p.conn.IsClosed() {
		return amqp.ErrClosed
	}
	return nil
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	var firstErr error
	if err := p.ch.Close(); err != nil {
		firstErr = err
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Noop discards every event. It is used when the broker is disabled.
type Noop struct{}

// PublishTraces does nothing.
func (Noop) PublishTraces(context.Context, []domain.PropertyTrace) error { return nil }

// Ping always succeeds.
func (Noop) Ping(context.Context) error { return nil }

// Close does nothing.
func (Noop) Close() error { return nil }

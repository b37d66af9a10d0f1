// Package events publishes ride lifecycle events to RabbitMQ so services
// outside this process can follow rides without holding a socket.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const routingKeyPrefix = "ride."

// ErrClosed is returned by Publish when the broker connection is gone.
var ErrClosed = errors.New("rabbitmq connection closed")

// Envelope is the message body for every event.
type Envelope struct {
	Event      string    `json:"event"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// Publisher sends events to a topic exchange with routing key "ride.<event>".
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	log      *slog.Logger
	now      func() time.Time
}

// NewPublisher dials url and declares a durable topic exchange.
func NewPublisher(url, exchange string, log *slog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &Publisher{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		log:      log.With("component", "events"),
		now:      time.Now,
	}, nil
}

// Publish sends one event. Messages are persistent JSON.
func (p *Publisher) Publish(ctx context.Context, event string, payload any) error {
	body, err := encode(event, payload, p.now())
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() || p.ch == nil || p.ch.IsClosed() {
		return ErrClosed
	}

	return p.ch.PublishWithContext(ctx, p.exchange, RoutingKey(event), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now(),
		Body:         body,
	})
}

// IsAlive reports whether the connection and channel are open.
func (p *Publisher) IsAlive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn != nil && !p.conn.IsClosed() && p.ch != nil && !p.ch.IsClosed()
}

// Close closes the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil && !p.ch.IsClosed() {
		if err := p.ch.Close(); err != nil {
			return fmt.Errorf("close rabbitmq channel: %w", err)
		}
	}
	if p.conn != nil && !p.conn.IsClosed() {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("close rabbitmq connection: %w", err)
		}
	}
	p.log.Info("event publisher closed")
	return nil
}

// RoutingKey prefixes an event name with "ride.", dropping a leading "ride-":
// "ride-confirmed" becomes "ride.confirmed" and "new-ride" becomes "ride.new-ride".
func RoutingKey(event string) string {
	return routingKeyPrefix + strings.TrimPrefix(event, "ride-")
}

func encode(event string, payload any, at time.Time) ([]byte, error) {
	return json.Marshal(Envelope{Event: event, OccurredAt: at.UTC(), Data: payload})
}

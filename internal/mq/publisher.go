package mq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// PointsAwardedEvent is published after every successful point award so
// downstream consumers (dashboards, notifications) can react without
// polling the datastore.
type PointsAwardedEvent struct {
	UserID    string `json:"user_id"`
	DustbinID string `json:"dustbin_id"`
	Category  string `json:"category"`
	Points    int    `json:"points"`
	AwardedAt string `json:"awarded_at"`
}

// Publisher publishes domain events. The attribution path treats publish
// failures as log-only: an award never fails because the broker is down.
type Publisher interface {
	PublishPointsAwarded(ctx context.Context, event PointsAwardedEvent) error
}

// EventPublisher publishes events to a durable topic exchange.
type EventPublisher struct {
	channel    *amqp.Channel
	exchange   string
	routingKey string
	logger     *zap.Logger
}

// NewEventPublisher creates a publisher bound to the given exchange.
func NewEventPublisher(conn *Connection, exchange, routingKey string, logger *zap.Logger) (*EventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &EventPublisher{
		channel:    ch,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger,
	}, nil
}

// PublishPointsAwarded publishes one award event.
func (p *EventPublisher) PublishPointsAwarded(ctx context.Context, event PointsAwardedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		p.routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("published points event",
		zap.String("routing_key", p.routingKey),
		zap.String("user_id", event.UserID),
		zap.String("category", event.Category),
		zap.Int("points", event.Points),
	)

	return nil
}

// Close closes the publisher channel
func (p *EventPublisher) Close() error {
	if p.channel != nil {
		return p.channel.Close()
	}
	return nil
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishPointsAwarded(context.Context, PointsAwardedEvent) error {
	return nil
}

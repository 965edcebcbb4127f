// Package events publishes domain events to RabbitMQ. Publishing is best
// effort: errors are logged and returned so callers may ignore them.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"airwise-backend/config"
)

// NotificationCreated is published whenever a Notification object is stored.
type NotificationCreated struct {
	NotificationID string    `json:"notificationId"`
	TenantID       string    `json:"tenantId"`
	UserEmail      string    `json:"userEmail"`
	Status         string    `json:"status"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Publisher sends events to a broker.
type Publisher interface {
	PublishNotification(ctx context.Context, event NotificationCreated) error
}

// Nop discards every event. It is used when events are disabled.
type Nop struct{}

func (Nop) PublishNotification(context.Context, NotificationCreated) error { return nil }

// AMQPPublisher dials the broker for every event and publishes a persistent
// message to a durable queue.
type AMQPPublisher struct {
	url   string
	queue string
	log   *zap.Logger
}

// New returns an AMQP publisher when events are enabled and Nop otherwise.
func New(cfg config.EventsConfig, log *zap.Logger) Publisher {
	if !cfg.Enabled || cfg.URL == "" {
		return Nop{}
	}
	return &AMQPPublisher{url: cfg.URL, queue: cfg.Queue, log: log}
}

func (p *AMQPPublisher) PublishNotification(ctx context.Context, event NotificationCreated) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn("rabbitmq: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		p.log.Warn("rabbitmq: queue declare failed", zap.String("queue", p.queue), zap.Error(err))
		return err
	}

	pub, err := newPublishing(event, time.Now().UTC())
	if err != nil {
		return err
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.log.Warn("rabbitmq: publish failed", zap.String("queue", p.queue), zap.Error(err))
		return err
	}
	return nil
}

func newPublishing(event NotificationCreated, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    now,
		Type:         "NotificationCreated",
		Body:         body,
	}, nil
}

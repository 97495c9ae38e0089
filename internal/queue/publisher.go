package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/orablu/space-adoption/internal/logger"
)

// Publisher publishes adoption events to durable queues on the default
// exchange.  It keeps one connection and redials lazily after the broker
// closes it.  Publishing is best-effort: errors are logged and returned so
// callers can ignore them without interrupting the request.
type Publisher struct {
	url string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher dials the broker and declares the event queues.
func NewPublisher(url string) (*Publisher, error) {
	p := &Publisher{url: url}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connectLocked(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) connectLocked() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	for _, q := range []string{AdoptionCreatedQueue, AdoptionStatusChangedQueue} {
		// Durable so messages survive broker restarts.
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return fmt.Errorf("declare queue %s: %w", q, err)
		}
	}
	p.conn, p.ch = conn, ch
	return nil
}

// AdoptionCreated publishes an AdoptionCreatedEvent.
func (p *Publisher) AdoptionCreated(ctx context.Context, ev AdoptionCreatedEvent) error {
	return p.publish(ctx, AdoptionCreatedQueue, ev)
}

// AdoptionStatusChanged publishes an AdoptionStatusChangedEvent.
func (p *Publisher) AdoptionStatusChanged(ctx context.Context, ev AdoptionStatusChangedEvent) error {
	return p.publish(ctx, AdoptionStatusChangedQueue, ev)
}

func (p *Publisher) publish(ctx context.Context, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		if err := p.connectLocked(); err != nil {
			logger.WarnCtx(ctx, "rabbitmq reconnect failed", zap.String("queue", key), zap.Error(err))
			return err
		}
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", key, false, false, pub); err != nil {
		logger.WarnCtx(ctx, "rabbitmq publish failed", zap.String("queue", key), zap.Error(err))
		return err
	}
	return nil
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

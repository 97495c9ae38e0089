package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/orablu/space-adoption/internal/logger"
)

// Consumer appends every adoption event to a log file, one line per event.
type Consumer struct {
	URL     string
	LogPath string
}

// Run connects to RabbitMQ, declares the adoption queues and consumes
// them until ctx is cancelled.  It reconnects with exponential backoff
// (capped at 30s) and rejects messages it cannot handle so the loop keeps
// going.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			logger.Warn("adoption-consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("adoption-consumer: consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logger.Warn("adoption-consumer: set QoS failed", zap.Error(err))
	}

	// done releases the forwarders when this loop returns on a closed
	// connection while ctx is still live.
	done := make(chan struct{})
	defer close(done)
	deliveries := make(chan amqp.Delivery)
	for _, q := range []string{AdoptionCreatedQueue, AdoptionStatusChangedQueue} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", q, err)
		}
		msgs, err := ch.Consume(q, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", q, err)
		}
		go forward(ctx, done, msgs, deliveries)
	}

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr := <-closed:
			if amqpErr != nil {
				return amqpErr
			}
			return errors.New("connection closed")
		case d := <-deliveries:
			if err := c.Handle(d.RoutingKey, d.Body); err != nil {
				logger.Error(err, zap.String("queue", d.RoutingKey))
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// forward copies msgs into out until msgs closes, ctx ends or done is
// closed.  A delivery that cannot be handed over is requeued.
func forward(ctx context.Context, done <-chan struct{}, msgs <-chan amqp.Delivery, out chan<- amqp.Delivery) {
	for d := range msgs {
		select {
		case out <- d:
		case <-done:
			_ = d.Nack(false, true)
			return
		case <-ctx.Done():
			_ = d.Nack(false, true)
			return
		}
	}
}

// Handle decodes one message and appends its line to the log file.
func (c *Consumer) Handle(routingKey string, body []byte) error {
	var line string
	switch routingKey {
	case AdoptionCreatedQueue:
		var ev AdoptionCreatedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		line = fmt.Sprintf("[%s] Adoption created | adoption_id=%d | space_id=%d | space=%q | cost=%d | sponsor=%q | wants_to_help=%t\n",
			ev.CreatedAt, ev.AdoptionID, ev.SpaceID, ev.SpaceName, ev.SpaceCost, ev.SponsorName, ev.WantsToHelp)
	case AdoptionStatusChangedQueue:
		var ev AdoptionStatusChangedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		line = fmt.Sprintf("[%s] Adoption status changed | adoption_id=%d | status=%s\n",
			ev.ChangedAt, ev.AdoptionID, ev.Status)
	default:
		return fmt.Errorf("unexpected routing key %q", routingKey)
	}

	if err := os.MkdirAll(filepath.Dir(c.LogPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/rsaputelli/PRS/config"
	"github.com/rsaputelli/PRS/pkg/metrics"
)

// Handler processes one job. A returned error schedules a retry.
type Handler func(ctx context.Context, job Job) error

// ErrPermanent wraps failures that retrying cannot fix.
var ErrPermanent = errors.New("permanent job failure")

// RetryError asks for a retry of Job instead of the original message,
// typically narrowed to the recipients that failed.
type RetryError struct {
	Job Job
	Err error
}

func (e *RetryError) Error() string { return e.Err.Error() }
func (e *RetryError) Unwrap() error { return e.Err }

// Consumer drains the side-effect queue.
type Consumer struct {
	cfg     *config.RabbitMQConfig
	handler Handler
	logger  *zap.Logger
}

// NewConsumer creates a Consumer.
func NewConsumer(cfg *config.RabbitMQConfig, handler Handler, logger *zap.Logger) *Consumer {
	return &Consumer{cfg: cfg, handler: handler, logger: logger}
}

// Run consumes until ctx is cancelled, redialing with exponential backoff
// whenever the broker connection drops.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.cfg.URL)
		if err != nil {
			c.logger.Warn("consumer dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		c.logger.Warn("consume loop ended, reconnecting", zap.Error(err))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(2 * time.Second):
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		c.logger.Warn("set QoS failed", zap.Error(err))
	}
	if _, err := declare(ch, c.cfg.Queue); err != nil {
		return err
	}

	msgs, err := ch.Consume(c.cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.deliver(ctx, ch, d)
		}
	}
}

func (c *Consumer) deliver(ctx context.Context, ch *amqp.Channel, d amqp.Delivery) {
	var job Job
	if err := json.Unmarshal(d.Body, &job); err != nil {
		c.logger.Error("drop malformed job", zap.Error(err))
		_ = d.Nack(false, false)
		return
	}

	attempt := attemptOf(d.Headers)
	log := c.logger.With(zap.String("type", job.Type), zap.String("gig_id", job.GigID), zap.Int("attempt", attempt))

	err := c.handler(ctx, job)
	switch {
	case err == nil:
		metrics.IncQueueJob(job.Type, "ok")
		_ = d.Ack(false)
	case errors.Is(err, ErrPermanent) || attempt >= c.cfg.MaxAttempts:
		metrics.IncQueueJob(job.Type, "dropped")
		log.Error("job failed permanently", zap.Error(err))
		_ = d.Nack(false, false)
	default:
		metrics.IncQueueJob(job.Type, "retry")
		log.Warn("job failed, scheduling retry", zap.Error(err))
		if rerr := republish(ctx, ch, c.cfg.Queue, d, retryBody(d.Body, err), attempt+1); rerr != nil {
			log.Error("republish failed, requeueing", zap.Error(rerr))
			_ = d.Nack(false, true)
			return
		}
		_ = d.Ack(false)
	}
}

// retryBody the narrowed job of a *RetryError, otherwise the original body.
func retryBody(body []byte, err error) []byte {
	var retry *RetryError
	if errors.As(err, &retry) {
		if b, merr := json.Marshal(retry.Job); merr == nil {
			return b
		}
	}
	return body
}

func republish(ctx context.Context, ch *amqp.Channel, queue string, d amqp.Delivery, body []byte, attempt int) error {
	headers := amqp.Table{}
	for k, v := range d.Headers {
		headers[k] = v
	}
	headers[headerAttempt] = int32(attempt)
	return ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  d.ContentType,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         d.Type,
		Headers:      headers,
		Body:         body,
	})
}

func attemptOf(h amqp.Table) int {
	switch v := h[headerAttempt].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 1
}

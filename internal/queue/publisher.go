package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const cleanupQueueName = "media.cleanup"

// Publisher sends MediaCleanupEvents to the broker. Publish failures
// are returned so callers can log them, but callers are expected to
// treat them as non-fatal: the entity mutation has already committed.
type Publisher struct {
	url string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher creates a lazily-connecting publisher for the given
// AMQP URL.
func NewPublisher(url string) *Publisher {
	return &Publisher{url: url}
}

func (p *Publisher) channel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(cleanupQueueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

// PublishCleanup enqueues a cleanup event with a persistent delivery
// mode so pending deletes survive a broker restart.
func (p *Publisher) PublishCleanup(ctx context.Context, keys []string, reason string) error {
	if len(keys) == 0 {
		return nil
	}
	ev := MediaCleanupEvent{
		Keys:        keys,
		Reason:      reason,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal cleanup event: %w", err)
	}
	ch, err := p.channel()
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, "", cleanupQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		// Drop the cached channel so the next publish redials.
		p.mu.Lock()
		_ = p.ch.Close()
		_ = p.conn.Close()
		p.ch, p.conn = nil, nil
		p.mu.Unlock()
		return fmt.Errorf("publish cleanup: %w", err)
	}
	log.Printf("media-cleanup: queued %d key(s) (%s)", len(keys), reason)
	return nil
}

// Close tears down the cached channel and connection.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

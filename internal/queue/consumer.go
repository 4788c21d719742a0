package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AssetDeleter is the slice of the media store the consumer needs.
type AssetDeleter interface {
	Delete(ctx context.Context, key string) error
}

// StartCleanupConsumer connects to the broker, declares the durable
// media.cleanup queue and deletes the assets named by each event. It
// runs a reconnect loop with exponential backoff and never returns
// under normal operation; per-message failures are logged and the
// message rejected without requeue so a poison event cannot wedge the
// queue.
func StartCleanupConsumer(url string, store AssetDeleter) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("media-cleanup: dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn, store); err != nil {
			log.Printf("media-cleanup: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, store AssetDeleter) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(20, 0, false); err != nil {
		log.Printf("media-cleanup: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(cleanupQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(cleanupQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleCleanup(d.Body, store); err != nil {
			log.Printf("media-cleanup: handle event failed: %v", err)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleCleanup(body []byte, store AssetDeleter) error {
	var ev MediaCleanupEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, key := range ev.Keys {
		if key == "" {
			continue
		}
		if err := store.Delete(ctx, key); err != nil {
			// Log and keep going; remaining keys still get a chance.
			log.Printf("media-cleanup: delete %s (%s): %v", key, ev.Reason, err)
			continue
		}
		log.Printf("media-cleanup: deleted %s (%s)", key, ev.Reason)
	}
	return nil
}

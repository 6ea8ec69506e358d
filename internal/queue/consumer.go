package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ActivityLogFile is the file, inside the consumer's directory, that
// receives one line per event.
const ActivityLogFile = "activity.log"

// Consumer listens to the activity queues and appends each event to
// <Dir>/activity.log.
type Consumer struct {
	URL string
	Dir string
	Log *zap.Logger

	mu   sync.Mutex // serializes file appends across queues
	dial func(url string) (*amqp.Connection, error)
	wait time.Duration // first reconnect delay
}

func NewConsumer(url, dir string, log *zap.Logger) *Consumer {
	return &Consumer{URL: url, Dir: dir, Log: log, dial: amqp.Dial, wait: time.Second}
}

// Run connects and consumes until ctx is done, reconnecting with
// exponential backoff (capped at 30s) whenever the broker goes away.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := c.wait
	for {
		conn, err := c.dial(c.URL)
		if err != nil {
			c.Log.Warn("dial broker failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return nil
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = c.wait

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		c.Log.Warn("consume loop ended; reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return nil
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Log.Warn("set qos failed", zap.Error(err))
	}

	var wg sync.WaitGroup
	errc := make(chan error, 2)
	for _, name := range []string{ReviewCreatedQueue, ReservationCreatedQueue} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
		msgs, err := ch.ConsumeWithContext(ctx, name, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("consume %s: %w", name, err)
		}
		wg.Add(1)
		go func(name string, msgs <-chan amqp.Delivery) {
			defer wg.Done()
			for d := range msgs {
				if err := c.Handle(name, d.Body); err != nil {
					c.Log.Error("handle message failed", zap.String("queue", name), zap.Error(err))
					_ = d.Nack(false, false) // drop; requeueing a bad body would spin
					continue
				}
				_ = d.Ack(false)
			}
			errc <- errors.New("deliveries channel closed: " + name)
		}(name, msgs)
	}
	wg.Wait()
	close(errc)
	return <-errc
}

// Handle formats one message body and appends it to the activity log.
func (c *Consumer) Handle(queueName string, body []byte) error {
	line, err := FormatActivity(queueName, body)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", c.Dir, err)
	}
	f, err := os.OpenFile(filepath.Join(c.Dir, ActivityLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open activity log: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write activity log: %w", err)
	}
	return nil
}

// FormatActivity renders an event body as a single log line.
func FormatActivity(queueName string, body []byte) (string, error) {
	switch queueName {
	case ReviewCreatedQueue:
		var ev ReviewCreatedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Review created | review_id=%s | restaurant_id=%s | username=%q | title=%q\n",
			ev.CreatedAt.UTC().Format(time.RFC3339), ev.ReviewID, ev.RestaurantID, ev.Username, ev.Title), nil
	case ReservationCreatedQueue:
		var ev ReservationCreatedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Reservation created | reservation_id=%s | user_id=%s | username=%q | restaurant_id=%s | datetime=%s\n",
			ev.CreatedAt.UTC().Format(time.RFC3339), ev.ReservationID, ev.UserID, ev.Username, ev.RestaurantID,
			ev.DateTime.UTC().Format(time.RFC3339)), nil
	default:
		return "", fmt.Errorf("unknown queue %q", queueName)
	}
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

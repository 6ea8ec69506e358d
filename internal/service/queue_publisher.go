package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/daikitazaki/foodswho/internal/model"
	"github.com/daikitazaki/foodswho/internal/queue"
)

// Publisher sends activity events to RabbitMQ.  Publishing is best
// effort: failures are logged and returned, callers are free to ignore
// them.
type Publisher struct {
	url     string
	timeout time.Duration
	log     *zap.Logger
}

func NewPublisher(url string, log *zap.Logger) *Publisher {
	return &Publisher{url: url, timeout: 2 * time.Second, log: log}
}

// ReviewCreated publishes a review.created event.
func (p *Publisher) ReviewCreated(ctx context.Context, rv model.Review) error {
	return p.publish(ctx, queue.ReviewCreatedQueue, queue.ReviewCreatedEvent{
		ReviewID:     rv.ID,
		RestaurantID: rv.RestaurantID,
		Username:     rv.Username,
		Title:        rv.Title,
		CreatedAt:    rv.CreatedAt,
	})
}

// ReservationCreated publishes a reservation.created event.
func (p *Publisher) ReservationCreated(ctx context.Context, res model.Reservation, username string) error {
	return p.publish(ctx, queue.ReservationCreatedQueue, queue.ReservationCreatedEvent{
		ReservationID: res.ID,
		UserID:        res.UserID,
		Username:      username,
		RestaurantID:  res.RestaurantID,
		DateTime:      res.DateTime,
		CreatedAt:     res.CreatedAt,
	})
}

// publish dials, declares the durable queue and sends one persistent
// message on the default exchange.
func (p *Publisher) publish(ctx context.Context, name string, event any) (err error) {
	log := p.log.With(zap.String("queue", name))
	defer func() {
		if err != nil {
			log.Warn("publish failed", zap.Error(err))
		}
	}()

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(p.timeout)})
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	err = ch.PublishWithContext(ctx, "", name, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	log.Debug("event published")
	return nil
}

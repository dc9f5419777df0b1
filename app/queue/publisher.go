package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	reservationCreatedQueue = "reservation.created"
	paymentStatusQueue      = "reservation.payment_status"
)

// Publisher sends reservation lifecycle events to RabbitMQ. Publishing is
// best-effort: errors are logged and returned so callers can ignore them
// without interrupting the request flow.
type Publisher struct {
	url    string
	logger logrus.FieldLogger
}

func NewPublisher(url string, logger logrus.FieldLogger) *Publisher {
	return &Publisher{url: url, logger: logger}
}

func (p *Publisher) PublishReservationCreated(ctx context.Context, event ReservationCreatedEvent) error {
	return p.publish(ctx, reservationCreatedQueue, event)
}

func (p *Publisher) PublishPaymentStatusChanged(ctx context.Context, event PaymentStatusChangedEvent) error {
	return p.publish(ctx, paymentStatusQueue, event)
}

func (p *Publisher) publish(ctx context.Context, queueName string, event interface{}) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.WithError(err).Warn("rabbitmq dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.WithError(err).Warn("rabbitmq channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable declare is idempotent; messages survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		p.logger.WithError(err).WithField("queue", queueName).Warn("rabbitmq queue declare failed")
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).Warn("rabbitmq marshal event failed")
		return err
	}

	err = ch.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		p.logger.WithError(err).WithField("queue", queueName).Warn("rabbitmq publish failed")
		return err
	}

	return nil
}

package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/aura-kitchen/internal/core/domain"
)

const (
	ExchangeName = "orders"
	ExchangeType = "topic"

	RoutingKeyOrderPlaced = "order.placed"

	dialAttempts = 5
	dialBackoff  = 2 * time.Second
)

// SetupConn dials the broker and declares the orders exchange. The broker
// may still be starting next to us, so dialing is retried a few times.
func SetupConn(url string, log logrus.FieldLogger) (*amqp.Connection, *amqp.Channel, error) {
	var conn *amqp.Connection
	var err error

	for i := 0; i < dialAttempts; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		log.WithError(err).WithField("attempt", i+1).Warn("failed to connect to rabbitmq")
		time.Sleep(dialBackoff)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("could not open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		ExchangeName, // name
		ExchangeType, // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("could not declare exchange: %w", err)
	}

	return conn, ch, nil
}

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitPublisher struct {
	ch channel
}

func NewRabbitPublisher(ch *amqp.Channel) *RabbitPublisher {
	return &RabbitPublisher{ch: ch}
}

func (p *RabbitPublisher) PublishOrderPlaced(ctx context.Context, evt domain.OrderPlaced) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("could not marshal event: %w", err)
	}

	return p.ch.PublishWithContext(ctx,
		ExchangeName,          // exchange
		RoutingKeyOrderPlaced, // routing key
		false,                 // mandatory
		false,                 // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    fmt.Sprintf("order-%d", evt.OrderID),
			Timestamp:    evt.PlacedAt,
			Body:         body,
		},
	)
}

package messaging

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/aura-kitchen/internal/core/domain"
)

// LogPublisher stands in for the broker when AMQP_URL is unset.
type LogPublisher struct {
	log logrus.FieldLogger
}

func NewLogPublisher(log logrus.FieldLogger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) PublishOrderPlaced(ctx context.Context, evt domain.OrderPlaced) error {
	p.log.WithFields(logrus.Fields{
		"order_id":   evt.OrderID,
		"total":      evt.Total,
		"item_count": evt.ItemCount,
	}).Info("order placed")
	return nil
}

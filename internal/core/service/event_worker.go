package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/aura-kitchen/internal/core/domain"
	"github.com/rl1809/aura-kitchen/internal/metrics"
	"github.com/rl1809/aura-kitchen/internal/port"
)

const publishTimeout = 5 * time.Second

// PublishEvents drains queue until it is closed, handing every event to pub.
// A failed publish is logged and counted; the order itself is already stored.
func PublishEvents(id int, queue <-chan domain.OrderPlaced, pub port.EventPublisher, log logrus.FieldLogger) {
	log = log.WithField("worker", id)
	log.Info("worker started")

	for evt := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		err := pub.PublishOrderPlaced(ctx, evt)
		cancel()

		if err != nil {
			metrics.RecordOrderEvent("failed")
			log.WithError(err).WithField("order_id", evt.OrderID).Error("publish order placed failed")
			continue
		}
		metrics.RecordOrderEvent("published")
		log.WithField("order_id", evt.OrderID).Debug("order placed event published")
	}

	log.Info("worker stopped")
}

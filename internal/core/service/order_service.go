package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/aura-kitchen/internal/core/domain"
	"github.com/rl1809/aura-kitchen/internal/metrics"
	"github.com/rl1809/aura-kitchen/internal/port"
)

const idempotencyKeyPrefix = "idempotency:order:"

// OrderService is order intake: it revalidates a submission, stores it as
// submitted and queues an OrderPlaced event for the workers.
type OrderService struct {
	db         port.OrderRepository
	cache      port.CacheRepository
	eventQueue chan domain.OrderPlaced
	log        logrus.FieldLogger
	now        func() time.Time

	// mu guards closed; senders hold it shared so Close cannot race a send.
	mu     sync.RWMutex
	closed bool
}

func NewOrderService(db port.OrderRepository, cache port.CacheRepository, queueSize int, log logrus.FieldLogger) *OrderService {
	return &OrderService{
		db:         db,
		cache:      cache,
		eventQueue: make(chan domain.OrderPlaced, queueSize),
		log:        log,
		now:        time.Now,
	}
}

// PlaceOrder persists sub. A non-empty idempotencyKey makes retries of the
// same submission fail with domain.ErrDuplicateRequest instead of creating a
// second order. The submitted total is kept as is.
func (s *OrderService) PlaceOrder(ctx context.Context, idempotencyKey string, sub domain.OrderSubmission) (*domain.Order, error) {
	if err := domain.Validate(sub); err != nil {
		return nil, err
	}

	var key string
	if idempotencyKey != "" {
		key = idempotencyKeyPrefix + idempotencyKey
		ok, err := s.cache.SetIdempotency(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return nil, domain.ErrDuplicateRequest
		}
	}

	order := domain.NewOrder(sub, s.now().UTC())
	if err := s.db.CreateOrder(ctx, &order); err != nil {
		if key != "" {
			// Rollback: let the client retry with the same key
			if rollbackErr := s.cache.ReleaseIdempotency(ctx, key); rollbackErr != nil {
				s.log.WithError(rollbackErr).WithField("key", key).Error("CRITICAL idempotency rollback failed")
			}
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	metrics.RecordOrderPlaced(order.Total)
	s.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"total":    order.Total,
		"lines":    len(order.Items),
	}).Info("order created")

	s.enqueue(domain.NewOrderPlaced(order))
	return &order, nil
}

// enqueue never blocks. Events are dropped when the queue is full or closed;
// the order itself is already stored.
func (s *OrderService) enqueue(evt domain.OrderPlaced) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		metrics.RecordOrderEvent("dropped")
		s.log.WithField("order_id", evt.OrderID).Warn("event queue closed, order placed event dropped")
		return
	}
	select {
	case s.eventQueue <- evt:
	default:
		metrics.RecordOrderEvent("dropped")
		s.log.WithField("order_id", evt.OrderID).Warn("event queue full, order placed event dropped")
	}
}

func (s *OrderService) GetEventQueue() <-chan domain.OrderPlaced {
	return s.eventQueue
}

// Close stops accepting events and lets the workers drain the queue. Orders
// placed afterwards are still stored. Close may be called more than once.
func (s *OrderService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.eventQueue)
}

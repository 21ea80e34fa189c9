package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rl1809/aura-kitchen/internal/core/domain"
)

type mockPublisher struct {
	mu     sync.Mutex
	events []domain.OrderPlaced
	failOn int64
}

func (m *mockPublisher) PublishOrderPlaced(ctx context.Context, evt domain.OrderPlaced) error {
	if evt.OrderID == m.failOn {
		return errors.New("broker unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
	return nil
}

func TestPublishEvents_DrainsUntilClosed(t *testing.T) {
	queue := make(chan domain.OrderPlaced, 10)
	pub := &mockPublisher{failOn: 2}

	for id := int64(1); id <= 4; id++ {
		queue <- domain.OrderPlaced{OrderID: id, Total: 1000}
	}
	close(queue)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			PublishEvents(id, queue, pub, quietLogger())
		}(i)
	}
	wg.Wait()

	// a failed publish does not stop the worker
	assert.Len(t, pub.events, 3)
	for _, evt := range pub.events {
		assert.NotEqual(t, int64(2), evt.OrderID)
	}
}

func TestPublishEvents_FromOrderService(t *testing.T) {
	svc := NewOrderService(newMockDB(), newMockCacheRepo(), 10, quietLogger())
	pub := &mockPublisher{}

	done := make(chan struct{})
	go func() {
		PublishEvents(0, svc.GetEventQueue(), pub, quietLogger())
		close(done)
	}()

	order, err := svc.PlaceOrder(context.Background(), "evt-1", validSubmission())
	assert.NoError(t, err)

	svc.Close()
	<-done

	if assert.Len(t, pub.events, 1) {
		assert.Equal(t, order.ID, pub.events[0].OrderID)
		assert.Equal(t, 3, pub.events[0].ItemCount)
	}
}

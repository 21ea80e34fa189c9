package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/aura-kitchen/internal/core/domain"
	"github.com/rl1809/aura-kitchen/internal/port"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Mock CacheRepository
type mockCacheRepo struct {
	mu             sync.Mutex
	idempotencySet map[string]bool
	menu           []byte
	menuReads      int
	menuWrites     int
	err            error
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{idempotencySet: make(map[string]bool)}
}

func (m *mockCacheRepo) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return false, m.err
	}
	if m.idempotencySet[key] {
		return false, nil
	}
	m.idempotencySet[key] = true
	return true, nil
}

func (m *mockCacheRepo) ReleaseIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.idempotencySet, key)
	return nil
}

func (m *mockCacheRepo) GetMenu(ctx context.Context) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.menuReads++
	if m.err != nil {
		return nil, false, m.err
	}
	if m.menu == nil {
		return nil, false, nil
	}
	return m.menu, true, nil
}

func (m *mockCacheRepo) SetMenu(ctx context.Context, data []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.menuWrites++
	if m.err != nil {
		return m.err
	}
	m.menu = append([]byte(nil), data...)
	return nil
}

var _ port.DatabaseRepository = (*mockDB)(nil)

// Mock DatabaseRepository
type mockDB struct {
	mu        sync.Mutex
	menu      []domain.MenuItem
	menuLoads int
	orders    []domain.Order
	reviews   []domain.Review
	messages  []domain.Message
	users     map[string]domain.User
	nextID    int64
	failWith  error
	loadDelay time.Duration
}

func newMockDB() *mockDB {
	return &mockDB{users: make(map[string]domain.User)}
}

func (m *mockDB) ListMenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	m.mu.Lock()
	m.menuLoads++
	delay := m.loadDelay
	m.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	return append([]domain.MenuItem(nil), m.menu...), nil
}

func (m *mockDB) GetMenuItem(ctx context.Context, id int64) (*domain.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.menu {
		if it.ID == id {
			item := it
			return &item, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDB) CreateOrder(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.nextID++
	order.ID = m.nextID
	m.orders = append(m.orders, *order)
	return nil
}

func (m *mockDB) ListReviews(ctx context.Context) ([]domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	return append([]domain.Review(nil), m.reviews...), nil
}

func (m *mockDB) CreateReview(ctx context.Context, review *domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.nextID++
	review.ID = m.nextID
	m.reviews = append(m.reviews, *review)
	return nil
}

func (m *mockDB) CreateMessage(ctx context.Context, msg *domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.nextID++
	msg.ID = m.nextID
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *mockDB) CreateUser(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username {
			return domain.ErrUsernameTaken
		}
	}
	m.users[user.ID] = *user
	return nil
}

func (m *mockDB) GetUser(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (m *mockDB) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Mock SessionStore
type mockSessions struct {
	mu       sync.Mutex
	sessions map[string]string
	seq      int
}

func newMockSessions() *mockSessions {
	return &mockSessions{sessions: make(map[string]string)}
}

func (m *mockSessions) CreateSession(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	sid := fmt.Sprintf("sid-%d", m.seq)
	m.sessions[sid] = userID
	return sid, nil
}

func (m *mockSessions) GetSession(ctx context.Context, sessionID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	uid, ok := m.sessions[sessionID]
	if !ok {
		return "", domain.ErrUnauthenticated
	}
	return uid, nil
}

func (m *mockSessions) DeleteSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

var errDBDown = errors.New("db down")

func seedMenu() []domain.MenuItem {
	items := []domain.MenuItem{
		{ID: 1, Name: "Classic Aura Burger", Price: 1299, Category: domain.CategoryMeals, Popular: true, Available: true},
		{ID: 5, Name: "Crispy Onion Rings", Price: 550, Category: domain.CategorySnacks, Available: true},
		{ID: 6, Name: "Loaded Fries", Price: 750, Category: domain.CategorySnacks, Popular: true, Available: true},
		{ID: 7, Name: "Sunrise Smoothie", Price: 600, Category: domain.CategoryDrinks, Available: true},
		{ID: 9, Name: "Avocado Toast", Price: 950, Category: domain.CategoryBreakfast, Available: true},
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

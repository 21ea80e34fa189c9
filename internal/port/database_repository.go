package port

import (
	"context"

	"github.com/rl1809/aura-kitchen/internal/core/domain"
)

type MenuRepository interface {
	// ListMenuItems returns every menu item ordered by id
	ListMenuItems(ctx context.Context) ([]domain.MenuItem, error)

	// GetMenuItem returns domain.ErrNotFound when the id is unknown
	GetMenuItem(ctx context.Context, id int64) (*domain.MenuItem, error)
}

type OrderRepository interface {
	// CreateOrder persists the order and sets its ID
	CreateOrder(ctx context.Context, order *domain.Order) error
}

type ReviewRepository interface {
	ListReviews(ctx context.Context) ([]domain.Review, error)
	CreateReview(ctx context.Context, review *domain.Review) error
}

type MessageRepository interface {
	CreateMessage(ctx context.Context, msg *domain.Message) error
}

type UserRepository interface {
	// CreateUser returns domain.ErrUsernameTaken on a duplicate username
	CreateUser(ctx context.Context, user *domain.User) error

	// GetUser and GetUserByUsername return domain.ErrNotFound when absent
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

// DatabaseRepository is the relational store behind the API.
type DatabaseRepository interface {
	MenuRepository
	OrderRepository
	ReviewRepository
	MessageRepository
	UserRepository
}

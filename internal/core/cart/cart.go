// Package cart holds a browsing session's shopping cart.
//
// A Cart is owned by whoever opened it and is handed to the pages (commands)
// that need it; there is no package-level cart. Every mutation is written
// through to the session Store so the cart survives navigation.
package cart

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rl1809/aura-kitchen/internal/core/domain"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrInvalidItem     = errors.New("menu item has no id")
	ErrItemUnavailable = errors.New("menu item is not available")
)

// Line is one cart entry. Its identity is (MenuItemID, Customizations) where
// customizations compare as an ordered sequence.
type Line struct {
	MenuItemID     int64    `json:"menuItemId"`
	Name           string   `json:"name"`
	Price          int64    `json:"price"`
	Quantity       int      `json:"quantity"`
	Customizations []string `json:"customizations"`
	Image          string   `json:"image"`
}

// Subtotal is unit price times quantity.
func (l Line) Subtotal() int64 {
	return l.Price * int64(l.Quantity)
}

func (l Line) matches(menuItemID int64, customizations []string) bool {
	return l.MenuItemID == menuItemID && slices.Equal(l.Customizations, customizations)
}

func (l Line) clone() Line {
	l.Customizations = slices.Clone(l.Customizations)
	if l.Customizations == nil {
		l.Customizations = []string{}
	}
	return l
}

// Store persists a session's lines between navigations.
type Store interface {
	Load(ctx context.Context) ([]Line, error)
	Save(ctx context.Context, lines []Line) error
	Delete(ctx context.Context) error
}

type Cart struct {
	mu    sync.Mutex
	lines []Line
	store Store
}

// New returns an empty cart bound to store. A nil store keeps the cart in memory only.
func New(store Store) *Cart {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Cart{store: store}
}

// Open restores the session's cart from store. A session without saved state
// starts empty.
func Open(ctx context.Context, store Store) (*Cart, error) {
	c := New(store)
	lines, err := c.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	for _, l := range lines {
		if l.Quantity < 1 || l.MenuItemID == 0 {
			continue
		}
		c.lines = append(c.lines, l.clone())
	}
	return c, nil
}

// Add puts quantity units of item in the cart. A line with the same item and
// the same customization sequence is incremented; otherwise a new line is
// appended. The item's price is captured now and never re-read.
func (c *Cart) Add(ctx context.Context, item domain.MenuItem, quantity int, customizations ...string) error {
	if item.ID == 0 {
		return ErrInvalidItem
	}
	if !item.Available {
		return ErrItemUnavailable
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if customizations == nil {
		customizations = []string{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.snapshot()
	merged := false
	for i := range next {
		if next[i].matches(item.ID, customizations) {
			next[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		next = append(next, Line{
			MenuItemID:     item.ID,
			Name:           item.Name,
			Price:          item.Price,
			Quantity:       quantity,
			Customizations: slices.Clone(customizations),
			Image:          item.Image,
		})
	}
	return c.commit(ctx, next)
}

// Remove drops every line for menuItemID, whatever its customizations.
// Removing an id that is not in the cart does nothing.
func (c *Cart) Remove(ctx context.Context, menuItemID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := slices.DeleteFunc(c.snapshot(), func(l Line) bool {
		return l.MenuItemID == menuItemID
	})
	if len(next) == len(c.lines) {
		return nil
	}
	return c.commit(ctx, next)
}

// UpdateQuantity adds delta to every line for menuItemID. Lines that drop to
// zero or below are removed.
func (c *Cart) UpdateQuantity(ctx context.Context, menuItemID int64, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.snapshot()
	found := false
	for i := range next {
		if next[i].MenuItemID == menuItemID {
			next[i].Quantity += delta
			found = true
		}
	}
	if !found || delta == 0 {
		return nil
	}
	next = slices.DeleteFunc(next, func(l Line) bool {
		return l.Quantity <= 0
	})
	return c.commit(ctx, next)
}

func (c *Cart) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.commit(ctx, []Line{})
}

// End closes the session: the cart is emptied and its saved state removed.
// If the saved state cannot be removed the cart is left as it was.
func (c *Cart) End(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Delete(ctx); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	c.lines = nil
	return nil
}

// Lines returns a copy of the cart's lines in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Cart) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total int64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, l := range c.lines {
		count += l.Quantity
	}
	return count
}

func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

func (c *Cart) snapshot() []Line {
	out := make([]Line, len(c.lines))
	for i, l := range c.lines {
		out[i] = l.clone()
	}
	return out
}

// commit saves next and only then makes it the cart's content, so a failed
// save leaves the cart as the store last saw it. Must be called with c.mu held.
func (c *Cart) commit(ctx context.Context, next []Line) error {
	if err := c.store.Save(ctx, next); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	c.lines = next
	return nil
}

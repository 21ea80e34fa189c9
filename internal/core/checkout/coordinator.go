// Package checkout turns a session cart into a placed order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/aura-kitchen/internal/core/cart"
	"github.com/rl1809/aura-kitchen/internal/core/domain"
)

// FlatDeliveryFee is charged once per non-empty order, in cents.
const FlatDeliveryFee int64 = 500

const (
	RouteCart         = "/cart"
	RouteOrderSuccess = "/order-success"

	defaultSubmitTimeout = 15 * time.Second
)

var (
	ErrEmptyCart  = errors.New("cart is empty")
	ErrSubmitting = errors.New("order submission already in progress")
	ErrCompleted  = errors.New("order already placed")
)

type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateCompleted:
		return "completed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// OrderSubmitter hands a submission to order intake. Intake accepts at most
// one order per idempotency key.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, key string, sub domain.OrderSubmission) (*domain.Order, error)
}

// Form is the contact and delivery data entered at checkout. Payment is
// cosmetic: it is validated but never sent.
type Form struct {
	CustomerName string `json:"customerName" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required"`
	Address      string `json:"address" validate:"required"`
	Payment      string `json:"payment" validate:"omitempty,oneof=card upi cash"`
}

func (f Form) normalized() Form {
	f.CustomerName = strings.TrimSpace(f.CustomerName)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Address = strings.TrimSpace(f.Address)
	f.Payment = strings.ToLower(strings.TrimSpace(f.Payment))
	return f
}

// Quote is the breakdown shown to the customer before placing the order.
type Quote struct {
	Subtotal    int64
	DeliveryFee int64
	Total       int64
}

// QuoteFor prices a cart with the flat delivery fee.
func QuoteFor(c *cart.Cart) Quote {
	subtotal := c.Total()
	var fee int64
	if !c.IsEmpty() {
		fee = FlatDeliveryFee
	}
	return Quote{Subtotal: subtotal, DeliveryFee: fee, Total: subtotal + fee}
}

type Option func(*Coordinator)

func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.timeout = d }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Coordinator) { c.log = log }
}

// Coordinator drives one checkout: Idle -> Submitting -> Completed, or back
// to Idle when intake rejects the order.
type Coordinator struct {
	cart      *cart.Cart
	submitter OrderSubmitter
	timeout   time.Duration
	log       logrus.FieldLogger
	key       string

	mu       sync.Mutex
	state    State
	form     Form
	err      error
	order    *domain.Order
	clearErr error
}

// New starts a checkout for c. An empty cart cannot be checked out; callers
// should send the user back to RouteCart on ErrEmptyCart.
func New(c *cart.Cart, submitter OrderSubmitter, opts ...Option) (*Coordinator, error) {
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}
	co := &Coordinator{
		cart:      c,
		submitter: submitter,
		timeout:   defaultSubmitTimeout,
		log:       logrus.StandardLogger(),
		key:       uuid.NewString(),
	}
	for _, opt := range opts {
		opt(co)
	}
	return co, nil
}

func (co *Coordinator) Quote() Quote {
	return QuoteFor(co.cart)
}

// Submit validates form and places the order. Validation failures and an
// empty cart return before anything is sent. On success the cart is cleared;
// on any intake or network failure the cart and form are kept for a retry.
// Every attempt carries the same idempotency key, so a retry after a timeout
// cannot place the order twice.
func (co *Coordinator) Submit(ctx context.Context, form Form) (*domain.Order, error) {
	co.mu.Lock()
	switch co.state {
	case StateSubmitting:
		co.mu.Unlock()
		return nil, ErrSubmitting
	case StateCompleted:
		co.mu.Unlock()
		return nil, ErrCompleted
	}

	form = form.normalized()
	co.form = form

	if co.cart.IsEmpty() {
		co.err = ErrEmptyCart
		co.mu.Unlock()
		return nil, ErrEmptyCart
	}
	if err := domain.Validate(form); err != nil {
		co.err = err
		co.mu.Unlock()
		return nil, err
	}

	sub := co.buildSubmission(form)
	co.state = StateSubmitting
	co.err = nil
	co.mu.Unlock()

	log := co.log.WithFields(logrus.Fields{
		"total": sub.Total,
		"lines": len(sub.Items),
	})
	log.Debug("submitting order")

	submitCtx, cancel := context.WithTimeout(ctx, co.timeout)
	order, err := co.submitter.SubmitOrder(submitCtx, co.key, sub)
	cancel()

	co.mu.Lock()
	defer co.mu.Unlock()

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = &domain.NetworkError{Err: err}
		}
		co.state = StateIdle
		co.err = err
		log.WithError(err).Warn("order submission failed")
		return nil, err
	}

	if err := co.cart.Clear(ctx); err != nil {
		co.clearErr = err
		log.WithError(err).Error("order placed but cart could not be cleared")
	}
	co.state = StateCompleted
	co.order = order
	log.WithField("order_id", order.ID).Info("order placed")
	return order, nil
}

// buildSubmission must be called with co.mu held.
func (co *Coordinator) buildSubmission(form Form) domain.OrderSubmission {
	lines := co.cart.Lines()
	items := make([]domain.OrderItem, len(lines))
	var subtotal int64
	for i, l := range lines {
		items[i] = domain.OrderItem{
			MenuItemID:     l.MenuItemID,
			Quantity:       l.Quantity,
			Name:           l.Name,
			Price:          l.Price,
			Customizations: l.Customizations,
		}
		subtotal += l.Subtotal()
	}
	return domain.OrderSubmission{
		CustomerName: form.CustomerName,
		Email:        form.Email,
		Phone:        form.Phone,
		Address:      form.Address,
		Total:        subtotal + FlatDeliveryFee,
		Items:        items,
	}
}

func (co *Coordinator) State() State {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.state
}

// Form returns the last submitted form, kept for correction after a failure.
func (co *Coordinator) Form() Form {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.form
}

// Err returns the error of the last attempt, if any.
func (co *Coordinator) Err() error {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.err
}

// ClearErr reports why the cart could not be cleared after the order was
// placed. The saved session may still hold the ordered items.
func (co *Coordinator) ClearErr() error {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.clearErr
}

// IdempotencyKey is the key sent with every attempt of this checkout.
func (co *Coordinator) IdempotencyKey() string {
	return co.key
}

func (co *Coordinator) Order() *domain.Order {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.order
}

// Route is where the user should be: the confirmation page once completed,
// the cart when there is nothing to check out, otherwise "" (stay).
func (co *Coordinator) Route() string {
	co.mu.Lock()
	defer co.mu.Unlock()
	if co.state == StateCompleted {
		return RouteOrderSuccess
	}
	if co.cart.IsEmpty() {
		return RouteCart
	}
	return ""
}

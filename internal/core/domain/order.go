package domain

import "time"

type OrderStatus string

// OrderStatusPending is the only status intake assigns.
const OrderStatusPending OrderStatus = "pending"

type OrderItem struct {
	MenuItemID     int64    `json:"menuItemId" validate:"required,gt=0"`
	Quantity       int      `json:"quantity" validate:"required,min=1"`
	Name           string   `json:"name" validate:"required"`
	Price          int64    `json:"price" validate:"min=0"`
	Customizations []string `json:"customizations"`
}

// OrderSubmission is what the checkout sends to order intake. Total is owned
// by the sender and stored as submitted.
type OrderSubmission struct {
	CustomerName string      `json:"customerName" validate:"required"`
	Email        string      `json:"email" validate:"required,email"`
	Phone        string      `json:"phone" validate:"required"`
	Address      string      `json:"address" validate:"required"`
	Total        int64       `json:"total" validate:"min=0"`
	Items        []OrderItem `json:"items" validate:"required,min=1,dive"`
}

type Order struct {
	ID           int64       `json:"id"`
	CustomerName string      `json:"customerName"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	Address      string      `json:"address"`
	Total        int64       `json:"total"`
	Items        []OrderItem `json:"items"`
	Status       OrderStatus `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// NewOrder builds a pending order from a submission. ID is assigned on insert.
func NewOrder(sub OrderSubmission, now time.Time) Order {
	items := make([]OrderItem, len(sub.Items))
	copy(items, sub.Items)
	return Order{
		CustomerName: sub.CustomerName,
		Email:        sub.Email,
		Phone:        sub.Phone,
		Address:      sub.Address,
		Total:        sub.Total,
		Items:        items,
		Status:       OrderStatusPending,
		CreatedAt:    now,
	}
}

// OrderPlaced is emitted after an order has been persisted.
type OrderPlaced struct {
	OrderID   int64     `json:"orderId"`
	Total     int64     `json:"total"`
	ItemCount int       `json:"itemCount"`
	PlacedAt  time.Time `json:"placedAt"`
}

func NewOrderPlaced(o Order) OrderPlaced {
	count := 0
	for _, it := range o.Items {
		count += it.Quantity
	}
	return OrderPlaced{OrderID: o.ID, Total: o.Total, ItemCount: count, PlacedAt: o.CreatedAt}
}
